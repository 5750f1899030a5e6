package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"conference/internal/metrics"
	"conference/internal/queue"
)

// Handler maps queue messages to mails.
type Handler struct {
	mailer     Mailer
	adminEmail string
	log        zerolog.Logger
}

func NewHandler(mailer Mailer, adminEmail string, log zerolog.Logger) *Handler {
	return &Handler{mailer: mailer, adminEmail: adminEmail, log: log}
}

// Handle processes one message. Unknown types are skipped.
func (h *Handler) Handle(ctx context.Context, msg queue.Message) error {
	err := h.dispatch(ctx, msg)
	outcome := "sent"
	switch {
	case errors.Is(err, errSkipped):
		outcome, err = "skipped", nil
	case err != nil:
		outcome = "failed"
	}
	metrics.NotificationsSent.WithLabelValues(msg.Type, outcome).Inc()
	return err
}

var errSkipped = errors.New("skipped")

func (h *Handler) dispatch(ctx context.Context, msg queue.Message) error {
	switch msg.Type {
	case queue.TypeRegistrationCreated:
		var body queue.RegistrationCreated
		if err := json.Unmarshal(msg.Body, &body); err != nil {
			return fmt.Errorf("decode %s: %w", msg.Type, err)
		}
		return h.mailer.Send(ctx, body.Email, "Your registration is confirmed",
			fmt.Sprintf("Hello %s,\n\nYour registration for event %s is confirmed.\nYour check-in code is %s.\n", body.Name, body.EventID, body.Code))

	case queue.TypePaymentPaid:
		var body queue.PaymentPaid
		if err := json.Unmarshal(msg.Body, &body); err != nil {
			return fmt.Errorf("decode %s: %w", msg.Type, err)
		}
		return h.mailer.Send(ctx, body.Email, "Payment received",
			fmt.Sprintf("Hello %s,\n\nWe received %.2f %s for order %s.\n", body.Name, body.Amount, body.Currency, body.OrderID))

	case queue.TypeContactSubmitted:
		if h.adminEmail == "" {
			h.log.Debug().Msg("no admin email configured, contact notification skipped")
			return errSkipped
		}
		var body queue.ContactSubmitted
		if err := json.Unmarshal(msg.Body, &body); err != nil {
			return fmt.Errorf("decode %s: %w", msg.Type, err)
		}
		return h.mailer.Send(ctx, h.adminEmail, "New contact message: "+body.Subject,
			fmt.Sprintf("From: %s <%s>\n\n%s\n", body.Name, body.Email, body.Message))

	default:
		h.log.Warn().Str("type", msg.Type).Msg("unknown message type skipped")
		return errSkipped
	}
}

// Run consumes q until ctx is done. Failures are logged and do not stop
// the loop.
func (h *Handler) Run(ctx context.Context, q queue.Queue) error {
	msgs, err := q.Consume(ctx)
	if err != nil {
		return err
	}
	for msg := range msgs {
		if err := h.Handle(ctx, msg); err != nil {
			h.log.Error().Err(err).Str("type", msg.Type).Msg("notification failed")
		}
	}
	return ctx.Err()
}
