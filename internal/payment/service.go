// Package payment raises gateway orders for registrations and verifies the
// gateway's signed callbacks.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"conference/internal/apperr"
	"conference/internal/coupon"
	"conference/internal/metrics"
	"conference/internal/model"
	"conference/internal/queue"
	"conference/internal/store"
	"conference/internal/validation"
)

// ErrNoSecret is returned by VerifyCallback when no gateway secret is
// configured. Callbacks cannot be authenticated without one.
var ErrNoSecret = errors.New("payment gateway secret not configured")

// OrderInput requests an order for a registration.
type OrderInput struct {
	RegistrationID string `json:"registrationId" validate:"required"`
	CouponCode     string `json:"couponCode" validate:"omitempty,max=64"`
}

// CallbackInput is the gateway's payment confirmation.
type CallbackInput struct {
	OrderID   string `json:"orderId" validate:"required"`
	PaymentID string `json:"paymentId" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

// OrderResult is returned to the client to open the gateway checkout.
type OrderResult struct {
	Payment model.Payment `json:"payment"`
	KeyID   string        `json:"keyId,omitempty"`
}

// Store is the slice of persistence payments need.
type Store interface {
	store.Registrations
	store.Payments
	store.Events
}

// Service coordinates orders, coupons and callbacks.
type Service struct {
	store     Store
	coupons   *coupon.Service
	gateway   Gateway
	publisher queue.Publisher
	secret    string
	keyID     string
	currency  string
	log       zerolog.Logger
	now       func() time.Time
}

// Config carries gateway credentials and defaults.
type Config struct {
	KeyID     string
	KeySecret string
	Currency  string
}

func NewService(st Store, coupons *coupon.Service, gateway Gateway, publisher queue.Publisher, cfg Config, log zerolog.Logger) *Service {
	return &Service{
		store:     st,
		coupons:   coupons,
		gateway:   gateway,
		publisher: publisher,
		secret:    cfg.KeySecret,
		keyID:     cfg.KeyID,
		currency:  cfg.Currency,
		log:       log,
		now:       time.Now,
	}
}

// CreateOrder prices the registration's event, applies an optional coupon
// and raises a gateway order. A zero final amount is settled immediately.
func (s *Service) CreateOrder(ctx context.Context, in OrderInput) (OrderResult, error) {
	if err := validation.Struct(ctx, in); err != nil {
		return OrderResult{}, err
	}
	reg, err := s.store.GetRegistration(ctx, in.RegistrationID)
	if err != nil {
		return OrderResult{}, err
	}
	if reg.PaymentStatus == model.PaymentPaid {
		return OrderResult{}, fmt.Errorf("registration %s already paid: %w", reg.ID, apperr.ErrConflict)
	}
	event, err := s.store.GetEvent(ctx, reg.EventID)
	if err != nil {
		return OrderResult{}, err
	}

	amount, discount := event.Price, 0.0
	code := strings.ToUpper(strings.TrimSpace(in.CouponCode))
	if code != "" {
		c, err := s.coupons.Lookup(ctx, code)
		if err != nil {
			return OrderResult{}, err
		}
		res := coupon.Evaluate(c, reg.EventID, event.Price, s.now())
		if !res.Valid {
			return OrderResult{}, apperr.Invalid("couponCode", res.Message)
		}
		amount, discount = res.FinalAmount, res.Discount
	}
	currency := event.Currency
	if currency == "" {
		currency = s.currency
	}

	now := s.now().UTC()
	p := model.Payment{
		ID:             uuid.NewString(),
		RegistrationID: reg.ID,
		Amount:         amount,
		Discount:       discount,
		CouponCode:     code,
		Currency:       currency,
		Status:         model.PaymentCreated,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if amount <= 0 {
		p.OrderID = "free_" + p.ID
		p.Status = model.PaymentCaptured
		if err := s.store.CreatePayment(ctx, p); err != nil {
			return OrderResult{}, err
		}
		if err := s.markPaid(ctx, reg, p); err != nil {
			return OrderResult{}, err
		}
		return OrderResult{Payment: p}, nil
	}

	order, err := s.gateway.CreateOrder(ctx, amount, currency, reg.Code)
	if err != nil {
		s.log.Error().Err(err).Str("registration_id", reg.ID).Msg("gateway order failed")
		return OrderResult{}, fmt.Errorf("create gateway order: %w", err)
	}
	p.OrderID = order.ID
	if err := s.store.CreatePayment(ctx, p); err != nil {
		return OrderResult{}, err
	}
	s.log.Info().Str("registration_id", reg.ID).Str("order_id", p.OrderID).Float64("amount", amount).Msg("payment order created")
	return OrderResult{Payment: p, KeyID: s.keyID}, nil
}

// VerifyCallback checks the callback signature and, when it matches, marks
// the payment and its registration paid. A mismatch changes nothing.
func (s *Service) VerifyCallback(ctx context.Context, in CallbackInput) (model.Payment, error) {
	if err := validation.Struct(ctx, in); err != nil {
		return model.Payment{}, err
	}
	if s.secret == "" {
		metrics.PaymentVerifications.WithLabelValues("unconfigured").Inc()
		return model.Payment{}, ErrNoSecret
	}
	p, err := s.store.GetPaymentByOrder(ctx, in.OrderID)
	if err != nil {
		return model.Payment{}, err
	}
	if !VerifySignature(s.secret, in.OrderID, in.PaymentID, in.Signature) {
		metrics.PaymentVerifications.WithLabelValues("rejected").Inc()
		s.log.Warn().Str("order_id", in.OrderID).Msg("payment signature mismatch")
		return model.Payment{}, apperr.Invalid("signature", "does not match")
	}
	if p.Status == model.PaymentCaptured {
		metrics.PaymentVerifications.WithLabelValues("duplicate").Inc()
		return p, nil
	}

	reg, err := s.store.GetRegistration(ctx, p.RegistrationID)
	if err != nil {
		return model.Payment{}, err
	}
	p.PaymentID = in.PaymentID
	p.Status = model.PaymentCaptured
	p.UpdatedAt = s.now().UTC()
	if err := s.store.UpdatePayment(ctx, p); err != nil {
		return model.Payment{}, err
	}
	if err := s.markPaid(ctx, reg, p); err != nil {
		return model.Payment{}, err
	}
	metrics.PaymentVerifications.WithLabelValues("verified").Inc()
	return p, nil
}

func (s *Service) markPaid(ctx context.Context, reg model.Registration, p model.Payment) error {
	reg.PaymentStatus = model.PaymentPaid
	reg.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateRegistration(ctx, reg); err != nil {
		return err
	}
	s.log.Info().Str("registration_id", reg.ID).Str("order_id", p.OrderID).Msg("registration paid")
	if s.publisher == nil {
		return nil
	}
	body := queue.PaymentPaid{
		RegistrationID: reg.ID,
		Email:          reg.Email,
		Name:           reg.Name,
		OrderID:        p.OrderID,
		PaymentID:      p.PaymentID,
		Amount:         p.Amount,
		Currency:       p.Currency,
	}
	if err := queue.PublishJSON(ctx, s.publisher, queue.TypePaymentPaid, body); err != nil {
		s.log.Warn().Err(err).Str("registration_id", reg.ID).Msg("publish payment.paid failed")
	}
	return nil
}
