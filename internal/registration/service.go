// Package registration manages the registration lifecycle: creation with
// code assignment, lookup, patching and removal.
package registration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"conference/internal/apperr"
	"conference/internal/metrics"
	"conference/internal/model"
	"conference/internal/queue"
	"conference/internal/store"
	"conference/internal/validation"
)

// CreateInput is the public registration form.
type CreateInput struct {
	Name        string `json:"name" validate:"required,max=200,singleline"`
	Email       string `json:"email" validate:"required,email,max=254"`
	Phone       string `json:"phone" validate:"omitempty,max=32"`
	School      string `json:"school" validate:"required,max=200"`
	EventID     string `json:"eventId" validate:"required,max=64"`
	CommitteeID string `json:"committeeId" validate:"omitempty,max=64"`
	Portfolio   string `json:"portfolio" validate:"omitempty,max=200"`
	Code        string `json:"code" validate:"omitempty,regcode"`
}

// Patch carries the fields an admin may change. Nil fields are left alone.
type Patch struct {
	Name          *string                   `json:"name" validate:"omitempty,max=200,singleline"`
	Email         *string                   `json:"email" validate:"omitempty,email,max=254"`
	Phone         *string                   `json:"phone" validate:"omitempty,max=32"`
	School        *string                   `json:"school" validate:"omitempty,max=200"`
	EventID       *string                   `json:"eventId" validate:"omitempty,max=64"`
	CommitteeID   *string                   `json:"committeeId" validate:"omitempty,max=64"`
	Portfolio     *string                   `json:"portfolio" validate:"omitempty,max=200"`
	Status        *model.RegistrationStatus `json:"status" validate:"omitempty,reg_status"`
	PaymentStatus *model.PaymentStatus      `json:"paymentStatus" validate:"omitempty,payment_status"`
	CheckedIn     *bool                     `json:"checkedIn"`
}

// Details is a registration together with its most recent payment.
type Details struct {
	model.Registration
	LatestPayment *model.Payment `json:"latestPayment"`
}

// Service owns registration writes.
type Service struct {
	registrations store.Registrations
	payments      store.Payments
	publisher     queue.Publisher
	log           zerolog.Logger
	now           func() time.Time
	newCode       func() (string, error)
}

// NewService wires the registration service.
func NewService(registrations store.Registrations, payments store.Payments, publisher queue.Publisher, log zerolog.Logger) *Service {
	return &Service{
		registrations: registrations,
		payments:      payments,
		publisher:     publisher,
		log:           log,
		now:           time.Now,
		newCode:       GenerateCode,
	}
}

// Create validates in, assigns a code when none is supplied and stores a
// confirmed, unpaid, not-checked-in registration.
func (s *Service) Create(ctx context.Context, in CreateInput) (model.Registration, error) {
	in.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Struct(ctx, in); err != nil {
		return model.Registration{}, err
	}
	code := in.Code
	if code == "" {
		var err error
		if code, err = s.newCode(); err != nil {
			return model.Registration{}, fmt.Errorf("generate code: %w", err)
		}
	}

	now := s.now().UTC()
	r := model.Registration{
		ID:            uuid.NewString(),
		Code:          code,
		Name:          strings.TrimSpace(in.Name),
		Email:         in.Email,
		Phone:         strings.TrimSpace(in.Phone),
		School:        strings.TrimSpace(in.School),
		EventID:       in.EventID,
		CommitteeID:   in.CommitteeID,
		Portfolio:     in.Portfolio,
		Status:        model.StatusConfirmed,
		PaymentStatus: model.PaymentPending,
		CheckedIn:     false,
		CheckedInAt:   nil,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.registrations.CreateRegistration(ctx, r); err != nil {
		s.log.Error().Err(err).Str("event_id", r.EventID).Msg("registration insert failed")
		return model.Registration{}, fmt.Errorf("create registration: %w", err)
	}
	metrics.RegistrationsCreated.Inc()
	s.log.Info().Str("registration_id", r.ID).Str("code", r.Code).Msg("registration created")

	if s.publisher != nil {
		body := queue.RegistrationCreated{RegistrationID: r.ID, Code: r.Code, Name: r.Name, Email: r.Email, EventID: r.EventID}
		if err := queue.PublishJSON(ctx, s.publisher, queue.TypeRegistrationCreated, body); err != nil {
			s.log.Warn().Err(err).Str("registration_id", r.ID).Msg("publish registration.created failed")
		}
	}
	return r, nil
}

// Get returns the registration and its latest payment. A failed payment
// lookup degrades to a nil payment.
func (s *Service) Get(ctx context.Context, id string) (Details, error) {
	r, err := s.registrations.GetRegistration(ctx, id)
	if err != nil {
		return Details{}, err
	}
	d := Details{Registration: r}
	if s.payments == nil {
		return d, nil
	}
	p, err := s.payments.LatestPayment(ctx, id)
	switch {
	case err == nil:
		d.LatestPayment = &p
	case errors.Is(err, apperr.ErrNotFound):
	default:
		s.log.Warn().Err(err).Str("registration_id", id).Msg("latest payment lookup failed")
	}
	return d, nil
}

// List returns registrations matching f, newest first.
func (s *Service) List(ctx context.Context, f store.RegistrationFilter) ([]model.Registration, error) {
	f.Limit = store.ClampLimit(f.Limit)
	return s.registrations.ListRegistrations(ctx, f)
}

// Update merges p into the stored registration and refreshes updatedAt.
func (s *Service) Update(ctx context.Context, id string, p Patch) (model.Registration, error) {
	if err := validation.Struct(ctx, p); err != nil {
		return model.Registration{}, err
	}
	r, err := s.registrations.GetRegistration(ctx, id)
	if err != nil {
		return model.Registration{}, err
	}
	now := s.now().UTC()
	apply(&r, p, now)
	r.UpdatedAt = now
	if err := s.registrations.UpdateRegistration(ctx, r); err != nil {
		return model.Registration{}, err
	}
	return r, nil
}

func apply(r *model.Registration, p Patch, now time.Time) {
	setString(&r.Name, p.Name)
	setString(&r.Email, p.Email)
	setString(&r.Phone, p.Phone)
	setString(&r.School, p.School)
	setString(&r.EventID, p.EventID)
	setString(&r.CommitteeID, p.CommitteeID)
	setString(&r.Portfolio, p.Portfolio)
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.PaymentStatus != nil {
		r.PaymentStatus = *p.PaymentStatus
	}
	if p.CheckedIn != nil && *p.CheckedIn != r.CheckedIn {
		r.CheckedIn = *p.CheckedIn
		if r.CheckedIn {
			r.CheckedInAt = &now
		} else {
			r.CheckedInAt = nil
		}
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

// Delete removes a registration.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.registrations.DeleteRegistration(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("registration_id", id).Msg("registration deleted")
	return nil
}
