// Package contact handles the public contact form and its admin inbox.
package contact

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"conference/internal/model"
	"conference/internal/queue"
	"conference/internal/store"
	"conference/internal/validation"
)

// SubmitInput is the public contact form.
type SubmitInput struct {
	Name    string `json:"name" validate:"required,max=200,singleline"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Subject string `json:"subject" validate:"omitempty,max=200,singleline"`
	Message string `json:"message" validate:"required,max=5000"`
}

type statusInput struct {
	Status model.ContactStatus `json:"status" validate:"required,contact_status"`
}

type Service struct {
	contacts  store.Contacts
	publisher queue.Publisher
	log       zerolog.Logger
	now       func() time.Time
}

func NewService(contacts store.Contacts, publisher queue.Publisher, log zerolog.Logger) *Service {
	return &Service{contacts: contacts, publisher: publisher, log: log, now: time.Now}
}

// Submit stores a new submission with status new and notifies the admins.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (model.ContactSubmission, error) {
	if err := validation.Struct(ctx, in); err != nil {
		return model.ContactSubmission{}, err
	}
	now := s.now().UTC()
	c := model.ContactSubmission{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(in.Email),
		Subject:   strings.TrimSpace(in.Subject),
		Message:   in.Message,
		Status:    model.ContactNew,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.contacts.CreateContact(ctx, c); err != nil {
		return model.ContactSubmission{}, err
	}
	if s.publisher != nil {
		body := queue.ContactSubmitted{ContactID: c.ID, Name: c.Name, Email: c.Email, Subject: c.Subject, Message: c.Message}
		if err := queue.PublishJSON(ctx, s.publisher, queue.TypeContactSubmitted, body); err != nil {
			s.log.Warn().Err(err).Str("contact_id", c.ID).Msg("publish contact.submitted failed")
		}
	}
	return c, nil
}

// List returns submissions newest first, optionally filtered by status.
func (s *Service) List(ctx context.Context, status model.ContactStatus) ([]model.ContactSubmission, error) {
	if status != "" {
		if err := validation.Struct(ctx, statusInput{Status: status}); err != nil {
			return nil, err
		}
	}
	return s.contacts.ListContacts(ctx, status)
}

func (s *Service) UpdateStatus(ctx context.Context, id string, status model.ContactStatus) (model.ContactSubmission, error) {
	if err := validation.Struct(ctx, statusInput{Status: status}); err != nil {
		return model.ContactSubmission{}, err
	}
	c, err := s.contacts.GetContact(ctx, id)
	if err != nil {
		return model.ContactSubmission{}, err
	}
	c.Status = status
	c.UpdatedAt = s.now().UTC()
	if err := s.contacts.UpdateContact(ctx, c); err != nil {
		return model.ContactSubmission{}, err
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.contacts.DeleteContact(ctx, id)
}
