// Package memory is a map-backed store used for local development and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"conference/internal/apperr"
	"conference/internal/model"
	"conference/internal/store"
)

// Store keeps every collection in process memory.
type Store struct {
	mu            sync.RWMutex
	registrations map[string]model.Registration
	attendance    map[string]model.AttendanceRecord
	coupons       map[string]model.Coupon
	scores        []model.ScoreEntry
	contacts      map[string]model.ContactSubmission
	payments      map[string]model.Payment
	events        map[string]model.Event
}

var _ store.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		registrations: make(map[string]model.Registration),
		attendance:    make(map[string]model.AttendanceRecord),
		coupons:       make(map[string]model.Coupon),
		contacts:      make(map[string]model.ContactSubmission),
		payments:      make(map[string]model.Payment),
		events:        make(map[string]model.Event),
	}
}

func (s *Store) Ping(ctx context.Context) error  { return nil }
func (s *Store) Close(ctx context.Context) error { return nil }

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, apperr.ErrNotFound)
}

// -------- Registrations --------

func (s *Store) CreateRegistration(ctx context.Context, r model.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.registrations[r.ID]; ok {
		return fmt.Errorf("registration %s: %w", r.ID, apperr.ErrConflict)
	}
	s.registrations[r.ID] = r
	return nil
}

func (s *Store) GetRegistration(ctx context.Context, id string) (model.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.registrations[id]
	if !ok {
		return model.Registration{}, notFound("registration", id)
	}
	return r, nil
}

// GetRegistrationByCode returns the oldest registration carrying code.
func (s *Store) GetRegistrationByCode(ctx context.Context, code string) (model.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var (
		found model.Registration
		ok    bool
	)
	for _, r := range s.registrations {
		if r.Code != code {
			continue
		}
		if !ok || r.CreatedAt.Before(found.CreatedAt) {
			found, ok = r, true
		}
	}
	if !ok {
		return model.Registration{}, notFound("registration code", code)
	}
	return found, nil
}

func (s *Store) UpdateRegistration(ctx context.Context, r model.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.registrations[r.ID]; !ok {
		return notFound("registration", r.ID)
	}
	s.registrations[r.ID] = r
	return nil
}

func (s *Store) DeleteRegistration(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.registrations[id]; !ok {
		return notFound("registration", id)
	}
	delete(s.registrations, id)
	return nil
}

func (s *Store) ListRegistrations(ctx context.Context, f store.RegistrationFilter) ([]model.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Registration, 0)
	for _, r := range s.registrations {
		if f.EventID != "" && r.EventID != f.EventID {
			continue
		}
		if f.CommitteeID != "" && r.CommitteeID != f.CommitteeID {
			continue
		}
		if f.Email != "" && !strings.EqualFold(r.Email, f.Email) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// -------- Attendance --------

func (s *Store) CreateAttendance(ctx context.Context, a model.AttendanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attendance[a.ID] = a
	return nil
}

func (s *Store) GetAttendance(ctx context.Context, id string) (model.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.attendance[id]
	if !ok {
		return model.AttendanceRecord{}, notFound("attendance record", id)
	}
	return a, nil
}

func (s *Store) UpdateAttendance(ctx context.Context, a model.AttendanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.attendance[a.ID]; !ok {
		return notFound("attendance record", a.ID)
	}
	s.attendance[a.ID] = a
	return nil
}

func (s *Store) ListAttendance(ctx context.Context, f store.AttendanceFilter) ([]model.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.AttendanceRecord, 0)
	for _, a := range s.attendance {
		if f.EventID != "" && a.EventID != f.EventID {
			continue
		}
		if f.CommitteeID != "" && a.CommitteeID != f.CommitteeID {
			continue
		}
		if f.RegistrationID != "" && a.RegistrationID != f.RegistrationID {
			continue
		}
		if !f.Since.IsZero() && a.CheckInTime.Before(f.Since) {
			continue
		}
		if !f.Until.IsZero() && !a.CheckInTime.Before(f.Until) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// -------- Coupons --------

func (s *Store) CreateCoupon(ctx context.Context, c model.Coupon) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.coupons[c.Code]; ok {
		return fmt.Errorf("coupon %s: %w", c.Code, apperr.ErrConflict)
	}
	s.coupons[c.Code] = c
	return nil
}

func (s *Store) GetCoupon(ctx context.Context, code string) (model.Coupon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.coupons[code]
	if !ok {
		return model.Coupon{}, notFound("coupon", code)
	}
	return c, nil
}

func (s *Store) ListCoupons(ctx context.Context) ([]model.Coupon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Coupon, 0, len(s.coupons))
	for _, c := range s.coupons {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (s *Store) DeleteCoupon(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.coupons[code]; !ok {
		return notFound("coupon", code)
	}
	delete(s.coupons, code)
	return nil
}

// -------- Scores --------

func (s *Store) CreateScore(ctx context.Context, e model.ScoreEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores = append(s.scores, e)
	return nil
}

func (s *Store) ListScores(ctx context.Context, f store.ScoreFilter) ([]model.ScoreEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.ScoreEntry, 0)
	for _, e := range s.scores {
		if f.EventID != "" && e.EventID != f.EventID {
			continue
		}
		if f.CommitteeID != "" && e.CommitteeID != f.CommitteeID {
			continue
		}
		if f.RegistrationID != "" && e.RegistrationID != f.RegistrationID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// -------- Contacts --------

func (s *Store) CreateContact(ctx context.Context, c model.ContactSubmission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts[c.ID] = c
	return nil
}

func (s *Store) GetContact(ctx context.Context, id string) (model.ContactSubmission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contacts[id]
	if !ok {
		return model.ContactSubmission{}, notFound("contact", id)
	}
	return c, nil
}

func (s *Store) UpdateContact(ctx context.Context, c model.ContactSubmission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contacts[c.ID]; !ok {
		return notFound("contact", c.ID)
	}
	s.contacts[c.ID] = c
	return nil
}

func (s *Store) DeleteContact(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contacts[id]; !ok {
		return notFound("contact", id)
	}
	delete(s.contacts, id)
	return nil
}

func (s *Store) ListContacts(ctx context.Context, status model.ContactStatus) ([]model.ContactSubmission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.ContactSubmission, 0)
	for _, c := range s.contacts {
		if status != "" && c.Status != status {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// -------- Payments --------

func (s *Store) CreatePayment(ctx context.Context, p model.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.payments {
		if existing.OrderID == p.OrderID {
			return fmt.Errorf("payment order %s: %w", p.OrderID, apperr.ErrConflict)
		}
	}
	s.payments[p.ID] = p
	return nil
}

func (s *Store) GetPaymentByOrder(ctx context.Context, orderID string) (model.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.payments {
		if p.OrderID == orderID {
			return p, nil
		}
	}
	return model.Payment{}, notFound("payment order", orderID)
}

func (s *Store) UpdatePayment(ctx context.Context, p model.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payments[p.ID]; !ok {
		return notFound("payment", p.ID)
	}
	s.payments[p.ID] = p
	return nil
}

func (s *Store) LatestPayment(ctx context.Context, registrationID string) (model.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var (
		latest model.Payment
		ok     bool
	)
	for _, p := range s.payments {
		if p.RegistrationID != registrationID {
			continue
		}
		if !ok || p.CreatedAt.After(latest.CreatedAt) {
			latest, ok = p, true
		}
	}
	if !ok {
		return model.Payment{}, notFound("payment for registration", registrationID)
	}
	return latest, nil
}

// -------- Events --------

func (s *Store) CreateEvent(ctx context.Context, e model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[e.ID] = e
	return nil
}

func (s *Store) GetEvent(ctx context.Context, id string) (model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[id]
	if !ok {
		return model.Event{}, notFound("event", id)
	}
	return e, nil
}

func (s *Store) ListEvents(ctx context.Context) ([]model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Event, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}
