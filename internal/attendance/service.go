// Package attendance implements the check-in state machine and per-session
// attendance records.
package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"conference/internal/apperr"
	"conference/internal/auth"
	"conference/internal/metrics"
	"conference/internal/model"
	"conference/internal/store"
	"conference/internal/validation"
)

// Failure is one registration id the bulk check-in could not process.
type Failure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// BulkResult summarizes a bulk check-in run.
type BulkResult struct {
	CheckedInCount int       `json:"checkedInCount"`
	TotalProcessed int       `json:"totalProcessed"`
	Succeeded      []string  `json:"succeeded"`
	Skipped        []string  `json:"skipped"`
	Failed         []Failure `json:"failed"`
}

// Service coordinates check-in state and attendance records.
type Service struct {
	registrations store.Registrations
	records       store.Attendance
	log           zerolog.Logger
	now           func() time.Time
}

// NewService creates a service backed by the registration and attendance stores.
func NewService(registrations store.Registrations, records store.Attendance, log zerolog.Logger) *Service {
	return &Service{registrations: registrations, records: records, log: log, now: time.Now}
}

// CheckIn marks the registration checked in and stamps checkedInAt. The
// stamp is refreshed on repeat calls.
func (s *Service) CheckIn(ctx context.Context, role auth.Role, id string) (model.Registration, error) {
	r, err := s.registration(ctx, role, id)
	if err != nil {
		return model.Registration{}, err
	}
	r, err = s.checkIn(ctx, r)
	if err != nil {
		return model.Registration{}, err
	}
	metrics.CheckIns.WithLabelValues("single").Inc()
	return r, nil
}

// registration loads id and checks that role covers its committee.
func (s *Service) registration(ctx context.Context, role auth.Role, id string) (model.Registration, error) {
	r, err := s.registrations.GetRegistration(ctx, id)
	if err != nil {
		return model.Registration{}, err
	}
	if !role.Covers(r.CommitteeID) {
		return model.Registration{}, fmt.Errorf("registration %s: %w", id, apperr.ErrForbidden)
	}
	return r, nil
}

func (s *Service) checkIn(ctx context.Context, r model.Registration) (model.Registration, error) {
	now := s.now().UTC()
	r.CheckedIn = true
	r.CheckedInAt = &now
	r.UpdatedAt = now
	if err := s.registrations.UpdateRegistration(ctx, r); err != nil {
		return model.Registration{}, err
	}
	s.log.Info().Str("registration_id", r.ID).Msg("checked in")
	return r, nil
}

// UndoCheckIn clears the check-in flag and timestamp.
func (s *Service) UndoCheckIn(ctx context.Context, role auth.Role, id string) (model.Registration, error) {
	r, err := s.registration(ctx, role, id)
	if err != nil {
		return model.Registration{}, err
	}
	now := s.now().UTC()
	r.CheckedIn = false
	r.CheckedInAt = nil
	r.UpdatedAt = now
	if err := s.registrations.UpdateRegistration(ctx, r); err != nil {
		return model.Registration{}, err
	}
	s.log.Info().Str("registration_id", r.ID).Msg("check-in undone")
	return r, nil
}

// BulkCheckIn processes ids sequentially in caller order. Registrations
// already checked in are skipped without re-stamping. A failing id is
// recorded and the run continues. Ids outside the role's committee fail
// with reason "forbidden".
func (s *Service) BulkCheckIn(ctx context.Context, role auth.Role, ids []string) BulkResult {
	res := BulkResult{
		TotalProcessed: len(ids),
		Succeeded:      make([]string, 0, len(ids)),
		Skipped:        make([]string, 0),
		Failed:         make([]Failure, 0),
	}
	for _, id := range ids {
		r, err := s.registration(ctx, role, id)
		if err != nil {
			res.Failed = append(res.Failed, s.failure(id, err))
			continue
		}
		if r.CheckedIn {
			res.Skipped = append(res.Skipped, id)
			continue
		}
		if _, err := s.checkIn(ctx, r); err != nil {
			res.Failed = append(res.Failed, s.failure(id, err))
			continue
		}
		res.Succeeded = append(res.Succeeded, id)
	}
	res.CheckedInCount = len(res.Succeeded)
	metrics.CheckIns.WithLabelValues("bulk").Add(float64(res.CheckedInCount))
	metrics.BulkCheckInFailures.Add(float64(len(res.Failed)))
	return res
}

func (s *Service) failure(id string, err error) Failure {
	s.log.Warn().Err(err).Str("registration_id", id).Msg("bulk check-in item failed")
	reason := "update failed"
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		reason = "registration not found"
	case errors.Is(err, apperr.ErrForbidden):
		reason = "forbidden"
	}
	return Failure{ID: id, Reason: reason}
}

// CheckInByQR resolves a scanned payload to a registration and checks it in.
// The payload is either a bare code or a JSON object with a "code" field.
func (s *Service) CheckInByQR(ctx context.Context, role auth.Role, payload string) (model.Registration, error) {
	code, err := ParseQR(payload)
	if err != nil {
		return model.Registration{}, err
	}
	r, err := s.registrations.GetRegistrationByCode(ctx, code)
	if err != nil {
		return model.Registration{}, err
	}
	if !role.Covers(r.CommitteeID) {
		return model.Registration{}, fmt.Errorf("registration code %s: %w", code, apperr.ErrForbidden)
	}
	r, err = s.checkIn(ctx, r)
	if err != nil {
		return model.Registration{}, err
	}
	metrics.CheckIns.WithLabelValues("qr").Inc()
	return r, nil
}

// ParseQR extracts and validates the registration code in payload.
func ParseQR(payload string) (string, error) {
	payload = strings.TrimSpace(payload)
	code := payload
	if strings.HasPrefix(payload, "{") {
		var body struct {
			Code string `json:"code"`
		}
		if err := json.Unmarshal([]byte(payload), &body); err != nil {
			return "", apperr.Invalid("payload", "is not valid JSON")
		}
		code = strings.TrimSpace(body.Code)
	}
	code = strings.ToUpper(code)
	if !validation.CodePattern.MatchString(code) {
		return "", apperr.Invalid("payload", fmt.Sprintf("code %q is not a registration code", code))
	}
	return code, nil
}
