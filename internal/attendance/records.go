package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"conference/internal/apperr"
	"conference/internal/auth"
	"conference/internal/model"
	"conference/internal/store"
	"conference/internal/validation"
)

// RecordInput creates a per-session attendance record.
type RecordInput struct {
	RegistrationID   string                 `json:"registrationId" validate:"required"`
	AttendanceStatus model.AttendanceStatus `json:"attendanceStatus" validate:"required,attendance_status"`
	CheckInTime      *time.Time             `json:"checkInTime"`
}

// RecordPatch updates an attendance record. Nil fields are left alone.
type RecordPatch struct {
	ID               string                  `json:"id" validate:"required"`
	AttendanceStatus *model.AttendanceStatus `json:"attendanceStatus" validate:"omitempty,attendance_status"`
	CheckOutTime     *time.Time              `json:"checkOutTime"`
}

// RecordFilter narrows record listings.
type RecordFilter struct {
	EventID     string
	CommitteeID string
	Limit       int
}

// ListRecords returns attendance records newest first, limited to at most
// store.MaxListLimit entries.
func (s *Service) ListRecords(ctx context.Context, f RecordFilter) ([]model.AttendanceRecord, error) {
	return s.records.ListAttendance(ctx, store.AttendanceFilter{
		EventID:     f.EventID,
		CommitteeID: f.CommitteeID,
		Limit:       store.ClampLimit(f.Limit),
	})
}

// RecordAttendance stores a new record for an existing registration. Event
// and committee are copied from the registration, and the record is marked
// by the caller.
func (s *Service) RecordAttendance(ctx context.Context, role auth.Role, in RecordInput) (model.AttendanceRecord, error) {
	if err := validation.Struct(ctx, in); err != nil {
		return model.AttendanceRecord{}, err
	}
	r, err := s.registration(ctx, role, in.RegistrationID)
	if err != nil {
		return model.AttendanceRecord{}, err
	}
	now := s.now().UTC()
	checkIn := now
	if in.CheckInTime != nil {
		checkIn = in.CheckInTime.UTC()
	}
	rec := model.AttendanceRecord{
		ID:               uuid.NewString(),
		RegistrationID:   r.ID,
		EventID:          r.EventID,
		CommitteeID:      r.CommitteeID,
		AttendanceStatus: in.AttendanceStatus,
		CheckInTime:      checkIn,
		MarkedBy:         role.Email,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.records.CreateAttendance(ctx, rec); err != nil {
		return model.AttendanceRecord{}, err
	}
	s.log.Info().Str("record_id", rec.ID).Str("registration_id", r.ID).Str("status", string(rec.AttendanceStatus)).Msg("attendance recorded")
	return rec, nil
}

// UpdateRecord applies p to an existing record. Unknown statuses are
// rejected before anything is read or written.
func (s *Service) UpdateRecord(ctx context.Context, role auth.Role, p RecordPatch) (model.AttendanceRecord, error) {
	if err := validation.Struct(ctx, p); err != nil {
		return model.AttendanceRecord{}, err
	}
	rec, err := s.records.GetAttendance(ctx, p.ID)
	if err != nil {
		return model.AttendanceRecord{}, err
	}
	if !role.Covers(rec.CommitteeID) {
		return model.AttendanceRecord{}, fmt.Errorf("attendance record %s: %w", p.ID, apperr.ErrForbidden)
	}
	if p.AttendanceStatus != nil {
		rec.AttendanceStatus = *p.AttendanceStatus
	}
	if p.CheckOutTime != nil {
		out := p.CheckOutTime.UTC()
		if out.Before(rec.CheckInTime) {
			return model.AttendanceRecord{}, apperr.Invalid("checkOutTime", "is before checkInTime")
		}
		rec.CheckOutTime = &out
	}
	rec.UpdatedAt = s.now().UTC()
	if err := s.records.UpdateAttendance(ctx, rec); err != nil {
		return model.AttendanceRecord{}, err
	}
	return rec, nil
}
