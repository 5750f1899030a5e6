package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conference/internal/apperr"
	"conference/internal/model"
	"conference/internal/store"
)

func TestRegistrationsFilterAndOrder(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, r := range []model.Registration{
		{ID: "1", Email: "Ada@example.com", EventID: "E1", CommitteeID: "UNSC"},
		{ID: "2", Email: "bob@example.com", EventID: "E1", CommitteeID: "DISEC"},
		{ID: "3", Email: "ada@example.com", EventID: "E2", CommitteeID: "UNSC"},
	} {
		r.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, s.CreateRegistration(ctx, r))
	}

	byEmail, err := s.ListRegistrations(ctx, store.RegistrationFilter{Email: "ADA@example.com"})
	require.NoError(t, err)
	require.Len(t, byEmail, 2)
	assert.Equal(t, "3", byEmail[0].ID)

	limited, err := s.ListRegistrations(ctx, store.RegistrationFilter{EventID: "E1", Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "2", limited[0].ID)

	assert.ErrorIs(t, s.CreateRegistration(ctx, model.Registration{ID: "1"}), apperr.ErrConflict)
}

func TestPaymentOrderUnique(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreatePayment(ctx, model.Payment{ID: "p1", OrderID: "o1"}))
	assert.ErrorIs(t, s.CreatePayment(ctx, model.Payment{ID: "p2", OrderID: "o1"}), apperr.ErrConflict)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, store.DefaultListLimit, store.ClampLimit(0))
	assert.Equal(t, 50, store.ClampLimit(50))
	assert.Equal(t, store.MaxListLimit, store.ClampLimit(5000))
}

func TestAttendanceWindowUsesCheckInTime(t *testing.T) {
	ctx := context.Background()
	s := New()
	day := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	for _, a := range []model.AttendanceRecord{
		{ID: "today", CheckInTime: day.Add(9 * time.Hour), CreatedAt: day.Add(-time.Hour)},
		{ID: "backdated", CheckInTime: day.Add(-time.Hour), CreatedAt: day.Add(10 * time.Hour)},
		{ID: "tomorrow", CheckInTime: day.Add(24 * time.Hour), CreatedAt: day.Add(time.Hour)},
	} {
		require.NoError(t, s.CreateAttendance(ctx, a))
	}

	recs, err := s.ListAttendance(ctx, store.AttendanceFilter{Since: day, Until: day.AddDate(0, 0, 1)})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "today", recs[0].ID)
}
