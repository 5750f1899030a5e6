package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conference/internal/apperr"
	"conference/internal/auth"
	"conference/internal/model"
	"conference/internal/store/memory"
)

var today = time.Date(2026, 3, 11, 15, 0, 0, 0, time.UTC)

func fixture(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	mem := memory.New()
	stamp := today
	regs := []model.Registration{
		{ID: "A", Email: "a@example.com", CommitteeID: "UNSC", Status: model.StatusConfirmed, CheckedIn: true, CheckedInAt: &stamp},
		{ID: "B", Email: "b@example.com", CommitteeID: "UNSC", Status: model.StatusConfirmed},
		{ID: "C", Email: "c@example.com", CommitteeID: "DISEC", Status: model.StatusConfirmed},
		{ID: "X", Email: "x@example.com", CommitteeID: "UNSC", Status: model.StatusCancelled},
	}
	for _, r := range regs {
		require.NoError(t, mem.CreateRegistration(ctx, r))
	}
	records := []model.AttendanceRecord{
		{ID: "1", RegistrationID: "A", CommitteeID: "UNSC", AttendanceStatus: model.AttendancePresent, CheckInTime: today.Add(-time.Hour), CreatedAt: today.Add(-time.Hour)},
		{ID: "2", RegistrationID: "A", CommitteeID: "UNSC", AttendanceStatus: model.AttendancePresent, CheckInTime: today.Add(-2 * time.Hour), CreatedAt: today.Add(-2 * time.Hour)},
		{ID: "3", RegistrationID: "B", CommitteeID: "UNSC", AttendanceStatus: model.AttendanceLate, CheckInTime: today.Add(-time.Hour), CreatedAt: today.Add(-time.Hour)},
		{ID: "4", RegistrationID: "C", CommitteeID: "DISEC", AttendanceStatus: model.AttendancePresent, CheckInTime: today.Add(-24 * time.Hour), CreatedAt: today.Add(-24 * time.Hour)},
		// entered today for yesterday's session
		{ID: "5", RegistrationID: "B", CommitteeID: "UNSC", AttendanceStatus: model.AttendancePresent, CheckInTime: today.Add(-24 * time.Hour), CreatedAt: today.Add(-time.Minute)},
		// recorded yesterday ahead of today's session
		{ID: "6", RegistrationID: "C", CommitteeID: "DISEC", AttendanceStatus: model.AttendancePresent, CheckInTime: today.Add(-time.Hour), CreatedAt: today.Add(-24 * time.Hour)},
	}
	for _, a := range records {
		require.NoError(t, mem.CreateAttendance(ctx, a))
	}
	scores := []model.ScoreEntry{
		{ID: "s1", RegistrationID: "A", CommitteeID: "UNSC", Score: 7},
		{ID: "s2", RegistrationID: "A", CommitteeID: "UNSC", Score: 3},
		{ID: "s3", RegistrationID: "X", CommitteeID: "UNSC", Score: 9},
	}
	for _, e := range scores {
		require.NoError(t, mem.CreateScore(ctx, e))
	}
	return mem
}

func newService(t *testing.T) *Service {
	s := NewService(fixture(t))
	s.now = func() time.Time { return today }
	return s
}

func TestAdminCounts(t *testing.T) {
	c, err := newService(t).Admin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Counts{
		Scope:           "all",
		TotalDelegates:  3,
		CheckedIn:       1,
		PresentToday:    2,
		ScoredDelegates: 1,
		PendingScores:   2,
	}, c)
}

func TestChairCountsScoped(t *testing.T) {
	s := newService(t)
	c, err := s.Chair(context.Background(), auth.Role{Kind: auth.KindChair, Committee: "DISEC"})
	require.NoError(t, err)
	assert.Equal(t, "DISEC", c.Scope)
	assert.Equal(t, 1, c.TotalDelegates)
	assert.Equal(t, 1, c.PresentToday)
	assert.Equal(t, 1, c.PendingScores)

	all, err := s.Chair(context.Background(), auth.Role{Kind: auth.KindChair, Committee: auth.AllCommittees})
	require.NoError(t, err)
	assert.Equal(t, 3, all.TotalDelegates)

	_, err = s.Chair(context.Background(), auth.Role{Kind: auth.KindUser})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestUserView(t *testing.T) {
	v, err := newService(t).User(context.Background(), "A@example.com")
	require.NoError(t, err)
	require.Len(t, v.Registrations, 1)
	r := v.Registrations[0]
	assert.Equal(t, "A", r.ID)
	assert.Equal(t, 2, r.AttendanceCount)
	assert.Equal(t, 2, r.PresentCount)
	assert.Equal(t, 10.0, r.TotalScore)
	assert.Equal(t, 2, r.ScoreEntries)
}

func TestUserViewEmpty(t *testing.T) {
	v, err := newService(t).User(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, v.Registrations)
}
