package events

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conference/internal/apperr"
	"conference/internal/store/memory"
)

func day(d, h int) time.Time { return time.Date(2026, 3, d, h, 0, 0, 0, time.UTC) }

func TestDayCount(t *testing.T) {
	assert.Equal(t, 1, DayCount(day(10, 9), day(10, 18)))
	assert.Equal(t, 3, DayCount(day(10, 23), day(12, 1)))
	assert.Equal(t, 0, DayCount(day(12, 0), day(10, 0)))
}

func TestCreateGetList(t *testing.T) {
	ctx := context.Background()
	s := NewService(memory.New(), zerolog.Nop())

	v, err := s.Create(ctx, CreateInput{Name: "Model UN", Price: 1500, StartDate: day(10, 9), EndDate: day(12, 17)})
	require.NoError(t, err)
	assert.Equal(t, DefaultCurrency, v.Currency)
	assert.Equal(t, 3, v.Days)

	got, err := s.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, v, got)

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreateRejectsInvertedDates(t *testing.T) {
	s := NewService(memory.New(), zerolog.Nop())
	_, err := s.Create(context.Background(), CreateInput{Name: "Bad", StartDate: day(12, 0), EndDate: day(10, 0)})
	assert.True(t, apperr.IsValidation(err))

	_, err = s.Create(context.Background(), CreateInput{Name: "Neg", Price: -5, StartDate: day(10, 0), EndDate: day(10, 0)})
	assert.True(t, apperr.IsValidation(err))
}
