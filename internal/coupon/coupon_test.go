package coupon

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conference/internal/apperr"
	"conference/internal/model"
	"conference/internal/store/memory"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestEvaluate(t *testing.T) {
	past := now.Add(-time.Hour)
	save10 := &model.Coupon{Code: "SAVE10", DiscountPercent: 10}
	scoped := &model.Coupon{Code: "E1ONLY", DiscountPercent: 10, EventID: "E1"}
	expired := &model.Coupon{Code: "OLD", DiscountPercent: 10, ExpiryDate: &past}

	tests := []struct {
		name   string
		coupon *model.Coupon
		event  string
		base   float64
		want   Result
	}{
		{"absent", nil, "E1", 1000, Result{Valid: false, FinalAmount: 1000, Message: MsgInvalid}},
		{"save10", save10, "E1", 1000, Result{Valid: true, Discount: 100, FinalAmount: 900}},
		{"event match", scoped, "E1", 1000, Result{Valid: true, Discount: 100, FinalAmount: 900}},
		{"event mismatch", scoped, "E2", 1000, Result{Valid: false, FinalAmount: 1000, Message: MsgWrongEvent}},
		{"expired", expired, "E1", 1000, Result{Valid: false, FinalAmount: 1000, Message: MsgExpired}},
		{"half rounds up", save10, "E1", 985, Result{Valid: true, Discount: 99, FinalAmount: 886}},
		{"fraction rounds up", save10, "E1", 999, Result{Valid: true, Discount: 100, FinalAmount: 899}},
		{"zero base", save10, "E1", 0, Result{Valid: true, Discount: 0, FinalAmount: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.coupon, tt.event, tt.base, now))
		})
	}
}

func TestEvaluateExpiryBoundary(t *testing.T) {
	exactly := now
	c := &model.Coupon{Code: "EDGE", DiscountPercent: 50, ExpiryDate: &exactly}
	res := Evaluate(c, "E1", 100, now)
	assert.True(t, res.Valid)
	assert.Equal(t, 50.0, res.Discount)
}

func newService(t *testing.T) *Service {
	t.Helper()
	s := NewService(memory.New(), zerolog.Nop())
	s.now = func() time.Time { return now }
	return s
}

func TestServiceCreateValidateCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	c, err := s.Create(ctx, CreateInput{Code: "save10", DiscountPercent: 10})
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", c.Code)

	res, err := s.Validate(ctx, ValidateInput{Code: "Save10", EventID: "E1", BaseAmount: 1000})
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, 900.0, res.FinalAmount)

	res, err = s.Validate(ctx, ValidateInput{Code: "NOPE", EventID: "E1", BaseAmount: 1000})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, MsgInvalid, res.Message)
}

func TestServiceCreateDuplicateConflicts(t *testing.T) {
	ctx := context.Background()
	s := newService(t)
	_, err := s.Create(ctx, CreateInput{Code: "DUP", DiscountPercent: 5})
	require.NoError(t, err)
	_, err = s.Create(ctx, CreateInput{Code: "dup", DiscountPercent: 5})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestServiceRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	_, err := s.Create(ctx, CreateInput{Code: "BIG", DiscountPercent: 150})
	assert.True(t, apperr.IsValidation(err))

	_, err = s.Validate(ctx, ValidateInput{Code: "", EventID: "E1", BaseAmount: -1})
	assert.True(t, apperr.IsValidation(err))
}

func TestServiceDelete(t *testing.T) {
	ctx := context.Background()
	s := newService(t)
	_, err := s.Create(ctx, CreateInput{Code: "GONE", DiscountPercent: 5})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "gone"))
	assert.ErrorIs(t, s.Delete(ctx, "gone"), apperr.ErrNotFound)

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
