package coupon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"conference/internal/apperr"
	"conference/internal/metrics"
	"conference/internal/model"
	"conference/internal/store"
	"conference/internal/validation"
)

// ValidateInput is the public coupon check request.
type ValidateInput struct {
	Code       string  `json:"code" validate:"required,max=64"`
	EventID    string  `json:"eventId" validate:"required"`
	BaseAmount float64 `json:"baseAmount" validate:"gte=0"`
}

// CreateInput is an admin coupon definition.
type CreateInput struct {
	Code            string     `json:"code" validate:"required,max=64"`
	DiscountPercent float64    `json:"discountPercent" validate:"gte=0,lte=100"`
	EventID         string     `json:"eventId"`
	ExpiryDate      *time.Time `json:"expiryDate"`
}

// Service exposes coupon lookups and admin management.
type Service struct {
	coupons store.Coupons
	log     zerolog.Logger
	now     func() time.Time
}

// NewService wires a coupon service over the coupon store.
func NewService(coupons store.Coupons, log zerolog.Logger) *Service {
	return &Service{coupons: coupons, log: log, now: time.Now}
}

// Validate looks up the coupon by its uppercased code and evaluates it.
func (s *Service) Validate(ctx context.Context, in ValidateInput) (Result, error) {
	if err := validation.Struct(ctx, in); err != nil {
		return Result{}, err
	}
	c, err := s.Lookup(ctx, in.Code)
	if err != nil {
		return Result{}, err
	}
	res := Evaluate(c, in.EventID, in.BaseAmount, s.now())
	metrics.CouponEvaluations.WithLabelValues(fmt.Sprint(res.Valid)).Inc()
	return res, nil
}

// Lookup returns the coupon for code, or nil when none exists.
func (s *Service) Lookup(ctx context.Context, code string) (*model.Coupon, error) {
	c, err := s.coupons.GetCoupon(ctx, normalize(code))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup coupon: %w", err)
	}
	return &c, nil
}

// Create stores a new coupon. Codes are stored uppercase.
func (s *Service) Create(ctx context.Context, in CreateInput) (model.Coupon, error) {
	if err := validation.Struct(ctx, in); err != nil {
		return model.Coupon{}, err
	}
	c := model.Coupon{
		Code:            normalize(in.Code),
		DiscountPercent: in.DiscountPercent,
		EventID:         strings.TrimSpace(in.EventID),
		ExpiryDate:      in.ExpiryDate,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.coupons.CreateCoupon(ctx, c); err != nil {
		return model.Coupon{}, err
	}
	s.log.Info().Str("code", c.Code).Float64("discount_percent", c.DiscountPercent).Msg("coupon created")
	return c, nil
}

// List returns every coupon.
func (s *Service) List(ctx context.Context) ([]model.Coupon, error) {
	return s.coupons.ListCoupons(ctx)
}

// Delete removes a coupon by code.
func (s *Service) Delete(ctx context.Context, code string) error {
	return s.coupons.DeleteCoupon(ctx, normalize(code))
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
