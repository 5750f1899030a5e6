// Package coupon validates discount codes and computes discounted amounts.
package coupon

import (
	"math"
	"time"

	"conference/internal/model"
)

const (
	MsgInvalid    = "Invalid coupon code"
	MsgExpired    = "Coupon expired"
	MsgWrongEvent = "Coupon not valid for this event"
)

// Result is the outcome of evaluating a coupon against an amount.
type Result struct {
	Valid       bool    `json:"valid"`
	Discount    float64 `json:"discount"`
	FinalAmount float64 `json:"finalAmount"`
	Message     string  `json:"message,omitempty"`
}

// Evaluate applies c to baseAmount for eventID at now. A nil coupon is
// invalid. The discount is rounded half up to a whole unit.
func Evaluate(c *model.Coupon, eventID string, baseAmount float64, now time.Time) Result {
	reject := func(msg string) Result {
		return Result{Valid: false, Discount: 0, FinalAmount: baseAmount, Message: msg}
	}
	if c == nil {
		return reject(MsgInvalid)
	}
	if c.ExpiryDate != nil && c.ExpiryDate.Before(now) {
		return reject(MsgExpired)
	}
	if c.EventID != "" && c.EventID != eventID {
		return reject(MsgWrongEvent)
	}
	discount := roundHalfUp(baseAmount * c.DiscountPercent / 100)
	return Result{Valid: true, Discount: discount, FinalAmount: baseAmount - discount}
}

func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}
