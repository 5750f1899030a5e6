package store

import (
	"context"
	"time"

	"conference/internal/model"
)

// DefaultListLimit applies when a filter carries no limit.
const DefaultListLimit = 200

// MaxListLimit caps caller-supplied limits.
const MaxListLimit = 1000

// RegistrationFilter narrows registration listings. Empty fields match all.
type RegistrationFilter struct {
	EventID     string
	CommitteeID string
	Email       string
	Limit       int
}

// AttendanceFilter narrows attendance listings. Empty fields match all.
// Since and Until bound the record's check-in time as [Since, Until).
type AttendanceFilter struct {
	EventID        string
	CommitteeID    string
	RegistrationID string
	Since          time.Time
	Until          time.Time
	Limit          int
}

// ScoreFilter narrows score listings. Empty fields match all.
type ScoreFilter struct {
	EventID        string
	CommitteeID    string
	RegistrationID string
}

// Registrations persists registration documents.
type Registrations interface {
	CreateRegistration(ctx context.Context, r model.Registration) error
	GetRegistration(ctx context.Context, id string) (model.Registration, error)
	GetRegistrationByCode(ctx context.Context, code string) (model.Registration, error)
	UpdateRegistration(ctx context.Context, r model.Registration) error
	DeleteRegistration(ctx context.Context, id string) error
	ListRegistrations(ctx context.Context, f RegistrationFilter) ([]model.Registration, error)
}

// Attendance persists attendance records.
type Attendance interface {
	CreateAttendance(ctx context.Context, a model.AttendanceRecord) error
	GetAttendance(ctx context.Context, id string) (model.AttendanceRecord, error)
	UpdateAttendance(ctx context.Context, a model.AttendanceRecord) error
	ListAttendance(ctx context.Context, f AttendanceFilter) ([]model.AttendanceRecord, error)
}

// Coupons persists coupon documents keyed by uppercase code.
type Coupons interface {
	CreateCoupon(ctx context.Context, c model.Coupon) error
	GetCoupon(ctx context.Context, code string) (model.Coupon, error)
	ListCoupons(ctx context.Context) ([]model.Coupon, error)
	DeleteCoupon(ctx context.Context, code string) error
}

// Scores persists score entries.
type Scores interface {
	CreateScore(ctx context.Context, s model.ScoreEntry) error
	ListScores(ctx context.Context, f ScoreFilter) ([]model.ScoreEntry, error)
}

// Contacts persists contact form submissions.
type Contacts interface {
	CreateContact(ctx context.Context, c model.ContactSubmission) error
	GetContact(ctx context.Context, id string) (model.ContactSubmission, error)
	UpdateContact(ctx context.Context, c model.ContactSubmission) error
	DeleteContact(ctx context.Context, id string) error
	ListContacts(ctx context.Context, status model.ContactStatus) ([]model.ContactSubmission, error)
}

// Payments persists gateway payments.
type Payments interface {
	CreatePayment(ctx context.Context, p model.Payment) error
	GetPaymentByOrder(ctx context.Context, orderID string) (model.Payment, error)
	UpdatePayment(ctx context.Context, p model.Payment) error
	LatestPayment(ctx context.Context, registrationID string) (model.Payment, error)
}

// Events persists the event catalog.
type Events interface {
	CreateEvent(ctx context.Context, e model.Event) error
	GetEvent(ctx context.Context, id string) (model.Event, error)
	ListEvents(ctx context.Context) ([]model.Event, error)
}

// Store bundles every collection a backend provides.
type Store interface {
	Registrations
	Attendance
	Coupons
	Scores
	Contacts
	Payments
	Events
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// ClampLimit applies the default and maximum list limits.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
