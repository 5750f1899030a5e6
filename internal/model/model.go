package model

import "time"

// RegistrationStatus is the enrollment state of a registration.
type RegistrationStatus string

const (
	StatusConfirmed RegistrationStatus = "confirmed"
	StatusPending   RegistrationStatus = "pending"
	StatusCancelled RegistrationStatus = "cancelled"
)

// PaymentStatus is the payment summary carried on a registration.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// AttendanceStatus is the status of a single attendance record.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
)

// Valid reports whether s is one of the fixed attendance statuses.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused:
		return true
	}
	return false
}

// ContactStatus tracks admin handling of a contact submission.
type ContactStatus string

const (
	ContactNew      ContactStatus = "new"
	ContactRead     ContactStatus = "read"
	ContactReplied  ContactStatus = "replied"
	ContactArchived ContactStatus = "archived"
)

// Valid reports whether s is a known contact status.
func (s ContactStatus) Valid() bool {
	switch s {
	case ContactNew, ContactRead, ContactReplied, ContactArchived:
		return true
	}
	return false
}

// Registration is a participant's enrollment for an event.
type Registration struct {
	ID            string             `json:"id" bson:"_id"`
	Code          string             `json:"code" bson:"code"`
	Name          string             `json:"name" bson:"name"`
	Email         string             `json:"email" bson:"email"`
	Phone         string             `json:"phone,omitempty" bson:"phone,omitempty"`
	School        string             `json:"school" bson:"school"`
	EventID       string             `json:"eventId" bson:"event_id"`
	CommitteeID   string             `json:"committeeId,omitempty" bson:"committee_id,omitempty"`
	Portfolio     string             `json:"portfolio,omitempty" bson:"portfolio,omitempty"`
	Status        RegistrationStatus `json:"status" bson:"status"`
	PaymentStatus PaymentStatus      `json:"paymentStatus" bson:"payment_status"`
	CheckedIn     bool               `json:"checkedIn" bson:"checked_in"`
	CheckedInAt   *time.Time         `json:"checkedInAt" bson:"checked_in_at"`
	CreatedAt     time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updated_at"`
}

// AttendanceRecord is a per-session attendance entry, independent of the
// registration's checkedIn flag.
type AttendanceRecord struct {
	ID               string           `json:"id" bson:"_id"`
	RegistrationID   string           `json:"registrationId" bson:"registration_id"`
	EventID          string           `json:"eventId" bson:"event_id"`
	CommitteeID      string           `json:"committeeId,omitempty" bson:"committee_id,omitempty"`
	AttendanceStatus AttendanceStatus `json:"attendanceStatus" bson:"attendance_status"`
	CheckInTime      time.Time        `json:"checkInTime" bson:"check_in_time"`
	CheckOutTime     *time.Time       `json:"checkOutTime" bson:"check_out_time"`
	MarkedBy         string           `json:"markedBy,omitempty" bson:"marked_by,omitempty"`
	CreatedAt        time.Time        `json:"createdAt" bson:"created_at"`
	UpdatedAt        time.Time        `json:"updatedAt" bson:"updated_at"`
}

// Coupon is a discount code, optionally scoped to one event.
type Coupon struct {
	Code            string     `json:"code" bson:"_id"`
	DiscountPercent float64    `json:"discountPercent" bson:"discount_percent"`
	EventID         string     `json:"eventId,omitempty" bson:"event_id,omitempty"`
	ExpiryDate      *time.Time `json:"expiryDate,omitempty" bson:"expiry_date,omitempty"`
	CreatedAt       time.Time  `json:"createdAt" bson:"created_at"`
}

// ScoreEntry is one score submission for a delegate.
type ScoreEntry struct {
	ID             string    `json:"id" bson:"_id"`
	RegistrationID string    `json:"registrationId" bson:"registration_id"`
	EventID        string    `json:"eventId" bson:"event_id"`
	CommitteeID    string    `json:"committeeId,omitempty" bson:"committee_id,omitempty"`
	Score          float64   `json:"score" bson:"score"`
	Feedback       string    `json:"feedback,omitempty" bson:"feedback,omitempty"`
	SubmittedBy    string    `json:"submittedBy,omitempty" bson:"submitted_by,omitempty"`
	CreatedAt      time.Time `json:"createdAt" bson:"created_at"`
}

// ContactSubmission is a message sent through the public contact form.
type ContactSubmission struct {
	ID        string        `json:"id" bson:"_id"`
	Name      string        `json:"name" bson:"name"`
	Email     string        `json:"email" bson:"email"`
	Subject   string        `json:"subject,omitempty" bson:"subject,omitempty"`
	Message   string        `json:"message" bson:"message"`
	Status    ContactStatus `json:"status" bson:"status"`
	CreatedAt time.Time     `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time     `json:"updatedAt" bson:"updated_at"`
}

// PaymentRecordStatus is the gateway-side state of a payment.
type PaymentRecordStatus string

const (
	PaymentCreated  PaymentRecordStatus = "created"
	PaymentCaptured PaymentRecordStatus = "paid"
	PaymentRejected PaymentRecordStatus = "failed"
)

// Payment is a gateway order raised for a registration.
type Payment struct {
	ID             string              `json:"id" bson:"_id"`
	RegistrationID string              `json:"registrationId" bson:"registration_id"`
	OrderID        string              `json:"orderId" bson:"order_id"`
	PaymentID      string              `json:"paymentId,omitempty" bson:"payment_id,omitempty"`
	Amount         float64             `json:"amount" bson:"amount"`
	Discount       float64             `json:"discount" bson:"discount"`
	CouponCode     string              `json:"couponCode,omitempty" bson:"coupon_code,omitempty"`
	Currency       string              `json:"currency" bson:"currency"`
	Status         PaymentRecordStatus `json:"status" bson:"status"`
	CreatedAt      time.Time           `json:"createdAt" bson:"created_at"`
	UpdatedAt      time.Time           `json:"updatedAt" bson:"updated_at"`
}

// Event is a conference event delegates register for.
type Event struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Price     float64   `json:"price" bson:"price"`
	Currency  string    `json:"currency" bson:"currency"`
	StartDate time.Time `json:"startDate" bson:"start_date"`
	EndDate   time.Time `json:"endDate" bson:"end_date"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}
