package queue

// Message types published by the API and handled by the worker.
const (
	TypeRegistrationCreated = "registration.created"
	TypePaymentPaid         = "payment.paid"
	TypeContactSubmitted    = "contact.submitted"
)

// RegistrationCreated is the body of TypeRegistrationCreated.
type RegistrationCreated struct {
	RegistrationID string `json:"registrationId"`
	Code           string `json:"code"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	EventID        string `json:"eventId"`
}

// PaymentPaid is the body of TypePaymentPaid.
type PaymentPaid struct {
	RegistrationID string  `json:"registrationId"`
	Email          string  `json:"email"`
	Name           string  `json:"name"`
	OrderID        string  `json:"orderId"`
	PaymentID      string  `json:"paymentId"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
}

// ContactSubmitted is the body of TypeContactSubmitted.
type ContactSubmitted struct {
	ContactID string `json:"contactId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
}
