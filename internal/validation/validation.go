package validation

import (
	"context"
	"errors"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"conference/internal/apperr"
	"conference/internal/model"
)

// CodePattern is the shape of a registration code.
var CodePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

var global = New()

const (
	msgRequired   = "is required"
	msgEmail      = "must be a valid email"
	msgTooLong    = "exceeds maximum length"
	msgTooShort   = "is below minimum length"
	msgTooLarge   = "exceeds maximum value"
	msgTooSmall   = "is below minimum value"
	msgCode       = "must be 6 uppercase letters or digits"
	msgEnum       = "is not an allowed value"
	msgSingleLine = "must not contain line breaks or control characters"
	msgUnknownTag = "is invalid"
)

// New returns a validator with the custom tags registered and JSON field
// names used in error reports.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("regcode", validateCode)
	_ = v.RegisterValidation("attendance_status", validateAttendanceStatus)
	_ = v.RegisterValidation("contact_status", validateContactStatus)
	_ = v.RegisterValidation("reg_status", validateRegistrationStatus)
	_ = v.RegisterValidation("payment_status", validatePaymentStatus)
	_ = v.RegisterValidation("singleline", validateSingleLine)
	return v
}

func validateCode(fl validator.FieldLevel) bool {
	return CodePattern.MatchString(fl.Field().String())
}

// validateSingleLine rejects control characters, CR and LF included.
func validateSingleLine(fl validator.FieldLevel) bool {
	return strings.IndexFunc(fl.Field().String(), unicode.IsControl) < 0
}

func validateAttendanceStatus(fl validator.FieldLevel) bool {
	return model.AttendanceStatus(fl.Field().String()).Valid()
}

func validateContactStatus(fl validator.FieldLevel) bool {
	return model.ContactStatus(fl.Field().String()).Valid()
}

func validateRegistrationStatus(fl validator.FieldLevel) bool {
	switch model.RegistrationStatus(fl.Field().String()) {
	case model.StatusConfirmed, model.StatusPending, model.StatusCancelled:
		return true
	}
	return false
}

func validatePaymentStatus(fl validator.FieldLevel) bool {
	switch model.PaymentStatus(fl.Field().String()) {
	case model.PaymentPending, model.PaymentPaid, model.PaymentFailed:
		return true
	}
	return false
}

// Struct validates s and returns an *apperr.ValidationError listing every
// failing field, or nil.
func Struct(ctx context.Context, s any) error {
	err := global.StructCtx(ctx, s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Message("invalid input")
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = describe(fe)
	}
	return &apperr.ValidationError{Message: "validation failed", Fields: fields}
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgRequired
	case "email":
		return msgEmail
	case "max":
		if fe.Kind() == reflect.String {
			return msgTooLong
		}
		return msgTooLarge
	case "min":
		if fe.Kind() == reflect.String {
			return msgTooShort
		}
		return msgTooSmall
	case "lt", "lte":
		return msgTooLarge
	case "gt", "gte":
		return msgTooSmall
	case "regcode":
		return msgCode
	case "singleline":
		return msgSingleLine
	case "attendance_status", "contact_status", "reg_status", "payment_status", "oneof":
		return msgEnum
	default:
		return msgUnknownTag
	}
}
