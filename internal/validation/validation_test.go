package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conference/internal/apperr"
)

type sample struct {
	Name   string  `json:"name" validate:"required,max=10,singleline"`
	Email  string  `json:"email" validate:"required,email"`
	Code   string  `json:"code" validate:"omitempty,regcode"`
	Status string  `json:"status" validate:"omitempty,attendance_status"`
	Amount float64 `json:"amount" validate:"gte=0"`
}

func TestStruct_Valid(t *testing.T) {
	err := Struct(context.Background(), sample{Name: "Ada", Email: "ada@example.com", Code: "AB12CD", Status: "late"})
	assert.NoError(t, err)
}

func TestStruct_FieldErrorsUseJSONNames(t *testing.T) {
	err := Struct(context.Background(), sample{Email: "nope", Code: "abc", Status: "sleeping", Amount: -1})
	require.Error(t, err)

	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, msgRequired, ve.Fields["name"])
	assert.Equal(t, msgEmail, ve.Fields["email"])
	assert.Equal(t, msgCode, ve.Fields["code"])
	assert.Equal(t, msgEnum, ve.Fields["status"])
	assert.Equal(t, msgTooSmall, ve.Fields["amount"])
}

func TestCodePattern(t *testing.T) {
	assert.True(t, CodePattern.MatchString("A1B2C3"))
	assert.False(t, CodePattern.MatchString("a1b2c3"))
	assert.False(t, CodePattern.MatchString("A1B2C"))
	assert.False(t, CodePattern.MatchString("A1B2C3D"))
}

func TestSingleLine(t *testing.T) {
	for _, bad := range []string{"a\r\nBcc: x@example.com", "a\nb", "tab\there", "nul\x00"} {
		err := Struct(context.Background(), sample{Name: bad, Email: "ada@example.com"})
		var ve *apperr.ValidationError
		require.ErrorAs(t, err, &ve, bad)
		assert.Equal(t, msgSingleLine, ve.Fields["name"], bad)
	}
	assert.NoError(t, Struct(context.Background(), sample{Name: "Zoë O'Neil", Email: "ada@example.com"}))
}
