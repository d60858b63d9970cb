package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sampleRequest struct {
	Email string  `json:"email" validate:"required,email"`
	Kind  string  `json:"kind" validate:"required,oneof=a b"`
	Price float64 `json:"price" validate:"gt=0"`
}

func TestValidateStruct(t *testing.T) {
	errs := ValidateStruct(sampleRequest{Email: "x", Kind: "c"})
	assert.Equal(t, "Invalid email format", errs["Email"])
	assert.Equal(t, "Must be one of: a, b", errs["Kind"])
	assert.Equal(t, "Must be greater than 0", errs["Price"])

	assert.Nil(t, ValidateStruct(sampleRequest{Email: "guest@example.com", Kind: "a", Price: 10}))
}

func TestFormatValidationErrors(t *testing.T) {
	msg := FormatValidationErrors(map[string]string{"b": "two", "a": "one"})
	assert.Equal(t, "a: one; b: two", msg)
}
