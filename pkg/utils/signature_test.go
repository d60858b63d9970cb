package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"event_type":"booking.created"}`)
	sig := SignPayload("s3cret", payload)

	assert.True(t, VerifySignature("s3cret", payload, sig))
	assert.True(t, VerifySignature("s3cret", payload, "sha256="+sig))
	assert.False(t, VerifySignature("other", payload, sig))
	assert.False(t, VerifySignature("s3cret", []byte(`{"event_type":"booking.cancelled"}`), sig))
	assert.False(t, VerifySignature("s3cret", payload, "not-hex"))
	assert.False(t, VerifySignature("", payload, sig))
	assert.False(t, VerifySignature("s3cret", payload, ""))
}
