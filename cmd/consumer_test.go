package cmd

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"resort-booking/internal/usecase"
	"resort-booking/pkg/stream"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockSync struct {
	mock.Mock
}

func (m *mockSync) ApplyEvent(ctx context.Context, eventType string, payload []byte, signature string) error {
	return m.Called(ctx, eventType, payload, signature).Error(0)
}

func TestChannelMessageHandler(t *testing.T) {
	msg := stream.Message{
		Value: []byte(`{"event_id":"e1"}`),
		Headers: map[string]string{
			"X-Channel-Event":     "booking.cancelled",
			"X-Channel-Signature": "sig",
		},
	}

	tests := []struct {
		name          string
		applyErr      error
		wantErr       bool
		wantPermanent bool
	}{
		{"applied", nil, false, false},
		{"bad signature", usecase.ErrInvalidSignature, true, true},
		{"malformed", fmt.Errorf("%w: missing event_id", usecase.ErrValidation), true, true},
		{"unknown type", usecase.ErrUnknownEventType, true, true},
		{"store failure retries", errors.New("conn reset"), true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sync := &mockSync{}
			sync.On("ApplyEvent", mock.Anything, "booking.cancelled", msg.Value, "sig").Return(tt.applyErr).Once()

			err := ChannelMessageHandler(sync)(context.Background(), msg)

			assert.Equal(t, tt.wantErr, err != nil)
			assert.Equal(t, tt.wantPermanent, stream.Permanent(err))
			sync.AssertExpectations(t)
		})
	}
}
