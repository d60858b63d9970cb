package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReservationStatus_Transitions(t *testing.T) {
	assert.True(t, ReservationStatusPending.CanTransitionTo(ReservationStatusConfirmed))
	assert.True(t, ReservationStatusPending.CanTransitionTo(ReservationStatusCancelled))
	assert.True(t, ReservationStatusConfirmed.CanTransitionTo(ReservationStatusCompleted))
	assert.True(t, ReservationStatusConfirmed.CanTransitionTo(ReservationStatusNoShow))
	assert.True(t, ReservationStatusConfirmed.CanTransitionTo(ReservationStatusCancelled))

	assert.False(t, ReservationStatusPending.CanTransitionTo(ReservationStatusNoShow))
	assert.False(t, ReservationStatusPending.CanTransitionTo(ReservationStatusCompleted))
	assert.False(t, ReservationStatusCancelled.CanTransitionTo(ReservationStatusConfirmed))
	assert.False(t, ReservationStatusCompleted.CanTransitionTo(ReservationStatusCancelled))

	assert.True(t, ReservationStatusCancelled.Terminal())
	assert.True(t, ReservationStatusNoShow.Terminal())
	assert.False(t, ReservationStatusConfirmed.Terminal())
}

func TestReservation_ApplyTransition(t *testing.T) {
	now := time.Now()
	r := &Reservation{ConfirmationNumber: "RSV-1", Status: ReservationStatusPending}

	assert.Error(t, r.ApplyTransition(ReservationStatusNoShow, now))
	assert.Equal(t, ReservationStatusPending, r.Status)

	assert.NoError(t, r.ApplyTransition(ReservationStatusConfirmed, now))
	assert.Equal(t, ReservationStatusConfirmed, r.Status)
	assert.Equal(t, now, r.UpdatedAt)
}

func TestReservationPaymentStatus_AdvanceIsMonotonic(t *testing.T) {
	assert.Equal(t, ReservationPaymentPartial, ReservationPaymentPending.Advance(ReservationPaymentPartial))
	assert.Equal(t, ReservationPaymentPaid, ReservationPaymentPartial.Advance(ReservationPaymentPaid))
	assert.Equal(t, ReservationPaymentPaid, ReservationPaymentPaid.Advance(ReservationPaymentPartial))
	assert.Equal(t, ReservationPaymentPaid, ReservationPaymentPaid.Advance(ReservationPaymentPending))
	assert.Equal(t, ReservationPaymentPartial, ReservationPaymentPartial.Advance(ReservationPaymentPending))
}

func TestReservationItem_ComputeAmount(t *testing.T) {
	start, end := day("2026-11-01"), day("2026-11-03")

	accommodation := &ReservationItem{Type: ItemTypeAccommodation, Quantity: 1, UnitPrice: 50, StartDate: &start, EndDate: &end}
	assert.Equal(t, 100.0, accommodation.ComputeAmount())

	twoRooms := &ReservationItem{Type: ItemTypeAccommodation, Quantity: 2, UnitPrice: 50, StartDate: &start, EndDate: &end}
	assert.Equal(t, 200.0, twoRooms.ComputeAmount())

	shuttle := &ReservationItem{Type: ItemTypeShuttle, Quantity: 3, UnitPrice: 12.5, StartDate: &start, EndDate: &end}
	assert.Equal(t, 37.5, shuttle.ComputeAmount())
}

func TestCoversAmount(t *testing.T) {
	assert.True(t, CoversAmount(60+39.999995, 100, DefaultPaymentEpsilon))
	assert.True(t, CoversAmount(100.01, 100, DefaultPaymentEpsilon))
	assert.False(t, CoversAmount(99.99, 100, DefaultPaymentEpsilon))
}

func TestID_RoundTrip(t *testing.T) {
	id := NewID[Reservation]()
	parsed, err := ParseID[Reservation](id.String())
	assert.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseID[Reservation]("not-a-uuid")
	assert.Error(t, err)
	assert.True(t, ReservationID{}.IsZero())
}
