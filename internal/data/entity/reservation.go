package entity

import (
	"fmt"
	"time"
)

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCompleted ReservationStatus = "completed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusNoShow    ReservationStatus = "no_show"
)

// reservationTransitions lists the legal moves out of each status.
var reservationTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationStatusPending:   {ReservationStatusConfirmed, ReservationStatusCancelled},
	ReservationStatusConfirmed: {ReservationStatusCompleted, ReservationStatusCancelled, ReservationStatusNoShow},
}

func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	for _, allowed := range reservationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal statuses accept no further transition.
func (s ReservationStatus) Terminal() bool {
	return len(reservationTransitions[s]) == 0
}

// HoldsInventory reports whether a reservation in this status occupies units.
func (s ReservationStatus) HoldsInventory() bool {
	switch s {
	case ReservationStatusPending, ReservationStatusConfirmed, ReservationStatusCompleted:
		return true
	}
	return false
}

// ReservationPaymentStatus is the aggregate payment state of a reservation.
// It is monotonic: pending -> partial -> paid.
type ReservationPaymentStatus string

const (
	ReservationPaymentPending ReservationPaymentStatus = "pending"
	ReservationPaymentPartial ReservationPaymentStatus = "partial"
	ReservationPaymentPaid    ReservationPaymentStatus = "paid"
)

func (s ReservationPaymentStatus) rank() int {
	switch s {
	case ReservationPaymentPartial:
		return 1
	case ReservationPaymentPaid:
		return 2
	}
	return 0
}

// Advance returns the later of s and next, so the status never regresses.
func (s ReservationPaymentStatus) Advance(next ReservationPaymentStatus) ReservationPaymentStatus {
	if next.rank() > s.rank() {
		return next
	}
	return s
}

type Reservation struct {
	ID                 ReservationID            `db:"id"`
	ConfirmationNumber string                   `db:"confirmation_number"`
	GuestID            GuestID                  `db:"guest_id"`
	Status             ReservationStatus        `db:"status"`
	PaymentStatus      ReservationPaymentStatus `db:"payment_status"`
	TotalAmount        float64                  `db:"total_amount"`
	Currency           string                   `db:"currency"`
	Notes              string                   `db:"notes"`
	Timestamps

	Items []*ReservationItem `db:"-"`
}

// ApplyTransition moves the reservation to next or reports why it cannot.
func (r *Reservation) ApplyTransition(next ReservationStatus, now time.Time) error {
	if !r.Status.CanTransitionTo(next) {
		return fmt.Errorf("reservation %s cannot move from %s to %s", r.ConfirmationNumber, r.Status, next)
	}
	r.Status = next
	r.UpdatedAt = now
	return nil
}

type ItemType string

const (
	ItemTypeAccommodation ItemType = "accommodation"
	ItemTypeActivity      ItemType = "activity"
	ItemTypePackage       ItemType = "package"
	ItemTypeShuttle       ItemType = "shuttle"
)

type ReservationItem struct {
	ID            ReservationItemID `db:"id"`
	ReservationID ReservationID     `db:"reservation_id"`
	Type          ItemType          `db:"item_type"`
	ResourceID    ResourceID        `db:"resource_id"`
	Quantity      int               `db:"quantity"`
	UnitPrice     float64           `db:"unit_price"`
	Amount        float64           `db:"amount"`
	StartDate     *time.Time        `db:"start_date"`
	EndDate       *time.Time        `db:"end_date"`
	CreatedAt     time.Time         `db:"created_at"`
}

// Range returns the item's date range, if it has one.
func (i *ReservationItem) Range() (DateRange, bool) {
	if i.StartDate == nil || i.EndDate == nil {
		return DateRange{}, false
	}
	return DateRange{Start: *i.StartDate, End: *i.EndDate}, true
}

// ComputeAmount prices the item: accommodation is charged per night, every
// other type per unit.
func (i *ReservationItem) ComputeAmount() float64 {
	units := float64(i.Quantity)
	if i.Type == ItemTypeAccommodation {
		if r, ok := i.Range(); ok {
			units *= float64(r.Nights())
		}
	}
	return RoundMoney(i.UnitPrice * units)
}
