package entity

import "time"

type ExternalBookingStatus string

const (
	ExternalBookingConfirmed ExternalBookingStatus = "confirmed"
	ExternalBookingModified  ExternalBookingStatus = "modified"
	ExternalBookingCancelled ExternalBookingStatus = "cancelled"
)

// ExternalBooking is a reservation ingested from an external channel,
// unique per (Platform, ExternalID).
type ExternalBooking struct {
	ID            ExternalBookingID     `db:"id"`
	Platform      string                `db:"platform"`
	ExternalID    string                `db:"external_id"`
	ResourceID    ResourceID            `db:"resource_id"`
	ReservationID *ReservationID        `db:"reservation_id"`
	StartDate     time.Time             `db:"start_date"`
	EndDate       time.Time             `db:"end_date"`
	Units         int                   `db:"units"`
	GuestName     string                `db:"guest_name"`
	GuestEmail    string                `db:"guest_email"`
	GuestPhone    string                `db:"guest_phone"`
	Amount        float64               `db:"amount"`
	Currency      string                `db:"currency"`
	Status        ExternalBookingStatus `db:"status"`
	LastSyncAt    time.Time             `db:"last_sync_at"`
	Timestamps
}

func (b *ExternalBooking) Range() DateRange {
	return DateRange{Start: b.StartDate, End: b.EndDate}
}
