package entity

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
)

// ID is an opaque identifier bound to one entity type, so a ReservationID can
// never be passed where a PaymentID is expected. Conversion from and to text
// happens only at the HTTP and SQL boundaries.
type ID[T any] uuid.UUID

func NewID[T any]() ID[T] {
	return ID[T](uuid.New())
}

func ParseID[T any](s string) (ID[T], error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ID[T]{}, err
	}
	return ID[T](u), nil
}

func (id ID[T]) String() string {
	return uuid.UUID(id).String()
}

func (id ID[T]) IsZero() bool {
	return uuid.UUID(id) == uuid.Nil
}

func (id ID[T]) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

func (id *ID[T]) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

// Value implements driver.Valuer
func (id ID[T]) Value() (driver.Value, error) {
	return uuid.UUID(id).String(), nil
}

// Scan implements sql.Scanner
func (id *ID[T]) Scan(src any) error {
	return (*uuid.UUID)(id).Scan(src)
}

type (
	ResourceID        = ID[Resource]
	ManualBlockID     = ID[ManualBlock]
	GuestID           = ID[Guest]
	ReservationID     = ID[Reservation]
	ReservationItemID = ID[ReservationItem]
	ExternalBookingID = ID[ExternalBooking]
	PaymentID         = ID[Payment]
)

type Timestamps struct {
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
