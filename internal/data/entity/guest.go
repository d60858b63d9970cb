package entity

// Guest is keyed by contact email; name and phone are mutable.
type Guest struct {
	ID    GuestID `db:"id"`
	Name  string  `db:"name"`
	Email string  `db:"email"`
	Phone string  `db:"phone"`
	Timestamps
}
