package request

type GuestRequest struct {
	Name  string `json:"name" validate:"required,max=150"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,min=6,max=30"`
}

type ReservationItemRequest struct {
	Type       string  `json:"type" validate:"required,oneof=accommodation activity package shuttle"`
	ResourceID string  `json:"resource_id" validate:"required,uuid"`
	Quantity   int     `json:"quantity" validate:"min=1"`
	UnitPrice  float64 `json:"unit_price" validate:"gt=0"`
	StartDate  string  `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate    string  `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type CreateReservationRequest struct {
	Guest    GuestRequest             `json:"guest" validate:"required"`
	Items    []ReservationItemRequest `json:"items" validate:"required,min=1,dive"`
	Currency string                   `json:"currency,omitempty" validate:"omitempty,len=3"`
	Notes    string                   `json:"notes,omitempty" validate:"max=1000"`
}
