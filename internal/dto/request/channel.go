package request

// ChannelEventEnvelope is the raw webhook body sent by an external booking
// platform, before it is parsed into a typed event.
type ChannelEventEnvelope struct {
	EventType  string             `json:"event_type"`
	EventID    string             `json:"event_id" validate:"required"`
	OccurredAt string             `json:"occurred_at" validate:"required"`
	Data       ChannelBookingData `json:"data"`
}

type ChannelBookingData struct {
	Platform     string       `json:"platform" validate:"required"`
	ExternalID   string       `json:"external_id" validate:"required"`
	PropertyCode string       `json:"property_code"`
	RoomCode     string       `json:"room_code"`
	Guest        ChannelGuest `json:"guest"`
	CheckIn      string       `json:"check_in"`
	CheckOut     string       `json:"check_out"`
	Units        int          `json:"units"`
	Amount       float64      `json:"amount"`
	Currency     string       `json:"currency"`
	// ConfirmationNumber links the channel booking to a local reservation
	// for the same stay, when the platform carries one.
	ConfirmationNumber string `json:"confirmation_number"`
}

type ChannelGuest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}
