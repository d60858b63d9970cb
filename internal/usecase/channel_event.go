package usecase

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"resort-booking/internal/data/entity"
	"resort-booking/internal/dto/request"
	"resort-booking/pkg/utils"
)

const (
	ChannelBookingCreated   = "booking.created"
	ChannelBookingUpdated   = "booking.updated"
	ChannelBookingModified  = "booking.modified"
	ChannelBookingCancelled = "booking.cancelled"
)

// ChannelEvent is one parsed external platform event. The concrete types are
// BookingCreated, BookingUpdated and BookingCancelled.
type ChannelEvent interface {
	Meta() EventMeta
}

type EventMeta struct {
	EventID    string
	Platform   string
	ExternalID string
	OccurredAt time.Time
}

func (m EventMeta) Meta() EventMeta { return m }

// ChannelBooking is the booking snapshot carried by created and updated events.
type ChannelBooking struct {
	PropertyCode string
	RoomCode     string
	GuestName    string
	GuestEmail   string
	GuestPhone   string
	Stay         entity.DateRange
	Units        int
	Amount       float64
	Currency     string
	// Confirmation is the local confirmation number, if the platform knows it.
	Confirmation string
}

type BookingCreated struct {
	EventMeta
	Booking ChannelBooking
}

type BookingUpdated struct {
	EventMeta
	Booking ChannelBooking
}

type BookingCancelled struct {
	EventMeta
}

// ParseChannelEvent decodes a raw webhook body into a typed event. eventType
// comes from the transport (header) and may be empty, in which case the
// envelope's own type is used.
func ParseChannelEvent(eventType string, payload []byte) (ChannelEvent, error) {
	var env request.ChannelEventEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("%w: malformed event body: %v", ErrValidation, err)
	}

	eventType = normalizeEventType(eventType)
	bodyType := normalizeEventType(env.EventType)
	switch {
	case eventType == "":
		eventType = bodyType
	case bodyType != "" && bodyType != eventType:
		return nil, fmt.Errorf("%w: event type %q does not match body type %q", ErrValidation, eventType, bodyType)
	}

	if errs := utils.ValidateStruct(&env); len(errs) > 0 {
		return nil, validationError(errs)
	}

	occurredAt, err := time.Parse(time.RFC3339, env.OccurredAt)
	if err != nil {
		return nil, fmt.Errorf("%w: occurred_at must be RFC3339: %v", ErrValidation, err)
	}

	meta := EventMeta{
		EventID:    env.EventID,
		Platform:   strings.ToLower(env.Data.Platform),
		ExternalID: env.Data.ExternalID,
		OccurredAt: occurredAt.UTC(),
	}

	switch eventType {
	case ChannelBookingCreated:
		b, err := parseChannelBooking(env.Data)
		if err != nil {
			return nil, err
		}
		return BookingCreated{EventMeta: meta, Booking: b}, nil
	case ChannelBookingUpdated, ChannelBookingModified:
		b, err := parseChannelBooking(env.Data)
		if err != nil {
			return nil, err
		}
		return BookingUpdated{EventMeta: meta, Booking: b}, nil
	case ChannelBookingCancelled:
		return BookingCancelled{EventMeta: meta}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, eventType)
}

// normalizeEventType accepts both "created" and "booking.created".
func normalizeEventType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	if t != "" && !strings.HasPrefix(t, "booking.") {
		t = "booking." + t
	}
	return t
}

func parseChannelBooking(d request.ChannelBookingData) (ChannelBooking, error) {
	if d.PropertyCode == "" || d.RoomCode == "" {
		return ChannelBooking{}, fmt.Errorf("%w: property_code and room_code are required", ErrValidation)
	}

	stay, err := entity.ParseDateRange(d.CheckIn, d.CheckOut)
	if err != nil {
		return ChannelBooking{}, fmt.Errorf("%w: stay %s..%s: %v", ErrValidation, d.CheckIn, d.CheckOut, err)
	}

	units := d.Units
	if units == 0 {
		units = 1
	}
	if units < 0 || d.Amount < 0 {
		return ChannelBooking{}, fmt.Errorf("%w: units and amount must not be negative", ErrValidation)
	}

	return ChannelBooking{
		PropertyCode: d.PropertyCode,
		RoomCode:     d.RoomCode,
		GuestName:    d.Guest.Name,
		GuestEmail:   strings.ToLower(d.Guest.Email),
		GuestPhone:   d.Guest.Phone,
		Stay:         stay,
		Units:        units,
		Amount:       entity.RoundMoney(d.Amount),
		Currency:     strings.ToUpper(d.Currency),
		Confirmation: strings.ToUpper(strings.TrimSpace(d.ConfirmationNumber)),
	}, nil
}
