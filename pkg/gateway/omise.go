package gateway

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"
)

type ChargeStatus string

const (
	ChargeSuccessful ChargeStatus = "successful"
	ChargeFailed     ChargeStatus = "failed"
	ChargePending    ChargeStatus = "pending"
)

var ErrInvalidCharge = errors.New("invalid charge parameters")

type ChargeRequest struct {
	Amount      float64
	Currency    string
	CardToken   string
	SourceID    string
	ReturnURI   string
	Description string
	Metadata    map[string]any
}

// Charge is the gateway's view of one charge, amounts in major units.
type Charge struct {
	ID            string
	Status        ChargeStatus
	Amount        float64
	Currency      string
	FailureReason string
}

type OmiseGateway struct {
	client *omise.Client
}

func NewOmiseGateway(publicKey, secretKey string) (*OmiseGateway, error) {
	c, err := omise.NewClient(publicKey, secretKey)
	if err != nil {
		return nil, fmt.Errorf("create omise client: %w", err)
	}
	return &OmiseGateway{client: c}, nil
}

func (g *OmiseGateway) CreateCharge(_ context.Context, req ChargeRequest) (*Charge, error) {
	if req.Amount <= 0 || req.Currency == "" || (req.CardToken == "" && req.SourceID == "") {
		return nil, ErrInvalidCharge
	}

	ch := &omise.Charge{}
	op := &operations.CreateCharge{
		Amount:      ToMinorUnits(req.Amount, req.Currency),
		Currency:    strings.ToLower(req.Currency),
		Card:        req.CardToken,
		Source:      req.SourceID,
		ReturnURI:   req.ReturnURI,
		Description: req.Description,
		Metadata:    req.Metadata,
	}
	if err := g.client.Do(ch, op); err != nil {
		return nil, fmt.Errorf("omise create charge: %w", err)
	}
	return toCharge(ch), nil
}

func (g *OmiseGateway) RetrieveCharge(_ context.Context, chargeID string) (*Charge, error) {
	ch := &omise.Charge{}
	if err := g.client.Do(ch, &operations.RetrieveCharge{ChargeID: chargeID}); err != nil {
		return nil, fmt.Errorf("omise retrieve charge %s: %w", chargeID, err)
	}
	return toCharge(ch), nil
}

func toCharge(ch *omise.Charge) *Charge {
	c := &Charge{
		ID:       ch.ID,
		Amount:   FromMinorUnits(ch.Amount, ch.Currency),
		Currency: strings.ToUpper(ch.Currency),
	}

	// pending and awaiting_authorize both wait for the final webhook
	switch string(ch.Status) {
	case string(ChargeSuccessful):
		c.Status = ChargeSuccessful
	case string(ChargeFailed):
		c.Status = ChargeFailed
	default:
		c.Status = ChargePending
	}

	if ch.FailureCode != nil {
		c.FailureReason = *ch.FailureCode
	}
	if ch.FailureMessage != nil {
		if c.FailureReason != "" {
			c.FailureReason += ": "
		}
		c.FailureReason += *ch.FailureMessage
	}
	return c
}

// currencyExponent is the number of minor-unit digits for currencies that do
// not use two (ISO 4217).
var currencyExponent = map[string]int{
	"BIF": 0, "CLP": 0, "DJF": 0, "GNF": 0, "ISK": 0, "JPY": 0, "KMF": 0, "KRW": 0,
	"PYG": 0, "RWF": 0, "UGX": 0, "VND": 0, "VUV": 0, "XAF": 0, "XOF": 0, "XPF": 0,
	"BHD": 3, "IQD": 3, "JOD": 3, "KWD": 3, "LYD": 3, "OMR": 3, "TND": 3,
}

func minorUnitFactor(currency string) float64 {
	exp, ok := currencyExponent[strings.ToUpper(currency)]
	if !ok {
		exp = 2
	}
	return math.Pow10(exp)
}

// ToMinorUnits converts a major-unit amount to the gateway's smallest unit
// of currency.
func ToMinorUnits(amount float64, currency string) int64 {
	return int64(math.Round(amount * minorUnitFactor(currency)))
}

func FromMinorUnits(amount int64, currency string) float64 {
	return float64(amount) / minorUnitFactor(currency)
}
