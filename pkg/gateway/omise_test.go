package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/omise/omise-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(10050), ToMinorUnits(100.5, "THB"))
	assert.Equal(t, int64(4000), ToMinorUnits(39.999995, "thb"))
	assert.Equal(t, int64(1), ToMinorUnits(0.005, "USD"))
	assert.Equal(t, 100.5, FromMinorUnits(10050, "THB"))
}

func TestMinorUnits_CurrencyExponent(t *testing.T) {
	assert.Equal(t, int64(1500), ToMinorUnits(1500, "JPY"))
	assert.Equal(t, int64(1500), ToMinorUnits(1500, "jpy"))
	assert.Equal(t, 1500.0, FromMinorUnits(1500, "jpy"))
	assert.Equal(t, int64(1250), ToMinorUnits(1.25, "KWD"))
	assert.Equal(t, 1.25, FromMinorUnits(1250, "KWD"))
}

// omiseCharge sets the id promoted from the embedded omise.Base.
func omiseCharge(id string, ch *omise.Charge) *omise.Charge {
	ch.ID = id
	return ch
}

func TestToCharge(t *testing.T) {
	code, msg := "insufficient_fund", "insufficient funds in the account"

	tests := []struct {
		name   string
		charge *omise.Charge
		want   Charge
	}{
		{
			name:   "successful",
			charge: omiseCharge("chrg_1", &omise.Charge{Status: omise.ChargeStatus("successful"), Amount: 10000, Currency: "thb"}),
			want:   Charge{ID: "chrg_1", Status: ChargeSuccessful, Amount: 100, Currency: "THB"},
		},
		{
			name: "failed with reason",
			charge: omiseCharge("chrg_2", &omise.Charge{Status: omise.ChargeStatus("failed"), Amount: 500, Currency: "thb",
				FailureCode: &code, FailureMessage: &msg}),
			want: Charge{ID: "chrg_2", Status: ChargeFailed, Amount: 5, Currency: "THB", FailureReason: code + ": " + msg},
		},
		{
			name:   "zero-decimal currency",
			charge: omiseCharge("chrg_4", &omise.Charge{Status: omise.ChargeStatus("successful"), Amount: 12000, Currency: "jpy"}),
			want:   Charge{ID: "chrg_4", Status: ChargeSuccessful, Amount: 12000, Currency: "JPY"},
		},
		{
			name:   "awaiting authorization is pending",
			charge: omiseCharge("chrg_3", &omise.Charge{Status: omise.ChargeStatus("pending"), Amount: 500, Currency: "thb"}),
			want:   Charge{ID: "chrg_3", Status: ChargePending, Amount: 5, Currency: "THB"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, *toCharge(tt.charge))
		})
	}
}

func TestCreateCharge_RejectsIncompleteRequest(t *testing.T) {
	g := &OmiseGateway{}

	_, err := g.CreateCharge(context.Background(), ChargeRequest{Amount: 100, Currency: "THB"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidCharge))

	_, err = g.CreateCharge(context.Background(), ChargeRequest{Amount: 0, Currency: "THB", CardToken: "tokn_1"})
	assert.True(t, errors.Is(err, ErrInvalidCharge))
}
