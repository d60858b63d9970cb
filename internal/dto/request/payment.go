package request

type InitiatePaymentRequest struct {
	Amount    float64 `json:"amount" validate:"gt=0"`
	Currency  string  `json:"currency,omitempty" validate:"omitempty,len=3"`
	Method    string  `json:"method" validate:"required,oneof=card promptpay bank_transfer cash"`
	CardToken string  `json:"card_token,omitempty"`
	SourceID  string  `json:"source_id,omitempty"`
	ReturnURI string  `json:"return_uri,omitempty" validate:"omitempty,url"`
}

// PaymentCallbackRequest is the gateway's confirmation of one transaction.
type PaymentCallbackRequest struct {
	GatewayRef    string  `json:"gateway_ref" validate:"required,max=100"`
	Amount        float64 `json:"amount" validate:"gt=0"`
	Currency      string  `json:"currency" validate:"required,len=3"`
	Success       *bool   `json:"success" validate:"required"`
	FailureReason string  `json:"failure_reason,omitempty" validate:"max=500"`
}
