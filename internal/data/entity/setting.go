package entity

import "time"

const (
	SettingAutoConfirmOnFullPayment = "auto_confirm_on_full_payment"
	SettingDefaultCurrency          = "default_currency"
)

type Setting struct {
	Key       string    `db:"key"`
	Value     string    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}
