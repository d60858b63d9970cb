package entity

import "math"

// DefaultPaymentEpsilon absorbs float rounding when comparing paid totals.
const DefaultPaymentEpsilon = 0.005

func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// CoversAmount reports whether paid settles owed within an absolute epsilon.
func CoversAmount(paid, owed, epsilon float64) bool {
	return paid >= owed-epsilon
}

// AmountsMatch compares two amounts within an absolute epsilon.
func AmountsMatch(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}
