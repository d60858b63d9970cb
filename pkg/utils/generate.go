package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const confirmationAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateConfirmationNumber creates a human-readable reservation code.
// Format: RSV-YYYYMMDD-XXXXXX (ambiguous characters 0/O/1/I excluded)
func GenerateConfirmationNumber(now time.Time) string {
	suffix := make([]byte, 6)
	max := big.NewInt(int64(len(confirmationAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// fall back to the clock, uniqueness is still enforced by the store
			n = big.NewInt((now.UnixNano() >> (i * 5)) % int64(len(confirmationAlphabet)))
		}
		suffix[i] = confirmationAlphabet[n.Int64()]
	}

	return fmt.Sprintf("RSV-%s-%s", now.Format("20060102"), string(suffix))
}
