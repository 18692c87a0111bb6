package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// TTL is how long an issued verification code stays usable.
const TTL = 5 * time.Minute

// Generate returns a uniformly random 6-digit code in [100000, 999999].
// crypto/rand.Int draws from a uniform range, so no digit sequence is
// favoured the way a modulo reduction would.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// Valid reports whether a code issued at issuedAt is still usable at now.
// The window is half-open: exactly TTL after issuance the code is expired.
func Valid(issuedAt, now time.Time) bool {
	return now.Sub(issuedAt) < TTL
}
