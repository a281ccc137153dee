package token

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	// URL-safe alphabet for recipient and share tokens
	tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	tokenLength   = 16

	// Claim codes are typed by hand; ambiguous glyphs (0/O/1/I/L) are excluded
	claimAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	claimLength   = 6
)

// NewToken generates an opaque URL-safe token for recipient and share links
func NewToken() (string, error) {
	return randomString(tokenAlphabet, tokenLength)
}

// NewClaimCode generates a short human-typeable claim code. Uniqueness is the
// caller's concern; collisions are retried against the store.
func NewClaimCode() (string, error) {
	return randomString(claimAlphabet, claimLength)
}

func randomString(alphabet string, length int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out), nil
}
