package crypto

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	DigitsAlphabet       = "0123456789"
	AlphanumericAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// RandomString returns a string of the given length drawn uniformly from
// alphabet using crypto/rand. One character is drawn per rand.Int call to
// avoid modulo bias.
func RandomString(length int, alphabet string) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid length %d", length)
	}
	if alphabet == "" {
		return "", fmt.Errorf("empty alphabet")
	}

	var b strings.Builder
	b.Grow(length)

	max := big.NewInt(int64(len(alphabet)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random source: %w", err)
		}
		b.WriteByte(alphabet[n.Int64()])
	}
	return b.String(), nil
}

// RandomDigits returns a fixed-length numeric string. This is the one-time
// code format: the code is the sole secret protecting the verification step,
// so the source must be crypto/rand, never a seeded PRNG.
func RandomDigits(length int) (string, error) {
	return RandomString(length, DigitsAlphabet)
}
