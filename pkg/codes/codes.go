// Package codes generates short, human-transcribable access codes.
//
// A code is 8 characters drawn uniformly from a 62-symbol alphanumeric
// alphabet, giving roughly 2.2e14 possible values. That is adequate entropy
// for a 24-hour bearer code guarding business documents; it is not a
// cryptographic-strength secret and should never gate anything longer-lived.
package codes

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Alphabet is the full mixed-case alphanumeric symbol set.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// DefaultLength is the standard code length used for resource sharing.
const DefaultLength = 8

var alphabetLen = big.NewInt(int64(len(Alphabet)))

// Generate returns a new code of DefaultLength characters.
func Generate() (string, error) {
	return GenerateN(DefaultLength)
}

// GenerateN returns a code of n characters, each independently and uniformly
// sampled from Alphabet using crypto/rand. Sampling via crypto/rand.Int is
// rejection-free for any modulus, so there is no bias toward early symbols.
func GenerateN(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("code length must be positive, got %d", n)
	}

	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("failed to read entropy: %w", err)
		}
		buf[i] = Alphabet[idx.Int64()]
	}
	return string(buf), nil
}

// MustGenerate is like Generate but panics on entropy source failure.
// Use only where failure is unrecoverable anyway (tests, init).
func MustGenerate() string {
	code, err := Generate()
	if err != nil {
		panic(fmt.Sprintf("codes: failed to generate: %v", err))
	}
	return code
}
