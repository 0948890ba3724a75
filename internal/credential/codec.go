// Package credential converts cardholder PINs between the form an ATM puts on
// the wire and the one-way hash the bank host keeps in its ledger.
//
// The wire form is a reversible encoding meant for a simulated channel. The
// stored form is a bcrypt hash. The two are never interchangeable: the ledger
// only ever holds hashes and requests only ever carry wire forms.
package credential

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// SecretLength is the number of digits in a cardholder PIN
const SecretLength = 4

const wirePrefix = "encrypted_"

// ErrInvalidCredentialFormat is returned when a secret or its wire form does not have the expected shape
var ErrInvalidCredentialFormat = errors.New("invalid credential format")

// Codec encodes PINs for transport and verifies them against stored hashes
type Codec struct {
	cost int
}

// NewCodec creates a codec hashing with the given bcrypt cost.
// Out-of-range costs fall back to bcrypt.DefaultCost.
func NewCodec(cost int) *Codec {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Codec{cost: cost}
}

// Encode turns a PIN into its wire form
func (c *Codec) Encode(secret string) (string, error) {
	if !wellFormed(secret) {
		return "", ErrInvalidCredentialFormat
	}
	return wirePrefix + base64.RawURLEncoding.EncodeToString([]byte(secret)), nil
}

// Decode recovers the PIN from its wire form
func (c *Codec) Decode(wire string) (string, error) {
	encoded, ok := strings.CutPrefix(wire, wirePrefix)
	if !ok {
		return "", ErrInvalidCredentialFormat
	}

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidCredentialFormat
	}

	secret := string(raw)
	if !wellFormed(secret) {
		return "", ErrInvalidCredentialFormat
	}
	return secret, nil
}

// Hash produces the one-way representation stored in the ledger
func (c *Codec) Hash(secret string) (string, error) {
	if !wellFormed(secret) {
		return "", ErrInvalidCredentialFormat
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), c.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash credential: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether a wire-form credential matches a stored hash.
// A mismatch is (false, nil); a wire form that cannot be decoded is ErrInvalidCredentialFormat.
func (c *Codec) Verify(wire, storedHash string) (bool, error) {
	secret, err := c.Decode(wire)
	if err != nil {
		return false, err
	}

	err = bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(secret))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		// malformed stored hash
		return false, fmt.Errorf("failed to compare credential: %w", err)
	}
}

func wellFormed(secret string) bool {
	if len(secret) != SecretLength {
		return false
	}
	for i := 0; i < len(secret); i++ {
		if secret[i] < '0' || secret[i] > '9' {
			return false
		}
	}
	return true
}
