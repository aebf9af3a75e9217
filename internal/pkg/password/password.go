// Package password hashes and verifies account credentials and enforces the
// sign-up password policy.
package password

import (
	"fmt"
	"strings"
	"unicode/utf8"

	xerrors "tripreel-service/internal/pkg/errors"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinLength = 8
	MaxLength = 20

	// Symbols is the punctuation set a password must draw at least one character from.
	Symbols = "!@#$%^&*()-_=+[]{};:'\",.<>/?`~\\|"
)

// Hasher is a salted one-way transform backed by bcrypt.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher using cost, or bcrypt.DefaultCost when cost is out of range.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the bcrypt encoding of plaintext. The salt is embedded in the
// result, so hashing the same input twice yields different values.
func (h *Hasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches hashed. A malformed hash is a mismatch.
func (h *Hasher) Verify(plaintext, hashed string) bool {
	if hashed == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}

// CheckPolicy enforces length 8-20 with at least one letter, one digit and one symbol.
func CheckPolicy(pw string) error {
	n := utf8.RuneCountInString(pw)
	if n < MinLength || n > MaxLength {
		return xerrors.ErrInvalidPassword
	}

	var letter, digit, symbol bool
	for _, r := range pw {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			letter = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(Symbols, r):
			symbol = true
		}
	}
	if !letter || !digit || !symbol {
		return xerrors.ErrInvalidPassword
	}
	return nil
}
