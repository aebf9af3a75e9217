// internal/pkg/jwt/loader.go
package jwt

import (
	"fmt"
	"time"
)

// MinSecretLength is the shortest HS256 secret accepted at startup.
const MinSecretLength = 32

type Config struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

type Manager struct {
	Generator *Generator
	Verifier  *Verifier
}

// LoadAndBuild validates cfg and builds the process-wide generator/verifier pair.
// The secret is copied once and never changes afterwards.
func LoadAndBuild(cfg Config) (*Manager, error) {
	if len(cfg.Secret) < MinSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes, got %d", MinSecretLength, len(cfg.Secret))
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("jwt ttl must be positive, got %s", cfg.TTL)
	}

	secret := []byte(cfg.Secret)

	return &Manager{
		Generator: NewGenerator(secret, cfg.Issuer, cfg.TTL),
		Verifier:  NewVerifier(secret, cfg.Issuer),
	}, nil
}
