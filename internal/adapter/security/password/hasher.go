// Package password hashes and verifies user passwords. New hashes use the
// configured algorithm; verification picks the algorithm from the encoded
// hash so bcrypt and argon2id hashes can coexist in one collection.
package password

import (
	"fmt"
	"strings"

	"github.com/matthewhartstonge/argon2"
	"golang.org/x/crypto/bcrypt"

	"go-todo-api/internal/core/ports"
)

type Algorithm string

const (
	Bcrypt   Algorithm = "bcrypt"
	Argon2id Algorithm = "argon2id"
)

const argon2idPrefix = "$argon2id$"

// Hasher implements ports.PasswordHasher.
type Hasher struct {
	alg        Algorithm
	bcryptCost int
	argon      argon2.Config
}

var _ ports.PasswordHasher = (*Hasher)(nil)

// New returns a Hasher producing alg hashes. bcryptCost is ignored for argon2id;
// zero selects bcrypt.DefaultCost.
func New(alg Algorithm, bcryptCost int) (*Hasher, error) {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", bcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	switch alg {
	case Bcrypt, Argon2id:
	default:
		return nil, fmt.Errorf("unsupported password hasher %q", alg)
	}

	return &Hasher{
		alg:        alg,
		bcryptCost: bcryptCost,
		argon:      argon2.DefaultConfig(),
	}, nil
}

func (h *Hasher) Hash(plaintext string) (string, error) {
	switch h.alg {
	case Argon2id:
		encoded, err := h.argon.HashEncoded([]byte(plaintext))
		if err != nil {
			return "", fmt.Errorf("failed to hash password: %w", err)
		}
		return string(encoded), nil
	default:
		hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.bcryptCost)
		if err != nil {
			return "", fmt.Errorf("failed to hash password: %w", err)
		}
		return string(hashed), nil
	}
}

func (h *Hasher) Verify(plaintext, hashed string) bool {
	switch {
	case strings.HasPrefix(hashed, argon2idPrefix):
		ok, err := argon2.VerifyEncoded([]byte(plaintext), []byte(hashed))
		return err == nil && ok
	case isBcrypt(hashed):
		return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
	default:
		return false
	}
}

func isBcrypt(hashed string) bool {
	for _, p := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(hashed, p) {
			return true
		}
	}
	return false
}
