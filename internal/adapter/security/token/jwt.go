package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"go-todo-api/internal/core/domain/auth"
	"go-todo-api/internal/core/ports"
)

// claims is the signed payload. The jti makes every issued token distinct,
// even for the same user and purpose within one second.
type claims struct {
	UserID string `json:"_id"`
	Access string `json:"access"`
	jwt.RegisteredClaims
}

// Codec implements ports.TokenCodec with HS256 JWTs and a process-wide secret.
// Changing the secret invalidates every token issued before.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

var _ ports.TokenCodec = (*Codec)(nil)

// NewCodec returns a codec signing with secret. A zero ttl issues tokens
// without an expiry; revocation then relies solely on the user's token list.
func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (c *Codec) Issue(userID, purpose string) (string, error) {
	if userID == "" || purpose == "" {
		return "", errors.New("user id and purpose are required")
	}

	now := c.now()
	registered := jwt.RegisteredClaims{
		ID:       uuid.NewString(),
		IssuedAt: jwt.NewNumericDate(now),
	}
	if c.ttl > 0 {
		registered.ExpiresAt = jwt.NewNumericDate(now.Add(c.ttl))
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID:           userID,
		Access:           purpose,
		RegisteredClaims: registered,
	})

	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (c *Codec) Parse(tokenString string) (auth.Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(c.now),
	}
	if c.ttl > 0 {
		opts = append(opts, jwt.WithExpirationRequired())
	}

	var cl claims
	t, err := jwt.ParseWithClaims(tokenString, &cl, func(*jwt.Token) (any, error) {
		return c.secret, nil
	}, opts...)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("%w: %v", auth.ErrInvalidToken, err)
	}
	if !t.Valid || cl.UserID == "" || cl.Access == "" {
		return auth.Claims{}, auth.ErrInvalidToken
	}

	return auth.Claims{UserID: cl.UserID, Purpose: cl.Access}, nil
}
