package ports

import (
	"context"

	"go-todo-api/internal/core/domain/auth"
	"go-todo-api/internal/core/domain/todo"
)

// AuthService defines the session lifecycle and the request guard.
type AuthService interface {
	Register(ctx context.Context, creds auth.Credentials) (auth.Identity, error)
	Login(ctx context.Context, creds auth.Credentials) (auth.Identity, error)
	Logout(ctx context.Context, id auth.Identity) error
	Authenticate(ctx context.Context, token string) (auth.Identity, error)
}

// TodoService defines the todo use cases for an authenticated creator.
type TodoService interface {
	Create(ctx context.Context, creatorID, text string) (todo.Todo, error)
	List(ctx context.Context, creatorID string) ([]todo.Todo, error)
	Get(ctx context.Context, id, creatorID string) (todo.Todo, error)
	Update(ctx context.Context, id, creatorID string, patch todo.Patch) (todo.Todo, error)
	Delete(ctx context.Context, id, creatorID string) (todo.Todo, error)
}

// PasswordHasher is a salted one-way hash. Verify never errors: anything
// that does not match, including malformed hashes, is false.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hashed string) bool
}

// TokenCodec signs and verifies tokens. Parse returns auth.ErrInvalidToken
// and zero claims on any failure.
type TokenCodec interface {
	Issue(userID, purpose string) (string, error)
	Parse(token string) (auth.Claims, error)
}

// LoginLimiter throttles repeated failed logins per key.
type LoginLimiter interface {
	// Allow atomically reserves one attempt for key and returns
	// auth.ErrRateLimited once the reserved attempts exceed the budget.
	Allow(ctx context.Context, key string) error
	// Reset clears the reserved attempts after a successful login.
	Reset(ctx context.Context, key string) error
}
