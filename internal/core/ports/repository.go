package ports

import (
	"context"
	"iter"

	"go-todo-api/internal/core/domain/auth"
	"go-todo-api/internal/core/domain/todo"
)

// UserRepository defines storage for users and their registered tokens.
// Token mutations must be single-document (or single-row) atomic writes.
type UserRepository interface {
	// Create inserts a new user and returns it with its generated ID.
	// Returns auth.ErrDuplicateEmail when the email is taken.
	Create(ctx context.Context, user auth.User) (auth.User, error)

	// FindByID returns auth.ErrUserNotFound for unknown or malformed ids.
	FindByID(ctx context.Context, id string) (auth.User, error)

	FindByEmail(ctx context.Context, email string) (auth.User, error)

	// PushToken appends a token to the user's list.
	PushToken(ctx context.Context, userID string, token auth.Token) error

	// PullToken removes every entry with the given value. Missing values are not an error.
	PullToken(ctx context.Context, userID, value string) error
}

// TodoRepository defines storage for todos. Every lookup is scoped by creator.
type TodoRepository interface {
	Create(ctx context.Context, t todo.Todo) (todo.Todo, error)

	// FindByID returns todo.ErrNotFound for malformed ids and for todos owned by another user.
	FindByID(ctx context.Context, id, creatorID string) (todo.Todo, error)

	// FindByCreator returns an iterator over the creator's todos in insertion order.
	FindByCreator(ctx context.Context, creatorID string) (iter.Seq2[todo.Todo, error], error)

	// Update overwrites text, completed and completedAt and returns the stored result.
	Update(ctx context.Context, t todo.Todo) (todo.Todo, error)

	// Delete removes the todo and returns the removed document.
	Delete(ctx context.Context, id, creatorID string) (todo.Todo, error)
}

// HealthChecker is implemented by stores that can report connectivity.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
