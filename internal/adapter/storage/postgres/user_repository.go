package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-todo-api/internal/core/domain/auth"
	"go-todo-api/internal/core/ports"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// UserRepository implements ports.UserRepository. Tokens live in their own
// table so append and revoke are single-row writes.
type UserRepository struct {
	db *pgxpool.Pool
}

var _ ports.UserRepository = (*UserRepository)(nil)

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user auth.User) (auth.User, error) {
	user.ID = uuid.NewString()

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		query := `INSERT INTO users (id, email, password_hash) VALUES ($1, $2, $3)`
		if _, err := tx.Exec(ctx, query, user.ID, user.Email, user.PasswordHash); err != nil {
			return err
		}
		for _, t := range user.Tokens {
			if _, err := tx.Exec(ctx, `INSERT INTO user_tokens (user_id, access, token) VALUES ($1, $2, $3)`,
				user.ID, t.Access, t.Value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if pgCode(err) == codeUniqueViolation {
			return auth.User{}, auth.ErrDuplicateEmail
		}
		return auth.User{}, fmt.Errorf("failed to save user: %w", err)
	}

	if user.Tokens == nil {
		user.Tokens = []auth.Token{}
	}
	return user, nil
}

const selectUser = `
	SELECT u.id, u.email, u.password_hash,
	       COALESCE(
	           json_agg(json_build_object('access', t.access, 'token', t.token) ORDER BY t.id)
	               FILTER (WHERE t.id IS NOT NULL),
	           '[]'
	       )
	FROM users u
	LEFT JOIN user_tokens t ON t.user_id = u.id
`

func (r *UserRepository) FindByID(ctx context.Context, id string) (auth.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return auth.User{}, auth.ErrUserNotFound
	}
	return r.findOne(ctx, selectUser+` WHERE u.id = $1 GROUP BY u.id`, id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (auth.User, error) {
	return r.findOne(ctx, selectUser+` WHERE u.email = $1 GROUP BY u.id`, email)
}

func (r *UserRepository) PushToken(ctx context.Context, userID string, token auth.Token) error {
	if _, err := uuid.Parse(userID); err != nil {
		return auth.ErrUserNotFound
	}

	query := `INSERT INTO user_tokens (user_id, access, token) VALUES ($1, $2, $3)`
	if _, err := r.db.Exec(ctx, query, userID, token.Access, token.Value); err != nil {
		if pgCode(err) == codeForeignKeyViolation {
			return auth.ErrUserNotFound
		}
		return fmt.Errorf("failed to insert token: %w", err)
	}
	return nil
}

func (r *UserRepository) PullToken(ctx context.Context, userID, value string) error {
	if _, err := uuid.Parse(userID); err != nil {
		return auth.ErrUserNotFound
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM user_tokens WHERE user_id = $1 AND token = $2`, userID, value)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check user: %w", err)
	}
	if !exists {
		return auth.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg string) (auth.User, error) {
	var (
		user   auth.User
		tokens []byte
	)
	err := r.db.QueryRow(ctx, query, arg).Scan(&user.ID, &user.Email, &user.PasswordHash, &tokens)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.User{}, auth.ErrUserNotFound
		}
		return auth.User{}, fmt.Errorf("failed to find user: %w", err)
	}

	var rows []struct {
		Access string `json:"access"`
		Token  string `json:"token"`
	}
	if err := json.Unmarshal(tokens, &rows); err != nil {
		return auth.User{}, fmt.Errorf("failed to decode tokens: %w", err)
	}
	user.Tokens = make([]auth.Token, 0, len(rows))
	for _, t := range rows {
		user.Tokens = append(user.Tokens, auth.Token{Access: t.Access, Value: t.Token})
	}
	return user, nil
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
