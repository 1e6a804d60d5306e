package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go-todo-api/internal/core/domain/auth"
	"go-todo-api/internal/core/ports"
)

// UserStore translates user-facing operations into repository calls. It owns
// the decision that a token is revoked by removing it from the user's list,
// so the token codec never needs to know how revocation is persisted.
type UserStore struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher

	dummyOnce sync.Once
	dummyHash string
}

func NewUserStore(repo ports.UserRepository, hasher ports.PasswordHasher) *UserStore {
	return &UserStore{repo: repo, hasher: hasher}
}

// Create hashes the password and inserts the user. The plaintext never
// reaches the repository.
func (s *UserStore) Create(ctx context.Context, email, plaintext string) (auth.User, error) {
	hashed, err := s.hasher.Hash(plaintext)
	if err != nil {
		return auth.User{}, err
	}

	user, err := s.repo.Create(ctx, auth.User{Email: email, PasswordHash: hashed})
	if err != nil {
		if errors.Is(err, auth.ErrDuplicateEmail) {
			return auth.User{}, auth.ErrDuplicateEmail
		}
		return auth.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// FindByCredentials returns auth.ErrUserNotFound both for unknown emails and
// for wrong passwords. Unknown emails still pay for one verification.
func (s *UserStore) FindByCredentials(ctx context.Context, email, plaintext string) (auth.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			s.hasher.Verify(plaintext, s.dummy())
			return auth.User{}, auth.ErrUserNotFound
		}
		return auth.User{}, fmt.Errorf("failed to find user: %w", err)
	}

	if !s.hasher.Verify(plaintext, user.PasswordHash) {
		return auth.User{}, auth.ErrUserNotFound
	}
	return user, nil
}

func (s *UserStore) FindByID(ctx context.Context, id string) (auth.User, error) {
	return s.repo.FindByID(ctx, id)
}

// AppendToken registers token on user and returns the user as now stored.
func (s *UserStore) AppendToken(ctx context.Context, user auth.User, token string) (auth.User, error) {
	entry := auth.Token{Access: auth.PurposeAuth, Value: token}
	if err := s.repo.PushToken(ctx, user.ID, entry); err != nil {
		return auth.User{}, fmt.Errorf("failed to append token: %w", err)
	}
	user.Tokens = append(append([]auth.Token(nil), user.Tokens...), entry)
	return user, nil
}

// RemoveToken revokes a single token. Removing an unknown value succeeds.
func (s *UserStore) RemoveToken(ctx context.Context, user auth.User, token string) error {
	if err := s.repo.PullToken(ctx, user.ID, token); err != nil {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}

func (s *UserStore) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("not-a-real-password")
	})
	return s.dummyHash
}
