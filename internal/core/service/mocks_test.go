package service

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"sync"

	"github.com/stretchr/testify/mock"

	"go-todo-api/internal/core/domain/auth"
	"go-todo-api/internal/core/domain/todo"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user auth.User) (auth.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(auth.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (auth.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(auth.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (auth.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(auth.User), args.Error(1)
}

func (m *MockUserRepository) PushToken(ctx context.Context, userID string, token auth.Token) error {
	args := m.Called(ctx, userID, token)
	return args.Error(0)
}

func (m *MockUserRepository) PullToken(ctx context.Context, userID, value string) error {
	args := m.Called(ctx, userID, value)
	return args.Error(0)
}

type MockLimiter struct {
	mock.Mock
}

func (m *MockLimiter) Allow(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockLimiter) Reset(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type MockTodoRepository struct {
	mock.Mock
}

func (m *MockTodoRepository) Create(ctx context.Context, t todo.Todo) (todo.Todo, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(todo.Todo), args.Error(1)
}

func (m *MockTodoRepository) FindByID(ctx context.Context, id, creatorID string) (todo.Todo, error) {
	args := m.Called(ctx, id, creatorID)
	return args.Get(0).(todo.Todo), args.Error(1)
}

func (m *MockTodoRepository) FindByCreator(ctx context.Context, creatorID string) (iter.Seq2[todo.Todo, error], error) {
	args := m.Called(ctx, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(iter.Seq2[todo.Todo, error]), args.Error(1)
}

func (m *MockTodoRepository) Update(ctx context.Context, t todo.Todo) (todo.Todo, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(todo.Todo), args.Error(1)
}

func (m *MockTodoRepository) Delete(ctx context.Context, id, creatorID string) (todo.Todo, error) {
	args := m.Called(ctx, id, creatorID)
	return args.Get(0).(todo.Todo), args.Error(1)
}

// memUsers is a stateful in-memory user repository for end-to-end flows.
type memUsers struct {
	mu    sync.Mutex
	seq   int
	users map[string]auth.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[string]auth.User{}}
}

func (r *memUsers) Create(_ context.Context, user auth.User) (auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return auth.User{}, auth.ErrDuplicateEmail
		}
	}
	r.seq++
	user.ID = fmt.Sprintf("%024x", r.seq)
	r.users[user.ID] = user
	return user, nil
}

func (r *memUsers) FindByID(_ context.Context, id string) (auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return auth.User{}, auth.ErrUserNotFound
	}
	u.Tokens = slices.Clone(u.Tokens)
	return u, nil
}

func (r *memUsers) FindByEmail(_ context.Context, email string) (auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			u.Tokens = slices.Clone(u.Tokens)
			return u, nil
		}
	}
	return auth.User{}, auth.ErrUserNotFound
}

func (r *memUsers) PushToken(_ context.Context, userID string, token auth.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return auth.ErrUserNotFound
	}
	u.Tokens = append(slices.Clone(u.Tokens), token)
	r.users[userID] = u
	return nil
}

func (r *memUsers) PullToken(_ context.Context, userID, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return auth.ErrUserNotFound
	}
	u.Tokens = slices.DeleteFunc(slices.Clone(u.Tokens), func(t auth.Token) bool { return t.Value == value })
	r.users[userID] = u
	return nil
}

type noopLimiter struct{}

func (noopLimiter) Allow(context.Context, string) error { return nil }
func (noopLimiter) Reset(context.Context, string) error { return nil }
