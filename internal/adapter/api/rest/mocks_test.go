package rest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"go-todo-api/internal/core/domain/auth"
	"go-todo-api/internal/core/domain/todo"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, creds auth.Credentials) (auth.Identity, error) {
	args := m.Called(ctx, creds)
	return args.Get(0).(auth.Identity), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, creds auth.Credentials) (auth.Identity, error) {
	args := m.Called(ctx, creds)
	return args.Get(0).(auth.Identity), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, id auth.Identity) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAuthService) Authenticate(ctx context.Context, token string) (auth.Identity, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(auth.Identity), args.Error(1)
}

type MockTodoService struct {
	mock.Mock
}

func (m *MockTodoService) Create(ctx context.Context, creatorID, text string) (todo.Todo, error) {
	args := m.Called(ctx, creatorID, text)
	return args.Get(0).(todo.Todo), args.Error(1)
}

func (m *MockTodoService) List(ctx context.Context, creatorID string) ([]todo.Todo, error) {
	args := m.Called(ctx, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]todo.Todo), args.Error(1)
}

func (m *MockTodoService) Get(ctx context.Context, id, creatorID string) (todo.Todo, error) {
	args := m.Called(ctx, id, creatorID)
	return args.Get(0).(todo.Todo), args.Error(1)
}

func (m *MockTodoService) Update(ctx context.Context, id, creatorID string, patch todo.Patch) (todo.Todo, error) {
	args := m.Called(ctx, id, creatorID, patch)
	return args.Get(0).(todo.Todo), args.Error(1)
}

func (m *MockTodoService) Delete(ctx context.Context, id, creatorID string) (todo.Todo, error) {
	args := m.Called(ctx, id, creatorID)
	return args.Get(0).(todo.Todo), args.Error(1)
}

type stubHealth struct{ err error }

func (s stubHealth) Ping(context.Context) error { return s.err }
