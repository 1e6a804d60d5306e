package service

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go-todo-api/internal/core/domain/todo"
)

func seqOf(items []todo.Todo, tail error) iter.Seq2[todo.Todo, error] {
	return func(yield func(todo.Todo, error) bool) {
		for _, it := range items {
			if !yield(it, nil) {
				return
			}
		}
		if tail != nil {
			yield(todo.Todo{}, tail)
		}
	}
}

func TestTodoService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := new(MockTodoRepository)
		svc := NewTodoService(repo, slog.Default())

		repo.On("Create", mock.Anything, todo.Todo{Text: "Testy mctest face", CreatorID: "u1"}).
			Return(todo.Todo{ID: "t1", Text: "Testy mctest face", CreatorID: "u1"}, nil)

		got, err := svc.Create(ctx, "u1", "  Testy mctest face ")
		require.NoError(t, err)
		assert.Equal(t, "t1", got.ID)
		repo.AssertExpectations(t)
	})

	t.Run("empty text", func(t *testing.T) {
		repo := new(MockTodoRepository)
		svc := NewTodoService(repo, slog.Default())

		_, err := svc.Create(ctx, "u1", "   ")
		assert.True(t, errors.Is(err, todo.ErrValidation))
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestTodoService_List(t *testing.T) {
	ctx := context.Background()
	items := []todo.Todo{
		{ID: "t1", Text: "first test todo", CreatorID: "u1"},
		{ID: "t2", Text: "third", CreatorID: "u1"},
	}

	t.Run("collects all", func(t *testing.T) {
		repo := new(MockTodoRepository)
		svc := NewTodoService(repo, slog.Default())
		repo.On("FindByCreator", mock.Anything, "u1").Return(seqOf(items, nil), nil)

		got, err := svc.List(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, items, got)
	})

	t.Run("empty list is not nil", func(t *testing.T) {
		repo := new(MockTodoRepository)
		svc := NewTodoService(repo, slog.Default())
		repo.On("FindByCreator", mock.Anything, "u2").Return(seqOf(nil, nil), nil)

		got, err := svc.List(ctx, "u2")
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("stream error", func(t *testing.T) {
		repo := new(MockTodoRepository)
		svc := NewTodoService(repo, slog.Default())
		repo.On("FindByCreator", mock.Anything, "u1").Return(seqOf(items, errors.New("cursor died")), nil)

		_, err := svc.List(ctx, "u1")
		assert.Error(t, err)
	})
}

func TestTodoService_Update(t *testing.T) {
	ctx := context.Background()
	now := time.UnixMilli(1_700_000_000_000)
	completed := true

	t.Run("completing stamps completedAt", func(t *testing.T) {
		repo := new(MockTodoRepository)
		svc := NewTodoService(repo, slog.Default())
		svc.now = func() time.Time { return now }

		current := todo.Todo{ID: "t1", Text: "first test todo", CreatorID: "u1"}
		ms := now.UnixMilli()
		stamped := todo.Todo{ID: "t1", Text: "first test todo", CreatorID: "u1", Completed: true, CompletedAt: &ms}
		repo.On("FindByID", mock.Anything, "t1", "u1").Return(current, nil)
		repo.On("Update", mock.Anything, mock.MatchedBy(func(t todo.Todo) bool {
			return t.ID == "t1" && t.Completed && t.CompletedAt != nil && *t.CompletedAt == now.UnixMilli()
		})).Return(stamped, nil)

		got, err := svc.Update(ctx, "t1", "u1", todo.Patch{Completed: &completed})
		require.NoError(t, err)
		assert.True(t, got.Completed)
		repo.AssertExpectations(t)
	})

	t.Run("not owned", func(t *testing.T) {
		repo := new(MockTodoRepository)
		svc := NewTodoService(repo, slog.Default())
		repo.On("FindByID", mock.Anything, "t1", "u2").Return(todo.Todo{}, todo.ErrNotFound)

		_, err := svc.Update(ctx, "t1", "u2", todo.Patch{Completed: &completed})
		assert.True(t, errors.Is(err, todo.ErrNotFound))
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestTodoService_GetAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := new(MockTodoRepository)
	svc := NewTodoService(repo, slog.Default())

	item := todo.Todo{ID: "t1", Text: "first test todo", CreatorID: "u1"}
	repo.On("FindByID", mock.Anything, "t1", "u1").Return(item, nil)
	repo.On("Delete", mock.Anything, "t1", "u1").Return(item, nil)
	repo.On("Delete", mock.Anything, "t9", "u1").Return(todo.Todo{}, todo.ErrNotFound)

	got, err := svc.Get(ctx, "t1", "u1")
	require.NoError(t, err)
	assert.Equal(t, item, got)

	removed, err := svc.Delete(ctx, "t1", "u1")
	require.NoError(t, err)
	assert.Equal(t, item, removed)

	_, err = svc.Delete(ctx, "t9", "u1")
	assert.True(t, errors.Is(err, todo.ErrNotFound))
}
