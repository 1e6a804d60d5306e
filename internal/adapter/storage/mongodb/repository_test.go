package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"go-todo-api/internal/core/domain/auth"
	"go-todo-api/internal/core/domain/todo"
)

func setupDatabase(t *testing.T) *mongo.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	container, err := tcmongo.Run(ctx, "mongo:7")
	if err != nil {
		t.Fatalf("failed to start mongodb: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate mongodb: %v", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	client, err := Connect(ctx, uri)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(ctx) })

	db := client.Database("TodoAppTest")
	require.NoError(t, EnsureIndexes(ctx, db, slog.Default()))
	return db
}

func TestUserRepository_Integration(t *testing.T) {
	db := setupDatabase(t)
	ctx := context.Background()
	repo := NewUserRepository(db)

	created, err := repo.Create(ctx, auth.User{Email: "nick@example.com", PasswordHash: "$2a$10$hash"})
	require.NoError(t, err)
	require.Len(t, created.ID, 24)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := repo.Create(ctx, auth.User{Email: "nick@example.com", PasswordHash: "$2a$10$other"})
		assert.True(t, errors.Is(err, auth.ErrDuplicateEmail))

		stored, err := repo.FindByEmail(ctx, "nick@example.com")
		require.NoError(t, err)
		assert.Equal(t, "$2a$10$hash", stored.PasswordHash)
	})

	t.Run("find by id", func(t *testing.T) {
		got, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "nick@example.com", got.Email)
		assert.Empty(t, got.Tokens)

		_, err = repo.FindByID(ctx, "not-an-object-id")
		assert.True(t, errors.Is(err, auth.ErrUserNotFound))

		_, err = repo.FindByID(ctx, "ffffffffffffffffffffffff")
		assert.True(t, errors.Is(err, auth.ErrUserNotFound))
	})

	t.Run("push and pull tokens", func(t *testing.T) {
		require.NoError(t, repo.PushToken(ctx, created.ID, auth.Token{Access: auth.PurposeAuth, Value: "tok-1"}))
		require.NoError(t, repo.PushToken(ctx, created.ID, auth.Token{Access: auth.PurposeAuth, Value: "tok-2"}))

		got, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, []auth.Token{
			{Access: auth.PurposeAuth, Value: "tok-1"},
			{Access: auth.PurposeAuth, Value: "tok-2"},
		}, got.Tokens)

		require.NoError(t, repo.PullToken(ctx, created.ID, "tok-1"))
		require.NoError(t, repo.PullToken(ctx, created.ID, "missing"))

		got, err = repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, []auth.Token{{Access: auth.PurposeAuth, Value: "tok-2"}}, got.Tokens)

		err = repo.PushToken(ctx, "ffffffffffffffffffffffff", auth.Token{Access: auth.PurposeAuth, Value: "x"})
		assert.True(t, errors.Is(err, auth.ErrUserNotFound))
	})

	t.Run("concurrent pushes all land", func(t *testing.T) {
		user, err := repo.Create(ctx, auth.User{Email: "misty@example.com", PasswordHash: "$2a$10$hash"})
		require.NoError(t, err)

		const n = 20
		var wg sync.WaitGroup
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, repo.PushToken(ctx, user.ID, auth.Token{Access: auth.PurposeAuth, Value: fmt.Sprintf("tok-%d", i)}))
			}()
		}
		wg.Wait()

		got, err := repo.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Len(t, got.Tokens, n)
	})
}

func TestTodoRepository_Integration(t *testing.T) {
	db := setupDatabase(t)
	ctx := context.Background()
	repo := NewTodoRepository(db)

	userOne := "5be48486fd74353d69b988c6"
	userTwo := "5be48486fd74353d69b988c7"

	first, err := repo.Create(ctx, todo.Todo{Text: "first test todo", CreatorID: userOne})
	require.NoError(t, err)
	stamp := int64(333)
	second, err := repo.Create(ctx, todo.Todo{Text: "second test todo", Completed: true, CompletedAt: &stamp, CreatorID: userTwo})
	require.NoError(t, err)

	t.Run("scoped list", func(t *testing.T) {
		seq, err := repo.FindByCreator(ctx, userOne)
		require.NoError(t, err)

		var got []todo.Todo
		for item, err := range seq {
			require.NoError(t, err)
			got = append(got, item)
		}
		require.Len(t, got, 1)
		assert.Equal(t, first, got[0])
	})

	t.Run("find by id respects owner", func(t *testing.T) {
		got, err := repo.FindByID(ctx, second.ID, userTwo)
		require.NoError(t, err)
		require.NotNil(t, got.CompletedAt)
		assert.Equal(t, int64(333), *got.CompletedAt)

		_, err = repo.FindByID(ctx, second.ID, userOne)
		assert.True(t, errors.Is(err, todo.ErrNotFound))

		_, err = repo.FindByID(ctx, "123", userOne)
		assert.True(t, errors.Is(err, todo.ErrNotFound))
	})

	t.Run("update", func(t *testing.T) {
		next := second
		next.Text = "reopened"
		next.Completed = false
		next.CompletedAt = nil

		got, err := repo.Update(ctx, next)
		require.NoError(t, err)
		assert.Equal(t, "reopened", got.Text)
		assert.False(t, got.Completed)
		assert.Nil(t, got.CompletedAt)

		next.CreatorID = userOne
		_, err = repo.Update(ctx, next)
		assert.True(t, errors.Is(err, todo.ErrNotFound))
	})

	t.Run("delete", func(t *testing.T) {
		_, err := repo.Delete(ctx, first.ID, userTwo)
		assert.True(t, errors.Is(err, todo.ErrNotFound))

		removed, err := repo.Delete(ctx, first.ID, userOne)
		require.NoError(t, err)
		assert.Equal(t, first.ID, removed.ID)

		_, err = repo.FindByID(ctx, first.ID, userOne)
		assert.True(t, errors.Is(err, todo.ErrNotFound))
	})
}
