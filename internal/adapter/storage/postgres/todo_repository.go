package postgres

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-todo-api/internal/core/domain/todo"
	"go-todo-api/internal/core/ports"
)

// TodoRepository implements ports.TodoRepository using PostgreSQL.
type TodoRepository struct {
	db *pgxpool.Pool
}

var _ ports.TodoRepository = (*TodoRepository)(nil)

func NewTodoRepository(db *pgxpool.Pool) *TodoRepository {
	return &TodoRepository{db: db}
}

const todoColumns = `id, text, completed, completed_at, creator_id`

func (r *TodoRepository) Create(ctx context.Context, t todo.Todo) (todo.Todo, error) {
	if _, err := uuid.Parse(t.CreatorID); err != nil {
		return todo.Todo{}, fmt.Errorf("%w: invalid creator id", todo.ErrValidation)
	}
	t.ID = uuid.NewString()

	query := `
		INSERT INTO todos (id, text, completed, completed_at, creator_id)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.Exec(ctx, query, t.ID, t.Text, t.Completed, t.CompletedAt, t.CreatorID); err != nil {
		return todo.Todo{}, fmt.Errorf("failed to insert todo: %w", err)
	}
	return t, nil
}

func (r *TodoRepository) FindByID(ctx context.Context, id, creatorID string) (todo.Todo, error) {
	if !validIDs(id, creatorID) {
		return todo.Todo{}, todo.ErrNotFound
	}

	query := `SELECT ` + todoColumns + ` FROM todos WHERE id = $1 AND creator_id = $2`
	return scanTodo(r.db.QueryRow(ctx, query, id, creatorID))
}

// FindByCreator returns an iterator of the creator's todos in insertion order.
func (r *TodoRepository) FindByCreator(ctx context.Context, creatorID string) (iter.Seq2[todo.Todo, error], error) {
	if _, err := uuid.Parse(creatorID); err != nil {
		return func(func(todo.Todo, error) bool) {}, nil
	}

	query := `SELECT ` + todoColumns + ` FROM todos WHERE creator_id = $1 ORDER BY seq`
	rows, err := r.db.Query(ctx, query, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query todos: %w", err)
	}

	return func(yield func(todo.Todo, error) bool) {
		defer rows.Close()
		for rows.Next() {
			t, err := scanTodo(rows)
			if err != nil {
				yield(todo.Todo{}, fmt.Errorf("scan error: %w", err))
				return
			}
			if !yield(t, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(todo.Todo{}, fmt.Errorf("rows iteration error: %w", err))
		}
	}, nil
}

func (r *TodoRepository) Update(ctx context.Context, t todo.Todo) (todo.Todo, error) {
	if !validIDs(t.ID, t.CreatorID) {
		return todo.Todo{}, todo.ErrNotFound
	}

	query := `
		UPDATE todos
		SET text = $1, completed = $2, completed_at = $3, updated_at = NOW()
		WHERE id = $4 AND creator_id = $5
		RETURNING ` + todoColumns
	return scanTodo(r.db.QueryRow(ctx, query, t.Text, t.Completed, t.CompletedAt, t.ID, t.CreatorID))
}

func (r *TodoRepository) Delete(ctx context.Context, id, creatorID string) (todo.Todo, error) {
	if !validIDs(id, creatorID) {
		return todo.Todo{}, todo.ErrNotFound
	}

	query := `DELETE FROM todos WHERE id = $1 AND creator_id = $2 RETURNING ` + todoColumns
	return scanTodo(r.db.QueryRow(ctx, query, id, creatorID))
}

func scanTodo(row pgx.Row) (todo.Todo, error) {
	var t todo.Todo
	err := row.Scan(&t.ID, &t.Text, &t.Completed, &t.CompletedAt, &t.CreatorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return todo.Todo{}, todo.ErrNotFound
		}
		return todo.Todo{}, fmt.Errorf("failed to fetch todo: %w", err)
	}
	return t, nil
}

func validIDs(ids ...string) bool {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return false
		}
	}
	return true
}
