package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"go-todo-api/internal/core/domain/todo"
	"go-todo-api/internal/core/ports"
)

var tracer = otel.Tracer("internal/core/service")

type TodoService struct {
	repo   ports.TodoRepository
	logger *slog.Logger
	now    func() time.Time
}

var _ ports.TodoService = (*TodoService)(nil)

func NewTodoService(repo ports.TodoRepository, logger *slog.Logger) *TodoService {
	return &TodoService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (s *TodoService) Create(ctx context.Context, creatorID, text string) (todo.Todo, error) {
	ctx, span := tracer.Start(ctx, "TodoService.Create", trace.WithAttributes(
		attribute.String("user.id", creatorID),
	))
	defer span.End()

	t := todo.New(text, creatorID)
	if err := t.Validate(); err != nil {
		return todo.Todo{}, err
	}

	created, err := s.repo.Create(ctx, t)
	if err != nil {
		span.RecordError(err)
		return todo.Todo{}, fmt.Errorf("failed to save todo: %w", err)
	}

	s.logger.InfoContext(ctx, "todo created", "id", created.ID, "user_id", creatorID)
	return created, nil
}

func (s *TodoService) List(ctx context.Context, creatorID string) ([]todo.Todo, error) {
	ctx, span := tracer.Start(ctx, "TodoService.List", trace.WithAttributes(
		attribute.String("user.id", creatorID),
	))
	defer span.End()

	seq, err := s.repo.FindByCreator(ctx, creatorID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	todos := []todo.Todo{}
	for t, err := range seq {
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		todos = append(todos, t)
	}
	return todos, nil
}

func (s *TodoService) Get(ctx context.Context, id, creatorID string) (todo.Todo, error) {
	ctx, span := tracer.Start(ctx, "TodoService.Get", trace.WithAttributes(attribute.String("id", id)))
	defer span.End()

	return s.repo.FindByID(ctx, id, creatorID)
}

func (s *TodoService) Update(ctx context.Context, id, creatorID string, patch todo.Patch) (todo.Todo, error) {
	ctx, span := tracer.Start(ctx, "TodoService.Update", trace.WithAttributes(attribute.String("id", id)))
	defer span.End()

	current, err := s.repo.FindByID(ctx, id, creatorID)
	if err != nil {
		return todo.Todo{}, err
	}

	next, err := current.Apply(patch, s.now())
	if err != nil {
		return todo.Todo{}, err
	}

	updated, err := s.repo.Update(ctx, next)
	if err != nil {
		span.RecordError(err)
		return todo.Todo{}, err
	}
	return updated, nil
}

func (s *TodoService) Delete(ctx context.Context, id, creatorID string) (todo.Todo, error) {
	ctx, span := tracer.Start(ctx, "TodoService.Delete", trace.WithAttributes(attribute.String("id", id)))
	defer span.End()

	removed, err := s.repo.Delete(ctx, id, creatorID)
	if err != nil {
		return todo.Todo{}, err
	}

	s.logger.InfoContext(ctx, "todo deleted", "id", id, "user_id", creatorID)
	return removed, nil
}
