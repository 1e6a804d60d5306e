package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"go-todo-api/internal/core/domain/todo"
	"go-todo-api/internal/core/ports"
)

type Handler struct {
	service ports.TodoService
	logger  *slog.Logger
}

func NewHandler(service ports.TodoService, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Create handles POST /todos
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var req createTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}

	t, err := h.service.Create(r.Context(), id.User.ID, req.Text)
	if err != nil {
		h.handleError(w, r, "failed to create todo", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, t)
}

// List handles GET /todos
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	todos, err := h.service.List(r.Context(), id.User.ID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list todos", "error", err)
		h.respondError(w, http.StatusBadRequest, errors.New("unable to list todos"))
		return
	}
	writeJSON(w, h.logger, http.StatusOK, todoListResponse{Todos: todos})
}

// Get handles GET /todos/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	t, err := h.service.Get(r.Context(), r.PathValue("id"), id.User.ID)
	if err != nil {
		h.handleError(w, r, "failed to find todo", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, todoResponse{Todo: t})
}

// Delete handles DELETE /todos/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	t, err := h.service.Delete(r.Context(), r.PathValue("id"), id.User.ID)
	if err != nil {
		h.handleError(w, r, "failed to delete todo", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, todoResponse{Todo: t})
}

// Update handles PATCH /todos/{id}
// Payload: {"text": "...", "completed": true}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var patch todo.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}

	t, err := h.service.Update(r.Context(), r.PathValue("id"), id.User.ID, patch)
	if err != nil {
		h.handleError(w, r, "failed to update todo", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, todoResponse{Todo: t})
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	switch {
	case errors.Is(err, todo.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
	case errors.Is(err, todo.ErrValidation):
		h.respondError(w, http.StatusBadRequest, err)
	default:
		h.logger.ErrorContext(r.Context(), msg, "error", err)
		h.respondError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, h.logger, code, errorResponse{Error: err.Error()})
}

// Health handles GET /healthz
type Health struct {
	checker ports.HealthChecker
	logger  *slog.Logger
}

func NewHealth(checker ports.HealthChecker, logger *slog.Logger) *Health {
	return &Health{checker: checker, logger: logger}
}

func (h *Health) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.checker.Ping(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "health check failed", "error", err)
		writeJSON(w, h.logger, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]string{"status": "ok"})
}
