package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"go-todo-api/internal/core/domain/auth"
	"go-todo-api/internal/core/domain/todo"
)

type createTodoRequest struct {
	Text string `json:"text"`
}

type todoResponse struct {
	Todo todo.Todo `json:"todo"`
}

type todoListResponse struct {
	Todos []todo.Todo `json:"todos"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// userResponse never exposes the password hash or the token list.
type userResponse struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
}

func newUserResponse(u auth.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email}
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to write response", "error", err)
	}
}
