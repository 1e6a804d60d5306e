package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"go-todo-api/internal/core/domain/auth"
	"go-todo-api/internal/core/ports"
)

type AuthHandler struct {
	service ports.AuthService
	logger  *slog.Logger
}

func NewAuthHandler(service ports.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: service, logger: logger}
}

// Register handles POST /users
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var creds auth.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	id, err := h.service.Register(r.Context(), creds)
	if err != nil {
		var verr *auth.ValidationError
		switch {
		case errors.As(err, &verr):
			writeJSON(w, h.logger, http.StatusBadRequest, verr)
		case errors.Is(err, auth.ErrDuplicateEmail):
			writeJSON(w, h.logger, http.StatusBadRequest, errorResponse{Error: "unable to register"})
		default:
			h.logger.ErrorContext(r.Context(), "failed to register user", "error", err)
			w.WriteHeader(http.StatusBadRequest)
		}
		return
	}

	w.Header().Set(AuthHeader, id.Token)
	writeJSON(w, h.logger, http.StatusOK, newUserResponse(id.User))
}

// Login handles POST /users/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds auth.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	id, err := h.service.Login(r.Context(), creds)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrRateLimited):
			w.WriteHeader(http.StatusTooManyRequests)
		case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrValidation):
			w.WriteHeader(http.StatusBadRequest)
		default:
			h.logger.ErrorContext(r.Context(), "failed to log in", "error", err)
			w.WriteHeader(http.StatusBadRequest)
		}
		return
	}

	w.Header().Set(AuthHeader, id.Token)
	writeJSON(w, h.logger, http.StatusOK, newUserResponse(id.User))
}

// Me handles GET /users/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, newUserResponse(id.User))
}

// Logout handles DELETE /users/me/token
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if err := h.service.Logout(r.Context(), id); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to remove token", "user_id", id.User.ID, "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)
}
