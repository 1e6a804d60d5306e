package rest

import (
	"net/http"
)

// NewRouter initializes the HTTP router and registers routes.
func NewRouter(h *Handler, authH *AuthHandler, health *Health, guard Middleware, mws ...Middleware) http.Handler {
	mux := http.NewServeMux()

	// Public Routes
	mux.HandleFunc("POST /users", authH.Register)
	mux.HandleFunc("POST /users/login", authH.Login)
	mux.Handle("GET /healthz", health)

	// Protected Routes
	mux.Handle("GET /users/me", guard(http.HandlerFunc(authH.Me)))
	mux.Handle("DELETE /users/me/token", guard(http.HandlerFunc(authH.Logout)))

	mux.Handle("POST /todos", guard(http.HandlerFunc(h.Create)))
	mux.Handle("GET /todos", guard(http.HandlerFunc(h.List)))
	mux.Handle("GET /todos/{id}", guard(http.HandlerFunc(h.Get)))
	mux.Handle("DELETE /todos/{id}", guard(http.HandlerFunc(h.Delete)))
	mux.Handle("PATCH /todos/{id}", guard(http.HandlerFunc(h.Update)))

	return Chain(mux, mws...)
}
