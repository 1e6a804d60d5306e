package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"go-todo-api/internal/core/domain/auth"
	"go-todo-api/internal/core/ports"
)

type AuthService struct {
	users   *UserStore
	tokens  ports.TokenCodec
	limiter ports.LoginLimiter
	logger  *slog.Logger
}

var _ ports.AuthService = (*AuthService)(nil)

func NewAuthService(users *UserStore, tokens ports.TokenCodec, limiter ports.LoginLimiter, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:   users,
		tokens:  tokens,
		limiter: limiter,
		logger:  logger,
	}
}

// Register creates the user and issues its first token. If issuing fails the
// user remains without a token and the caller has to log in.
func (s *AuthService) Register(ctx context.Context, creds auth.Credentials) (auth.Identity, error) {
	ctx, span := tracer.Start(ctx, "AuthService.Register")
	defer span.End()

	creds = creds.Normalize()
	if err := auth.ValidateCredentials(creds); err != nil {
		return auth.Identity{}, err
	}

	user, err := s.users.Create(ctx, creds.Email, creds.Password)
	if err != nil {
		span.RecordError(err)
		return auth.Identity{}, err
	}
	span.SetAttributes(attribute.String("user.id", user.ID))

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return s.issue(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, creds auth.Credentials) (auth.Identity, error) {
	ctx, span := tracer.Start(ctx, "AuthService.Login")
	defer span.End()

	creds = creds.Normalize()
	key := strings.ToLower(creds.Email)

	// The attempt is counted before the password is checked, so parallel
	// guesses cannot overrun the budget.
	if err := s.limiter.Allow(ctx, key); err != nil {
		if errors.Is(err, auth.ErrRateLimited) {
			span.SetStatus(codes.Error, "rate limited")
		} else {
			span.RecordError(err)
		}
		return auth.Identity{}, err
	}

	user, err := s.users.FindByCredentials(ctx, creds.Email, creds.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return auth.Identity{}, auth.ErrInvalidCredentials
		}
		span.RecordError(err)
		return auth.Identity{}, err
	}

	if err := s.limiter.Reset(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "failed to reset login attempts", "error", err)
	}

	span.SetAttributes(attribute.String("user.id", user.ID))
	return s.issue(ctx, user)
}

// Logout revokes exactly the token that authenticated the request.
func (s *AuthService) Logout(ctx context.Context, id auth.Identity) error {
	ctx, span := tracer.Start(ctx, "AuthService.Logout", trace.WithAttributes(
		attribute.String("user.id", id.User.ID),
	))
	defer span.End()

	if err := s.users.RemoveToken(ctx, id.User, id.Token); err != nil {
		span.RecordError(err)
		return err
	}
	s.logger.InfoContext(ctx, "token revoked", "user_id", id.User.ID)
	return nil
}

// Authenticate resolves a raw token into an identity. Every rejection is
// auth.ErrUnauthenticated; only store failures surface as other errors.
func (s *AuthService) Authenticate(ctx context.Context, token string) (auth.Identity, error) {
	ctx, span := tracer.Start(ctx, "AuthService.Authenticate")
	defer span.End()

	if token == "" {
		return auth.Identity{}, auth.ErrUnauthenticated
	}

	claims, err := s.tokens.Parse(token)
	if err != nil {
		s.logger.DebugContext(ctx, "token rejected", "reason", err)
		return auth.Identity{}, auth.ErrUnauthenticated
	}
	if claims.Purpose != auth.PurposeAuth {
		s.logger.DebugContext(ctx, "token rejected", "reason", "purpose", "purpose", claims.Purpose)
		return auth.Identity{}, auth.ErrUnauthenticated
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return auth.Identity{}, auth.ErrUnauthenticated
		}
		span.RecordError(err)
		return auth.Identity{}, fmt.Errorf("failed to resolve user: %w", err)
	}

	if !user.HasToken(auth.PurposeAuth, token) {
		s.logger.DebugContext(ctx, "token rejected", "reason", "revoked", "user_id", user.ID)
		return auth.Identity{}, auth.ErrUnauthenticated
	}

	span.SetAttributes(attribute.String("user.id", user.ID))
	return auth.Identity{User: user, Token: token}, nil
}

func (s *AuthService) issue(ctx context.Context, user auth.User) (auth.Identity, error) {
	token, err := s.tokens.Issue(user.ID, auth.PurposeAuth)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("failed to issue token: %w", err)
	}

	user, err = s.users.AppendToken(ctx, user, token)
	if err != nil {
		return auth.Identity{}, err
	}
	return auth.Identity{User: user, Token: token}, nil
}
