package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go-todo-api/internal/adapter/api/rest"
	"go-todo-api/internal/adapter/ratelimit"
	"go-todo-api/internal/adapter/ratelimit/redis"
	"go-todo-api/internal/adapter/security/password"
	"go-todo-api/internal/adapter/security/token"
	"go-todo-api/internal/adapter/storage/mongodb"
	"go-todo-api/internal/adapter/storage/postgres"
	"go-todo-api/internal/config"
	"go-todo-api/internal/core/ports"
	"go-todo-api/internal/core/service"
	"go-todo-api/internal/observability"
)

// stores groups the repositories selected by STORE_DRIVER.
type stores struct {
	users  ports.UserRepository
	todos  ports.TodoRepository
	health ports.HealthChecker
	close  func()
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load .env file
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, relying on environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	tpShutdown, err := observability.InitTracerProvider(ctx, "todo-service", cfg.OtelExporterEndpoint)
	if err != nil {
		logger.Error("failed to init tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := tpShutdown(ctx); err != nil {
			logger.Error("failed to shutdown tracer", "error", err)
		}
	}()

	done := make(chan struct{})
	defer close(done)

	st, err := openStores(ctx, cfg, logger, done)
	if err != nil {
		logger.Error("failed to open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer st.close()

	hasher, err := password.New(password.Algorithm(cfg.PasswordHasher), cfg.BcryptCost)
	if err != nil {
		logger.Error("failed to init password hasher", "error", err)
		os.Exit(1)
	}

	limiter, closeLimiter := newLimiter(ctx, cfg, logger)
	defer closeLimiter()

	// Service Init
	users := service.NewUserStore(st.users, hasher)
	authSvc := service.NewAuthService(users, token.NewCodec(cfg.JWTSecret, cfg.TokenTTL), limiter, logger)
	todoSvc := service.NewTodoService(st.todos, logger)

	router := rest.NewRouter(
		rest.NewHandler(todoSvc, logger),
		rest.NewAuthHandler(authSvc, logger),
		rest.NewHealth(st.health, logger),
		rest.Authenticate(authSvc, logger),
		rest.RequestID, rest.Logger(logger), rest.Timeout(cfg.RequestTimeout), observability.Middleware,
	)

	// Note: Usually /metrics is on a separate admin port or protected
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Starting server", "addr", srv.Addr, "env", cfg.AppEnv, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}

func openStores(ctx context.Context, cfg config.Config, logger *slog.Logger, done <-chan struct{}) (stores, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		dbPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return stores{}, err
		}
		// Run Migrations (Apply on Startup)
		if err := postgres.RunMigrations(ctx, dbPool, logger); err != nil {
			dbPool.Close()
			return stores{}, err
		}
		observability.StartDBStatsCollector(dbPool, done)
		return stores{
			users:  postgres.NewUserRepository(dbPool),
			todos:  postgres.NewTodoRepository(dbPool),
			health: dbPool,
			close:  dbPool.Close,
		}, nil

	default:
		client, err := mongodb.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return stores{}, err
		}
		db := client.Database(cfg.MongoDatabase)
		if err := mongodb.EnsureIndexes(ctx, db, logger); err != nil {
			_ = client.Disconnect(ctx)
			return stores{}, err
		}
		return stores{
			users:  mongodb.NewUserRepository(db),
			todos:  mongodb.NewTodoRepository(db),
			health: mongodb.NewHealth(client),
			close: func() {
				if err := client.Disconnect(context.Background()); err != nil {
					logger.Error("failed to disconnect mongodb", "error", err)
				}
			},
		}, nil
	}
}

// newLimiter returns the Redis limiter when REDIS_ADDR is set and a no-op
// limiter otherwise. Both are wrapped with metrics.
func newLimiter(ctx context.Context, cfg config.Config, logger *slog.Logger) (ports.LoginLimiter, func()) {
	if cfg.RedisAddr == "" {
		logger.Info("REDIS_ADDR not set, login throttling disabled")
		return observability.NewInstrumentedLimiter(ratelimit.Noop{}), func() {}
	}

	lim := redis.NewLimiter(strings.TrimPrefix(cfg.RedisAddr, "redis://"), cfg.LoginMaxAttempts, cfg.LoginCooldown)
	if err := lim.Ping(ctx); err != nil {
		// Not fatal: Allow surfaces the error per request.
		logger.Warn("redis unreachable at startup", "error", err)
	}
	return observability.NewInstrumentedLimiter(lim), closer(lim, logger)
}

func closer(c io.Closer, logger *slog.Logger) func() {
	return func() {
		if err := c.Close(); err != nil {
			logger.Error("failed to close", "error", err)
		}
	}
}
