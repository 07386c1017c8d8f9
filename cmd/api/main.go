// @title           Group Ledger API
// @version         1.0
// @description     Shared-expense ledger: groups, members, expenses and per-member balances.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/sync/errgroup"

	_ "github.com/fkhayef/groupledger/docs"
	"github.com/fkhayef/groupledger/internal/balance"
	"github.com/fkhayef/groupledger/internal/cache"
	"github.com/fkhayef/groupledger/internal/config"
	"github.com/fkhayef/groupledger/internal/database"
	"github.com/fkhayef/groupledger/internal/events"
	"github.com/fkhayef/groupledger/internal/expense"
	"github.com/fkhayef/groupledger/internal/group"
	"github.com/fkhayef/groupledger/internal/metrics"
	"github.com/fkhayef/groupledger/internal/notification"
	"github.com/fkhayef/groupledger/internal/user"
	"github.com/fkhayef/groupledger/pkg/logging"
	mw "github.com/fkhayef/groupledger/pkg/middleware"
)

// publisher is the event sink expenses are announced to
type publisher interface {
	expense.Listener
	Close() error
}

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables")
	}

	cfg := config.Load()
	logging.Setup(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	if cfg.RunMigrations {
		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			return err
		}
		slog.Info("Migrations applied")
	}

	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Info("Connected to database")

	var sink publisher = events.Nop{}
	if cfg.AMQPURL != "" {
		p, err := events.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return err
		}
		sink = p
		slog.Info("Publishing expense events", "exchange", cfg.AMQPExchange)
	}
	defer sink.Close()

	// Balance cache, keyed by group version
	balanceCache := cache.NewLRU[*balance.Result](cfg.BalanceCacheSize, cfg.BalanceCacheTTL)

	// User feature
	userService := user.NewService(user.NewRepository(db))
	userHandler := user.NewHandler(userService)

	// Group feature
	groupService := group.NewService(group.NewRepository(db))
	groupHandler := group.NewHandler(groupService)

	// Notification feature
	notificationService := notification.NewService(notification.NewRepository(db))
	notificationHandler := notification.NewHandler(notificationService)

	// Expense feature; notifications and events hear about every recorded expense
	expenseService := expense.NewService(expense.NewRepository(db), notificationService, sink)
	expenseHandler := expense.NewHandler(expenseService)

	// Balance feature
	balanceService := balance.NewService(balance.NewRepository(db), balanceCache)
	balanceHandler := balance.NewHandler(balanceService)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(logging.RequestLogger)
	r.Use(metrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", metrics.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		guard := func(next http.Handler) http.Handler { return next }

		switch cfg.AuthMode {
		case config.AuthModeJWT:
			r.Use(mw.AuthMiddleware(mw.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)))
			guard = mw.ReadOnlyUnlessAuthenticated
		default:
			slog.Warn("AUTH_MODE=dev: callers pick their identity with X-Test-User-ID")
			r.Use(mw.TestUserMiddleware)
		}

		// Sign-up stays open; users can only change themselves
		r.Mount("/users", userHandler.Routes())
		r.With(guard).Mount("/groups", groupHandler.Routes(expenseHandler.GroupRoutes, balanceHandler.GroupRoutes))
		r.With(guard).Mount("/expenses", expenseHandler.Routes())
		r.Mount("/notifications", notificationHandler.Routes())
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Server starting", "port", cfg.Port, "auth_mode", cfg.AuthMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
