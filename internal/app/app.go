// Package app wires configuration, storage, services and transport
// together and runs the selected process mode.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/mkondo/ludo/internal/auth"
	"github.com/mkondo/ludo/internal/catalog"
	"github.com/mkondo/ludo/internal/commerce"
	"github.com/mkondo/ludo/internal/community"
	"github.com/mkondo/ludo/internal/config"
	"github.com/mkondo/ludo/internal/database"
	"github.com/mkondo/ludo/internal/handler"
	"github.com/mkondo/ludo/internal/logger"
	"github.com/mkondo/ludo/internal/metrics"
	"github.com/mkondo/ludo/internal/middleware"
	"github.com/mkondo/ludo/internal/repository"
	"github.com/mkondo/ludo/internal/security"
	"github.com/mkondo/ludo/internal/social"
	"github.com/mkondo/ludo/internal/user"
	"github.com/mkondo/ludo/internal/worker/cleanup"
)

// Init sets up structured logging and loads the configuration.
// Logging comes first so config failures are already structured.
func Init(w io.Writer) (*config.Config, error) {
	logger.SetupDefault(w)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run is the main entry point. args is os.Args[1:].
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck skips full initialization: it must work without
	// DATABASE_URL or JWT_SECRET being set.
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe opens the database, wires every dependency and runs the
// HTTP server until SIGINT or SIGTERM, then drains for up to 30s.
func runServe(cfg *config.Config) error {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// repositories
	userRepo := repository.NewPostgresUserRepo(db)
	resetRepo := repository.NewPostgresResetTokenRepo(db)
	gameRepo := repository.NewPostgresGameRepo(db)
	libraryRepo := repository.NewPostgresLibraryRepo(db)
	cartRepo := repository.NewPostgresCartRepo(db)
	wishlistRepo := repository.NewPostgresWishlistRepo(db)
	orderRepo := repository.NewPostgresOrderRepo(db)
	friendshipRepo := repository.NewPostgresFriendshipRepo(db)
	postRepo := repository.NewPostgresPostRepo(db)

	// observability
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// security services
	avatarGuard := security.NewAvatarGuard()
	sanitizer := security.NewContentSanitizer()

	// domain services
	tokens := auth.NewTokenManager(auth.TokenConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.TokenTTL,
	})
	authService := auth.NewService(
		userRepo, resetRepo, auth.NewBcryptHasher(), tokens, collector,
		auth.ServiceConfig{ResetTokenTTL: cfg.ResetTokenTTL},
	)
	userService := user.NewService(userRepo, avatarGuard)
	catalogService := catalog.NewService(gameRepo)
	commerceService := commerce.NewService(
		cartRepo, wishlistRepo, libraryRepo, orderRepo, gameRepo, collector,
	)
	socialService := social.NewService(friendshipRepo, userRepo)
	communityService := community.NewService(postRepo, sanitizer)

	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	rateLimiterCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiterCfg.AuthRate = rate.Limit(float64(cfg.RateLimitAuth) / 60.0)
	rateLimiterCfg.AuthBurst = cfg.RateLimitAuth
	limiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer limiter.Stop()

	router := handler.NewRouter(&handler.RouterDeps{
		TokenValidator:    tokens,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       limiter,
		Logger:            slog.Default(),

		Metrics:  collector,
		Gatherer: registry,

		AuthService:       authService,
		TokenIntrospector: tokens,
		ResetMailer:       newLogResetMailer(cfg.BaseURL),
		UserService:       userService,
		CatalogService:    catalogService,
		CommerceService:   commerceService,
		SocialService:     socialService,
		CommunityService:  communityService,
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker runs the periodic maintenance jobs: currently the expired
// reset-token purge. Blocks until SIGINT or SIGTERM.
func runWorker(cfg *config.Config) error {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established (worker)")

	cleanupJob := cleanup.NewCleanupJob(db, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		slog.Info("shutting down worker...")
		cancel()
	}()

	slog.Info("worker starting",
		slog.Duration("cleanup_interval", cfg.CleanupInterval),
	)

	// Run once at startup, then on the configured interval.
	if err := cleanupJob.Run(ctx); err != nil {
		slog.Error("cleanup job failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("worker stopped gracefully")
			return nil
		case <-ticker.C:
			if err := cleanupJob.Run(ctx); err != nil {
				slog.Error("cleanup job failed", slog.String("error", err.Error()))
			}
		}
	}
}

// runMigrate applies all pending database migrations in order.
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck probes the local /health endpoint.
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL hides the credential portion of a database URL.
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
