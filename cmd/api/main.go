package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vdblog/vdblog-backend/internal/api"
	"github.com/vdblog/vdblog-backend/internal/auth"
	"github.com/vdblog/vdblog-backend/internal/authz"
	"github.com/vdblog/vdblog-backend/internal/blog"
	"github.com/vdblog/vdblog-backend/internal/config"
	gdb "github.com/vdblog/vdblog-backend/internal/db"
	"github.com/vdblog/vdblog-backend/internal/initializer"
	"github.com/vdblog/vdblog-backend/internal/log"
	"github.com/vdblog/vdblog-backend/internal/metrics"
	"github.com/vdblog/vdblog-backend/internal/session"
	"github.com/vdblog/vdblog-backend/pkg/kv"

	_ "github.com/vdblog/vdblog-backend/pkg/kv/memory"
	_ "github.com/vdblog/vdblog-backend/pkg/kv/redis"
)

// Demo account created when BLOG_SEED_FIXTURES is set.
const (
	demoUsername = "demo"
	demoPassword = "demo-password"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, err := log.NewSugar(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Infow("Starting VD Blog API server",
		"env", cfg.Env,
		"addr", cfg.HTTPAddr,
		"db", cfg.Database.Type,
		"sessions", cfg.Session.Backend,
	)

	// Setup metrics
	metricsObj, metricsHandler, err := metrics.Setup("vdblog-api")
	if err != nil {
		logger.Fatalw("Failed to setup metrics", "error", err)
	}

	// Initialize database
	db, err := gdb.NewDatabase(gdb.Config{
		Type:         cfg.Database.Type,
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
	}, logger)
	if err != nil {
		logger.Fatalw("Failed to create database", "error", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := gdb.ConnectAndMigrate(ctx, db); err != nil {
		logger.Fatalw("Failed to initialize database", "error", err)
	}
	defer db.Disconnect(context.Background())
	logger.Infow("Database initialized")

	authenticator := auth.NewAuthenticator(db.Users(), logger)

	if cfg.SeedFixtures {
		result, err := initializer.Initialize(ctx, db, authenticator, initializer.Options{
			Users:    []initializer.UserSpec{{Username: demoUsername, Password: demoPassword, Staff: true}},
			Fixtures: true,
		})
		if err != nil {
			logger.Fatalw("Failed to seed fixtures", "error", err)
		}
		logger.Infow("Demo data ready", "user", demoUsername, "fixtures_loaded", result.FixturesLoaded)
	}

	// Setup session store
	sessionStore, err := kv.NewStoreFromConfig(kv.Config{
		Backend:  kv.Backend(cfg.Session.Backend),
		RedisURL: cfg.Session.RedisURL,
	})
	if err != nil {
		logger.Fatalw("Failed to setup session store", "error", err)
	}
	defer sessionStore.Close()

	if err := sessionStore.Ping(ctx); err != nil {
		logger.Fatalw("Session store ping failed", "error", err)
	}
	logger.Infow("Session store ready", "backend", cfg.Session.Backend)

	sessions := session.NewManager(sessionStore, session.Options{
		Secret: cfg.Session.Secret,
		TTL:    cfg.Session.TTL,
		Secure: cfg.Session.CookieSecure,
	}, logger)

	// Setup authorization policy
	enforcer, err := authz.NewEnforcer(authz.Config{
		ModelPath:  cfg.Authz.ModelPath,
		PolicyPath: cfg.Authz.PolicyPath,
	})
	if err != nil {
		logger.Fatalw("Failed to load authorization policy", "error", err)
	}

	// Setup services
	blogSvc := blog.NewService(db, enforcer, metricsObj, logger)

	// Setup API handler and middleware
	handler := api.NewHandler(blogSvc, authenticator, sessions, db, logger, metricsObj)
	middleware := api.NewMiddleware(logger, metricsObj)

	router := handler.Routes(middleware, api.RouterOptions{
		CORSOrigins:    cfg.Security.CORSAllowedOrigins,
		RateLimitRPM:   cfg.Security.RateLimitRPM,
		LoginRateLimit: cfg.Security.LoginRateLimit,
		MetricsHandler: metricsHandler,
	})

	// Log configured CORS origins for easier debugging in dev
	logger.Infow("CORS configured", "allowed_origins", cfg.Security.CORSAllowedOrigins)

	// Setup HTTP server
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	serverErrors := make(chan error, 1)
	go func() {
		logger.Infow("API server starting", "addr", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Fatalw("Server startup failed", "error", err)
	case sig := <-shutdown:
		logger.Infow("Shutdown signal received", "signal", sig.String())

		// Give outstanding requests 30 seconds to complete
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Errorw("Graceful shutdown failed", "error", err)
			server.Close()
		}

		logger.Infow("Server stopped")
	}
}
