package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	_ "portfolio-api/docs" // Swagger docs (generated)
	"portfolio-api/internal/analytics"
	"portfolio-api/internal/auth"
	"portfolio-api/internal/config"
	"portfolio-api/internal/contact"
	"portfolio-api/internal/database"
	"portfolio-api/internal/email"
	httpServer "portfolio-api/internal/http"
	"portfolio-api/internal/logging"
	"portfolio-api/internal/project"
	"portfolio-api/internal/ratelimit"
	"portfolio-api/internal/settings"
	"portfolio-api/internal/task"
	"portfolio-api/internal/user"
)

// @title           Portfolio API
// @version         1.0
// @description     A portfolio backend with authentication, session-scoped resources, and admin tooling.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	// Initialize database connection
	db, err := initDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// Initialize Redis connection
	redisClient, err := initRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	// Initialize repositories
	userRepo := user.NewRepository(db)
	taskRepo := task.NewRepository(db)
	projectRepo := project.NewRepository(db)
	contactRepo := contact.NewRepository(db)

	// Initialize rate limiter and analytics
	rateLimiter := ratelimit.NewLimiter(redisClient)
	recorder := analytics.NewRecorder(redisClient)

	// Initialize PASETO service
	pasetoService, err := auth.NewPasetoService(cfg.Auth.PasetoKey)
	if err != nil {
		return fmt.Errorf("failed to initialize PASETO service: %w", err)
	}

	// Initialize email service
	emailService := email.NewService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.OriginURL,
	)

	// Initialize settings service
	settingsService := settings.NewService(db)

	// Initialize auth service
	authService := auth.NewService(
		userRepo,
		pasetoService,
		emailService,
		logger,
		auth.Config{
			TokenDuration:    cfg.Auth.TokenDuration,
			RefreshThreshold: cfg.Auth.RefreshThreshold,
			Lockout: auth.LockoutPolicy{
				Threshold: cfg.Auth.LockoutThreshold,
				Duration:  cfg.Auth.LockoutDuration,
			},
			VerificationTTL:     cfg.Auth.VerificationTTL,
			ResendCooldown:      cfg.Auth.ResendCooldown,
			AllowAdminBootstrap: cfg.Server.IsDevelopment(),
		},
	)

	// Initialize HTTP handlers
	handlers := httpServer.Handlers{
		Auth:      auth.NewHandler(authService, rateLimiter, logger),
		Task:      task.NewHandler(taskRepo, logger),
		Project:   project.NewHandler(projectRepo, logger),
		Contact:   contact.NewHandler(contactRepo, settingsService, emailService, rateLimiter, logger),
		Settings:  settings.NewHandler(settingsService, logger),
		Analytics: analytics.NewHandler(recorder, logger),
	}
	authMiddleware := auth.NewMiddleware(authService)

	// Initialize router
	router := httpServer.NewRouter(cfg, handlers, authMiddleware, recorder, logger)

	// Initialize HTTP server
	serverAddr := ":" + cfg.Server.Port
	server := httpServer.NewServer(
		serverAddr,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Printf("Received signal: %v", sig)

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// initDB initializes the database connection and returns a Bun DB instance
func initDB(cfg config.DatabaseConfig) (*bun.DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return database.NewBunDB(sqlDB), nil
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Verify connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
