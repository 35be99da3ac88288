package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	_ "github.com/redmonkez12/learnhub-api/docs" // Swagger docs
	"github.com/redmonkez12/learnhub-api/internal/auth"
	"github.com/redmonkez12/learnhub-api/internal/config"
	"github.com/redmonkez12/learnhub-api/internal/course"
	"github.com/redmonkez12/learnhub-api/internal/database"
	"github.com/redmonkez12/learnhub-api/internal/email"
	"github.com/redmonkez12/learnhub-api/internal/enrollment"
	httpServer "github.com/redmonkez12/learnhub-api/internal/http"
	"github.com/redmonkez12/learnhub-api/internal/imagehost"
	"github.com/redmonkez12/learnhub-api/internal/logging"
	"github.com/redmonkez12/learnhub-api/internal/profile"
	"github.com/redmonkez12/learnhub-api/internal/ratelimit"
	"github.com/redmonkez12/learnhub-api/internal/user"
)

// @title           LearnHub API
// @version         1.0
// @description     User accounts, password reset, profiles and course enrollment for the LearnHub e-learning platform.

// @contact.name   API Support
// @contact.email  support@learnhub.dev

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"token_strategy", cfg.Auth.TokenStrategy,
		"require_token", cfg.Auth.RequireToken,
	)

	db, err := database.Open(cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			return err
		}
		logger.Info("database migrations applied")
	}

	redisClient, err := initRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	userRepo := user.NewRepository(db)
	courseRepo := course.NewRepository(db)

	rateLimiter := ratelimit.NewLimiter(redisClient, cfg.RateLimit.MaxAttempts, cfg.RateLimit.Window)

	tokenService, err := auth.NewTokenService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	emailService, err := email.NewService(cfg.Email, cfg.Auth.ResetTokenDuration)
	if err != nil {
		return fmt.Errorf("failed to initialize email service: %w", err)
	}
	if cfg.Email.SMTPHost == "" {
		logger.Warn("SMTP_HOST not set, emails will be reported as not sent")
	}

	var images profile.ImageHost
	if cfg.ImageHost.Enabled() {
		host, err := imagehost.New(cfg.ImageHost)
		if err != nil {
			return fmt.Errorf("failed to initialize image host: %w", err)
		}
		images = host
	} else {
		logger.Warn("CLOUD_NAME not set, profile images stay local")
	}

	intake, err := profile.NewIntake(cfg.Upload.Dir)
	if err != nil {
		return fmt.Errorf("failed to initialize upload intake: %w", err)
	}

	authService := auth.NewService(
		userRepo,
		tokenService,
		emailService,
		logger,
		cfg.Auth.TokenDuration,
		cfg.Auth.ResetTokenDuration,
	)
	profileService := profile.NewService(userRepo, images, logger, cfg.ImageHost.Timeout)
	enrollmentService := enrollment.NewService(userRepo, courseRepo, emailService, logger)

	handlers := httpServer.Handlers{
		Auth: auth.NewHandler(
			authService,
			rateLimiter,
			logger,
			!cfg.Server.IsDevelopment(), // isProduction
			cfg.Auth.TokenDuration,
		),
		Profile:    profile.NewHandler(profileService, intake, cfg.Upload.MaxBytes),
		Enrollment: enrollment.NewHandler(enrollmentService),
	}
	authMiddleware := auth.NewMiddleware(tokenService)

	router := httpServer.NewRouter(cfg, handlers, authMiddleware, logger)

	server := httpServer.NewServer(
		":"+cfg.Server.Port,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("received signal", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}

		if err := profileService.Wait(ctx); err != nil {
			logger.Warn("image uploads still pending at shutdown", "error", err)
		}
	}

	return nil
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
