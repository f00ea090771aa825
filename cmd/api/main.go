package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	_ "github.com/redmonkez12/recipe-api/docs"
	"github.com/redmonkez12/recipe-api/internal/auth"
	"github.com/redmonkez12/recipe-api/internal/config"
	"github.com/redmonkez12/recipe-api/internal/database"
	httpServer "github.com/redmonkez12/recipe-api/internal/http"
	"github.com/redmonkez12/recipe-api/internal/logging"
	"github.com/redmonkez12/recipe-api/internal/metrics"
	"github.com/redmonkez12/recipe-api/internal/ratelimit"
	"github.com/redmonkez12/recipe-api/internal/recipe"
	"github.com/redmonkez12/recipe-api/internal/storage"
	"github.com/redmonkez12/recipe-api/internal/user"
	"github.com/redmonkez12/recipe-api/internal/validation"
)

// @title           Recipe API
// @version         1.0
// @description     Recipe management backend with per-user tags, ingredients, recipes and image upload.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey TokenAuth
// @in header
// @name Authorization
// @description Type "Token" followed by a space and the token from /user/token.

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
		"storage", cfg.Storage.Backend,
	)

	ctx := context.Background()

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(cfg.Database.URL()); err != nil {
			return err
		}
		logger.Info("database migrations applied")
	}

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	var (
		tokenCache  auth.TokenCache = auth.NopCache{}
		rateLimiter *ratelimit.Limiter
	)
	if cfg.Redis.Enabled {
		redisClient, err := initRedis(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to initialize Redis: %w", err)
		}
		defer redisClient.Close()

		tokenCache = auth.NewRedisTokenCache(redisClient, cfg.Auth.TokenCacheTTL)
		rateLimiter = ratelimit.NewLimiter(redisClient, cfg.RateLimit.Requests, cfg.RateLimit.Window)
	} else {
		logger.Warn("redis disabled: token cache and rate limiting are off")
	}

	store, mediaRoot, err := initStorage(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	pasetoService, err := auth.NewPasetoService(cfg.Auth.PasetoKey, cfg.Auth.TokenDuration)
	if err != nil {
		return fmt.Errorf("failed to initialize PASETO service: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	validator := validation.NewValidator()

	userService := user.NewService(
		user.NewRepository(db),
		user.NewArgon2Hasher(user.DefaultArgon2Params),
		validator,
	)
	authService := auth.NewService(userService, auth.NewRepository(db), tokenCache, pasetoService)
	recipeService := recipe.NewService(recipe.NewRepository(db), store, validator)

	router := httpServer.NewRouter(cfg, httpServer.Handlers{
		User:           user.NewHandler(userService, collector),
		Auth:           auth.NewHandler(authService, validator, collector),
		Recipe:         recipe.NewHandler(recipeService, collector, cfg.Storage.MaxUploadSize),
		AuthMiddleware: auth.NewMiddleware(authService),
		Limiter:        rateLimiter,
		Metrics:        collector,
		Gatherer:       registry,
		MediaRoot:      mediaRoot,
	}, logger)

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
	}

	return nil
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}

// initStorage builds the configured image backend. mediaRoot is non-empty
// only for the local backend, whose files the API serves itself.
func initStorage(ctx context.Context, cfg config.StorageConfig) (store storage.Storage, mediaRoot string, err error) {
	switch cfg.Backend {
	case "s3":
		s3Store, err := storage.NewS3Storage(ctx, cfg.S3, cfg.MediaURL)
		if err != nil {
			return nil, "", err
		}
		return s3Store, "", nil
	default:
		local, err := storage.NewLocalStorage(cfg.MediaRoot, cfg.MediaURL)
		if err != nil {
			return nil, "", err
		}
		return local, local.Root(), nil
	}
}
