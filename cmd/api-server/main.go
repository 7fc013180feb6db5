package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"reviewhub/database"
	"reviewhub/internal/config"
	"reviewhub/internal/http-api/handler"
	"reviewhub/internal/http-api/middleware"
	"reviewhub/internal/http-api/repository"
	"reviewhub/internal/http-api/service"
	"reviewhub/internal/http-api/validation"
	"reviewhub/internal/notifier"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("could not load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	db, err := database.Connect(cfg, logger)
	if err != nil {
		logger.Error("could not connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close(db)

	// Redis is optional; without it rate limiting falls back to an
	// in-process limiter.
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, using in-process rate limiting", "error", err)
			rdb = nil
		}
		cancel()
	}

	var mailer notifier.Notifier
	if cfg.AMQPURL != "" {
		mailer = notifier.NewAMQPNotifier(cfg.AMQPURL, logger)
	} else {
		logger.Warn("AMQP_URL not set, confirmation codes will only be logged")
		mailer = notifier.NewLogNotifier(logger)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	genreRepo := repository.NewGenreRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	titleRepo := repository.NewTitleRepo(db)
	reviewRepo := repository.NewReviewRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// Services
	authService := service.NewAuthService(userRepo, mailer, cfg)
	userService := service.NewUserService(userRepo)
	genreService := service.NewGenreService(genreRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	titleService := service.NewTitleService(titleRepo, genreRepo, categoryRepo, reviewRepo)
	reviewService := service.NewReviewService(reviewRepo, titleRepo)
	commentService := service.NewCommentService(commentRepo, reviewRepo)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := validation.RegisterBindingTags(); err != nil {
		logger.Error("could not register binding tags", "error", err)
		os.Exit(1)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.ResolveActor(authService))

	limiter := middleware.RateLimit(rdb, cfg.AuthRateLimit, cfg.AuthRateWindow)
	handler.NewAuthHandler(authService).RegisterRoutes(api, limiter)
	handler.NewUserHandler(userService).RegisterRoutes(api)
	handler.NewGenreHandler(genreService).RegisterRoutes(api)
	handler.NewCategoryHandler(categoryService).RegisterRoutes(api)
	handler.NewTitleHandler(titleService).RegisterRoutes(api)
	handler.NewReviewHandler(reviewService).RegisterRoutes(api)
	handler.NewCommentHandler(commentService).RegisterRoutes(api)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server running", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
