package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yamdb/database"
	"yamdb/internal/config"
	"yamdb/internal/logger"
	"yamdb/internal/mailer"
	"yamdb/internal/microservices/http-api/handler"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/service"
	"yamdb/internal/middleware/auth"
	"yamdb/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	// 1. Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatal(err)
	}

	log := logger.New("yamdb-api", cfg.GoEnv, cfg.LogLevel, cfg.LogFormat)

	// 2. Connect to the database
	db, err := database.Connect(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer database.Close(db)

	if cfg.DBAutoMigrate {
		if err := database.Migrate(db, log); err != nil {
			log.WithError(err).Fatal("schema migration failed")
		}
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.WithError(err).Fatal("database handle unavailable")
	}

	// 3. Mail delivery
	sender, closeSender, err := newSender(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("mail sender setup failed")
	}
	defer closeSender()

	// 4. Repositories and services
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	genreRepo := repository.NewGenreRepo(db)
	titleRepo := repository.NewTitleRepo(db)
	reviewRepo := repository.NewReviewRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	signer := auth.NewJWTSigner(cfg.JWTSecret, cfg.AccessTokenTTL)

	authService := service.NewAuthService(userRepo, signer, sender, cfg.ConfirmationCodeTTL, log)
	userService := service.NewUserService(userRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	genreService := service.NewGenreService(genreRepo)
	titleService := service.NewTitleService(titleRepo, categoryRepo, genreRepo)
	reviewService := service.NewReviewService(reviewRepo, titleRepo)
	commentService := service.NewCommentService(commentRepo, reviewRepo)

	// 5. Setup Gin
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	validation.Init()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS(cfg.CORSOrigins))

	authLimit, closeLimiter := newAuthLimiter(cfg, log)
	defer closeLimiter()

	handler.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Users:    handler.NewUserHandler(userService),
		Category: handler.NewCategoryHandler(categoryService),
		Genre:    handler.NewGenreHandler(genreService),
		Title:    handler.NewTitleHandler(titleService),
		Review:   handler.NewReviewHandler(reviewService),
		Comment:  handler.NewCommentHandler(commentService),
		Health:   handler.NewHealthHandler(sqlDB),
	}.Mount(r, middleware.Authenticate(signer, userRepo), authLimit)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("api server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		log.Info("received shutdown signal")
	case err := <-errChan:
		log.WithError(err).Error("server error")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	log.Info("server stopped")
}

// newSender picks the confirmation-code transport named by MAIL_DRIVER.
func newSender(cfg *config.Config, log *logrus.Logger) (mailer.Sender, func(), error) {
	switch cfg.MailDriver {
	case "mailgun":
		return mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailSender), func() {}, nil
	case "queue":
		pub, err := mailer.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			return nil, nil, err
		}
		log.WithField("queue", cfg.RabbitMQEmailQueue).Info("confirmation codes go through the email queue")
		return mailer.NewQueueSender(pub), pub.Close, nil
	default:
		log.Warn("MAIL_DRIVER=log: confirmation codes are only written to the log")
		return mailer.NewLogSender(log), func() {}, nil
	}
}

// newAuthLimiter shares counters through Redis when REDIS_URL is set and
// falls back to a per-process limiter otherwise.
func newAuthLimiter(cfg *config.Config, log *logrus.Logger) (gin.HandlerFunc, func()) {
	keyFn := middleware.KeyByIPAndPath()
	if cfg.RedisURL == "" {
		return middleware.LocalRateLimit(cfg.AuthRateLimit, cfg.AuthRateWindow, keyFn), func() {}
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.WithError(err).Fatal("invalid REDIS_URL")
	}
	if cfg.RedisPassword != "" {
		opts.Password = cfg.RedisPassword
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		// the limiter fails open, so a late Redis only costs throttling
		log.WithError(err).Warn("redis unreachable at startup")
	}

	limit := middleware.RateLimit(middleware.NewRedisCounter(rdb), cfg.AuthRateLimit, cfg.AuthRateWindow, keyFn, log)
	return limit, func() { _ = rdb.Close() }
}
