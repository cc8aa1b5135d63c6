package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/bdu-suport/bdu-suport-api/api/swagger"
	"github.com/bdu-suport/bdu-suport-api/internal/handler"
	"github.com/bdu-suport/bdu-suport-api/internal/middleware"
	"github.com/bdu-suport/bdu-suport-api/internal/repository"
	"github.com/bdu-suport/bdu-suport-api/internal/service"
	"github.com/bdu-suport/bdu-suport-api/internal/zalo"
	"github.com/bdu-suport/bdu-suport-api/pkg/cache"
	"github.com/bdu-suport/bdu-suport-api/pkg/config"
	"github.com/bdu-suport/bdu-suport-api/pkg/database"
	"github.com/bdu-suport/bdu-suport-api/pkg/logger"
	"github.com/bdu-suport/bdu-suport-api/pkg/mailer"
	corsmiddleware "github.com/bdu-suport/bdu-suport-api/pkg/middleware/cors"
	reqidmiddleware "github.com/bdu-suport/bdu-suport-api/pkg/middleware/requestid"
)

// @title BDU Suport API
// @version 1.0.0
// @description University admission backend: registration review, mini-app sessions, notification fan-out.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect redis", "error", err)
	}
	defer redisClient.Close()

	registrations := repository.NewRegistrationRepository(db)
	miniApp := repository.NewMiniAppRepository(db)
	warehouse := repository.NewDWRepository(db)
	sessions := repository.NewSessionRepository(redisClient)
	audits := repository.NewAuditRepository(db)
	accounts := repository.NewAccountRepository(db)

	metrics := service.NewMetricsService()

	sender := mailer.NewSendgridSender(cfg.Mail.SendgridKey, cfg.Mail.FromName, cfg.Mail.FromAddress, logr)
	dispatcher := service.NewMailDispatcher(sender, service.MailDispatcherConfig{
		Workers:    cfg.Mail.Workers,
		MaxRetries: cfg.Mail.MaxRetries,
	}, logr)

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dispatcher.Start(rootCtx)
	defer dispatcher.Stop()

	authService := service.NewAuthService(accounts, audits, nil, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	reviewService := service.NewReviewService(registrations, audits, miniApp, dispatcher, metrics, nil, logr, cfg.Review.EnforceQuota)
	exportService := service.NewExportService(registrations, logr)
	notificationService := service.NewNotificationService(warehouse, miniApp, miniApp, metrics, logr)
	dwService := service.NewDWService(warehouse, logr)
	sessionService := service.NewSessionService(
		zalo.NewClient(cfg.Zalo.UserInfoURL, cfg.Zalo.Timeout),
		miniApp, sessions, metrics, nil, logr, cfg.Session.TTL,
	)

	authHandler := handler.NewAuthHandler(authService)
	registrationHandler := handler.NewRegistrationHandler(reviewService, exportService)
	miniAppHandler := handler.NewMiniAppHandler(sessionService)
	taskHandler := handler.NewTaskHandler(notificationService, dwService)
	metricsHandler := handler.NewMetricsHandler(metrics)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/auth/login", authHandler.Login)

		api.POST("/miniapp/auth/session", miniAppHandler.RegisterSession)
		api.GET("/miniapp/auth/session", miniAppHandler.ValidateSession)

		protected := api.Group("", middleware.JWT(authService))
		{
			protected.GET("/auth/audit-logs", authHandler.AuditTrail)

			protected.GET("/admission-registrations", registrationHandler.List)
			protected.GET("/admission-registrations/export", registrationHandler.Export)
			protected.GET("/admission-registrations/:id", registrationHandler.Get)
			protected.POST("/admission-registrations/:id/review", registrationHandler.Review)

			protected.POST("/tasks/notifications/attendance", taskHandler.ComposeAttendance)
			protected.POST("/tasks/notifications/classification", taskHandler.ComposeClassification)
			protected.POST("/tasks/dw/attendances", taskHandler.IngestAttendances)
			protected.POST("/tasks/dw/classifications", taskHandler.IngestClassifications)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Sugar().Infow("server shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
}
