// Package main runs the signage HTTP API (admin console + display queue) with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/agro-ad/backend/config"
	"github.com/agro-ad/backend/internal/auth"
	"github.com/agro-ad/backend/internal/campaigns"
	"github.com/agro-ad/backend/internal/display"
	"github.com/agro-ad/backend/internal/media"
	"github.com/agro-ad/backend/internal/middleware"
	"github.com/agro-ad/backend/internal/schedule"
	"github.com/agro-ad/backend/internal/tvs"
	"github.com/agro-ad/backend/pkg/database"
	"github.com/agro-ad/backend/pkg/queue"
	"github.com/agro-ad/backend/pkg/redis"
	"github.com/agro-ad/backend/pkg/response"
	"github.com/agro-ad/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), cfg.Database.MaxConns, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	// Media storage and the cleanup queue are optional; without a bucket uploads answer 503
	// and deleted ads leave their objects in place.
	var (
		mediaStore   media.Store
		mediaCleaner campaigns.MediaCleaner
	)
	if cfg.AWS.Enabled() {
		s3Client, err := storage.NewS3(ctx, storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			MediaBucket:          cfg.AWS.MediaBucket,
			Endpoint:             cfg.AWS.Endpoint,
			PublicBaseURL:        cfg.AWS.PublicBaseURL,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		} else {
			mediaStore = s3Client
		}

		rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Warn("media cleanup disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			mediaCleaner = queue.NewQueue(rdb.Client, logger)
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, auth.CookieConfig{
		Name:   cfg.JWT.CookieName,
		Domain: cfg.JWT.CookieDomain,
		Secure: cfg.JWT.CookieSecure,
	}, logger)

	// Scheduling core
	tvRepo := tvs.NewRepository(pool)
	campaignRepo := campaigns.NewRepository(pool)
	assigner := schedule.NewAssigner(campaignRepo, tvRepo, logger)
	resolver := schedule.NewResolver(campaignRepo, tvRepo)

	tvHandler := tvs.NewHandler(tvRepo, logger)
	campaignHandler := campaigns.NewHandler(campaignRepo, assigner, mediaCleaner, logger)
	displayHandler := display.NewHandler(resolver, logger)
	mediaHandler := media.NewHandler(mediaStore, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	if cfg.Server.DebugPprof {
		pprof.Register(router)
		logger.Info("pprof enabled", zap.String("path", pprof.DefaultPrefix))
	}

	// Health
	router.GET("/health", func(c *gin.Context) {
		if err := database.Healthy(c.Request.Context(), pool, 2*time.Second); err != nil {
			response.ServiceUnavailable(c, err.Error())
			return
		}
		response.OK(c, gin.H{"status": "ok"})
	})

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/logout", authHandler.Logout)
	}

	// Display (public; TVs are unauthenticated)
	router.GET("/display/tvs/:id/queue", displayHandler.Queue)

	// Admin console (session required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService, cfg.JWT.CookieName))
	{
		api.GET("/dashboard", campaignHandler.Dashboard)

		// TVs
		api.GET("/tvs", tvHandler.List)
		api.POST("/tvs", tvHandler.Create)
		api.GET("/tvs/:id", tvHandler.Get)
		api.PATCH("/tvs/:id", tvHandler.Update)
		api.DELETE("/tvs/:id", tvHandler.Delete)

		// Campaigns
		api.GET("/campaigns", campaignHandler.List)
		api.POST("/campaigns", campaignHandler.Create)
		api.GET("/campaigns/:id", campaignHandler.Get)
		api.PATCH("/campaigns/:id", campaignHandler.Update)
		api.DELETE("/campaigns/:id", campaignHandler.Delete)

		// Ads
		api.POST("/campaigns/:id/ads", campaignHandler.CreateAd)
		api.PATCH("/campaigns/:id/ads/:adId", campaignHandler.UpdateAd)
		api.DELETE("/campaigns/:id/ads/:adId", campaignHandler.DeleteAd)

		// Assignments
		api.PUT("/campaigns/:id/tvs", campaignHandler.SetAssignments)
		api.POST("/campaigns/:id/tvs/:tvId", campaignHandler.Assign)
		api.DELETE("/campaigns/:id/tvs/:tvId", campaignHandler.Unassign)

		// Media
		api.POST("/media/upload", mediaHandler.Upload)
		api.POST("/media/upload-url", mediaHandler.UploadURL)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
