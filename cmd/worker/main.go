// Package main runs the background job worker (deleting stored media of removed ads).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/agro-ad/backend/config"
	"github.com/agro-ad/backend/internal/worker"
	"github.com/agro-ad/backend/pkg/queue"
	"github.com/agro-ad/backend/pkg/redis"
	"github.com/agro-ad/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if !cfg.AWS.Enabled() {
		logger.Fatal("AWS_S3_MEDIA_BUCKET is required for the worker")
	}

	ctx := context.Background()
	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

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
		logger.Fatal("s3", zap.Error(err))
	}

	if backlog, err := rdb.Backlog(ctx, queue.QueueMedia, queue.QueueDLQ); err == nil {
		logger.Info("queue backlog",
			zap.Int64("pending", backlog[queue.QueueMedia]),
			zap.Int64("dead_letter", backlog[queue.QueueDLQ]),
		)
	}

	jobQueue := queue.NewQueue(rdb.Client, logger)
	cleaner := worker.NewMediaCleaner(s3Client, jobQueue, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		cleaner.Run(workerCtx)
	}()
	logger.Info("worker started", zap.String("queue", queue.QueueMedia))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	<-done
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
