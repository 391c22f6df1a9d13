// Package main runs the headless display client: one playback session per configured TV.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/agro-ad/backend/config"
	"github.com/agro-ad/backend/internal/display"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if len(cfg.Display.TVIDs) == 0 {
		logger.Fatal("DISPLAY_TV_IDS is empty")
	}

	client := display.NewClient(cfg.Display.ServerURL, cfg.Display.HTTPTimeout(), cfg.Display.ProbeTimeout(), logger)
	opts := display.SessionOptions{
		PollInterval:  cfg.Display.PollInterval(),
		VideoFallback: cfg.Display.VideoFallback(),
		OnShow: func(tvID string, item display.QueueItem) {
			logger.Info("now showing",
				zap.String("tv_id", tvID),
				zap.String("ad_id", item.ID),
				zap.String("kind", string(item.Kind)),
				zap.String("campaign", item.CampaignName),
			)
		},
	}
	registry := display.NewRegistry(func(tvID string) *display.Session {
		return display.NewSession(tvID, client, client, opts, logger)
	})
	for _, tvID := range cfg.Display.TVIDs {
		registry.Start(tvID)
	}
	logger.Info("display client started",
		zap.String("server", cfg.Display.ServerURL),
		zap.Strings("tvs", registry.Running()),
		zap.Duration("poll", cfg.Display.PollInterval()),
	)

	// SIGHUP forces every TV to re-fetch its queue immediately.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	for s := range sig {
		if s == syscall.SIGHUP {
			for _, tvID := range registry.Running() {
				registry.Reload(tvID)
			}
			continue
		}
		break
	}

	registry.StopAll()
	logger.Info("display client stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
