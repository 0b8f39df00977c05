package app

import (
	"context"
	"time"

	"coursehub_backend/internal/config"
	"coursehub_backend/pkg/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// startScheduler 注册后台定时任务
func (a *App) startScheduler(cfg *config.Config, s *services) {
	if cfg.Events.CleanupSpec == "" {
		return
	}

	c := cron.New()
	_, err := c.AddFunc(cfg.Events.CleanupSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		_, _ = s.event.CleanupEnded(ctx)
	})
	if err != nil {
		logger.Log.Error("Invalid event cleanup schedule", zap.String("spec", cfg.Events.CleanupSpec), zap.Error(err))
		return
	}

	c.Start()
	a.scheduler = c
	logger.Log.Info("Event cleanup scheduled", zap.String("spec", cfg.Events.CleanupSpec))
}
