package delivery

import (
	"context"
	"time"

	"go-elms/internal/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const sweepTimeout = 5 * time.Minute

// RegisterScheduler runs Sweep on DELIVERY_SCHEDULE while the app is up.
// Nothing is scheduled when no SMTP host is configured.
func RegisterScheduler(lc fx.Lifecycle, cfg *config.Config, svc DeliveryService, logger *zap.Logger) error {
	if !cfg.SMTPEnabled() {
		logger.Info("SMTP not configured, letter delivery disabled")
		return nil
	}

	scheduler := cron.New()
	_, err := scheduler.AddFunc(cfg.DeliverySchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		if _, err := svc.Sweep(ctx); err != nil {
			logger.Error("Delivery sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			scheduler.Start()
			logger.Info("Delivery scheduler started", zap.String("schedule", cfg.DeliverySchedule))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			done := scheduler.Stop()
			select {
			case <-done.Done():
			case <-ctx.Done():
			}
			return nil
		},
	})
	return nil
}
