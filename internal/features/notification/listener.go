package notification

import (
	"context"
	"time"

	"go-elms/internal/features/letter"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

const listenerTimeout = 10 * time.Second

// RegisterLetterListeners subscribes the hub and the notification service to
// store events for the lifetime of the application. Notification writes run
// off the store's write path.
func RegisterLetterListeners(lc fx.Lifecycle, store letter.Store, service NotificationService, hub *Hub, logger *zap.Logger) {
	var unsubscribe []func()
	hubCtx, stopHub := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go hub.Run(hubCtx)
			unsubscribe = append(unsubscribe,
				store.Subscribe(hub.OnLetterEvent),
				store.Subscribe(func(ev letter.Event) {
					go func() {
						ctx, cancel := context.WithTimeout(context.Background(), listenerTimeout)
						defer cancel()
						if err := service.HandleLetterEvent(ctx, ev); err != nil {
							logger.Warn("Failed to create notification", zap.String("letter_id", ev.Letter.ID), zap.Error(err))
						}
					}()
				}),
			)
			return nil
		},
		OnStop: func(context.Context) error {
			for _, fn := range unsubscribe {
				fn()
			}
			stopHub()
			return nil
		},
	})
}
