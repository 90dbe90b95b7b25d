package eventbus

import (
	"context"

	"github.com/annel0/endless-structure/internal/logging"
)

// StartLoggingListener подписывается на все события и пишет их в лог.
// Вход и выход из зоны лазания пишутся на INFO, остальное на DEBUG.
// Функция неблокирующая.
func StartLoggingListener(ctx context.Context, bus EventBus, log *logging.Logger) (Subscription, error) {
	if log == nil {
		log = logging.Default()
	}
	sub, err := bus.Subscribe(ctx, Filter{}, func(_ context.Context, ev *Envelope) {
		switch ev.EventType {
		case TypeClimbEnter, TypeClimbExit:
			log.Infof("[EventBus] 🧗 %s src=%s payload=%s", ev.EventType, ev.Source, ev.Payload)
		default:
			log.Debugf("[EventBus] %s %s src=%s prio=%d size=%dB", ev.ID, ev.EventType, ev.Source, ev.Priority, len(ev.Payload))
		}
	})
	if err != nil {
		return nil, err
	}
	log.Infof("🪵 LoggingListener: подписка на все события активирована")
	return sub, nil
}
