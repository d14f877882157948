package service

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type acquirer interface {
	Acquire(ctx context.Context) error
}

// Listener пересобирает подписку на каждое сообщение о смене конфигурации.
// Подписка на канал регистрируется один раз, повторный Start только
// делает Acquire.
type Listener struct {
	bus     ChangeChannel
	manager acquirer
	channel string
	log     *zap.Logger

	mu          sync.Mutex
	unsubscribe func()
}

func NewListener(bus ChangeChannel, manager acquirer, channel string, log *zap.Logger) *Listener {
	return &Listener{
		bus:     bus,
		manager: manager,
		channel: channel,
		log:     log.Named("reconfigure").With(zap.String("channel", channel)),
	}
}

func (l *Listener) Start(ctx context.Context) error {
	if err := l.subscribe(ctx); err != nil {
		return err
	}
	return l.manager.Acquire(ctx)
}

func (l *Listener) subscribe(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.unsubscribe != nil {
		return nil
	}

	unsubscribe, err := l.bus.Subscribe(ctx, l.channel, func(_, payload string) {
		l.log.Info("Configuration changed, reset websocket", zap.String("payload", payload))
		if err := l.manager.Acquire(ctx); err != nil {
			l.log.Error("reacquire after configuration change", zap.Error(err))
		}
	})
	if err != nil {
		return errors.Wrap(err, "subscribe configuration changes")
	}
	l.unsubscribe = unsubscribe
	return nil
}

// Subscribed — зарегистрирована ли подписка на канал.
func (l *Listener) Subscribed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.unsubscribe != nil
}

func (l *Listener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.unsubscribe != nil {
		l.unsubscribe()
		l.unsubscribe = nil
	}
}
