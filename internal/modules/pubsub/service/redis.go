package service

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var _ Bus = (*RedisBus)(nil)

type RedisBus struct {
	rdb *goredis.Client
	log *zap.Logger
}

func NewRedisBus(rdb *goredis.Client, log *zap.Logger) *RedisBus {
	return &RedisBus{rdb: rdb, log: log.Named("pubsub.redis")}
}

func (b *RedisBus) Subscribe(ctx context.Context, channel string, handler func(channel, payload string)) (func(), error) {
	ps := b.rdb.Subscribe(ctx, channel)
	// ждём подтверждения, иначе первые publish могут потеряться
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, errors.Wrapf(err, "subscribe %s", channel)
	}

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() { _ = ps.Close() })
	}

	msgs := ps.Channel()
	go func() {
		for msg := range msgs {
			handler(msg.Channel, msg.Payload)
		}
	}()
	go func() {
		<-ctx.Done()
		unsubscribe()
	}()

	b.log.Info("subscribed", zap.String("channel", channel))
	return unsubscribe, nil
}

func (b *RedisBus) Publish(ctx context.Context, channel, payload string) error {
	if err := b.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return errors.Wrapf(err, "publish %s", channel)
	}
	return nil
}

// Close — клиент общий, его закрывает redis-модуль.
func (b *RedisBus) Close() error { return nil }
