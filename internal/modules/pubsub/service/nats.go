package service

import (
	"context"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var _ Bus = (*NatsBus)(nil)

type NatsBus struct {
	nc  *nats.Conn
	log *zap.Logger
}

func NewNatsBus(url, clientName string, log *zap.Logger) (*NatsBus, error) {
	log = log.Named("pubsub.nats")
	opts := []nats.Option{
		nats.Name(clientName),
		nats.Timeout(5 * time.Second),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
		nats.RetryOnFailedConnect(true),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info("connection closed")
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "connect nats %s", url)
	}
	return &NatsBus{nc: nc, log: log}, nil
}

func (b *NatsBus) Subscribe(ctx context.Context, channel string, handler func(channel, payload string)) (func(), error) {
	sub, err := b.nc.Subscribe(channel, func(m *nats.Msg) {
		handler(m.Subject, string(m.Data))
	})
	if err != nil {
		return nil, errors.Wrapf(err, "subscribe %s", channel)
	}

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() { _ = sub.Unsubscribe() })
	}
	go func() {
		<-ctx.Done()
		unsubscribe()
	}()

	b.log.Info("subscribed", zap.String("channel", channel))
	return unsubscribe, nil
}

func (b *NatsBus) Publish(_ context.Context, channel, payload string) error {
	if err := b.nc.Publish(channel, []byte(payload)); err != nil {
		return errors.Wrapf(err, "publish %s", channel)
	}
	return b.nc.Flush()
}

func (b *NatsBus) Close() error {
	return b.nc.Drain()
}
