package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type poller interface {
	Poll(ctx context.Context) error
}

type notifier interface {
	Send(ctx context.Context, text string) error
}

// Warmuper заполняет кэш REST-ценами до первой свечи из websocket,
// чтобы читатели не видели пустой hash после рестарта.
type Warmuper struct {
	poller   poller
	n        notifier
	attempts int
	backoff  time.Duration
	log      *zap.Logger
}

func NewWarmuper(p poller, n notifier, log *zap.Logger) *Warmuper {
	return &Warmuper{
		poller:   p,
		n:        n,
		attempts: 3,
		backoff:  time.Second,
		log:      log.Named("warmup"),
	}
}

func (w *Warmuper) Warmup(ctx context.Context) error {
	var err error
	for i := 1; i <= w.attempts; i++ {
		if err = w.poller.Poll(ctx); err == nil {
			w.log.Info("REST warmup finished", zap.Int("attempt", i))
			return nil
		}
		w.log.Warn("REST warmup attempt failed", zap.Int("attempt", i), zap.Error(err))

		if i == w.attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.backoff):
		}
	}

	if nerr := w.n.Send(ctx, fmt.Sprintf("⚠️ REST warmup finished with error: %v", err)); nerr != nil {
		w.log.Warn("warmup alert failed", zap.Error(nerr))
	}
	return err
}
