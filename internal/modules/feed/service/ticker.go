package service

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
)

// runEvery вызывает fn раз в period до отмены ctx. Следующий тик не
// начнётся, пока не закончился предыдущий.
func runEvery(ctx context.Context, clk clock.Clock, period time.Duration, fn func(ctx context.Context)) {
	t := clk.Ticker(period)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			fn(ctx)
		}
	}
}
