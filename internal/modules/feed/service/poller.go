package service

import (
	"candle_feed/internal/models"
	"candle_feed/pkg/tracing"
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Poller — режим без websocket: раз в period забирает все цены и
// пишет в кэш только символы из конфигурации.
type Poller struct {
	source ConfigurationSource
	prices PriceSource
	cache  CandleCache
	clock  clock.Clock
	period time.Duration
	log    *zap.Logger
}

func NewPoller(
	source ConfigurationSource,
	prices PriceSource,
	cache CandleCache,
	clk clock.Clock,
	period time.Duration,
	log *zap.Logger,
) *Poller {
	return &Poller{
		source: source,
		prices: prices,
		cache:  cache,
		clock:  clk,
		period: period,
		log:    log.Named("poller").With(zap.String("server", "binance")),
	}
}

// Run опрашивает сразу при старте, дальше раз в period.
func (p *Poller) Run(ctx context.Context) {
	poll := func(ctx context.Context) {
		if err := p.Poll(ctx); err != nil {
			p.log.Error("poll prices", zap.Error(err))
		}
	}
	poll(ctx)
	runEvery(ctx, p.clock, p.period, poll)
}

// Poll — один проход. Ошибка записи одного символа не мешает остальным,
// наружу уходит последняя.
func (p *Poller) Poll(ctx context.Context) (err error) {
	span, ctx := tracing.StartSpan(ctx, "feed.poll")
	defer func() { tracing.Finish(span, err) }()

	gc, err := p.source.GlobalConfiguration(ctx)
	if err != nil {
		return errors.Wrap(err, "fetch global configuration")
	}

	prices, err := p.prices.FetchAllPrices(ctx)
	if err != nil {
		return errors.Wrap(err, "fetch prices")
	}

	for _, symbol := range gc.Symbols {
		price, ok := prices[symbol]
		if !ok {
			continue
		}

		sample := models.NewPolledSample(symbol, price)
		p.log.Info("Received new price", zap.String("symbol", symbol), zap.String("close", price.String()))

		if werr := p.cache.Write(ctx, models.CandleScope, sample.CacheKey(), sample); werr != nil {
			err = errors.Wrapf(werr, "write %s", symbol)
		}
	}
	return err
}
