package service

import (
	"candle_feed/internal/models"
	"candle_feed/pkg/tracing"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Manager держит единственную live-подписку на свечи.
// Acquire сериализованы: чтение символов, отзыв старого хэндла и
// новая подписка выполняются под одним локом.
type Manager struct {
	source   ConfigurationSource
	stream   CandleStream
	cache    CandleCache
	hb       *Heartbeat
	clock    clock.Clock
	interval string
	log      *zap.Logger

	mu     sync.Mutex
	handle models.FeedHandle

	// поколение текущей подписки; свечи от отозванных игнорируются.
	// recMu держит проверку поколения и запись в кэш одним шагом:
	// revoke ждёт запись, начатую старым хэндлом.
	recMu      sync.RWMutex
	gen        atomic.Uint64
	subscribed atomic.Bool
}

func NewManager(
	source ConfigurationSource,
	stream CandleStream,
	cache CandleCache,
	hb *Heartbeat,
	clk clock.Clock,
	interval string,
	log *zap.Logger,
) *Manager {
	return &Manager{
		source:   source,
		stream:   stream,
		cache:    cache,
		hb:       hb,
		clock:    clk,
		interval: interval,
		log:      log.Named("feed").With(zap.String("server", "binance")),
	}
}

// Acquire (пере)открывает подписку на свечи текущего набора символов.
// ctx ограничивает время жизни самой подписки.
func (m *Manager) Acquire(ctx context.Context) (err error) {
	span, ctx := tracing.StartSpan(ctx, "feed.acquire")
	defer func() { tracing.Finish(span, err) }()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.log.Info("Set websocket for candles")

	gc, err := m.source.GlobalConfiguration(ctx)
	if err != nil {
		return errors.Wrap(err, "fetch global configuration")
	}
	m.log.Info("Retrieved symbols", zap.Strings("symbols", gc.Symbols))
	span.SetTag("symbols", len(gc.Symbols))

	if m.handle != nil {
		m.log.Info("Existing opened socket for candles found, clean first")
		m.revoke()
	}

	m.recMu.Lock()
	gen := m.gen.Add(1)
	m.recMu.Unlock()

	handle, err := m.stream.SubscribeCandles(ctx, gc.Symbols, m.interval, func(tick models.CandleTick) {
		m.record(ctx, gen, tick)
	})
	if err != nil {
		return errors.Wrap(err, "subscribe candles")
	}

	m.handle = handle
	m.subscribed.Store(true)
	// свежей подписке даём полный интервал до признания фида устаревшим
	m.hb.Touch(m.clock.Now())
	return nil
}

func (m *Manager) record(ctx context.Context, gen uint64, tick models.CandleTick) {
	m.recMu.RLock()
	defer m.recMu.RUnlock()

	if m.gen.Load() != gen {
		return
	}
	m.hb.Touch(m.clock.Now())

	sample := models.NewStreamedSample(tick)
	m.log.Debug("Received new candle",
		zap.String("symbol", sample.Symbol),
		zap.String("close", sample.Close.String()),
	)
	if err := m.cache.Write(ctx, models.CandleScope, sample.CacheKey(), sample); err != nil {
		m.log.Error("write candle", zap.String("symbol", sample.Symbol), zap.Error(err))
	}
}

// revoke вызывается под m.mu.
func (m *Manager) revoke() {
	m.recMu.Lock()
	m.gen.Add(1)
	m.recMu.Unlock()

	m.handle.Close()
	m.handle = nil
	m.subscribed.Store(false)
}

// Close отзывает текущую подписку, если она есть.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.handle != nil {
		m.revoke()
	}
}

func (m *Manager) Subscribed() bool { return m.subscribed.Load() }

func (m *Manager) LastReceivedAt() time.Time { return m.hb.LastReceivedAt() }
