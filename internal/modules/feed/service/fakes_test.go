package service

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"candle_feed/internal/models"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type fakeSource struct {
	mu      sync.Mutex
	symbols []string
	err     error
	calls   int
}

func (s *fakeSource) GlobalConfiguration(context.Context) (*models.GlobalConfiguration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &models.GlobalConfiguration{Symbols: append([]string(nil), s.symbols...)}, nil
}

func (s *fakeSource) set(symbols ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.symbols = symbols
}

func (s *fakeSource) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *fakeSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type fakeHandle struct {
	id     int
	stream *fakeStream
	closed atomic.Bool
}

func (h *fakeHandle) Close() {
	if h.closed.CompareAndSwap(false, true) {
		h.stream.event(fmt.Sprintf("close#%d", h.id))
	}
}

type subscription struct {
	symbols  []string
	interval string
	onCandle models.OnCandle
	handle   *fakeHandle
}

type fakeStream struct {
	mu         sync.Mutex
	subs       []*subscription
	events     []string
	err        error
	violations int
}

func (s *fakeStream) SubscribeCandles(_ context.Context, symbols []string, interval string, onCandle models.OnCandle) (models.FeedHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	for _, sub := range s.subs {
		if !sub.handle.closed.Load() {
			s.violations++
		}
	}

	h := &fakeHandle{id: len(s.subs) + 1, stream: s}
	s.subs = append(s.subs, &subscription{symbols: symbols, interval: interval, onCandle: onCandle, handle: h})
	s.events = append(s.events, fmt.Sprintf("subscribe#%d", h.id))
	return h, nil
}

func (s *fakeStream) event(e string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *fakeStream) sub(i int) *subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subs[i]
}

func (s *fakeStream) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *fakeStream) open() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, sub := range s.subs {
		if !sub.handle.closed.Load() {
			n++
		}
	}
	return n
}

func (s *fakeStream) history() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]models.Sample
	writes  int
	fail    map[string]bool

	// если заданы: Write сообщает о входе и ждёт release
	entered chan struct{}
	release chan struct{}
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]models.Sample), fail: make(map[string]bool)}
}

func (c *fakeCache) Write(_ context.Context, scope, key string, sample models.Sample) error {
	if c.entered != nil {
		c.entered <- struct{}{}
		<-c.release
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail[key] {
		return errors.New("redis: connection refused")
	}
	c.writes++
	c.entries[scope+"/"+key] = sample
	return nil
}

func (c *fakeCache) get(key string) (models.Sample, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.entries[models.CandleScope+"/"+key]
	return s, ok
}

func (c *fakeCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

type fakePrices struct {
	prices map[string]decimal.Decimal
	err    error
	calls  atomic.Int32
}

func (p *fakePrices) FetchAllPrices(context.Context) (map[string]decimal.Decimal, error) {
	p.calls.Add(1)
	if p.err != nil {
		return nil, p.err
	}
	return p.prices, nil
}

type fakeBus struct {
	mu         sync.Mutex
	handlers   []func(channel, payload string)
	subscribes int
	err        error
	unsubbed   int
}

func (b *fakeBus) Subscribe(_ context.Context, _ string, handler func(channel, payload string)) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribes++
	if b.err != nil {
		return nil, b.err
	}
	b.handlers = append(b.handlers, handler)
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.unsubbed++
	}, nil
}

func (b *fakeBus) publish(channel, payload string) {
	b.mu.Lock()
	handlers := slices.Clone(b.handlers)
	b.mu.Unlock()
	for _, h := range handlers {
		h(channel, payload)
	}
}

type fakeNotifier struct {
	sent chan string
	err  error
}

func newFakeNotifier() *fakeNotifier { return &fakeNotifier{sent: make(chan string, 16)} }

func (n *fakeNotifier) Send(_ context.Context, text string) error {
	n.sent <- text
	return n.err
}

type fakeToggles struct {
	mode        string
	notifyDebug atomic.Bool
}

func (t *fakeToggles) Mode() string      { return t.mode }
func (t *fakeToggles) NotifyDebug() bool { return t.notifyDebug.Load() }

type countingAcquirer struct {
	calls atomic.Int32
	err   error
}

func (a *countingAcquirer) Acquire(context.Context) error {
	a.calls.Add(1)
	return a.err
}

type countingStarter struct {
	calls atomic.Int32
	err   error
}

func (s *countingStarter) Start(context.Context) error {
	s.calls.Add(1)
	return s.err
}

func tick(symbol, close string) models.CandleTick {
	return models.CandleTick{
		Symbol:   symbol,
		Interval: "1m",
		Open:     decimal.RequireFromString(close),
		High:     decimal.RequireFromString(close),
		Low:      decimal.RequireFromString(close),
		Close:    decimal.RequireFromString(close),
		Volume:   decimal.NewFromInt(1),
	}
}
