package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"candle_feed/internal/models"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type managerFixture struct {
	source *fakeSource
	stream *fakeStream
	cache  *fakeCache
	hb     *Heartbeat
	clock  *clock.Mock
	m      *Manager
}

func newManagerFixture(symbols ...string) *managerFixture {
	clk := clock.NewMock()
	f := &managerFixture{
		source: &fakeSource{symbols: symbols},
		stream: &fakeStream{},
		cache:  newFakeCache(),
		hb:     NewHeartbeat(clk.Now()),
		clock:  clk,
	}
	f.m = NewManager(f.source, f.stream, f.cache, f.hb, clk, "1m", zap.NewNop())
	return f
}

func TestManager_AcquireSubscribes(t *testing.T) {
	f := newManagerFixture("BTCUSDT", "ETHUSDT")

	require.NoError(t, f.m.Acquire(context.Background()))

	require.Equal(t, 1, f.stream.count())
	sub := f.stream.sub(0)
	assert.Equal(t, []string{"BTCUSDT", "ETHUSDT"}, sub.symbols)
	assert.Equal(t, "1m", sub.interval)
	assert.True(t, f.m.Subscribed())
}

func TestManager_ReacquireRevokesFirst(t *testing.T) {
	f := newManagerFixture("BTCUSDT")
	ctx := context.Background()

	require.NoError(t, f.m.Acquire(ctx))
	f.source.set("ETHUSDT")
	require.NoError(t, f.m.Acquire(ctx))

	assert.Equal(t, []string{"subscribe#1", "close#1", "subscribe#2"}, f.stream.history())
	assert.Equal(t, 1, f.stream.open())
	assert.Equal(t, []string{"ETHUSDT"}, f.stream.sub(1).symbols)
	assert.Zero(t, f.stream.violations)
}

func TestManager_EmptySymbolSet(t *testing.T) {
	f := newManagerFixture()

	require.NoError(t, f.m.Acquire(context.Background()))
	require.Equal(t, 1, f.stream.count())
	assert.Empty(t, f.stream.sub(0).symbols)
}

func TestManager_ConfigFailureKeepsHandle(t *testing.T) {
	f := newManagerFixture("BTCUSDT")
	ctx := context.Background()
	require.NoError(t, f.m.Acquire(ctx))

	f.source.err = errors.New("db down")
	err := f.m.Acquire(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")

	assert.Equal(t, 1, f.stream.count())
	assert.Equal(t, 1, f.stream.open())
	assert.True(t, f.m.Subscribed())
}

func TestManager_SubscribeFailure(t *testing.T) {
	f := newManagerFixture("BTCUSDT")
	ctx := context.Background()
	require.NoError(t, f.m.Acquire(ctx))

	f.stream.err = errors.New("dial tcp: i/o timeout")
	require.Error(t, f.m.Acquire(ctx))

	assert.Equal(t, 0, f.stream.open())
	assert.False(t, f.m.Subscribed())
}

func TestManager_CandleUpdatesHeartbeatAndCache(t *testing.T) {
	f := newManagerFixture("BTCUSDT")
	require.NoError(t, f.m.Acquire(context.Background()))

	f.clock.Add(30 * time.Second)
	f.stream.sub(0).onCandle(tick("BTCUSDT", "64000.5"))

	assert.True(t, f.clock.Now().Equal(f.hb.LastReceivedAt()))
	got, ok := f.cache.get("BTCUSDT-latest-candle")
	require.True(t, ok)
	assert.Equal(t, "BTCUSDT", got.Symbol)
	assert.Equal(t, "64000.5", got.Close.String())
	assert.False(t, got.Polled())

	f.stream.sub(0).onCandle(tick("BTCUSDT", "64001"))
	got, _ = f.cache.get("BTCUSDT-latest-candle")
	assert.Equal(t, "64001", got.Close.String())
	assert.Equal(t, 1, f.cache.len())
}

func TestManager_RevokedHandleIgnored(t *testing.T) {
	f := newManagerFixture("BTCUSDT")
	ctx := context.Background()
	require.NoError(t, f.m.Acquire(ctx))
	require.NoError(t, f.m.Acquire(ctx))

	f.stream.sub(0).onCandle(tick("BTCUSDT", "1"))
	assert.Equal(t, 0, f.cache.len())

	f.stream.sub(1).onCandle(tick("BTCUSDT", "2"))
	assert.Equal(t, 1, f.cache.len())
}

func TestManager_CacheErrorDoesNotStopFeed(t *testing.T) {
	f := newManagerFixture("BTCUSDT", "ETHUSDT")
	f.cache.fail["BTCUSDT-latest-candle"] = true
	require.NoError(t, f.m.Acquire(context.Background()))

	f.clock.Add(time.Second)
	f.stream.sub(0).onCandle(tick("BTCUSDT", "1"))
	f.stream.sub(0).onCandle(tick("ETHUSDT", "2"))

	assert.True(t, f.clock.Now().Equal(f.hb.LastReceivedAt()))
	_, ok := f.cache.get("ETHUSDT-latest-candle")
	assert.True(t, ok)
}

func TestManager_SubscribeResetsHeartbeat(t *testing.T) {
	f := newManagerFixture("BTCUSDT")
	f.clock.Add(5 * time.Minute)

	require.NoError(t, f.m.Acquire(context.Background()))
	assert.True(t, f.clock.Now().Equal(f.hb.LastReceivedAt()))
}

func TestManager_ConcurrentAcquireKeepsSingleHandle(t *testing.T) {
	f := newManagerFixture("BTCUSDT")
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, f.m.Acquire(ctx))
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, f.stream.count())
	assert.Equal(t, 1, f.stream.open())
	assert.Zero(t, f.stream.violations)
}

func TestManager_Close(t *testing.T) {
	f := newManagerFixture("BTCUSDT")
	require.NoError(t, f.m.Acquire(context.Background()))

	f.m.Close()
	f.m.Close()
	assert.Equal(t, 0, f.stream.open())
	assert.False(t, f.m.Subscribed())
}

func TestHeartbeat_NeverMovesBack(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	hb := NewHeartbeat(start)

	hb.Touch(start.Add(-time.Minute))
	assert.True(t, start.Equal(hb.LastReceivedAt()))

	hb.Touch(start.Add(time.Second))
	assert.True(t, start.Add(time.Second).Equal(hb.LastReceivedAt()))
}

func TestSampleFromCandle(t *testing.T) {
	s := models.NewStreamedSample(tick("BNBUSDT", "600"))
	assert.Equal(t, "BNBUSDT-latest-candle", s.CacheKey())
}

func TestManager_ReacquireWaitsForInFlightWrite(t *testing.T) {
	f := newManagerFixture("BTCUSDT")
	ctx := context.Background()
	require.NoError(t, f.m.Acquire(ctx))

	f.cache.entered = make(chan struct{}, 1)
	f.cache.release = make(chan struct{})
	go f.stream.sub(0).onCandle(tick("BTCUSDT", "1"))
	<-f.cache.entered

	acquired := make(chan error, 1)
	go func() { acquired <- f.m.Acquire(ctx) }()

	// старый хэндл ещё пишет: новая подписка не открывается
	assert.Never(t, func() bool { return f.stream.count() > 1 }, 100*time.Millisecond, 5*time.Millisecond)

	close(f.cache.release)
	require.NoError(t, <-acquired)
	require.Equal(t, 2, f.stream.count())

	f.cache.entered = nil
	f.stream.sub(1).onCandle(tick("BTCUSDT", "2"))
	got, ok := f.cache.get("BTCUSDT-latest-candle")
	require.True(t, ok)
	assert.Equal(t, "2", got.Close.String())
}
