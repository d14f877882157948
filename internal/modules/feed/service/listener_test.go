package service

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const changedChannel = "trailing-trade-configuration-changed"

func TestListener_StartSubscribesOnceAndAcquires(t *testing.T) {
	bus := &fakeBus{}
	acq := &countingAcquirer{}
	l := NewListener(bus, acq, changedChannel, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, l.Start(ctx))
	require.NoError(t, l.Start(ctx))

	assert.Equal(t, 1, bus.subscribes)
	assert.Equal(t, int32(2), acq.calls.Load())
	assert.True(t, l.Subscribed())
}

func TestListener_MessageTriggersAcquire(t *testing.T) {
	bus := &fakeBus{}
	acq := &countingAcquirer{}
	l := NewListener(bus, acq, changedChannel, zap.NewNop())
	require.NoError(t, l.Start(context.Background()))

	bus.publish(changedChannel, "")
	bus.publish(changedChannel, "BTCUSDT,ETHUSDT")

	assert.Equal(t, int32(3), acq.calls.Load())
}

func TestListener_AcquireErrorInHandlerIsSwallowed(t *testing.T) {
	bus := &fakeBus{}
	acq := &countingAcquirer{}
	l := NewListener(bus, acq, changedChannel, zap.NewNop())
	require.NoError(t, l.Start(context.Background()))

	acq.err = errors.New("db down")
	assert.NotPanics(t, func() { bus.publish(changedChannel, "") })
	assert.Equal(t, int32(2), acq.calls.Load())
}

func TestListener_SubscribeError(t *testing.T) {
	bus := &fakeBus{err: errors.New("redis: connection refused")}
	acq := &countingAcquirer{}
	l := NewListener(bus, acq, changedChannel, zap.NewNop())

	require.Error(t, l.Start(context.Background()))
	assert.Zero(t, acq.calls.Load())
	assert.False(t, l.Subscribed())

	// следующий Start повторяет регистрацию
	bus.err = nil
	require.NoError(t, l.Start(context.Background()))
	assert.Equal(t, 2, bus.subscribes)
	assert.True(t, l.Subscribed())
}

func TestListener_InitialAcquireErrorReturned(t *testing.T) {
	bus := &fakeBus{}
	acq := &countingAcquirer{err: errors.New("db down")}
	l := NewListener(bus, acq, changedChannel, zap.NewNop())

	require.Error(t, l.Start(context.Background()))
	assert.True(t, l.Subscribed())
}

func TestListener_Stop(t *testing.T) {
	bus := &fakeBus{}
	l := NewListener(bus, &countingAcquirer{}, changedChannel, zap.NewNop())
	require.NoError(t, l.Start(context.Background()))

	l.Stop()
	l.Stop()
	assert.Equal(t, 1, bus.unsubbed)
	assert.False(t, l.Subscribed())
}

func TestListener_WithManager(t *testing.T) {
	f := newManagerFixture("BTCUSDT")
	bus := &fakeBus{}
	l := NewListener(bus, f.m, changedChannel, zap.NewNop())

	require.NoError(t, l.Start(context.Background()))
	f.source.set("ETHUSDT", "BNBUSDT")
	bus.publish(changedChannel, "")

	require.Equal(t, 2, f.stream.count())
	assert.Equal(t, []string{"ETHUSDT", "BNBUSDT"}, f.stream.sub(1).symbols)
	assert.Equal(t, 1, f.stream.open())
}
