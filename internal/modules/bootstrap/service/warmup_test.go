package service

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubPoller struct {
	errs  []error
	calls int
}

func (p *stubPoller) Poll(context.Context) error {
	p.calls++
	if len(p.errs) == 0 {
		return nil
	}
	err := p.errs[0]
	p.errs = p.errs[1:]
	return err
}

type stubNotifier struct {
	sent []string
	err  error
}

func (n *stubNotifier) Send(_ context.Context, text string) error {
	n.sent = append(n.sent, text)
	return n.err
}

func newTestWarmuper(p *stubPoller, n *stubNotifier) *Warmuper {
	w := NewWarmuper(p, n, zap.NewNop())
	w.backoff = time.Millisecond
	return w
}

func TestWarmup_RetriesThenSucceeds(t *testing.T) {
	p := &stubPoller{errs: []error{errors.New("418")}}
	n := &stubNotifier{}

	require.NoError(t, newTestWarmuper(p, n).Warmup(context.Background()))
	assert.Equal(t, 2, p.calls)
	assert.Empty(t, n.sent)
}

func TestWarmup_GivesUpAndNotifies(t *testing.T) {
	boom := errors.New("connection reset")
	p := &stubPoller{errs: []error{boom, boom, boom}}
	n := &stubNotifier{}

	err := newTestWarmuper(p, n).Warmup(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 3, p.calls)
	require.Len(t, n.sent, 1)
	assert.Contains(t, n.sent[0], "connection reset")
}

func TestWarmup_StopsOnCancel(t *testing.T) {
	p := &stubPoller{errs: []error{errors.New("x"), errors.New("y")}}
	w := newTestWarmuper(p, &stubNotifier{})
	w.backoff = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, w.Warmup(ctx), context.Canceled)
	assert.Equal(t, 1, p.calls)
}

func TestWarmup_AlertFailureIsLogged(t *testing.T) {
	boom := errors.New("connection reset")
	p := &stubPoller{errs: []error{boom, boom, boom}}
	n := &stubNotifier{err: errors.New("telegram: forbidden")}
	core, logs := observer.New(zapcore.WarnLevel)

	w := NewWarmuper(p, n, zap.New(core))
	w.backoff = time.Millisecond

	require.ErrorIs(t, w.Warmup(context.Background()), boom)
	alerts := logs.FilterMessage("warmup alert failed").All()
	require.Len(t, alerts, 1)
	assert.Contains(t, alerts[0].ContextMap()["error"], "forbidden")
}
