package service

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

const alertTimeout = 10 * time.Second

type recoverer interface {
	Start(ctx context.Context) error
}

// Monitor раз в period проверяет, что свечи приходят. Если последней
// свече больше staleAfter, шлёт debug-алерт (по тумблеру) и заново
// поднимает live-подписку.
type Monitor struct {
	hb         *Heartbeat
	reset      recoverer
	toggles    Toggles
	notifier   Notifier
	clock      clock.Clock
	period     time.Duration
	staleAfter time.Duration
	log        *zap.Logger
}

func NewMonitor(
	hb *Heartbeat,
	reset recoverer,
	toggles Toggles,
	notifier Notifier,
	clk clock.Clock,
	period, staleAfter time.Duration,
	log *zap.Logger,
) *Monitor {
	return &Monitor{
		hb:         hb,
		reset:      reset,
		toggles:    toggles,
		notifier:   notifier,
		clock:      clk,
		period:     period,
		staleAfter: staleAfter,
		log:        log.Named("heartbeat").With(zap.String("server", "binance")),
	}
}

func (m *Monitor) Run(ctx context.Context) {
	runEvery(ctx, m.clock, m.period, func(ctx context.Context) {
		m.Check(ctx)
	})
}

// Check — одна проверка. Возвращает true, если фид признан устаревшим.
func (m *Monitor) Check(ctx context.Context) bool {
	now := m.clock.Now()
	last := m.hb.LastReceivedAt()

	// отметка из будущего даёт отрицательное значение и не считается протухшей
	if now.Sub(last) <= m.staleAfter {
		return false
	}

	since := humanize.RelTime(last, now, "ago", "from now")
	text := fmt.Sprintf(
		"The bot didn't receive new candle from Binance Websocket since %s. Reset Websocket connection.",
		since,
	)
	m.log.Warn(text, zap.Bool("debug", true), zap.Time("lastReceivedAt", last))

	if m.toggles.NotifyDebug() {
		go m.alert(ctx, fmt.Sprintf("Binance Websocket (%s): %s", now.Format("15:04:05.000"), text))
	}

	if err := m.reset.Start(ctx); err != nil {
		m.log.Error("reset websocket failed", zap.Error(err))
	}
	return true
}

func (m *Monitor) alert(ctx context.Context, text string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), alertTimeout)
	defer cancel()

	if err := m.notifier.Send(ctx, text); err != nil {
		m.log.Warn("debug alert failed", zap.Error(err))
	}
}
