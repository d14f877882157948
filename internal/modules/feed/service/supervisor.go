package service

import (
	"candle_feed/internal/modules/config"
	"context"

	"go.uber.org/zap"
)

type mode interface {
	name() string
	run(ctx context.Context) error
}

type liveMode struct {
	listener *Listener
	monitor  *Monitor
	log      *zap.Logger
}

func (liveMode) name() string { return config.ModeLive }

// run: ошибку первой подписки не считаем фатальной, монитор повторит
// её после staleAfter. Фатальна только недоступность канала.
func (m liveMode) run(ctx context.Context) error {
	if err := m.listener.Start(ctx); err != nil {
		if !m.listener.Subscribed() {
			return err
		}
		m.log.Error("initial websocket setup failed", zap.Error(err))
	}
	m.monitor.Run(ctx)
	return nil
}

type pollMode struct {
	poller *Poller
}

func (pollMode) name() string { return "poll" }

func (m pollMode) run(ctx context.Context) error {
	m.poller.Run(ctx)
	return nil
}

// Supervisor выбирает режим один раз при старте и держит его до отмены ctx.
type Supervisor struct {
	toggles  Toggles
	listener *Listener
	monitor  *Monitor
	poller   *Poller
	log      *zap.Logger
}

func NewSupervisor(toggles Toggles, listener *Listener, monitor *Monitor, poller *Poller, log *zap.Logger) *Supervisor {
	return &Supervisor{
		toggles:  toggles,
		listener: listener,
		monitor:  monitor,
		poller:   poller,
		log:      log.Named("supervisor"),
	}
}

func (s *Supervisor) selectMode() mode {
	if s.toggles.Mode() == config.ModeLive {
		return liveMode{listener: s.listener, monitor: s.monitor, log: s.log}
	}
	return pollMode{poller: s.poller}
}

// Run блокируется до отмены ctx.
func (s *Supervisor) Run(ctx context.Context) error {
	m := s.selectMode()
	s.log.Info("feed started", zap.String("mode", m.name()))
	return m.run(ctx)
}
