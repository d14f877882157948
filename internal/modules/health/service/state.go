package service

import (
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
)

// FeedProbe — то, что health читает из фида свечей.
type FeedProbe interface {
	LastReceivedAt() time.Time
	Subscribed() bool
}

type State struct {
	ready     atomic.Bool
	startedAt time.Time
	clock     clock.Clock

	live       bool
	staleAfter time.Duration
	probe      FeedProbe
}

func NewState(clk clock.Clock, probe FeedProbe, live bool, staleAfter time.Duration) *State {
	s := &State{
		startedAt:  clk.Now(),
		clock:      clk,
		live:       live,
		staleAfter: staleAfter,
		probe:      probe,
	}
	s.ready.Store(false)
	return s
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }

// Ready: процесс поднят, а в live-режиме ещё и сокет открыт и свечи свежие.
func (s *State) Ready() bool {
	if !s.ready.Load() {
		return false
	}
	if !s.live {
		return true
	}
	return s.WSConnected() && !s.Stale()
}

func (s *State) WSConnected() bool { return s.probe.Subscribed() }

func (s *State) LastTick() time.Time { return s.probe.LastReceivedAt() }

func (s *State) Stale() bool {
	last := s.LastTick()
	if last.IsZero() {
		return true
	}
	return s.clock.Since(last) > s.staleAfter
}

func (s *State) Live() bool { return s.live }

func (s *State) Uptime() time.Duration { return s.clock.Since(s.startedAt) }

func (s *State) Now() time.Time { return s.clock.Now() }
