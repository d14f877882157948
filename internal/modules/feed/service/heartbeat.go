package service

import (
	"sync/atomic"
	"time"
)

// Heartbeat — момент последней полученной свечи. Только растёт.
type Heartbeat struct {
	last atomic.Int64 // unix nano
}

func NewHeartbeat(now time.Time) *Heartbeat {
	h := &Heartbeat{}
	h.last.Store(now.UnixNano())
	return h
}

// Touch сдвигает отметку вперёд. Более раннее время игнорируется.
func (h *Heartbeat) Touch(t time.Time) {
	next := t.UnixNano()
	for {
		cur := h.last.Load()
		if next <= cur {
			return
		}
		if h.last.CompareAndSwap(cur, next) {
			return
		}
	}
}

func (h *Heartbeat) LastReceivedAt() time.Time {
	return time.Unix(0, h.last.Load())
}
