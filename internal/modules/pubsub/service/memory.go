package service

import (
	"context"
	"sync"
)

var _ Bus = (*MemoryBus)(nil)

// MemoryBus — шина внутри процесса: dev-режим без брокера и тесты.
// Publish доставляет синхронно, в порядке подписки.
type MemoryBus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]func(channel, payload string)
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[string]map[int]func(channel, payload string))}
}

func (b *MemoryBus) Subscribe(_ context.Context, channel string, handler func(channel, payload string)) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	if b.subs[channel] == nil {
		b.subs[channel] = make(map[int]func(channel, payload string))
	}
	b.subs[channel][id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[channel], id)
	}, nil
}

func (b *MemoryBus) Publish(_ context.Context, channel, payload string) error {
	b.mu.RLock()
	handlers := make([]func(channel, payload string), 0, len(b.subs[channel]))
	for id := 1; id <= b.nextID; id++ {
		if h, ok := b.subs[channel][id]; ok {
			handlers = append(handlers, h)
		}
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(channel, payload)
	}
	return nil
}

// Subscribers — сколько обработчиков висит на канале.
func (b *MemoryBus) Subscribers(channel string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[channel])
}

func (b *MemoryBus) Close() error { return nil }
