package models

// FeedHandle — одна открытая push-подписка. Close отзывает её
// и не ждёт, пока соединение реально закроется. Повторный Close — no-op.
type FeedHandle interface {
	Close()
}

// OnCandle вызывается на каждую свечу из подписки.
type OnCandle func(tick CandleTick)
