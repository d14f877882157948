package service

import "context"

// Bus — канал уведомлений «конфигурация изменилась».
// Subscribe возвращает функцию отписки; handler зовётся на каждое сообщение.
type Bus interface {
	Subscribe(ctx context.Context, channel string, handler func(channel, payload string)) (func(), error)
	Publish(ctx context.Context, channel, payload string) error
	Close() error
}
