package notify

import (
	"context"
	"sync"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Notifier — канал для debug-алертов.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// CommandFunc формирует ответ на команду бота.
type CommandFunc func(ctx context.Context) string

type botAPI interface {
	Send(c tgbot.Chattable) (tgbot.Message, error)
	GetUpdatesChan(config tgbot.UpdateConfig) tgbot.UpdatesChannel
	StopReceivingUpdates()
}

// Telegram — пассивный нотифайер + обработка зарегистрированных команд.
type Telegram struct {
	bot    botAPI
	chatID int64
	log    *zap.Logger

	mu       sync.RWMutex
	commands map[string]CommandFunc
}

func NewTelegram(token string, chatID int64, log *zap.Logger) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "telegram bot")
	}
	return newTelegram(b, chatID, log), nil
}

func newTelegram(bot botAPI, chatID int64, log *zap.Logger) *Telegram {
	return &Telegram{
		bot:      bot,
		chatID:   chatID,
		log:      log.Named("telegram"),
		commands: make(map[string]CommandFunc),
	}
}

func (t *Telegram) Send(_ context.Context, text string) error {
	if t == nil || t.bot == nil || t.chatID == 0 {
		return nil
	}
	if _, err := t.bot.Send(tgbot.NewMessage(t.chatID, text)); err != nil {
		return errors.Wrap(err, "telegram send")
	}
	return nil
}

// Handle регистрирует команду, например "status" для /status.
func (t *Telegram) Handle(command string, fn CommandFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.commands[command] = fn
}

func (t *Telegram) handleMessage(ctx context.Context, msg *tgbot.Message) {
	if msg == nil || msg.Chat == nil || msg.Chat.ID != t.chatID || !msg.IsCommand() {
		return
	}

	t.mu.RLock()
	fn, ok := t.commands[msg.Command()]
	t.mu.RUnlock()
	if !ok {
		return
	}

	if err := t.Send(ctx, fn(ctx)); err != nil {
		t.log.Warn("reply failed", zap.String("command", msg.Command()), zap.Error(err))
	}
}

// Start: long-polling для messages.
func (t *Telegram) Start(ctx context.Context) error {
	if t == nil || t.bot == nil {
		return nil
	}

	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	u.AllowedUpdates = []string{"message"}

	updates := t.bot.GetUpdatesChan(u)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case upd, ok := <-updates:
				if !ok {
					return
				}
				t.handleMessage(ctx, upd.Message)
			}
		}
	}()
	return nil
}

func (t *Telegram) Stop() {
	if t == nil || t.bot == nil {
		return
	}
	t.bot.StopReceivingUpdates()
}

// Stdout — заглушка без Telegram, пишет алерты в лог.
type Stdout struct {
	log *zap.Logger
}

func NewStdout(log *zap.Logger) *Stdout { return &Stdout{log: log.Named("notify")} }

func (s *Stdout) Send(_ context.Context, text string) error {
	s.log.Info(text)
	return nil
}
