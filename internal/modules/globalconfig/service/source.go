package service

import (
	"candle_feed/internal/models"
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type symbolStore interface {
	Symbols(ctx context.Context) ([]string, error)
}

type defaultSymbols interface {
	Symbols() []string
}

// Source — глобальная конфигурация: сначала БД, затем символы из yaml.
// Ошибка БД, кроме отсутствия строки, пробрасывается вызывающему.
type Source struct {
	store    symbolStore
	defaults defaultSymbols
	log      *zap.Logger
}

// NewSource: store может быть nil, если Postgres не настроен.
func NewSource(store symbolStore, defaults defaultSymbols, log *zap.Logger) *Source {
	return &Source{store: store, defaults: defaults, log: log.Named("globalconfig")}
}

func (s *Source) GlobalConfiguration(ctx context.Context) (*models.GlobalConfiguration, error) {
	if s.store != nil {
		symbols, err := s.store.Symbols(ctx)
		switch {
		case err == nil:
			return &models.GlobalConfiguration{Symbols: models.NormalizeSymbols(symbols)}, nil
		case errors.Is(err, ErrNotFound):
			s.log.Debug("no stored configuration, using defaults")
		default:
			return nil, err
		}
	}
	return &models.GlobalConfiguration{Symbols: models.NormalizeSymbols(s.defaults.Symbols())}, nil
}
