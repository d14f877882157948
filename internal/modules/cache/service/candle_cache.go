package service

import (
	"context"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"

	"candle_feed/internal/models"
)

// ErrNoCandle — по символу ещё ничего не писали.
var ErrNoCandle = errors.New("no latest candle")

// CandleCache — последние свечи в redis hash: scope -> {key: json}.
// Last-write-wins, истории нет.
type CandleCache struct {
	rdb goredis.Cmdable
}

func NewCandleCache(rdb goredis.Cmdable) *CandleCache {
	return &CandleCache{rdb: rdb}
}

func (c *CandleCache) Write(ctx context.Context, scope, key string, sample models.Sample) error {
	data, err := sample.Marshal()
	if err != nil {
		return errors.Wrap(err, "marshal sample")
	}
	if err := c.rdb.HSet(ctx, scope, key, data).Err(); err != nil {
		return errors.Wrapf(err, "hset %s %s", scope, key)
	}
	return nil
}

// LatestCandle — то, что читают потребители ниже по течению.
func (c *CandleCache) LatestCandle(ctx context.Context, symbol string) (models.Sample, error) {
	raw, err := c.rdb.HGet(ctx, models.CandleScope, models.LatestCandleKey(symbol)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return models.Sample{}, ErrNoCandle
	}
	if err != nil {
		return models.Sample{}, errors.Wrapf(err, "hget %s", symbol)
	}
	s, err := models.UnmarshalSample(raw)
	if err != nil {
		return models.Sample{}, errors.Wrapf(err, "decode latest candle %s", symbol)
	}
	return s, nil
}

// Keys — все ключи в scope, для отладки и тестов.
func (c *CandleCache) Keys(ctx context.Context, scope string) ([]string, error) {
	keys, err := c.rdb.HKeys(ctx, scope).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "hkeys %s", scope)
	}
	return keys, nil
}
