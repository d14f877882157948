package models

import (
	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"
)

const (
	// CandleScope — hash, в котором лежат последние свечи по символам.
	CandleScope = "trailing-trade-symbols"

	// EventTypeKline помечает сэмпл, собранный из REST-цены, а не из стрима.
	EventTypeKline = "kline"
)

// Sample — последнее наблюдение цены по символу.
// Стримовые сэмплы приходят без eventType, синтетические (poll) — с ним.
type Sample struct {
	EventType string          `json:"eventType,omitempty"`
	Symbol    string          `json:"symbol"`
	Close     decimal.Decimal `json:"close"`

	Open      *decimal.Decimal `json:"open,omitempty"`
	High      *decimal.Decimal `json:"high,omitempty"`
	Low       *decimal.Decimal `json:"low,omitempty"`
	Volume    *decimal.Decimal `json:"volume,omitempty"`
	Interval  string           `json:"interval,omitempty"`
	StartTime int64            `json:"startTime,omitempty"` // ms
	CloseTime int64            `json:"closeTime,omitempty"` // ms
	IsFinal   bool             `json:"isFinal,omitempty"`
}

// CandleTick — свеча из websocket-стрима в том виде, в каком её отдаёт биржа.
type CandleTick struct {
	Symbol    string
	Interval  string
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    decimal.Decimal
	StartTime int64
	CloseTime int64
	IsFinal   bool
}

// NewStreamedSample собирает сэмпл из свечи стрима.
func NewStreamedSample(c CandleTick) Sample {
	open, high, low, vol := c.Open, c.High, c.Low, c.Volume
	return Sample{
		Symbol:    c.Symbol,
		Close:     c.Close,
		Open:      &open,
		High:      &high,
		Low:       &low,
		Volume:    &vol,
		Interval:  c.Interval,
		StartTime: c.StartTime,
		CloseTime: c.CloseTime,
		IsFinal:   c.IsFinal,
	}
}

// NewPolledSample — синтетическая «свеча» из текущей цены.
func NewPolledSample(symbol string, price decimal.Decimal) Sample {
	return Sample{
		EventType: EventTypeKline,
		Symbol:    symbol,
		Close:     price,
	}
}

func (s Sample) Polled() bool { return s.EventType == EventTypeKline }

// CacheKey — ключ внутри CandleScope.
func (s Sample) CacheKey() string { return LatestCandleKey(s.Symbol) }

func LatestCandleKey(symbol string) string { return symbol + "-latest-candle" }

func (s Sample) Marshal() ([]byte, error) { return sonic.Marshal(s) }

func UnmarshalSample(data []byte) (Sample, error) {
	var s Sample
	err := sonic.Unmarshal(data, &s)
	return s, err
}
