package service

import (
	"context"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"candle_feed/internal/models"
)

// klineFrame — кадр combined stream. Поля E/L/V описаны явно: без них
// регистронезависимый матчинг json кладёт их в e/l/v.
type klineFrame struct {
	Stream string `json:"stream"`
	Data   struct {
		Event     string `json:"e"`
		EventTime int64  `json:"E"`
		Symbol    string `json:"s"`
		Kline     struct {
			StartTime   int64  `json:"t"`
			CloseTime   int64  `json:"T"`
			Symbol      string `json:"s"`
			Interval    string `json:"i"`
			Open        string `json:"o"`
			Close       string `json:"c"`
			High        string `json:"h"`
			Low         string `json:"l"`
			LastTradeID int64  `json:"L"`
			Volume      string `json:"v"`
			TakerVolume string `json:"V"`
			Final       bool   `json:"x"`
		} `json:"k"`
	} `json:"data"`
}

func parseKline(msg []byte) (models.CandleTick, bool) {
	var frame klineFrame
	if err := sonic.Unmarshal(msg, &frame); err != nil {
		return models.CandleTick{}, false
	}
	if frame.Data.Event != "kline" {
		return models.CandleTick{}, false
	}
	k := frame.Data.Kline

	open, err1 := decimal.NewFromString(k.Open)
	high, err2 := decimal.NewFromString(k.High)
	low, err3 := decimal.NewFromString(k.Low)
	closep, err4 := decimal.NewFromString(k.Close)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return models.CandleTick{}, false
	}
	vol, _ := decimal.NewFromString(k.Volume)

	symbol := frame.Data.Symbol
	if symbol == "" {
		symbol = k.Symbol
	}
	return models.CandleTick{
		Symbol:    symbol,
		Interval:  k.Interval,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closep,
		Volume:    vol,
		StartTime: k.StartTime,
		CloseTime: k.CloseTime,
		IsFinal:   k.Final,
	}, true
}

// streamHandle — одна подписка. Close рвёт соединение и не ждёт read-loop.
type streamHandle struct {
	cancel context.CancelFunc

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

func (h *streamHandle) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	h.cancel()
	if h.conn != nil {
		_ = h.conn.Close()
	}
}

// swap ставит новое соединение; false — хэндл уже отозван.
func (h *streamHandle) swap(conn *websocket.Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.conn = conn
	return true
}

type noopHandle struct{}

func (noopHandle) Close() {}

// SubscribeCandles — один WebSocket на пачку символов. Первое соединение
// открывается синхронно, дальше read-loop сам переподключается, пока
// хэндл не отозван или не отменён ctx.
func (c *Client) SubscribeCandles(
	ctx context.Context,
	symbols []string,
	interval string,
	onCandle models.OnCandle,
) (models.FeedHandle, error) {
	if len(symbols) == 0 {
		c.log.Info("empty symbol set, nothing to subscribe")
		return noopHandle{}, nil
	}

	url, err := streamURL(c.wsURL, symbols, interval)
	if err != nil {
		return nil, err
	}

	c.log.Info("batch connect", zap.String("interval", interval), zap.Int("symbols", len(symbols)))
	conn, _, err := c.wsDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", url)
	}

	sctx, cancel := context.WithCancel(ctx)
	h := &streamHandle{cancel: cancel, conn: conn}
	go func() {
		// отмена родительского ctx тоже закрывает соединение
		<-sctx.Done()
		h.Close()
	}()
	go c.readLoop(sctx, h, url, conn, onCandle)

	return h, nil
}

func (c *Client) readLoop(
	ctx context.Context,
	h *streamHandle,
	url string,
	conn *websocket.Conn,
	onCandle models.OnCandle,
) {
	defer h.Close()

	for {
		if conn == nil {
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.reconnectDelay):
			}

			c.log.Info("batch reconnect", zap.String("url", url))
			next, _, err := c.wsDialer.DialContext(ctx, url, nil)
			if err != nil {
				c.log.Warn("batch dial error", zap.Error(err))
				continue
			}
			if !h.swap(next) {
				_ = next.Close()
				return
			}
			conn = next
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.log.Warn("batch read error", zap.Error(err))
			_ = conn.Close()
			conn = nil
			continue
		}

		tick, ok := parseKline(msg)
		if !ok {
			continue
		}
		if ctx.Err() != nil {
			return
		}
		onCandle(tick)
	}
}
