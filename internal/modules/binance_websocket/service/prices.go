package service

import (
	"context"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type tickerPrice struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// FetchAllPrices — текущие цены по всем символам биржи одним запросом.
func (c *Client) FetchAllPrices(ctx context.Context) (map[string]decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.restURL+"/api/v3/ticker/price", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "ticker/price")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read ticker/price")
	}
	if resp.StatusCode/100 != 2 {
		return nil, errors.Errorf("ticker/price: http %d: %s", resp.StatusCode, string(body))
	}

	var rows []tickerPrice
	if err := sonic.Unmarshal(body, &rows); err != nil {
		return nil, errors.Wrap(err, "decode ticker/price")
	}

	out := make(map[string]decimal.Decimal, len(rows))
	for _, r := range rows {
		p, err := decimal.NewFromString(r.Price)
		if err != nil {
			c.log.Debug("skip unparsable price", zap.String("symbol", r.Symbol), zap.String("price", r.Price))
			continue
		}
		out[r.Symbol] = p
	}
	return out, nil
}
