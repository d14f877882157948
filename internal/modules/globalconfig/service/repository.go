package service

import (
	"candle_feed/pkg/db"
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

const (
	globalKey = "global"

	selectSymbolsSQL = `SELECT symbols FROM trailing_trade_global_configuration WHERE key = $1`
	upsertSymbolsSQL = `INSERT INTO trailing_trade_global_configuration (key, symbols, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET symbols = EXCLUDED.symbols, updated_at = now()`
)

var ErrNotFound = errors.New("global configuration not found")

type Repository struct {
	tx db.TxManager
}

func NewRepository(tx db.TxManager) *Repository {
	return &Repository{tx: tx}
}

// Symbols читает сохранённый набор символов. Нет строки — ErrNotFound.
func (r *Repository) Symbols(ctx context.Context) ([]string, error) {
	var symbols []string
	err := r.tx.RunReadOnly(ctx, func(ctxTx context.Context, tx db.Transaction) error {
		return tx.QueryRow(ctxTx, selectSymbolsSQL, globalKey).Scan(&symbols)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select global configuration")
	}
	return symbols, nil
}

func (r *Repository) SaveSymbols(ctx context.Context, symbols []string) error {
	err := r.tx.RunMaster(ctx, func(ctxTx context.Context, tx db.Transaction) error {
		_, err := tx.Exec(ctxTx, upsertSymbolsSQL, globalKey, symbols)
		return err
	})
	return errors.Wrap(err, "save global configuration")
}
