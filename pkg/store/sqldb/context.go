package sqldb

import (
	"context"
	"database/sql"
)

type txKey struct{}

// WithTransaction returns ctx carrying tx, so stores called with it join the transaction.
func WithTransaction(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// GetTransaction returns the transaction opened by InTx, or nil outside one.
func GetTransaction(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}
