package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/jmoiron/sqlx"
)

type TxContextKey string

const txKey = TxContextKey("tx-context-key")

// Tx is the transactional slice of the DB surface. A Tx obtained from an
// outer caller's context is shared: Commit and Rollback only take effect on
// the Tx that opened the transaction, so repositories can be composed inside
// a service-level transaction without closing it early.
type Tx interface {
	IsOpen() bool
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	QueryRowxContext(ctx context.Context, query string, args ...any) *sqlx.Row
}

type Transaction struct {
	*sqlx.Tx
	logger   ectologger.Logger
	owned    bool
	isClosed bool
}

func newTx(tx *sqlx.Tx, logger ectologger.Logger, owned bool) *Transaction {
	return &Transaction{
		Tx:     tx,
		logger: logger,
		owned:  owned,
	}
}

// GetTx returns the transaction carried by ctx if one is still open,
// otherwise it begins a new transaction and stores it on the returned
// context. Only the Tx that began the transaction may commit or roll it back.
func GetTx(ctx context.Context, logger ectologger.Logger, db DB, opts *sql.TxOptions) (context.Context, Tx, error) {
	if t, ok := ctx.Value(txKey).(*Transaction); ok && t != nil && t.IsOpen() {
		return ctx, &Transaction{Tx: t.Tx, logger: logger, owned: false}, nil
	}

	tx, err := db.BeginTxx(ctx, opts)
	if err != nil {
		logger.WithContext(ctx).WithError(err).Errorf("error while beginning transaction")
		return ctx, nil, fmt.Errorf("error while beginning transaction")
	}

	owner := newTx(tx, logger, true)
	ctx = context.WithValue(ctx, txKey, owner)
	return ctx, owner, nil
}

func (t *Transaction) IsOpen() bool {
	return !t.isClosed
}

func (t *Transaction) Rollback(ctx context.Context) error {
	if !t.owned || t.isClosed {
		return nil
	}

	if err := t.Tx.Rollback(); err != nil {
		t.logger.WithContext(ctx).WithError(err).Errorf("error while rolling back transaction")
		return fmt.Errorf("error while rolling back transaction")
	}

	t.isClosed = true
	return nil
}

func (t *Transaction) Commit(ctx context.Context) error {
	if !t.owned || t.isClosed {
		return nil
	}

	if err := t.Tx.Commit(); err != nil {
		t.logger.WithContext(ctx).WithError(err).Errorf("error while committing transaction")
		return fmt.Errorf("error while committing transaction")
	}

	t.isClosed = true
	return nil
}
