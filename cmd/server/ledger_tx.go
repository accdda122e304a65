package main

import (
	"context"
	"database/sql"
	"time"

	dErrors "rollbook/pkg/domain-errors"
	"rollbook/pkg/platform/tx"
)

const defaultLedgerTxTimeout = 5 * time.Second

// ledgerPostgresTx runs the registration and survey check-then-insert
// sequences inside a single database transaction, injected through context so
// every store touched by the callback shares it.
type ledgerPostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newLedgerPostgresTx(db *sql.DB) *ledgerPostgresTx {
	return &ledgerPostgresTx{db: db}
}

func (t *ledgerPostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultLedgerTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	return tx.Run(ctx, t.db, fn)
}
