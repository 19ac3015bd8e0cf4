package main

import (
	"context"
	"database/sql"
	"time"

	dErrors "circ/pkg/domain-errors"
	txcontext "circ/pkg/platform/tx"
)

const defaultTxTimeout = 5 * time.Second

// postgresTx is the coordinator-owned transaction boundary shared by every
// feature service. It opens one *sql.Tx, stows it in the context, and the
// stores resolve it from there, so a loan, its copy movement and its audit
// entries commit or roll back as one unit.
type postgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newPostgresTx(db *sql.DB) *postgresTx {
	return &postgresTx{db: db}
}

func (t *postgresTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to commit transaction")
	}
	return nil
}
