// Package tx carries an open SQL transaction through context so stores can
// join the coordinator's transaction without depending on who opened it.
// Memory-backed stores join a rollback journal instead: each mutation records
// its undo, and the in-memory coordinator replays the undos when the
// transaction function fails.
package tx

import (
	"context"
	"database/sql"
	"sync"
)

type ctxKey struct{}

type journalCtxKey struct{}

var txKey = ctxKey{}

var journalKey = journalCtxKey{}

// Querier is the subset of *sql.DB and *sql.Tx that stores need. A store
// resolves its Querier per call so the same code runs inside and outside a
// coordinated transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx stores a SQL transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a SQL transaction from context if present.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}

// QuerierFrom returns the ambient transaction when one is in flight, falling
// back to the plain connection pool otherwise.
func QuerierFrom(ctx context.Context, db *sql.DB) Querier {
	if tx, ok := From(ctx); ok {
		return tx
	}
	return db
}

// Journal is the memory-backed counterpart of a SQL transaction. Mutations
// push their undo steps; Rollback replays them newest first, restoring the
// state from before the transaction began.
type Journal struct {
	mu    sync.Mutex
	undos []func()
}

// WithJournal opens a journal for the given context. The coordinator owns the
// returned journal and calls Rollback when the transaction function fails.
func WithJournal(ctx context.Context) (context.Context, *Journal) {
	j := &Journal{}
	return context.WithValue(ctx, journalKey, j), j
}

// RecordUndo registers an undo step with the ambient journal. Outside a
// journalled transaction it is a no-op, so stores call it unconditionally.
func RecordUndo(ctx context.Context, undo func()) {
	j, ok := ctx.Value(journalKey).(*Journal)
	if !ok {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.undos = append(j.undos, undo)
}

// Rollback replays the recorded undos in reverse order, once.
func (j *Journal) Rollback() {
	j.mu.Lock()
	undos := j.undos
	j.undos = nil
	j.mu.Unlock()
	for i := len(undos) - 1; i >= 0; i-- {
		undos[i]()
	}
}
