package service

import (
	"context"
	"sync"
	"time"

	dErrors "circ/pkg/domain-errors"
	txcontext "circ/pkg/platform/tx"
)

// StoreTx provides a transactional boundary for membership mutations and their
// audit entries. Implementations may wrap a database transaction or, in-memory,
// a coarse lock with a rollback journal.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

const defaultTxTimeout = 5 * time.Second

type inMemoryStoreTx struct {
	mu      sync.Mutex
	timeout time.Duration
}

func newInMemoryStoreTx() *inMemoryStoreTx {
	return &inMemoryStoreTx{}
}

func (t *inMemoryStoreTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
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

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	txCtx, journal := txcontext.WithJournal(ctx)
	if err := fn(txCtx); err != nil {
		journal.Rollback()
		return err
	}
	return nil
}
