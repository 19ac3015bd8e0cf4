// Package loan holds the lending ledger stores.
package loan

import (
	"context"
	"sort"
	"sync"
	"time"

	"circ/internal/ledger/models"
	id "circ/pkg/domain"
	"circ/pkg/platform/sentinel"
	txcontext "circ/pkg/platform/tx"
)

type InMemory struct {
	mu    sync.RWMutex
	loans map[id.LoanID]*models.Loan
}

func NewInMemory() *InMemory {
	return &InMemory{loans: make(map[id.LoanID]*models.Loan)}
}

func (s *InMemory) Create(ctx context.Context, loan *models.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.loans[loan.ID]; exists {
		return sentinel.ErrConflict
	}
	s.loans[loan.ID] = clone(loan)
	loanID := loan.ID
	txcontext.RecordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.loans, loanID)
	})
	return nil
}

func (s *InMemory) FindByID(_ context.Context, loanID id.LoanID) (*models.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	loan, ok := s.loans[loanID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(loan), nil
}

// Execute runs validate and mutate under the store lock so a return cannot
// race another return of the same loan.
func (s *InMemory) Execute(ctx context.Context, loanID id.LoanID, validate func(*models.Loan) error, mutate func(*models.Loan)) (*models.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	loan, ok := s.loans[loanID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(loan); err != nil {
		return nil, err
	}
	prev := clone(loan)
	mutate(loan)
	txcontext.RecordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.loans[loanID] = prev
	})
	return clone(loan), nil
}

func (s *InMemory) CountActiveByUser(_ context.Context, userID id.UserID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, loan := range s.loans {
		if loan.UserID == userID && loan.IsActive() {
			count++
		}
	}
	return count, nil
}

func (s *InMemory) ListActiveByUser(_ context.Context, userID id.UserID) ([]*models.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Loan
	for _, loan := range s.loans {
		if loan.UserID == userID && loan.IsActive() {
			out = append(out, clone(loan))
		}
	}
	sortByLoanedAt(out)
	return out, nil
}

func (s *InMemory) CountActiveByBook(_ context.Context, bookID id.BookID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, loan := range s.loans {
		if loan.BookID == bookID && loan.IsActive() {
			count++
		}
	}
	return count, nil
}

func (s *InMemory) CountByBook(_ context.Context, bookID id.BookID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, loan := range s.loans {
		if loan.BookID == bookID {
			count++
		}
	}
	return count, nil
}

// ListOverdue returns active loans whose due date has passed as of the given
// instant, oldest due first.
func (s *InMemory) ListOverdue(_ context.Context, asOf time.Time) ([]*models.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Loan
	for _, loan := range s.loans {
		if loan.IsOverdue(asOf) {
			out = append(out, clone(loan))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueAt.Before(out[j].DueAt) })
	return out, nil
}

func (s *InMemory) CountActive(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, loan := range s.loans {
		if loan.IsActive() {
			count++
		}
	}
	return count, nil
}

func sortByLoanedAt(loans []*models.Loan) {
	sort.Slice(loans, func(i, j int) bool { return loans[i].LoanedAt.Before(loans[j].LoanedAt) })
}

func clone(l *models.Loan) *models.Loan {
	c := *l
	if l.ReturnedAt != nil {
		t := *l.ReturnedAt
		c.ReturnedAt = &t
	}
	if l.FineCents != nil {
		f := *l.FineCents
		c.FineCents = &f
	}
	return &c
}
