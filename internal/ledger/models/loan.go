package models

import (
	"time"

	id "circ/pkg/domain"
	dErrors "circ/pkg/domain-errors"
)

// LoanPeriod is how long a borrower keeps a copy before it falls due.
const LoanPeriod = 14 * 24 * time.Hour

// MaxActiveLoans caps concurrent unreturned loans per member.
const MaxActiveLoans = 5

// Loan records one copy checked out to one member.
//
// Invariants:
//   - DueAt is exactly LoanPeriod after LoanedAt
//   - ReturnedAt is nil while the loan is active and set exactly once
//   - FineCents is set only at return time and never changes afterwards
type Loan struct {
	ID         id.LoanID  `json:"id"`
	BookID     id.BookID  `json:"book_id"`
	UserID     id.UserID  `json:"user_id"`
	LoanedAt   time.Time  `json:"loaned_at"`
	DueAt      time.Time  `json:"due_at"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
	FineCents  *int64     `json:"fine_cents,omitempty"`
}

func NewLoan(loanID id.LoanID, bookID id.BookID, userID id.UserID, now time.Time) *Loan {
	return &Loan{
		ID:       loanID,
		BookID:   bookID,
		UserID:   userID,
		LoanedAt: now,
		DueAt:    now.Add(LoanPeriod),
	}
}

func (l *Loan) IsActive() bool {
	return l.ReturnedAt == nil
}

// IsOverdue reports whether an active loan has passed its due date. Returned
// loans are never overdue regardless of when they came back.
func (l *Loan) IsOverdue(now time.Time) bool {
	return l.IsActive() && now.After(l.DueAt)
}

// CanReturn checks that the loan is still open.
func (l *Loan) CanReturn() error {
	if l.ReturnedAt != nil {
		return dErrors.New(dErrors.CodeAlreadyReturned, "loan has already been returned")
	}
	return nil
}

// ApplyReturn closes the loan and freezes the fine computed at return time.
// Call CanReturn first to validate the transition.
func (l *Loan) ApplyReturn(now time.Time) {
	returnedAt := now
	fine := FineCents(l.DueAt, now)
	l.ReturnedAt = &returnedAt
	l.FineCents = &fine
}
