package models

import (
	catalogmodels "circ/internal/catalog/models"
	membermodels "circ/internal/membership/models"
)

// LoanDetail joins a loan with its catalog and membership records. Book and
// Borrower are null when the referenced record is gone; the ledger itself
// remains the source of truth.
type LoanDetail struct {
	Loan      *Loan               `json:"loan"`
	Book      *catalogmodels.Book `json:"book"`
	Borrower  *membermodels.User  `json:"borrower"`
	Overdue   bool                `json:"overdue"`
	FineCents int64               `json:"fine_cents"`
	Fine      string              `json:"fine"`
}

// OverdueLoan is a ledger row with its accrued fine as of the query instant.
// The fine here is a preview; the binding amount is frozen at return time.
type OverdueLoan struct {
	Loan        *Loan  `json:"loan"`
	DaysOverdue int64  `json:"days_overdue"`
	FineCents   int64  `json:"fine_cents"`
	Fine        string `json:"fine"`
}
