// Package models holds the read-only composite views served by the query
// façade. Views never carry state of their own; everything here is derived
// from the catalog, membership and ledger at read time.
package models

import (
	catalogmodels "circ/internal/catalog/models"
	ledgermodels "circ/internal/ledger/models"
	membermodels "circ/internal/membership/models"
)

// BookDetail is a catalog entry annotated with its lending activity.
type BookDetail struct {
	Book           *catalogmodels.Book `json:"book"`
	CopiesOnLoan   int                 `json:"copies_on_loan"`
	ActiveLoans    int                 `json:"active_loans"`
	CompletedLoans int                 `json:"completed_loans"`
	TotalLoans     int                 `json:"total_loans"`
}

// ActiveLoan is one open loan on a member's account with a live fine preview.
type ActiveLoan struct {
	Loan      *ledgermodels.Loan `json:"loan"`
	BookTitle string             `json:"book_title,omitempty"`
	Overdue   bool               `json:"overdue"`
	FineCents int64              `json:"fine_cents"`
	Fine      string             `json:"fine"`
}

// UserDetail is a member with their open loans and the fine they would owe if
// everything came back right now.
type UserDetail struct {
	User               *membermodels.User `json:"user"`
	ActiveLoans        []ActiveLoan       `json:"active_loans"`
	PotentialFineCents int64              `json:"potential_fine_cents"`
	PotentialFine      string             `json:"potential_fine"`
}
