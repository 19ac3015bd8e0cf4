package models

import (
	"strings"
	"time"

	id "circ/pkg/domain"
	dErrors "circ/pkg/domain-errors"
)

// Book is the aggregate root for a catalog title.
//
// Invariants:
//   - Title and Author are non-empty
//   - ISBN is non-empty and unique across the catalog
//   - 0 <= AvailableCopies <= TotalCopies at all times
//   - TotalCopies never drops below the copies currently on loan
//   - CreatedAt is immutable after construction
//
// AvailableCopies only moves through ReserveCopy/ReleaseCopy on the store or
// through a resize; it is never written directly by callers.
type Book struct {
	ID              id.BookID `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            string    `json:"isbn"`
	TotalCopies     int       `json:"total_copies"`
	AvailableCopies int       `json:"available_copies"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CopiesOnLoan derives the outstanding count from the copy invariant.
func (b *Book) CopiesOnLoan() int {
	return b.TotalCopies - b.AvailableCopies
}

// CanResize checks whether total copies can be set to newTotal. The floor is
// the number of copies currently on loan; outstanding loans are never orphaned.
// Zero is allowed once every copy is back on the shelf.
func (b *Book) CanResize(newTotal int) error {
	if newTotal < 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "total copies cannot be negative")
	}
	if newTotal < b.CopiesOnLoan() {
		return dErrors.New(dErrors.CodeInvariantViolation, "total copies cannot drop below copies currently on loan")
	}
	return nil
}

// ApplyResize moves total copies to newTotal, shifting availability by the
// same delta. Call CanResize first to validate the transition.
func (b *Book) ApplyResize(newTotal int, now time.Time) {
	delta := newTotal - b.TotalCopies
	b.TotalCopies = newTotal
	b.AvailableCopies += delta
	b.UpdatedAt = now
}

// NewBook registers a title with a single copy; ResizeCopies grows the count.
func NewBook(bookID id.BookID, title, author, isbn string, now time.Time) (*Book, error) {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)
	isbn = strings.TrimSpace(isbn)
	if title == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "book title cannot be empty")
	}
	if len(title) > 512 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "book title must be 512 characters or less")
	}
	if author == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "book author cannot be empty")
	}
	if isbn == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "book isbn cannot be empty")
	}
	return &Book{
		ID:              bookID,
		Title:           title,
		Author:          author,
		ISBN:            isbn,
		TotalCopies:     1,
		AvailableCopies: 1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}
