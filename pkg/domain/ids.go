// Package domain holds small domain primitives shared across features: typed
// identifiers and the user role enum. Typed IDs prevent cross-entity mixups at
// compile time; parsing enforces validity at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "circ/pkg/domain-errors"
)

// Typed identifiers for the core entities. Construct via the Parse helpers at
// trust boundaries; direct casting bypasses validation.
type (
	UserID  uuid.UUID
	BookID  uuid.UUID
	LoanID  uuid.UUID
	EntryID uuid.UUID
)

func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" ID cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind+" ID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" ID cannot be nil")
	}
	return u, nil
}

// ParseUserID validates and converts an external string into a UserID.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user")
	return UserID(u), err
}

// ParseBookID validates and converts an external string into a BookID.
func ParseBookID(s string) (BookID, error) {
	u, err := parseUUID(s, "book")
	return BookID(u), err
}

// ParseLoanID validates and converts an external string into a LoanID.
func ParseLoanID(s string) (LoanID, error) {
	u, err := parseUUID(s, "loan")
	return LoanID(u), err
}

// ParseEntryID validates and converts an external string into an audit EntryID.
func ParseEntryID(s string) (EntryID, error) {
	u, err := parseUUID(s, "audit entry")
	return EntryID(u), err
}

func (id UserID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id BookID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id LoanID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id EntryID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func (id UserID) String() string  { return uuid.UUID(id).String() }
func (id BookID) String() string  { return uuid.UUID(id).String() }
func (id LoanID) String() string  { return uuid.UUID(id).String() }
func (id EntryID) String() string { return uuid.UUID(id).String() }

// Text marshaling keeps the canonical UUID string form in JSON and SQL.

func (id UserID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }
func (id BookID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }
func (id LoanID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }
func (id EntryID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error  { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *BookID) UnmarshalText(b []byte) error  { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *LoanID) UnmarshalText(b []byte) error  { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *EntryID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
