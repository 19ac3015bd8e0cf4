package domain

import dErrors "circ/pkg/domain-errors"

// Role distinguishes ordinary borrowers from staff. Librarians may mutate the
// catalog and read the audit trail; patrons may only borrow.
type Role string

const (
	RolePatron    Role = "patron"
	RoleLibrarian Role = "librarian"
)

var validRoles = map[Role]bool{
	RolePatron:    true,
	RoleLibrarian: true,
}

// ParseRole constructs a Role from external input. The empty string maps to
// the default patron role.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return RolePatron, nil
	}
	r := Role(s)
	if !validRoles[r] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid role")
	}
	return r, nil
}

// IsValid checks if the role is one of the supported enum values.
func (r Role) IsValid() bool { return validRoles[r] }

func (r Role) String() string { return string(r) }
