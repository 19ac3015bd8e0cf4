package models

import (
	"strings"
	"time"

	id "circ/pkg/domain"
	dErrors "circ/pkg/domain-errors"
)

// User is a registered library member.
//
// Invariants:
//   - Username, Email and Phone are non-empty, each unique across members
//     (username and email case-insensitive)
//   - Role is either patron or librarian
//   - CreatedAt is immutable after construction
type User struct {
	ID        id.UserID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      id.Role   `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func NewUser(userID id.UserID, username, email, phone string, role id.Role, now time.Time) (*User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	phone = strings.TrimSpace(phone)
	if username == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "username cannot be empty")
	}
	if len(username) > 64 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "username must be 64 characters or less")
	}
	if email == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "email cannot be empty")
	}
	if phone == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "phone cannot be empty")
	}
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "unknown role: "+role.String())
	}
	return &User{
		ID:        userID,
		Username:  username,
		Email:     email,
		Phone:     phone,
		Role:      role,
		CreatedAt: now,
	}, nil
}
