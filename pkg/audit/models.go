// Package audit is the append-only trail of domain events. Entries are
// written in the same transaction as the mutation they document: a loan state
// change never persists without its entry, and vice versa. Entries are never
// updated or deleted.
package audit

import (
	"encoding/json"
	"fmt"
	"time"

	id "circ/pkg/domain"
)

// Action identifies what happened. The vocabulary is stable: downstream
// reporting consumes these strings, so renaming one is a breaking change.
type Action string

const (
	ActionUserCreated    Action = "user_created"
	ActionBookCreated    Action = "book_created"
	ActionBookUpdated    Action = "book_updated"
	ActionLoanCreated    Action = "loan_created"
	ActionLoanReturned   Action = "loan_returned"
	ActionFineCalculated Action = "fine_calculated"
)

var validActions = map[Action]bool{
	ActionUserCreated:    true,
	ActionBookCreated:    true,
	ActionBookUpdated:    true,
	ActionLoanCreated:    true,
	ActionLoanReturned:   true,
	ActionFineCalculated: true,
}

// IsValid checks if the action is part of the stable vocabulary.
func (a Action) IsValid() bool { return validActions[a] }

// Entry is one immutable record of a domain event.
//
// UserID is the actor the event is attributed to - for loan events the
// borrower, for catalog events the librarian who performed the change. It is
// nil for events with no attributable actor.
type Entry struct {
	ID            id.EntryID     `json:"id"`
	Action        Action         `json:"action"`
	EntityType    string         `json:"entity_type"`
	EntityID      string         `json:"entity_id"`
	UserID        *id.UserID     `json:"user_id,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
	Details       map[string]any `json:"details,omitempty"`
	SourceAddress string         `json:"source_address,omitempty"`
}

// Query limits. Callers may ask for fewer entries; requests above the hard
// cap are clamped, never rejected.
const (
	DefaultQueryLimit = 100
	MaxQueryLimit     = 500
)

// Filter narrows a trail query. Zero-valued fields are ignored; set fields
// combine conjunctively.
type Filter struct {
	EntityType string
	EntityID   string
	Action     Action
	UserID     *id.UserID
	Limit      int
}

// EffectiveLimit resolves the requested limit against the default and cap.
func (f Filter) EffectiveLimit() int {
	switch {
	case f.Limit <= 0:
		return DefaultQueryLimit
	case f.Limit > MaxQueryLimit:
		return MaxQueryLimit
	default:
		return f.Limit
	}
}

// Matches reports whether the entry satisfies every set filter field.
func (f Filter) Matches(e Entry) bool {
	if f.EntityType != "" && e.EntityType != f.EntityType {
		return false
	}
	if f.EntityID != "" && e.EntityID != f.EntityID {
		return false
	}
	if f.Action != "" && e.Action != f.Action {
		return false
	}
	if f.UserID != nil && (e.UserID == nil || *e.UserID != *f.UserID) {
		return false
	}
	return true
}

// EncodeDetails serializes structured details for persistence. Serialization
// problems degrade to a best-effort string representation instead of failing
// the enclosing transaction; audit completeness beats payload fidelity.
func EncodeDetails(details map[string]any) []byte {
	if len(details) == 0 {
		return nil
	}
	raw, err := json.Marshal(details)
	if err != nil {
		fallback, _ := json.Marshal(map[string]any{"unserializable": fmt.Sprint(details)})
		return fallback
	}
	return raw
}
