package audit

import (
	"context"
	"errors"

	"github.com/google/uuid"

	id "circ/pkg/domain"
	dErrors "circ/pkg/domain-errors"
	"circ/pkg/platform/sentinel"
	"circ/pkg/requestcontext"
)

// Store persists entries. Append must participate in the ambient transaction
// when one is carried by the context (pkg/platform/tx) so the entry commits or
// rolls back together with the domain mutation.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	Query(ctx context.Context, filter Filter) ([]Entry, error)
	GetByID(ctx context.Context, entryID id.EntryID) (*Entry, error)
}

// Recorder builds entries from request context and appends them. Services
// call it inside their transaction boundary; a failed append is returned to
// the caller and must abort the whole operation (fail closed).
type Recorder struct {
	store Store
}

func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store}
}

// Record appends one entry. Timestamp and source address come from the
// request context so the caller passes only domain facts. The caller's device,
// when a User-Agent was captured, is folded into the details.
func (r *Recorder) Record(ctx context.Context, action Action, entityType, entityID string, userID *id.UserID, details map[string]any) error {
	if !action.IsValid() {
		return dErrors.New(dErrors.CodeInvariantViolation, "unknown audit action: "+string(action))
	}

	if ua := requestcontext.UserAgent(ctx); ua != "" {
		if details == nil {
			details = map[string]any{}
		}
		details["client_device"] = DeviceSummary(ua)
	}
	if reqID := requestcontext.RequestID(ctx); reqID != "" {
		if details == nil {
			details = map[string]any{}
		}
		details["request_id"] = reqID
	}

	entry := Entry{
		ID:            id.EntryID(uuid.New()),
		Action:        action,
		EntityType:    entityType,
		EntityID:      entityID,
		UserID:        userID,
		Timestamp:     requestcontext.Now(ctx),
		Details:       details,
		SourceAddress: requestcontext.ClientIP(ctx),
	}
	if err := r.store.Append(ctx, entry); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to append audit entry")
	}
	return nil
}

// Query returns entries newest first, honoring the limit clamp.
func (r *Recorder) Query(ctx context.Context, filter Filter) ([]Entry, error) {
	entries, err := r.store.Query(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to query audit trail")
	}
	return entries, nil
}

// GetByID fetches a single entry.
func (r *Recorder) GetByID(ctx context.Context, entryID id.EntryID) (*Entry, error) {
	if entryID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "audit entry ID required")
	}
	entry, err := r.store.GetByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "audit entry not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load audit entry")
	}
	return entry, nil
}
