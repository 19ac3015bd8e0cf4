package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "circ/pkg/domain"
	"circ/pkg/platform/sentinel"
	txcontext "circ/pkg/platform/tx"
)

// PostgresStore persists entries in the audit_entries table. Append joins the
// transaction carried by the context, so the entry commits atomically with the
// domain mutation it documents. Rows double as the outbox for the downstream
// feed: the feed worker claims unpublished rows and marks them published.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, entry Entry) error {
	const q = `
		INSERT INTO audit_entries (id, action, entity_type, entity_id, user_id, timestamp, details, source_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	var userID *uuid.UUID
	if entry.UserID != nil {
		u := uuid.UUID(*entry.UserID)
		userID = &u
	}
	var details any
	if raw := EncodeDetails(entry.Details); raw != nil {
		details = raw
	}

	_, err := txcontext.QuerierFrom(ctx, s.db).ExecContext(ctx, q,
		uuid.UUID(entry.ID),
		string(entry.Action),
		entry.EntityType,
		entry.EntityID,
		userID,
		entry.Timestamp,
		details,
		nullableString(entry.SourceAddress),
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) Query(ctx context.Context, filter Filter) ([]Entry, error) {
	q := `
		SELECT id, action, entity_type, entity_id, user_id, timestamp, details, source_address
		FROM audit_entries
	`
	var (
		conds []string
		args  []any
	)
	addCond := func(column string, value any) {
		args = append(args, value)
		conds = append(conds, column+" = $"+strconv.Itoa(len(args)))
	}
	if filter.EntityType != "" {
		addCond("entity_type", filter.EntityType)
	}
	if filter.EntityID != "" {
		addCond("entity_id", filter.EntityID)
	}
	if filter.Action != "" {
		addCond("action", string(filter.Action))
	}
	if filter.UserID != nil {
		addCond("user_id", uuid.UUID(*filter.UserID))
	}
	for i, cond := range conds {
		if i == 0 {
			q += " WHERE " + cond
		} else {
			q += " AND " + cond
		}
	}
	args = append(args, filter.EffectiveLimit())
	q += " ORDER BY timestamp DESC, id DESC LIMIT $" + strconv.Itoa(len(args))

	rows, err := txcontext.QuerierFrom(ctx, s.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func (s *PostgresStore) GetByID(ctx context.Context, entryID id.EntryID) (*Entry, error) {
	const q = `
		SELECT id, action, entity_type, entity_id, user_id, timestamp, details, source_address
		FROM audit_entries
		WHERE id = $1
	`
	row := txcontext.QuerierFrom(ctx, s.db).QueryRowContext(ctx, q, uuid.UUID(entryID))
	entry, err := scanEntry(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get audit entry: %w", err)
	}
	return entry, nil
}

// NextUnpublished returns the oldest entries not yet handed to the feed.
// FOR UPDATE SKIP LOCKED keeps concurrent workers from claiming the same rows.
func (s *PostgresStore) NextUnpublished(ctx context.Context, batch int) ([]Entry, error) {
	const q = `
		SELECT id, action, entity_type, entity_id, user_id, timestamp, details, source_address
		FROM audit_entries
		WHERE published = FALSE
		ORDER BY timestamp ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`
	rows, err := txcontext.QuerierFrom(ctx, s.db).QueryContext(ctx, q, batch)
	if err != nil {
		return nil, fmt.Errorf("query unpublished audit entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// MarkPublished flags entries as handed off to the downstream feed.
func (s *PostgresStore) MarkPublished(ctx context.Context, entryIDs []id.EntryID) error {
	if len(entryIDs) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(entryIDs))
	for i, e := range entryIDs {
		ids[i] = uuid.UUID(e)
	}
	const q = `UPDATE audit_entries SET published = TRUE WHERE id = ANY($1)`
	if _, err := txcontext.QuerierFrom(ctx, s.db).ExecContext(ctx, q, pq.Array(ids)); err != nil {
		return fmt.Errorf("mark audit entries published: %w", err)
	}
	return nil
}

type scanFunc func(dest ...any) error

func scanEntry(scan scanFunc) (*Entry, error) {
	var (
		entry      Entry
		entryID    uuid.UUID
		action     string
		userID     *uuid.UUID
		timestamp  time.Time
		rawDetails []byte
		sourceAddr sql.NullString
	)
	err := scan(&entryID, &action, &entry.EntityType, &entry.EntityID, &userID, &timestamp, &rawDetails, &sourceAddr)
	if err != nil {
		return nil, err
	}
	entry.ID = id.EntryID(entryID)
	entry.Action = Action(action)
	entry.Timestamp = timestamp
	if userID != nil {
		u := id.UserID(*userID)
		entry.UserID = &u
	}
	if len(rawDetails) > 0 {
		// Details are best-effort on the way in; tolerate junk on the way out.
		_ = json.Unmarshal(rawDetails, &entry.Details)
	}
	if sourceAddr.Valid {
		entry.SourceAddress = sourceAddr.String
	}
	return &entry, nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
