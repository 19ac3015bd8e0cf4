// Package feed streams committed audit entries to Kafka for downstream
// reporting. The audit_entries table acts as a transactional outbox: entries
// land there atomically with their domain mutation, and this worker relays
// them afterwards. Delivery is at-least-once; consumers dedupe on entry ID.
package feed

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"circ/pkg/audit"
	id "circ/pkg/domain"
	txcontext "circ/pkg/platform/tx"
)

const (
	defaultTopic    = "circ.audit.entries"
	defaultInterval = 2 * time.Second
	defaultBatch    = 100
)

// Publisher hands one entry to the downstream transport.
type Publisher interface {
	Publish(ctx context.Context, entry audit.Entry) error
	Close()
}

// KafkaPublisher publishes entries as JSON records keyed by entity ID so
// per-entity ordering survives partitioning.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
}

// NewKafkaPublisher connects to the given brokers. Topic falls back to the
// default when empty.
func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	if topic == "" {
		topic = defaultTopic
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &KafkaPublisher{client: client, topic: topic}, nil
}

type feedRecord struct {
	ID            string         `json:"id"`
	Action        string         `json:"action"`
	EntityType    string         `json:"entity_type"`
	EntityID      string         `json:"entity_id"`
	UserID        string         `json:"user_id,omitempty"`
	Timestamp     string         `json:"timestamp"`
	Details       map[string]any `json:"details,omitempty"`
	SourceAddress string         `json:"source_address,omitempty"`
}

func (p *KafkaPublisher) Publish(ctx context.Context, entry audit.Entry) error {
	rec := feedRecord{
		ID:            entry.ID.String(),
		Action:        string(entry.Action),
		EntityType:    entry.EntityType,
		EntityID:      entry.EntityID,
		Timestamp:     entry.Timestamp.Format(time.RFC3339Nano),
		Details:       entry.Details,
		SourceAddress: entry.SourceAddress,
	}
	if entry.UserID != nil {
		rec.UserID = entry.UserID.String()
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal feed record: %w", err)
	}

	result := p.client.ProduceSync(ctx, &kgo.Record{
		Topic: p.topic,
		Key:   []byte(entry.EntityType + ":" + entry.EntityID),
		Value: payload,
	})
	if err := result.FirstErr(); err != nil {
		return fmt.Errorf("produce feed record: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() { p.client.Close() }

// Worker polls the outbox and relays unpublished entries. A failed cycle rolls
// back its claim and retries on the next tick; the trail itself is unaffected.
type Worker struct {
	db        *sql.DB
	store     *audit.PostgresStore
	publisher Publisher
	logger    *slog.Logger
	interval  time.Duration
	batch     int
}

func NewWorker(db *sql.DB, store *audit.PostgresStore, publisher Publisher, logger *slog.Logger) *Worker {
	return &Worker{
		db:        db,
		store:     store,
		publisher: publisher,
		logger:    logger,
		interval:  defaultInterval,
		batch:     defaultBatch,
	}
}

// Run relays entries until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.relayBatch(ctx); err != nil {
				w.logger.WarnContext(ctx, "audit feed relay failed", "error", err)
			}
		}
	}
}

func (w *Worker) relayBatch(ctx context.Context) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin feed transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	txCtx := txcontext.WithTx(ctx, tx)
	entries, err := w.store.NextUnpublished(txCtx, w.batch)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	published := make([]audit.Entry, 0, len(entries))
	for _, entry := range entries {
		if err := w.publisher.Publish(ctx, entry); err != nil {
			// Mark what made it out; the rest is retried next tick.
			break
		}
		published = append(published, entry)
	}
	if len(published) == 0 {
		return fmt.Errorf("no entries published out of %d claimed", len(entries))
	}

	ids := make([]id.EntryID, len(published))
	for i, entry := range published {
		ids[i] = entry.ID
	}
	if err := w.store.MarkPublished(txCtx, ids); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit feed transaction: %w", err)
	}
	w.logger.DebugContext(ctx, "audit feed relayed", "count", len(published))
	return nil
}
