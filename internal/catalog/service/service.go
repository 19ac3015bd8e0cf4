package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"circ/internal/catalog/models"
	"circ/internal/platform/metrics"
	"circ/pkg/audit"
	id "circ/pkg/domain"
	dErrors "circ/pkg/domain-errors"
	"circ/pkg/platform/sentinel"
	"circ/pkg/requestcontext"
)

// BookStore is the persistence surface the catalog needs.
type BookStore interface {
	CreateIfISBNAvailable(ctx context.Context, book *models.Book) error
	FindByID(ctx context.Context, bookID id.BookID) (*models.Book, error)
	FindByISBN(ctx context.Context, isbn string) (*models.Book, error)
	Execute(ctx context.Context, bookID id.BookID, validate func(*models.Book) error, mutate func(*models.Book)) (*models.Book, error)
	Count(ctx context.Context) (int, error)
}

// Auditor appends trail entries inside the caller's transaction.
type Auditor interface {
	Record(ctx context.Context, action audit.Action, entityType, entityID string, userID *id.UserID, details map[string]any) error
}

// CatalogService orchestrates the book lifecycle. Every mutation runs inside
// a transaction together with its audit entry.
type CatalogService struct {
	books   BookStore
	auditor Auditor
	metrics *metrics.Metrics
	tx      StoreTx
}

type Option func(cfg *serviceConfig)

type serviceConfig struct {
	metrics *metrics.Metrics
	tx      StoreTx
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(cfg *serviceConfig) {
		cfg.metrics = m
	}
}

func WithStoreTx(tx StoreTx) Option {
	return func(cfg *serviceConfig) {
		cfg.tx = tx
	}
}

func New(books BookStore, auditor Auditor, opts ...Option) *CatalogService {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	tx := cfg.tx
	if tx == nil {
		tx = newInMemoryStoreTx()
	}
	return &CatalogService{
		books:   books,
		auditor: auditor,
		metrics: cfg.metrics,
		tx:      tx,
	}
}

// AddBook registers a title. New titles start with a single copy on the
// shelf; ResizeCopies adjusts the count afterwards.
func (s *CatalogService) AddBook(ctx context.Context, title, author, isbn string) (*models.Book, error) {
	var book *models.Book
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		b, err := models.NewBook(id.BookID(uuid.New()), title, author, isbn, requestcontext.Now(txCtx))
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
				return dErrors.New(dErrors.CodeValidation, err.Error())
			}
			return err
		}

		if err := s.books.CreateIfISBNAvailable(txCtx, b); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(dErrors.CodeConflict, "a book with this isbn already exists")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create book")
		}

		actor := actorRef(txCtx)
		if err := s.auditor.Record(txCtx, audit.ActionBookCreated, "book", b.ID.String(), actor, map[string]any{
			"title":        b.Title,
			"isbn":         b.ISBN,
			"total_copies": b.TotalCopies,
		}); err != nil {
			return err
		}
		book = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.BooksAdded.Inc()
	}
	return book, nil
}

// ResizeCopies changes a title's total copy count. The floor is the number of
// copies currently on loan, checked and applied under the store's row lock.
func (s *CatalogService) ResizeCopies(ctx context.Context, bookID id.BookID, newTotal int) (*models.Book, error) {
	if bookID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "book ID is required")
	}

	var book *models.Book
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		now := requestcontext.Now(txCtx)
		var previousTotal int
		b, err := s.books.Execute(txCtx, bookID,
			func(b *models.Book) error {
				previousTotal = b.TotalCopies
				if err := b.CanResize(newTotal); err != nil {
					if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
						return dErrors.New(dErrors.CodeValidation, err.Error())
					}
					return err
				}
				return nil
			},
			func(b *models.Book) {
				b.ApplyResize(newTotal, now)
			},
		)
		if err != nil {
			return wrapBookErr(err)
		}

		actor := actorRef(txCtx)
		if err := s.auditor.Record(txCtx, audit.ActionBookUpdated, "book", b.ID.String(), actor, map[string]any{
			"previous_total": previousTotal,
			"new_total":      b.TotalCopies,
		}); err != nil {
			return err
		}
		book = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

// GetBook fetches a title by ID.
func (s *CatalogService) GetBook(ctx context.Context, bookID id.BookID) (*models.Book, error) {
	if bookID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "book ID is required")
	}
	book, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		return nil, wrapBookErr(err)
	}
	return book, nil
}

// CountBooks reports the catalog size for the health surface.
func (s *CatalogService) CountBooks(ctx context.Context) (int, error) {
	count, err := s.books.Count(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count books")
	}
	return count, nil
}

func wrapBookErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "book not found")
	case dErrors.CodeOf(err) != dErrors.CodeInternal:
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "book store failure")
	}
}

// actorRef resolves the acting user from the request context, nil when the
// call is unauthenticated or system-initiated.
func actorRef(ctx context.Context) *id.UserID {
	actor := requestcontext.Actor(ctx)
	if actor.IsNil() {
		return nil
	}
	return &actor
}
