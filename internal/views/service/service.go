// Package service composes read-only views across the catalog, membership and
// lending ledger. Sub-fetches fan out concurrently; none of the read paths
// mutate domain state.
package service

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	catalogmodels "circ/internal/catalog/models"
	ledgermodels "circ/internal/ledger/models"
	membermodels "circ/internal/membership/models"
	"circ/internal/views/cache"
	"circ/internal/views/models"
	id "circ/pkg/domain"
	dErrors "circ/pkg/domain-errors"
	"circ/pkg/platform/sentinel"
	"circ/pkg/requestcontext"
)

type BookReader interface {
	FindByID(ctx context.Context, bookID id.BookID) (*catalogmodels.Book, error)
}

type UserReader interface {
	FindByID(ctx context.Context, userID id.UserID) (*membermodels.User, error)
}

type LoanReader interface {
	CountActiveByBook(ctx context.Context, bookID id.BookID) (int, error)
	CountByBook(ctx context.Context, bookID id.BookID) (int, error)
	ListActiveByUser(ctx context.Context, userID id.UserID) ([]*ledgermodels.Loan, error)
}

// ViewService builds the composite detail views.
type ViewService struct {
	books BookReader
	users UserReader
	loans LoanReader
	cache *cache.Cache
}

func New(books BookReader, users UserReader, loans LoanReader, viewCache *cache.Cache) *ViewService {
	return &ViewService{
		books: books,
		users: users,
		loans: loans,
		cache: viewCache,
	}
}

// BookDetail joins a catalog entry with its lending activity. The book fetch
// and the two loan counts run concurrently.
func (s *ViewService) BookDetail(ctx context.Context, bookID id.BookID) (*models.BookDetail, error) {
	if bookID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "book ID is required")
	}

	cacheKey := "book:" + bookID.String()
	var cached models.BookDetail
	if s.cache.Get(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	detail := &models.BookDetail{}

	g.Go(func() error {
		book, err := s.books.FindByID(gctx, bookID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "book not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load book")
		}
		detail.Book = book
		return nil
	})
	g.Go(func() error {
		active, err := s.loans.CountActiveByBook(gctx, bookID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count active loans")
		}
		detail.ActiveLoans = active
		return nil
	})
	g.Go(func() error {
		total, err := s.loans.CountByBook(gctx, bookID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count loans")
		}
		detail.TotalLoans = total
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	detail.CopiesOnLoan = detail.Book.CopiesOnLoan()
	detail.CompletedLoans = detail.TotalLoans - detail.ActiveLoans

	s.cache.Set(ctx, cacheKey, detail)
	return detail, nil
}

// UserDetail joins a member with their open loans, each annotated with a live
// fine preview, plus the sum they would owe if everything came back now.
func (s *ViewService) UserDetail(ctx context.Context, userID id.UserID) (*models.UserDetail, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "user ID is required")
	}

	cacheKey := "user:" + userID.String()
	var cached models.UserDetail
	if s.cache.Get(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	var (
		user  *membermodels.User
		loans []*ledgermodels.Loan
	)

	g.Go(func() error {
		u, err := s.users.FindByID(gctx, userID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "user not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
		}
		user = u
		return nil
	})
	g.Go(func() error {
		l, err := s.loans.ListActiveByUser(gctx, userID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to list active loans")
		}
		loans = l
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	detail := &models.UserDetail{
		User:        user,
		ActiveLoans: make([]models.ActiveLoan, 0, len(loans)),
	}
	for _, loan := range loans {
		fine := ledgermodels.FineCents(loan.DueAt, now)
		entry := models.ActiveLoan{
			Loan:      loan,
			Overdue:   loan.IsOverdue(now),
			FineCents: fine,
			Fine:      ledgermodels.FormatCents(fine),
		}
		// Title lookup is best effort; a pruned catalog entry leaves it blank.
		if book, err := s.books.FindByID(ctx, loan.BookID); err == nil {
			entry.BookTitle = book.Title
		}
		detail.PotentialFineCents += fine
		detail.ActiveLoans = append(detail.ActiveLoans, entry)
	}
	detail.PotentialFine = ledgermodels.FormatCents(detail.PotentialFineCents)

	s.cache.Set(ctx, cacheKey, detail)
	return detail, nil
}
