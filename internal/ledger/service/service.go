// Package service implements the lending ledger. Loan creation and return are
// the two write paths; both run inside one transaction with their audit
// entries so the ledger, the copy counts and the trail can never disagree.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	catalogmodels "circ/internal/catalog/models"
	"circ/internal/ledger/models"
	membermodels "circ/internal/membership/models"
	"circ/internal/platform/metrics"
	"circ/pkg/audit"
	id "circ/pkg/domain"
	dErrors "circ/pkg/domain-errors"
	"circ/pkg/platform/sentinel"
	"circ/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/ledger-mocks.go -package=mocks

// LoanStore is the ledger's persistence surface.
type LoanStore interface {
	Create(ctx context.Context, loan *models.Loan) error
	FindByID(ctx context.Context, loanID id.LoanID) (*models.Loan, error)
	Execute(ctx context.Context, loanID id.LoanID, validate func(*models.Loan) error, mutate func(*models.Loan)) (*models.Loan, error)
	CountActiveByUser(ctx context.Context, userID id.UserID) (int, error)
	ListOverdue(ctx context.Context, asOf time.Time) ([]*models.Loan, error)
}

// BookCatalog is the slice of the catalog the ledger needs: atomic copy
// movement plus title lookups for loan detail.
type BookCatalog interface {
	ReserveCopy(ctx context.Context, bookID id.BookID) error
	ReleaseCopy(ctx context.Context, bookID id.BookID) error
	FindByID(ctx context.Context, bookID id.BookID) (*catalogmodels.Book, error)
}

// Members resolves and serializes borrowers. LockMember holds the member for
// the rest of the ambient transaction so the loan cap cannot be raced.
type Members interface {
	LockMember(ctx context.Context, userID id.UserID) error
	FindByID(ctx context.Context, userID id.UserID) (*membermodels.User, error)
}

// Auditor appends trail entries inside the caller's transaction.
type Auditor interface {
	Record(ctx context.Context, action audit.Action, entityType, entityID string, userID *id.UserID, details map[string]any) error
}

// LedgerService orchestrates loan lifecycle and fine assessment.
type LedgerService struct {
	loans   LoanStore
	catalog BookCatalog
	members Members
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

func New(loans LoanStore, catalog BookCatalog, members Members, auditor Auditor, opts ...Option) *LedgerService {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	tx := cfg.tx
	if tx == nil {
		tx = newInMemoryStoreTx()
	}
	return &LedgerService{
		loans:   loans,
		catalog: catalog,
		members: members,
		auditor: auditor,
		metrics: cfg.metrics,
		tx:      tx,
	}
}

// CreateLoan checks out one copy to a member. The member lock, the cap check,
// the copy reservation, the ledger insert and the audit entry all commit or
// roll back as one unit.
func (s *LedgerService) CreateLoan(ctx context.Context, userID id.UserID, bookID id.BookID) (*models.Loan, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "user ID is required")
	}
	if bookID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "book ID is required")
	}

	var loan *models.Loan
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.members.LockMember(txCtx, userID); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "user not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to lock member")
		}

		active, err := s.loans.CountActiveByUser(txCtx, userID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count active loans")
		}
		if active >= models.MaxActiveLoans {
			if s.metrics != nil {
				s.metrics.CapRejections.Inc()
			}
			return dErrors.New(dErrors.CodeLoanLimitExceeded, "member already has the maximum number of active loans").
				WithDetails(map[string]any{"active_loans": active, "limit": models.MaxActiveLoans})
		}

		if err := s.catalog.ReserveCopy(txCtx, bookID); err != nil {
			switch {
			case errors.Is(err, sentinel.ErrNotFound):
				return dErrors.New(dErrors.CodeNotFound, "book not found")
			case errors.Is(err, sentinel.ErrNoneAvailable):
				if s.metrics != nil {
					s.metrics.CopyRejections.Inc()
				}
				return dErrors.New(dErrors.CodeNoCopiesAvailable, "no copies of this book are available")
			default:
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to reserve copy")
			}
		}

		l := models.NewLoan(id.LoanID(uuid.New()), bookID, userID, requestcontext.Now(txCtx))
		if err := s.loans.Create(txCtx, l); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create loan")
		}

		// Both records exist at this point: the member is locked and the
		// reservation just succeeded on the book row.
		book, err := s.catalog.FindByID(txCtx, bookID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load book")
		}
		member, err := s.members.FindByID(txCtx, userID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load member")
		}

		if err := s.auditor.Record(txCtx, audit.ActionLoanCreated, "loan", l.ID.String(), &userID, map[string]any{
			"book_id":          bookID.String(),
			"book_title":       book.Title,
			"username":         member.Username,
			"due_at":           l.DueAt,
			"available_copies": book.AvailableCopies,
		}); err != nil {
			return err
		}
		loan = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.LoansCreated.Inc()
	}
	return loan, nil
}

// ReturnLoan closes a loan, releases its copy and freezes the fine. A second
// audit entry records the assessment when a fine applies.
func (s *LedgerService) ReturnLoan(ctx context.Context, loanID id.LoanID) (*models.Loan, error) {
	if loanID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "loan ID is required")
	}

	var loan *models.Loan
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		now := requestcontext.Now(txCtx)
		l, err := s.loans.Execute(txCtx, loanID,
			func(l *models.Loan) error {
				return l.CanReturn()
			},
			func(l *models.Loan) {
				l.ApplyReturn(now)
			},
		)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "loan not found")
			}
			if dErrors.CodeOf(err) != dErrors.CodeInternal {
				return err
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to return loan")
		}

		if err := s.catalog.ReleaseCopy(txCtx, l.BookID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to release copy")
		}

		returnedDetails := map[string]any{
			"book_id":      l.BookID.String(),
			"returned_at":  *l.ReturnedAt,
			"fine_cents":   *l.FineCents,
			"fine":         models.FormatCents(*l.FineCents),
			"days_overdue": models.OverdueDays(l.DueAt, now),
		}
		// The book may have been pruned from the catalog; the return still
		// proceeds, the entry just omits the shelf count.
		if book, err := s.catalog.FindByID(txCtx, l.BookID); err == nil {
			returnedDetails["available_copies"] = book.AvailableCopies
		}
		if err := s.auditor.Record(txCtx, audit.ActionLoanReturned, "loan", l.ID.String(), &l.UserID, returnedDetails); err != nil {
			return err
		}

		if l.FineCents != nil && *l.FineCents > 0 {
			if err := s.auditor.Record(txCtx, audit.ActionFineCalculated, "loan", l.ID.String(), &l.UserID, map[string]any{
				"fine_cents":       *l.FineCents,
				"fine":             models.FormatCents(*l.FineCents),
				"days_overdue":     models.OverdueDays(l.DueAt, now),
				"daily_rate_cents": models.DailyFineCents,
				"max_fine_cents":   models.MaxFineCents,
			}); err != nil {
				return err
			}
		}
		loan = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.LoansReturned.Inc()
		if loan.FineCents != nil && *loan.FineCents > 0 {
			s.metrics.FinesAssessed.Inc()
			s.metrics.AddFine(float64(*loan.FineCents) / 100)
		}
	}
	return loan, nil
}

// GetLoanDetail fetches a loan with its book and borrower joined in. A missing
// book or user record surfaces as a null sub-object rather than failing the
// read.
func (s *LedgerService) GetLoanDetail(ctx context.Context, loanID id.LoanID) (*models.LoanDetail, error) {
	if loanID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "loan ID is required")
	}

	loan, err := s.loans.FindByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "loan not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load loan")
	}

	now := requestcontext.Now(ctx)
	detail := &models.LoanDetail{
		Loan:      loan,
		Overdue:   loan.IsOverdue(now),
		FineCents: s.accruedFine(loan, now),
	}
	detail.Fine = models.FormatCents(detail.FineCents)

	if book, err := s.catalog.FindByID(ctx, loan.BookID); err == nil {
		detail.Book = book
	}
	if user, err := s.members.FindByID(ctx, loan.UserID); err == nil {
		detail.Borrower = user
	}
	return detail, nil
}

// ListOverdue reports all active loans past due with their accrued fines.
func (s *LedgerService) ListOverdue(ctx context.Context) ([]models.OverdueLoan, error) {
	now := requestcontext.Now(ctx)
	loans, err := s.loans.ListOverdue(ctx, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list overdue loans")
	}

	out := make([]models.OverdueLoan, 0, len(loans))
	for _, loan := range loans {
		fine := models.FineCents(loan.DueAt, now)
		out = append(out, models.OverdueLoan{
			Loan:        loan,
			DaysOverdue: models.OverdueDays(loan.DueAt, now),
			FineCents:   fine,
			Fine:        models.FormatCents(fine),
		})
	}
	return out, nil
}

// accruedFine is the frozen fine for returned loans and a live preview for
// active ones.
func (s *LedgerService) accruedFine(loan *models.Loan, now time.Time) int64 {
	if loan.FineCents != nil {
		return *loan.FineCents
	}
	return models.FineCents(loan.DueAt, now)
}
