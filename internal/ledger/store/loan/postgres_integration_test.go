//go:build integration

package loan_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	catalogmodels "circ/internal/catalog/models"
	"circ/internal/catalog/store/book"
	"circ/internal/ledger/models"
	"circ/internal/ledger/store/loan"
	membershipmodels "circ/internal/membership/models"
	"circ/internal/membership/store/user"
	id "circ/pkg/domain"
	"circ/pkg/platform/sentinel"
	txcontext "circ/pkg/platform/tx"
	"circ/pkg/testutil/containers"
)

type PostgresLoanStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *loan.Postgres
	books    *book.Postgres
	users    *user.Postgres
	now      time.Time
}

func TestPostgresLoanStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresLoanStoreSuite))
}

func (s *PostgresLoanStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = loan.NewPostgres(s.postgres.DB)
	s.books = book.NewPostgres(s.postgres.DB)
	s.users = user.NewPostgres(s.postgres.DB)
}

func (s *PostgresLoanStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.Truncate(context.Background()))
	s.now = time.Now().UTC().Truncate(time.Microsecond)
}

// seedBorrower satisfies the loans foreign keys with a real user and book row.
func (s *PostgresLoanStoreSuite) seedBorrower(tag string) (id.UserID, id.BookID) {
	ctx := context.Background()

	u, err := membershipmodels.NewUser(id.UserID(uuid.New()),
		"user-"+tag, tag+"@example.com", "+1555"+tag, id.RolePatron, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.users.CreateIfIdentityAvailable(ctx, u))

	b, err := catalogmodels.NewBook(id.BookID(uuid.New()),
		"Title "+tag, "Author "+tag, "isbn-"+tag, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.books.CreateIfISBNAvailable(ctx, b))

	return u.ID, b.ID
}

func (s *PostgresLoanStoreSuite) TestRoundTripAndNullableColumns() {
	ctx := context.Background()
	userID, bookID := s.seedBorrower("0001")

	l := models.NewLoan(id.LoanID(uuid.New()), bookID, userID, s.now)
	s.Require().NoError(s.store.Create(ctx, l))

	found, err := s.store.FindByID(ctx, l.ID)
	s.Require().NoError(err)
	s.True(found.LoanedAt.Equal(s.now))
	s.True(found.DueAt.Equal(s.now.Add(models.LoanPeriod)))
	s.Nil(found.ReturnedAt)
	s.Nil(found.FineCents)

	err = s.store.Create(ctx, l)
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresLoanStoreSuite) TestExecuteReturn() {
	ctx := context.Background()
	userID, bookID := s.seedBorrower("0002")

	l := models.NewLoan(id.LoanID(uuid.New()), bookID, userID, s.now)
	s.Require().NoError(s.store.Create(ctx, l))

	returnedAt := s.now.Add(17 * 24 * time.Hour)
	updated, err := s.store.Execute(ctx, l.ID,
		func(ln *models.Loan) error { return ln.CanReturn() },
		func(ln *models.Loan) { ln.ApplyReturn(returnedAt) },
	)
	s.Require().NoError(err)
	s.Require().NotNil(updated.ReturnedAt)
	s.True(updated.ReturnedAt.Equal(returnedAt))
	s.Require().NotNil(updated.FineCents)
	s.Equal(int64(150), *updated.FineCents)

	// the closed state must survive a fresh read
	found, err := s.store.FindByID(ctx, l.ID)
	s.Require().NoError(err)
	s.Require().NotNil(found.FineCents)
	s.Equal(int64(150), *found.FineCents)

	_, err = s.store.Execute(ctx, id.LoanID(uuid.New()),
		func(*models.Loan) error { return nil },
		func(*models.Loan) {},
	)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresLoanStoreSuite) TestActiveCounts() {
	ctx := context.Background()
	userID, bookID := s.seedBorrower("0003")
	otherID, _ := s.seedBorrower("0004")

	for i := 0; i < 3; i++ {
		l := models.NewLoan(id.LoanID(uuid.New()), bookID, userID, s.now.Add(time.Duration(i)*time.Hour))
		s.Require().NoError(s.store.Create(ctx, l))
		if i == 0 {
			_, err := s.store.Execute(ctx, l.ID,
				func(ln *models.Loan) error { return ln.CanReturn() },
				func(ln *models.Loan) { ln.ApplyReturn(s.now.Add(time.Hour)) },
			)
			s.Require().NoError(err)
		}
	}
	s.Require().NoError(s.store.Create(ctx,
		models.NewLoan(id.LoanID(uuid.New()), bookID, otherID, s.now)))

	count, err := s.store.CountActiveByUser(ctx, userID)
	s.Require().NoError(err)
	s.Equal(2, count)

	count, err = s.store.CountActiveByBook(ctx, bookID)
	s.Require().NoError(err)
	s.Equal(3, count)

	count, err = s.store.CountByBook(ctx, bookID)
	s.Require().NoError(err)
	s.Equal(4, count)

	count, err = s.store.CountActive(ctx)
	s.Require().NoError(err)
	s.Equal(3, count)
}

func (s *PostgresLoanStoreSuite) TestListOverdueOrdering() {
	ctx := context.Background()
	userID, bookID := s.seedBorrower("0005")

	mkLoan := func(loanedAt time.Time) *models.Loan {
		l := models.NewLoan(id.LoanID(uuid.New()), bookID, userID, loanedAt)
		s.Require().NoError(s.store.Create(ctx, l))
		return l
	}

	late := mkLoan(s.now.Add(-20 * 24 * time.Hour))
	later := mkLoan(s.now.Add(-16 * 24 * time.Hour))
	mkLoan(s.now) // on time
	returned := mkLoan(s.now.Add(-30 * 24 * time.Hour))
	_, err := s.store.Execute(ctx, returned.ID,
		func(ln *models.Loan) error { return ln.CanReturn() },
		func(ln *models.Loan) { ln.ApplyReturn(s.now) },
	)
	s.Require().NoError(err)

	overdue, err := s.store.ListOverdue(ctx, s.now)
	s.Require().NoError(err)
	s.Require().Len(overdue, 2)
	s.Equal(late.ID, overdue[0].ID, "oldest due date first")
	s.Equal(later.ID, overdue[1].ID)
}

// TestLoanCapUnderConcurrency races checkouts for a member sitting one loan
// under the cap. Each goroutine runs the same critical section the service
// does, a row lock on the member followed by a recount, so at most one insert
// may land.
func (s *PostgresLoanStoreSuite) TestLoanCapUnderConcurrency() {
	ctx := context.Background()
	userID, bookID := s.seedBorrower("0007")
	errAtCap := errors.New("loan cap reached")

	for i := 0; i < models.MaxActiveLoans-1; i++ {
		l := models.NewLoan(id.LoanID(uuid.New()), bookID, userID,
			s.now.Add(time.Duration(i)*time.Minute))
		s.Require().NoError(s.store.Create(ctx, l))
	}

	checkout := func() error {
		tx, err := s.postgres.DB.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		txCtx := txcontext.WithTx(ctx, tx)
		if err := s.users.LockMember(txCtx, userID); err != nil {
			return err
		}
		count, err := s.store.CountActiveByUser(txCtx, userID)
		if err != nil {
			return err
		}
		if count >= models.MaxActiveLoans {
			return errAtCap
		}
		l := models.NewLoan(id.LoanID(uuid.New()), bookID, userID, s.now)
		if err := s.store.Create(txCtx, l); err != nil {
			return err
		}
		return tx.Commit()
	}

	const attempts = 10
	var wg sync.WaitGroup
	var wins, capped atomic.Int32
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			switch err := checkout(); {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, errAtCap):
				capped.Add(1)
			default:
				s.T().Errorf("unexpected checkout error: %v", err)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), wins.Load(), "exactly one checkout should land")
	s.Equal(int32(attempts-1), capped.Load())

	count, err := s.store.CountActiveByUser(ctx, userID)
	s.Require().NoError(err)
	s.Equal(models.MaxActiveLoans, count)
}

func (s *PostgresLoanStoreSuite) TestListActiveByUser() {
	ctx := context.Background()
	userID, bookID := s.seedBorrower("0006")

	var want []id.LoanID
	for i := 0; i < 3; i++ {
		l := models.NewLoan(id.LoanID(uuid.New()), bookID, userID,
			s.now.Add(time.Duration(i)*24*time.Hour))
		s.Require().NoError(s.store.Create(ctx, l))
		want = append(want, l.ID)
	}

	active, err := s.store.ListActiveByUser(ctx, userID)
	s.Require().NoError(err)
	s.Require().Len(active, 3)
	for i, l := range active {
		s.Equal(want[i], l.ID, fmt.Sprintf("position %d should be oldest first", i))
	}
}
