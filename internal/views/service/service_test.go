package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	catalogmodels "circ/internal/catalog/models"
	bookStore "circ/internal/catalog/store/book"
	ledgermodels "circ/internal/ledger/models"
	loanStore "circ/internal/ledger/store/loan"
	membermodels "circ/internal/membership/models"
	userStore "circ/internal/membership/store/user"
	id "circ/pkg/domain"
	dErrors "circ/pkg/domain-errors"
	"circ/pkg/requestcontext"
)

type ViewServiceSuite struct {
	suite.Suite
	books   *bookStore.InMemory
	users   *userStore.InMemory
	loans   *loanStore.InMemory
	service *ViewService
	now     time.Time
	ctx     context.Context
}

func TestViewServiceSuite(t *testing.T) {
	suite.Run(t, new(ViewServiceSuite))
}

func (s *ViewServiceSuite) SetupTest() {
	s.books = bookStore.NewInMemory()
	s.users = userStore.NewInMemory()
	s.loans = loanStore.NewInMemory()
	// nil cache client: every read goes to the stores
	s.service = New(s.books, s.users, s.loans, nil)
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *ViewServiceSuite) seedBook(isbn string, copies int) *catalogmodels.Book {
	b, err := catalogmodels.NewBook(id.BookID(uuid.New()), "Title "+isbn, "Author", isbn, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.books.CreateIfISBNAvailable(s.ctx, b))
	if copies != 1 {
		_, err = s.books.Execute(s.ctx, b.ID,
			func(bk *catalogmodels.Book) error { return bk.CanResize(copies) },
			func(bk *catalogmodels.Book) { bk.ApplyResize(copies, s.now) },
		)
		s.Require().NoError(err)
	}
	return b
}

func (s *ViewServiceSuite) seedUser(username string) *membermodels.User {
	u, err := membermodels.NewUser(id.UserID(uuid.New()), username, username+"@example.com", "+1-555-"+username, id.RolePatron, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.users.CreateIfIdentityAvailable(s.ctx, u))
	return u
}

func (s *ViewServiceSuite) seedLoan(userID id.UserID, bookID id.BookID, loanedAt time.Time) *ledgermodels.Loan {
	loan := ledgermodels.NewLoan(id.LoanID(uuid.New()), bookID, userID, loanedAt)
	s.Require().NoError(s.loans.Create(s.ctx, loan))
	s.Require().NoError(s.books.ReserveCopy(s.ctx, bookID))
	return loan
}

func (s *ViewServiceSuite) TestBookDetail() {
	s.Run("derives lending activity from the ledger", func() {
		book := s.seedBook("isbn-view-1", 3)
		user := s.seedUser("views-reader")

		s.seedLoan(user.ID, book.ID, s.now)
		returned := s.seedLoan(user.ID, book.ID, s.now.Add(-30*24*time.Hour))
		_, err := s.loans.Execute(s.ctx, returned.ID,
			func(l *ledgermodels.Loan) error { return l.CanReturn() },
			func(l *ledgermodels.Loan) { l.ApplyReturn(s.now) },
		)
		s.Require().NoError(err)
		s.Require().NoError(s.books.ReleaseCopy(s.ctx, book.ID))

		detail, err := s.service.BookDetail(s.ctx, book.ID)
		s.Require().NoError(err)
		s.Equal(1, detail.CopiesOnLoan)
		s.Equal(1, detail.ActiveLoans)
		s.Equal(2, detail.TotalLoans)
		s.Equal(1, detail.CompletedLoans)
	})

	s.Run("fresh title has no activity", func() {
		book := s.seedBook("isbn-view-2", 1)

		detail, err := s.service.BookDetail(s.ctx, book.ID)
		s.Require().NoError(err)
		s.Equal(0, detail.CopiesOnLoan)
		s.Equal(0, detail.TotalLoans)
	})

	s.Run("unknown book is not found", func() {
		_, err := s.service.BookDetail(s.ctx, id.BookID(uuid.New()))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("nil ID is a bad request", func() {
		_, err := s.service.BookDetail(s.ctx, id.BookID{})
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *ViewServiceSuite) TestUserDetail() {
	s.Run("annotates open loans with fine previews", func() {
		user := s.seedUser("indebted")
		onTime := s.seedBook("isbn-user-1", 1)
		late := s.seedBook("isbn-user-2", 1)

		s.seedLoan(user.ID, onTime.ID, s.now)
		s.seedLoan(user.ID, late.ID, s.now.Add(-18*24*time.Hour))

		detail, err := s.service.UserDetail(s.ctx, user.ID)
		s.Require().NoError(err)
		s.Require().Len(detail.ActiveLoans, 2)

		// Oldest loan first.
		overdue := detail.ActiveLoans[0]
		s.True(overdue.Overdue)
		s.EqualValues(200, overdue.FineCents)
		s.Equal("Title isbn-user-2", overdue.BookTitle)

		current := detail.ActiveLoans[1]
		s.False(current.Overdue)
		s.EqualValues(0, current.FineCents)

		s.EqualValues(200, detail.PotentialFineCents)
		s.Equal("2.00", detail.PotentialFine)
	})

	s.Run("member with no loans has an empty slate", func() {
		user := s.seedUser("debtless")

		detail, err := s.service.UserDetail(s.ctx, user.ID)
		s.Require().NoError(err)
		s.Empty(detail.ActiveLoans)
		s.EqualValues(0, detail.PotentialFineCents)
		s.Equal("0.00", detail.PotentialFine)
	})

	s.Run("returned loans are excluded", func() {
		user := s.seedUser("cleared")
		book := s.seedBook("isbn-user-3", 1)
		loan := s.seedLoan(user.ID, book.ID, s.now)
		_, err := s.loans.Execute(s.ctx, loan.ID,
			func(l *ledgermodels.Loan) error { return l.CanReturn() },
			func(l *ledgermodels.Loan) { l.ApplyReturn(s.now) },
		)
		s.Require().NoError(err)

		detail, err := s.service.UserDetail(s.ctx, user.ID)
		s.Require().NoError(err)
		s.Empty(detail.ActiveLoans)
	})

	s.Run("unknown user is not found", func() {
		_, err := s.service.UserDetail(s.ctx, id.UserID(uuid.New()))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
