package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	catalogmodels "circ/internal/catalog/models"
	bookStore "circ/internal/catalog/store/book"
	ledgerservice "circ/internal/ledger/service"
	loanStore "circ/internal/ledger/store/loan"
	membermodels "circ/internal/membership/models"
	userStore "circ/internal/membership/store/user"
	"circ/pkg/audit"
	id "circ/pkg/domain"
	"circ/pkg/testutil"
)

type ledgerFixture struct {
	router http.Handler
	books  *bookStore.InMemory
	users  *userStore.InMemory
	now    time.Time
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	books := bookStore.NewInMemory()
	users := userStore.NewInMemory()
	svc := ledgerservice.New(loanStore.NewInMemory(), books, users, audit.NewRecorder(audit.NewInMemoryStore()))

	r := chi.NewRouter()
	New(svc, logger).Register(r)
	return &ledgerFixture{
		router: r,
		books:  books,
		users:  users,
		now:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *ledgerFixture) seedUser(t *testing.T, username string) *membermodels.User {
	t.Helper()
	u, err := membermodels.NewUser(id.UserID(uuid.New()), username, username+"@example.com", "+1-555-"+username, id.RolePatron, f.now)
	if err != nil {
		t.Fatalf("failed to build user: %v", err)
	}
	if err := f.users.CreateIfIdentityAvailable(testutil.ContextAt(f.now), u); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return u
}

func (f *ledgerFixture) seedBook(t *testing.T, isbn string) *catalogmodels.Book {
	t.Helper()
	b, err := catalogmodels.NewBook(id.BookID(uuid.New()), "Title "+isbn, "Author", isbn, f.now)
	if err != nil {
		t.Fatalf("failed to build book: %v", err)
	}
	if err := f.books.CreateIfISBNAvailable(testutil.ContextAt(f.now), b); err != nil {
		t.Fatalf("failed to seed book: %v", err)
	}
	return b
}

func (f *ledgerFixture) checkout(t *testing.T, userID, bookID string) string {
	t.Helper()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/loans", map[string]string{
		"user_id": userID,
		"book_id": bookID,
	})
	req = testutil.WithFrozenTime(req, f.now)
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusCreated)
	resp := testutil.UnmarshalResponse[struct {
		ID string `json:"id"`
	}](t, rr)
	return resp.ID
}

func TestCreateLoanHandler(t *testing.T) {
	f := newLedgerFixture(t)

	t.Run("checks out a copy", func(t *testing.T) {
		user := f.seedUser(t, "borrower")
		book := f.seedBook(t, "isbn-h1")

		req := testutil.NewJSONRequest(t, http.MethodPost, "/loans", map[string]string{
			"user_id": user.ID.String(),
			"book_id": book.ID.String(),
		})
		req = testutil.WithFrozenTime(req, f.now)
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatus(t, rr, http.StatusCreated)

		resp := testutil.UnmarshalResponse[struct {
			ID    string    `json:"id"`
			DueAt time.Time `json:"due_at"`
		}](t, rr)
		if resp.ID == "" {
			t.Fatalf("expected loan id in response")
		}
		if !resp.DueAt.Equal(f.now.Add(14 * 24 * time.Hour)) {
			t.Fatalf("expected due date two weeks out, got %v", resp.DueAt)
		}
	})

	t.Run("malformed user ID is a 400", func(t *testing.T) {
		book := f.seedBook(t, "isbn-h2")
		req := testutil.NewJSONRequest(t, http.MethodPost, "/loans", map[string]string{
			"user_id": "nope",
			"book_id": book.ID.String(),
		})
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("unknown user is a 404", func(t *testing.T) {
		book := f.seedBook(t, "isbn-h3")
		req := testutil.NewJSONRequest(t, http.MethodPost, "/loans", map[string]string{
			"user_id": uuid.NewString(),
			"book_id": book.ID.String(),
		})
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatus(t, rr, http.StatusNotFound)
	})

	t.Run("exhausted copies is a 400 with a typed code", func(t *testing.T) {
		first := f.seedUser(t, "first")
		second := f.seedUser(t, "second")
		book := f.seedBook(t, "isbn-h4")

		f.checkout(t, first.ID.String(), book.ID.String())

		req := testutil.NewJSONRequest(t, http.MethodPost, "/loans", map[string]string{
			"user_id": second.ID.String(),
			"book_id": book.ID.String(),
		})
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
		testutil.AssertErrorCode(t, rr, "no_copies_available")
	})
}

func TestReturnLoanHandler(t *testing.T) {
	f := newLedgerFixture(t)
	user := f.seedUser(t, "returner")
	book := f.seedBook(t, "isbn-r1")
	loanID := f.checkout(t, user.ID.String(), book.ID.String())

	t.Run("closes the loan", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodPost, "/loans/"+loanID+"/return")
		req = testutil.WithFrozenTime(req, f.now.Add(20*24*time.Hour))
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatus(t, rr, http.StatusOK)

		resp := testutil.UnmarshalResponse[struct {
			ReturnedAt *time.Time `json:"returned_at"`
			FineCents  *int64     `json:"fine_cents"`
		}](t, rr)
		if resp.ReturnedAt == nil {
			t.Fatalf("expected returned_at to be set")
		}
		// 6 days past due at 50 cents per day.
		if resp.FineCents == nil || *resp.FineCents != 300 {
			t.Fatalf("expected a 300 cent fine, got %v", resp.FineCents)
		}
	})

	t.Run("second return is a typed rejection", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodPost, "/loans/"+loanID+"/return")
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
		testutil.AssertErrorCode(t, rr, "already_returned")
	})

	t.Run("unknown loan is a 404", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodPost, "/loans/"+uuid.NewString()+"/return")
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatus(t, rr, http.StatusNotFound)
	})
}

func TestGetLoanHandler(t *testing.T) {
	f := newLedgerFixture(t)
	user := f.seedUser(t, "viewer")
	book := f.seedBook(t, "isbn-g1")
	loanID := f.checkout(t, user.ID.String(), book.ID.String())

	t.Run("returns the loan with joined sub-objects", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/loans/"+loanID)
		req = testutil.WithFrozenTime(req, f.now)
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatus(t, rr, http.StatusOK)

		resp := testutil.UnmarshalResponse[struct {
			Book *struct {
				Title string `json:"title"`
			} `json:"book"`
			Borrower *struct {
				Username string `json:"username"`
			} `json:"borrower"`
			Overdue bool   `json:"overdue"`
			Fine    string `json:"fine"`
		}](t, rr)
		if resp.Book == nil || resp.Book.Title != book.Title {
			t.Fatalf("expected book title %q, got %+v", book.Title, resp.Book)
		}
		if resp.Borrower == nil || resp.Borrower.Username != user.Username {
			t.Fatalf("expected borrower %q, got %+v", user.Username, resp.Borrower)
		}
		if resp.Overdue {
			t.Fatalf("expected loan not to be overdue yet")
		}
		if resp.Fine != "0.00" {
			t.Fatalf("expected zero fine, got %q", resp.Fine)
		}
	})

	t.Run("unknown loan is a 404", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/loans/"+uuid.NewString())
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatus(t, rr, http.StatusNotFound)
	})
}

func TestListOverdueHandler(t *testing.T) {
	f := newLedgerFixture(t)
	user := f.seedUser(t, "procrastinator")
	book := f.seedBook(t, "isbn-o1")
	f.checkout(t, user.ID.String(), book.ID.String())

	t.Run("empty before anything falls due", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/loans/overdue")
		req = testutil.WithFrozenTime(req, f.now)
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatus(t, rr, http.StatusOK)

		resp := testutil.UnmarshalResponse[struct {
			Count int `json:"count"`
		}](t, rr)
		if resp.Count != 0 {
			t.Fatalf("expected no overdue loans, got %d", resp.Count)
		}
	})

	t.Run("reports overdue loans with accrued fines", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/loans/overdue")
		req = testutil.WithFrozenTime(req, f.now.Add(17*24*time.Hour))
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatus(t, rr, http.StatusOK)

		resp := testutil.UnmarshalResponse[struct {
			Count   int `json:"count"`
			Overdue []struct {
				DaysOverdue int64  `json:"days_overdue"`
				Fine        string `json:"fine"`
			} `json:"overdue"`
		}](t, rr)
		if resp.Count != 1 {
			t.Fatalf("expected one overdue loan, got %d", resp.Count)
		}
		if resp.Overdue[0].DaysOverdue != 3 {
			t.Fatalf("expected 3 days overdue, got %d", resp.Overdue[0].DaysOverdue)
		}
		if resp.Overdue[0].Fine != "1.50" {
			t.Fatalf("expected an accrued fine of 1.50, got %q", resp.Overdue[0].Fine)
		}
	})
}
