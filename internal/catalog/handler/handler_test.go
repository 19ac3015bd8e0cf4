package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	catalogservice "circ/internal/catalog/service"
	bookStore "circ/internal/catalog/store/book"
	jwttoken "circ/internal/jwt_token"
	"circ/pkg/audit"
	id "circ/pkg/domain"
	"circ/pkg/testutil"
)

const testSigningKey = "handler-test-signing-key"

func newCatalogRouter(t *testing.T) (http.Handler, *jwttoken.JWTService) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := catalogservice.New(bookStore.NewInMemory(), audit.NewRecorder(audit.NewInMemoryStore()))
	jwtSvc := jwttoken.NewJWTService(testSigningKey, "circ")

	r := chi.NewRouter()
	New(svc, jwtSvc, logger).Register(r)
	return r, jwtSvc
}

func librarianToken(t *testing.T, jwtSvc *jwttoken.JWTService) string {
	t.Helper()
	token, err := jwtSvc.GenerateAccessToken(id.UserID(uuid.New()), id.RoleLibrarian, time.Hour)
	if err != nil {
		t.Fatalf("failed to mint librarian token: %v", err)
	}
	return token
}

func patronToken(t *testing.T, jwtSvc *jwttoken.JWTService) string {
	t.Helper()
	token, err := jwtSvc.GenerateAccessToken(id.UserID(uuid.New()), id.RolePatron, time.Hour)
	if err != nil {
		t.Fatalf("failed to mint patron token: %v", err)
	}
	return token
}

func TestAddBookRequiresLibrarian(t *testing.T) {
	router, jwtSvc := newCatalogRouter(t)
	payload := map[string]string{"title": "T", "author": "A", "isbn": "isbn-1"}

	t.Run("missing token is unauthorized", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/books", payload)
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})

	t.Run("patron token is forbidden", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/books", payload)
		req.Header.Set("Authorization", "Bearer "+patronToken(t, jwtSvc))
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusForbidden)
	})

	t.Run("garbage token is unauthorized", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/books", payload)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})
}

func TestAddBook(t *testing.T) {
	router, jwtSvc := newCatalogRouter(t)
	token := librarianToken(t, jwtSvc)

	t.Run("creates a book with one copy", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/books", map[string]string{
			"title":  "The Left Hand of Darkness",
			"author": "Ursula K. Le Guin",
			"isbn":   "978-0441478125",
		})
		req.Header.Set("Authorization", "Bearer "+token)
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusCreated)

		resp := testutil.UnmarshalResponse[struct {
			ID              string `json:"id"`
			TotalCopies     int    `json:"total_copies"`
			AvailableCopies int    `json:"available_copies"`
		}](t, rr)
		if resp.ID == "" {
			t.Fatalf("expected book id in response")
		}
		if resp.TotalCopies != 1 || resp.AvailableCopies != 1 {
			t.Fatalf("expected a single available copy, got total=%d available=%d", resp.TotalCopies, resp.AvailableCopies)
		}
	})

	t.Run("blank title is a validation error", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/books", map[string]string{
			"title": "", "author": "A", "isbn": "isbn-2",
		})
		req.Header.Set("Authorization", "Bearer "+token)
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
		testutil.AssertErrorCode(t, rr, "validation")
	})

	t.Run("duplicate isbn is a conflict", func(t *testing.T) {
		payload := map[string]string{"title": "T", "author": "A", "isbn": "isbn-dup"}
		req := testutil.NewJSONRequest(t, http.MethodPost, "/books", payload)
		req.Header.Set("Authorization", "Bearer "+token)
		testutil.AssertStatus(t, testutil.DoRequest(router, req), http.StatusCreated)

		req = testutil.NewJSONRequest(t, http.MethodPost, "/books", payload)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusConflict)
		testutil.AssertErrorCode(t, rr, "conflict")
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/books", map[string]string{
			"title": "T", "author": "A", "isbn": "isbn-3", "copies": "9",
		})
		req.Header.Set("Authorization", "Bearer "+token)
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})
}

func TestResizeCopies(t *testing.T) {
	router, jwtSvc := newCatalogRouter(t)
	token := librarianToken(t, jwtSvc)

	createReq := testutil.NewJSONRequest(t, http.MethodPost, "/books", map[string]string{
		"title": "Resizable", "author": "A", "isbn": "isbn-resize",
	})
	createReq.Header.Set("Authorization", "Bearer "+token)
	createRR := testutil.DoRequest(router, createReq)
	testutil.AssertStatus(t, createRR, http.StatusCreated)
	created := testutil.UnmarshalResponse[struct {
		ID string `json:"id"`
	}](t, createRR)

	t.Run("updates the copy count", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPut, "/books/"+created.ID+"/copies", map[string]int{"total_copies": 4})
		req.Header.Set("Authorization", "Bearer "+token)
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusOK)

		resp := testutil.UnmarshalResponse[struct {
			TotalCopies int `json:"total_copies"`
		}](t, rr)
		if resp.TotalCopies != 4 {
			t.Fatalf("expected 4 total copies, got %d", resp.TotalCopies)
		}
	})

	t.Run("negative total is a validation error", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPut, "/books/"+created.ID+"/copies", map[string]int{"total_copies": -1})
		req.Header.Set("Authorization", "Bearer "+token)
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
		testutil.AssertErrorCode(t, rr, "validation")
	})

	t.Run("unknown book is a 404", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPut, "/books/"+uuid.NewString()+"/copies", map[string]int{"total_copies": 2})
		req.Header.Set("Authorization", "Bearer "+token)
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusNotFound)
	})

	t.Run("malformed book ID is a 400", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPut, "/books/not-a-uuid/copies", map[string]int{"total_copies": 2})
		req.Header.Set("Authorization", "Bearer "+token)
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})
}
