// Package handler exposes the catalog's HTTP surface. Reads are public;
// mutations require a librarian token.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"

	"circ/internal/catalog/models"
	"circ/internal/platform/middleware"
	"circ/internal/transport/http/shared"
	id "circ/pkg/domain"
	dErrors "circ/pkg/domain-errors"
	"circ/pkg/requestcontext"
)

// Service defines the catalog operations the handler needs.
type Service interface {
	AddBook(ctx context.Context, title, author, isbn string) (*models.Book, error)
	ResizeCopies(ctx context.Context, bookID id.BookID, newTotal int) (*models.Book, error)
}

type Handler struct {
	logger    *slog.Logger
	catalog   Service
	validator middleware.TokenValidator
}

func New(catalog Service, validator middleware.TokenValidator, logger *slog.Logger) *Handler {
	return &Handler{
		logger:    logger,
		catalog:   catalog,
		validator: validator,
	}
}

// Register mounts the catalog's mutation routes on the parent router. Book
// reads are served by the views façade.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(h.validator, id.RoleLibrarian, h.logger))
		r.Post("/books", h.handleAddBook)
		r.Put("/books/{bookID}/copies", h.handleResizeCopies)
	})
}

type addBookRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	ISBN   string `json:"isbn"`
}

func (h *Handler) handleAddBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req addBookRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := validateAddBookRequest(req); err != nil {
		shared.WriteError(w, err)
		return
	}

	book, err := h.catalog.AddBook(ctx, req.Title, req.Author, req.ISBN)
	if err != nil {
		h.logError(ctx, "failed to add book", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, book)
}

type resizeCopiesRequest struct {
	TotalCopies int `json:"total_copies"`
}

func (h *Handler) handleResizeCopies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	bookID, err := id.ParseBookID(chi.URLParam(r, "bookID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req resizeCopiesRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	book, err := h.catalog.ResizeCopies(ctx, bookID, req.TotalCopies)
	if err != nil {
		h.logError(ctx, "failed to resize copies", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, book)
}

func validateAddBookRequest(req addBookRequest) error {
	if !govalidator.StringLength(req.Title, "1", "512") {
		return dErrors.New(dErrors.CodeValidation, "title is required and must be 512 characters or less")
	}
	if !govalidator.StringLength(req.Author, "1", "256") {
		return dErrors.New(dErrors.CodeValidation, "author is required and must be 256 characters or less")
	}
	if !govalidator.StringLength(req.ISBN, "1", "32") {
		return dErrors.New(dErrors.CodeValidation, "isbn is required")
	}
	return nil
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	h.logger.ErrorContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err.Error(),
	)
}
