package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"circ/internal/transport/http/shared"
	"circ/internal/views/models"
	id "circ/pkg/domain"
	dErrors "circ/pkg/domain-errors"
	"circ/pkg/requestcontext"
)

// Service defines the view operations the handler needs.
type Service interface {
	BookDetail(ctx context.Context, bookID id.BookID) (*models.BookDetail, error)
	UserDetail(ctx context.Context, userID id.UserID) (*models.UserDetail, error)
}

type Handler struct {
	logger *slog.Logger
	views  Service
}

func New(views Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger: logger,
		views:  views,
	}
}

// Register mounts the read façade on the parent router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/books/{bookID}", h.handleBookDetail)
	r.Get("/users/{userID}", h.handleUserDetail)
}

func (h *Handler) handleBookDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	bookID, err := id.ParseBookID(chi.URLParam(r, "bookID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	detail, err := h.views.BookDetail(ctx, bookID)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logError(ctx, "failed to build book detail", err)
		}
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, detail)
}

func (h *Handler) handleUserDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	detail, err := h.views.UserDetail(ctx, userID)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logError(ctx, "failed to build user detail", err)
		}
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, detail)
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	h.logger.ErrorContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err.Error(),
	)
}
