package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"circ/internal/ledger/models"
	"circ/internal/transport/http/shared"
	id "circ/pkg/domain"
	dErrors "circ/pkg/domain-errors"
	"circ/pkg/requestcontext"
)

// Service defines the ledger operations the handler needs.
type Service interface {
	CreateLoan(ctx context.Context, userID id.UserID, bookID id.BookID) (*models.Loan, error)
	ReturnLoan(ctx context.Context, loanID id.LoanID) (*models.Loan, error)
	GetLoanDetail(ctx context.Context, loanID id.LoanID) (*models.LoanDetail, error)
	ListOverdue(ctx context.Context) ([]models.OverdueLoan, error)
}

type Handler struct {
	logger *slog.Logger
	ledger Service
}

func New(ledger Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger: logger,
		ledger: ledger,
	}
}

// Register mounts the ledger routes on the parent router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/loans", h.handleCreateLoan)
	r.Post("/loans/{loanID}/return", h.handleReturnLoan)
	r.Get("/loans/overdue", h.handleListOverdue)
	r.Get("/loans/{loanID}", h.handleGetLoan)
}

type createLoanRequest struct {
	UserID string `json:"user_id"`
	BookID string `json:"book_id"`
}

func (h *Handler) handleCreateLoan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createLoanRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	userID, err := id.ParseUserID(req.UserID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	bookID, err := id.ParseBookID(req.BookID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	loan, err := h.ledger.CreateLoan(ctx, userID, bookID)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logError(ctx, "failed to create loan", err)
		}
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, loan)
}

func (h *Handler) handleReturnLoan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	loanID, err := id.ParseLoanID(chi.URLParam(r, "loanID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	loan, err := h.ledger.ReturnLoan(ctx, loanID)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logError(ctx, "failed to return loan", err)
		}
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, loan)
}

func (h *Handler) handleGetLoan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	loanID, err := id.ParseLoanID(chi.URLParam(r, "loanID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	detail, err := h.ledger.GetLoanDetail(ctx, loanID)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logError(ctx, "failed to get loan", err)
		}
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, detail)
}

func (h *Handler) handleListOverdue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	overdue, err := h.ledger.ListOverdue(ctx)
	if err != nil {
		h.logError(ctx, "failed to list overdue loans", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"overdue": overdue,
		"count":   len(overdue),
	})
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	h.logger.ErrorContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err.Error(),
	)
}
