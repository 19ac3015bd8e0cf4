package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"

	"circ/internal/membership/models"
	"circ/internal/transport/http/shared"
	id "circ/pkg/domain"
	dErrors "circ/pkg/domain-errors"
	"circ/pkg/requestcontext"
)

// Service defines the membership operations the handler needs.
type Service interface {
	RegisterUser(ctx context.Context, username, email, phone string, role id.Role) (*models.User, error)
}

type Handler struct {
	logger     *slog.Logger
	membership Service
}

func New(membership Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:     logger,
		membership: membership,
	}
}

// Register mounts the membership routes on the parent router. User reads are
// served by the views façade.
func (h *Handler) Register(r chi.Router) {
	r.Post("/users", h.handleRegisterUser)
}

type registerUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

func (h *Handler) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerUserRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := validateRegisterUserRequest(req); err != nil {
		shared.WriteError(w, err)
		return
	}

	role, err := id.ParseRole(req.Role)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "role must be patron or librarian"))
		return
	}

	user, err := h.membership.RegisterUser(ctx, req.Username, req.Email, req.Phone, role)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logError(ctx, "failed to register user", err)
		}
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, user)
}

func validateRegisterUserRequest(req registerUserRequest) error {
	if !govalidator.StringLength(req.Username, "1", "64") {
		return dErrors.New(dErrors.CodeValidation, "username is required and must be 64 characters or less")
	}
	if !govalidator.IsEmail(req.Email) {
		return dErrors.New(dErrors.CodeValidation, "a valid email is required")
	}
	if !govalidator.StringLength(req.Phone, "1", "32") {
		return dErrors.New(dErrors.CodeValidation, "phone is required")
	}
	return nil
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	h.logger.ErrorContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err.Error(),
	)
}
