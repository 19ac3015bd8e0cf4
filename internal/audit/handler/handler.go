// Package handler exposes the audit trail to librarians. The trail is append
// only; this surface is strictly read.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"circ/internal/platform/middleware"
	"circ/internal/transport/http/shared"
	"circ/pkg/audit"
	id "circ/pkg/domain"
	dErrors "circ/pkg/domain-errors"
	"circ/pkg/requestcontext"
)

// Service defines the audit operations the handler needs.
type Service interface {
	Query(ctx context.Context, filter audit.Filter) ([]audit.Entry, error)
	GetByID(ctx context.Context, entryID id.EntryID) (*audit.Entry, error)
}

type Handler struct {
	logger    *slog.Logger
	trail     Service
	validator middleware.TokenValidator
}

func New(trail Service, validator middleware.TokenValidator, logger *slog.Logger) *Handler {
	return &Handler{
		logger:    logger,
		trail:     trail,
		validator: validator,
	}
}

// Register mounts the audit routes on the parent router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(h.validator, id.RoleLibrarian, h.logger))
		r.Get("/audit", h.handleQuery)
		r.Get("/audit/{entryID}", h.handleGetEntry)
	})
}

func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := filterFromQuery(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	entries, err := h.trail.Query(ctx, filter)
	if err != nil {
		h.logError(ctx, "failed to query audit trail", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

func (h *Handler) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entryID, err := id.ParseEntryID(chi.URLParam(r, "entryID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	entry, err := h.trail.GetByID(ctx, entryID)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logError(ctx, "failed to load audit entry", err)
		}
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, entry)
}

// filterFromQuery parses the optional conjunctive filters. All are ANDed; an
// unset parameter matches everything.
func filterFromQuery(r *http.Request) (audit.Filter, error) {
	q := r.URL.Query()
	filter := audit.Filter{
		EntityType: q.Get("entity_type"),
		EntityID:   q.Get("entity_id"),
	}

	if raw := q.Get("action"); raw != "" {
		action := audit.Action(raw)
		if !action.IsValid() {
			return audit.Filter{}, dErrors.New(dErrors.CodeValidation, "unknown audit action: "+raw)
		}
		filter.Action = action
	}
	if raw := q.Get("user_id"); raw != "" {
		userID, err := id.ParseUserID(raw)
		if err != nil {
			return audit.Filter{}, err
		}
		filter.UserID = &userID
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return audit.Filter{}, dErrors.New(dErrors.CodeValidation, "limit must be a non-negative integer")
		}
		filter.Limit = limit
	}
	return filter, nil
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	h.logger.ErrorContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err.Error(),
	)
}
