// Package health serves the service banner and the health report: backing
// store connectivity plus headline statistics.
package health

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	platformredis "circ/internal/platform/redis"
	"circ/internal/transport/http/shared"
	"circ/pkg/requestcontext"
)

// Counter reports one headline statistic.
type Counter func(ctx context.Context) (int, error)

type Handler struct {
	logger      *slog.Logger
	db          *sql.DB
	redis       *platformredis.Client
	countBooks  Counter
	countUsers  Counter
	activeLoans Counter
}

func New(db *sql.DB, redis *platformredis.Client, books, users, loans Counter, logger *slog.Logger) *Handler {
	return &Handler{
		logger:      logger,
		db:          db,
		redis:       redis,
		countBooks:  books,
		countUsers:  users,
		activeLoans: loans,
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.handleBanner)
	r.Get("/health", h.handleHealth)
}

func (h *Handler) handleBanner(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, http.StatusOK, map[string]string{
		"service": "circ",
		"message": "library circulation ledger",
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := http.StatusOK
	report := map[string]any{
		"status":    "ok",
		"timestamp": requestcontext.Now(ctx).UTC().Format(time.RFC3339),
	}

	report["database"] = h.databaseStatus(ctx)
	if report["database"] == "error" {
		report["status"] = "degraded"
		status = http.StatusServiceUnavailable
	}

	if h.redis != nil {
		if err := h.redis.Health(ctx); err != nil {
			report["redis"] = "error"
			report["status"] = "degraded"
		} else {
			report["redis"] = "ok"
		}
	} else {
		report["redis"] = "disabled"
	}

	stats := map[string]any{}
	for name, count := range map[string]Counter{
		"books":        h.countBooks,
		"users":        h.countUsers,
		"active_loans": h.activeLoans,
	} {
		if count == nil {
			continue
		}
		n, err := count(ctx)
		if err != nil {
			h.logger.WarnContext(ctx, "health statistic unavailable", "statistic", name, "error", err.Error())
			continue
		}
		stats[name] = n
	}
	report["statistics"] = stats

	shared.WriteJSON(w, status, report)
}

func (h *Handler) databaseStatus(ctx context.Context) string {
	if h.db == nil {
		return "memory"
	}
	if err := h.db.PingContext(ctx); err != nil {
		return "error"
	}
	return "ok"
}
