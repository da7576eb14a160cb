package stats

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/avikajoshi/portfolio/backend/internal/store/analytics"
	"github.com/avikajoshi/portfolio/backend/pkg/utils"
)

// StatsSource reports recorded analytics.
type StatsSource interface {
	Stats(ctx context.Context) (analytics.Stats, error)
}

// LiveCounter reports the number of open chat sessions.
type LiveCounter interface {
	Count() int
}

// Handler serves anonymous usage statistics.
type Handler struct {
	source StatsSource
	live   LiveCounter
	logger *slog.Logger
}

// New creates the stats handler. live may be nil.
func New(source StatsSource, live LiveCounter, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{source: source, live: live, logger: logger}
}

// RegisterRoutes mounts the stats route on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stats", h.handleStats)
}

type statsResponse struct {
	analytics.Stats
	LiveSessions int `json:"liveSessions"`
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	s, err := h.source.Stats(r.Context())
	if err != nil {
		h.logger.Error("failed to load stats", "error", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	resp := statsResponse{Stats: s}
	if h.live != nil {
		resp.LiveSessions = h.live.Count()
	}
	utils.RespondJSON(w, http.StatusOK, resp)
}
