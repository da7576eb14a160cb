package hero

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/avikajoshi/portfolio/backend/internal/animation/hero"
	"github.com/avikajoshi/portfolio/backend/pkg/utils"
)

// defaultStreamInterval paces the SSE stream; clients interpolate between frames.
const defaultStreamInterval = 50 * time.Millisecond

// Handler serves the landing section animation.
type Handler struct {
	hero     hero.Hero
	interval time.Duration
	logger   *slog.Logger
}

// New creates the hero handler.
func New(h hero.Hero, interval time.Duration, logger *slog.Logger) *Handler {
	if interval <= 0 {
		interval = defaultStreamInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{hero: h, interval: interval, logger: logger.With("component", "hero")}
}

// RegisterRoutes mounts the hero routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/hero", h.handleContent)
	r.Get("/hero/frame", h.handleFrame)
	r.Get("/hero/stream", h.handleStream)
}

type counterView struct {
	hero.Counter
	DurationMs int64 `json:"durationMs"`
}

func (h *Handler) handleContent(w http.ResponseWriter, r *http.Request) {
	counters := make([]counterView, len(h.hero.Counters))
	for i, c := range h.hero.Counters {
		counters[i] = counterView{Counter: c, DurationMs: c.Duration.Milliseconds()}
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"texts":    h.hero.Texts,
		"counters": counters,
		"timing": map[string]int64{
			"typeMs":         hero.TypeDelay.Milliseconds(),
			"holdMs":         hero.HoldDelay.Milliseconds(),
			"deleteMs":       hero.DeleteDelay.Milliseconds(),
			"counterStartMs": hero.CounterStart.Milliseconds(),
			"counterTickMs":  hero.CounterTick.Milliseconds(),
		},
	})
}

// handleFrame returns the frame at ?at=<milliseconds>.
func (h *Handler) handleFrame(w http.ResponseWriter, r *http.Request) {
	at, err := strconv.ParseInt(r.URL.Query().Get("at"), 10, 64)
	if err != nil || at < 0 {
		utils.RespondError(w, http.StatusBadRequest, "at must be a non-negative number of milliseconds")
		return
	}
	utils.RespondJSON(w, http.StatusOK, h.hero.At(time.Duration(at)*time.Millisecond))
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	err := h.hero.Stream(r.Context(), h.interval, func(f hero.Frame) error {
		return utils.SendSSEEvent(w, flusher, "frame", f)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		h.logger.Debug("hero stream stopped", "error", err)
	}
}
