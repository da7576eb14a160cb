package action

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/avikajoshi/portfolio/backend/internal/service/action"
	"github.com/avikajoshi/portfolio/backend/pkg/utils"
)

// Handler resolves assistant action buttons.
type Handler struct {
	actions *action.Resolver
}

// New creates the action handler.
func New(actions *action.Resolver) *Handler {
	return &Handler{actions: actions}
}

// RegisterRoutes mounts the action route on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/actions/{actionID}", h.handleResolve)
}

// handleResolve always answers 200; unknown ids carry the coming-soon notice.
func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.actions.Resolve(chi.URLParam(r, "actionID")))
}
