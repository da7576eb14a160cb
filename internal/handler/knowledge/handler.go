package knowledge

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/avikajoshi/portfolio/backend/internal/model/knowledge"
	"github.com/avikajoshi/portfolio/backend/pkg/utils"
)

// Handler exposes the read-only knowledge base.
type Handler struct {
	kb knowledge.Store
}

// New creates the knowledge handler.
func New(kb knowledge.Store) *Handler {
	return &Handler{kb: kb}
}

// RegisterRoutes mounts the knowledge routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/knowledge", h.handleIndex)
	r.Get("/knowledge/{topic}", h.handleTopic)
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	out := make(map[string]any)
	for _, name := range h.kb.Topics() {
		if v, ok := h.kb.Topic(name); ok {
			out[name] = v
		}
	}
	utils.RespondJSON(w, http.StatusOK, out)
}

func (h *Handler) handleTopic(w http.ResponseWriter, r *http.Request) {
	topic := chi.URLParam(r, "topic")
	v, ok := h.kb.Topic(topic)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "unknown topic: "+topic)
		return
	}
	utils.RespondJSON(w, http.StatusOK, v)
}
