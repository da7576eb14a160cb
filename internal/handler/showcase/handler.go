package showcase

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/avikajoshi/portfolio/backend/internal/animation/showcase"
	"github.com/avikajoshi/portfolio/backend/internal/model/project"
	"github.com/avikajoshi/portfolio/backend/pkg/utils"
)

// Handler serves the project catalog and the interactive showcase.
type Handler struct {
	projects      project.Store
	frameInterval time.Duration
	logger        *slog.Logger
	upgrader      websocket.Upgrader
}

// New creates the showcase handler. frameInterval paces the WebSocket frame loop.
func New(projects project.Store, frameInterval time.Duration, checkOrigin func(*http.Request) bool, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	if frameInterval <= 0 {
		frameInterval = showcase.FrameDuration
	}
	return &Handler{
		projects:      projects,
		frameInterval: frameInterval,
		logger:        logger.With("component", "showcase"),
		upgrader: websocket.Upgrader{
			CheckOrigin:     checkOrigin,
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// RegisterRoutes mounts the showcase routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/projects", h.handleList)
	r.Get("/projects/{id}", h.handleGet)
	r.Post("/showcase/pick", h.handlePick)
	r.Get("/showcase/ws", h.handleWebSocket)
}

type projectView struct {
	project.Project
	Hex string `json:"hex"`
}

func view(p project.Project) projectView {
	return projectView{Project: p, Hex: p.HexColor()}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	items := h.projects.List()
	views := make([]projectView, len(items))
	for i, p := range items {
		views[i] = view(p)
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"projects": views,
		"links":    project.Links(items),
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "project id must be a number")
		return
	}
	p, ok := h.projects.FindByID(id)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "project not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, view(p))
}

type pickRequest struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Click bool    `json:"click"`
}

type pickResponse struct {
	Hovered  int          `json:"hovered"`
	Selected int          `json:"selected"`
	Project  *projectView `json:"project,omitempty"`
}

// handlePick resolves a single pointer position against the scene at rest.
func (h *Handler) handlePick(w http.ResponseWriter, r *http.Request) {
	var req pickRequest
	if err := utils.DecodeJSON(r, &req, false); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.X < -1 || req.X > 1 || req.Y < -1 || req.Y > 1 {
		utils.RespondError(w, http.StatusBadRequest, "x and y must be normalized device coordinates in [-1, 1]")
		return
	}

	var resp pickResponse
	scene := showcase.NewScene(h.projects.List(), func(p *project.Project) {
		if p != nil {
			v := view(*p)
			resp.Project = &v
		}
	})
	resp.Hovered = scene.PointerMove(req.X, req.Y)
	if req.Click {
		resp.Selected = scene.Click(req.X, req.Y)
	}
	utils.RespondJSON(w, http.StatusOK, resp)
}

type inboundMessage struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	ID   int     `json:"id"`
}

type outgoingMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// handleWebSocket runs one scene per connection: pointer input in, frames and selections out.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	raw, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer raw.Close()
	conn := utils.NewWSConn(raw)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	scene := showcase.NewScene(h.projects.List(), func(p *project.Project) {
		var data any
		if p != nil {
			data = view(*p)
		}
		if err := conn.WriteJSON(outgoingMessage{Type: "select", Data: data}); err != nil {
			cancel()
		}
	})

	if err := conn.WriteJSON(outgoingMessage{Type: "frame", Data: scene.Snapshot()}); err != nil {
		return
	}

	go conn.PingLoop(ctx)
	go func() {
		defer cancel()
		err := scene.Run(ctx, h.frameInterval, func(f showcase.Frame) error {
			return conn.WriteJSON(outgoingMessage{Type: "frame", Data: f})
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			h.logger.Debug("showcase frame loop stopped", "error", err)
		}
	}()

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read error", "error", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(utils.WSPongWait))
		if ctx.Err() != nil {
			return
		}

		switch msg.Type {
		case "pointer":
			scene.PointerMove(msg.X, msg.Y)
		case "click":
			scene.Click(msg.X, msg.Y)
		case "toggle":
			scene.Toggle(msg.ID)
		default:
			conn.WriteJSON(outgoingMessage{Type: "error", Data: map[string]string{"message": "unsupported message type: " + msg.Type}})
		}
	}
}
