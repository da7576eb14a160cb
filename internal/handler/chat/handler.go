package chat

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/avikajoshi/portfolio/backend/internal/model/chat"
	"github.com/avikajoshi/portfolio/backend/internal/service/action"
	chatService "github.com/avikajoshi/portfolio/backend/internal/service/chat"
	"github.com/avikajoshi/portfolio/backend/internal/service/transcript"
	"github.com/avikajoshi/portfolio/backend/internal/store/analytics"
	"github.com/avikajoshi/portfolio/backend/pkg/utils"
)

// heartbeatInterval keeps idle SSE connections open through proxies.
const heartbeatInterval = 15 * time.Second

// Options configures the chat handler.
type Options struct {
	// HashSalt salts the anonymized visitor key recorded with analytics.
	HashSalt string
	// CheckOrigin vets WebSocket upgrades; nil accepts every origin.
	CheckOrigin func(r *http.Request) bool
	Logger      *slog.Logger
}

// Handler serves the chat assistant over REST, SSE and WebSocket.
type Handler struct {
	chatSvc  *chatService.Service
	actions  *action.Resolver
	salt     string
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// New creates the chat handler.
func New(chatSvc *chatService.Service, actions *action.Resolver, opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	checkOrigin := opts.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}

	return &Handler{
		chatSvc: chatSvc,
		actions: actions,
		salt:    opts.HashSalt,
		logger:  logger.With("component", "chat-handler"),
		upgrader: websocket.Upgrader{
			CheckOrigin:     checkOrigin,
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the chat routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreateSession)
	r.Route("/session/{sessionID}", func(r chi.Router) {
		r.Get("/", h.handleGetState)
		r.Delete("/", h.handleDeleteSession)
		r.Post("/open", h.handleOpen)
		r.Post("/close", h.handleClose)
		r.Post("/messages", h.handleSubmit)
		r.Post("/quick-reply", h.handleQuickReply)
		r.Get("/events", h.handleEvents)
		r.Get("/ws", h.handleWebSocket)
		r.Get("/export", h.handleExport)
	})
}

type sessionResponse struct {
	Session chat.Session `json:"session"`
	State   chat.State   `json:"state"`
}

// handleCreateSession resumes the session named by the cookie or header, or starts a new one.
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if id := sessionFromRequest(r); id != "" {
		if session, err := h.chatSvc.GetSession(r.Context(), id); err == nil {
			if state, err := h.chatSvc.State(r.Context(), id); err == nil {
				w.Header().Set(SessionHeader, session.ID)
				utils.RespondJSON(w, http.StatusOK, sessionResponse{Session: session, State: state})
				return
			}
		}
	}

	visitor := analytics.HashVisitor(h.salt, clientAddr(r))
	session, state, err := h.chatSvc.CreateSession(r.Context(), visitor)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	setSessionCookie(w, r, session.ID)
	w.Header().Set(SessionHeader, session.ID)
	utils.RespondJSON(w, http.StatusCreated, sessionResponse{Session: session, State: state})
}

func (h *Handler) handleGetState(w http.ResponseWriter, r *http.Request) {
	state, err := h.chatSvc.State(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, state)
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.chatSvc.Delete(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		h.respondServiceError(w, err)
		return
	}
	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleOpen(w http.ResponseWriter, r *http.Request) {
	state, err := h.chatSvc.Open(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, state)
}

func (h *Handler) handleClose(w http.ResponseWriter, r *http.Request) {
	state, err := h.chatSvc.Close(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, state)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := utils.DecodeJSON(r, &payload, false); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.submit(w, r, payload.Text)
}

// handleQuickReply sends a quick reply label exactly as if the visitor had typed it.
func (h *Handler) handleQuickReply(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Label string `json:"label"`
	}
	if err := utils.DecodeJSON(r, &payload, false); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.submit(w, r, payload.Label)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request, text string) {
	state, err := h.chatSvc.Submit(r.Context(), chi.URLParam(r, "sessionID"), text)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusAccepted, state)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	text, err := h.chatSvc.Export(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", transcript.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+transcript.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(text)); err != nil {
		h.logger.Warn("export write failed", "error", err)
	}
}

// handleEvents streams state updates as Server-Sent Events until the client leaves or the
// session ends.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	updates, cancel, err := h.chatSvc.Subscribe(sessionID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	defer cancel()

	state, err := h.chatSvc.State(r.Context(), sessionID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)
	if err := utils.SendSSEEvent(w, flusher, string(chatService.UpdateState), chatService.Update{Kind: chatService.UpdateState, State: state}); err != nil {
		return
	}

	h.logger.Debug("sse stream opened", "session", sessionID)
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.logger.Debug("sse stream closed by client", "session", sessionID)
			return
		case t := <-ticker.C:
			if err := utils.SendSSEEvent(w, flusher, "heartbeat", map[string]string{"time": t.UTC().Format(time.RFC3339)}); err != nil {
				return
			}
		case u, ok := <-updates:
			if !ok {
				return
			}
			if err := utils.SendSSEEvent(w, flusher, string(u.Kind), u); err != nil {
				return
			}
			if u.Kind == chatService.UpdateEnded {
				return
			}
		}
	}
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("chat request failed", "error", err)
	}
	utils.RespondError(w, status, err.Error())
}

// StatusFor maps chat errors to HTTP statuses.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, chatService.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, chat.ErrResponding):
		return http.StatusConflict
	case errors.Is(err, chat.ErrEmptyMessage):
		return http.StatusBadRequest
	case errors.Is(err, chatService.ErrServiceClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// clientAddr returns the client IP without port. chi's RealIP middleware has already
// rewritten RemoteAddr from proxy headers.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
