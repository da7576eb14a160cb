package chat

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	chatService "github.com/avikajoshi/portfolio/backend/internal/service/chat"
	"github.com/avikajoshi/portfolio/backend/pkg/utils"
)

type inboundMessage struct {
	Type   string `json:"type"`
	Text   string `json:"text,omitempty"`
	Label  string `json:"label,omitempty"`
	Action string `json:"action,omitempty"`
}

type outgoingMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId,omitempty"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// handleWebSocket carries the same conversation as the REST routes over one socket:
// inbound text, quick replies, actions and open/close; outbound every state update.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

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

	raw, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "session", sessionID, "error", err)
		return
	}
	defer raw.Close()
	conn := utils.NewWSConn(raw)

	h.logger.Info("websocket connected", "session", sessionID)

	ctx, stop := context.WithCancel(r.Context())
	defer stop()

	go conn.PingLoop(ctx)
	go h.forwardUpdates(ctx, stop, conn, sessionID, updates)

	h.sendResult(conn, sessionID, chatService.Update{Kind: chatService.UpdateState, State: state})

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read error", "session", sessionID, "error", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(utils.WSPongWait))

		if ctx.Err() != nil {
			return
		}
		h.handleMessage(ctx, conn, sessionID, msg)
	}
}

func (h *Handler) forwardUpdates(ctx context.Context, stop context.CancelFunc, conn *utils.WSConn, sessionID string, updates <-chan chatService.Update) {
	defer stop()
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"),
					time.Now().Add(time.Second))
				conn.Close()
				return
			}
			if err := h.sendResult(conn, sessionID, u); err != nil {
				return
			}
		}
	}
}

func (h *Handler) handleMessage(ctx context.Context, conn *utils.WSConn, sessionID string, msg inboundMessage) {
	var err error
	switch msg.Type {
	case "text":
		_, err = h.chatSvc.Submit(ctx, sessionID, msg.Text)
	case "quick_reply":
		_, err = h.chatSvc.Submit(ctx, sessionID, msg.Label)
	case "open":
		_, err = h.chatSvc.Open(ctx, sessionID)
	case "close":
		_, err = h.chatSvc.Close(ctx, sessionID)
	case "action":
		if h.actions == nil {
			h.sendError(conn, "actions unavailable")
			return
		}
		h.send(conn, outgoingMessage{Type: "effect", SessionID: sessionID, Data: h.actions.Resolve(msg.Action)})
		return
	default:
		h.sendError(conn, "unsupported message type: "+msg.Type)
		return
	}
	if err != nil {
		h.sendError(conn, err.Error())
	}
}

func (h *Handler) sendResult(conn *utils.WSConn, sessionID string, u chatService.Update) error {
	return h.send(conn, outgoingMessage{Type: "result", SessionID: sessionID, Data: u})
}

func (h *Handler) sendError(conn *utils.WSConn, message string) {
	h.send(conn, outgoingMessage{Type: "error", Data: map[string]string{"message": message}})
}

func (h *Handler) send(conn *utils.WSConn, msg outgoingMessage) error {
	msg.Timestamp = time.Now().Unix()
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.Debug("websocket write failed", "error", err)
		return err
	}
	return nil
}
