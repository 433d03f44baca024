package chat

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/abaanfida/unixora/internal/middleware"
	"github.com/abaanfida/unixora/internal/service/auth"
)

// WebSocketHandler pushes controller state over a live socket so the
// frontend can mirror the conversation without polling.
type WebSocketHandler struct {
	chat     *Handler
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates the live conversation handler.
func NewWebSocketHandler(chat *Handler) *WebSocketHandler {
	return &WebSocketHandler{
		chat: chat,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes registers the websocket route.
func (h *WebSocketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/chat/ws", h.handleSocket)
}

type inboundFrame struct {
	Type      string `json:"type"`
	Text      string `json:"text,omitempty"`
	SessionID int    `json:"sessionId,omitempty"`
}

type outboundFrame struct {
	Type      string `json:"type"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// conn serializes writes; gorilla permits one concurrent writer only.
type conn struct {
	ws      *websocket.Conn
	writeMu sync.Mutex
}

func (c *conn) send(frameType string, data any) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	frame := outboundFrame{Type: frameType, Data: data, Timestamp: time.Now().UnixMilli()}
	if err := c.ws.WriteJSON(frame); err != nil {
		log.Printf("[ws] write failed: %v", err)
	}
}

func (h *WebSocketHandler) handleSocket(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}
	defer ws.Close()

	c := &conn{ws: ws}
	log.Printf("[ws] connection opened for user=%s", identity.UserID)

	// Opening state so the client can render immediately.
	h.chat.ensureConversation(identity)
	h.sendState(c, identity)

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] read failed for user=%s: %v", identity.UserID, err)
			}
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.send("error", map[string]string{"message": "invalid frame"})
			continue
		}

		h.dispatch(r, c, identity, frame)
	}
}

func (h *WebSocketHandler) dispatch(r *http.Request, c *conn, identity auth.Identity, frame inboundFrame) {
	userID := identity.UserID

	switch frame.Type {
	case "submit":
		if h.chat.convSvc.Pending(userID) {
			c.send("dropped", map[string]string{"reason": "request already in flight"})
			return
		}
		c.send("pending", nil)
		// Run the turn off the read loop so a second submit can still be
		// answered with a dropped event while this one is pending.
		go func() {
			result := h.chat.convSvc.Submit(r.Context(), userID, frame.Text)
			if !result.Accepted {
				c.send("dropped", map[string]string{"reason": "empty or duplicate submission"})
				return
			}
			if result.Superseded {
				// The conversation was reset while the query was out; the
				// client already rendered the replacement state.
				return
			}
			c.send("user_message", newMessageView(result.UserMessage))
			c.send("bot_message", newMessageView(result.BotMessage))
			if result.BannerError != "" {
				c.send("banner_error", map[string]string{"message": result.BannerError})
			}
		}()

	case "new":
		messages := h.chat.convSvc.StartNew(userID, Greeting(identity))
		c.send("messages", newMessageViews(messages))
		h.sendHistory(c, userID)

	case "open":
		h.chat.convSvc.Load(userID, frame.SessionID)
		c.send("messages", newMessageViews(h.chat.histSvc.Active(userID)))

	case "delete":
		h.chat.convSvc.Delete(userID, frame.SessionID)
		c.send("messages", newMessageViews(h.chat.histSvc.Active(userID)))
		h.sendHistory(c, userID)

	case "dismiss_error":
		h.chat.convSvc.DismissError(userID)
		c.send("banner_error", map[string]string{"message": ""})

	default:
		c.send("error", map[string]string{"message": "unknown frame type"})
	}
}

func (h *WebSocketHandler) sendState(c *conn, identity auth.Identity) {
	userID := identity.UserID
	state := map[string]any{
		"messages":        newMessageViews(h.chat.histSvc.Active(userID)),
		"sessions":        newSessionViews(h.chat.histSvc.Sessions(userID)),
		"activeSessionId": h.chat.histSvc.ActiveSessionID(userID),
		"pending":         h.chat.convSvc.Pending(userID),
	}
	if banner := h.chat.convSvc.BannerError(userID); banner != "" {
		state["bannerError"] = banner
	}
	c.send("state", state)
}

func (h *WebSocketHandler) sendHistory(c *conn, userID string) {
	c.send("history", newSessionViews(h.chat.histSvc.Sessions(userID)))
}
