// Package chat exposes the conversation controller and session history
// over HTTP, for callers that have passed the auth middleware.
package chat

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/abaanfida/unixora/internal/markdown"
	"github.com/abaanfida/unixora/internal/middleware"
	chatmodel "github.com/abaanfida/unixora/internal/model/chat"
	"github.com/abaanfida/unixora/internal/service/auth"
	"github.com/abaanfida/unixora/internal/service/conversation"
	"github.com/abaanfida/unixora/internal/service/history"
	"github.com/abaanfida/unixora/pkg/utils"
)

// Handler serves the chat endpoints.
type Handler struct {
	convSvc *conversation.Service
	histSvc *history.Service
}

// New creates the chat handler.
func New(convSvc *conversation.Service, histSvc *history.Service) *Handler {
	return &Handler{convSvc: convSvc, histSvc: histSvc}
}

// RegisterRoutes registers the chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat/messages", h.handleSubmit)
	r.Post("/chat/new", h.handleNewChat)
	r.Get("/chat/state", h.handleState)
	r.Get("/chat/history", h.handleHistory)
	r.Post("/chat/history/{sessionID}/open", h.handleOpen)
	r.Delete("/chat/history/{sessionID}", h.handleDelete)
	r.Post("/chat/error/dismiss", h.handleDismissError)
}

// messageView decorates a message for rendering: bot text is run through
// the markdown formatter and citation text is capped for display.
type messageView struct {
	chatmodel.Message
	HTML string `json:"html,omitempty"`
}

func newMessageView(msg chatmodel.Message) messageView {
	view := messageView{Message: msg}
	if len(msg.Sources) > 0 {
		sources := make([]chatmodel.Source, len(msg.Sources))
		for i, src := range msg.Sources {
			src.Text = src.Display()
			sources[i] = src
		}
		view.Sources = sources
	}
	if msg.Type == chatmodel.TypeBot {
		view.HTML = markdown.Render(msg.Text)
	}
	return view
}

func newMessageViews(messages []chatmodel.Message) []messageView {
	views := make([]messageView, len(messages))
	for i, msg := range messages {
		views[i] = newMessageView(msg)
	}
	return views
}

// sessionView is the sidebar summary of a stored session.
type sessionView struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Timestamp string `json:"timestamp"`
}

func newSessionViews(sessions []chatmodel.Session) []sessionView {
	views := make([]sessionView, len(sessions))
	for i, session := range sessions {
		views[i] = sessionView{ID: session.ID, Title: session.Title, Timestamp: session.Timestamp}
	}
	return views
}

// ensureConversation seeds the greeting on a user's first visit so the
// opening session snapshot includes it.
func (h *Handler) ensureConversation(identity auth.Identity) {
	if len(h.histSvc.Active(identity.UserID)) == 0 {
		h.convSvc.StartNew(identity.UserID, Greeting(identity))
	}
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.RespondMessage(w, http.StatusUnauthorized, "No token provided.")
		return
	}
	h.ensureConversation(identity)

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result := h.convSvc.Submit(r.Context(), identity.UserID, payload.Text)

	response := map[string]any{
		"accepted": result.Accepted,
	}
	if result.Accepted && !result.Superseded {
		response["userMessage"] = newMessageView(result.UserMessage)
		response["botMessage"] = newMessageView(result.BotMessage)
	}
	if result.BannerError != "" {
		response["bannerError"] = result.BannerError
	}
	utils.RespondJSON(w, http.StatusOK, response)
}

func (h *Handler) handleNewChat(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.RespondMessage(w, http.StatusUnauthorized, "No token provided.")
		return
	}

	messages := h.convSvc.StartNew(identity.UserID, Greeting(identity))
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"messages": newMessageViews(messages),
	})
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.RespondMessage(w, http.StatusUnauthorized, "No token provided.")
		return
	}
	h.ensureConversation(identity)
	h.respondState(w, identity.UserID)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.RespondMessage(w, http.StatusUnauthorized, "No token provided.")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"sessions": newSessionViews(h.histSvc.Sessions(identity.UserID)),
	})
}

func (h *Handler) handleOpen(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.RespondMessage(w, http.StatusUnauthorized, "No token provided.")
		return
	}

	sessionID, err := strconv.Atoi(chi.URLParam(r, "sessionID"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	// An unknown id is a silent no-op; the current state comes back
	// either way.
	h.convSvc.Load(identity.UserID, sessionID)
	h.respondState(w, identity.UserID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.RespondMessage(w, http.StatusUnauthorized, "No token provided.")
		return
	}

	sessionID, err := strconv.Atoi(chi.URLParam(r, "sessionID"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	h.convSvc.Delete(identity.UserID, sessionID)
	h.respondState(w, identity.UserID)
}

func (h *Handler) handleDismissError(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		utils.RespondMessage(w, http.StatusUnauthorized, "No token provided.")
		return
	}

	h.convSvc.DismissError(identity.UserID)
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "dismissed"})
}

func (h *Handler) respondState(w http.ResponseWriter, userID string) {
	response := map[string]any{
		"messages":        newMessageViews(h.histSvc.Active(userID)),
		"sessions":        newSessionViews(h.histSvc.Sessions(userID)),
		"activeSessionId": h.histSvc.ActiveSessionID(userID),
		"pending":         h.convSvc.Pending(userID),
	}
	if banner := h.convSvc.BannerError(userID); banner != "" {
		response["bannerError"] = banner
	}
	utils.RespondJSON(w, http.StatusOK, response)
}

// Greeting builds the personalized greeting that opens every fresh
// conversation.
func Greeting(identity auth.Identity) chatmodel.Message {
	return chatmodel.Message{
		Type:    chatmodel.TypeBot,
		Text:    fmt.Sprintf("Good Morning, %s!", identity.FirstName),
		Subtext: "I am ready to help you",
	}
}
