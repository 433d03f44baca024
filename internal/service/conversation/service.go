// Package conversation implements the submit state machine sitting between
// user input and the query service: at most one outstanding query per user,
// explicit error surfacing, and deterministic invalidation of stale
// in-flight requests.
package conversation

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/abaanfida/unixora/internal/client"
	"github.com/abaanfida/unixora/internal/model/chat"
	"github.com/abaanfida/unixora/internal/service/history"
)

const (
	// errorReplyText is the in-chat reply appended when a query fails.
	errorReplyText = "Sorry, I couldn't process that request right now. Please try again."
	// bannerErrorText is the dismissible banner shown alongside it.
	bannerErrorText = "Unable to reach the assistant service. Please try again."
)

// QueryClient is the outbound dependency answering user questions.
type QueryClient interface {
	Query(ctx context.Context, query string, topK int) (client.QueryResult, error)
}

// Result reports what a Submit call did. Accepted is false when the input
// was empty or another query was already in flight; Superseded is true when
// the conversation was reset while the query was pending and the response
// was discarded.
type Result struct {
	Accepted    bool
	Superseded  bool
	UserMessage chat.Message
	BotMessage  chat.Message
	BannerError string
}

// Service drives conversations for all users.
type Service struct {
	mu      sync.Mutex
	history *history.Service
	client  QueryClient
	topK    int
	states  map[string]*state
}

// state tracks one user's controller status.
type state struct {
	pending    bool
	cancel     context.CancelFunc
	generation uint64
	banner     string
}

// NewService wires the controller to its history store and query client.
func NewService(hist *history.Service, qc QueryClient, topK int) *Service {
	return &Service{
		history: hist,
		client:  qc,
		topK:    topK,
		states:  make(map[string]*state),
	}
}

func (s *Service) state(userID string) *state {
	st, ok := s.states[userID]
	if !ok {
		st = &state{}
		s.states[userID] = st
	}
	return st
}

// Submit runs one user turn to completion: append the user message, query
// the backend, append the bot reply. Empty or whitespace input is silently
// ignored, and a second submit while a query is outstanding is dropped, not
// queued. Failures append a synthetic error reply and set the banner error;
// the controller always returns to an idle, usable state, so a failed turn
// is a handled result, not an error.
func (s *Service) Submit(ctx context.Context, userID, text string) Result {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}
	}

	s.mu.Lock()
	st := s.state(userID)
	if st.pending {
		s.mu.Unlock()
		return Result{}
	}
	st.pending = true
	st.banner = ""
	st.generation++
	generation := st.generation
	queryCtx, cancel := context.WithCancel(ctx)
	st.cancel = cancel
	s.mu.Unlock()

	userMsg, session := s.history.AppendUser(userID, text)
	if session != nil {
		log.Printf("[conversation] user=%s started session %d %q", userID, session.ID, session.Title)
	}

	answer, err := s.client.Query(queryCtx, text, s.topK)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	if st.generation != generation {
		// The conversation was reset or reloaded while we were waiting;
		// the response no longer has a home.
		return Result{Accepted: true, Superseded: true, UserMessage: userMsg}
	}
	st.pending = false
	st.cancel = nil

	if err != nil {
		log.Printf("[conversation] query failed for user=%s: %v", userID, err)
		botMsg := s.history.AppendBot(userID, chat.Message{
			Text:    errorReplyText,
			IsError: true,
		})
		st.banner = bannerErrorText
		return Result{
			Accepted:    true,
			UserMessage: userMsg,
			BotMessage:  botMsg,
			BannerError: st.banner,
		}
	}

	confidence := answer.Confidence
	botMsg := s.history.AppendBot(userID, chat.Message{
		Text:       answer.Answer,
		Sources:    answer.Sources,
		Confidence: &confidence,
	})
	return Result{Accepted: true, UserMessage: userMsg, BotMessage: botMsg}
}

// StartNew resets the user's conversation to a fresh greeting, cancelling
// any in-flight query so its late response is discarded.
func (s *Service) StartNew(userID string, greeting chat.Message) []chat.Message {
	s.invalidate(userID)
	return s.history.StartNew(userID, greeting)
}

// Load switches the active list to a stored session. An unknown id is a
// full no-op: nothing is cancelled and the banner stays.
func (s *Service) Load(userID string, sessionID int) bool {
	if !s.history.Has(userID, sessionID) {
		return false
	}
	s.invalidate(userID)
	return s.history.Load(userID, sessionID)
}

// Delete removes a stored session; removing the loaded one resets to a
// fresh conversation. An unknown id is a full no-op.
func (s *Service) Delete(userID string, sessionID int) bool {
	if !s.history.Has(userID, sessionID) {
		return false
	}
	s.invalidate(userID)
	return s.history.Delete(userID, sessionID)
}

// DismissError clears the banner error. The in-chat error message is part
// of the transcript and stays.
func (s *Service) DismissError(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state(userID).banner = ""
}

// BannerError returns the current banner error, empty when none.
func (s *Service) BannerError(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.states[userID]; ok {
		return st.banner
	}
	return ""
}

// Pending reports whether a query is outstanding for the user.
func (s *Service) Pending(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.states[userID]; ok {
		return st.pending
	}
	return false
}

// invalidate cancels any pending query and bumps the generation so a late
// response cannot land in the replaced conversation.
func (s *Service) invalidate(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(userID)
	st.generation++
	st.banner = ""
	st.pending = false
	if st.cancel != nil {
		st.cancel()
		st.cancel = nil
	}
}
