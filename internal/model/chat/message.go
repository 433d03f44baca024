package chat

// Message types as rendered by the frontend.
const (
	TypeUser = "user"
	TypeBot  = "bot"
)

// sourceDisplayLimit caps citation text for rendering.
const sourceDisplayLimit = 200

// Source is an opaque citation payload returned by the query service.
// It lives only as long as the message that carries it.
type Source struct {
	University string `json:"university"`
	Program    string `json:"program,omitempty"`
	Text       string `json:"text"`
}

// Display returns the citation text capped at the display limit.
func (s Source) Display() string {
	runes := []rune(s.Text)
	if len(runes) <= sourceDisplayLimit {
		return s.Text
	}
	return string(runes[:sourceDisplayLimit])
}

// Message is a single turn in a conversation. Messages are immutable once
// appended; IDs increase monotonically within a session but are not unique
// across sessions.
type Message struct {
	ID         int      `json:"id"`
	Type       string   `json:"type"`
	Text       string   `json:"text"`
	Subtext    string   `json:"subtext,omitempty"`
	Sources    []Source `json:"sources,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
	IsError    bool     `json:"isError,omitempty"`
}
