package chat

import "time"

// TitleLimit is the number of characters of the originating query kept as
// the session title.
const TitleLimit = 40

// Session is a stored conversation snapshot. It is created exactly once, on
// the first user message of a fresh conversation, and never mutated after.
type Session struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	Timestamp string    `json:"timestamp"`
}

// NewSession freezes the supplied transcript into a session record titled
// after the originating query.
func NewSession(id int, query string, transcript []Message, now time.Time) Session {
	title := query
	if runes := []rune(title); len(runes) > TitleLimit {
		title = string(runes[:TitleLimit])
	}

	messages := make([]Message, len(transcript))
	copy(messages, transcript)

	return Session{
		ID:        id,
		Title:     title,
		Messages:  messages,
		Timestamp: now.Format("1/2/2006, 3:04:05 PM"),
	}
}
