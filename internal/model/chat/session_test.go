package chat

import (
	"strings"
	"testing"
	"time"
)

func TestNewSessionTitle(t *testing.T) {
	now := time.Date(2025, 3, 7, 14, 5, 9, 0, time.UTC)

	short := NewSession(1, "AI programs in London", nil, now)
	if short.Title != "AI programs in London" {
		t.Fatalf("unexpected title %q", short.Title)
	}

	long := NewSession(2, strings.Repeat("a", 60), nil, now)
	if len(long.Title) != TitleLimit {
		t.Fatalf("title not truncated: %d chars", len(long.Title))
	}
}

func TestNewSessionTimestampFormat(t *testing.T) {
	now := time.Date(2025, 3, 7, 14, 5, 9, 0, time.UTC)
	session := NewSession(1, "q", nil, now)
	if session.Timestamp != "3/7/2025, 2:05:09 PM" {
		t.Fatalf("unexpected timestamp %q", session.Timestamp)
	}
}

func TestNewSessionCopiesTranscript(t *testing.T) {
	transcript := []Message{{ID: 0, Type: TypeBot, Text: "hello"}}
	session := NewSession(1, "q", transcript, time.Now())

	transcript[0].Text = "mutated"
	if session.Messages[0].Text != "hello" {
		t.Fatal("session shares the caller's transcript slice")
	}
}

func TestSourceDisplayCap(t *testing.T) {
	short := Source{Text: "brief excerpt"}
	if short.Display() != "brief excerpt" {
		t.Fatalf("short text changed: %q", short.Display())
	}

	long := Source{Text: strings.Repeat("x", 500)}
	if got := long.Display(); len(got) != sourceDisplayLimit {
		t.Fatalf("display not capped: %d chars", len(got))
	}
}
