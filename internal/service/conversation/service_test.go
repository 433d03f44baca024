package conversation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/abaanfida/unixora/internal/client"
	"github.com/abaanfida/unixora/internal/model/chat"
	"github.com/abaanfida/unixora/internal/service/history"
)

const testUser = "user-1"

// stubQuery is a scriptable query client. When block is non-nil the call
// waits on it before returning, which lets tests hold a query in flight.
type stubQuery struct {
	mu     sync.Mutex
	result client.QueryResult
	err    error
	block  chan struct{}
	calls  int
}

func (q *stubQuery) Query(ctx context.Context, query string, topK int) (client.QueryResult, error) {
	q.mu.Lock()
	q.calls++
	block := q.block
	result, err := q.result, q.err
	q.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return client.QueryResult{}, ctx.Err()
		}
	}
	return result, err
}

func (q *stubQuery) callCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.calls
}

func newTestService(q *stubQuery) *Service {
	hist := history.NewService(10)
	svc := NewService(hist, q, 5)
	svc.StartNew(testUser, chat.Message{Text: "Good Morning, Test!"})
	return svc
}

func TestSubmitAppendsUserAndBotMessages(t *testing.T) {
	q := &stubQuery{result: client.QueryResult{Answer: "Consider UCL and Imperial.", Confidence: 0.82}}
	svc := newTestService(q)

	res := svc.Submit(context.Background(), testUser, "AI programs in London")
	if !res.Accepted || res.Superseded {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.UserMessage.Text != "AI programs in London" {
		t.Fatalf("unexpected user message %q", res.UserMessage.Text)
	}
	if res.BotMessage.Text != "Consider UCL and Imperial." {
		t.Fatalf("unexpected bot message %q", res.BotMessage.Text)
	}
	if res.BotMessage.Confidence == nil || *res.BotMessage.Confidence != 0.82 {
		t.Fatalf("confidence not carried: %+v", res.BotMessage.Confidence)
	}
	if res.BannerError != "" {
		t.Fatalf("unexpected banner %q", res.BannerError)
	}
	if svc.Pending(testUser) {
		t.Fatal("controller stuck pending after a completed turn")
	}
}

func TestSubmitIgnoresEmptyInput(t *testing.T) {
	q := &stubQuery{}
	svc := newTestService(q)

	for _, input := range []string{"", "   ", "\n\t"} {
		if res := svc.Submit(context.Background(), testUser, input); res.Accepted {
			t.Fatalf("input %q was accepted", input)
		}
	}
	if q.callCount() != 0 {
		t.Fatalf("query client called %d times for empty input", q.callCount())
	}
}

func TestSubmitDropsWhileInFlight(t *testing.T) {
	block := make(chan struct{})
	q := &stubQuery{result: client.QueryResult{Answer: "ok"}, block: block}
	svc := newTestService(q)

	done := make(chan Result, 1)
	go func() {
		done <- svc.Submit(context.Background(), testUser, "first question")
	}()

	waitFor(t, func() bool { return svc.Pending(testUser) })

	// The second submit must be dropped, not queued.
	second := svc.Submit(context.Background(), testUser, "second question")
	if second.Accepted {
		t.Fatal("second submit was accepted while a query was outstanding")
	}

	close(block)
	first := <-done
	if !first.Accepted {
		t.Fatal("first submit was not accepted")
	}
	if q.callCount() != 1 {
		t.Fatalf("query client called %d times", q.callCount())
	}
}

func TestSubmitFailureAppendsErrorReplyAndBanner(t *testing.T) {
	q := &stubQuery{err: errors.New("connection refused")}
	svc := newTestService(q)

	res := svc.Submit(context.Background(), testUser, "hello")
	if !res.Accepted {
		t.Fatal("failed submit was not accepted")
	}
	if !res.BotMessage.IsError {
		t.Fatal("error reply not flagged")
	}
	if res.BotMessage.Text != errorReplyText {
		t.Fatalf("unexpected error reply %q", res.BotMessage.Text)
	}
	if res.BannerError != bannerErrorText {
		t.Fatalf("unexpected banner %q", res.BannerError)
	}
	if svc.BannerError(testUser) != bannerErrorText {
		t.Fatal("banner not retained on the controller")
	}
	if svc.Pending(testUser) {
		t.Fatal("controller stuck pending after a failed turn")
	}

	// The controller stays usable: a retry can succeed.
	q.mu.Lock()
	q.err = nil
	q.result = client.QueryResult{Answer: "recovered"}
	q.mu.Unlock()

	retry := svc.Submit(context.Background(), testUser, "hello again")
	if !retry.Accepted || retry.BotMessage.IsError {
		t.Fatalf("retry did not recover: %+v", retry)
	}
	if retry.BannerError != "" {
		t.Fatalf("banner survived a successful turn: %q", retry.BannerError)
	}
}

func TestDismissErrorKeepsTranscript(t *testing.T) {
	q := &stubQuery{err: errors.New("boom")}
	svc := newTestService(q)
	svc.Submit(context.Background(), testUser, "hello")

	svc.DismissError(testUser)
	if svc.BannerError(testUser) != "" {
		t.Fatal("banner not cleared")
	}
}

func TestStartNewDiscardsStaleResponse(t *testing.T) {
	block := make(chan struct{})
	q := &stubQuery{result: client.QueryResult{Answer: "late answer"}, block: block}
	svc := newTestService(q)

	done := make(chan Result, 1)
	go func() {
		done <- svc.Submit(context.Background(), testUser, "slow question")
	}()
	waitFor(t, func() bool { return svc.Pending(testUser) })

	fresh := svc.StartNew(testUser, chat.Message{Text: "Good Morning, Test!"})
	if len(fresh) != 1 {
		t.Fatalf("expected greeting-only list, got %d messages", len(fresh))
	}

	close(block)
	res := <-done
	if !res.Superseded {
		t.Fatalf("stale response was not marked superseded: %+v", res)
	}
	// The fresh conversation must not have received the late reply.
	for _, msg := range activeOf(svc, testUser) {
		if msg.Text == "late answer" {
			t.Fatal("late response landed in the reset conversation")
		}
	}
	if svc.Pending(testUser) {
		t.Fatal("controller stuck pending after reset")
	}
}

func TestLoadUnknownSessionIsFullNoOp(t *testing.T) {
	q := &stubQuery{err: errors.New("boom")}
	svc := newTestService(q)

	svc.Submit(context.Background(), testUser, "hello")
	if svc.BannerError(testUser) != bannerErrorText {
		t.Fatal("banner not set by the failed submit")
	}

	if svc.Load(testUser, 999) {
		t.Fatal("loading an unknown id reported success")
	}
	if svc.BannerError(testUser) != bannerErrorText {
		t.Fatal("loading an unknown id cleared the banner error")
	}
	if svc.Delete(testUser, 999) {
		t.Fatal("deleting an unknown id reported success")
	}
	if svc.BannerError(testUser) != bannerErrorText {
		t.Fatal("deleting an unknown id cleared the banner error")
	}
}

func TestLoadUnknownSessionKeepsQueryInFlight(t *testing.T) {
	block := make(chan struct{})
	q := &stubQuery{result: client.QueryResult{Answer: "the reply"}, block: block}
	svc := newTestService(q)

	done := make(chan Result, 1)
	go func() {
		done <- svc.Submit(context.Background(), testUser, "slow question")
	}()
	waitFor(t, func() bool { return svc.Pending(testUser) })

	if svc.Load(testUser, 999) {
		t.Fatal("loading an unknown id reported success")
	}
	if !svc.Pending(testUser) {
		t.Fatal("loading an unknown id dropped the in-flight query")
	}

	close(block)
	res := <-done
	if res.Superseded {
		t.Fatalf("reply to the untouched conversation was discarded: %+v", res)
	}
	if res.BotMessage.Text != "the reply" {
		t.Fatalf("unexpected bot message %q", res.BotMessage.Text)
	}
}

func TestLoadCancelsInFlightQuery(t *testing.T) {
	q := &stubQuery{result: client.QueryResult{Answer: "late"}}
	svc := newTestService(q)

	// Materialize a session first so there is something to reload.
	svc.Submit(context.Background(), testUser, "seed question")
	sessionID := sessionIDOf(t, svc, testUser)

	svc.StartNew(testUser, chat.Message{Text: "Good Morning, Test!"})

	block := make(chan struct{})
	defer close(block)
	q.mu.Lock()
	q.block = block
	q.mu.Unlock()

	done := make(chan Result, 1)
	go func() {
		done <- svc.Submit(context.Background(), testUser, "in flight")
	}()
	waitFor(t, func() bool { return svc.Pending(testUser) })

	if !svc.Load(testUser, sessionID) {
		t.Fatalf("failed to load session %d", sessionID)
	}

	select {
	case res := <-done:
		if !res.Superseded {
			t.Fatalf("cancelled query not superseded: %+v", res)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight query was not cancelled by Load")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func activeOf(svc *Service, userID string) []chat.Message {
	return svc.history.Active(userID)
}

func sessionIDOf(t *testing.T, svc *Service, userID string) int {
	t.Helper()
	sessions := svc.history.Sessions(userID)
	if len(sessions) == 0 {
		t.Fatal("no stored sessions")
	}
	return sessions[0].ID
}
