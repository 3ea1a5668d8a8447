package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"replay/internal/config"
	"replay/internal/notifications"
)

type ntfyRequest struct {
	title    string
	tags     string
	priority string
	body     string
}

func newNtfyServer(t *testing.T, status int) (*httptest.Server, func() []ntfyRequest) {
	t.Helper()
	var (
		mu       sync.Mutex
		requests []ntfyRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		requests = append(requests, ntfyRequest{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []ntfyRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]ntfyRequest(nil), requests...)
	}
}

type fakeSender struct {
	messages []notifications.Message
	err      error
}

func (f *fakeSender) Send(_ context.Context, msg notifications.Message) error {
	f.messages = append(f.messages, msg)
	return f.err
}

func sampleMissing() []notifications.MissingMatch {
	return []notifications.MissingMatch{
		{MatchID: 7, HomeTeam: "Arsenal", AwayTeam: "Chelsea", Competition: "Premier League", Attempts: 12, Capped: true},
		{MatchID: 9, HomeTeam: "Lens", AwayTeam: "Lille", Competition: "Ligue 1", Attempts: 3},
	}
}

func TestNewServiceReturnsNoopWhenNothingConfigured(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	cfg.Notifications.EmailTo = nil
	svc, err := notifications.NewService(context.Background(), &cfg, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if err := svc.NotifyMissingHighlights(context.Background(), "2025-01-01", sampleMissing()); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNewServiceUsesNtfyTopic(t *testing.T) {
	srv, requests := newNtfyServer(t, http.StatusOK)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = srv.URL
	cfg.Notifications.Batch = false
	svc, err := notifications.NewService(context.Background(), &cfg, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if err := svc.NotifyQuotaExhausted(context.Background(), 3, 5); err != nil {
		t.Fatalf("NotifyQuotaExhausted: %v", err)
	}
	if err := svc.NotifyBatchCompleted(context.Background(), notifications.BatchSummary{Day: "2025-01-01"}); err != nil {
		t.Fatalf("NotifyBatchCompleted: %v", err)
	}
	got := requests()
	if len(got) != 1 {
		t.Fatalf("expected only the quota event to be delivered, got %d requests", len(got))
	}
	if got[0].title != "Replay - Quota Exhausted" {
		t.Fatalf("unexpected title %q", got[0].title)
	}
	if !strings.Contains(got[0].body, "after 3 match(es); 5 left") {
		t.Fatalf("unexpected body %q", got[0].body)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	srv, requests := newNtfyServer(t, http.StatusOK)
	svc := notifications.NewNtfy(srv.URL, time.Second)
	ctx := context.Background()

	if err := svc.NotifyMissingHighlights(ctx, "2025-03-01", sampleMissing()); err != nil {
		t.Fatalf("NotifyMissingHighlights: %v", err)
	}
	if err := svc.NotifyBatchCompleted(ctx, notifications.BatchSummary{
		Day: "2025-03-01", Aborted: true, Reached: 4, Remaining: 6, Found: 2, Duration: 90 * time.Second,
	}); err != nil {
		t.Fatalf("NotifyBatchCompleted: %v", err)
	}
	if err := svc.NotifyError(ctx, errors.New("boom "), "fetch"); err != nil {
		t.Fatalf("NotifyError: %v", err)
	}
	if err := svc.TestNotification(ctx); err != nil {
		t.Fatalf("TestNotification: %v", err)
	}

	got := requests()
	if len(got) != 4 {
		t.Fatalf("expected 4 requests, got %d", len(got))
	}
	missing := got[0]
	if missing.title != "Replay - Missing Highlights" || missing.priority != "high" {
		t.Fatalf("unexpected missing payload %+v", missing)
	}
	if !strings.Contains(missing.body, "#7 Arsenal vs Chelsea (Premier League)") {
		t.Fatalf("missing body lacks match line: %q", missing.body)
	}
	if !strings.Contains(missing.body, "replay highlight set") {
		t.Fatalf("missing body lacks manual instructions: %q", missing.body)
	}
	if got[1].title != "Replay - Fetch Stopped" || !strings.Contains(got[1].body, "quota exhausted after 4 of 10 matches") {
		t.Fatalf("unexpected batch payload %+v", got[1])
	}
	if got[2].body != "Error with fetch: boom" || got[2].tags != "replay,error,alert" {
		t.Fatalf("unexpected error payload %+v", got[2])
	}
	if got[3].priority != "low" {
		t.Fatalf("expected low priority test payload, got %+v", got[3])
	}
}

func TestNtfyServiceReportsHTTPFailure(t *testing.T) {
	srv, _ := newNtfyServer(t, http.StatusInternalServerError)
	svc := notifications.NewNtfy(srv.URL, time.Second)
	err := svc.TestNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "ntfy returned 500") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestEmailServiceRendersMissingDigest(t *testing.T) {
	sender := &fakeSender{}
	svc := notifications.NewEmail(sender, []string{"ops@example.com"})
	if err := svc.NotifyMissingHighlights(context.Background(), "2025-03-01", sampleMissing()); err != nil {
		t.Fatalf("NotifyMissingHighlights: %v", err)
	}
	if len(sender.messages) != 1 {
		t.Fatalf("expected one email, got %d", len(sender.messages))
	}
	msg := sender.messages[0]
	if msg.Subject != "Missing Highlights Alert - 2 matches (2025-03-01)" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	if len(msg.To) != 1 || msg.To[0] != "ops@example.com" {
		t.Fatalf("unexpected recipients %v", msg.To)
	}
	if !strings.Contains(msg.Text, "- [9] Lens vs Lille (Ligue 1), 3 attempt(s)") {
		t.Fatalf("text body lacks match line: %q", msg.Text)
	}
	if !strings.Contains(msg.HTML, "<td>12 (capped)</td>") {
		t.Fatalf("html body lacks capped marker: %q", msg.HTML)
	}

	if err := svc.NotifyMissingHighlights(context.Background(), "2025-03-01", nil); err != nil {
		t.Fatalf("empty digest: %v", err)
	}
	if len(sender.messages) != 1 {
		t.Fatal("empty digest must not send email")
	}
}

func TestFanoutJoinsErrors(t *testing.T) {
	failing := &fakeSender{err: errors.New("ses down")}
	ok := &fakeSender{}
	svc := notifications.Fanout(
		notifications.NewEmail(failing, []string{"a@example.com"}),
		notifications.NewEmail(ok, []string{"b@example.com"}),
	)
	err := svc.TestNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "ses down") {
		t.Fatalf("expected joined error, got %v", err)
	}
	if len(ok.messages) != 1 {
		t.Fatal("healthy transport must still receive the event")
	}
}

func TestGateDropsDisabledEvents(t *testing.T) {
	sender := &fakeSender{}
	svc := notifications.Gate(notifications.NewEmail(sender, []string{"ops@example.com"}), notifications.Toggles{})
	ctx := context.Background()
	_ = svc.NotifyMissingHighlights(ctx, "2025-03-01", sampleMissing())
	_ = svc.NotifyQuotaExhausted(ctx, 1, 1)
	_ = svc.NotifyBatchCompleted(ctx, notifications.BatchSummary{})
	if len(sender.messages) != 0 {
		t.Fatalf("expected gated events to be dropped, got %d", len(sender.messages))
	}
	_ = svc.NotifyError(ctx, errors.New("x"), "")
	if len(sender.messages) != 1 {
		t.Fatal("errors must bypass the gate")
	}
}
