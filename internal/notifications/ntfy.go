package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const userAgent = "Replay-Go/0.1.0"

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

// NewNtfy publishes to the given ntfy topic URL.
func NewNtfy(endpoint string, timeout time.Duration) Service {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: strings.TrimSpace(endpoint),
		client:   &http.Client{Timeout: timeout},
	}
}

func (n *ntfyService) NotifyMissingHighlights(ctx context.Context, day string, matches []MissingMatch) error {
	if len(matches) == 0 {
		return nil
	}
	var builder strings.Builder
	fmt.Fprintf(&builder, "%d match(es) from %s still need highlights:", len(matches), day)
	for _, m := range matches {
		fmt.Fprintf(&builder, "\n#%d %s (%s)", m.MatchID, m.Label(), m.Competition)
	}
	builder.WriteString("\nSet manually with: replay highlight set <match-id> <video-id>")
	data := payload{
		title:    "Replay - Missing Highlights",
		message:  builder.String(),
		tags:     []string{"replay", "highlights", "missing"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyQuotaExhausted(ctx context.Context, reached, remaining int) error {
	data := payload{
		title:    "Replay - Quota Exhausted",
		message:  fmt.Sprintf("All API keys exhausted after %d match(es); %d left for the next run", reached, remaining),
		tags:     []string{"replay", "quota", "warning"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyBatchCompleted(ctx context.Context, summary BatchSummary) error {
	title := "Replay - Fetch Complete"
	if summary.Aborted {
		title = "Replay - Fetch Stopped"
	}
	data := payload{
		title:   title,
		message: summary.message(),
		tags:    []string{"replay", "fetch", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Replay - Error",
		message:  builder.String(),
		tags:     []string{"replay", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Replay - Test",
		message:  "Notification system test",
		tags:     []string{"replay", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil || n.endpoint == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
