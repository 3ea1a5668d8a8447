package notifications

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// Message is a rendered email.
type Message struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers rendered emails.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SESSender sends email through Amazon SES v2.
type SESSender struct {
	client    *sesv2.Client
	fromEmail string
}

// NewSESSender loads the default AWS credential chain for region.
func NewSESSender(ctx context.Context, region, from string) (*SESSender, error) {
	from = strings.TrimSpace(from)
	if from == "" {
		return nil, errors.New("notifications.email_from is not set")
	}
	var opts []func(*awsconfig.LoadOptions) error
	if region = strings.TrimSpace(region); region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &SESSender{
		client:    sesv2.NewFromConfig(cfg),
		fromEmail: from,
	}, nil
}

func (s *SESSender) Send(ctx context.Context, msg Message) error {
	body := &types.Body{Text: &types.Content{Data: aws.String(msg.Text)}}
	if msg.HTML != "" {
		body.Html = &types.Content{Data: aws.String(msg.HTML)}
	}
	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.fromEmail),
		Destination: &types.Destination{
			ToAddresses: msg.To,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject)},
				Body:    body,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("send ses email: %w", err)
	}
	return nil
}

type emailService struct {
	sender Sender
	to     []string
}

// NewEmail sends events to the given recipients.
func NewEmail(sender Sender, to []string) Service {
	return &emailService{sender: sender, to: to}
}

var missingTemplate = template.Must(template.New("missing").Parse(`<html>
<body style="font-family: Arial, sans-serif;">
<h2>Missing Highlights - Manual Update Required</h2>
<p>The following {{len .Matches}} match(es) from <strong>{{.Day}}</strong> could not find highlights after multiple attempts:</p>
<table style="border-collapse: collapse; width: 100%;">
<tr><th>Match ID</th><th>Match</th><th>Competition</th><th>Attempts</th></tr>
{{- range .Matches}}
<tr><td>{{.MatchID}}</td><td><strong>{{.HomeTeam}}</strong> vs <strong>{{.AwayTeam}}</strong></td><td>{{.Competition}}</td><td>{{.Attempts}}{{if .Capped}} (capped){{end}}</td></tr>
{{- end}}
</table>
<h3>How to add a highlight manually</h3>
<ol>
<li>Search YouTube for the match highlights.</li>
<li>Copy the video ID from the URL, e.g. <code>dQw4w9WgXcQ</code> from youtube.com/watch?v=<strong>dQw4w9WgXcQ</strong>.</li>
<li>Run <code>replay highlight set &lt;match-id&gt; &lt;video-id&gt;</code>.</li>
</ol>
</body>
</html>
`))

func (e *emailService) NotifyMissingHighlights(ctx context.Context, day string, matches []MissingMatch) error {
	if len(matches) == 0 {
		return nil
	}
	var text strings.Builder
	fmt.Fprintf(&text, "Missing Highlights Alert\n\n%d match(es) from %s missing highlights:\n\n", len(matches), day)
	for _, m := range matches {
		fmt.Fprintf(&text, "- [%d] %s (%s), %d attempt(s)\n", m.MatchID, m.Label(), m.Competition, m.Attempts)
	}
	text.WriteString("\nSet a highlight manually with: replay highlight set <match-id> <video-id>\n")

	var html bytes.Buffer
	if err := missingTemplate.Execute(&html, struct {
		Day     string
		Matches []MissingMatch
	}{day, matches}); err != nil {
		return fmt.Errorf("render missing highlights email: %w", err)
	}
	return e.send(ctx, Message{
		Subject: fmt.Sprintf("Missing Highlights Alert - %d matches (%s)", len(matches), day),
		Text:    text.String(),
		HTML:    html.String(),
	})
}

func (e *emailService) NotifyQuotaExhausted(ctx context.Context, reached, remaining int) error {
	return e.send(ctx, Message{
		Subject: "Replay - API quota exhausted",
		Text:    fmt.Sprintf("All API keys were exhausted after %d match(es). %d match(es) were left for the next run.\n", reached, remaining),
	})
}

func (e *emailService) NotifyBatchCompleted(ctx context.Context, summary BatchSummary) error {
	return e.send(ctx, Message{
		Subject: fmt.Sprintf("Replay - fetch %s (%s)", summary.Day, summary.Pass),
		Text:    summary.message() + "\n",
	})
}

func (e *emailService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	detail := "unknown"
	if err != nil {
		detail = strings.TrimSpace(err.Error())
	}
	subject := "Replay - error"
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		subject += " with " + contextLabel
	}
	return e.send(ctx, Message{Subject: subject, Text: detail + "\n"})
}

func (e *emailService) TestNotification(ctx context.Context) error {
	return e.send(ctx, Message{
		Subject: "Replay - test",
		Text:    "Notification system test\n",
	})
}

func (e *emailService) send(ctx context.Context, msg Message) error {
	if e == nil || e.sender == nil || len(e.to) == 0 {
		return nil
	}
	msg.To = append([]string(nil), e.to...)
	return e.sender.Send(ctx, msg)
}
