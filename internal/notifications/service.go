package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"replay/internal/config"
	"replay/internal/logging"
)

// Service defines the notification surface exposed to the fetch workflow.
type Service interface {
	NotifyMissingHighlights(ctx context.Context, day string, matches []MissingMatch) error
	NotifyQuotaExhausted(ctx context.Context, reached, remaining int) error
	NotifyBatchCompleted(ctx context.Context, summary BatchSummary) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
	TestNotification(ctx context.Context) error
}

// NewService builds the configured transports. When neither ntfy nor email
// is configured a noop implementation is returned.
func NewService(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Service, error) {
	if cfg == nil {
		return noopService{}, nil
	}
	logger = logging.NewComponentLogger(logger, "notifications")
	settings := cfg.Notifications

	var services []Service
	if topic := strings.TrimSpace(settings.NtfyTopic); topic != "" {
		timeout := time.Duration(settings.RequestTimeout) * time.Second
		services = append(services, NewNtfy(topic, timeout))
	}
	if len(settings.EmailTo) > 0 {
		sender, err := NewSESSender(ctx, settings.AWSRegion, settings.EmailFrom)
		if err != nil {
			return nil, fmt.Errorf("configure email notifications: %w", err)
		}
		services = append(services, NewEmail(sender, settings.EmailTo))
	}
	if len(services) == 0 {
		logger.Debug("notifications disabled", logging.String("reason", "no transport configured"))
		return noopService{}, nil
	}
	logger.Debug("notifications enabled", logging.Int("transports", len(services)))
	return Gate(Fanout(services...), Toggles{
		MissingHighlights: settings.MissingHighlights,
		Quota:             settings.Quota,
		Batch:             settings.Batch,
	}), nil
}

// Toggles enables individual event types.
type Toggles struct {
	MissingHighlights bool
	Quota             bool
	Batch             bool
}

// Gate drops events that are switched off. Errors and test messages always pass.
func Gate(next Service, toggles Toggles) Service {
	if next == nil {
		return noopService{}
	}
	return gatedService{next: next, toggles: toggles}
}

type gatedService struct {
	next    Service
	toggles Toggles
}

func (g gatedService) NotifyMissingHighlights(ctx context.Context, day string, matches []MissingMatch) error {
	if !g.toggles.MissingHighlights {
		return nil
	}
	return g.next.NotifyMissingHighlights(ctx, day, matches)
}

func (g gatedService) NotifyQuotaExhausted(ctx context.Context, reached, remaining int) error {
	if !g.toggles.Quota {
		return nil
	}
	return g.next.NotifyQuotaExhausted(ctx, reached, remaining)
}

func (g gatedService) NotifyBatchCompleted(ctx context.Context, summary BatchSummary) error {
	if !g.toggles.Batch {
		return nil
	}
	return g.next.NotifyBatchCompleted(ctx, summary)
}

func (g gatedService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	return g.next.NotifyError(ctx, err, contextLabel)
}

func (g gatedService) TestNotification(ctx context.Context) error {
	return g.next.TestNotification(ctx)
}

// Fanout delivers every event to all services and joins their errors.
func Fanout(services ...Service) Service {
	filtered := make([]Service, 0, len(services))
	for _, svc := range services {
		if svc != nil {
			filtered = append(filtered, svc)
		}
	}
	switch len(filtered) {
	case 0:
		return noopService{}
	case 1:
		return filtered[0]
	}
	return fanoutService(filtered)
}

type fanoutService []Service

func (f fanoutService) each(fn func(Service) error) error {
	var errs []error
	for _, svc := range f {
		if err := fn(svc); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanoutService) NotifyMissingHighlights(ctx context.Context, day string, matches []MissingMatch) error {
	return f.each(func(s Service) error { return s.NotifyMissingHighlights(ctx, day, matches) })
}

func (f fanoutService) NotifyQuotaExhausted(ctx context.Context, reached, remaining int) error {
	return f.each(func(s Service) error { return s.NotifyQuotaExhausted(ctx, reached, remaining) })
}

func (f fanoutService) NotifyBatchCompleted(ctx context.Context, summary BatchSummary) error {
	return f.each(func(s Service) error { return s.NotifyBatchCompleted(ctx, summary) })
}

func (f fanoutService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	return f.each(func(s Service) error { return s.NotifyError(ctx, err, contextLabel) })
}

func (f fanoutService) TestNotification(ctx context.Context) error {
	return f.each(func(s Service) error { return s.TestNotification(ctx) })
}

// Noop returns a Service that discards every event.
func Noop() Service { return noopService{} }

type noopService struct{}

func (noopService) NotifyMissingHighlights(context.Context, string, []MissingMatch) error { return nil }
func (noopService) NotifyQuotaExhausted(context.Context, int, int) error                 { return nil }
func (noopService) NotifyBatchCompleted(context.Context, BatchSummary) error             { return nil }
func (noopService) NotifyError(context.Context, error, string) error                     { return nil }
func (noopService) TestNotification(context.Context) error                               { return nil }
