package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"replay/internal/cache"
	"replay/internal/channels"
	"replay/internal/config"
	"replay/internal/interest"
	"replay/internal/logging"
	"replay/internal/matcher"
	"replay/internal/notifications"
	"replay/internal/ranker"
	"replay/internal/scanner"
	"replay/internal/search"
	"replay/internal/store"
	"replay/internal/store/postgres"
	"replay/internal/youtube"
)

type commandContext struct {
	configFlag *string
	logLevel   *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevel *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		logLevel:   logLevel,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevel != nil && strings.TrimSpace(*c.logLevel) != "" {
			cfg.Logging.Level = strings.TrimSpace(*c.logLevel)
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// openRepository picks the store backend from config.
func (c *commandContext) openRepository(ctx context.Context) (store.Repository, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	switch cfg.Store.Driver {
	case "postgres":
		repo, err := postgres.Connect(ctx, cfg.Store.DSN, logger)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return repo, nil
	default:
		repo, err := store.Open(cfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return repo, nil
	}
}

func (c *commandContext) withRepository(ctx context.Context, fn func(store.Repository) error) error {
	repo, err := c.openRepository(ctx)
	if err != nil {
		return err
	}
	defer repo.Close()
	return fn(repo)
}

func (c *commandContext) newCache(ctx context.Context, prefix string) (*cache.Cache, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return cache.New(ctx, cache.Options{
		RedisURL:   cfg.Cache.RedisURL,
		TTL:        cfg.CacheTTL(),
		MaxEntries: cfg.Cache.MaxEntries,
		Prefix:     prefix,
	}, logger), nil
}

// newRunCache holds video details for a single fetch run only.
func (c *commandContext) newRunCache() (*cache.Cache, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return cache.NewMemory(cache.Options{
		TTL:        cfg.CacheTTL(),
		MaxEntries: cfg.Cache.MaxEntries,
		Prefix:     "replay-run",
	}, logger), nil
}

func (c *commandContext) newYouTubeClient(details *cache.Cache) (*youtube.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return youtube.New(cfg.YouTube.BaseURL,
		youtube.WithRateLimit(cfg.YouTube.RequestsPerSecond),
		youtube.WithCache(details),
		youtube.WithLogger(logger),
		youtube.WithHTTPClient(newHTTPClient(cfg.YouTubeRequestTimeout())),
	)
}

// newSearcher wires directory, scanner, matcher, ranker, and enrichment.
func (c *commandContext) newSearcher(client *youtube.Client) (*search.Searcher, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	directory := channelDirectory(cfg)

	pairs := make([][2]string, 0, len(cfg.Matching.AmbiguousPairs))
	for _, pair := range cfg.Matching.AmbiguousPairs {
		if len(pair) == 2 {
			pairs = append(pairs, [2]string{pair[0], pair[1]})
		}
	}
	match := matcher.New(
		matcher.WithAlternates(cfg.Matching.Alternates),
		matcher.WithAmbiguousPairs(pairs),
	)

	scan := scanner.New(client, scanner.Options{
		MaxPages:             cfg.YouTube.MaxPages,
		PageSize:             cfg.YouTube.PageSize,
		EarlyExitOnStalePage: cfg.Fetch.EarlyExitOnStalePage,
	}, logger)

	return search.New(directory, scan, match, ranker.New(cfg.Matching.OfficialChannels...), client, search.Options{
		DaysBefore:    cfg.Fetch.WindowDaysBefore,
		DaysAfter:     cfg.Fetch.WindowDaysAfter,
		MaxCandidates: cfg.Fetch.MaxCandidates,
	}, logger), nil
}

func (c *commandContext) newPolicy() (*interest.Policy, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return interest.New(interest.Config{
		Enabled:              cfg.Interest.Enabled,
		Teams:                cfg.Interest.Teams,
		AllMatchLeagues:      cfg.Interest.AllMatchLeagues,
		FilteredCompetitions: cfg.Interest.FilteredCompetitions,
		CupToLeague:          cfg.Interest.CupToLeague,
	}), nil
}

func (c *commandContext) newNotifier(ctx context.Context) (notifications.Service, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return notifications.NewService(ctx, cfg, logger)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// channelDirectory merges the [channels] overrides into the built-in directory.
func channelDirectory(cfg *config.Config) *channels.Directory {
	overrides := make(map[string]channels.Entry, len(cfg.Channels))
	for name, ch := range cfg.Channels {
		overrides[name] = channels.Entry{Primary: ch.Primary, Fallbacks: ch.Fallbacks}
	}
	return channels.Default().WithOverrides(overrides)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
