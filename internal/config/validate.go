package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable. Missing YouTube keys are not
// an error here; commands that reach the Data API check for them.
func (c *Config) Validate() error {
	if err := c.validateYouTube(); err != nil {
		return err
	}
	if err := c.validateFetch(); err != nil {
		return err
	}
	if err := c.validateChannels(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

// RequireAPIKeys reports a descriptive error when no Data API key is set.
func (c *Config) RequireAPIKeys() error {
	if len(c.YouTube.APIKeys) > 0 {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = "~/.config/replay/config.toml"
	}
	return fmt.Errorf("youtube.api_keys is required. Set YOUTUBE_API_KEYS env var or edit %s (create with 'replay config init')", defaultPath)
}

func (c *Config) validateYouTube() error {
	if c.YouTube.PageSize > 50 {
		return errors.New("youtube.page_size must be between 1 and 50")
	}
	if c.YouTube.MaxPages > 20 {
		return errors.New("youtube.max_pages must be between 1 and 20")
	}
	if c.YouTube.RequestsPerSecond < 0 {
		return errors.New("youtube.requests_per_second must be >= 0")
	}
	return nil
}

func (c *Config) validateFetch() error {
	if c.Fetch.WindowDaysBefore < 0 {
		return errors.New("fetch.window_days_before must be >= 0")
	}
	if c.Fetch.WindowDaysAfter < 1 {
		return errors.New("fetch.window_days_after must be >= 1")
	}
	return nil
}

func (c *Config) validateChannels() error {
	for name, entry := range c.Channels {
		if strings.TrimSpace(name) == "" {
			return errors.New("channels keys must be competition names")
		}
		if entry.Primary == "" {
			return fmt.Errorf("channels.%q.primary must be set", name)
		}
	}
	return nil
}

func (c *Config) validateMatching() error {
	for i, pair := range c.Matching.AmbiguousPairs {
		if len(pair) != 2 || strings.TrimSpace(pair[0]) == "" || strings.TrimSpace(pair[1]) == "" {
			return fmt.Errorf("matching.ambiguous_pairs[%d] must list exactly two team names", i)
		}
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Driver {
	case "sqlite":
		return nil
	case "postgres":
		if c.Store.DSN == "" {
			return errors.New("store.dsn is required for the postgres driver. Set DATABASE_URL or store.dsn")
		}
		return nil
	default:
		return fmt.Errorf("store.driver must be sqlite or postgres, got %q", c.Store.Driver)
	}
}

func (c *Config) validateNotifications() error {
	if len(c.Notifications.EmailTo) > 0 && c.Notifications.EmailFrom == "" {
		return errors.New("notifications.email_from must be set when email_to is configured")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
