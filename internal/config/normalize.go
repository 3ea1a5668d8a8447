package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeYouTube()
	c.normalizeFetch()
	c.normalizeChannels()
	c.normalizeMatching()
	c.normalizeStore()
	c.normalizeCache()
	c.normalizeGeo()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeYouTube() {
	if keys := splitList(envValue(envYouTubeAPIKeys)); len(keys) > 0 {
		c.YouTube.APIKeys = keys
	} else if keys := splitList(envValue(envYouTubeAPIKey)); len(keys) > 0 {
		c.YouTube.APIKeys = keys
	}
	c.YouTube.APIKeys = splitList(strings.Join(c.YouTube.APIKeys, ","))
	c.YouTube.BaseURL = strings.TrimRight(strings.TrimSpace(c.YouTube.BaseURL), "/")
	if c.YouTube.BaseURL == "" {
		c.YouTube.BaseURL = defaultYouTubeBaseURL
	}
	if c.YouTube.MaxPages <= 0 {
		c.YouTube.MaxPages = defaultMaxPages
	}
	if c.YouTube.PageSize <= 0 {
		c.YouTube.PageSize = defaultPageSize
	}
	if c.YouTube.RequestTimeout <= 0 {
		c.YouTube.RequestTimeout = defaultYouTubeTimeout
	}
}

func (c *Config) normalizeFetch() {
	if c.Fetch.MaxAttempts <= 0 {
		c.Fetch.MaxAttempts = defaultMaxAttempts
	}
	if c.Fetch.MaxCandidates <= 0 {
		c.Fetch.MaxCandidates = defaultMaxCandidates
	}
}

func (c *Config) normalizeChannels() {
	for name, entry := range c.Channels {
		entry.Primary = strings.TrimSpace(entry.Primary)
		entry.Fallbacks = splitList(strings.Join(entry.Fallbacks, ","))
		c.Channels[name] = entry
	}
}

func (c *Config) normalizeMatching() {
	c.Matching.OfficialChannels = splitList(strings.Join(c.Matching.OfficialChannels, ","))
}

func (c *Config) normalizeStore() {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	if c.Store.Driver == "" {
		c.Store.Driver = defaultStoreDriver
	}
	c.Store.DSN = strings.TrimSpace(c.Store.DSN)
	if value := envValue(envDatabaseURL); value != "" {
		c.Store.DSN = value
	}
	if c.Store.Driver == "postgresql" {
		c.Store.Driver = "postgres"
	}
}

func (c *Config) normalizeCache() {
	c.Cache.RedisURL = strings.TrimSpace(c.Cache.RedisURL)
	if value := envValue(envRedisURL); value != "" {
		c.Cache.RedisURL = value
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = defaultCacheTTL
	}
	if c.Cache.MaxEntries <= 0 {
		c.Cache.MaxEntries = defaultCacheMaxEntries
	}
}

func (c *Config) normalizeGeo() {
	c.Geo.LookupURL = strings.TrimRight(strings.TrimSpace(c.Geo.LookupURL), "/")
	if c.Geo.LookupURL == "" {
		c.Geo.LookupURL = defaultGeoLookupURL
	}
	if c.Geo.Timeout <= 0 {
		c.Geo.Timeout = defaultGeoTimeout
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if value := envValue(envNtfyTopic); value != "" {
		c.Notifications.NtfyTopic = value
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
	if recipients := splitList(envValue(envNotificationEmailTo)); len(recipients) > 0 {
		c.Notifications.EmailTo = recipients
	}
	c.Notifications.EmailTo = splitList(strings.Join(c.Notifications.EmailTo, ","))
	c.Notifications.EmailFrom = strings.TrimSpace(c.Notifications.EmailFrom)
	if value := envValue(envNotificationEmailFrom); value != "" {
		c.Notifications.EmailFrom = value
	}
	c.Notifications.AWSRegion = strings.TrimSpace(c.Notifications.AWSRegion)
	if value := envValue(envAWSRegion); value != "" {
		c.Notifications.AWSRegion = value
	}
	if c.Notifications.AWSRegion == "" {
		c.Notifications.AWSRegion = defaultAWSRegion
	}
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch format {
	case "", "console", "text", "pretty":
		c.Logging.Format = "console"
	default:
		c.Logging.Format = format
	}
	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	c.Logging.Level = level
}

// envValue returns the trimmed value of an environment variable. Set values
// override the config file.
func envValue(key string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

// splitList splits comma separated values and drops blanks and duplicates.
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, ok := seen[part]; ok {
			continue
		}
		seen[part] = struct{}{}
		out = append(out, part)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
