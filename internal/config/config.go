package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
	APIBind string `toml:"api_bind"`
}

// YouTube contains Data API credentials and request limits.
type YouTube struct {
	APIKeys           []string `toml:"api_keys"`
	BaseURL           string   `toml:"base_url"`
	MaxPages          int      `toml:"max_pages"`
	PageSize          int      `toml:"page_size"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
	RequestTimeout    int      `toml:"request_timeout"`
}

// Fetch contains the orchestrator retry policy.
type Fetch struct {
	MaxAttempts          int  `toml:"max_attempts"`
	WindowDaysBefore     int  `toml:"window_days_before"`
	WindowDaysAfter      int  `toml:"window_days_after"`
	EarlyExitOnStalePage bool `toml:"early_exit_on_stale_page"`
	MaxCandidates        int  `toml:"max_candidates"`
}

// Channel overrides the feeds searched for one competition.
type Channel struct {
	Primary   string   `toml:"primary"`
	Fallbacks []string `toml:"fallbacks"`
}

// Matching extends the built-in team and channel tables.
type Matching struct {
	Alternates       map[string][]string `toml:"alternates"`
	AmbiguousPairs   [][]string          `toml:"ambiguous_pairs"`
	OfficialChannels []string            `toml:"official_channels"`
}

// Interest selects which matches are worth a fetch.
type Interest struct {
	Enabled              bool                `toml:"enabled"`
	Teams                map[string][]string `toml:"teams"`
	AllMatchLeagues      []string            `toml:"all_match_leagues"`
	FilteredCompetitions []string            `toml:"filtered_competitions"`
	CupToLeague          map[string]string   `toml:"cup_to_league"`
}

// Store selects the persistence backend.
type Store struct {
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
}

// Cache configures the shared two-tier cache.
type Cache struct {
	RedisURL   string `toml:"redis_url"`
	TTL        int    `toml:"ttl"`
	MaxEntries int    `toml:"max_entries"`
}

// Geo configures viewer country detection.
type Geo struct {
	LookupURL string `toml:"lookup_url"`
	Timeout   int    `toml:"timeout"`
}

// Notifications contains ntfy and email escalation settings.
type Notifications struct {
	NtfyTopic         string   `toml:"ntfy_topic"`
	RequestTimeout    int      `toml:"request_timeout"`
	EmailTo           []string `toml:"email_to"`
	EmailFrom         string   `toml:"email_from"`
	AWSRegion         string   `toml:"aws_region"`
	MissingHighlights bool     `toml:"missing_highlights"`
	Quota             bool     `toml:"quota"`
	Batch             bool     `toml:"batch"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for replay.
//
// Configuration sections by subsystem:
//   - Paths: data/log directories and API bind address
//   - YouTube: API keys and request pacing
//   - Fetch: attempt cap, date window, scan policy
//   - Channels: per-competition feed overrides
//   - Matching: extra team alternates, ambiguous pairs, official channels
//   - Interest: teams-of-interest selection
//   - Store: sqlite or postgres
//   - Cache: Redis L2 cache
//   - Geo: IP to country lookup
//   - Notifications: ntfy push and SES email
//   - Logging: log format and level
type Config struct {
	Paths         Paths              `toml:"paths"`
	YouTube       YouTube            `toml:"youtube"`
	Fetch         Fetch              `toml:"fetch"`
	Channels      map[string]Channel `toml:"channels"`
	Matching      Matching           `toml:"matching"`
	Interest      Interest           `toml:"interest"`
	Store         Store              `toml:"store"`
	Cache         Cache              `toml:"cache"`
	Geo           Geo                `toml:"geo"`
	Notifications Notifications      `toml:"notifications"`
	Logging       Logging            `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/replay/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. A missing file is not an error.
func Load(path string) (*Config, string, bool, error) {
	if err := loadDotEnv(); err != nil {
		return nil, "", false, err
	}

	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// loadDotEnv reads ./.env when present. Variables already set in the
// environment win.
func loadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	if err := godotenv.Load(".env"); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("replay.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LockPath is the file guarding against overlapping fetch runs.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "fetch.lock")
}

// YouTubeRequestTimeout returns the per-request timeout for the Data API.
func (c *Config) YouTubeRequestTimeout() time.Duration {
	return time.Duration(c.YouTube.RequestTimeout) * time.Second
}

// CacheTTL returns the cache entry lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTL) * time.Second
}

// GeoTimeout returns the IP lookup timeout.
func (c *Config) GeoTimeout() time.Duration {
	return time.Duration(c.Geo.Timeout) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
