package config

const (
	defaultDataDir           = "~/.local/share/replay"
	defaultLogDir            = "~/.local/share/replay/logs"
	defaultAPIBind           = "127.0.0.1:7488"
	defaultYouTubeBaseURL    = "https://www.googleapis.com/youtube/v3"
	defaultMaxPages          = 3
	defaultPageSize          = 50
	defaultRequestsPerSecond = 5
	defaultYouTubeTimeout    = 15
	defaultMaxAttempts       = 12
	defaultWindowDaysBefore  = 1
	defaultWindowDaysAfter   = 2
	defaultMaxCandidates     = 10
	defaultStoreDriver       = "sqlite"
	defaultCacheTTL          = 6 * 60 * 60
	defaultCacheMaxEntries   = 5000
	defaultGeoLookupURL      = "http://ip-api.com/json"
	defaultGeoTimeout        = 2
	defaultNotifyTimeout     = 10
	defaultAWSRegion         = "us-east-1"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultLogRetentionDays  = 14
	envYouTubeAPIKeys        = "YOUTUBE_API_KEYS"
	envYouTubeAPIKey         = "YOUTUBE_API_KEY"
	envDatabaseURL           = "DATABASE_URL"
	envRedisURL              = "REDIS_URL"
	envNtfyTopic             = "NTFY_TOPIC"
	envAWSRegion             = "AWS_REGION"
	envNotificationEmailTo   = "NOTIFICATION_EMAIL"
	envNotificationEmailFrom = "SES_FROM_EMAIL"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		YouTube: YouTube{
			BaseURL:           defaultYouTubeBaseURL,
			MaxPages:          defaultMaxPages,
			PageSize:          defaultPageSize,
			RequestsPerSecond: defaultRequestsPerSecond,
			RequestTimeout:    defaultYouTubeTimeout,
		},
		Fetch: Fetch{
			MaxAttempts:      defaultMaxAttempts,
			WindowDaysBefore: defaultWindowDaysBefore,
			WindowDaysAfter:  defaultWindowDaysAfter,
			MaxCandidates:    defaultMaxCandidates,
		},
		Interest: Interest{
			Teams: map[string][]string{
				"Premier League": {"Arsenal", "Chelsea", "Liverpool", "Manchester City", "Manchester United", "Tottenham Hotspur"},
				"La Liga":        {"Real Madrid", "Barcelona", "Atlético Madrid", "Villarreal"},
				"Ligue 1":        {"Paris Saint-Germain"},
				"Bundesliga":     {"Bayern Munich", "Borussia Dortmund", "Bayer Leverkusen"},
				"Serie A":        {"Juventus", "Inter Milan", "AC Milan", "AS Roma", "Napoli"},
			},
			AllMatchLeagues:      []string{"Champions League"},
			FilteredCompetitions: []string{"Europa League"},
			CupToLeague: map[string]string{
				"FA Cup":          "Premier League",
				"League Cup":      "Premier League",
				"Copa del Rey":    "La Liga",
				"Coupe de France": "Ligue 1",
				"DFB-Pokal":       "Bundesliga",
				"Coppa Italia":    "Serie A",
			},
		},
		Store: Store{
			Driver: defaultStoreDriver,
		},
		Cache: Cache{
			TTL:        defaultCacheTTL,
			MaxEntries: defaultCacheMaxEntries,
		},
		Geo: Geo{
			LookupURL: defaultGeoLookupURL,
			Timeout:   defaultGeoTimeout,
		},
		Notifications: Notifications{
			RequestTimeout:    defaultNotifyTimeout,
			AWSRegion:         defaultAWSRegion,
			MissingHighlights: true,
			Quota:             true,
			Batch:             false,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
