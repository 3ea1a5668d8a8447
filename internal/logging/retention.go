package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	dailyLogPrefix = "replay-"
	dailyLogSuffix = ".log"
)

// DailyLogPath returns the log file used for records written on day.
func DailyLogPath(dir string, day time.Time) string {
	return filepath.Join(dir, dailyLogPrefix+day.Format(time.DateOnly)+dailyLogSuffix)
}

// dailyLogDay extracts the day from a replay-YYYY-MM-DD.log file name.
func dailyLogDay(name string, loc *time.Location) (time.Time, bool) {
	if !strings.HasPrefix(name, dailyLogPrefix) || !strings.HasSuffix(name, dailyLogSuffix) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, dailyLogPrefix), dailyLogSuffix)
	day, err := time.ParseInLocation(time.DateOnly, stamp, loc)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

// pruneDailyLogs removes daily files whose day is more than retentionDays
// before today. The day comes from the file name, so copied or touched files
// age the same as untouched ones. Other files in dir are left alone.
func pruneDailyLogs(logger *slog.Logger, dir string, retentionDays int, today time.Time) int {
	if retentionDays <= 0 || strings.TrimSpace(dir) == "" {
		return 0
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	cutoff := start.AddDate(0, 0, -retentionDays)

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		day, ok := dailyLogDay(entry.Name(), today.Location())
		if !ok || !day.Before(cutoff) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			WarnWithContext(logger, "log retention remove failed; file remains", "log_retention_failed",
				String("path", path),
				Error(err),
				String(FieldErrorHint, "check log_dir ownership"),
				String(FieldImpact, "old daily log stays on disk"),
			)
			continue
		}
		removed++
	}
	if removed > 0 && logger != nil {
		logger.Debug("daily logs pruned",
			String(FieldEventType, "log_pruned"),
			Int("removed", removed),
			Int("retention_days", retentionDays),
		)
	}
	return removed
}
