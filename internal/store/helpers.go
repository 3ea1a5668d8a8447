package store

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"
)

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return formatTime(t)
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return parsed.UTC()
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func nullableInt(value *int) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullableInt64(value *int64) any {
	if value == nil {
		return nil
	}
	return *value
}

func intPtr(value sql.NullInt64) *int {
	if !value.Valid {
		return nil
	}
	v := int(value.Int64)
	return &v
}

func int64Ptr(value sql.NullInt64) *int64 {
	if !value.Valid {
		return nil
	}
	v := value.Int64
	return &v
}

// EncodeRegions serialises a region list as a JSON array, or NULL when empty.
func EncodeRegions(regions []string) any {
	if len(regions) == 0 {
		return nil
	}
	data, err := json.Marshal(regions)
	if err != nil {
		return nil
	}
	return string(data)
}

// DecodeRegions parses a JSON array column.
func DecodeRegions(value sql.NullString) []string {
	if !value.Valid || value.String == "" {
		return nil
	}
	var regions []string
	if err := json.Unmarshal([]byte(value.String), &regions); err != nil {
		return nil
	}
	return regions
}

// DayBounds returns the UTC calendar day containing t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}
