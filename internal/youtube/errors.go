package youtube

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrQuotaExceeded matches any APIError caused by exhausted key quota.
var ErrQuotaExceeded = errors.New("youtube quota exceeded")

var quotaReasons = map[string]struct{}{
	"quotaExceeded":      {},
	"dailyLimitExceeded": {},
}

// rateLimitReasons are short-lived per-second limits; the request is retried
// with the same key.
var rateLimitReasons = map[string]struct{}{
	"rateLimitExceeded":     {},
	"userRateLimitExceeded": {},
}

// APIError describes a non-2xx response from the Data API.
type APIError struct {
	Status  int
	Reason  string
	Message string
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("youtube api returned %d (%s): %s", e.Status, e.Reason, e.Message)
	}
	return fmt.Sprintf("youtube api returned %d: %s", e.Status, e.Message)
}

// Is lets errors.Is(err, ErrQuotaExceeded) classify quota failures.
func (e *APIError) Is(target error) bool {
	return target == ErrQuotaExceeded && e.Quota()
}

// Quota reports whether the error was caused by key quota.
func (e *APIError) Quota() bool {
	if e.Status != 403 && e.Status != 429 {
		return false
	}
	_, ok := quotaReasons[e.Reason]
	return ok
}

// RateLimited reports whether the error is a per-second limit that clears
// after backing off.
func (e *APIError) RateLimited() bool {
	if e.Status != 403 && e.Status != 429 {
		return false
	}
	_, ok := rateLimitReasons[e.Reason]
	return ok
}

// IsQuotaError reports whether err was caused by exhausted key quota.
func IsQuotaError(err error) bool {
	return errors.Is(err, ErrQuotaExceeded)
}

type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason  string `json:"reason"`
			Message string `json:"message"`
		} `json:"errors"`
	} `json:"error"`
}

func parseAPIError(status int, body io.Reader) *APIError {
	raw, _ := io.ReadAll(io.LimitReader(body, 4096))
	apiErr := &APIError{Status: status}
	var envelope errorEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil {
		apiErr.Message = envelope.Error.Message
		if len(envelope.Error.Errors) > 0 {
			apiErr.Reason = envelope.Error.Errors[0].Reason
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}
