package api

import (
	"context"
	"net"
	"net/http"
	"strings"

	"replay/internal/geo"
)

// CountryLocator resolves a client IP to a region code.
type CountryLocator interface {
	Country(ctx context.Context, ip string) string
}

var regionHeaders = []string{"CF-IPCountry", "X-Country"}

// regionFor picks the caller's region. It returns "" when unknown.
func (s *Server) regionFor(r *http.Request) string {
	if region := geo.NormalizeRegion(r.URL.Query().Get("region")); region != "" {
		return region
	}
	for _, header := range regionHeaders {
		if region := geo.NormalizeRegion(r.Header.Get(header)); region != "" {
			return region
		}
	}
	if s.locator == nil {
		return ""
	}
	return geo.NormalizeRegion(s.locator.Country(r.Context(), clientIP(r)))
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
