package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"replay/internal/cache"
	"replay/internal/logging"
)

// DefaultLookupURL is the free ip-api.com JSON endpoint.
const DefaultLookupURL = "http://ip-api.com/json"

type lookupResponse struct {
	Status      string `json:"status"`
	CountryCode string `json:"countryCode"`
}

// Locator resolves IP addresses to country codes.
type Locator struct {
	baseURL    string
	httpClient *http.Client
	cache      *cache.Cache
	logger     *slog.Logger
}

// Option configures a Locator.
type Option func(*Locator)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(l *Locator) {
		if client != nil {
			l.httpClient = client
		}
	}
}

// WithCache shares a cache (typically Redis backed) across locators.
func WithCache(c *cache.Cache) Option {
	return func(l *Locator) {
		if c != nil {
			l.cache = c
		}
	}
}

// WithLogger attaches a logger for lookup failures.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Locator) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLocator builds a locator against baseURL (DefaultLookupURL when empty).
func NewLocator(baseURL string, timeout time.Duration, opts ...Option) (*Locator, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultLookupURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse geo lookup url: %w", err)
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	l := &Locator{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.cache == nil {
		l.cache = cache.New(context.Background(), cache.Options{TTL: 24 * time.Hour, MaxEntries: 10000, Prefix: "geo"}, l.logger)
	}
	return l, nil
}

// Country returns the country code for ip, or "" when it cannot be
// determined. Lookup failures are logged and never returned to the caller.
func (l *Locator) Country(ctx context.Context, ip string) string {
	addr, ok := PublicAddr(ip)
	if !ok {
		return ""
	}
	key := l.cache.Key("geo", addr.String())
	if data, hit := l.cache.Get(ctx, key); hit {
		return string(data)
	}
	country, err := l.lookup(ctx, addr)
	if err != nil {
		l.logger.Debug("geo lookup failed",
			logging.String("ip", addr.String()),
			logging.Error(err),
		)
		return ""
	}
	l.cache.Set(ctx, key, []byte(country))
	return country
}

func (l *Locator) lookup(ctx context.Context, addr netip.Addr) (string, error) {
	endpoint, err := url.Parse(l.baseURL + "/" + url.PathEscape(addr.String()))
	if err != nil {
		return "", fmt.Errorf("parse geo url: %w", err)
	}
	params := url.Values{}
	params.Set("fields", "countryCode,status")
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	requestStart := time.Now()
	resp, err := l.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return "", fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geo lookup returned %d (latency=%v)", resp.StatusCode, latency)
	}
	var payload lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode geo response: %w", err)
	}
	if payload.Status != "success" {
		return "", fmt.Errorf("geo lookup status %q", payload.Status)
	}
	country := NormalizeRegion(payload.CountryCode)
	if country == "" {
		return "", errors.New("geo lookup returned no country")
	}
	return country, nil
}

// PublicAddr parses ip and reports whether it is a routable public address.
func PublicAddr(ip string) (netip.Addr, bool) {
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return netip.Addr{}, false
	}
	addr = addr.Unmap()
	if addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() ||
		addr.IsLinkLocalUnicast() || addr.IsMulticast() {
		return netip.Addr{}, false
	}
	return addr, true
}
