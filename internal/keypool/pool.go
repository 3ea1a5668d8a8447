// Package keypool holds the ordered API credentials for a single fetch run.
//
// A Pool is constructed per orchestrator invocation and passed to every
// scanner and enrichment call. Rotate advances to the next credential after
// the platform reports quota exhaustion; once the last credential has been
// rotated past, the pool stays exhausted for the rest of the run. Nothing is
// persisted: the platform's own daily quota reset is what makes the keys
// usable again on the next run.
package keypool

import (
	"errors"
	"strings"
	"sync"
)

var (
	// ErrNoKeys is returned when the pool was built without any credentials.
	ErrNoKeys = errors.New("no api keys configured")
	// ErrExhausted is returned once every credential has been rotated past.
	ErrExhausted = errors.New("api key pool exhausted")
)

// Pool is an ordered list of API keys with a current index.
type Pool struct {
	mu        sync.Mutex
	keys      []string
	index     int
	exhausted bool
}

// New builds a pool from keys, dropping blanks and duplicates while keeping order.
func New(keys []string) *Pool {
	seen := make(map[string]struct{}, len(keys))
	cleaned := make([]string, 0, len(keys))
	for _, key := range keys {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, key)
	}
	return &Pool{keys: cleaned}
}

// Current returns the active credential.
func (p *Pool) Current() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.keys) == 0 {
		return "", ErrNoKeys
	}
	if p.exhausted {
		return "", ErrExhausted
	}
	return p.keys[p.index], nil
}

// Rotate advances to the next credential. It returns ErrExhausted when no
// further credentials remain; the pool then refuses to hand out keys.
func (p *Pool) Rotate() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.keys) == 0 {
		return ErrNoKeys
	}
	if p.exhausted || p.index+1 >= len(p.keys) {
		p.exhausted = true
		return ErrExhausted
	}
	p.index++
	return nil
}

// Exhausted reports whether the pool has run out of credentials.
func (p *Pool) Exhausted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exhausted
}

// Len returns the number of usable credentials configured.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.keys)
}

// Position returns the 1-based index of the active credential, for logging.
func (p *Pool) Position() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.keys) == 0 {
		return 0
	}
	return p.index + 1
}
