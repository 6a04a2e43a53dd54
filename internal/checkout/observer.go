// Package checkout decides the outcome of an embedded payment flow by
// watching the URLs the browsing surface navigates to.
package checkout

import (
	"net/url"
	"strings"
	"sync"
)

type Decision int

const (
	Allow Decision = iota
	Suppress
)

// Config holds the three disjoint pattern sets and their callbacks. A
// pattern matches a navigation when it appears as a substring of the URL
// or names a present query parameter.
type Config struct {
	Success []string
	Cancel  []string
	Error   []string

	OnSuccess func(url string)
	OnCancel  func(url string)
	OnError   func(url string)
}

type Observer struct {
	mu       sync.Mutex
	resolved bool
	cfg      Config
}

func NewObserver(cfg Config) *Observer {
	return &Observer{cfg: cfg}
}

// Observe classifies one navigation target. The first match of any set
// fires its callback exactly once and suppresses the navigation; matching
// navigations after resolution are suppressed without a second callback;
// unmatched navigations proceed.
func (o *Observer) Observe(rawURL string) Decision {
	parsed, _ := url.Parse(rawURL)

	var callback func(string)
	switch {
	case matchAny(rawURL, parsed, o.cfg.Success):
		callback = o.cfg.OnSuccess
	case matchAny(rawURL, parsed, o.cfg.Cancel):
		callback = o.cfg.OnCancel
	case matchAny(rawURL, parsed, o.cfg.Error):
		callback = o.cfg.OnError
	default:
		return Allow
	}

	o.mu.Lock()
	alreadyResolved := o.resolved
	o.resolved = true
	o.mu.Unlock()

	if !alreadyResolved && callback != nil {
		callback(rawURL)
	}

	return Suppress
}

// Resolved reports whether an outcome has already fired.
func (o *Observer) Resolved() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.resolved
}

func matchAny(raw string, parsed *url.URL, patterns []string) bool {
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if strings.Contains(raw, p) {
			return true
		}
		if parsed != nil && parsed.Query().Has(p) {
			return true
		}
	}
	return false
}
