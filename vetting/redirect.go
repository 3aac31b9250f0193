package vetting

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"url-vetting/lexical"
)

// RedirectExpander resolves one hop of a known link shortener. Chains of
// shorteners are not followed: only the first Location is returned.
type RedirectExpander struct {
	client     *http.Client
	shorteners map[string]struct{}
	userAgent  string
}

// NewRedirectExpander returns an expander for the given shortener hosts.
// A nil client gets a default one with timeout.
func NewRedirectExpander(client *http.Client, shorteners []string, timeout time.Duration) *RedirectExpander {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	// Never follow: the first Location is the answer.
	c := *client
	c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	if c.Timeout == 0 {
		c.Timeout = timeout
	}
	return &RedirectExpander{
		client:     &c,
		shorteners: toSet(shorteners),
		userAgent:  "url-vetting/1.0",
	}
}

// IsShortener reports whether rawURL's host is a known shortener.
func (e *RedirectExpander) IsShortener(rawURL string) bool {
	host, ok := lexical.Hostname(rawURL)
	if !ok {
		return false
	}
	_, found := e.shorteners[host]
	return found
}

// Expand returns the redirect target of a shortener URL, or rawURL itself
// when the host is not a shortener or the probe fails in any way.
func (e *RedirectExpander) Expand(ctx context.Context, rawURL string) string {
	if !e.IsShortener(rawURL) {
		return rawURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return rawURL
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		log.Printf("[Redirect] probe failed for %s: %v", rawURL, err)
		return rawURL
	}
	defer resp.Body.Close()

	location := strings.TrimSpace(resp.Header.Get("Location"))
	if resp.StatusCode < 300 || resp.StatusCode >= 400 || location == "" {
		return rawURL
	}
	// Location may be relative.
	target, err := req.URL.Parse(location)
	if err != nil {
		log.Printf("[Redirect] bad Location %q from %s: %v", location, rawURL, err)
		return rawURL
	}
	log.Printf("[Redirect] %s -> %s", rawURL, target)
	return target.String()
}
