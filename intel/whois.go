package intel

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"

	"url-vetting/lexical"
)

// Registration is the WHOIS view of a domain. It is reported alongside an
// analysis and never feeds the score.
type Registration struct {
	Domain    string `json:"domain"`
	AgeDays   int    `json:"age_days"`
	CreatedOn string `json:"created_on,omitempty"`
	UpdatedOn string `json:"updated_on,omitempty"`
	ExpiresOn string `json:"expires_on,omitempty"`
}

var whoisDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-Jan-2006",
	"2006.01.02",
}

// WhoisLookup queries WHOIS for a host, falling back to its registrable
// domain when the host itself has no record.
type WhoisLookup struct {
	query func(domain string) (string, error)
	parse func(raw string) (whoisparser.WhoisInfo, error)
	now   func() time.Time
}

func NewWhoisLookup() *WhoisLookup {
	return &WhoisLookup{
		query: func(domain string) (string, error) { return whois.Whois(domain) },
		parse: whoisparser.Parse,
		now:   time.Now,
	}
}

// Lookup returns the registration of host. The WHOIS client is not
// context-aware, so ctx only bounds how long the caller waits.
func (w *WhoisLookup) Lookup(ctx context.Context, host string) (*Registration, error) {
	host = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(host)), "www.")
	if host == "" {
		return nil, fmt.Errorf("whois: empty domain")
	}

	type answer struct {
		reg *Registration
		err error
	}
	done := make(chan answer, 1)
	go func() {
		reg, err := w.lookup(host)
		done <- answer{reg, err}
	}()

	select {
	case a := <-done:
		return a.reg, a.err
	case <-ctx.Done():
		return nil, fmt.Errorf("whois %s: %w", host, ctx.Err())
	}
}

func (w *WhoisLookup) lookup(host string) (*Registration, error) {
	candidates := []string{host}
	if root := lexical.RegistrableDomain(host); root != host {
		candidates = append(candidates, root)
	}

	var lastErr error
	for _, domain := range candidates {
		raw, err := w.query(domain)
		if err != nil {
			lastErr = fmt.Errorf("whois %s: %w", domain, err)
			continue
		}
		info, err := w.parse(raw)
		if err != nil || info.Domain == nil {
			// Subdomains usually have no record of their own.
			lastErr = fmt.Errorf("whois %s: no domain record", domain)
			continue
		}

		created := parseWhoisDate(info.Domain.CreatedDate)
		if created.IsZero() {
			lastErr = fmt.Errorf("whois %s: creation date %q not understood", domain, info.Domain.CreatedDate)
			continue
		}
		reg := &Registration{
			Domain:    domain,
			AgeDays:   int(w.now().Sub(created).Hours() / 24),
			CreatedOn: created.Format("02/01/2006"),
			UpdatedOn: formatWhoisDate(info.Domain.UpdatedDate),
			ExpiresOn: formatWhoisDate(info.Domain.ExpirationDate),
		}
		log.Printf("[Whois] %s registered %s (%d days)", domain, reg.CreatedOn, reg.AgeDays)
		return reg, nil
	}
	return nil, lastErr
}

func parseWhoisDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, l := range whoisDateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func formatWhoisDate(s string) string {
	t := parseWhoisDate(s)
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}
