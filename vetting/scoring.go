package vetting

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"url-vetting/lexical"
)

// RiskSummary is the outcome of one heuristic run.
type RiskSummary struct {
	Score     int           `json:"score"`
	Status    Status        `json:"status"`
	Reasons   []ScoreReason `json:"reasons"`
	BaseScore int           `json:"base_score"`
}

// Messages returns the rendered reasons in application order.
func (s RiskSummary) Messages() []string {
	out := make([]string, len(s.Reasons))
	for i, r := range s.Reasons {
		out[i] = r.String()
	}
	return out
}

// Scorer applies the weighted URL and DOM rules. The zero value is not
// usable; build one with NewScorer.
type Scorer struct {
	shorteners     map[string]struct{}
	suspiciousTLDs map[string]struct{}
	brands         []string
	words          []string
}

// NewScorer returns a Scorer using the default rule lists.
func NewScorer() *Scorer {
	return &Scorer{
		shorteners:     toSet(Shorteners),
		suspiciousTLDs: toSet(SuspiciousTLDs),
		brands:         Brands,
		words:          SuspiciousWords,
	}
}

// breakdown accumulates applied rules in order.
type breakdown struct {
	score   int
	reasons []ScoreReason
}

func (b *breakdown) apply(weight int, format string, args ...any) {
	b.score += weight
	b.reasons = append(b.reasons, ScoreReason{Message: fmt.Sprintf(format, args...), Weight: weight})
}

// CalculateScore scores rawURL together with optional DOM signals and
// certificate info. It never fails: an unparseable URL costs a fixed
// penalty and skips the URL-structure rules.
func (s *Scorer) CalculateScore(rawURL string, signals *Signals, cert *CertificateInfo) RiskSummary {
	b := &breakdown{score: BaseScore}

	if rawURL == "" {
		return RiskSummary{
			Score:     BaseScore,
			Status:    StatusUnknown,
			Reasons:   []ScoreReason{{Message: "No URL"}},
			BaseScore: BaseScore,
		}
	}

	if u, err := lexical.ParseAbsolute(rawURL); err != nil {
		b.apply(weightMalformedURL, "Malformed URL")
	} else {
		host := strings.TrimPrefix(u.Hostname(), "www.")
		pathQuery := u.EscapedPath()
		if pathQuery == "" {
			pathQuery = "/"
		}
		if u.RawQuery != "" {
			pathQuery += "?" + u.RawQuery
		}
		s.scoreURL(b, rawURL, host, pathQuery, cert)
	}

	scoreSignals(b, signals)

	score := clamp(b.score, 0, 100)
	return RiskSummary{
		Score:     score,
		Status:    StatusForScore(score),
		Reasons:   b.reasons,
		BaseScore: BaseScore,
	}
}

func (s *Scorer) scoreURL(b *breakdown, rawURL, host, pathQuery string, cert *CertificateInfo) {
	lower := strings.ToLower(rawURL)

	// Transport and certificate
	if strings.HasPrefix(lower, "https://") {
		b.apply(weightHTTPS, "Uses HTTPS")
		if cert != nil && cert.ValidityDurationDays != 0 {
			days := cert.ValidityDurationDays
			if days <= shortCertificateMaxDays {
				b.apply(weightShortCertificate, "Short SSL certificate validity (%d days)", days)
			} else if days >= longCertificateMinDays {
				b.apply(weightLongCertificate, "Long SSL certificate validity (%d days)", days)
			}
		}
	} else if strings.HasPrefix(lower, "http://") {
		b.apply(weightNoHTTPS, "No HTTPS")
	}

	if utf8.RuneCountInString(rawURL) >= longURLMinLength {
		b.apply(weightLongURL, "Long URL (>75)")
	}

	if lexical.ShannonEntropy(host+pathQuery) >= highEntropyMinBits {
		b.apply(weightHighEntropy, "High URL entropy")
	}

	// Structure
	if strings.Count(host, ".") >= manySubdomainsMinDots {
		b.apply(weightManySubdomains, "Many subdomains")
	}
	if strings.Contains(host, "-") {
		b.apply(weightHyphen, "Hyphen in domain")
	}
	if _, ok := s.shorteners[host]; ok {
		b.apply(weightShortener, "URL shortener")
	}
	tld := host[strings.LastIndex(host, ".")+1:]
	if _, ok := s.suspiciousTLDs[tld]; ok {
		b.apply(weightSuspiciousTLD, "Suspicious TLD .%s", tld)
	}

	// Obfuscation
	if strings.Contains(lower, "@") {
		b.apply(weightAtSymbol, "Contains '@'")
	}
	if len(pathQuery) >= symbolDensityMinLength && symbolDensity(pathQuery) > symbolDensityMin {
		b.apply(weightSymbolDensity, "High symbol density in path/query")
	}
	if strings.Contains(host, "xn--") {
		b.apply(weightPunycode, "IDN/punycode domain")
	}

	// Impersonation
	for _, brand := range s.impersonatedBrands(host) {
		b.apply(weightBrandImpersonation, "Brand impersonation detected: '%s'", brand)
	}

	// Keywords
	var hits []string
	for _, w := range s.words {
		if strings.Contains(lower, w) {
			hits = append(hits, w)
		}
	}
	switch {
	case len(hits) >= 2:
		shown := hits[:min(len(hits), maxKeywordsInReason)]
		b.apply(weightKeywordMany, "Suspicious keywords in URL: %s", strings.Join(shown, ", "))
	case len(hits) == 1:
		b.apply(weightKeywordSingle, "Keyword '%s' in URL", hits[0])
	}
}

// impersonatedBrands returns each brand at most once, in the order first
// matched. A label impersonates a brand when it contains the brand token,
// sits within brandMaxDistance edits of it, and the host is not the brand's
// own .com zone.
func (s *Scorer) impersonatedBrands(host string) []string {
	var matched []string
	seen := make(map[string]bool)
	for _, label := range strings.Split(host, ".") {
		for _, brand := range s.brands {
			if seen[brand] || !strings.Contains(label, brand) {
				continue
			}
			if strings.HasSuffix(host, "."+brand+".com") {
				continue
			}
			if lexical.Levenshtein(label, brand) <= brandMaxDistance {
				seen[brand] = true
				matched = append(matched, brand)
			}
		}
	}
	return matched
}

func scoreSignals(b *breakdown, signals *Signals) {
	if signals == nil {
		return
	}
	if signals.PasswordForms > 0 {
		b.apply(weightPasswordForm, "Password form present")
	}
	if len(signals.BodyKeywords) > 0 {
		b.apply(weightBodyKeywords, "Phishing keywords in body: %s", strings.Join(signals.BodyKeywords, ", "))
	}
	if len(signals.SuspiciousFormActions) > 0 {
		b.apply(weightExternalFormAction, "Form submits data to external domain: %s", signals.SuspiciousFormActions[0])
	}
	if signals.HiddenElements >= hiddenElementsMin {
		b.apply(weightHiddenElements, "High number of hidden elements (%d)", signals.HiddenElements)
	}
}

// symbolDensity is the share of characters outside [A-Za-z0-9_/].
func symbolDensity(s string) float64 {
	symbols := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '/':
		default:
			symbols++
		}
	}
	return float64(symbols) / float64(max(1, len(s)))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
