// Package lexical holds the pure string helpers used by the scorer and the
// list resolver: domain normalization, Shannon entropy and edit distance.
package lexical

import (
	"math"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

// NormalizeDomain returns the hostname of value with a leading "www."
// removed when value is an absolute URL. Anything else (a bare domain, a
// malformed URL) is returned unchanged.
func NormalizeDomain(value string) string {
	host, ok := Hostname(value)
	if !ok {
		return value
	}
	return strings.TrimPrefix(host, "www.")
}

// Hostname parses raw as an absolute URL and returns its lowercased ASCII
// hostname. ok is false when raw is not an absolute URL with a host.
func Hostname(raw string) (string, bool) {
	u, err := ParseAbsolute(raw)
	if err != nil {
		return "", false
	}
	return u.Hostname(), true
}

// ParseAbsolute parses raw and requires a scheme and a host, the way a
// browser URL constructor does. The returned URL has its host lowercased
// and IDNA-encoded.
func ParseAbsolute(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() || u.Hostname() == "" {
		return nil, &url.Error{Op: "parse", URL: raw, Err: errNotAbsolute}
	}
	host := strings.ToLower(u.Hostname())
	if ascii, err := idna.Lookup.ToASCII(host); err == nil && ascii != "" {
		host = ascii
	}
	switch port := u.Port(); {
	case port != "":
		u.Host = net.JoinHostPort(host, port)
	case strings.Contains(host, ":"):
		u.Host = "[" + host + "]"
	default:
		u.Host = host
	}
	return u, nil
}

type parseError string

func (e parseError) Error() string { return string(e) }

const errNotAbsolute = parseError("not an absolute URL")

// RegistrableDomain returns the eTLD+1 of host, or host itself when the
// public suffix list cannot place it (IP literals, single labels).
func RegistrableDomain(host string) string {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if net.ParseIP(strings.Trim(host, "[]")) != nil {
		return host
	}
	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return registrable
}

// ShannonEntropy returns the character-frequency entropy of s in bits.
func ShannonEntropy(s string) float64 {
	if len(s) == 0 {
		return 0
	}

	freq := make(map[rune]int)
	total := 0
	for _, ch := range s {
		freq[ch]++
		total++
	}

	entropy := 0.0
	length := float64(total)
	for _, count := range freq {
		p := float64(count) / length
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// Levenshtein returns the case-insensitive edit distance between a and b.
func Levenshtein(a, b string) int {
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))
	m, n := len(ra), len(rb)
	if m == 0 {
		return n
	}
	if n == 0 {
		return m
	}

	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
		dp[i][0] = i
	}
	for j := 0; j <= n; j++ {
		dp[0][j] = j
	}

	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			dp[i][j] = min(
				dp[i-1][j]+1,      // deletion
				dp[i][j-1]+1,      // insertion
				dp[i-1][j-1]+cost, // substitution
			)
		}
	}
	return dp[m][n]
}
