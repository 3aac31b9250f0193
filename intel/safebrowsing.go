// Package intel implements the network collaborators of the analyzer:
// reputation sources, the TLS certificate provider and WHOIS registration
// lookups. Every source degrades to a neutral answer on failure.
package intel

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"url-vetting/vetting"
)

const safeBrowsingEndpoint = "https://safebrowsing.googleapis.com/v4/threatMatches:find"

// SafeBrowsingThreatTypes are the threat lists queried on every lookup.
var SafeBrowsingThreatTypes = []string{
	"MALWARE",
	"SOCIAL_ENGINEERING",
	"UNWANTED_SOFTWARE",
	"POTENTIALLY_HARMFUL_APPLICATION",
}

type sbClient struct {
	ClientID      string `json:"clientId"`
	ClientVersion string `json:"clientVersion"`
}

type sbEntry struct {
	URL string `json:"url"`
}

type sbThreatInfo struct {
	ThreatTypes      []string  `json:"threatTypes"`
	PlatformTypes    []string  `json:"platformTypes"`
	ThreatEntryTypes []string  `json:"threatEntryTypes"`
	ThreatEntries    []sbEntry `json:"threatEntries"`
}

type sbRequest struct {
	Client     sbClient     `json:"client"`
	ThreatInfo sbThreatInfo `json:"threatInfo"`
}

// ThreatMatch is one Safe Browsing hit.
type ThreatMatch struct {
	ThreatType      string  `json:"threatType"`
	PlatformType    string  `json:"platformType"`
	ThreatEntryType string  `json:"threatEntryType"`
	Threat          sbEntry `json:"threat"`
	CacheDuration   string  `json:"cacheDuration,omitempty"`
}

type sbResponse struct {
	Matches []ThreatMatch `json:"matches"`
}

// SafeBrowsing queries the Google Safe Browsing v4 lookup API.
type SafeBrowsing struct {
	APIKey   string
	Endpoint string
	Client   *http.Client
	// Limiter keeps lookups under the API quota. Nil means unlimited.
	Limiter *rate.Limiter
}

// NewSafeBrowsing returns a checker for apiKey. An empty key makes every
// lookup report "not malicious" without touching the network.
func NewSafeBrowsing(apiKey string) *SafeBrowsing {
	return &SafeBrowsing{
		APIKey:   apiKey,
		Endpoint: safeBrowsingEndpoint,
		Client:   &http.Client{Timeout: 6 * time.Second},
		Limiter:  rate.NewLimiter(rate.Every(100*time.Millisecond), 10),
	}
}

// CheckReputation implements vetting.ReputationChecker.
func (s *SafeBrowsing) CheckReputation(ctx context.Context, rawURL string) vetting.Reputation {
	if s.APIKey == "" {
		return vetting.Reputation{}
	}
	if s.Limiter != nil {
		if err := s.Limiter.Wait(ctx); err != nil {
			log.Printf("[SafeBrowsing] skipped %s: %v", rawURL, err)
			return vetting.Reputation{}
		}
	}

	body, err := json.Marshal(sbRequest{
		Client: sbClient{ClientID: "url-vetting", ClientVersion: "1.0"},
		ThreatInfo: sbThreatInfo{
			ThreatTypes:      SafeBrowsingThreatTypes,
			PlatformTypes:    []string{"ANY_PLATFORM"},
			ThreatEntryTypes: []string{"URL"},
			ThreatEntries:    []sbEntry{{URL: rawURL}},
		},
	})
	if err != nil {
		return vetting.Reputation{}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint+"?key="+url.QueryEscape(s.APIKey), bytes.NewReader(body))
	if err != nil {
		return vetting.Reputation{}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		// The error string embeds the request URL and with it the key.
		log.Printf("[SafeBrowsing] request failed for %s", rawURL)
		return vetting.Reputation{}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("[SafeBrowsing] unexpected status %d for %s", resp.StatusCode, rawURL)
		_, _ = io.Copy(io.Discard, resp.Body)
		return vetting.Reputation{}
	}

	var result sbResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil && err != io.EOF {
		log.Printf("[SafeBrowsing] bad response for %s: %v", rawURL, err)
		return vetting.Reputation{}
	}
	if len(result.Matches) == 0 {
		return vetting.Reputation{}
	}

	log.Printf("[SafeBrowsing] ⚠️ %s flagged (%s)", rawURL, result.Matches[0].ThreatType)
	return vetting.Reputation{
		Malicious: true,
		Source:    "Google Safe Browsing",
		Details:   result.Matches,
	}
}
