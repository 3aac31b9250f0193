package intel

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"url-vetting/lexical"
	"url-vetting/vetting"
)

const spamhausEndpoint = "https://www.spamhaus.org/api/v1/sia-proxy/api/intel/v2/byobject/domain"

// SpamhausOverview is the domain overview returned by Spamhaus intel.
type SpamhausOverview struct {
	Domain     string   `json:"domain"`
	Score      float64  `json:"score"`
	Abused     bool     `json:"abused"`
	Tags       []string `json:"tags"`
	Dimensions struct {
		Human    float64 `json:"human"`
		Identity float64 `json:"identity"`
		Infra    float64 `json:"infra"`
		Malware  float64 `json:"malware"`
		SMTP     float64 `json:"smtp"`
	} `json:"dimensions"`
}

// Spamhaus flags registrable domains Spamhaus marks as abused.
type Spamhaus struct {
	APIKey   string
	Endpoint string
	Client   *http.Client
}

func NewSpamhaus(apiKey string) *Spamhaus {
	return &Spamhaus{
		APIKey:   apiKey,
		Endpoint: spamhausEndpoint,
		Client:   &http.Client{Timeout: 8 * time.Second},
	}
}

// Overview fetches the intel overview for domain.
func (s *Spamhaus) Overview(ctx context.Context, domain string) (*SpamhausOverview, error) {
	if s.APIKey == "" {
		return nil, fmt.Errorf("missing SPAMHAUS_API_KEY")
	}

	endpoint := fmt.Sprintf("%s/%s/overview", s.Endpoint, url.PathEscape(domain))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &SpamhausOverview{Domain: domain}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("spamhaus error: %v", resp.Status)
	}

	var data SpamhausOverview
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode spamhaus overview: %w", err)
	}
	return &data, nil
}

// CheckReputation implements vetting.ReputationChecker.
func (s *Spamhaus) CheckReputation(ctx context.Context, rawURL string) vetting.Reputation {
	if s.APIKey == "" {
		return vetting.Reputation{}
	}
	host, ok := lexical.Hostname(rawURL)
	if !ok {
		return vetting.Reputation{}
	}
	domain := lexical.RegistrableDomain(host)

	overview, err := s.Overview(ctx, domain)
	if err != nil {
		log.Printf("[Spamhaus] lookup failed for %s: %v", domain, err)
		return vetting.Reputation{}
	}
	if !overview.Abused {
		return vetting.Reputation{}
	}
	log.Printf("[Spamhaus] ⚠️ %s marked abused (score %.1f)", domain, overview.Score)
	return vetting.Reputation{Malicious: true, Source: "Spamhaus", Details: overview}
}
