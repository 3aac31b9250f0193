package vetting

import "fmt"

// Status is the verdict label attached to every AnalysisResult.
type Status string

const (
	StatusWhitelisted Status = "whitelisted"
	StatusBlacklisted Status = "blacklisted"
	StatusKnownPhish  Status = "known_phish"
	StatusSafe        Status = "safe"
	StatusSuspicious  Status = "suspicious"
	StatusDangerous   Status = "dangerous"
	StatusUnknown     Status = "unknown"
)

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusWhitelisted, StatusBlacklisted, StatusKnownPhish,
		StatusSafe, StatusSuspicious, StatusDangerous, StatusUnknown:
		return true
	}
	return false
}

// Blocking reports whether callers should interrupt navigation for s.
func (s Status) Blocking() bool {
	switch s {
	case StatusBlacklisted, StatusKnownPhish, StatusSuspicious, StatusDangerous:
		return true
	}
	return false
}

// StatusForScore maps a heuristic score onto safe/suspicious/dangerous.
// Callers must use this instead of repeating the thresholds.
func StatusForScore(score int) Status {
	thresholds := DefaultScoringThresholds()
	switch {
	case score <= thresholds.SafeMax:
		return StatusSafe
	case score >= thresholds.DangerousMin:
		return StatusDangerous
	default:
		return StatusSuspicious
	}
}

// CertificateInfo summarizes the TLS certificate served for a page.
type CertificateInfo struct {
	Issuer               string `json:"issuer,omitempty"`
	ValidityDurationDays int    `json:"validity_duration_days"` // NotAfter - NotBefore
}

// Signals are DOM-derived counts supplied by the caller.
type Signals struct {
	PasswordForms         int      `json:"password_forms"`
	BodyKeywords          []string `json:"body_keywords,omitempty"`
	SuspiciousFormActions []string `json:"suspicious_form_actions,omitempty"`
	HiddenElements        int      `json:"hidden_elements"`
}

// AnalysisRequest is the single input of Analyzer.Analyze.
type AnalysisRequest struct {
	URL         string           `json:"url"`
	ContextID   string           `json:"context_id,omitempty"`  // key for certificate lookup; defaults to the URL host
	Signals     *Signals         `json:"dom_signals,omitempty"` // nil when the caller has none
	Certificate *CertificateInfo `json:"certificate,omitempty"` // skips the certificate lookup when set
}

// ScoreReason is one applied rule: its message and the signed weight added.
type ScoreReason struct {
	Message string `json:"message"`
	Weight  int    `json:"weight"`
}

// String renders the reason the way it is shown to users, e.g.
// "Uses HTTPS (-10)". Zero-weight reasons carry no suffix.
func (r ScoreReason) String() string {
	if r.Weight == 0 {
		return r.Message
	}
	return fmt.Sprintf("%s (%+d)", r.Message, r.Weight)
}

// AnalysisResult is produced once per request and not modified afterwards.
type AnalysisResult struct {
	URL       string        `json:"url"` // after redirect expansion
	Domain    string        `json:"domain"`
	Status    Status        `json:"status"`
	Score     int           `json:"score"` // 0-100
	Reasons   []string      `json:"reasons"`
	Breakdown []ScoreReason `json:"breakdown,omitempty"` // heuristic stage only
	BaseScore int           `json:"base_score,omitempty"`
	Details   any           `json:"details,omitempty"` // reputation source payload for known_phish
}
