package vetting

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	"url-vetting/lexical"
)

// CertificateProvider looks up certificate info for a browsing context.
// A nil result with a nil error means "unavailable".
type CertificateProvider interface {
	CertificateInfo(ctx context.Context, contextID string) (*CertificateInfo, error)
}

// Reputation is the verdict of a threat-intel lookup.
type Reputation struct {
	Malicious bool   `json:"malicious"`
	Source    string `json:"source,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// ReputationChecker is a black-box threat-intel lookup. It must not fail:
// missing credentials or errors yield Reputation{Malicious: false}.
type ReputationChecker interface {
	CheckReputation(ctx context.Context, rawURL string) Reputation
}

// Timeouts bound each outbound call of a single analysis.
type Timeouts struct {
	Redirect    time.Duration
	Certificate time.Duration
	Reputation  time.Duration
}

// DefaultTimeouts returns the bounds used when none are configured.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Redirect:    5 * time.Second,
		Certificate: 5 * time.Second,
		Reputation:  6 * time.Second,
	}
}

// Analyzer runs the decision pipeline. It keeps no per-request state and
// is safe for concurrent use.
type Analyzer struct {
	expander     *RedirectExpander
	certificates CertificateProvider
	lists        *ListResolver
	reputation   ReputationChecker
	scorer       *Scorer
	timeouts     Timeouts
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithCertificateProvider sets the certificate collaborator.
func WithCertificateProvider(p CertificateProvider) Option {
	return func(a *Analyzer) { a.certificates = p }
}

// WithReputation sets the reputation collaborator.
func WithReputation(r ReputationChecker) Option {
	return func(a *Analyzer) { a.reputation = r }
}

// WithRedirectExpander replaces the default expander.
func WithRedirectExpander(e *RedirectExpander) Option {
	return func(a *Analyzer) { a.expander = e }
}

// WithTimeouts overrides DefaultTimeouts. Zero fields keep their default.
func WithTimeouts(t Timeouts) Option {
	return func(a *Analyzer) {
		if t.Redirect > 0 {
			a.timeouts.Redirect = t.Redirect
		}
		if t.Certificate > 0 {
			a.timeouts.Certificate = t.Certificate
		}
		if t.Reputation > 0 {
			a.timeouts.Reputation = t.Reputation
		}
	}
}

// NewAnalyzer builds the pipeline around a list resolver.
func NewAnalyzer(lists *ListResolver, opts ...Option) *Analyzer {
	a := &Analyzer{
		lists:    lists,
		scorer:   NewScorer(),
		timeouts: DefaultTimeouts(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.expander == nil {
		a.expander = NewRedirectExpander(nil, Shorteners, a.timeouts.Redirect)
	}
	if a.lists == nil {
		a.lists = NewListResolver(nil, nil)
	}
	return a
}

// Analyze classifies req.URL. It always returns a result.
func (a *Analyzer) Analyze(ctx context.Context, req AnalysisRequest) (result AnalysisResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Pipeline] PANIC analyzing %q: %v\n%s", req.URL, r, debug.Stack())
			result = AnalysisResult{
				URL:     req.URL,
				Domain:  lexical.NormalizeDomain(req.URL),
				Status:  StatusUnknown,
				Score:   BaseScore,
				Reasons: []string{"Analysis failed"},
			}
		}
	}()

	// Expansion and certificate lookup are independent.
	expanded := req.URL
	cert := req.Certificate
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer logPanic("redirect expansion")
		rctx, cancel := context.WithTimeout(gctx, a.timeouts.Redirect)
		defer cancel()
		expanded = a.expander.Expand(rctx, req.URL)
		return nil
	})
	if cert == nil && a.certificates != nil {
		g.Go(func() error {
			defer logPanic("certificate lookup")
			cert = a.lookupCertificate(gctx, req)
			return nil
		})
	}
	_ = g.Wait()

	domain := lexical.NormalizeDomain(expanded)

	if m, ok := a.lists.Resolve(ctx, domain, expanded); ok {
		score := 0
		if m.Status == StatusBlacklisted {
			score = 100
		}
		return AnalysisResult{
			URL:     expanded,
			Domain:  domain,
			Status:  m.Status,
			Score:   score,
			Reasons: []string{m.Reason},
		}
	}

	if rep := a.checkReputation(ctx, expanded); rep.Malicious {
		return AnalysisResult{
			URL:     expanded,
			Domain:  domain,
			Status:  StatusKnownPhish,
			Score:   100,
			Reasons: []string{fmt.Sprintf("Listed in %s", rep.Source)},
			Details: rep.Details,
		}
	}

	summary := a.scorer.CalculateScore(expanded, req.Signals, cert)
	return AnalysisResult{
		URL:       expanded,
		Domain:    domain,
		Status:    summary.Status,
		Score:     summary.Score,
		Reasons:   summary.Messages(),
		Breakdown: summary.Reasons,
		BaseScore: summary.BaseScore,
	}
}

func (a *Analyzer) lookupCertificate(ctx context.Context, req AnalysisRequest) *CertificateInfo {
	contextID := req.ContextID
	if contextID == "" {
		host, ok := lexical.Hostname(req.URL)
		if !ok {
			return nil
		}
		contextID = host
	}
	cctx, cancel := context.WithTimeout(ctx, a.timeouts.Certificate)
	defer cancel()
	info, err := a.certificates.CertificateInfo(cctx, contextID)
	if err != nil {
		log.Printf("[Pipeline] no certificate info for %s: %v", contextID, err)
		return nil
	}
	return info
}

func (a *Analyzer) checkReputation(ctx context.Context, rawURL string) Reputation {
	if a.reputation == nil {
		return Reputation{}
	}
	rctx, cancel := context.WithTimeout(ctx, a.timeouts.Reputation)
	defer cancel()
	rep := a.reputation.CheckReputation(rctx, rawURL)
	if rep.Malicious && rep.Source == "" {
		rep.Source = "reputation service"
	}
	return rep
}

// AddToAllowList records value as safe for the user.
func (a *Analyzer) AddToAllowList(ctx context.Context, value string) error {
	return a.lists.AddEntry(ctx, ListAllow, value)
}

// MarkUnsafe moves value from the user allow list to the deny list.
func (a *Analyzer) MarkUnsafe(ctx context.Context, value string) error {
	return a.lists.MoveToDeny(ctx, value)
}

// UserLists returns the user's current lists.
func (a *Analyzer) UserLists(ctx context.Context) (UserLists, error) {
	return a.lists.UserLists(ctx)
}

// logPanic keeps a failing collaborator goroutine from taking the process
// down; the stage then keeps its neutral value.
func logPanic(stage string) {
	if r := recover(); r != nil {
		log.Printf("[Pipeline] PANIC in %s: %v\n%s", stage, r, debug.Stack())
	}
}
