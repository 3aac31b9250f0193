package server

import (
	"context"
	"log"
	"time"

	"url-vetting/intel"
	"url-vetting/lexical"
	"url-vetting/vetting"
)

// Analyzer is the decision pipeline as seen by the transports.
type Analyzer interface {
	Analyze(ctx context.Context, req vetting.AnalysisRequest) vetting.AnalysisResult
	AddToAllowList(ctx context.Context, value string) error
	MarkUnsafe(ctx context.Context, value string) error
	UserLists(ctx context.Context) (vetting.UserLists, error)
}

// SignalCollector fetches DOM signals for a URL.
type SignalCollector interface {
	Collect(ctx context.Context, rawURL string, forceRender bool) (*vetting.Signals, error)
}

// RegistrationLookup reports WHOIS data for a host.
type RegistrationLookup interface {
	Lookup(ctx context.Context, host string) (*intel.Registration, error)
}

// AnalyzeRequest is an analysis request plus the optional enrichments a
// remote caller may ask for.
type AnalyzeRequest struct {
	vetting.AnalysisRequest
	CollectSignals bool `json:"collect_signals,omitempty"`
	Render         bool `json:"render,omitempty"`
	Whois          bool `json:"whois,omitempty"`
}

// AnalyzeResponse is the analysis result with any enrichment attached.
type AnalyzeResponse struct {
	vetting.AnalysisResult
	Signals      *vetting.Signals    `json:"dom_signals,omitempty"`
	Registration *intel.Registration `json:"registration,omitempty"`
}

// Service runs analyses with optional enrichment. Enrichment failures are
// logged and leave the corresponding field empty.
type Service struct {
	Analyzer     Analyzer
	Collector    SignalCollector
	Whois        RegistrationLookup
	WhoisTimeout time.Duration
}

func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) AnalyzeResponse {
	var collected *vetting.Signals
	if req.Signals == nil && (req.CollectSignals || req.Render) && s.Collector != nil && req.URL != "" {
		sig, err := s.Collector.Collect(ctx, req.URL, req.Render)
		if err != nil {
			log.Printf("[Server] signal collection failed for %s: %v", req.URL, err)
		} else {
			req.Signals = sig
			collected = sig
		}
	}

	resp := AnalyzeResponse{
		AnalysisResult: s.Analyzer.Analyze(ctx, req.AnalysisRequest),
		Signals:        collected,
	}

	if req.Whois && s.Whois != nil {
		if host, ok := lexical.Hostname(resp.URL); ok {
			timeout := s.WhoisTimeout
			if timeout <= 0 {
				timeout = 10 * time.Second
			}
			wctx, cancel := context.WithTimeout(ctx, timeout)
			reg, err := s.Whois.Lookup(wctx, host)
			cancel()
			if err != nil {
				log.Printf("[Server] whois failed for %s: %v", host, err)
			} else {
				resp.Registration = reg
			}
		}
	}
	return resp
}
