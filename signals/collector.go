package signals

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"url-vetting/lexical"
	"url-vetting/vetting"
)

const (
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	maxPageBytes     = 1024 * 1024
)

// Collector fetches a page and extracts its signals. It tries a plain HTTP
// GET first and only renders with headless Chrome when the fetched HTML
// looks like an empty script shell or the fetch failed.
type Collector struct {
	Client        *http.Client
	SkipChromedp  bool
	ChromePath    string
	RenderTimeout time.Duration

	render func(ctx context.Context, rawURL string) (string, error)
}

// NewCollector returns a collector with the default HTTP client.
func NewCollector(skipChromedp bool, chromePath string) *Collector {
	c := &Collector{
		Client: &http.Client{
			Timeout: 10 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		SkipChromedp:  skipChromedp,
		ChromePath:    chromePath,
		RenderTimeout: 15 * time.Second,
	}
	c.render = c.renderWithChromedp
	return c
}

// Collect returns the signals of rawURL. forceRender skips the HTTP pass.
func (c *Collector) Collect(ctx context.Context, rawURL string, forceRender bool) (*vetting.Signals, error) {
	if _, err := lexical.ParseAbsolute(rawURL); err != nil {
		return nil, fmt.Errorf("collect signals: %w", err)
	}

	if !forceRender {
		doc, err := c.fetch(ctx, rawURL)
		switch {
		case err != nil:
			log.Printf("[Signals] HTTP fetch failed for %s: %v", rawURL, err)
		case !looksLikeShell(doc):
			sig := extractFrom(doc, rawURL)
			log.Printf("[Signals] ✅ Collected via HTTP for %s", rawURL)
			return &sig, nil
		default:
			log.Printf("[Signals] %s looks script-rendered, trying chromedp", rawURL)
		}
	}

	if c.SkipChromedp || c.render == nil {
		if forceRender {
			return nil, fmt.Errorf("collect signals: rendering disabled (SKIP_CHROMEDP=true)")
		}
		log.Printf("[Signals] Skipping chromedp check (SKIP_CHROMEDP=true)")
		return nil, fmt.Errorf("collect signals: no usable document for %s", rawURL)
	}

	html, err := c.render(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", rawURL, err)
	}
	sig, err := ExtractHTML(strings.NewReader(html), rawURL)
	if err != nil {
		return nil, err
	}
	log.Printf("[Signals] ✅ Collected via chromedp for %s", rawURL)
	return &sig, nil
}

func (c *Collector) fetch(ctx context.Context, rawURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("status %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}

func extractFrom(doc *goquery.Document, rawURL string) vetting.Signals {
	base, _ := lexical.ParseAbsolute(rawURL)
	return Extract(doc, base)
}

// looksLikeShell reports a document with scripts but no forms and almost
// no visible text, the typical single-page-app bootstrap.
func looksLikeShell(doc *goquery.Document) bool {
	if doc.Find("form").Length() > 0 {
		return false
	}
	body := doc.Find("body").Clone()
	body.Find("script, style, noscript, template").Remove()
	text := strings.TrimSpace(body.Text())
	return len(text) < 32 && doc.Find("script").Length() > 0
}

func (c *Collector) renderWithChromedp(ctx context.Context, rawURL string) (string, error) {
	timeout := c.RenderTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.UserAgent(browserUserAgent),
	)
	if c.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(c.ChromePath))
		log.Printf("[Signals] Using Chrome from: %s", c.ChromePath)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(log.Printf))
	defer browserCancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body"),
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	return html, err
}
