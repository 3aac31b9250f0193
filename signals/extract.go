// Package signals derives vetting.Signals from a page's HTML for callers
// that cannot inspect the live DOM themselves.
package signals

import (
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"url-vetting/lexical"
	"url-vetting/vetting"
)

// ExtractHTML parses r as HTML served from pageURL and extracts signals.
func ExtractHTML(r io.Reader, pageURL string) (vetting.Signals, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return vetting.Signals{}, err
	}
	base, _ := lexical.ParseAbsolute(pageURL)
	return Extract(doc, base), nil
}

// Extract computes the DOM signals of doc. base is the page URL and may be
// nil, in which case no form action counts as external.
func Extract(doc *goquery.Document, base *url.URL) vetting.Signals {
	return vetting.Signals{
		PasswordForms:         doc.Find(`form input[type="password"]`).Length(),
		BodyKeywords:          bodyKeywords(doc),
		SuspiciousFormActions: externalFormActions(doc, base),
		HiddenElements:        hiddenElements(doc),
	}
}

func bodyKeywords(doc *goquery.Document) []string {
	body := doc.Find("body").Clone()
	body.Find("script, style, noscript, template").Remove()
	text := strings.ToLower(body.Text())

	var found []string
	for _, w := range vetting.BodyKeywords {
		if strings.Contains(text, w) {
			found = append(found, w)
		}
	}
	return found
}

// externalFormActions lists resolved form targets whose registrable domain
// differs from the page's, in document order without duplicates.
func externalFormActions(doc *goquery.Document, base *url.URL) []string {
	if base == nil {
		return nil
	}
	pageRoot := lexical.RegistrableDomain(base.Hostname())

	var out []string
	seen := make(map[string]bool)
	doc.Find("form[action]").Each(func(_ int, form *goquery.Selection) {
		action, _ := form.Attr("action")
		action = strings.TrimSpace(action)
		if action == "" {
			return
		}
		target, err := base.Parse(action)
		if err != nil || (target.Scheme != "http" && target.Scheme != "https") {
			return
		}
		if lexical.RegistrableDomain(target.Hostname()) == pageRoot {
			return
		}
		s := target.String()
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	})
	return out
}

// hiddenElements counts elements hidden by the hidden attribute or inline
// style. Hidden inputs are form plumbing and do not count.
func hiddenElements(doc *goquery.Document) int {
	n := 0
	doc.Find("body *").Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "input" && strings.EqualFold(s.AttrOr("type", ""), "hidden") {
			return
		}
		if _, ok := s.Attr("hidden"); ok {
			n++
			return
		}
		style := strings.ToLower(strings.Join(strings.Fields(s.AttrOr("style", "")), ""))
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			n++
		}
	})
	return n
}
