package cmd

import (
	"fmt"
	"io"

	"url-vetting/server"
	"url-vetting/vetting"
)

const (
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorDim    = "\033[2m"
	colorReset  = "\033[0m"
)

func statusColor(s vetting.Status) string {
	switch s {
	case vetting.StatusSafe, vetting.StatusWhitelisted:
		return colorGreen
	case vetting.StatusSuspicious:
		return colorYellow
	case vetting.StatusDangerous, vetting.StatusBlacklisted, vetting.StatusKnownPhish:
		return colorRed
	default:
		return colorDim
	}
}

func printResult(w io.Writer, r server.AnalyzeResponse, color bool) {
	status := string(r.Status)
	if color {
		status = statusColor(r.Status) + status + colorReset
	}
	fmt.Fprintf(w, "Status:  %s (score %d)\n", status, r.Score)
	fmt.Fprintf(w, "URL:     %s\n", r.URL)
	fmt.Fprintf(w, "Domain:  %s\n", r.Domain)
	if len(r.Reasons) > 0 {
		fmt.Fprintln(w, "Reasons:")
		for _, reason := range r.Reasons {
			fmt.Fprintf(w, "  • %s\n", reason)
		}
	}
	if s := r.Signals; s != nil {
		fmt.Fprintf(w, "Signals: %d password field(s), %d hidden element(s)\n", s.PasswordForms, s.HiddenElements)
	}
	if reg := r.Registration; reg != nil {
		fmt.Fprintf(w, "WHOIS:   %s registered %s (%d days)\n", reg.Domain, reg.CreatedOn, reg.AgeDays)
	}
}

func printLists(w io.Writer, l vetting.UserLists) {
	fmt.Fprintf(w, "Allow (%d):\n", len(l.Allow))
	for _, d := range l.Allow {
		fmt.Fprintf(w, "  %s\n", d)
	}
	fmt.Fprintf(w, "Deny (%d):\n", len(l.Deny))
	for _, d := range l.Deny {
		fmt.Fprintf(w, "  %s\n", d)
	}
}
