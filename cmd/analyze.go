package cmd

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"url-vetting/config"
	"url-vetting/server"
	"url-vetting/vetting"
)

var analyzeOpts struct {
	JSON           bool
	CollectSignals bool
	Render         bool
	Whois          bool
	NoColor        bool
	ContextID      string
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>",
	Short: "Classify a single URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		a, err := newApp(ctx, config.Load())
		if err != nil {
			return err
		}
		defer a.Close()
		// One-shot runs wait for the curated lists.
		_ = a.curated.Load()

		resp := a.service.Analyze(ctx, server.AnalyzeRequest{
			AnalysisRequest: vetting.AnalysisRequest{URL: args[0], ContextID: analyzeOpts.ContextID},
			CollectSignals:  analyzeOpts.CollectSignals,
			Render:          analyzeOpts.Render,
			Whois:           analyzeOpts.Whois,
		})

		out := cmd.OutOrStdout()
		if analyzeOpts.JSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		}
		color := !analyzeOpts.NoColor && term.IsTerminal(int(os.Stdout.Fd()))
		printResult(out, resp, color)
		return nil
	},
}

func init() {
	f := analyzeCmd.Flags()
	f.BoolVar(&analyzeOpts.JSON, "json", false, "Print the full result as JSON")
	f.BoolVar(&analyzeOpts.CollectSignals, "collect-signals", false, "Fetch the page and score its DOM signals")
	f.BoolVar(&analyzeOpts.Render, "render", false, "Render the page in headless Chrome before collecting signals")
	f.BoolVar(&analyzeOpts.Whois, "whois", false, "Report WHOIS registration data")
	f.BoolVar(&analyzeOpts.NoColor, "no-color", false, "Disable colored output")
	f.StringVar(&analyzeOpts.ContextID, "context", "", "Certificate lookup target (default: URL host)")
}
