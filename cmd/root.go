package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "url-vetting",
	Short: "Classify URLs as safe, suspicious or dangerous",
	Long: `url-vetting classifies a URL using curated and user allow/deny lists,
threat-intel reputation lookups and weighted lexical and DOM heuristics.
It runs as an HTTP service or as a one-shot command.`,
	Example: `  url-vetting serve
  url-vetting analyze https://bit.ly/3xyz --collect-signals
  url-vetting analyze http://evil-test.tk/login@verify --json
  url-vetting allow https://www.example.com/
  url-vetting deny phish.example
  url-vetting lists`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, analyzeCmd, allowCmd, denyCmd, listsCmd, migrateCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
