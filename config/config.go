// Package config reads service settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"url-vetting/vetting"
)

type Config struct {
	ListenAddr  string
	DatabaseURL string

	UserListsFile    string
	CuratedAllowFile string
	CuratedDenyFile  string

	SafeBrowsingKey string
	SpamhausKey     string
	RBLEnabled      bool
	RBLResolver     string

	Timeouts vetting.Timeouts

	SkipChromedp bool
	ChromePath   string
}

// Load reads .env when present, then the process environment.
func Load() Config {
	_ = godotenv.Load()

	defaults := vetting.DefaultTimeouts()
	cfg := Config{
		ListenAddr:       getenv("LISTEN_ADDR", ":8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		UserListsFile:    os.Getenv("USER_LISTS_FILE"),
		CuratedAllowFile: os.Getenv("CURATED_ALLOW_FILE"),
		CuratedDenyFile:  os.Getenv("CURATED_DENY_FILE"),
		SafeBrowsingKey:  os.Getenv("GOOGLE_SAFE_BROWSING_KEY"),
		SpamhausKey:      os.Getenv("SPAMHAUS_API_KEY"),
		RBLEnabled:       getenvBool("RBL_ENABLED", false),
		RBLResolver:      getenv("RBL_RESOLVER", "8.8.8.8:53"),
		Timeouts: vetting.Timeouts{
			Redirect:    getenvDuration("REDIRECT_TIMEOUT", defaults.Redirect),
			Certificate: getenvDuration("CERT_TIMEOUT", defaults.Certificate),
			Reputation:  getenvDuration("REPUTATION_TIMEOUT", defaults.Reputation),
		},
		SkipChromedp: getenvBool("SKIP_CHROMEDP", false),
		ChromePath:   os.Getenv("CHROME_PATH"),
	}
	// Cloud platforms hand out the port only.
	if port := os.Getenv("PORT"); port != "" {
		cfg.ListenAddr = ":" + strings.TrimPrefix(port, ":")
	}
	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("[Config] ignoring %s=%q: %v", key, v, err)
		return def
	}
	return b
}

// getenvDuration accepts Go durations ("750ms") or whole seconds ("5").
func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	log.Printf("[Config] ignoring %s=%q", key, v)
	return def
}
