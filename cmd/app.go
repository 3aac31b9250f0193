package cmd

import (
	"context"
	"fmt"
	"log"

	"url-vetting/config"
	"url-vetting/intel"
	"url-vetting/server"
	"url-vetting/signals"
	"url-vetting/store"
	"url-vetting/vetting"
)

// app holds the wired components shared by all commands.
type app struct {
	cfg      config.Config
	curated  *store.Curated
	db       *store.Postgres
	user     vetting.UserListStore
	analyzer *vetting.Analyzer
	service  *server.Service
}

// newApp wires the analyzer from cfg. The user-list store is PostgreSQL
// when DATABASE_URL is set, else a JSON file when USER_LISTS_FILE is set,
// else process memory.
func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	a := &app{
		cfg:     cfg,
		curated: store.NewCurated(cfg.CuratedAllowFile, cfg.CuratedDenyFile),
	}

	switch {
	case cfg.DatabaseURL != "":
		db, err := store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
		a.db, a.user = db, db
		log.Printf("[Lists] user lists in PostgreSQL")
	case cfg.UserListsFile != "":
		f, err := store.OpenFile(cfg.UserListsFile)
		if err != nil {
			return nil, err
		}
		a.user = f
		log.Printf("[Lists] user lists in %s", cfg.UserListsFile)
	default:
		a.user = store.NewMemory()
		log.Printf("[Lists] user lists in memory only")
	}

	reputation := intel.Chain{intel.NewSafeBrowsing(cfg.SafeBrowsingKey)}
	if cfg.SpamhausKey != "" {
		reputation = append(reputation, intel.NewSpamhaus(cfg.SpamhausKey))
	}
	if cfg.RBLEnabled {
		reputation = append(reputation, intel.NewRBL(cfg.RBLResolver))
	}

	a.analyzer = vetting.NewAnalyzer(
		vetting.NewListResolver(a.curated, a.user),
		vetting.WithReputation(reputation),
		vetting.WithCertificateProvider(intel.NewTLSCertificates(cfg.Timeouts.Certificate)),
		vetting.WithRedirectExpander(vetting.NewRedirectExpander(nil, vetting.Shorteners, cfg.Timeouts.Redirect)),
		vetting.WithTimeouts(cfg.Timeouts),
	)
	a.service = &server.Service{
		Analyzer:  a.analyzer,
		Collector: signals.NewCollector(cfg.SkipChromedp, cfg.ChromePath),
		Whois:     intel.NewWhoisLookup(),
	}
	return a, nil
}

func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
}
