package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"url-vetting/config"
	"url-vetting/server"
)

var serveMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		cfg := config.Load()
		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		if a.db != nil && serveMigrate {
			if err := a.db.Migrate(ctx); err != nil {
				return err
			}
		}
		a.curated.LoadAsync()

		srv := &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           server.New(a.service, a.curated).Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() { errCh <- srv.ListenAndServe() }()
		log.Printf("✅ url-vetting listening on %s", cfg.ListenAddr)
		log.Println("📍 Endpoints:")
		log.Println("   GET  /healthz      - Liveness and list readiness")
		log.Println("   POST /analyze      - Classify a URL")
		log.Println("   POST /lists/allow  - Mark a domain safe")
		log.Println("   POST /lists/deny   - Mark a domain unsafe")
		log.Println("   GET  /lists        - Show user lists")

		select {
		case <-ctx.Done():
			log.Printf("[Server] shutting down")
			shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
			defer done()
			return srv.Shutdown(shutdownCtx)
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)
		}
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", true, "Apply database migrations on startup")
}
