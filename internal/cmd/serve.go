package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/atm360/backend/internal/auth"
	httpapi "github.com/atm360/backend/internal/http"
	"github.com/atm360/backend/internal/scoring"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, store, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	tokens, err := auth.NewManager(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		return err
	}

	var scorer scoring.Scorer
	if cfg.ScorerURL == "" {
		scorer = scoring.MockScorer{ModelVersion: "mock-v1"}
		logger.Info().Msg("using mock scorer")
	} else {
		scorer = scoring.NewHTTPScorer(cfg.ScorerURL)
	}
	defer scorer.Close()

	router := httpapi.Router(cfg, store, scorer, tokens, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
	return nil
}
