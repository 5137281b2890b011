// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
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

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/naka-gawa/github-activity/internal/cache"
	"github.com/naka-gawa/github-activity/internal/config"
	"github.com/naka-gawa/github-activity/internal/domain"
	"github.com/naka-gawa/github-activity/internal/gateway"
	"github.com/naka-gawa/github-activity/internal/server"
	"github.com/naka-gawa/github-activity/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the user activity HTTP API",
	Long: `Starts an HTTP server exposing GET /api/v1/users/{username}/activity.
Responses are served from a bounded in-memory cache; concurrent requests
for the same user trigger a single upstream fetch.`,
	Run: func(cmd *cobra.Command, args []string) {
		// The server always logs to stderr; --verbose has no extra effect here.
		logger := log.New(os.Stderr, "", log.LstdFlags)

		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
			os.Exit(1)
		}

		githubGateway, err := gateway.NewGitHubGateway(cfg.GitHubToken, cfg.GitHubAPIBaseURL, cfg.RequestTimeout(), logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
			os.Exit(1)
		}
		reportCache := cache.New[domain.UserActivityReport](cfg.CacheTTL(), cfg.CacheMaxSize, clockwork.NewRealClock())
		defer reportCache.Close()
		service := usecase.NewService(githubGateway, reportCache, logger)

		srv := &http.Server{
			Addr:              cfg.Addr(),
			Handler:           server.New(service, logger),
			ReadHeaderTimeout: 5 * time.Second,
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.Printf("Listening on %s", cfg.Addr())
			errCh <- srv.ListenAndServe()
		}()

		select {
		case <-ctx.Done():
			logger.Println("Shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
				os.Exit(1)
			}
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
				os.Exit(1)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
