// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/github-activity/internal/cache"
	"github.com/naka-gawa/github-activity/internal/config"
	"github.com/naka-gawa/github-activity/internal/domain"
	"github.com/naka-gawa/github-activity/internal/gateway"
	"github.com/naka-gawa/github-activity/internal/usecase"
)

var activityCmd = &cobra.Command{
	Use:   "activity <username>...",
	Short: "Summarizes recent GitHub user activity and outputs as JSON",
	Long: `Fetches recent public events for the given GitHub users, aggregates
them per repository (top 3 activity types, ownership), and outputs the
reports in JSON format. Multiple users are fetched concurrently.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		// Get the verbose flag from the root command to set up the logger.
		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		logger := log.New(io.Discard, "", log.LstdFlags) // Default: discard all logs.
		if verbose {
			logger.SetOutput(os.Stderr) // If verbose, log to standard error.
		}

		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
			os.Exit(1)
		}

		// Inject dependencies and run the main business logic.
		githubGateway, err := gateway.NewGitHubGateway(cfg.GitHubToken, cfg.GitHubAPIBaseURL, cfg.RequestTimeout(), logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
			os.Exit(1)
		}
		reportCache := cache.New[domain.UserActivityReport](cfg.CacheTTL(), cfg.CacheMaxSize, clockwork.NewRealClock())
		defer reportCache.Close()
		service := usecase.NewService(githubGateway, reportCache, logger)

		// Fetch all requested users concurrently.
		reports := make([]domain.UserActivityReport, len(args))
		eg, egCtx := errgroup.WithContext(ctx)
		for i, username := range args {
			eg.Go(func() error {
				report, err := service.UserActivity(egCtx, username)
				if err != nil {
					return err
				}
				reports[i] = report
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to summarize activity: %v\n", err)
			os.Exit(1)
		}

		mean, median := usecase.EventSpread(reports)
		logger.Printf("Fetched %d report(s); events per user mean=%.1f median=%.1f", len(reports), mean, median)

		// Marshal the results into a pretty-printed JSON string.
		jsonData, err := json.MarshalIndent(reports, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to marshal reports to JSON: %v\n", err)
			os.Exit(1)
		}

		// Print the final JSON to standard output.
		fmt.Println(string(jsonData))
	},
}

func init() {
	rootCmd.AddCommand(activityCmd)
}
