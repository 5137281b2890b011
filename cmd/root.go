// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "github-activity",
	Short: "Summarizes what a GitHub user is doing on each repository.",
	Long: `github-activity fetches a user's recent public events from the
GitHub Events API and summarizes them per repository: the top 3 activity
types ranked by count, plus whether the user owns the repository.
It runs either as a one-shot CLI or as an HTTP service fronted by a
bounded in-memory cache.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
}
