package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "classpilot",
	Short: "Conversational assistant service for the edukit platform",
	Long: `classpilot turns natural-language requests plus on-screen UI state into
tool calls against the platform backend and a cited, actionable reply.

Examples:
  classpilot serve                      # run the HTTP service
  classpilot serve --provider openai    # pick the model provider
  classpilot personas                   # list available personas`,
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
