package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/edukit/classpilot/internal/config"
)

var (
	modelsProvider string
	modelsJSON     bool
)

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.Flags().StringVarP(&modelsProvider, "provider", "p", "", "Provider to list models from (anthropic, openai, gemini)")
	modelsCmd.Flags().BoolVar(&modelsJSON, "json", false, "Output as JSON")
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List available models from a provider",
	Long: `List available models from a provider.

Queries the provider's models API to discover what model names can go in
the config. Useful for OpenAI-compatible endpoints, where the model list
depends on the deployment.

Examples:
  classpilot models                    # list models from the configured provider
  classpilot models --provider openai  # list models from OpenAI
  classpilot models --json             # output as JSON`,
	RunE: runModels,
}

// modelLister is implemented by providers whose API exposes model discovery.
type modelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

func runModels(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.ApplyOverrides(modelsProvider, "")

	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}
	lister, ok := provider.(modelLister)
	if !ok {
		return fmt.Errorf("provider %s does not support model listing", provider.Name())
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	models, err := lister.ListModels(ctx)
	if err != nil {
		return err
	}

	if modelsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(models)
	}
	for _, m := range models {
		fmt.Println(m)
	}
	return nil
}
