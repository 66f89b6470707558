package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edukit/classpilot/internal/config"
	"github.com/edukit/classpilot/internal/persona"
)

func init() {
	rootCmd.AddCommand(personasCmd)
}

var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "List available assistant personas",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		registry, err := persona.LoadRegistry(cfg.Personas.Dir)
		if err != nil {
			return err
		}
		for _, key := range registry.Keys() {
			p := registry.Get(key)
			marker := " "
			if key == persona.GenericKey {
				marker = "*"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %-16s %s\n", marker, key, p.Name)
		}
		return nil
	},
}
