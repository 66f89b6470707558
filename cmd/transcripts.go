package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/edukit/classpilot/internal/config"
	"github.com/edukit/classpilot/internal/transcript"
)

var transcriptsLimit int

func init() {
	rootCmd.AddCommand(transcriptsCmd)
	transcriptsCmd.Flags().IntVarP(&transcriptsLimit, "limit", "n", 20, "Number of recent turns to show")
}

var transcriptsCmd = &cobra.Command{
	Use:   "transcripts",
	Short: "Show recent recorded assistant conversations",
	RunE:  runTranscripts,
}

func runTranscripts(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !cfg.Transcripts.Enabled {
		return fmt.Errorf("transcript recording is disabled; enable transcripts in the config first")
	}

	store, err := transcript.NewStore(transcript.Config{
		Enabled: cfg.Transcripts.Enabled,
		DBPath:  cfg.Transcripts.DBPath,
	})
	if err != nil {
		return fmt.Errorf("open transcript store: %w", err)
	}
	defer store.Close()

	turns, err := store.Recent(cmd.Context(), transcriptsLimit)
	if err != nil {
		return err
	}
	if len(turns) == 0 {
		fmt.Println("No recorded conversations.")
		return nil
	}

	for _, turn := range turns {
		status := "ok"
		if turn.HadFailure {
			status = "failed"
		}
		fmt.Printf("%s  %-14s %-6s %s\n", turn.CreatedAt.Format("2006-01-02 15:04"), turn.Persona, status, oneLine(turn.UserText, 60))
		if len(turn.ToolsUsed) > 0 {
			fmt.Printf("%22stools: %s\n", "", strings.Join(turn.ToolsUsed, ", "))
		}
	}
	return nil
}

// oneLine flattens text to a single bounded line for list output.
func oneLine(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= max {
		return s
	}
	cut := max - 3
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut--
	}
	return s[:cut] + "..."
}
