package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/deckhand-cli/deckhand/internal/events"
	"github.com/deckhand-cli/deckhand/internal/playlist"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init <dir>",
	Short: "Scaffold a new deck directory",
	Long: `Init creates a deck directory with a slide_sources/ subdirectory and
a starter deck.yaml manifest.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("resolve %s: %w", args[0], err)
		}

		manifestPath := playlist.ManifestPath(root)
		if _, err := os.Stat(manifestPath); err == nil {
			return fmt.Errorf("%s already exists", manifestPath)
		}

		if err := os.MkdirAll(filepath.Join(root, playlist.SourcesDirName), 0o755); err != nil {
			return fmt.Errorf("create deck layout: %w", err)
		}

		starter, err := playlist.StarterManifest()
		if err != nil {
			return err
		}
		if err := os.WriteFile(manifestPath, starter, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", manifestPath, err)
		}

		if database := openHistory(cmd.Context()); database != nil {
			defer database.Close()
			if err := events.LogDeckInitialized(cmd.Context(), newHistorySink(database), filepath.Base(root), root); err != nil {
				return err
			}
		}

		fmt.Printf("Initialized deck in %s\n", root)
		fmt.Printf("Add slide scripts under %s and list them in %s\n",
			filepath.Join(root, playlist.SourcesDirName), manifestPath)
		return nil
	},
}
