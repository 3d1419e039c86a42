package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deckhand-cli/deckhand/internal/playlist"
)

var scenesCommands bool

func init() {
	rootCmd.AddCommand(scenesCmd)
	scenesCmd.Flags().BoolVar(&scenesCommands, "commands", false, "also print the render command for each source")
}

var scenesCmd = &cobra.Command{
	Use:   "scenes [deck]",
	Short: "Show the scenes of a deck in presentation order",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deck, registry, err := loadDeck(args, true)
		if err != nil {
			return err
		}

		if IsJSONOutput() {
			return json.NewEncoder(os.Stdout).Encode(deck.SceneNames())
		}

		flags := map[string]string{"quality": GetConfig().Quality}
		for _, source := range registry.OrderedSources() {
			for _, scene := range source.Scenes {
				fmt.Printf("%s\t(%s)\n", scene, source.Path)
			}
			if scenesCommands {
				command, err := registry.CommandFor(source, playlist.ModeRender, flags)
				if err != nil {
					return err
				}
				fmt.Printf("  $ %s\n", command)
			}
		}

		if len(deck.SceneNames()) > 0 {
			fmt.Printf("\nPresent all:\n  $ %s\n", playlist.PresentCommand(deck.SceneNames(), nil))
		}
		return nil
	},
}
