package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/deckhand-cli/deckhand/internal/events"
	"github.com/deckhand-cli/deckhand/internal/playlist"
	"github.com/deckhand-cli/deckhand/internal/renderer"
	"github.com/deckhand-cli/deckhand/internal/tui"
)

var uiHideInfoWindow bool

func init() {
	rootCmd.AddCommand(uiCmd)
	uiCmd.Flags().BoolVar(&uiHideInfoWindow, "hide-info-window", false, "pass --hide-info-window to the presenter")
}

var uiCmd = &cobra.Command{
	Use:   "ui [deck]",
	Short: "Pick scenes interactively and present them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !hasTTY() {
			return fmt.Errorf("the scene picker requires an interactive terminal; use `deckhand present` instead")
		}

		deck, _, err := loadDeck(args, true)
		if err != nil {
			return err
		}

		selected, err := tui.RunPicker(deck)
		if err != nil {
			return err
		}
		if len(selected) == 0 {
			fmt.Println("Nothing selected.")
			return nil
		}

		var sink events.Sink
		if database := openHistory(cmd.Context()); database != nil {
			defer database.Close()
			sink = newHistorySink(database)
		}

		flags := map[string]string{}
		if uiHideInfoWindow {
			flags["hide-info-window"] = ""
		}
		command := playlist.PresentCommand(selected, flags)

		if sink != nil {
			if err := events.LogPresentStarted(cmd.Context(), sink, deck.Name, selected, command); err != nil {
				return err
			}
		}

		exec := renderer.NewLocalExecutor(deck.Root)
		return exec.ExecInteractive(cmd.Context(), command, nil)
	},
}

func hasTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
