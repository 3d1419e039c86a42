package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deckhand-cli/deckhand/internal/events"
	"github.com/deckhand-cli/deckhand/internal/renderer"
)

var (
	exportOut        string
	exportSkipRender bool
)

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output directory (default: <deck>/html_slides)")
	exportCmd.Flags().BoolVar(&exportSkipRender, "skip-render", false, "export already-rendered scenes without rendering first")
}

var exportCmd = &cobra.Command{
	Use:   "export [deck]",
	Short: "Export the deck to a standalone HTML presentation",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deck, registry, err := loadDeck(args, true)
		if err != nil {
			return err
		}

		var sink events.Sink
		if database := openHistory(cmd.Context()); database != nil {
			defer database.Close()
			sink = newHistorySink(database)
		}
		recordOrderWarning(cmd.Context(), sink, deck)

		pipeline, err := renderer.New(deck, registry, renderer.NewLocalExecutor(deck.Root), sink, pipelineConfig(nil))
		if err != nil {
			return err
		}

		if !exportSkipRender {
			if _, err := pipeline.RenderAll(cmd.Context()); err != nil {
				return err
			}
		}

		indexPath, err := pipeline.Export(cmd.Context(), exportOut)
		if err != nil {
			return err
		}
		fmt.Printf("Exported deck to %s\n", indexPath)
		return nil
	},
}
