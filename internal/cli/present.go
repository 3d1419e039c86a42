package cli

import (
	"github.com/spf13/cobra"

	"github.com/deckhand-cli/deckhand/internal/events"
	"github.com/deckhand-cli/deckhand/internal/renderer"
)

var (
	presentSkipRender     bool
	presentHideInfoWindow bool
)

func init() {
	rootCmd.AddCommand(presentCmd)
	presentCmd.Flags().BoolVar(&presentSkipRender, "skip-render", false, "present already-rendered scenes without rendering first")
	presentCmd.Flags().BoolVar(&presentHideInfoWindow, "hide-info-window", false, "pass --hide-info-window to the presenter (single-display workaround)")
}

var presentCmd = &cobra.Command{
	Use:   "present [deck]",
	Short: "Render a deck and present all its scenes in order",
	Long: `Present renders every slide source (unless --skip-render) and then
starts manim-slides present with all the deck's scenes in presentation
order.`,
	Args: cobra.MaximumNArgs(1),
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

		extra := map[string]string{}
		if presentHideInfoWindow {
			extra["hide-info-window"] = ""
		}

		pipeline, err := renderer.New(deck, registry, renderer.NewLocalExecutor(deck.Root), sink, pipelineConfig(extra))
		if err != nil {
			return err
		}

		if !presentSkipRender {
			if _, err := pipeline.RenderAll(cmd.Context()); err != nil {
				return err
			}
		}
		return pipeline.Present(cmd.Context())
	},
}
