package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/deckhand-cli/deckhand/internal/events"
	"github.com/deckhand-cli/deckhand/internal/renderer"
)

var renderTimeout time.Duration

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().DurationVar(&renderTimeout, "timeout", 0, "per-source render timeout (0 = no limit)")
}

var renderCmd = &cobra.Command{
	Use:   "render [deck]",
	Short: "Render every slide source of a deck in order",
	Long: `Render runs manim-slides render for every slide source of the deck,
in presentation order, aborting on the first failure.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deck, registry, err := loadDeck(args, false)
		if err != nil {
			return err
		}

		var sink events.Sink
		if database := openHistory(cmd.Context()); database != nil {
			defer database.Close()
			sink = newHistorySink(database)
		}
		recordOrderWarning(cmd.Context(), sink, deck)

		cfg := pipelineConfig(nil)
		cfg.RenderTimeout = renderTimeout

		pipeline, err := renderer.New(deck, registry, renderer.NewLocalExecutor(deck.Root), sink, cfg)
		if err != nil {
			return err
		}

		stats, err := pipeline.RenderAll(cmd.Context())
		if err != nil {
			return err
		}

		if IsJSONOutput() {
			return json.NewEncoder(os.Stdout).Encode(stats)
		}
		fmt.Printf("Rendered %d/%d slide sources in %s\n",
			stats.Succeeded, stats.Total, formatDuration(stats.Duration))
		return nil
	},
}
