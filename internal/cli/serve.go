package cli

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/deckhand-cli/deckhand/internal/db"
	"github.com/deckhand-cli/deckhand/internal/server"
)

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

var serveCmd = &cobra.Command{
	Use:   "serve [deck]",
	Short: "Serve the deck's HTML export, playlist API, and live events",
	Long: `Serve exposes the deck over HTTP: the exported HTML slides at /, the
ordered playlist at /api/deck, render history at /api/history, and a
websocket at /ws broadcasting pipeline events.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deck, _, err := loadDeck(args, true)
		if err != nil {
			return err
		}

		addr := serveAddr
		if addr == "" {
			addr = GetConfig().Serve.Addr
		}

		var history *db.EventRepository
		if database := openHistory(cmd.Context()); database != nil {
			defer database.Close()
			history = db.NewEventRepository(database)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		hub := server.NewHub()
		go hub.Run(ctx)

		// Pipelines record to the history database from their own
		// processes; tail it so /ws clients see their events live.
		if history != nil {
			tailer := server.NewTailer(history, hub, time.Second, time.Now())
			go tailer.Run(ctx)
		}

		srv, err := server.New(server.Config{
			Deck:      deck,
			History:   history,
			Hub:       hub,
			ExportDir: deck.ExportDir,
		})
		if err != nil {
			return err
		}
		return srv.ListenAndServe(ctx, addr)
	},
}
