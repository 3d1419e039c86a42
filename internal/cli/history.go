package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/deckhand-cli/deckhand/internal/db"
	"github.com/deckhand-cli/deckhand/internal/models"
)

var (
	historyLimit int
	historyType  string
	historySince time.Duration
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "max events to show")
	historyCmd.Flags().StringVarP(&historyType, "type", "t", "", "filter by event type (e.g. render.failed)")
	historyCmd.Flags().DurationVar(&historySince, "since", 0, "only events newer than this (e.g. 24h)")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent render history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := db.Open(defaultDatabasePath())
		if err != nil {
			return err
		}
		defer database.Close()
		if err := database.MigrateUp(cmd.Context()); err != nil {
			return err
		}

		query := db.EventQuery{Limit: historyLimit}
		if historyType != "" {
			eventType := models.EventType(historyType)
			query.Type = &eventType
		}
		if historySince > 0 {
			since := time.Now().Add(-historySince)
			query.Since = &since
		}

		page, err := db.NewEventRepository(database).List(cmd.Context(), query)
		if err != nil {
			return err
		}

		if IsJSONOutput() {
			return json.NewEncoder(os.Stdout).Encode(page)
		}

		if len(page.Events) == 0 {
			fmt.Println("No history yet. Render a deck to record events.")
			return nil
		}

		rows := make([][]string, 0, len(page.Events))
		for _, event := range page.Events {
			rows = append(rows, []string{
				event.Timestamp.Local().Format("2006-01-02 15:04:05"),
				string(event.Type),
				event.EntityID,
			})
		}
		return writeTable(os.Stdout, []string{"WHEN", "EVENT", "ENTITY"}, rows)
	},
}
