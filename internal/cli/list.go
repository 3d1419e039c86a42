package cli

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var listWithScenes bool

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listWithScenes, "scenes", false, "extract and show scene names")
}

var listCmd = &cobra.Command{
	Use:     "list [deck]",
	Aliases: []string{"ls"},
	Short:   "List the deck's slide sources in presentation order",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deck, registry, err := loadDeck(args, listWithScenes)
		if err != nil {
			return err
		}

		if IsJSONOutput() {
			return json.NewEncoder(os.Stdout).Encode(deck)
		}

		headers := []string{"#", "SOURCE"}
		if listWithScenes {
			headers = append(headers, "SCENES")
		}

		rows := make([][]string, 0, registry.Len())
		for _, source := range registry.OrderedSources() {
			row := []string{strconv.Itoa(source.OrderIndex), source.Path}
			if listWithScenes {
				row = append(row, strings.Join(source.Scenes, ", "))
			}
			rows = append(rows, row)
		}
		return writeTable(os.Stdout, headers, rows)
	},
}
