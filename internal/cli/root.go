// Package cli implements the deckhand command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/deckhand-cli/deckhand/internal/db"
	"github.com/deckhand-cli/deckhand/internal/events"
	"github.com/deckhand-cli/deckhand/internal/logging"
	"github.com/deckhand-cli/deckhand/internal/models"
	"github.com/deckhand-cli/deckhand/internal/playlist"
	"github.com/deckhand-cli/deckhand/internal/renderer"
	"github.com/deckhand-cli/deckhand/internal/scenes"
)

var (
	cfgFile    string
	deckPath   string
	jsonOutput bool
	logLevel   string
	quality    string
	noHistory  bool
)

// Config holds the resolved deckhand configuration.
type Config struct {
	Quality      string            `mapstructure:"quality"`
	LogLevel     string            `mapstructure:"log_level"`
	DatabasePath string            `mapstructure:"database_path"`
	Flags        map[string]string `mapstructure:"flags"`
	Serve        ServeConfig       `mapstructure:"serve"`
}

// ServeConfig holds the serve command configuration.
type ServeConfig struct {
	Addr string `mapstructure:"addr"`
}

var config Config

var rootCmd = &cobra.Command{
	Use:   "deckhand",
	Short: "Render and present Manim-Slides decks",
	Long: `Deckhand manages decks of Manim-Slides sources: it discovers the
slide scripts of a deck, keeps their presentation order, renders them
with manim-slides, presents them, and exports them to HTML.

A deck is a directory with a slide_sources/ subdirectory. Ordering comes
from a deck.yaml manifest, a .slides_order file, or file names.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/deckhand/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&deckPath, "deck", "d", ".", "deck directory")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "machine-readable JSON output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&quality, "quality", "q", "", "render quality letter (l, m, h, p, k)")
	rootCmd.PersistentFlags().BoolVar(&noHistory, "no-history", false, "don't record events to the history database")
}

func initConfig() {
	viper.SetDefault("quality", "l")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("serve.addr", "127.0.0.1:8650")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			viper.AddConfigPath(filepath.Join(configHome, "deckhand"))
		}
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "deckhand"))
		}
	}

	viper.SetEnvPrefix("DECKHAND")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}

	if err := viper.Unmarshal(&config); err != nil {
		fmt.Fprintf(os.Stderr, "warning: invalid config: %v\n", err)
	}

	if logLevel != "" {
		config.LogLevel = logLevel
	}
	if quality != "" {
		config.Quality = quality
	}
	logging.Setup(config.LogLevel, os.Stderr)
}

// GetConfig returns the resolved configuration.
func GetConfig() Config {
	return config
}

// IsJSONOutput reports whether --json was requested.
func IsJSONOutput() bool {
	return jsonOutput
}

// resolveDeckPath picks the deck directory from a positional argument or
// the --deck flag.
func resolveDeckPath(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return deckPath
}

// loadDeck discovers the deck and builds its registry. When withScenes is
// set, scene names are extracted for sources without a manifest override.
func loadDeck(args []string, withScenes bool) (*models.Deck, *playlist.Registry, error) {
	deck, err := playlist.DiscoverDeck(resolveDeckPath(args))
	if err != nil {
		return nil, nil, err
	}
	if withScenes {
		if err := scenes.PopulateDeck(deck); err != nil {
			return nil, nil, err
		}
	}

	registry, err := playlist.NewRegistryForDeck(deck)
	if err != nil {
		return nil, nil, err
	}
	return deck, registry, nil
}

// defaultDatabasePath returns the history database location.
func defaultDatabasePath() string {
	if config.DatabasePath != "" {
		return config.DatabasePath
	}
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "deckhand", "history.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".deckhand", "history.db")
	}
	return filepath.Join(home, ".local", "share", "deckhand", "history.db")
}

// openHistory opens the history database, or returns nil when history is
// disabled or unavailable. Rendering should not fail because the history
// database cannot be opened.
func openHistory(ctx context.Context) *db.DB {
	if noHistory {
		return nil
	}

	database, err := db.Open(defaultDatabasePath())
	if err != nil {
		logger := logging.Component("cli")
		logger.Warn().Err(err).Msg("history database unavailable; continuing without history")
		return nil
	}
	if err := database.MigrateUp(ctx); err != nil {
		logger := logging.Component("cli")
		logger.Warn().Err(err).Msg("history migration failed; continuing without history")
		database.Close()
		return nil
	}
	return database
}

// newHistorySink adapts the history database into an event sink.
func newHistorySink(database *db.DB) events.Sink {
	return db.NewEventRepository(database)
}

// recordOrderWarning notes lexicographic fallback ordering in the history
// log so it shows up in `deckhand history`.
func recordOrderWarning(ctx context.Context, sink events.Sink, deck *models.Deck) {
	if sink == nil || deck.OrderSource != models.OrderSourceLexicographic {
		return
	}
	err := events.LogWarning(ctx, sink, deck.Name,
		"slide sources ordered lexicographically",
		"create .slides_order or deck.yaml to control ordering")
	if err != nil {
		logger := logging.Component("cli")
		logger.Warn().Err(err).Msg("record order warning failed")
	}
}

// pipelineConfig builds the renderer configuration from resolved config
// and global flags.
func pipelineConfig(extraFlags map[string]string) renderer.Config {
	flags := make(map[string]string, len(config.Flags)+len(extraFlags))
	for key, value := range config.Flags {
		flags[key] = value
	}
	for key, value := range extraFlags {
		flags[key] = value
	}
	return renderer.Config{
		Quality: config.Quality,
		Flags:   flags,
	}
}
