package renderer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/deckhand-cli/deckhand/internal/events"
	"github.com/deckhand-cli/deckhand/internal/logging"
	"github.com/deckhand-cli/deckhand/internal/models"
	"github.com/deckhand-cli/deckhand/internal/playlist"
)

// Pipeline errors.
var (
	ErrNothingToRender   = errors.New("deck has no slide sources")
	ErrNoScenesToPresent = errors.New("deck has no scenes to present")
)

// Config contains pipeline configuration.
type Config struct {
	// Quality is the renderer quality letter (l, m, h, p, k).
	// Default: l.
	Quality string

	// Flags are opaque pass-through flags for present and export
	// invocations (e.g. hide-info-window). Render takes only the quality.
	Flags map[string]string

	// RenderTimeout bounds a single slide source render. Zero means no
	// limit; scene renders can legitimately take many minutes.
	RenderTimeout time.Duration
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{Quality: "l"}
}

// Stats summarizes one pipeline run.
type Stats struct {
	// Total is the number of slide sources considered.
	Total int

	// Succeeded is the number of sources rendered successfully.
	Succeeded int

	// Failed is the number of sources that failed (0 or 1; the pipeline
	// aborts on the first failure).
	Failed int

	// Duration is the wall-clock time of the run.
	Duration time.Duration
}

// Pipeline renders, presents, and exports a deck with the external tool.
type Pipeline struct {
	deck     *models.Deck
	registry *playlist.Registry
	exec     Executor
	sink     events.Sink
	config   Config
	logger   zerolog.Logger
}

// New creates a pipeline for a deck. The sink may be nil when no history
// should be recorded.
func New(deck *models.Deck, registry *playlist.Registry, exec Executor, sink events.Sink, config Config) (*Pipeline, error) {
	if deck == nil {
		return nil, fmt.Errorf("deck is required")
	}
	if registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if exec == nil {
		return nil, fmt.Errorf("executor is required")
	}
	if config.Quality == "" {
		config.Quality = DefaultConfig().Quality
	}

	return &Pipeline{
		deck:     deck,
		registry: registry,
		exec:     exec,
		sink:     sink,
		config:   config,
		logger:   logging.Component("pipeline"),
	}, nil
}

func (p *Pipeline) renderFlags() map[string]string {
	return map[string]string{"quality": p.config.Quality}
}

// RenderAll renders every slide source in deck order, aborting on the
// first failure.
func (p *Pipeline) RenderAll(ctx context.Context) (Stats, error) {
	started := time.Now()
	sources := p.registry.OrderedSources()
	stats := Stats{Total: len(sources)}
	if len(sources) == 0 {
		return stats, ErrNothingToRender
	}

	flags := p.renderFlags()
	for _, source := range sources {
		cmd, err := p.registry.CommandFor(source, playlist.ModeRender, flags)
		if err != nil {
			return stats, err
		}

		p.logger.Info().Str("source", source.Path).Str("command", cmd).Msg("rendering slide source")
		p.recordEvent(func() error {
			return events.LogRenderStarted(ctx, p.sink, p.deck.Name, source.Path, cmd, p.config.Quality)
		})

		sourceStarted := time.Now()
		_, stderr, err := p.execRender(ctx, cmd)
		if err != nil {
			stats.Failed++
			stats.Duration = time.Since(started)
			p.logger.Error().Err(err).Str("source", source.Path).Msg("render failed, aborting")
			p.recordEvent(func() error {
				return events.LogRenderFailed(ctx, p.sink, p.deck.Name, source.Path, err, tail(stderr, 2048))
			})
			return stats, fmt.Errorf("render %s: %w", source.Path, err)
		}

		stats.Succeeded++
		elapsed := time.Since(sourceStarted)
		p.logger.Info().Str("source", source.Path).Dur("took", elapsed).Msg("rendered slide source")
		p.recordEvent(func() error {
			return events.LogRenderFinished(ctx, p.sink, p.deck.Name, source.Path, elapsed)
		})
	}

	stats.Duration = time.Since(started)
	return stats, nil
}

func (p *Pipeline) execRender(ctx context.Context, cmd string) ([]byte, []byte, error) {
	if p.config.RenderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.RenderTimeout)
		defer cancel()
	}
	return p.exec.Exec(ctx, cmd)
}

// Present starts an interactive presentation of all deck scenes in order.
// Scene names must already be populated on the deck sources.
func (p *Pipeline) Present(ctx context.Context) error {
	scenes := p.registry.SceneNames()
	if len(scenes) == 0 {
		return ErrNoScenesToPresent
	}

	cmd := playlist.PresentCommand(scenes, p.config.Flags)
	p.logger.Info().Strs("scenes", scenes).Msg("starting presentation")
	p.recordEvent(func() error {
		return events.LogPresentStarted(ctx, p.sink, p.deck.Name, scenes, cmd)
	})

	if err := p.exec.ExecInteractive(ctx, cmd, nil); err != nil {
		return fmt.Errorf("present deck %s: %w", p.deck.Name, err)
	}
	return nil
}

// Export converts all deck scenes into a standalone HTML presentation
// under outDir and returns the index path.
func (p *Pipeline) Export(ctx context.Context, outDir string) (string, error) {
	scenes := p.registry.SceneNames()
	if len(scenes) == 0 {
		return "", ErrNoScenesToPresent
	}
	if outDir == "" {
		outDir = p.deck.ExportDir
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir %s: %w", outDir, err)
	}

	outputPath := filepath.Join(outDir, "index.html")
	cmd := playlist.ConvertCommand(scenes, outputPath, p.config.Flags)
	p.logger.Info().Str("output", outputPath).Msg("exporting deck to HTML")

	started := time.Now()
	if _, stderr, err := p.exec.Exec(ctx, cmd); err != nil {
		return "", fmt.Errorf("export deck %s: %w (stderr: %s)", p.deck.Name, err, tail(stderr, 512))
	}

	p.recordEvent(func() error {
		return events.LogExportFinished(ctx, p.sink, p.deck.Name, outputPath, time.Since(started))
	})
	return outputPath, nil
}

// recordEvent runs an event write, logging instead of failing the
// pipeline when history cannot be recorded.
func (p *Pipeline) recordEvent(write func() error) {
	if p.sink == nil {
		return
	}
	if err := write(); err != nil {
		p.logger.Warn().Err(err).Msg("failed to record history event")
	}
}

func tail(data []byte, limit int) string {
	if len(data) <= limit {
		return string(data)
	}
	return string(data[len(data)-limit:])
}
