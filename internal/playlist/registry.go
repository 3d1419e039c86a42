package playlist

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/deckhand-cli/deckhand/internal/models"
)

// Registry errors.
var (
	ErrUnknownMode        = errors.New("unknown command mode")
	ErrOrderNotContiguous = errors.New("slide order indexes must be contiguous from 0")
	ErrDuplicatePath      = errors.New("duplicate slide source path")
	ErrNoScenes           = errors.New("slide source has no scenes")
)

// ToolName is the external renderer binary.
const ToolName = "manim-slides"

// Registry holds the canonical ordering of slide sources and builds the
// external-tool commands for them. It is immutable after construction.
type Registry struct {
	sources []models.SlideSource
}

// NewRegistry builds a registry from slide sources. Sources are stably
// sorted by order index; indexes must be unique and contiguous from 0.
func NewRegistry(sources []models.SlideSource) (*Registry, error) {
	ordered := append([]models.SlideSource(nil), sources...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].OrderIndex < ordered[j].OrderIndex
	})

	paths := make(map[string]struct{}, len(ordered))
	for i, src := range ordered {
		if err := src.Validate(); err != nil {
			return nil, fmt.Errorf("slide source %q: %w", src.Path, err)
		}
		if src.OrderIndex != i {
			return nil, fmt.Errorf("%w: index %d at position %d", ErrOrderNotContiguous, src.OrderIndex, i)
		}
		if _, exists := paths[src.Path]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePath, src.Path)
		}
		paths[src.Path] = struct{}{}
	}

	return &Registry{sources: ordered}, nil
}

// NewRegistryForDeck builds a registry from a discovered deck.
func NewRegistryForDeck(deck *models.Deck) (*Registry, error) {
	if deck == nil {
		return nil, fmt.Errorf("deck is required")
	}
	return NewRegistry(deck.Sources)
}

// OrderedSources returns all slide sources sorted by order index. The
// returned slice is a copy; repeated calls yield identical sequences.
func (r *Registry) OrderedSources() []models.SlideSource {
	return append([]models.SlideSource(nil), r.sources...)
}

// Len returns the number of registered sources.
func (r *Registry) Len() int {
	return len(r.sources)
}

// SceneNames returns all scene names in presentation order.
func (r *Registry) SceneNames() []string {
	names := make([]string, 0, len(r.sources))
	for _, src := range r.sources {
		names = append(names, src.Scenes...)
	}
	return names
}

// CommandFor builds the external-tool invocation for a single source.
// Flags are opaque pass-through options; the "quality" key is translated
// to the renderer's -q<letter> form, an empty value renders as a bare
// --flag. Returns ErrUnknownMode for modes outside {render, present}.
func (r *Registry) CommandFor(source models.SlideSource, mode Mode, flags map[string]string) (string, error) {
	switch mode {
	case ModeRender:
		parts := []string{ToolName, "render", "-a"}
		if quality, ok := flags["quality"]; ok && quality != "" {
			parts = append(parts, "-q"+quality)
		}
		parts = append(parts, renderFlags(flags, "quality")...)
		parts = append(parts, source.Path)
		return strings.Join(parts, " "), nil

	case ModePresent:
		if len(source.Scenes) == 0 {
			return "", fmt.Errorf("%w: %s", ErrNoScenes, source.Path)
		}
		return PresentCommand(source.Scenes, flags), nil

	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

// PresentCommand builds the invocation presenting the given scenes in
// order.
func PresentCommand(scenes []string, flags map[string]string) string {
	parts := []string{ToolName, "present"}
	parts = append(parts, scenes...)
	parts = append(parts, renderFlags(flags, "quality")...)
	return strings.Join(parts, " ")
}

// ConvertCommand builds the invocation exporting the given scenes to a
// standalone HTML presentation.
func ConvertCommand(scenes []string, outputPath string, flags map[string]string) string {
	parts := []string{ToolName, "convert", "--to", "html"}
	parts = append(parts, renderFlags(flags, "quality")...)
	parts = append(parts, scenes...)
	parts = append(parts, outputPath)
	return strings.Join(parts, " ")
}

// renderFlags formats pass-through flags in deterministic order, skipping
// the named keys.
func renderFlags(flags map[string]string, skip ...string) []string {
	if len(flags) == 0 {
		return nil
	}

	skipped := make(map[string]struct{}, len(skip))
	for _, key := range skip {
		skipped[key] = struct{}{}
	}

	normalized := make(map[string]string, len(flags))
	keys := make([]string, 0, len(flags))
	for key, value := range flags {
		key = strings.TrimLeft(strings.TrimSpace(key), "-")
		if key == "" {
			continue
		}
		if _, ok := skipped[key]; ok {
			continue
		}
		normalized[key] = value
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys)*2)
	for _, key := range keys {
		parts = append(parts, "--"+key)
		if value := strings.TrimSpace(normalized[key]); value != "" {
			parts = append(parts, value)
		}
	}
	return parts
}
