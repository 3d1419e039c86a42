// Package scenes extracts scene class names from slide scripts.
package scenes

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/deckhand-cli/deckhand/internal/models"
)

// ErrNoScenesFound indicates a slide script defines no scene classes.
var ErrNoScenesFound = errors.New("no scene classes found")

// Slide scenes are top-level Python class declarations:
// `class SceneName(Slide):`. Indented (nested) classes and underscore
// names are helpers, not scenes.
var classPattern = regexp.MustCompile(`^class\s+([A-Za-z_][A-Za-z0-9_]*)\s*[(:]`)

// ExtractScenes returns scene class names declared in a slide script, in
// definition order.
func ExtractScenes(source string) []string {
	names := make([]string, 0, 2)
	for _, line := range strings.Split(source, "\n") {
		match := classPattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		if strings.HasPrefix(match[1], "_") {
			continue
		}
		names = append(names, match[1])
	}
	return names
}

// ExtractScenesFromFile reads a slide script and extracts its scene names.
// Returns ErrNoScenesFound when the script defines no scene classes.
func ExtractScenesFromFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read slide source %s: %w", path, err)
	}

	names := ExtractScenes(string(data))
	if len(names) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoScenesFound, path)
	}
	return names, nil
}

// PopulateDeck fills in scene names for every source in the deck that has
// no manifest override. Paths are resolved against the deck root.
func PopulateDeck(deck *models.Deck) error {
	if deck == nil {
		return fmt.Errorf("deck is required")
	}

	for i := range deck.Sources {
		if len(deck.Sources[i].Scenes) > 0 {
			continue
		}
		names, err := ExtractScenesFromFile(filepath.Join(deck.Root, deck.Sources[i].Path))
		if err != nil {
			return err
		}
		deck.Sources[i].Scenes = names
	}
	return nil
}
