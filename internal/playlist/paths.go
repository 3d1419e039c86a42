package playlist

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Deck layout conventions.
const (
	// SourcesDirName is the subdirectory holding slide scripts.
	SourcesDirName = "slide_sources"

	// OrderFileName is the optional per-deck ordering file.
	OrderFileName = ".slides_order"

	// ManifestFileName is the optional deck manifest.
	ManifestFileName = "deck.yaml"

	// ExportDirName is where HTML exports are written.
	ExportDirName = "html_slides"
)

// Deck location errors.
var (
	ErrDeckNotFound      = errors.New("deck directory not found")
	ErrSourcesDirMissing = errors.New("slide sources directory not found")
)

// LocateDeck resolves a deck root to an absolute path and verifies the
// expected layout exists.
func LocateDeck(root string) (deckRoot, sourcesDir string, err error) {
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", "", fmt.Errorf("resolve deck path %s: %w", root, err)
	}

	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", "", fmt.Errorf("%w: %s", ErrDeckNotFound, abs)
	}

	sources := filepath.Join(abs, SourcesDirName)
	info, err = os.Stat(sources)
	if err != nil || !info.IsDir() {
		return "", "", fmt.Errorf("%w: %s", ErrSourcesDirMissing, sources)
	}

	return abs, sources, nil
}

// ManifestPath returns the path of the deck manifest, whether or not it
// exists.
func ManifestPath(deckRoot string) string {
	return filepath.Join(deckRoot, ManifestFileName)
}

// OrderFilePath returns the path of the slide order file, whether or not
// it exists.
func OrderFilePath(sourcesDir string) string {
	return filepath.Join(sourcesDir, OrderFileName)
}
