package playlist

import (
	_ "embed"
	"fmt"
)

//go:embed builtin/deck.yaml
var builtinManifest []byte

// StarterManifest returns the manifest template bundled with deckhand,
// used by `deckhand init` to scaffold a new deck.
func StarterManifest() ([]byte, error) {
	// Parse for self-consistency so a broken template fails loudly.
	if _, err := parseManifest(builtinManifest); err != nil {
		return nil, fmt.Errorf("parse builtin manifest: %w", err)
	}
	out := make([]byte, len(builtinManifest))
	copy(out, builtinManifest)
	return out, nil
}
