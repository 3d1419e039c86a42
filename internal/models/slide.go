// Package models defines the core data types shared across deckhand.
package models

import (
	"path/filepath"
	"strings"
)

// SlideSource identifies one presentational unit: a slide script and the
// scene classes it defines.
type SlideSource struct {
	// Path is the location of the slide script, relative to the deck root.
	Path string `json:"path" yaml:"path"`

	// Scenes are the scene class names the script defines, in definition
	// order. Empty until extracted or overridden by the deck manifest.
	Scenes []string `json:"scenes,omitempty" yaml:"scenes,omitempty"`

	// OrderIndex is the position of this source in the presentation.
	// Indexes are unique and contiguous across a deck, starting at 0.
	OrderIndex int `json:"order_index" yaml:"order_index"`
}

// Stem returns the file name without directory or extension, the key used
// by slide order files.
func (s SlideSource) Stem() string {
	base := filepath.Base(s.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Validate checks that the source is well formed.
func (s *SlideSource) Validate() error {
	validation := &ValidationErrors{}
	if strings.TrimSpace(s.Path) == "" {
		validation.AddMessage("path", "path is required")
	}
	if s.OrderIndex < 0 {
		validation.AddMessage("order_index", "order_index must not be negative")
	}
	for _, scene := range s.Scenes {
		if strings.TrimSpace(scene) == "" {
			validation.AddMessage("scenes", "scene names must not be empty")
		}
	}
	return validation.Err()
}

// OrderSource values identify where a deck's ordering came from.
const (
	OrderSourceManifest      = "manifest"
	OrderSourceOrderFile     = "order-file"
	OrderSourceLexicographic = "lexicographic"
)

// Deck is a directory of slide sources presented in a fixed order.
type Deck struct {
	// Name identifies the deck; defaults to the root directory name.
	Name string `json:"name"`

	// Root is the deck directory.
	Root string `json:"root"`

	// SourcesDir is the directory holding the slide scripts.
	SourcesDir string `json:"sources_dir"`

	// ExportDir is where HTML exports are written.
	ExportDir string `json:"export_dir,omitempty"`

	// OrderSource records where the ordering came from: the manifest, a
	// .slides_order file, or the lexicographic fallback.
	OrderSource string `json:"order_source,omitempty"`

	// Sources are the slide sources in presentation order.
	Sources []SlideSource `json:"sources"`
}

// SceneNames returns all scene names across the deck in presentation order.
func (d *Deck) SceneNames() []string {
	names := make([]string, 0, len(d.Sources))
	for _, src := range d.Sources {
		names = append(names, src.Scenes...)
	}
	return names
}
