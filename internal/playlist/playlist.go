// Package playlist provides deck discovery, manifest loading, and the
// ordered slide registry.
package playlist

// Manifest is the optional deck.yaml describing a deck.
type Manifest struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Quality     string            `yaml:"quality,omitempty"`
	Slides      []ManifestSlide   `yaml:"slides"`
	Flags       map[string]string `yaml:"flags,omitempty"`
	Source      string            // file path or "builtin"
}

// ManifestSlide is a single ordered entry in a deck manifest.
type ManifestSlide struct {
	File   string   `yaml:"file"`
	Scenes []string `yaml:"scenes,omitempty"`
}

// Mode selects which external-tool action a command is built for.
type Mode string

const (
	ModeRender  Mode = "render"
	ModePresent Mode = "present"
)
