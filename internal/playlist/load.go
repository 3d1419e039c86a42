package playlist

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/deckhand-cli/deckhand/internal/logging"
	"github.com/deckhand-cli/deckhand/internal/models"
)

// LoadManifest reads a single deck manifest from disk.
func LoadManifest(path string) (*Manifest, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("manifest path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}

	manifest, err := parseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	manifest.Source = path
	return manifest, nil
}

func parseManifest(data []byte) (*Manifest, error) {
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, err
	}

	manifest.Name = strings.TrimSpace(manifest.Name)
	if manifest.Name == "" {
		return nil, fmt.Errorf("deck name is required")
	}
	manifest.Description = strings.TrimSpace(manifest.Description)
	manifest.Quality = strings.TrimSpace(manifest.Quality)

	if len(manifest.Slides) == 0 {
		return nil, fmt.Errorf("deck slides are required")
	}

	seen := make(map[string]struct{})
	for i := range manifest.Slides {
		file := strings.TrimSpace(manifest.Slides[i].File)
		if file == "" {
			return nil, fmt.Errorf("slide %d: file is required", i+1)
		}
		if _, exists := seen[file]; exists {
			return nil, fmt.Errorf("duplicate slide file %q", file)
		}
		seen[file] = struct{}{}
		manifest.Slides[i].File = file

		for j, scene := range manifest.Slides[i].Scenes {
			scene = strings.TrimSpace(scene)
			if scene == "" {
				return nil, fmt.Errorf("slide %q: scene %d is empty", file, j+1)
			}
			manifest.Slides[i].Scenes[j] = scene
		}
	}

	return &manifest, nil
}

// LoadOrderFile reads a .slides_order file: one file stem per line, blank
// lines and #-comments ignored.
func LoadOrderFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read order file %s: %w", path, err)
	}

	stems := make([]string, 0)
	seen := make(map[string]struct{})
	for i, line := range strings.Split(string(data), "\n") {
		stem := strings.TrimSpace(line)
		if stem == "" || strings.HasPrefix(stem, "#") {
			continue
		}
		if _, exists := seen[stem]; exists {
			return nil, fmt.Errorf("order file %s line %d: duplicate entry %q", path, i+1, stem)
		}
		seen[stem] = struct{}{}
		stems = append(stems, stem)
	}
	return stems, nil
}

// DiscoverDeck scans a deck directory and returns the deck with its slide
// sources in presentation order. Ordering precedence: deck.yaml manifest,
// then .slides_order, then lexicographic fallback.
func DiscoverDeck(root string) (*models.Deck, error) {
	logger := logging.Component("playlist")

	deckRoot, sourcesDir, err := LocateDeck(root)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(sourcesDir)
	if err != nil {
		return nil, fmt.Errorf("read sources dir %s: %w", sourcesDir, err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || name == "__pycache__" {
			continue
		}
		if strings.ToLower(filepath.Ext(name)) != ".py" {
			continue
		}
		files = append(files, name)
	}
	sort.Strings(files)

	deck := &models.Deck{
		Name:       filepath.Base(deckRoot),
		Root:       deckRoot,
		SourcesDir: sourcesDir,
		ExportDir:  filepath.Join(deckRoot, ExportDirName),
	}

	manifestPath := ManifestPath(deckRoot)
	orderPath := OrderFilePath(sourcesDir)
	_, manifestExists := statFile(manifestPath)
	_, orderExists := statFile(orderPath)

	switch {
	case manifestExists:
		if orderExists {
			logger.Warn().Str("deck", deck.Name).
				Msg("both deck.yaml and .slides_order present; manifest order wins")
		}
		manifest, err := LoadManifest(manifestPath)
		if err != nil {
			return nil, err
		}
		deck.Name = manifest.Name
		deck.OrderSource = models.OrderSourceManifest
		deck.Sources, err = sourcesFromManifest(manifest, sourcesDir, files)
		if err != nil {
			return nil, err
		}

	case orderExists:
		stems, err := LoadOrderFile(orderPath)
		if err != nil {
			return nil, err
		}
		deck.OrderSource = models.OrderSourceOrderFile
		deck.Sources, err = sourcesFromOrder(stems, files, orderPath)
		if err != nil {
			return nil, err
		}

	default:
		logger.Info().Str("deck", deck.Name).
			Msg("no ordering found; using lexicographic order (create .slides_order or deck.yaml to control it)")
		deck.OrderSource = models.OrderSourceLexicographic
		for i, file := range files {
			deck.Sources = append(deck.Sources, models.SlideSource{
				Path:       filepath.Join(SourcesDirName, file),
				OrderIndex: i,
			})
		}
	}

	return deck, nil
}

func statFile(path string) (os.FileInfo, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, false
	}
	return info, true
}

func sourcesFromManifest(manifest *Manifest, sourcesDir string, files []string) ([]models.SlideSource, error) {
	present := make(map[string]struct{}, len(files))
	for _, file := range files {
		present[file] = struct{}{}
	}

	sources := make([]models.SlideSource, 0, len(manifest.Slides))
	for i, slide := range manifest.Slides {
		if _, ok := present[slide.File]; !ok {
			return nil, fmt.Errorf("manifest slide %q not found in %s", slide.File, sourcesDir)
		}
		sources = append(sources, models.SlideSource{
			Path:       filepath.Join(SourcesDirName, slide.File),
			Scenes:     append([]string(nil), slide.Scenes...),
			OrderIndex: i,
		})
	}
	return sources, nil
}

func sourcesFromOrder(stems, files []string, orderPath string) ([]models.SlideSource, error) {
	position := make(map[string]int, len(stems))
	for i, stem := range stems {
		position[stem] = i
	}

	byStem := make(map[string]string, len(files))
	for _, file := range files {
		stem := strings.TrimSuffix(file, filepath.Ext(file))
		if _, ok := position[stem]; !ok {
			return nil, fmt.Errorf("%s is not listed in %s; add an entry so it can be placed", stem, orderPath)
		}
		byStem[stem] = file
	}

	sources := make([]models.SlideSource, 0, len(byStem))
	for _, stem := range stems {
		file, ok := byStem[stem]
		if !ok {
			// Listed but absent on disk; tolerate so order files can be
			// written ahead of the slides they describe.
			continue
		}
		sources = append(sources, models.SlideSource{
			Path:       filepath.Join(SourcesDirName, file),
			OrderIndex: len(sources),
		})
	}
	return sources, nil
}
