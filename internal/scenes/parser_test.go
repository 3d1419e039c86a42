package scenes

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/deckhand-cli/deckhand/internal/models"
)

func TestExtractScenes(t *testing.T) {
	source := `from manim import *
from manim_slides.slide import Slide, ThreeDSlide

POINTS = [1, 2, 3]

class IntroductionSlide(ThreeDSlide):
    def construct(self):
        pass

class _Helper:
    pass

class MethodOfLeastSquares(Slide, MovingCameraScene):
    def construct(self):
        class Inner:
            pass
`
	got := ExtractScenes(source)
	want := []string{"IntroductionSlide", "MethodOfLeastSquares"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestExtractScenesSkipsUnderscoreClasses(t *testing.T) {
	source := "class _Base(Slide):\n    pass\n\nclass __Mixin:\n    pass\n\nclass Visible(_Base):\n    pass\n"
	got := ExtractScenes(source)
	if len(got) != 1 || got[0] != "Visible" {
		t.Fatalf("expected only Visible, got %v", got)
	}
}

func TestExtractScenesSkipsCommentedClasses(t *testing.T) {
	source := "# class Commented(Slide):\nclass Real(Slide):\n    pass\n"
	got := ExtractScenes(source)
	if len(got) != 1 || got[0] != "Real" {
		t.Fatalf("expected only Real, got %v", got)
	}
}

func TestExtractScenesFromFileEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "constants.py")
	if err := os.WriteFile(path, []byte("X = 1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := ExtractScenesFromFile(path); !errors.Is(err, ErrNoScenesFound) {
		t.Fatalf("expected ErrNoScenesFound, got %v", err)
	}
}

func TestPopulateDeck(t *testing.T) {
	root := t.TempDir()
	sources := filepath.Join(root, "slide_sources")
	if err := os.MkdirAll(sources, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(sources, "splines.py"), []byte("class Splines(ThreeDSlide):\n    pass\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	deck := &models.Deck{
		Root:       root,
		SourcesDir: sources,
		Sources: []models.SlideSource{
			{Path: filepath.Join("slide_sources", "introduction.py"), Scenes: []string{"IntroductionSlide"}, OrderIndex: 0},
			{Path: filepath.Join("slide_sources", "splines.py"), OrderIndex: 1},
		},
	}

	if err := PopulateDeck(deck); err != nil {
		t.Fatalf("PopulateDeck: %v", err)
	}

	// Overrides are preserved; missing scenes are extracted.
	if got := deck.Sources[0].Scenes; len(got) != 1 || got[0] != "IntroductionSlide" {
		t.Fatalf("override clobbered: %v", got)
	}
	if got := deck.Sources[1].Scenes; len(got) != 1 || got[0] != "Splines" {
		t.Fatalf("extraction failed: %v", got)
	}

	if got := deck.SceneNames(); !reflect.DeepEqual(got, []string{"IntroductionSlide", "Splines"}) {
		t.Fatalf("unexpected deck scene order: %v", got)
	}
}
