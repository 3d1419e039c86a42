package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/deckhand-cli/deckhand/internal/models"
)

type captureSink struct {
	events []*models.Event
	err    error
}

func (s *captureSink) Record(ctx context.Context, event *models.Event) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func TestLogRenderFailed(t *testing.T) {
	sink := &captureSink{}
	err := LogRenderFailed(context.Background(), sink, "interpolation",
		"slide_sources/splines.py", errors.New("exit status 1"), "Traceback ...")
	if err != nil {
		t.Fatalf("LogRenderFailed: %v", err)
	}
	if len(sink.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(sink.events))
	}

	event := sink.events[0]
	if event.Type != models.EventTypeRenderFailed {
		t.Fatalf("expected render.failed, got %q", event.Type)
	}
	if event.EntityID != "slide_sources/splines.py" {
		t.Fatalf("unexpected entity id %q", event.EntityID)
	}

	var payload models.RenderFailedPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Error != "exit status 1" || payload.Stderr == "" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestLogPresentStarted(t *testing.T) {
	sink := &captureSink{}
	scenes := []string{"IntroductionSlide", "Splines"}
	if err := LogPresentStarted(context.Background(), sink, "interpolation", scenes, "manim-slides present IntroductionSlide Splines"); err != nil {
		t.Fatalf("LogPresentStarted: %v", err)
	}

	var payload models.PresentStartedPayload
	if err := json.Unmarshal(sink.events[0].Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if len(payload.Scenes) != 2 {
		t.Fatalf("unexpected scenes: %v", payload.Scenes)
	}
}

func TestLogWarning(t *testing.T) {
	sink := &captureSink{}
	err := LogWarning(context.Background(), sink, "interpolation",
		"slide sources ordered lexicographically",
		"create .slides_order or deck.yaml to control ordering")
	if err != nil {
		t.Fatalf("LogWarning: %v", err)
	}

	event := sink.events[0]
	if event.Type != models.EventTypeWarning || event.EntityType != models.EntityTypeDeck {
		t.Fatalf("unexpected event: %+v", event)
	}

	var payload models.WarningPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Message == "" || payload.Detail == "" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestLogRenderFinishedNilSink(t *testing.T) {
	if err := LogRenderFinished(context.Background(), nil, "deck", "a.py", time.Second); err == nil {
		t.Fatal("expected error for nil sink")
	}
}

func TestMultiSinkFansOut(t *testing.T) {
	first := &captureSink{}
	failing := &captureSink{err: errors.New("db closed")}
	second := &captureSink{}

	multi := MultiSink{first, failing, second}
	err := LogDeckInitialized(context.Background(), multi, "interpolation", "/tmp/deck")
	if err == nil || err.Error() != "db closed" {
		t.Fatalf("expected first sink error, got %v", err)
	}
	if len(first.events) != 1 || len(second.events) != 1 {
		t.Fatal("all healthy sinks should still receive the event")
	}
}
