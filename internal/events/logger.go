// Package events provides helper functions for recording deckhand history events.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/deckhand-cli/deckhand/internal/models"
)

// Sink is the minimal interface needed to record events.
type Sink interface {
	Record(ctx context.Context, event *models.Event) error
}

// MultiSink fans one event out to several sinks. The first error wins but
// remaining sinks still receive the event.
type MultiSink []Sink

// Record implements Sink.
func (m MultiSink) Record(ctx context.Context, event *models.Event) error {
	var first error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Record(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func record(ctx context.Context, sink Sink, event *models.Event, payload any) error {
	if sink == nil {
		return fmt.Errorf("event sink is required")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", event.Type, err)
	}
	event.Payload = data

	return sink.Record(ctx, event)
}

// LogRenderStarted records that rendering of one slide source began.
func LogRenderStarted(ctx context.Context, sink Sink, deckName, sourcePath, command, quality string) error {
	return record(ctx, sink, &models.Event{
		Type:       models.EventTypeRenderStarted,
		EntityType: models.EntityTypeSlide,
		EntityID:   sourcePath,
		Metadata:   map[string]string{"deck": deckName},
	}, models.RenderStartedPayload{
		SourcePath: sourcePath,
		Command:    command,
		Quality:    quality,
	})
}

// LogRenderFinished records a successful render of one slide source.
func LogRenderFinished(ctx context.Context, sink Sink, deckName, sourcePath string, duration time.Duration) error {
	return record(ctx, sink, &models.Event{
		Type:       models.EventTypeRenderFinished,
		EntityType: models.EntityTypeSlide,
		EntityID:   sourcePath,
		Metadata:   map[string]string{"deck": deckName},
	}, models.RenderFinishedPayload{
		SourcePath: sourcePath,
		Duration:   duration.Round(time.Millisecond).String(),
	})
}

// LogRenderFailed records a failed render of one slide source.
func LogRenderFailed(ctx context.Context, sink Sink, deckName, sourcePath string, renderErr error, stderr string) error {
	msg := ""
	if renderErr != nil {
		msg = renderErr.Error()
	}
	return record(ctx, sink, &models.Event{
		Type:       models.EventTypeRenderFailed,
		EntityType: models.EntityTypeSlide,
		EntityID:   sourcePath,
		Metadata:   map[string]string{"deck": deckName},
	}, models.RenderFailedPayload{
		SourcePath: sourcePath,
		Error:      msg,
		Stderr:     stderr,
	})
}

// LogPresentStarted records the start of an interactive presentation.
func LogPresentStarted(ctx context.Context, sink Sink, deckName string, scenes []string, command string) error {
	return record(ctx, sink, &models.Event{
		Type:       models.EventTypePresentStarted,
		EntityType: models.EntityTypeDeck,
		EntityID:   deckName,
	}, models.PresentStartedPayload{
		Scenes:  scenes,
		Command: command,
	})
}

// LogExportFinished records a completed HTML export.
func LogExportFinished(ctx context.Context, sink Sink, deckName, outputPath string, duration time.Duration) error {
	return record(ctx, sink, &models.Event{
		Type:       models.EventTypeExportFinished,
		EntityType: models.EntityTypeDeck,
		EntityID:   deckName,
	}, models.ExportFinishedPayload{
		OutputPath: outputPath,
		Duration:   duration.Round(time.Millisecond).String(),
	})
}

// LogWarning records a deck-level warning, such as falling back to
// lexicographic ordering.
func LogWarning(ctx context.Context, sink Sink, deckName, message, detail string) error {
	return record(ctx, sink, &models.Event{
		Type:       models.EventTypeWarning,
		EntityType: models.EntityTypeDeck,
		EntityID:   deckName,
	}, models.WarningPayload{
		Message: message,
		Detail:  detail,
	})
}

// LogDeckInitialized records scaffolding of a new deck.
func LogDeckInitialized(ctx context.Context, sink Sink, deckName, root string) error {
	if sink == nil {
		return fmt.Errorf("event sink is required")
	}
	return sink.Record(ctx, &models.Event{
		Type:       models.EventTypeDeckInitialized,
		EntityType: models.EntityTypeDeck,
		EntityID:   deckName,
		Metadata:   map[string]string{"root": root},
	})
}
