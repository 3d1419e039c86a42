package models

import (
	"encoding/json"
	"strings"
	"time"
)

// EventType categorizes events in the render history log.
type EventType string

const (
	// Deck events
	EventTypeDeckInitialized EventType = "deck.initialized"

	// Render events
	EventTypeRenderStarted  EventType = "render.started"
	EventTypeRenderFinished EventType = "render.finished"
	EventTypeRenderFailed   EventType = "render.failed"

	// Present events
	EventTypePresentStarted EventType = "present.started"

	// Export events
	EventTypeExportFinished EventType = "export.finished"

	// Warning events
	EventTypeWarning EventType = "warning"
)

// EntityType identifies the type of entity an event relates to.
type EntityType string

const (
	EntityTypeDeck  EntityType = "deck"
	EntityTypeSlide EntityType = "slide"
)

// Event represents an append-only history entry.
type Event struct {
	// ID is the unique identifier for the event.
	ID string `json:"id"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Type categorizes the event.
	Type EventType `json:"type"`

	// EntityType identifies what kind of entity this event relates to.
	EntityType EntityType `json:"entity_type"`

	// EntityID is the ID of the related entity (deck name or slide path).
	EntityID string `json:"entity_id"`

	// Payload contains event-specific data.
	Payload json.RawMessage `json:"payload,omitempty"`

	// Metadata contains additional context.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Validate checks if the event is valid.
func (e *Event) Validate() error {
	validation := &ValidationErrors{}
	if strings.TrimSpace(string(e.Type)) == "" {
		validation.AddMessage("type", "event type is required")
	}
	if strings.TrimSpace(string(e.EntityType)) == "" {
		validation.AddMessage("entity_type", "entity_type is required")
	}
	if strings.TrimSpace(e.EntityID) == "" {
		validation.AddMessage("entity_id", "entity_id is required")
	}
	return validation.Err()
}

// RenderStartedPayload is the payload for render.started events.
type RenderStartedPayload struct {
	SourcePath string `json:"source_path"`
	Command    string `json:"command"`
	Quality    string `json:"quality,omitempty"`
}

// RenderFinishedPayload is the payload for render.finished events.
type RenderFinishedPayload struct {
	SourcePath string `json:"source_path"`
	Duration   string `json:"duration"`
}

// RenderFailedPayload is the payload for render.failed events.
type RenderFailedPayload struct {
	SourcePath string `json:"source_path"`
	Error      string `json:"error"`
	Stderr     string `json:"stderr,omitempty"`
}

// PresentStartedPayload is the payload for present.started events.
type PresentStartedPayload struct {
	Scenes  []string `json:"scenes"`
	Command string   `json:"command"`
}

// ExportFinishedPayload is the payload for export.finished events.
type ExportFinishedPayload struct {
	OutputPath string `json:"output_path"`
	Duration   string `json:"duration"`
}

// WarningPayload is the payload for warning events.
type WarningPayload struct {
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}
