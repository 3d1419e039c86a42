package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/deckhand-cli/deckhand/internal/models"
)

// Event repository errors.
var (
	ErrEventNotFound = errors.New("event not found")
	ErrInvalidEvent  = errors.New("invalid event")
)

// EventRepository handles render-history event persistence.
type EventRepository struct {
	db *DB
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

// EventQuery defines filters for querying events.
type EventQuery struct {
	Type       *models.EventType  // Filter by event type
	EntityType *models.EntityType // Filter by entity type
	EntityID   *string            // Filter by entity ID (deck name or slide path)
	Since      *time.Time         // Events at or after this time (inclusive)
	Until      *time.Time         // Events before this time (exclusive)
	Cursor     string             // Pagination cursor (event ID)
	Limit      int                // Max results to return
}

// EventPage represents a page of query results, newest first.
type EventPage struct {
	Events     []*models.Event
	NextCursor string
}

// Record appends a new event to the history log. Implements events.Sink.
func (r *EventRepository) Record(ctx context.Context, event *models.Event) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	} else {
		event.Timestamp = event.Timestamp.UTC()
	}

	var payloadJSON *string
	if len(event.Payload) > 0 {
		s := string(event.Payload)
		payloadJSON = &s
	}

	var metadataJSON *string
	if event.Metadata != nil {
		data, err := json.Marshal(event.Metadata)
		if err != nil {
			return fmt.Errorf("marshal event metadata: %w", err)
		}
		s := string(data)
		metadataJSON = &s
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO events (id, timestamp, type, entity_type, entity_id, payload_json, metadata_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		event.ID,
		event.Timestamp.Format(time.RFC3339Nano),
		string(event.Type),
		string(event.EntityType),
		event.EntityID,
		payloadJSON,
		metadataJSON,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// Get retrieves an event by ID.
func (r *EventRepository) Get(ctx context.Context, id string) (*models.Event, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, timestamp, type, entity_type, entity_id, payload_json, metadata_json
		FROM events WHERE id = ?
	`, id)

	event, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	return event, err
}

// List returns events matching the query, newest first.
func (r *EventRepository) List(ctx context.Context, query EventQuery) (*EventPage, error) {
	conditions := make([]string, 0, 4)
	args := make([]any, 0, 4)

	if query.Type != nil {
		conditions = append(conditions, "type = ?")
		args = append(args, string(*query.Type))
	}
	if query.EntityType != nil {
		conditions = append(conditions, "entity_type = ?")
		args = append(args, string(*query.EntityType))
	}
	if query.EntityID != nil {
		conditions = append(conditions, "entity_id = ?")
		args = append(args, *query.EntityID)
	}
	if query.Since != nil {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, query.Since.UTC().Format(time.RFC3339Nano))
	}
	if query.Until != nil {
		conditions = append(conditions, "timestamp < ?")
		args = append(args, query.Until.UTC().Format(time.RFC3339Nano))
	}
	if query.Cursor != "" {
		cursor, err := r.Get(ctx, query.Cursor)
		if err != nil {
			return nil, fmt.Errorf("resolve cursor: %w", err)
		}
		conditions = append(conditions, "(timestamp < ? OR (timestamp = ? AND id < ?))")
		ts := cursor.Timestamp.Format(time.RFC3339Nano)
		args = append(args, ts, ts, cursor.ID)
	}

	limit := query.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	sqlQuery := "SELECT id, timestamp, type, entity_type, entity_id, payload_json, metadata_json FROM events"
	if len(conditions) > 0 {
		sqlQuery += " WHERE " + strings.Join(conditions, " AND ")
	}
	sqlQuery += " ORDER BY timestamp DESC, id DESC LIMIT ?"
	args = append(args, limit+1)

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := make([]*models.Event, 0, limit)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	page := &EventPage{Events: events}
	if len(events) > limit {
		page.Events = events[:limit]
		page.NextCursor = events[limit-1].ID
	}
	return page, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*models.Event, error) {
	var (
		event        models.Event
		timestamp    string
		payloadJSON  sql.NullString
		metadataJSON sql.NullString
	)

	err := row.Scan(&event.ID, &timestamp, &event.Type, &event.EntityType, &event.EntityID, &payloadJSON, &metadataJSON)
	if err != nil {
		return nil, err
	}

	event.Timestamp, err = time.Parse(time.RFC3339Nano, timestamp)
	if err != nil {
		return nil, fmt.Errorf("parse event timestamp %q: %w", timestamp, err)
	}

	if payloadJSON.Valid {
		event.Payload = json.RawMessage(payloadJSON.String)
	}
	if metadataJSON.Valid {
		if err := json.Unmarshal([]byte(metadataJSON.String), &event.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal event metadata: %w", err)
		}
	}

	return &event, nil
}
