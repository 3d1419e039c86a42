package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/deckhand-cli/deckhand/internal/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := OpenInMemory()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := database.MigrateUp(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return database
}

func TestEventRepositoryRecord(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository(openTestDB(t))

	event := &models.Event{
		Type:       models.EventTypeRenderFinished,
		EntityType: models.EntityTypeSlide,
		EntityID:   "slide_sources/introduction.py",
		Payload:    []byte(`{"duration":"12s"}`),
		Metadata:   map[string]string{"deck": "interpolation"},
	}
	if err := repo.Record(ctx, event); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if event.ID == "" {
		t.Error("expected ID to be set")
	}
	if event.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}

	got, err := repo.Get(ctx, event.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Type != models.EventTypeRenderFinished {
		t.Fatalf("expected render.finished, got %q", got.Type)
	}
	if got.Metadata["deck"] != "interpolation" {
		t.Fatalf("metadata lost: %+v", got.Metadata)
	}
	if string(got.Payload) != `{"duration":"12s"}` {
		t.Fatalf("payload lost: %s", got.Payload)
	}
}

func TestEventRepositoryRecordInvalid(t *testing.T) {
	repo := NewEventRepository(openTestDB(t))
	err := repo.Record(context.Background(), &models.Event{Type: models.EventTypeRenderStarted})
	if !errors.Is(err, ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
}

func TestEventRepositoryGetMissing(t *testing.T) {
	repo := NewEventRepository(openTestDB(t))
	if _, err := repo.Get(context.Background(), "nope"); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}

func TestEventRepositoryList(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository(openTestDB(t))

	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		event := &models.Event{
			Timestamp:  base.Add(time.Duration(i) * time.Minute),
			Type:       models.EventTypeRenderFinished,
			EntityType: models.EntityTypeSlide,
			EntityID:   "slide_sources/splines.py",
		}
		if err := repo.Record(ctx, event); err != nil {
			t.Fatalf("Record %d: %v", i, err)
		}
	}
	failed := &models.Event{
		Timestamp:  base.Add(10 * time.Minute),
		Type:       models.EventTypeRenderFailed,
		EntityType: models.EntityTypeSlide,
		EntityID:   "slide_sources/splines.py",
	}
	if err := repo.Record(ctx, failed); err != nil {
		t.Fatalf("Record failed event: %v", err)
	}

	page, err := repo.List(ctx, EventQuery{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Events) != 6 {
		t.Fatalf("expected 6 events, got %d", len(page.Events))
	}
	// Newest first.
	if page.Events[0].Type != models.EventTypeRenderFailed {
		t.Fatalf("expected render.failed first, got %q", page.Events[0].Type)
	}

	failedType := models.EventTypeRenderFailed
	page, err = repo.List(ctx, EventQuery{Type: &failedType})
	if err != nil {
		t.Fatalf("List filtered: %v", err)
	}
	if len(page.Events) != 1 {
		t.Fatalf("expected 1 failed event, got %d", len(page.Events))
	}
}

func TestEventRepositoryListPagination(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository(openTestDB(t))

	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		event := &models.Event{
			Timestamp:  base.Add(time.Duration(i) * time.Second),
			Type:       models.EventTypeRenderStarted,
			EntityType: models.EntityTypeSlide,
			EntityID:   "slide_sources/introduction.py",
		}
		if err := repo.Record(ctx, event); err != nil {
			t.Fatalf("Record %d: %v", i, err)
		}
	}

	seen := make(map[string]struct{})
	cursor := ""
	pages := 0
	for {
		page, err := repo.List(ctx, EventQuery{Limit: 3, Cursor: cursor})
		if err != nil {
			t.Fatalf("List page %d: %v", pages, err)
		}
		for _, event := range page.Events {
			if _, dup := seen[event.ID]; dup {
				t.Fatalf("event %s returned twice", event.ID)
			}
			seen[event.ID] = struct{}{}
		}
		pages++
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	if len(seen) != 7 {
		t.Fatalf("expected 7 events across pages, got %d", len(seen))
	}
	if pages != 3 {
		t.Fatalf("expected 3 pages, got %d", pages)
	}
}
