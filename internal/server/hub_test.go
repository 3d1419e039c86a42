package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/deckhand-cli/deckhand/internal/db"
	"github.com/deckhand-cli/deckhand/internal/models"
)

type captureSink struct {
	mu     sync.Mutex
	events []*models.Event
}

func (s *captureSink) Record(_ context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *captureSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func dialWS(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubBroadcastsRecordedEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	go hub.Run(ctx)

	conn := dialWS(t, hub)

	// Registration happens on the hub goroutine after the upgrade, so
	// keep recording until a broadcast lands.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				hub.Record(ctx, &models.Event{
					Type:       models.EventTypeRenderFinished,
					EntityType: models.EntityTypeSlide,
					EntityID:   "slide_sources/splines.py",
				})
			}
		}
	}()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read broadcast: %v", err)
	}

	var event models.Event
	if err := json.Unmarshal(data, &event); err != nil {
		t.Fatalf("unmarshal broadcast: %v", err)
	}
	if event.Type != models.EventTypeRenderFinished || event.EntityID != "slide_sources/splines.py" {
		t.Fatalf("unexpected broadcast: %+v", event)
	}
}

// Render pipelines record only to the history database; serve's tailer is
// what turns those rows into websocket broadcasts.
func TestHistoryTailReachesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	database, err := db.OpenInMemory()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if err := database.MigrateUp(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	repo := db.NewEventRepository(database)

	hub := NewHub()
	go hub.Run(ctx)
	go NewTailer(repo, hub, 20*time.Millisecond, time.Time{}).Run(ctx)

	conn := dialWS(t, hub)

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				repo.Record(ctx, &models.Event{
					Type:       models.EventTypeRenderStarted,
					EntityType: models.EntityTypeSlide,
					EntityID:   "slide_sources/introduction.py",
				})
			}
		}
	}()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read broadcast: %v", err)
	}

	var event models.Event
	if err := json.Unmarshal(data, &event); err != nil {
		t.Fatalf("unmarshal broadcast: %v", err)
	}
	if event.Type != models.EventTypeRenderStarted {
		t.Fatalf("unexpected broadcast: %+v", event)
	}
}

func TestTailerForwardsEachEventOnce(t *testing.T) {
	ctx := context.Background()

	database, err := db.OpenInMemory()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if err := database.MigrateUp(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	repo := db.NewEventRepository(database)

	sink := &captureSink{}
	tailer := NewTailer(repo, sink, time.Second, time.Time{})

	record := func(entityID string) {
		t.Helper()
		err := repo.Record(ctx, &models.Event{
			Type:       models.EventTypeRenderFinished,
			EntityType: models.EntityTypeSlide,
			EntityID:   entityID,
		})
		if err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	record("slide_sources/introduction.py")
	if err := tailer.Poll(ctx); err != nil {
		t.Fatalf("poll: %v", err)
	}
	if sink.count() != 1 {
		t.Fatalf("expected 1 forwarded event, got %d", sink.count())
	}

	// Nothing new; a second poll must not re-forward.
	if err := tailer.Poll(ctx); err != nil {
		t.Fatalf("poll: %v", err)
	}
	if sink.count() != 1 {
		t.Fatalf("event forwarded twice, got %d", sink.count())
	}

	record("slide_sources/splines.py")
	if err := tailer.Poll(ctx); err != nil {
		t.Fatalf("poll: %v", err)
	}
	if sink.count() != 2 {
		t.Fatalf("expected 2 forwarded events, got %d", sink.count())
	}
	if sink.events[1].EntityID != "slide_sources/splines.py" {
		t.Fatalf("unexpected second event: %+v", sink.events[1])
	}
}

func TestServeWSAfterShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	hub := NewHub()
	go hub.Run(ctx)

	cancel()
	<-hub.done

	// A client arriving after shutdown must be closed, not stranded on
	// the register channel.
	conn := dialWS(t, hub)
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("expected closed connection after hub shutdown")
	}
}
