package server

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/deckhand-cli/deckhand/internal/db"
	"github.com/deckhand-cli/deckhand/internal/events"
	"github.com/deckhand-cli/deckhand/internal/logging"
)

// Tailer follows the history log and feeds newly recorded events to a
// sink. Render pipelines run in their own processes and only write to the
// history database, so serve tails that database to broadcast live events
// over the websocket hub.
type Tailer struct {
	history  *db.EventRepository
	sink     events.Sink
	interval time.Duration
	lastSeen time.Time
	logger   zerolog.Logger
}

// NewTailer creates a tailer that polls history every interval and feeds
// events recorded after since to the sink.
func NewTailer(history *db.EventRepository, sink events.Sink, interval time.Duration, since time.Time) *Tailer {
	if interval <= 0 {
		interval = time.Second
	}
	return &Tailer{
		history:  history,
		sink:     sink,
		interval: interval,
		lastSeen: since.UTC(),
		logger:   logging.Component("tailer"),
	}
}

// Run polls until the context is cancelled.
func (t *Tailer) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := t.Poll(ctx); err != nil && ctx.Err() == nil {
				t.logger.Warn().Err(err).Msg("history poll failed")
			}
		}
	}
}

// Poll forwards events recorded since the previous poll, oldest first.
func (t *Tailer) Poll(ctx context.Context) error {
	since := t.lastSeen
	page, err := t.history.List(ctx, db.EventQuery{Since: &since})
	if err != nil {
		return err
	}

	// List returns newest first; replay in recorded order. Since is
	// inclusive, so events at exactly lastSeen come back again and are
	// skipped here.
	for i := len(page.Events) - 1; i >= 0; i-- {
		event := page.Events[i]
		if !event.Timestamp.After(t.lastSeen) {
			continue
		}
		if err := t.sink.Record(ctx, event); err != nil {
			return err
		}
		t.lastSeen = event.Timestamp
	}
	return nil
}
