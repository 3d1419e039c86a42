// Package server exposes a deck and its render history over HTTP for
// companion pages, and serves the HTML export directory.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/deckhand-cli/deckhand/internal/db"
	"github.com/deckhand-cli/deckhand/internal/logging"
	"github.com/deckhand-cli/deckhand/internal/models"
)

// Config configures the deck server.
type Config struct {
	// Deck is the deck to expose; sources should be in presentation order.
	Deck *models.Deck

	// History provides the render history; nil disables /api/history.
	History *db.EventRepository

	// Hub broadcasts live pipeline events; nil disables /ws.
	Hub *Hub

	// ExportDir is served at /; empty disables static serving.
	ExportDir string
}

// Server is the deckhand HTTP server.
type Server struct {
	config Config
	router *mux.Router
	logger zerolog.Logger
}

// New creates the server and its routes.
func New(config Config) (*Server, error) {
	if config.Deck == nil {
		return nil, fmt.Errorf("deck is required")
	}

	s := &Server{
		config: config,
		router: mux.NewRouter(),
		logger: logging.Component("server"),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/deck", s.handleDeck).Methods(http.MethodGet)
	api.HandleFunc("/deck/sources/{index:[0-9]+}", s.handleSource).Methods(http.MethodGet)
	if s.config.History != nil {
		api.HandleFunc("/history", s.handleHistory).Methods(http.MethodGet)
	}
	if s.config.Hub != nil {
		s.router.HandleFunc("/ws", s.config.Hub.ServeWS)
	}
	if s.config.ExportDir != "" {
		s.router.PathPrefix("/").Handler(http.FileServer(http.Dir(s.config.ExportDir)))
	}
}

// Router returns the HTTP handler, used directly by tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// ListenAndServe runs the server until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("serving deck")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleDeck(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.config.Deck)
}

func (s *Server) handleSource(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil || index < 0 || index >= len(s.config.Deck.Sources) {
		s.writeError(w, http.StatusNotFound, "no slide source at that index")
		return
	}
	s.writeJSON(w, http.StatusOK, s.config.Deck.Sources[index])
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	query := db.EventQuery{Cursor: r.URL.Query().Get("cursor")}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		query.Limit = limit
	}
	if raw := r.URL.Query().Get("type"); raw != "" {
		eventType := models.EventType(raw)
		query.Type = &eventType
	}

	page, err := s.config.History.List(r.Context(), query)
	if err != nil {
		s.logger.Error().Err(err).Msg("history query failed")
		s.writeError(w, http.StatusInternalServerError, "history query failed")
		return
	}
	s.writeJSON(w, http.StatusOK, page)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(value); err != nil {
		s.logger.Warn().Err(err).Msg("write response failed")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
