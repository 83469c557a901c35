// Package monitor exposes a read-only HTTP view of a live triage
// session: a JSON snapshot of the message log and a Server-Sent Events
// stream of log changes.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/felixgeelhaar/remedy/internal/domain/conversation"
)

// Server is the monitor HTTP server.
type Server struct {
	addr   string
	log    *conversation.Log
	logger *slog.Logger

	server *http.Server

	mu      sync.RWMutex
	clients map[chan conversation.Event]struct{}
}

// NewServer creates a monitor over the given message log.
func NewServer(addr string, log *conversation.Log, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:    addr,
		log:     log,
		logger:  logger,
		clients: make(map[chan conversation.Event]struct{}),
	}
}

// Start subscribes to the log and serves until Shutdown or a listener
// error.
func (s *Server) Start() error {
	unsubscribe := s.log.Subscribe(func(e conversation.Event) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		for ch := range s.clients {
			select {
			case ch <- e:
			default:
				// Drop if client is slow
			}
		}
	})
	defer unsubscribe()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/log", s.handleSnapshot)
	mux.HandleFunc("GET /events", s.handleEvents)

	s.server = &http.Server{
		Addr:        s.addr,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
	}

	s.logger.Info("monitor listening", "addr", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	entries := s.log.Snapshot()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entries); err != nil {
		s.logger.Warn("snapshot encode failed", "error", err)
	}
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	ch := make(chan conversation.Event, 64)

	s.mu.Lock()
	s.clients[ch] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, ch)
		s.mu.Unlock()
	}()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-ch:
			data, err := json.Marshal(event.Entry)
			if err != nil {
				continue
			}
			_, _ = fmt.Fprintf(w, "id: %s\n", event.Entry.ID)
			_, _ = fmt.Fprintf(w, "event: %s\n", event.Op)
			_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}
