// Package web is the browser front end to the entry store: a listing, an
// entry form, and attachment handling. It stays thin; every mutation goes
// through the store and the text codec.
package web

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mfaerber/kitchenlog/internal/gitsync"
	"github.com/mfaerber/kitchenlog/internal/logbook"
)

// Server serves the web form over one Store instance. The store assumes a
// single mutator, so the server must be that process's only writer.
type Server struct {
	store  *logbook.Store
	syncer *gitsync.Syncer // nil disables git publishing
	logger *slog.Logger
}

// New wires the handlers onto a chi router.
func New(store *logbook.Store, syncer *gitsync.Syncer, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{store: store, syncer: syncer, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleList)
	r.Get("/new", s.handleNewForm)
	r.Post("/new", s.handleNewSubmit)
	r.Get("/entry/{ordinal}", s.handleEntry)
	r.Post("/entry/{ordinal}", s.handleEntrySubmit)
	r.Get("/media/{ordinal}/{filename}", s.handleMedia)

	return r
}

// publish pushes the repository after a successful commit when git sync is
// configured. A sync failure is logged, not surfaced: the entry is safely on
// disk either way.
func (s *Server) publish(r *http.Request, message string) {
	if s.syncer == nil {
		return
	}
	if err := s.syncer.Publish(r.Context(), message); err != nil {
		s.logger.Error("git publish failed", "error", err)
	}
}
