// Package server exposes an editor store to UI clients over HTTP and
// WebSocket: a JSON API for the edit workflow commands, a live snapshot
// feed pushed on every projection change, and a Prometheus metrics
// endpoint.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MASAKi-cell/personstore/pkg/editor"
	"github.com/MASAKi-cell/personstore/pkg/people"
)

// Snapshot is the combined view of the store's state pushed to clients.
type Snapshot struct {
	People       []people.Person `json:"people"`
	EditID       *int            `json:"edit_id"`
	EditedPerson *people.Person  `json:"edited_person"`
}

// Server serves the edit workflow for one editor store.
type Server struct {
	store  *editor.Store
	svc    people.Service
	logger *slog.Logger

	router   chi.Router
	upgrader websocket.Upgrader
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a server for the given store. svc is the people source used
// by the load endpoint; it is normally the same service the store saves
// through.
func New(store *editor.Store, svc people.Service, opts ...Option) *Server {
	s := &Server{
		store:  store,
		svc:    svc,
		logger: slog.Default(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/api/people", s.handlePeople)
	r.Post("/api/people/load", s.handleLoad)
	r.Post("/api/people/{id}/edit", s.handleEditPerson)
	r.Get("/api/edit", s.handleEditState)
	r.Put("/api/edit", s.handleSetEdited)
	r.Post("/api/edit/cancel", s.handleCancel)
	r.Post("/api/edit/save", s.handleSave)
	r.Get("/ws", s.handleWS)
	r.Handle("/metrics", promhttp.Handler())
	s.router = r

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) snapshot() Snapshot {
	return Snapshot{
		People:       s.store.People().Get(),
		EditID:       s.store.EditID().Get(),
		EditedPerson: s.store.EditedPerson().Get(),
	}
}

func (s *Server) handlePeople(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.People().Get())
}

// handleLoad refreshes the store's people list from the service.
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.List(r.Context())
	if err != nil {
		s.logger.Error("load people failed", "error", err)
		writeError(w, http.StatusBadGateway, "load people failed")
		return
	}
	s.store.LoadPeople(list)
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleEditPerson(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid person id")
		return
	}
	s.store.EditPerson(&id)
	writeJSON(w, http.StatusOK, s.editState())
}

func (s *Server) handleEditState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.editState())
}

// handleSetEdited replaces the in-progress record with the request body.
func (s *Server) handleSetEdited(w http.ResponseWriter, r *http.Request) {
	var p people.Person
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid person payload")
		return
	}
	s.store.SetEditedPerson(&p)
	writeJSON(w, http.StatusOK, s.editState())
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	s.store.CancelEditPerson()
	writeJSON(w, http.StatusOK, s.editState())
}

// handleSave triggers the save workflow. The save runs asynchronously;
// the response only acknowledges the trigger.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	s.store.SaveEditPerson(r.Context())
	w.WriteHeader(http.StatusAccepted)
}

// EditState is the edit-related slice of the snapshot.
type EditState struct {
	EditID       *int           `json:"edit_id"`
	EditedPerson *people.Person `json:"edited_person"`
}

func (s *Server) editState() EditState {
	return EditState{
		EditID:       s.store.EditID().Get(),
		EditedPerson: s.store.EditedPerson().Get(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
