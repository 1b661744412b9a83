package editor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/MASAKi-cell/personstore/pkg/people"
	"github.com/MASAKi-cell/personstore/pkg/reactive"
)

// tracerName identifies spans emitted by the store.
const tracerName = "personstore"

// Store holds the people list and the in-progress edit state.
// All commands are safe for concurrent use; state transitions are
// serialized through one mutex.
type Store struct {
	svc     people.Service
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer

	people *reactive.Signal[[]people.Person]
	editID *reactive.Signal[*int]
	edited *reactive.Signal[*people.Person]

	// cmdMu serializes commands and save-result application.
	cmdMu sync.Mutex

	// saveGen identifies the current save; a completion whose generation
	// no longer matches is discarded (switch-to-latest).
	saveGen    uint64
	saveCancel context.CancelFunc

	// untap releases the diagnostic observer on the edited-person signal.
	untap     func()
	closeOnce sync.Once
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics attaches save and edit metrics.
func WithMetrics(m *Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// New creates a store backed by the given service. The store starts with an
// empty people list and no selection, and attaches its diagnostic observer
// to the edited-person projection. Call Close when done with the store.
func New(svc people.Service, opts ...Option) *Store {
	s := &Store{
		svc:    svc,
		logger: slog.Default(),
		tracer: otel.Tracer(tracerName),
		people: reactive.New([]people.Person{}),
		editID: reactive.New[*int](nil),
		// The edited projection publishes fresh copies, so equality is
		// identity: setting a copy always notifies, even when its
		// fields match the record already in edit. Only repeated nils
		// are suppressed.
		edited: reactive.New[*people.Person](nil).WithEquals(
			func(a, b *people.Person) bool { return a == b },
		),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.untap = s.edited.Subscribe(func(p *people.Person) {
		if p != nil {
			s.logger.Debug("edited person changed", "id", p.ID, "name", p.Name)
		} else {
			s.logger.Debug("edited person cleared")
		}
	})

	return s
}

// ID is a convenience for building the optional id commands accept.
func ID(id int) *int {
	return &id
}

// People is the projection of the current people list.
func (s *Store) People() reactive.Readonly[[]people.Person] {
	return s.people.Readonly()
}

// EditID is the projection of the currently selected id; nil means no
// selection.
func (s *Store) EditID() reactive.Readonly[*int] {
	return s.editID.Readonly()
}

// EditedPerson is the projection of the record currently being edited.
// Emitted values are copies; mutating one never changes the people list.
func (s *Store) EditedPerson() reactive.Readonly[*people.Person] {
	return s.edited.Readonly()
}

// LoadPeople replaces the people list. A nil list loads the empty list.
// The selection is left untouched.
func (s *Store) LoadPeople(list []people.Person) {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()

	next := make([]people.Person, len(list))
	copy(next, list)
	s.people.Set(next)
}

// EditPerson selects the record with the given id for editing. The id is
// set unconditionally; the edited person becomes a copy of the first
// matching list entry, or nil when id is nil or unmatched. An unmatched id
// is a valid "requested but not found" state, not an error. Note that 0 is
// a valid id, distinct from no selection.
func (s *Store) EditPerson(id *int) {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()
	s.applyEdit(id)
}

// SetEditedPerson replaces the in-progress record with a copy of p, or
// clears it when p is nil. This is how an edit form publishes the user's
// unsaved changes back into the store; the selection is left untouched.
func (s *Store) SetEditedPerson(p *people.Person) {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()

	if p == nil {
		s.edited.Set(nil)
		return
	}
	c := p.Clone()
	s.edited.Set(&c)
}

// CancelEditPerson clears the selection and the edited record.
func (s *Store) CancelEditPerson() {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()
	s.clearEdit()
}

// SaveEditPerson persists the record currently being edited, using the
// edited-person and edit-id values at trigger time. When nothing is being
// edited the trigger is a no-op. The save runs off the calling goroutine;
// a new trigger before a prior save resolves supersedes it, and the
// superseded save's result is discarded. On success the edit selection is
// refreshed from the saved record's own id and then cleared. On failure
// the error is logged and state is left untouched.
func (s *Store) SaveEditPerson(ctx context.Context) {
	s.cmdMu.Lock()

	edited := s.edited.Get()
	if edited == nil {
		s.cmdMu.Unlock()
		s.logger.Debug("save requested with no person in edit")
		return
	}
	record := edited.Clone()
	editID := copyID(s.editID.Get())

	s.saveGen++
	gen := s.saveGen
	if s.saveCancel != nil {
		s.saveCancel()
	}
	saveCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.saveCancel = cancel
	s.cmdMu.Unlock()

	go s.runSave(saveCtx, gen, record, editID)
}

// runSave performs the service call and applies the outcome if this save is
// still the current one.
func (s *Store) runSave(ctx context.Context, gen uint64, record people.Person, editID *int) {
	attrs := []attribute.KeyValue{attribute.Int("person.id", record.ID)}
	if editID != nil {
		attrs = append(attrs, attribute.Int("person.edit_id", *editID))
	}
	ctx, span := s.tracer.Start(ctx, "personstore.save",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
	defer span.End()

	start := time.Now()
	saved, err := s.svc.Save(ctx, record, editID)
	elapsed := time.Since(start)

	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()

	if gen != s.saveGen {
		span.SetAttributes(attribute.Bool("personstore.superseded", true))
		s.metrics.observeSave("superseded", elapsed)
		return
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error("save person failed", "id", record.ID, "error", err)
		s.metrics.observeSave("error", elapsed)
		return
	}

	span.SetStatus(codes.Ok, "")
	s.metrics.observeSave("success", elapsed)

	// Refresh the selection from the saved record's own id, then clear.
	// The refresh is observable only through the edited-person observer;
	// it is kept deliberately, and it notifies even when the resolved
	// copy matches the record that was saved.
	id := saved.ID
	s.applyEdit(&id)
	s.clearEdit()
}

// Close releases the store's internal subscription and abandons any
// in-flight save. Close is idempotent.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		s.cmdMu.Lock()
		s.saveGen++
		if s.saveCancel != nil {
			s.saveCancel()
			s.saveCancel = nil
		}
		s.cmdMu.Unlock()

		s.untap()
	})
}

// applyEdit sets the selection and resolves the edited record.
// Caller must hold cmdMu.
func (s *Store) applyEdit(id *int) {
	id = copyID(id)
	reactive.Batch(func() {
		s.editID.Set(id)
		s.edited.Set(s.lookup(id))
	})
	s.metrics.setEditing(id != nil)
}

// clearEdit drops the selection and the edited record.
// Caller must hold cmdMu.
func (s *Store) clearEdit() {
	reactive.Batch(func() {
		s.editID.Set(nil)
		s.edited.Set(nil)
	})
	s.metrics.setEditing(false)
}

// lookup returns a copy of the first list entry matching id, or nil.
func (s *Store) lookup(id *int) *people.Person {
	if id == nil {
		return nil
	}
	for _, p := range s.people.Get() {
		if p.ID == *id {
			c := p.Clone()
			return &c
		}
	}
	return nil
}

// copyID duplicates an optional id so stored state never aliases caller
// memory.
func copyID(id *int) *int {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
