// Package editor implements the person edit store: a state container that
// holds the people list and the single-record edit workflow (select by id,
// edit, save through the remote service, or cancel).
//
// The store is the single source of truth for its state. Reads go through
// read-only projections (People, EditID, EditedPerson) and mutation goes
// through the named commands (LoadPeople, EditPerson, CancelEditPerson,
// SaveEditPerson). The only asynchronous operation is the save; overlapping
// save triggers follow switch-to-latest semantics where only the most
// recently initiated save's result is acted upon.
//
// Usage:
//
//	store := editor.New(svc, editor.WithLogger(logger))
//	defer store.Close()
//
//	stop := store.EditedPerson().Subscribe(func(p *people.Person) {
//	    // render the edit form
//	})
//	defer stop()
//
//	store.LoadPeople(list)
//	store.EditPerson(editor.ID(1))
//	store.SaveEditPerson(ctx)
package editor
