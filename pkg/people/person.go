// Package people defines the Person record and the remote service contract
// the editor store persists through.
package people

import "context"

// Person is a single people-directory record. The editor only relies on ID
// being unique; the descriptive fields follow the shape served by the
// people API.
type Person struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Height    string `json:"height,omitempty"`
	Mass      string `json:"mass,omitempty"`
	BirthYear string `json:"birth_year,omitempty"`
	Gender    string `json:"gender,omitempty"`
}

// Clone returns a shallow copy. The editor store publishes copies of list
// entries so edits to an in-progress record never mutate the list.
func (p Person) Clone() Person {
	return p
}

// Service is the remote collaborator people are loaded from and saved
// through. Implementations must tolerate overlapping Save calls: the editor
// may start a new save before a previous one resolves.
type Service interface {
	// List returns the full people collection.
	List(ctx context.Context) ([]Person, error)

	// Save persists an edited record and returns the canonical saved
	// version. editID is the id the record was selected under; nil means
	// the record was never selected by id.
	Save(ctx context.Context, p Person, editID *int) (Person, error)
}
