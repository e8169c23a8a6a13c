// Package store holds the persistence layer for contacts. A ContactStore is handed to the HTTP
// layer at startup; the concrete backend is chosen by configuration.
package store

import (
	"context"
	"errors"

	"gitlab.com/dirk.krummacker/contacts-api/internal/model"
)

// ErrNotFound is returned when no contact matches the given id. Ids that are syntactically invalid
// for the backend produce the same error.
var ErrNotFound = errors.New("store: contact not found")

// ContactStore persists contacts.
type ContactStore interface {
	// Create stores the contact and assigns its Id.
	Create(ctx context.Context, contact *model.Contact) error
	// FindAll returns all contacts whose name matches the regular expression, ignoring case.
	// An empty expression returns every contact.
	FindAll(ctx context.Context, name string) ([]model.Contact, error)
	FindFavorites(ctx context.Context) ([]model.Contact, error)
	FindByID(ctx context.Context, id string) (*model.Contact, error)
	// Update overwrites the fields set in the patch and returns the contact after the update.
	Update(ctx context.Context, id string, patch model.ContactPatch) (*model.Contact, error)
	Delete(ctx context.Context, id string) error
	// DeleteAll removes every contact and returns how many were removed.
	DeleteAll(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
