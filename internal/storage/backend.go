package storage

import (
	"context"
	"errors"
)

// ErrNotFound reports that a locator does not resolve to stored bytes.
var ErrNotFound = errors.New("stored object not found")

// Backend stores raw photo bytes and returns a retrievable locator.
// Exactly one Backend is primary per deployment; a failed primary write is
// fatal to the upload that triggered it.
type Backend interface {
	// Store writes data under name and returns the backend-specific locator.
	Store(ctx context.Context, name string, data []byte) (string, error)
	// Retrieve reads back the bytes a previous Store returned locator for.
	Retrieve(ctx context.Context, locator string) ([]byte, error)
	// Remove deletes the stored bytes. Removing an absent object is not an error.
	Remove(ctx context.Context, locator string) error
	// Name identifies the backend in logs and the health endpoint.
	Name() string
}
