// Package store defines the persistence capability the auth service
// depends on.
//
// Three interchangeable backends implement UserStore: a Firestore
// document store, an embedded SQLite database, and a flat JSON file.
// The backend is chosen once at process start and injected into the
// service — handlers never branch on which one is active.
package store

import (
	"context"

	"github.com/rokerz/rokerz-server/internal/model"
)

// UserStore is the uniqueness-checked persistence and lookup capability
// for user records.
//
// All Find methods return (nil, nil) when no record matches — absence
// is an answer, not an error. A non-nil error means the backend itself
// failed.
//
// Create assigns the record's ID and CreatedAt and persists it. It does
// not enforce email/username uniqueness; callers check first. (The
// SQLite backend additionally carries UNIQUE constraints as a storage-
// level backstop.)
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	Close() error
}
