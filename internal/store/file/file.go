// Package file implements store.UserStore on a single JSON file.
//
// This is the fallback backend: when no document store is reachable at
// startup, the server runs off a local array-of-records file. The whole
// file is read on every lookup and rewritten on every create — fine for
// its purpose (keeping the site usable without infrastructure), wrong
// for anything bigger.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rokerz/rokerz-server/internal/model"
	"github.com/rokerz/rokerz-server/internal/store"
	"github.com/rs/xid"
)

// compile-time check that *Store implements store.UserStore
var _ store.UserStore = (*Store)(nil)

// Store persists users in a JSON array file.
//
// The mutex serializes every operation. Concurrent registrations would
// otherwise interleave their read-modify-write cycles and could drop
// records or create duplicate emails.
type Store struct {
	mu   sync.Mutex
	path string
}

// New creates a file store at path, initializing the file to an empty
// array if it does not exist yet.
func New(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("file: creating data directory: %w", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
			return nil, fmt.Errorf("file: initializing data file: %w", err)
		}
	}

	return &Store{path: path}, nil
}

// readAll loads every user record from the file.
//
// A missing or unreadable file reads as an empty set. That treats "no
// data yet" and "corrupt data" identically — the original system made
// the same trade, favouring availability over detecting loss.
func (s *Store) readAll() []model.User {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}

	var users []model.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil
	}
	return users
}

func (s *Store) writeAll(users []model.User) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("file: encoding users: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("file: writing users: %w", err)
	}
	return nil
}

// FindByEmail returns the user with the given email, or (nil, nil).
func (s *Store) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.readAll() {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

// FindByUsername returns the user with the given username, or (nil, nil).
func (s *Store) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.readAll() {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

// FindByID returns the user with the given ID, or (nil, nil).
func (s *Store) FindByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.readAll() {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, nil
}

// Create assigns an ID and CreatedAt, appends the record, and rewrites
// the file.
func (s *Store) Create(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.ID = xid.New().String()
	user.CreatedAt = time.Now().UTC()

	users := append(s.readAll(), *user)
	return s.writeAll(users)
}

// Close is a no-op; the store holds no open handles between operations.
func (s *Store) Close() error {
	return nil
}
