// Package firestore implements store.UserStore on Google Cloud
// Firestore, the document-store backend.
//
// Credentials arrive as a base64-encoded service-account JSON blob in
// the environment, which keeps multi-line JSON out of .env files and
// deployment config.
package firestore

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"github.com/rokerz/rokerz-server/internal/model"
	"github.com/rokerz/rokerz-server/internal/store"
	"github.com/rs/xid"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const usersCollection = "users"

// compile-time check that *Store implements store.UserStore
var _ store.UserStore = (*Store)(nil)

// Store persists users as documents in a Firestore collection.
type Store struct {
	client *firestore.Client
}

// New initializes a Firebase app and opens a Firestore client.
//
// Any failure here — missing credentials, bad project ID, unreachable
// service — is returned to the caller, which decides whether to abort
// or fall back to another backend.
func New(ctx context.Context, projectID, credentialsBase64 string) (*Store, error) {
	if projectID == "" {
		return nil, errors.New("firestore: project ID is not configured")
	}
	if credentialsBase64 == "" {
		return nil, errors.New("firestore: credentials are not configured")
	}

	credentials, err := base64.StdEncoding.DecodeString(credentialsBase64)
	if err != nil {
		return nil, fmt.Errorf("firestore: decoding credentials: %w", err)
	}

	app, err := firebase.NewApp(ctx,
		&firebase.Config{ProjectID: projectID},
		option.WithCredentialsJSON(credentials),
	)
	if err != nil {
		return nil, fmt.Errorf("firestore: initializing firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore: creating client: %w", err)
	}

	return &Store{client: client}, nil
}

// Create assigns an ID and CreatedAt and writes the user document.
// The document ID doubles as the user ID.
func (s *Store) Create(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	user.CreatedAt = time.Now().UTC()

	// DocRef.Create fails if the document already exists; with random
	// IDs that only guards against ID collisions, not duplicate emails.
	_, err := s.client.Collection(usersCollection).Doc(user.ID).Create(ctx, user)
	if err != nil {
		return fmt.Errorf("firestore: creating user %s: %w", user.Username, err)
	}

	return nil
}

// FindByEmail returns the user with the given email, or (nil, nil).
func (s *Store) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findBy(ctx, "email", email)
}

// FindByUsername returns the user with the given username, or (nil, nil).
func (s *Store) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.findBy(ctx, "username", username)
}

// FindByID returns the user with the given ID, or (nil, nil).
func (s *Store) FindByID(ctx context.Context, id string) (*model.User, error) {
	doc, err := s.client.Collection(usersCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("firestore: getting user %s: %w", id, err)
	}

	var u model.User
	if err := doc.DataTo(&u); err != nil {
		return nil, fmt.Errorf("firestore: decoding user %s: %w", id, err)
	}
	return &u, nil
}

// findBy queries the collection for a single document whose field
// matches value.
func (s *Store) findBy(ctx context.Context, field, value string) (*model.User, error) {
	iter := s.client.Collection(usersCollection).
		Where(field, "==", value).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("firestore: querying users by %s: %w", field, err)
	}

	var u model.User
	if err := doc.DataTo(&u); err != nil {
		return nil, fmt.Errorf("firestore: decoding user document: %w", err)
	}
	return &u, nil
}

// Close releases the Firestore client.
func (s *Store) Close() error {
	return s.client.Close()
}
