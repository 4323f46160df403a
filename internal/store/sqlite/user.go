package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rokerz/rokerz-server/internal/model"
	"github.com/rokerz/rokerz-server/internal/store"
	"github.com/rs/xid"
)

// compile-time check that *DB implements store.UserStore
var _ store.UserStore = (*DB)(nil)

// Create inserts a new user, assigning the ID and CreatedAt.
//
// The UNIQUE constraints on email and username make a duplicate insert
// fail here even if two requests raced past the service's existence
// checks.
func (db *DB) Create(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	user.CreatedAt = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Username, err)
	}

	return nil
}

// FindByEmail returns the user with the given email, or (nil, nil).
func (db *DB) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.findBy(ctx, "email", email)
}

// FindByUsername returns the user with the given username, or (nil, nil).
func (db *DB) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return db.findBy(ctx, "username", username)
}

// FindByID returns the user with the given ID, or (nil, nil).
func (db *DB) FindByID(ctx context.Context, id string) (*model.User, error) {
	return db.findBy(ctx, "id", id)
}

// findBy looks up a single user by one of the unique columns.
// The column name is always one of our own literals, never user input.
func (db *DB) findBy(ctx context.Context, column, value string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT id, username, email, password_hash, created_at
		 FROM users WHERE %s = ?`, column),
		value,
	).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite: looking up user by %s: %w", column, err)
	}

	return &u, nil
}
