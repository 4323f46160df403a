package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rokerz/rokerz-server/internal/model"
)

// newTestStore creates a Store backed by a file in a temp directory
// that is cleaned up automatically.
func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	s, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s, path
}

func createTestUser(t *testing.T, s *Store, username, email string) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: "$2a$04$fakefakefakefakefakefake",
	}
	if err := s.Create(context.Background(), user); err != nil {
		t.Fatalf("Create(%s) error = %v", username, err)
	}
	return user
}

func TestNew_InitializesEmptyFile(t *testing.T) {
	_, path := newTestStore(t)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading data file: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("initial file contents = %q, want %q", data, "[]")
	}
}

func TestCreate_AssignsIDAndCreatedAt(t *testing.T) {
	s, _ := newTestStore(t)

	user := createTestUser(t, s, "ada", "ada@example.com")

	if user.ID == "" {
		t.Error("Create() did not set user.ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("Create() did not set user.CreatedAt")
	}
}

func TestFindByEmail_RoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	created := createTestUser(t, s, "ada", "ada@example.com")

	found, err := s.FindByEmail(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("FindByEmail() error = %v", err)
	}
	if found == nil {
		t.Fatal("FindByEmail() returned nil for an existing user")
	}
	if found.ID != created.ID {
		t.Errorf("ID = %q, want %q", found.ID, created.ID)
	}
	if found.PasswordHash != created.PasswordHash {
		t.Error("FindByEmail() did not round-trip the password hash")
	}
}

func TestFindByUsername_RoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	created := createTestUser(t, s, "grace", "grace@example.com")

	found, err := s.FindByUsername(context.Background(), "grace")
	if err != nil {
		t.Fatalf("FindByUsername() error = %v", err)
	}
	if found == nil || found.ID != created.ID {
		t.Fatalf("FindByUsername() = %+v, want user %q", found, created.ID)
	}
}

func TestFindByID_RoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	created := createTestUser(t, s, "alan", "alan@example.com")

	found, err := s.FindByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if found == nil || found.Username != "alan" {
		t.Fatalf("FindByID() = %+v, want username %q", found, "alan")
	}
}

func TestFind_AbsentReturnsNilNil(t *testing.T) {
	s, _ := newTestStore(t)

	found, err := s.FindByEmail(context.Background(), "nobody@example.com")
	if err != nil {
		t.Fatalf("FindByEmail() error = %v", err)
	}
	if found != nil {
		t.Errorf("FindByEmail() = %+v, want nil for absent user", found)
	}
}

func TestCreate_GeneratesUniqueIDs(t *testing.T) {
	s, _ := newTestStore(t)

	first := createTestUser(t, s, "u1", "u1@example.com")
	second := createTestUser(t, s, "u2", "u2@example.com")

	if first.ID == second.ID {
		t.Errorf("Create() generated duplicate IDs: %q", first.ID)
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	s, path := newTestStore(t)
	created := createTestUser(t, s, "ada", "ada@example.com")

	reopened, err := New(path)
	if err != nil {
		t.Fatalf("New() on existing file: %v", err)
	}

	found, err := reopened.FindByEmail(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("FindByEmail() after reopen: %v", err)
	}
	if found == nil || found.ID != created.ID {
		t.Fatalf("user did not survive reopen: got %+v", found)
	}
}

func TestCorruptFile_ReadsAsEmpty(t *testing.T) {
	s, path := newTestStore(t)
	createTestUser(t, s, "ada", "ada@example.com")

	// Clobber the file with invalid JSON. Reads must degrade to an
	// empty set rather than erroring.
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("corrupting file: %v", err)
	}

	found, err := s.FindByEmail(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("FindByEmail() on corrupt file error = %v", err)
	}
	if found != nil {
		t.Errorf("FindByEmail() on corrupt file = %+v, want nil", found)
	}
}
