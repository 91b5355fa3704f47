// Package dbtest opens throwaway sqlite databases for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/DoctorDictator/rdbbms-project-2025-sub000/internal/notes-service/database"
	"golang.org/x/crypto/bcrypt"
)

const Password = "password123"

// New returns a repository over a freshly migrated database that is removed with the test.
func New(t testing.TB) *database.Repository {
	t.Helper()
	db, err := database.NewDb(database.Options{
		Driver: database.DriverSqlite,
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %s", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate database: %s", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return database.NewRepository(db)
}

// User creates a user whose password is Password.
func User(t testing.TB, repo *database.Repository, username string) *database.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("can't hash password: %s", err)
	}
	email := username + "@example.com"
	u := &database.User{Username: username, Name: username, Email: &email, PasswordHash: string(hash)}
	if err := repo.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("can't create user: %s", err)
	}
	return u
}

func File(t testing.TB, repo *database.Repository, owner *database.User, title string) *database.File {
	t.Helper()
	f := &database.File{OwnerID: owner.ID, Title: title, Content: "content of " + title}
	if err := repo.CreateFile(context.Background(), f); err != nil {
		t.Fatalf("can't create file: %s", err)
	}
	return f
}

func Share(t testing.TB, repo *database.Repository, f *database.File, with *database.User, p database.Permission) *database.FileShare {
	t.Helper()
	s := &database.FileShare{FileID: f.ID, OwnerID: f.OwnerID, SharedWithID: with.ID, Permission: p}
	if err := repo.CreateShare(context.Background(), s); err != nil {
		t.Fatalf("can't create share: %s", err)
	}
	return s
}
