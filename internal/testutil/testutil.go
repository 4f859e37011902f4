// Package testutil provides shared test helpers for setting up databases
// and attachment directories.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/raido/internal/store"
	"github.com/starford/raido/internal/uploads"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "raido-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestUploads creates a temporary attachment store.
func TestUploads(t *testing.T) (string, *uploads.FS) {
	t.Helper()
	dir := t.TempDir()
	fs, err := uploads.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, fs
}
