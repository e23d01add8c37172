// Package testutil provides shared test helpers for setting up gardens and databases.
package testutil

import (
	"os"
	"testing"

	"github.com/hollybrook/arbor/internal/index"
	"github.com/hollybrook/arbor/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "arbor-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestGarden creates a temporary garden directory with a storage.Provider.
func TestGarden(t *testing.T) (string, storage.Provider) {
	t.Helper()
	gardenDir := t.TempDir()
	store, err := storage.NewFS(gardenDir)
	if err != nil {
		t.Fatal(err)
	}
	return gardenDir, store
}
