package index

import (
	"io"
	"log/slog"
	"testing"

	"github.com/hollybrook/arbor/internal/storage"
)

func testStore(t *testing.T) storage.Provider {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return store
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSync_IndexesNewFiles(t *testing.T) {
	db := testDB(t)
	store := testStore(t)
	_ = store.Write("notes/a.md", []byte("---\ntitle: A\n---\nbody"))
	_ = store.Write("til/b.md", []byte("# B\nbody"))

	if err := Sync(db, store, discardLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		t.Fatalf("AllChecksums: %v", err)
	}
	if len(checksums) != 2 {
		t.Fatalf("indexed %d files, want 2", len(checksums))
	}

	rows, _, err := db.ListContent(0, 0, "til", "", "")
	if err != nil {
		t.Fatalf("ListContent: %v", err)
	}
	if len(rows) != 1 || rows[0].Slug != "b" || rows[0].Title != "B" {
		t.Errorf("til rows = %v", rows)
	}
}

func TestSync_RemovesStaleEntries(t *testing.T) {
	db := testDB(t)
	store := testStore(t)
	_ = store.Write("notes/keep.md", []byte("keep"))
	_ = store.Write("notes/gone.md", []byte("gone"))
	if err := Sync(db, store, discardLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	_ = store.Delete("notes/gone.md")
	if err := Sync(db, store, discardLogger()); err != nil {
		t.Fatalf("second Sync: %v", err)
	}

	checksums, _ := db.AllChecksums()
	if _, ok := checksums["notes/gone.md"]; ok {
		t.Error("stale entry survived sync")
	}
	if _, ok := checksums["notes/keep.md"]; !ok {
		t.Error("live entry dropped by sync")
	}
}

func TestSync_SkipsUnchangedFiles(t *testing.T) {
	db := testDB(t)
	store := testStore(t)
	_ = store.Write("notes/a.md", []byte("body"))
	if err := Sync(db, store, discardLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	before, _ := db.AllChecksums()

	if err := Sync(db, store, discardLogger()); err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	after, _ := db.AllChecksums()
	if before["notes/a.md"] != after["notes/a.md"] {
		t.Error("checksum changed without a content change")
	}
}
