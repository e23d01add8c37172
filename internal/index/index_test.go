package index

import (
	"os"
	"testing"
	"time"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "arbor-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM content`).Scan(&count); err != nil {
		t.Fatalf("content table missing: %v", err)
	}
}

func TestUpsertAndGetChecksum(t *testing.T) {
	db := testDB(t)
	row := ContentRow{
		Path:      "notes/hello.md",
		Section:   "notes",
		Slug:      "hello",
		Title:     "Hello World",
		Checksum:  "abc123",
		Status:    "published",
		Tags:      []string{"go", "test"},
		UpdatedAt: time.Now(),
	}
	if err := db.UpsertContent(row, "This is a hello world note."); err != nil {
		t.Fatalf("UpsertContent: %v", err)
	}
	cs, err := db.GetChecksum("notes/hello.md")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "abc123" {
		t.Errorf("checksum = %q, want %q", cs, "abc123")
	}
}

func TestUpsertIsIdempotentPerPath(t *testing.T) {
	db := testDB(t)
	row := ContentRow{Path: "notes/a.md", Section: "notes", Slug: "a", Checksum: "1", Tags: []string{}, UpdatedAt: time.Now()}
	_ = db.UpsertContent(row, "v1")
	row.Checksum = "2"
	if err := db.UpsertContent(row, "v2"); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	cs, _ := db.GetChecksum("notes/a.md")
	if cs != "2" {
		t.Errorf("checksum = %q, want 2", cs)
	}
	var count int
	_ = db.conn.QueryRow(`SELECT count(*) FROM content`).Scan(&count)
	if count != 1 {
		t.Errorf("rows = %d, want 1", count)
	}
}

func TestDeleteContent(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertContent(ContentRow{Path: "notes/del.md", Section: "notes", Slug: "del", Checksum: "x", Tags: []string{}, UpdatedAt: time.Now()}, "body")

	if err := db.DeleteContent("notes/del.md"); err != nil {
		t.Fatalf("DeleteContent: %v", err)
	}
	cs, _ := db.GetChecksum("notes/del.md")
	if cs != "" {
		t.Errorf("checksum after delete = %q, want empty", cs)
	}
}

func TestListContent_Filters(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_ = db.UpsertContent(ContentRow{Path: "notes/a.md", Section: "notes", Slug: "a", Title: "A", Checksum: "1", Tags: []string{"go"}, UpdatedAt: now}, "")
	_ = db.UpsertContent(ContentRow{Path: "til/b.md", Section: "til", Slug: "b", Title: "B", Checksum: "2", Tags: []string{"sql"}, UpdatedAt: now.Add(time.Second)}, "")
	_ = db.UpsertContent(ContentRow{Path: "notes/c.md", Section: "notes", Slug: "c", Title: "C", Checksum: "3", Tags: []string{"go"}, UpdatedAt: now.Add(2 * time.Second)}, "")

	rows, total, err := db.ListContent(0, 0, "notes", "", "")
	if err != nil {
		t.Fatalf("ListContent: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("notes filter: total=%d len=%d, want 2/2", total, len(rows))
	}
	// Default sort is newest first.
	if rows[0].Slug != "c" {
		t.Errorf("rows[0] = %s, want c", rows[0].Slug)
	}

	rows, total, err = db.ListContent(0, 0, "", "sql", "")
	if err != nil {
		t.Fatalf("ListContent tag: %v", err)
	}
	if total != 1 || rows[0].Slug != "b" {
		t.Errorf("tag filter: total=%d rows=%v", total, rows)
	}

	rows, _, _ = db.ListContent(0, 0, "", "", "title")
	if rows[0].Title != "A" {
		t.Errorf("title sort: rows[0] = %s", rows[0].Title)
	}
}

func TestListContent_Pagination(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	for _, s := range []string{"a", "b", "c"} {
		_ = db.UpsertContent(ContentRow{Path: "notes/" + s + ".md", Section: "notes", Slug: s, Title: s, Checksum: s, Tags: []string{}, UpdatedAt: now}, "")
	}
	rows, total, err := db.ListContent(2, 0, "", "", "path")
	if err != nil {
		t.Fatalf("ListContent: %v", err)
	}
	if total != 3 || len(rows) != 2 {
		t.Fatalf("page 1: total=%d len=%d", total, len(rows))
	}
	rows, _, _ = db.ListContent(2, 2, "", "", "path")
	if len(rows) != 1 || rows[0].Slug != "c" {
		t.Errorf("page 2: rows = %v", rows)
	}
}

func TestSearch_Fallback(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertContent(ContentRow{Path: "notes/go.md", Section: "notes", Slug: "go", Title: "Go Notes", Checksum: "1", Tags: []string{}, UpdatedAt: time.Now()}, "goroutines and channels")
	_ = db.UpsertContent(ContentRow{Path: "notes/sql.md", Section: "notes", Slug: "sql", Title: "SQL", Checksum: "2", Tags: []string{}, UpdatedAt: time.Now()}, "joins")

	results, err := db.Search("goroutines", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "notes/go.md" {
		t.Errorf("results = %v", results)
	}
}
