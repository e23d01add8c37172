package index

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hollybrook/arbor/internal/storage"
)

// collectEvents records watcher callbacks in order.
type collectEvents struct {
	mu     sync.Mutex
	events []string
}

func (c *collectEvents) cb(kind, path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, kind+":"+path)
}

func (c *collectEvents) wait(t *testing.T, want string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		for _, e := range c.events {
			if e == want {
				c.mu.Unlock()
				return
			}
		}
		c.mu.Unlock()
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("event %q never arrived (saw %v)", want, c.events)
}

func TestWatch_IndexesCreatedFile(t *testing.T) {
	db := testDB(t)
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var events collectEvents
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = Watch(ctx, db, store, dir, discardLogger(), events.cb)
	}()

	// Give the watcher a moment to register the root.
	time.Sleep(100 * time.Millisecond)

	if err := store.Write("fresh.md", []byte("---\ntitle: Fresh\n---\nbody")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	events.wait(t, "created:fresh.md")

	cs, _ := db.GetChecksum("fresh.md")
	if cs == "" {
		t.Error("created file not indexed")
	}

	cancel()
	<-done
}

func TestWatch_RemovesDeletedFile(t *testing.T) {
	db := testDB(t)
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	_ = store.Write("doomed.md", []byte("body"))
	if err := Sync(db, store, discardLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var events collectEvents
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = Watch(ctx, db, store, dir, discardLogger(), events.cb)
	}()
	time.Sleep(100 * time.Millisecond)

	if err := store.Delete("doomed.md"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	events.wait(t, "deleted:doomed.md")

	cs, _ := db.GetChecksum("doomed.md")
	if cs != "" {
		t.Error("deleted file still indexed")
	}

	cancel()
	<-done
}
