package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hollybrook/arbor/internal/content"
	"github.com/hollybrook/arbor/internal/contentservice"
	"github.com/hollybrook/arbor/internal/graph"
	"github.com/hollybrook/arbor/internal/index"
	"github.com/hollybrook/arbor/internal/pathnav"
	"github.com/hollybrook/arbor/internal/render"
	"github.com/hollybrook/arbor/internal/storage"
)

// testEnv sets up a temp garden, SQLite DB, services, and router for testing.
// authToken="" means disabled mode; non-empty means token mode.
func testEnv(t *testing.T, authToken string) http.Handler {
	t.Helper()
	router, _ := testEnvWithGarden(t, authToken)
	return router
}

func testEnvWithGarden(t *testing.T, authToken string) (http.Handler, string) {
	t.Helper()

	gardenDir := t.TempDir()
	store, err := storage.NewFS(gardenDir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}

	dbFile, err := os.CreateTemp("", "arbor-api-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	provider := content.NewFSProvider(store)
	g := graph.New(provider, logger, time.Minute, 64)
	explore := pathnav.New(provider, []string{"notes", "bookmarks", "til"}, logger)
	svc := contentservice.NewService(store, db, g)

	router := NewRouter(svc, g, explore, render.New(), provider, authToken != "", authToken, nil, gardenDir)
	return router, gardenDir
}

func createPage(t *testing.T, router http.Handler, path, body string) {
	t.Helper()
	payload, _ := json.Marshal(map[string]string{"path": path, "content": body})
	req := httptest.NewRequest(http.MethodPost, "/content", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create %s = %d, body = %s", path, w.Code, w.Body.String())
	}
}

func TestCreateAndGetContent(t *testing.T) {
	router := testEnv(t, "")

	createPage(t, router, "notes/hello.md", "# Hello\nWorld")

	req := httptest.NewRequest(http.MethodGet, "/content/notes/hello.md", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var page ContentDetail
	_ = json.Unmarshal(w.Body.Bytes(), &page)
	if page.Path != "notes/hello.md" {
		t.Errorf("path = %q", page.Path)
	}
	if page.Title != "Hello" {
		t.Errorf("title = %q, want Hello", page.Title)
	}
	if page.Section != "notes" || page.Slug != "hello" {
		t.Errorf("section/slug = %q/%q", page.Section, page.Slug)
	}
}

func TestCreateDuplicate(t *testing.T) {
	router := testEnv(t, "")

	createPage(t, router, "notes/dup.md", "a")

	body, _ := json.Marshal(map[string]string{"path": "notes/dup.md", "content": "b"})
	req := httptest.NewRequest(http.MethodPost, "/content", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate create = %d, want 409", w.Code)
	}
}

func TestUpdateWithOptimisticLocking(t *testing.T) {
	router := testEnv(t, "")

	createPage(t, router, "notes/lock.md", "v1")

	req := httptest.NewRequest(http.MethodGet, "/content/notes/lock.md", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var page ContentDetail
	_ = json.Unmarshal(w.Body.Bytes(), &page)

	// Wrong checksum is rejected.
	body, _ := json.Marshal(map[string]string{"content": "v2"})
	req = httptest.NewRequest(http.MethodPut, "/content/notes/lock.md", bytes.NewReader(body))
	req.Header.Set("If-Match", "bogus")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Errorf("stale update = %d, want 409", w.Code)
	}

	// Correct checksum succeeds.
	req = httptest.NewRequest(http.MethodPut, "/content/notes/lock.md", bytes.NewReader(body))
	req.Header.Set("If-Match", `"`+page.Checksum+`"`)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("update = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestDeleteContent(t *testing.T) {
	router := testEnv(t, "")

	createPage(t, router, "notes/gone.md", "# Gone")

	req := httptest.NewRequest(http.MethodDelete, "/content/notes/gone.md", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/content/notes/gone.md", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
}

func TestListContentSectionFilter(t *testing.T) {
	router := testEnv(t, "")

	createPage(t, router, "notes/a.md", "# A")
	createPage(t, router, "bookmarks/b.md", "# B")

	req := httptest.NewRequest(http.MethodGet, "/content?section=bookmarks", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	var resp ContentListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 1 || len(resp.Content) != 1 || resp.Content[0].Section != "bookmarks" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestSearchEndpoint(t *testing.T) {
	router := testEnv(t, "")

	createPage(t, router, "notes/go.md", "# Go\n\nGoroutines and channels.")

	req := httptest.NewRequest(http.MethodGet, "/search?q=goroutines", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "notes/go.md") {
		t.Errorf("search miss: %s", w.Body.String())
	}

	// Missing query is a 400.
	req = httptest.NewRequest(http.MethodGet, "/search", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty query = %d, want 400", w.Code)
	}
}

func TestGraphEndpoint(t *testing.T) {
	router := testEnv(t, "")

	createPage(t, router, "notes/a.md", "# A\n\nSee [[B]].")
	createPage(t, router, "notes/b.md", "# B")

	req := httptest.NewRequest(http.MethodGet, "/graph", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("graph = %d", w.Code)
	}
	var resp GraphResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Nodes) != 2 {
		t.Errorf("nodes = %+v, want 2", resp.Nodes)
	}
	if len(resp.Links) != 1 || resp.Links[0].Source != "a" || resp.Links[0].Target != "b" {
		t.Errorf("links = %+v", resp.Links)
	}
}

func TestBacklinksEndpoint(t *testing.T) {
	router := testEnv(t, "")

	createPage(t, router, "notes/target.md", "# Target")
	createPage(t, router, "notes/source.md", "Points at [[Target]].")

	req := httptest.NewRequest(http.MethodGet, "/backlinks/target", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("backlinks = %d", w.Code)
	}
	var resp BacklinksResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Backlinks) != 1 || resp.Backlinks[0].SourceSlug != "source" {
		t.Errorf("backlinks = %+v", resp.Backlinks)
	}
}

func TestForwardLinksEndpoint(t *testing.T) {
	router := testEnv(t, "")

	createPage(t, router, "notes/hub.md", "Links to [B](notes/b.md) and [[C]].")
	createPage(t, router, "notes/b.md", "# B page")
	createPage(t, router, "notes/c.md", "# C page")

	req := httptest.NewRequest(http.MethodGet, "/forward-links/hub", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("forward-links = %d", w.Code)
	}
	var resp ForwardLinksResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Links) != 2 {
		t.Errorf("links = %+v, want 2", resp.Links)
	}
}

func TestOrphansAndLinkReport(t *testing.T) {
	router := testEnv(t, "")

	createPage(t, router, "notes/a.md", "See [[B]] and [[Nowhere]].")
	createPage(t, router, "notes/b.md", "# B")
	createPage(t, router, "notes/island.md", "All alone.")

	req := httptest.NewRequest(http.MethodGet, "/orphans", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var orphans OrphansResponse
	_ = json.Unmarshal(w.Body.Bytes(), &orphans)
	if len(orphans.Orphans) != 1 || orphans.Orphans[0] != "island" {
		t.Errorf("orphans = %+v", orphans.Orphans)
	}

	req = httptest.NewRequest(http.MethodGet, "/links/report", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var report LinkReportResponse
	_ = json.Unmarshal(w.Body.Bytes(), &report)
	if len(report.Broken) != 1 || report.Broken[0].SourceSlug != "a" {
		t.Errorf("broken = %+v", report.Broken)
	}
}

func TestRefreshGraphEndpoint(t *testing.T) {
	router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodPost, "/graph/refresh", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("refresh = %d, want 204", w.Code)
	}
}

func TestExploreValidateEndpoint(t *testing.T) {
	router := testEnv(t, "")

	createPage(t, router, "notes/a.md", "# A")
	createPage(t, router, "notes/b.md", "# B")
	createPage(t, router, "notes/c.md", "# C")

	req := httptest.NewRequest(http.MethodGet, "/explore/validate?path=a,b,c", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("validate = %d", w.Code)
	}
	var result ExploreValidationResponse
	_ = json.Unmarshal(w.Body.Bytes(), &result)
	if !result.Success {
		t.Errorf("result = %+v, want success", result)
	}

	// Immediate revisit is rejected.
	req = httptest.NewRequest(http.MethodGet, "/explore/validate?path=a,b,a", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	_ = json.Unmarshal(w.Body.Bytes(), &result)
	if result.Success {
		t.Errorf("revisiting path unexpectedly valid: %+v", result)
	}
}

func TestExploreCyclesEndpoint(t *testing.T) {
	router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/explore/cycles?path=a,b,c,a", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("cycles = %d", w.Code)
	}
	var result CycleCheckResponse
	_ = json.Unmarshal(w.Body.Bytes(), &result)
	if !result.HasCycle || result.Position != 3 || result.Slug != "a" {
		t.Errorf("result = %+v", result)
	}
}

func TestRenderEndpoint(t *testing.T) {
	router := testEnv(t, "")

	createPage(t, router, "notes/doc.md", "---\ntitle: Doc\n---\n\n# Doc\n\nSome *emphasis*.")

	req := httptest.NewRequest(http.MethodGet, "/render/notes/doc.md", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("render = %d, body = %s", w.Code, w.Body.String())
	}
	var resp RenderResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if !strings.Contains(resp.HTML, "<em>emphasis</em>") {
		t.Errorf("html = %q", resp.HTML)
	}
	if strings.Contains(resp.HTML, "title: Doc") {
		t.Errorf("frontmatter leaked into html: %q", resp.HTML)
	}
}

func TestAuthMiddleware(t *testing.T) {
	router := testEnv(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/content", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/content", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/content", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("valid token = %d, want 200", w.Code)
	}
}

func TestAssetUpload(t *testing.T) {
	router, gardenDir := testEnvWithGarden(t, "")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "pic.png")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = io.WriteString(fw, "fake image bytes")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/assets", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("upload = %d, body = %s", w.Code, w.Body.String())
	}

	if _, err := os.Stat(filepath.Join(gardenDir, "assets", "pic.png")); err != nil {
		t.Errorf("uploaded file missing: %v", err)
	}
}

func TestAssetSafeNameRejectsTraversal(t *testing.T) {
	h := NewAssetHandler(t.TempDir())
	for _, name := range []string{"", "../escape.txt", "a/b.txt", ".."} {
		if _, err := h.safeName(name); err == nil {
			t.Errorf("safeName(%q) accepted, want error", name)
		}
	}
	if _, err := h.safeName("ok.png"); err != nil {
		t.Errorf("safeName(ok.png): %v", err)
	}
}
