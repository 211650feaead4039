package server

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"vitehub/internal/audit"
	"vitehub/internal/frontend"
	"vitehub/internal/reload"
	"vitehub/pkg/database"
	"vitehub/pkg/models"
	"vitehub/pkg/utils"
	"vitehub/pkg/vite"
)

const testManifest = `{
  "src/main.ts": {"file": "assets/main.1.js", "isEntry": true, "css": ["assets/main.2.css"]}
}`

type fixture struct {
	router *gin.Engine
	deps   Deps
}

func newFixture(t *testing.T, watch bool) fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".vite", "manifest.json"), testManifest)
	writeFile(t, filepath.Join(root, "assets", "main.1.js"), "console.log(1)")

	cfg := utils.Config{
		Mode: utils.ModeCSR, Root: root, Entry: "src/main.ts", AssetBase: "/",
		Title: "Shop", Watch: watch,
	}
	f, err := frontend.New(context.Background(), cfg, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("frontend.New: %v", err)
	}

	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "audit.db")})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	d := Deps{Config: cfg, Frontend: f, Hub: reload.NewHub(), DB: db, Audit: audit.NewRepo(db)}
	ConnectReloads(f, d.Hub, d.Audit)
	return fixture{router: NewRouter(d), deps: d}
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func (fx fixture) get(path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	fx.router.ServeHTTP(w, req)
	return w
}

func TestDocumentOnRootAndClientRoutes(t *testing.T) {
	fx := newFixture(t, false)

	for _, path := range []string{"/", "/products/42", "/deep/nested/route"} {
		w := fx.get(path, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", path, w.Code)
		}
		body := w.Body.String()
		if !strings.Contains(body, `<script type="module" src="/assets/main.1.js"></script>`) {
			t.Fatalf("%s: script tag missing in %s", path, body)
		}
		if !strings.Contains(body, `<link rel="stylesheet" href="/assets/main.2.css">`) {
			t.Fatalf("%s: style tag missing in %s", path, body)
		}
	}
}

func TestStaticAssets(t *testing.T) {
	fx := newFixture(t, false)

	w := fx.get("/assets/main.1.js", nil)
	if w.Code != http.StatusOK || w.Body.String() != "console.log(1)" {
		t.Fatalf("status = %d body = %q", w.Code, w.Body.String())
	}
}

func TestMissingFilesAreNotDocuments(t *testing.T) {
	fx := newFixture(t, false)

	for _, path := range []string{"/assets/main.old.js", "/assets/nested/gone.css", "/favicon.ico"} {
		w := fx.get(path, nil)
		if w.Code != http.StatusNotFound {
			t.Fatalf("%s: status = %d, want 404", path, w.Code)
		}
		if strings.HasPrefix(w.Header().Get("Content-Type"), "text/html") {
			t.Fatalf("%s: served the document for a missing file", path)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/products/42", nil)
	w := httptest.NewRecorder()
	fx.router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("POST status = %d, want 404", w.Code)
	}

	if w := fx.get("/products/42", nil); w.Code != http.StatusOK {
		t.Fatalf("client route status = %d", w.Code)
	}
}

func TestRequestID(t *testing.T) {
	fx := newFixture(t, false)

	w := fx.get("/health", nil)
	if w.Header().Get(vite.RequestIDHeader) == "" {
		t.Fatalf("no request id assigned")
	}

	w = fx.get("/health", http.Header{vite.RequestIDHeader: {"abc-123"}})
	if got := w.Header().Get(vite.RequestIDHeader); got != "abc-123" {
		t.Fatalf("request id = %q", got)
	}
}

func TestReadyAndDebug(t *testing.T) {
	fx := newFixture(t, true)

	w := fx.get("/ready", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("ready status = %d body = %s", w.Code, w.Body.String())
	}
	var ready map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &ready); err != nil {
		t.Fatal(err)
	}
	if ready["db"] != "ok" || ready["manifest_entries"] != float64(1) {
		t.Fatalf("unexpected ready body: %v", ready)
	}

	w = fx.get("/debug", nil)
	var debug map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &debug); err != nil {
		t.Fatal(err)
	}
	if debug["watching"] != true || debug["entry"] != "src/main.ts" {
		t.Fatalf("unexpected debug body: %v", debug)
	}
}

func TestReadyHidesDatabaseErrors(t *testing.T) {
	fx := newFixture(t, false)
	if err := fx.deps.DB.Close(); err != nil {
		t.Fatal(err)
	}

	w := fx.get("/ready", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("ready status = %d", w.Code)
	}
	var ready map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &ready); err != nil {
		t.Fatal(err)
	}
	if ready["db"] != "unavailable" || len(ready) != 4 {
		t.Fatalf("unexpected ready body: %v", ready)
	}
	if strings.Contains(w.Body.String(), "audit.db") || strings.Contains(w.Body.String(), "closed") {
		t.Fatalf("ready leaks the db error: %s", w.Body.String())
	}
}

func TestReloadReachesAuditAndWebsocket(t *testing.T) {
	fx := newFixture(t, true)
	srv := httptest.NewServer(fx.router)
	defer srv.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ws.Close()
	_ = ws.SetReadDeadline(time.Now().Add(5 * time.Second))

	if _, msg, err := ws.ReadMessage(); err != nil || !strings.Contains(string(msg), "welcome") {
		t.Fatalf("welcome = %q, err = %v", msg, err)
	}

	if _, err := fx.deps.Frontend.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}

	_, msg, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("read event: %v", err)
	}
	var ev models.ReloadEvent
	if err := json.Unmarshal(msg, &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Type != models.ManifestReloadEventType || !ev.OK || ev.Entries != 1 {
		t.Fatalf("unexpected event: %+v", ev)
	}

	items, err := fx.deps.Audit.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || !items[0].OK {
		t.Fatalf("audit items = %+v", items)
	}
}
