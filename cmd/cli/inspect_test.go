package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"vitehub/pkg/manifest"
	"vitehub/pkg/models"
)

func writeManifest(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.json")
	doc := `{
  "src/main.ts": {"file": "assets/main.1.js", "isEntry": true, "css": ["assets/main.2.css"], "imports": ["_vendor.js"]},
  "_vendor.js": {"file": "assets/vendor.3.js", "css": ["assets/vendor.4.css"]}
}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInspectList(t *testing.T) {
	v, err := inspect(writeManifest(t), "", "/", false)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	list, ok := v.(models.EntryListDTO)
	if !ok || list.Total != 2 || len(list.Entries) != 1 || list.Entries[0] != "src/main.ts" {
		t.Fatalf("unexpected list: %#v", v)
	}
}

func TestInspectEntry(t *testing.T) {
	path := writeManifest(t)

	v, err := inspect(path, "src/main.ts", "/static/", true)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	res := v.(inspectResult)
	if len(res.Payload.Assets) != 3 || res.Payload.Assets[2].Path != "/static/assets/vendor.4.css" {
		t.Fatalf("unexpected payload: %+v", res.Payload)
	}
	if len(res.Entry.ImportedChunks) != 1 || res.Entry.ImportedChunks[0] != "assets/vendor.3.js" {
		t.Fatalf("unexpected entry: %+v", res.Entry)
	}

	if _, err := inspect(path, "missing.ts", "/", false); !errors.Is(err, manifest.ErrEntryNotFound) {
		t.Fatalf("err = %v, want ErrEntryNotFound", err)
	}
}

func TestFormatEvent(t *testing.T) {
	ev := models.ReloadEvent{
		Type: models.ManifestReloadEventType, Path: "dist/.vite/manifest.json",
		OK: true, Entries: 4, At: time.Now(),
	}
	b, _ := json.Marshal(ev)
	if got := formatEvent(b); !strings.Contains(got, "reloaded dist/.vite/manifest.json: 4 entries") {
		t.Fatalf("formatEvent = %q", got)
	}

	if got := formatEvent([]byte(`{"type":"welcome"}`)); got != `{"type":"welcome"}` {
		t.Fatalf("formatEvent = %q", got)
	}
}

func TestEscapeKey(t *testing.T) {
	if got := escapeKey("src/pages/a b.ts"); got != "src/pages/a%20b.ts" {
		t.Fatalf("escapeKey = %q", got)
	}
}
