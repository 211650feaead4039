package vite

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"vitehub/pkg/manifest"
)

type appState struct {
	Name string
}

func listTemplate() TemplateFunc[appState] {
	return func(r *http.Request, state appState, p *Payload) ([]byte, error) {
		var b bytes.Buffer
		b.WriteString(state.Name)
		for _, a := range p.Assets() {
			fmt.Fprintf(&b, "|%s:%s", a.Kind, a.Path)
		}
		return b.Bytes(), nil
	}
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newRouter(h gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/*path", h)
	return r
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestDevHandler(t *testing.T) {
	v := Dev[appState](DevOptions{URI: "http://localhost:5173", Entry: "src/main.ts"}, listTemplate())
	r := newRouter(v.Handler(appState{Name: "app"}))

	w := get(t, r, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Fatalf("content type = %q", ct)
	}
	want := "app|script:http://localhost:5173/@vite/client|script:http://localhost:5173/src/main.ts"
	if w.Body.String() != want {
		t.Fatalf("body = %q, want %q", w.Body.String(), want)
	}
}

func TestCSRHandler(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, buildManifest)

	v, err := CSR[appState](context.Background(), CSROptions{Root: dir, Entry: "main.js", Base: "/"}, listTemplate())
	if err != nil {
		t.Fatalf("CSR error: %v", err)
	}
	w := get(t, newRouter(v.Handler(appState{Name: "prod"})), "/dashboard")
	want := "prod|script:/assets/main.abc123.js|style:/assets/main.def456.css"
	if w.Body.String() != want {
		t.Fatalf("body = %q, want %q", w.Body.String(), want)
	}
}

func TestCSRMissingEntryIsAnError(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, buildManifest)

	_, err := CSR[appState](context.Background(), CSROptions{Root: dir, Entry: "missing.js"}, listTemplate())
	if !errors.Is(err, manifest.ErrEntryNotFound) {
		t.Fatalf("error = %v, want ErrEntryNotFound", err)
	}
}

func TestHandlerIsIdempotent(t *testing.T) {
	tmpl, err := NewHTMLTemplate[appState]("", WithTitle("Home"))
	if err != nil {
		t.Fatalf("NewHTMLTemplate: %v", err)
	}
	v := Dev[appState](DevOptions{URI: "http://localhost:5173", Entry: "main.js"}, tmpl)
	r := newRouter(v.Handler(appState{}))

	first := get(t, r, "/a").Body.Bytes()
	second := get(t, r, "/a").Body.Bytes()
	if !bytes.Equal(first, second) {
		t.Fatalf("responses differ:\n%s\n---\n%s", first, second)
	}
}

func TestLoadFailureIsGeneric500(t *testing.T) {
	var logs bytes.Buffer
	loader := LoaderFunc[appState](func(ctx context.Context, r *http.Request, s appState) (*Payload, error) {
		return nil, fmt.Errorf("open /secret/path/manifest.json: %w", manifest.ErrIO)
	})
	v := New[appState](loader, listTemplate(), WithLogger(log.New(&logs, "", 0)))
	r := newRouter(v.Handler(appState{}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "/secret/path") {
		t.Fatalf("error body leaks the cause: %s", w.Body.String())
	}
	if !strings.Contains(logs.String(), "req-1") || !strings.Contains(logs.String(), "/secret/path") {
		t.Fatalf("cause not logged with request id: %q", logs.String())
	}
}

func TestRenderFailureStages(t *testing.T) {
	boom := errors.New("boom")
	tmpl := TemplateFunc[appState](func(*http.Request, appState, *Payload) ([]byte, error) {
		return nil, boom
	})
	v := Dev[appState](DevOptions{URI: "x", Entry: "y"}, tmpl, WithLogger(quietLogger()))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := v.Render(context.Background(), req, appState{})

	var se *StageError
	if !errors.As(err, &se) || se.Stage != StageRender {
		t.Fatalf("error = %v, want render StageError", err)
	}
	if !errors.Is(err, ErrRender) || !errors.Is(err, boom) {
		t.Fatalf("error = %v, want ErrRender wrapping cause", err)
	}

	w := get(t, newRouter(v.Handler(appState{})), "/")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}

	loadErr := errors.New("no assets")
	failing := New[appState](LoaderFunc[appState](func(context.Context, *http.Request, appState) (*Payload, error) {
		return nil, loadErr
	}), listTemplate(), WithLogger(quietLogger()))
	_, err = failing.Render(context.Background(), req, appState{})
	if !errors.As(err, &se) || se.Stage != StageLoad || !errors.Is(err, loadErr) {
		t.Fatalf("error = %v, want load StageError", err)
	}
}

func TestCancelledRequest(t *testing.T) {
	called := false
	tmpl := TemplateFunc[appState](func(*http.Request, appState, *Payload) ([]byte, error) {
		called = true
		return []byte("x"), nil
	})
	v := Dev[appState](DevOptions{URI: "x", Entry: "y"}, tmpl, WithLogger(quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)

	if _, err := v.Render(ctx, req, appState{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if called {
		t.Fatalf("template ran for a cancelled request")
	}

	w := httptest.NewRecorder()
	newRouter(v.Handler(appState{})).ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable || w.Body.Len() != 0 {
		t.Fatalf("status = %d body = %q", w.Code, w.Body.String())
	}
}

func TestHTTPHandler(t *testing.T) {
	v := Dev[appState](DevOptions{URI: "http://vite", Entry: "main.js"}, listTemplate())
	w := get(t, v.HTTPHandler(appState{Name: "std"}), "/")
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Body.String(), "std|") {
		t.Fatalf("status = %d body = %q", w.Code, w.Body.String())
	}

	broken := New[appState](LoaderFunc[appState](func(context.Context, *http.Request, appState) (*Payload, error) {
		return nil, errors.New("nope")
	}), listTemplate(), WithLogger(quietLogger()))
	w = get(t, broken.HTTPHandler(appState{}), "/")
	if w.Code != http.StatusInternalServerError || !bytes.Equal(w.Body.Bytes(), errorPage) {
		t.Fatalf("status = %d body = %q", w.Code, w.Body.String())
	}
}

func TestHandlerFuncState(t *testing.T) {
	v := Dev[appState](DevOptions{URI: "u", Entry: "e"}, listTemplate())
	r := newRouter(v.HandlerFunc(func(c *gin.Context) appState {
		return appState{Name: c.Query("who")}
	}))

	w := get(t, r, "/?who=alice")
	if !strings.HasPrefix(w.Body.String(), "alice|") {
		t.Fatalf("body = %q", w.Body.String())
	}
}

func TestConcurrentHandlersDoNotCrossTalk(t *testing.T) {
	const handlers = 8
	const perHandler = 25

	type pair struct {
		router http.Handler
		want   string
	}
	pairs := make([]pair, handlers)
	for i := range pairs {
		entry := fmt.Sprintf("entry-%d.js", i)
		tag := fmt.Sprintf("tmpl-%d", i)
		tmpl := TemplateFunc[appState](func(_ *http.Request, _ appState, p *Payload) ([]byte, error) {
			return []byte(tag + "|" + p.Assets()[1].Path), nil
		})
		v := Dev[appState](DevOptions{URI: "http://dev", Entry: entry}, tmpl)
		// copies share the same internals
		shared := v
		pairs[i] = pair{
			router: newRouter(shared.Handler(appState{})),
			want:   tag + "|http://dev/" + entry,
		}
	}

	var wg sync.WaitGroup
	errs := make(chan string, handlers*perHandler)
	for i := range pairs {
		for j := 0; j < perHandler; j++ {
			wg.Add(1)
			go func(p pair) {
				defer wg.Done()
				w := httptest.NewRecorder()
				p.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
				if got := w.Body.String(); got != p.want {
					errs <- fmt.Sprintf("got %q, want %q", got, p.want)
				}
			}(pairs[i])
		}
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Fatal(e)
	}
}

func TestStageString(t *testing.T) {
	for stage, want := range map[Stage]string{
		StageLoad:   "load",
		StageRender: "render",
		Stage(7):    "Stage(7)",
	} {
		if got := stage.String(); got != want {
			t.Fatalf("Stage(%d).String() = %q, want %q", int(stage), got, want)
		}
	}
}
