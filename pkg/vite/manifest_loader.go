package vite

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"vitehub/pkg/manifest"
)

// reloadDelay coalesces the burst of write events a build produces.
const reloadDelay = 150 * time.Millisecond

// ReloadResult describes one attempt to re-read the manifest.
type ReloadResult struct {
	Path    string
	Entries int
	Err     error
	At      time.Time
}

func (r ReloadResult) OK() bool { return r.Err == nil }

type ManifestOptions[S any] struct {
	// Path of the manifest file.
	Path  string
	Entry string
	Base  string
	// IncludeImports adds the stylesheets of imported chunks.
	IncludeImports bool
	// Selector picks the entry key per request. Nil means always Entry.
	Selector func(r *http.Request, state S) string
	Logger   *log.Logger
}

// snapshot is one loaded manifest plus the payloads resolved from it.
type snapshot struct {
	manifest manifest.Manifest
	payloads sync.Map // entry key -> *Payload
}

// ManifestLoader resolves payloads per request against a manifest that can
// be reloaded while serving. Each reload swaps in a new immutable snapshot;
// requests in flight keep the one they started with.
type ManifestLoader[S any] struct {
	opts    ManifestOptions[S]
	logger  *log.Logger
	current atomic.Pointer[snapshot]

	mu    sync.Mutex
	hooks []func(ReloadResult)
}

// NewManifestLoader loads the manifest and checks that the default entry
// resolves, so a bad setup fails before the handler is routed.
func NewManifestLoader[S any](opts ManifestOptions[S]) (*ManifestLoader[S], error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	l := &ManifestLoader[S]{opts: opts, logger: logger}

	m, err := manifest.Load(opts.Path)
	if err != nil {
		return nil, err
	}
	if _, err := m.Resolve(opts.Entry); err != nil {
		return nil, fmt.Errorf("%s: %w", opts.Path, err)
	}
	l.current.Store(&snapshot{manifest: m})
	return l, nil
}

func (l *ManifestLoader[S]) Load(ctx context.Context, r *http.Request, state S) (*Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := l.opts.Entry
	if l.opts.Selector != nil {
		if k := l.opts.Selector(r, state); k != "" {
			key = k
		}
	}

	snap := l.current.Load()
	if p, ok := snap.payloads.Load(key); ok {
		return p.(*Payload), nil
	}
	p, err := ResolvePayload(snap.manifest, key, l.opts.Base, l.opts.IncludeImports)
	if err != nil {
		return nil, err
	}
	actual, _ := snap.payloads.LoadOrStore(key, p)
	return actual.(*Payload), nil
}

// Manifest returns the snapshot currently served.
func (l *ManifestLoader[S]) Manifest() manifest.Manifest {
	return l.current.Load().manifest
}

func (l *ManifestLoader[S]) Path() string { return l.opts.Path }

func (l *ManifestLoader[S]) Entry() string { return l.opts.Entry }

// OnReload registers fn to run after every reload attempt.
func (l *ManifestLoader[S]) OnReload(fn func(ReloadResult)) {
	l.mu.Lock()
	l.hooks = append(l.hooks, fn)
	l.mu.Unlock()
}

// Reload re-reads the manifest. On failure the previous snapshot stays active.
// Hooks run after the new snapshot is in place and may call OnReload.
func (l *ManifestLoader[S]) Reload() ReloadResult {
	l.mu.Lock()
	res := ReloadResult{Path: l.opts.Path, At: time.Now().UTC()}
	m, err := manifest.Load(l.opts.Path)
	if err == nil {
		_, err = m.Resolve(l.opts.Entry)
	}
	if err != nil {
		res.Err = err
		res.Entries = len(l.current.Load().manifest)
		l.logger.Printf("[vite] manifest reload failed, keeping previous: %v", err)
	} else {
		l.current.Store(&snapshot{manifest: m})
		res.Entries = len(m)
		l.logger.Printf("[vite] manifest reloaded: %d entries", len(m))
	}
	hooks := slices.Clone(l.hooks)
	l.mu.Unlock()

	for _, fn := range hooks {
		fn(res)
	}
	return res
}

// Watch reloads the manifest whenever the file is written until ctx is done.
// Builds that empty the output directory delete the manifest directory, so
// its parent is watched too and the directory is re-added when it reappears.
func (l *ManifestLoader[S]) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(l.opts.Path)
	dir := filepath.Dir(target)
	for _, p := range []string{filepath.Dir(dir), dir} {
		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
	}
	l.logger.Printf("[vite] watching %s", target)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			switch filepath.Clean(event.Name) {
			case target:
				if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
					timer.Reset(reloadDelay)
				}
			case dir:
				if event.Has(fsnotify.Create) {
					if err := watcher.Add(dir); err != nil {
						l.logger.Printf("[vite] re-watch %s: %v", dir, err)
						continue
					}
					// the manifest may have been written before the watch was back
					timer.Reset(reloadDelay)
				} else if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					l.logger.Printf("[vite] %s removed, waiting for the next build", dir)
				}
			}
		case <-timer.C:
			l.Reload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.logger.Printf("[vite] watcher error: %v", err)
		}
	}
}
