// Package frontend builds the configured Vite handler and exposes what the
// admin API and the gRPC service need to inspect it.
package frontend

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"vitehub/pkg/manifest"
	"vitehub/pkg/utils"
	"vitehub/pkg/vite"
)

// ErrNoManifest is returned for manifest operations in dev mode.
var ErrNoManifest = errors.New("no manifest in dev mode")

// ErrNotWatching is returned by Reload when the manifest is static.
var ErrNotWatching = errors.New("manifest reload requires watch mode")

// State is the application state handed to the template.
type State struct {
	Title string
	Mode  string
}

type Frontend struct {
	Mode  string
	Entry string
	Vite  vite.Vite[State]

	cfg      utils.Config
	manifest manifest.Manifest
	loader   *vite.ManifestLoader[State]
}

// New resolves everything the handler needs. Any manifest problem is
// returned here so the server never starts with a broken build.
func New(ctx context.Context, cfg utils.Config, logger *log.Logger) (*Frontend, error) {
	if logger == nil {
		logger = log.Default()
	}

	tmpl, err := newTemplate(cfg)
	if err != nil {
		return nil, err
	}

	f := &Frontend{Mode: cfg.Mode, Entry: cfg.Entry, cfg: cfg}
	switch cfg.Mode {
	case utils.ModeDev:
		f.Vite = vite.Dev[State](vite.DevOptions{URI: cfg.DevURL, Entry: cfg.Entry}, tmpl, vite.WithLogger(logger))
	case utils.ModeCSR:
		opts := f.csrOptions()
		if cfg.Watch {
			f.loader, err = vite.NewManifestLoader(vite.ManifestOptions[State]{
				Path:           opts.ManifestPath(),
				Entry:          cfg.Entry,
				Base:           cfg.AssetBase,
				IncludeImports: cfg.IncludeImports,
				Logger:         logger,
			})
			if err != nil {
				return nil, err
			}
			f.Vite = vite.New[State](f.loader, tmpl, vite.WithLogger(logger))
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// one read serves both the handler and the inspection views
		if f.manifest, err = manifest.Load(opts.ManifestPath()); err != nil {
			return nil, err
		}
		p, err := vite.ResolvePayload(f.manifest, opts.Entry, opts.Base, opts.IncludeImports)
		if err != nil {
			return nil, err
		}
		f.Vite = vite.New[State](vite.NewStaticLoader[State](p), tmpl, vite.WithLogger(logger))
	default:
		return nil, fmt.Errorf("unknown mode %q", cfg.Mode)
	}
	return f, nil
}

// State is what every request renders with.
func (f *Frontend) State() State {
	return State{Title: f.cfg.Title, Mode: f.Mode}
}

func (f *Frontend) Handler() gin.HandlerFunc {
	return f.Vite.Handler(f.State())
}

// Manifest returns the manifest currently served.
func (f *Frontend) Manifest() (manifest.Manifest, error) {
	if f.loader != nil {
		return f.loader.Manifest(), nil
	}
	if f.manifest == nil {
		return nil, ErrNoManifest
	}
	return f.manifest, nil
}

// Payload resolves entry the way the handler would. An empty entry means
// the configured one.
func (f *Frontend) Payload(ctx context.Context, entry string) (*vite.Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if entry == "" {
		entry = f.Entry
	}
	if f.Mode == utils.ModeDev {
		return vite.DevPayload(f.cfg.DevURL, entry), nil
	}

	m, err := f.Manifest()
	if err != nil {
		return nil, err
	}
	return vite.ResolvePayload(m, entry, f.cfg.AssetBase, f.cfg.IncludeImports)
}

func (f *Frontend) Watching() bool {
	return f.loader != nil
}

func (f *Frontend) Reload() (vite.ReloadResult, error) {
	if f.loader == nil {
		return vite.ReloadResult{}, ErrNotWatching
	}
	return f.loader.Reload(), nil
}

func (f *Frontend) OnReload(fn func(vite.ReloadResult)) {
	if f.loader != nil {
		f.loader.OnReload(fn)
	}
}

// Watch blocks until ctx is done. It returns at once when not watching.
func (f *Frontend) Watch(ctx context.Context) error {
	if f.loader == nil {
		return nil
	}
	return f.loader.Watch(ctx)
}

func (f *Frontend) csrOptions() vite.CSROptions {
	return vite.CSROptions{
		Root:           f.cfg.Root,
		Manifest:       f.cfg.Manifest,
		Entry:          f.cfg.Entry,
		Base:           f.cfg.AssetBase,
		IncludeImports: f.cfg.IncludeImports,
	}
}

func newTemplate(cfg utils.Config) (*vite.HTMLTemplate[State], error) {
	src := ""
	if cfg.Template != "" {
		b, err := os.ReadFile(cfg.Template)
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", cfg.Template, err)
		}
		src = string(b)
	}

	opts := []vite.HTMLOption{vite.WithTitle(cfg.Title)}
	if cfg.Minify {
		opts = append(opts, vite.WithMinify())
	}
	return vite.NewHTMLTemplate[State](src, opts...)
}
