// Package vite serves HTML documents that reference the assets of a Vite
// build. A Vite handler pairs a Loader, which decides which assets apply to
// a request, with a Template, which turns them into a response body.
package vite

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	RequestIDHeader = "X-Request-ID"
)

var errorPage = []byte("<!DOCTYPE html>\n<html><head><title>Internal Server Error</title></head>" +
	"<body><h1>Internal Server Error</h1></body></html>\n")

type Stage int

const (
	StageLoad Stage = iota
	StageRender
)

func (s Stage) String() string {
	switch s {
	case StageLoad:
		return "load"
	case StageRender:
		return "render"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// StageError reports which step of a render failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("vite %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

type Option func(*config)

type config struct {
	logger *log.Logger
}

func WithLogger(l *log.Logger) Option {
	return func(c *config) { c.logger = l }
}

type inner[S any] struct {
	loader Loader[S]
	tmpl   Template[S]
	logger *log.Logger
}

// Vite is a handle on an immutable loader/template pair. Copies share the
// same internals and are safe to use from any number of requests.
type Vite[S any] struct {
	inner *inner[S]
}

func New[S any](loader Loader[S], tmpl Template[S], opts ...Option) Vite[S] {
	cfg := config{logger: log.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return Vite[S]{inner: &inner[S]{loader: loader, tmpl: tmpl, logger: cfg.logger}}
}

// Dev builds a handler for a running Vite dev server.
func Dev[S any](opts DevOptions, tmpl Template[S], o ...Option) Vite[S] {
	return New[S](NewStaticLoader[S](DevPayload(opts.URI, opts.Entry)), tmpl, o...)
}

// CSR builds a handler for a client-side production build. Manifest errors
// surface here, before the handler can be routed.
func CSR[S any](ctx context.Context, opts CSROptions, tmpl Template[S], o ...Option) (Vite[S], error) {
	p, err := CSRPayload(ctx, opts)
	if err != nil {
		return Vite[S]{}, err
	}
	return New[S](NewStaticLoader[S](p), tmpl, o...), nil
}

func (v Vite[S]) Loader() Loader[S] {
	return v.inner.loader
}

// Render loads the payload for r and hands it to the template.
func (v Vite[S]) Render(ctx context.Context, r *http.Request, state S) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := v.inner.loader.Load(ctx, r, state)
	if err != nil {
		return nil, &StageError{Stage: StageLoad, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, err := v.inner.tmpl.Render(r, state, p)
	if err != nil {
		if !errors.Is(err, ErrRender) {
			err = fmt.Errorf("%w: %w", ErrRender, err)
		}
		return nil, &StageError{Stage: StageRender, Err: err}
	}
	return body, nil
}

// Handler serves the document with a fixed application state.
func (v Vite[S]) Handler(state S) gin.HandlerFunc {
	return v.HandlerFunc(func(*gin.Context) S { return state })
}

// HandlerFunc serves the document with state taken from each request.
func (v Vite[S]) HandlerFunc(state func(c *gin.Context) S) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		body, err := v.Render(ctx, c.Request, state(c))
		if err != nil {
			status := v.fail(c.Request, err)
			if status == http.StatusServiceUnavailable {
				c.AbortWithStatus(status)
				return
			}
			c.Data(status, contentTypeHTML, errorPage)
			c.Abort()
			return
		}
		c.Data(http.StatusOK, contentTypeHTML, body)
	}
}

// HTTPHandler adapts the handler to plain net/http.
func (v Vite[S]) HTTPHandler(state S) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := v.Render(r.Context(), r, state)
		if err != nil {
			status := v.fail(r, err)
			if status == http.StatusServiceUnavailable {
				w.WriteHeader(status)
				return
			}
			w.Header().Set("Content-Type", contentTypeHTML)
			w.WriteHeader(status)
			_, _ = w.Write(errorPage)
			return
		}
		w.Header().Set("Content-Type", contentTypeHTML)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	})
}

// fail logs err and picks the status. The cause never reaches the client.
func (v Vite[S]) fail(r *http.Request, err error) int {
	id := r.Header.Get(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		v.inner.logger.Printf("[vite] request %s %s abandoned: %v", id, r.URL.Path, err)
		return http.StatusServiceUnavailable
	}
	v.inner.logger.Printf("[vite] request %s %s failed: %v", id, r.URL.Path, err)
	return http.StatusInternalServerError
}
