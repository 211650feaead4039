package vite

import (
	"context"
	"net/http"
)

// Loader decides which assets apply to a request.
type Loader[S any] interface {
	Load(ctx context.Context, r *http.Request, state S) (*Payload, error)
}

type LoaderFunc[S any] func(ctx context.Context, r *http.Request, state S) (*Payload, error)

func (f LoaderFunc[S]) Load(ctx context.Context, r *http.Request, state S) (*Payload, error) {
	return f(ctx, r, state)
}

// StaticLoader replays a payload computed at setup.
type StaticLoader[S any] struct {
	payload *Payload
}

func NewStaticLoader[S any](p *Payload) StaticLoader[S] {
	return StaticLoader[S]{payload: p}
}

func (l StaticLoader[S]) Load(ctx context.Context, _ *http.Request, _ S) (*Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.payload, nil
}

func (l StaticLoader[S]) Payload() *Payload {
	return l.payload
}
