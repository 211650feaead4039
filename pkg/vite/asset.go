package vite

import (
	"context"
	"fmt"
	"path/filepath"

	"vitehub/pkg/manifest"
)

type AssetKind int

const (
	Script AssetKind = iota
	Style
)

func (k AssetKind) String() string {
	switch k {
	case Script:
		return "script"
	case Style:
		return "style"
	default:
		return fmt.Sprintf("AssetKind(%d)", int(k))
	}
}

func (k AssetKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *AssetKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "script":
		*k = Script
	case "style":
		*k = Style
	default:
		return fmt.Errorf("unknown asset kind %q", b)
	}
	return nil
}

// Asset is one file a response references.
type Asset struct {
	Path string    `json:"path"`
	Kind AssetKind `json:"kind"`
}

// Payload is the resolved asset list for a handler. One Payload is shared by
// every request that renders it, so it exposes copies only.
type Payload struct {
	assets  []Asset
	content []byte
}

// NewPayload copies assets and content into a new Payload.
// A nil content means no server-rendered markup.
func NewPayload(assets []Asset, content []byte) *Payload {
	p := &Payload{assets: append([]Asset(nil), assets...)}
	if content != nil {
		p.content = append([]byte{}, content...)
	}
	return p
}

func (p *Payload) Assets() []Asset {
	return append([]Asset(nil), p.assets...)
}

func (p *Payload) Content() []byte {
	if p.content == nil {
		return nil
	}
	return append([]byte{}, p.content...)
}

func (p *Payload) HasContent() bool {
	return p.content != nil
}

func (p *Payload) Len() int {
	return len(p.assets)
}

func (p *Payload) Scripts() []Asset {
	return p.filter(Script)
}

func (p *Payload) Styles() []Asset {
	return p.filter(Style)
}

func (p *Payload) filter(kind AssetKind) []Asset {
	var out []Asset
	for _, a := range p.assets {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}

// DevPayload points at a running Vite dev server: its client script and the
// entry module. uri is used as given.
func DevPayload(uri, entry string) *Payload {
	return NewPayload([]Asset{
		{Path: uri + "/@vite/client", Kind: Script},
		{Path: uri + "/" + entry, Kind: Script},
	}, nil)
}

// EntryPayload turns a manifest entry into a script followed by its
// stylesheets, each path prefixed with base.
func EntryPayload(e *manifest.Entry, base string) *Payload {
	assets := make([]Asset, 0, 1+len(e.CSS))
	assets = append(assets, Asset{Path: base + e.File, Kind: Script})
	for _, css := range e.CSS {
		assets = append(assets, Asset{Path: base + css, Kind: Style})
	}
	return NewPayload(assets, nil)
}

// importsPayload is EntryPayload plus the stylesheets of every statically
// imported chunk, each path at most once.
func importsPayload(m manifest.Manifest, key string, e *manifest.Entry, base string) *Payload {
	assets := EntryPayload(e, base).assets
	seen := make(map[string]bool, len(assets))
	for _, a := range assets {
		seen[a.Path] = true
	}
	for _, chunk := range m.ImportedChunks(key) {
		for _, css := range chunk.CSS {
			path := base + css
			if seen[path] {
				continue
			}
			seen[path] = true
			assets = append(assets, Asset{Path: path, Kind: Style})
		}
	}
	return &Payload{assets: assets}
}

type DevOptions struct {
	// URI of the dev server, e.g. http://localhost:5173.
	URI   string
	Entry string
}

type CSROptions struct {
	// Root is the client build output directory.
	Root string
	// Manifest is relative to Root; defaults to .vite/manifest.json.
	Manifest string
	Entry    string
	// Base prefixes every asset path, e.g. "/".
	Base string
	// IncludeImports adds the stylesheets of imported chunks.
	IncludeImports bool
}

func (o CSROptions) ManifestPath() string {
	name := o.Manifest
	if name == "" {
		name = manifest.DefaultManifest
	}
	return filepath.Join(o.Root, name)
}

// CSRPayload loads the production manifest and resolves the configured entry.
func CSRPayload(ctx context.Context, opts CSROptions) (*Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := manifest.Load(opts.ManifestPath())
	if err != nil {
		return nil, err
	}
	return ResolvePayload(m, opts.Entry, opts.Base, opts.IncludeImports)
}

// ResolvePayload builds the payload for key from an already loaded manifest.
func ResolvePayload(m manifest.Manifest, key, base string, withImports bool) (*Payload, error) {
	e, err := m.Resolve(key)
	if err != nil {
		return nil, err
	}
	if withImports {
		return importsPayload(m, key, e, base), nil
	}
	return EntryPayload(e, base), nil
}
