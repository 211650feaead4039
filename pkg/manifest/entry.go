package manifest

import "path/filepath"

const (
	DefaultClientOutput = "client"
	DefaultServerOutput = "server"
	DefaultManifest     = ".vite/manifest.json"
	DefaultSSRManifest  = ".vite/ssr-manifest.json"
)

// ServerEntry locates the server build of an application.
type ServerEntry struct {
	Entry    string
	Output   string
	Manifest string
}

func NewServerEntry(entry string) ServerEntry {
	return ServerEntry{
		Entry:    entry,
		Output:   DefaultServerOutput,
		Manifest: DefaultManifest,
	}
}

func (e ServerEntry) WithOutput(path string) ServerEntry {
	e.Output = path
	return e
}

func (e ServerEntry) WithManifest(path string) ServerEntry {
	e.Manifest = path
	return e
}

func (e ServerEntry) EntryPath(root string) string {
	return filepath.Join(root, e.Entry)
}

func (e ServerEntry) OutputPath(root string) string {
	return filepath.Join(root, or(e.Output, DefaultServerOutput))
}

func (e ServerEntry) ManifestPath(root string) string {
	return filepath.Join(root, or(e.Manifest, DefaultManifest))
}

// ClientEntry locates the client build of an application.
// Empty fields fall back to the defaults above.
type ClientEntry struct {
	Entry       string
	Output      string
	Manifest    string
	SSRManifest string
}

func NewClientEntry(entry string) ClientEntry {
	return ClientEntry{Entry: entry}
}

func (e ClientEntry) WithOutput(path string) ClientEntry {
	e.Output = path
	return e
}

func (e ClientEntry) WithManifest(path string) ClientEntry {
	e.Manifest = path
	return e
}

func (e ClientEntry) WithSSRManifest(path string) ClientEntry {
	e.SSRManifest = path
	return e
}

func (e ClientEntry) EntryPath(root string) string {
	return filepath.Join(root, e.Entry)
}

func (e ClientEntry) OutputPath(root string) string {
	return filepath.Join(root, or(e.Output, DefaultClientOutput))
}

func (e ClientEntry) ManifestPath(root string) string {
	return filepath.Join(root, or(e.Manifest, DefaultManifest))
}

func (e ClientEntry) SSRManifestPath(root string) string {
	return filepath.Join(root, or(e.SSRManifest, DefaultSSRManifest))
}

func or(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
