// Package manifest reads the build manifest Vite writes next to its output
// (.vite/manifest.json) and answers lookups by entry key.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
)

var (
	// ErrIO means the manifest file could not be read.
	ErrIO = errors.New("manifest: read failed")
	// ErrMalformed means the document was read but is not a manifest.
	ErrMalformed = errors.New("manifest: malformed document")
	// ErrEntryNotFound means a key is absent from a parsed manifest.
	ErrEntryNotFound = errors.New("manifest: entry not found")
)

// Entry is one build output unit.
type Entry struct {
	File           string   `json:"file"`
	Src            string   `json:"src,omitempty"`
	Name           string   `json:"name,omitempty"`
	CSS            []string `json:"css"`
	Assets         []string `json:"assets"`
	DynamicImports []string `json:"dynamicImports"`
	IsEntry        bool     `json:"isEntry"`
	Imports        []string `json:"imports"`
}

// Manifest maps entry keys to their build output. It is never modified
// after Parse returns; reloading produces a new Manifest.
type Manifest map[string]*Entry

// Parse decodes a manifest document.
func Parse(b []byte) (Manifest, error) {
	var raw map[string]*Entry
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: document is not an object", ErrMalformed)
	}

	m := make(Manifest, len(raw))
	for key, e := range raw {
		if e == nil || e.File == "" {
			return nil, fmt.Errorf("%w: entry %q has no file", ErrMalformed, key)
		}
		e.CSS = orEmpty(e.CSS)
		e.Assets = orEmpty(e.Assets)
		e.DynamicImports = orEmpty(e.DynamicImports)
		e.Imports = orEmpty(e.Imports)
		m[key] = e
	}
	return m, nil
}

// Load reads and parses the manifest at path.
func Load(path string) (Manifest, error) {
	b, err := readFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return m, nil
}

// Get returns the entry stored under key.
func (m Manifest) Get(key string) (*Entry, bool) {
	e, ok := m[key]
	return e, ok
}

// Resolve is Get with a typed error for the missing case.
func (m Manifest) Resolve(key string) (*Entry, error) {
	e, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrEntryNotFound, key)
	}
	return e, nil
}

// Keys returns every key, sorted.
func (m Manifest) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Entries returns the keys of top-level entry points, sorted.
func (m Manifest) Entries() []string {
	keys := make([]string, 0, len(m))
	for k, e := range m {
		if e.IsEntry {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// ImportedChunks walks the static imports of key depth-first, in manifest
// order, and returns each reachable chunk once. The entry itself is not
// included and unknown keys are skipped.
func (m Manifest) ImportedChunks(key string) []*Entry {
	seen := map[string]bool{key: true}
	var out []*Entry

	var walk func(k string)
	walk = func(k string) {
		e, ok := m[k]
		if !ok {
			return
		}
		for _, imp := range e.Imports {
			if seen[imp] {
				continue
			}
			seen[imp] = true
			chunk, ok := m[imp]
			if !ok {
				continue
			}
			walk(imp)
			out = append(out, chunk)
		}
	}
	walk(key)
	return out
}

func readFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		// keep both so callers can test for ErrIO and fs.ErrNotExist
		return nil, fmt.Errorf("%w: %s: %w", ErrIO, path, err)
	}
	return b, nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
