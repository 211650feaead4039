package manifest

import (
	"encoding/json"
	"fmt"
)

// SSRManifest maps a module id to the assets it pulls in at render time.
// Vite emits it with `build.ssrManifest`; server rendering is not wired in
// this module, the type is loaded and validated only.
type SSRManifest map[string][]string

// ParseSSR decodes an SSR manifest document.
func ParseSSR(b []byte) (SSRManifest, error) {
	var m SSRManifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: document is not an object", ErrMalformed)
	}
	for id, paths := range m {
		if paths == nil {
			m[id] = []string{}
		}
	}
	return m, nil
}

// LoadSSR reads and parses the SSR manifest at path.
func LoadSSR(path string) (SSRManifest, error) {
	b, err := readFile(path)
	if err != nil {
		return nil, err
	}
	m, err := ParseSSR(b)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return m, nil
}

func (m SSRManifest) Get(id string) ([]string, bool) {
	paths, ok := m[id]
	return paths, ok
}
