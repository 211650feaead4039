package main

import (
	"encoding/json"
	"fmt"
	"time"

	"vitehub/pkg/manifest"
	"vitehub/pkg/models"
	"vitehub/pkg/vite"
)

type inspectResult struct {
	Entry   models.EntryDTO   `json:"entry"`
	Payload models.PayloadDTO `json:"payload"`
}

// inspect reads a manifest from disk. Without a key it lists the manifest,
// with one it shows the entry and the payload a server would build for it.
func inspect(path, key, base string, withImports bool) (any, error) {
	m, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return models.FromManifest(m), nil
	}

	e, err := m.Resolve(key)
	if err != nil {
		return nil, err
	}
	p, err := vite.ResolvePayload(m, key, base, withImports)
	if err != nil {
		return nil, err
	}
	return inspectResult{
		Entry:   models.FromEntry(m, key, e),
		Payload: models.FromPayload(key, p),
	}, nil
}

// formatEvent renders one websocket message as a log line. Messages that are
// not reload events are printed as received.
func formatEvent(msg []byte) string {
	var ev models.ReloadEvent
	if err := json.Unmarshal(msg, &ev); err != nil || ev.Type != models.ManifestReloadEventType {
		return string(msg)
	}
	at := ev.At.Local().Format(time.TimeOnly)
	if !ev.OK {
		return fmt.Sprintf("%s reload FAILED (%s), still serving %d entries", at, ev.Error, ev.Entries)
	}
	return fmt.Sprintf("%s reloaded %s: %d entries", at, ev.Path, ev.Entries)
}
