package models

import "time"

const ManifestReloadEventType = "manifest.reload"

// ReloadEvent is broadcast to websocket clients and stored in the audit log.
type ReloadEvent struct {
	ID      int64     `json:"id,omitempty"`
	Type    string    `json:"type"`
	Path    string    `json:"path"`
	OK      bool      `json:"ok"`
	Entries int       `json:"entries"`
	Error   string    `json:"error,omitempty"`
	At      time.Time `json:"at"`
}
