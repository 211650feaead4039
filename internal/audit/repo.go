package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"vitehub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) Record(ctx context.Context, ev models.ReloadEvent) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	var errText any
	if ev.Error != "" {
		errText = ev.Error
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO manifest_reloads (path, ok, entries, error, reloaded_at)
		VALUES (?, ?, ?, ?, ?)
	`, ev.Path, ev.OK, ev.Entries, errText, ev.At.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert reload: %w", err)
	}
	return nil
}

// List returns the most recent reloads first.
func (r *Repo) List(ctx context.Context, limit int) ([]models.ReloadEvent, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, path, ok, entries, error, reloaded_at
		FROM manifest_reloads
		ORDER BY reloaded_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list reloads: %w", err)
	}
	defer rows.Close()

	out := make([]models.ReloadEvent, 0, limit)
	for rows.Next() {
		var (
			ev      models.ReloadEvent
			errText sql.NullString
			at      int64
		)
		if err := rows.Scan(&ev.ID, &ev.Path, &ev.OK, &ev.Entries, &errText, &at); err != nil {
			return nil, fmt.Errorf("scan reload: %w", err)
		}
		ev.Type = models.ManifestReloadEventType
		ev.Error = errText.String
		ev.At = time.UnixMilli(at).UTC()
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}
