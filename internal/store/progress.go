package store

import (
	"fmt"
	"time"

	"github.com/mzahid/tartil/internal/domain"
)

// PutProgress upserts a progress record by level, overwriting all fields.
func (db *DB) PutProgress(rec *domain.ProgressRecord) error {
	rec.Normalize()
	if rec.LastUpdated.IsZero() {
		rec.LastUpdated = time.Now()
	}

	query := `INSERT INTO progress (level, completed_units, accuracy_score, last_updated)
		VALUES (:level, :completed_units, :accuracy_score, :last_updated)
		ON CONFLICT(level) DO UPDATE SET
			completed_units = excluded.completed_units,
			accuracy_score = excluded.accuracy_score,
			last_updated = excluded.last_updated`

	if _, err := db.NamedExec(query, rec); err != nil {
		return fmt.Errorf("failed to put progress for level %d: %w", rec.Level, err)
	}
	return nil
}

// GetProgress returns the record for a level, or nil when absent.
func (db *DB) GetProgress(level int) (*domain.ProgressRecord, error) {
	var rec domain.ProgressRecord
	err := db.Get(&rec, "SELECT * FROM progress WHERE level = ?", level)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress for level %d: %w", level, err)
	}
	return &rec, nil
}

// ListProgress returns all progress records ordered by level.
func (db *DB) ListProgress() ([]domain.ProgressRecord, error) {
	var recs []domain.ProgressRecord
	if err := db.Select(&recs, "SELECT * FROM progress ORDER BY level ASC"); err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	return recs, nil
}
