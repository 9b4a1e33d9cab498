package store

import (
	"fmt"
	"time"

	"github.com/mzahid/tartil/internal/domain"
)

// PutAudio inserts or replaces an audio item by primary key. A zero ID asks
// the store to assign one; the assigned value is written back into item.
func (db *DB) PutAudio(item *domain.AudioItem) error {
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}

	if item.ID == 0 {
		query := `INSERT INTO audio_items (content_key, source_text, payload, created_at)
			VALUES (:content_key, :source_text, :payload, :created_at) RETURNING id`

		rows, err := db.NamedQuery(query, item)
		if err != nil {
			return fmt.Errorf("failed to insert audio item: %w", err)
		}
		defer rows.Close() //nolint:errcheck // deferred cleanup

		if rows.Next() {
			if err := rows.Scan(&item.ID); err != nil {
				return fmt.Errorf("failed to scan audio item id: %w", err)
			}
		} else if err := rows.Err(); err != nil {
			return fmt.Errorf("error iterating returning rows: %w", err)
		}
		return nil
	}

	query := `INSERT INTO audio_items (id, content_key, source_text, payload, created_at)
		VALUES (:id, :content_key, :source_text, :payload, :created_at)
		ON CONFLICT(id) DO UPDATE SET
			content_key = excluded.content_key,
			source_text = excluded.source_text,
			payload = excluded.payload,
			created_at = excluded.created_at`

	if _, err := db.NamedExec(query, item); err != nil {
		return fmt.Errorf("failed to put audio item %d: %w", item.ID, err)
	}
	return nil
}

// GetAudio returns the item with the given id, or nil when absent.
func (db *DB) GetAudio(id int64) (*domain.AudioItem, error) {
	var item domain.AudioItem
	err := db.Get(&item, "SELECT * FROM audio_items WHERE id = ?", id)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audio item %d: %w", id, err)
	}
	return &item, nil
}

// GetAudioByContentKey returns the first item for a content key, or nil when
// none exists. Keys are non-unique; the lowest id wins so repeated lookups
// are deterministic.
func (db *DB) GetAudioByContentKey(key string) (*domain.AudioItem, error) {
	var item domain.AudioItem
	err := db.Get(&item, "SELECT * FROM audio_items WHERE content_key = ? ORDER BY id ASC LIMIT 1", key)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audio item by content key %q: %w", key, err)
	}
	return &item, nil
}

// ListAudioMetadata returns metadata for every cached item, newest first,
// without loading payloads. Size is derived from the stored encoded length.
func (db *DB) ListAudioMetadata() ([]domain.AudioMetadata, error) {
	type row struct {
		ID            int64     `db:"id"`
		ContentKey    string    `db:"content_key"`
		SourceText    string    `db:"source_text"`
		CreatedAt     time.Time `db:"created_at"`
		PayloadLength int       `db:"payload_length"`
	}

	var rows []row
	query := `SELECT id, content_key, source_text, created_at, length(payload) AS payload_length
		FROM audio_items ORDER BY created_at DESC, id DESC`
	if err := db.Select(&rows, query); err != nil {
		return nil, fmt.Errorf("failed to list audio items: %w", err)
	}

	metas := make([]domain.AudioMetadata, 0, len(rows))
	for _, r := range rows {
		metas = append(metas, domain.AudioMetadata{
			ID:         r.ID,
			ContentKey: r.ContentKey,
			SourceText: r.SourceText,
			CreatedAt:  r.CreatedAt,
			Size:       domain.ApproxPayloadSize(r.PayloadLength),
		})
	}
	return metas, nil
}

// DeleteAudio removes an item. Deleting an absent id is a no-op.
func (db *DB) DeleteAudio(id int64) error {
	if _, err := db.Exec("DELETE FROM audio_items WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete audio item %d: %w", id, err)
	}
	return nil
}
