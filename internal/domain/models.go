package domain

import (
	"strings"
	"time"
)

// AudioItem is a cached piece of synthesized recitation audio. The payload is
// stored base64-encoded, exactly as produced, and is never mutated after the
// first write; replacement means delete plus a fresh insert.
type AudioItem struct {
	ID         int64     `json:"id" db:"id"`
	ContentKey string    `json:"content_key" db:"content_key"`
	SourceText string    `json:"source_text" db:"source_text"`
	Payload    string    `json:"payload" db:"payload"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// DecodedSize returns the approximate decoded byte length of the payload.
func (a *AudioItem) DecodedSize() int64 {
	return approxDecodedLen(len(a.Payload), strings.HasSuffix(a.Payload, "="), strings.HasSuffix(a.Payload, "=="))
}

func approxDecodedLen(encodedLen int, onePad, twoPad bool) int64 {
	if encodedLen == 0 {
		return 0
	}
	n := int64(encodedLen) / 4 * 3
	switch {
	case twoPad:
		n -= 2
	case onePad:
		n--
	}
	return n
}

// ApproxPayloadSize estimates decoded size from the encoded length alone,
// for listings that don't load the payload itself.
func ApproxPayloadSize(encodedLen int) int64 {
	if encodedLen == 0 {
		return 0
	}
	return int64(encodedLen) / 4 * 3
}

// AudioMetadata is the listing view of an AudioItem: everything but the
// payload, plus its derived size.
type AudioMetadata struct {
	ID         int64     `json:"id" db:"id"`
	ContentKey string    `json:"content_key" db:"content_key"`
	SourceText string    `json:"source_text" db:"source_text"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	Size       int64     `json:"size" db:"size"`
}

// ProgressRecord tracks learning progress within a single curriculum level.
// There is at most one record per (owner, level) in both the local and the
// remote store; LastUpdated is the conflict tiebreaker for display purposes
// only; writes resolve last-write-wins by arrival order.
type ProgressRecord struct {
	Level          int       `json:"level" db:"level"`
	CompletedUnits int       `json:"completed_units" db:"completed_units"`
	AccuracyScore  int       `json:"accuracy_score" db:"accuracy_score"`
	LastUpdated    time.Time `json:"last_updated" db:"last_updated"`
}

// Normalize clamps the accuracy score into its 0-100 range. CompletedUnits is
// deliberately left alone: callers own the counter, and a replayed earlier
// value is their bug to see, not ours to hide.
func (r *ProgressRecord) Normalize() {
	if r.AccuracyScore < 0 {
		r.AccuracyScore = 0
	}
	if r.AccuracyScore > 100 {
		r.AccuracyScore = 100
	}
}

// CloudRecording is a conversation recording stored remote-first; the local
// side only ever holds a transient listing of these.
type CloudRecording struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	AudioURL  string    `json:"audio_url"`
	Duration  int       `json:"duration_seconds"`
	CreatedAt time.Time `json:"created_at"`
}
