// Package cache implements the offline-first hybrid persistence layer: a
// local durable store that is always written and read first, mirrored
// best-effort to a remote per-owner store.
package cache

import (
	"context"
	"time"

	"github.com/mzahid/tartil/internal/domain"
	"github.com/mzahid/tartil/internal/logger"
	"github.com/mzahid/tartil/internal/store"
)

// RemoteStore is the slice of the remote adapter the manager consumes.
type RemoteStore interface {
	UpsertProgress(ctx context.Context, ownerID string, rec domain.ProgressRecord) error
	QueryProgress(ctx context.Context, ownerID string) ([]domain.ProgressRecord, error)
	ListRecordings(ctx context.Context, ownerID string) ([]domain.CloudRecording, error)
	DeleteRecording(ctx context.Context, ownerID, id string) error
}

// OwnerResolver yields the identity that scopes remote records.
type OwnerResolver interface {
	OwnerID(ctx context.Context) string
}

// Producer synthesizes an audio payload on cache miss. The returned string is
// the base64-encoded audio exactly as it will be stored.
type Producer func(ctx context.Context) (string, error)

// Manager coordinates the local store and the remote adapter. It owns no
// state of its own: the local store holds the on-device copies, the remote
// rows are the cross-device source of truth when reachable.
type Manager struct {
	store  *store.DB
	remote RemoteStore
	owner  OwnerResolver
	log    *logger.Logger
	mirror *mirror
}

func NewManager(db *store.DB, remote RemoteStore, owner OwnerResolver, log *logger.Logger) *Manager {
	m := &Manager{
		store:  db,
		remote: remote,
		owner:  owner,
		log:    log.WithComponent("cache"),
	}
	m.mirror = newMirror(remote, m.log)
	return m
}

// Start launches the background mirror worker.
func (m *Manager) Start() {
	m.mirror.Start()
}

// Stop drains in-flight mirror writes and stops the worker.
func (m *Manager) Stop() {
	m.mirror.Stop()
}

// Flush blocks until every enqueued mirror write has been attempted. Useful
// before shutdown and in tests; regular callers never need it.
func (m *Manager) Flush(ctx context.Context) error {
	return m.mirror.Flush(ctx)
}

// OwnerID resolves the identity scoping this device's remote records.
func (m *Manager) OwnerID(ctx context.Context) string {
	return m.owner.OwnerID(ctx)
}

// SaveProgress writes the record locally, then hands it to the mirror worker
// for one best-effort remote upsert. The call succeeds as soon as the local
// write does; a failed mirror is only retried implicitly by the next save for
// the same level.
func (m *Manager) SaveProgress(ctx context.Context, rec domain.ProgressRecord) error {
	rec.Normalize()
	if rec.LastUpdated.IsZero() {
		rec.LastUpdated = time.Now()
	}

	if err := m.store.PutProgress(&rec); err != nil {
		return err
	}

	m.mirror.Enqueue(m.owner.OwnerID(ctx), rec)
	return nil
}

// GetAllProgress returns the merged progress view. The remote store, when
// reachable and non-empty, is authoritative: its records are persisted into
// the local store and returned. Any remote trouble degrades to the local
// records with a warning.
func (m *Manager) GetAllProgress(ctx context.Context) ([]domain.ProgressRecord, error) {
	local, err := m.store.ListProgress()
	if err != nil {
		return nil, err
	}

	ownerID := m.owner.OwnerID(ctx)
	remote, err := m.remote.QueryProgress(ctx, ownerID)
	if err != nil {
		m.log.Warn("remote progress fetch failed, serving local records",
			"owner_id", ownerID, "error", err)
		return local, nil
	}
	if len(remote) == 0 {
		return local, nil
	}

	for i := range remote {
		if err := m.store.PutProgress(&remote[i]); err != nil {
			return nil, err
		}
	}
	return remote, nil
}

// GetProgress is a convenience filter over GetAllProgress. Returns nil when
// the level has no record.
func (m *Manager) GetProgress(ctx context.Context, level int) (*domain.ProgressRecord, error) {
	recs, err := m.GetAllProgress(ctx)
	if err != nil {
		return nil, err
	}
	for i := range recs {
		if recs[i].Level == level {
			return &recs[i], nil
		}
	}
	return nil, nil
}

// GetOrProduce returns the cached payload for a content key, invoking the
// producer on miss and caching its output. The audio cache is local-only: it
// exists to avoid paying for re-synthesis, not as a durability guarantee.
// Producer failures propagate and nothing partial is written.
func (m *Manager) GetOrProduce(ctx context.Context, contentKey, sourceText string, produce Producer) (string, error) {
	item, err := m.store.GetAudioByContentKey(contentKey)
	if err != nil {
		return "", err
	}
	if item != nil {
		return item.Payload, nil
	}

	payload, err := produce(ctx)
	if err != nil {
		return "", err
	}

	item = &domain.AudioItem{
		ContentKey: contentKey,
		SourceText: sourceText,
		Payload:    payload,
		CreatedAt:  time.Now(),
	}
	if err := m.store.PutAudio(item); err != nil {
		return "", err
	}
	m.log.Debug("cached synthesized audio", "content_key", contentKey, "id", item.ID)
	return payload, nil
}

// PutAudio stores an item locally. Local failures propagate.
func (m *Manager) PutAudio(item *domain.AudioItem) error {
	return m.store.PutAudio(item)
}

// GetAudio returns a cached item, or nil on miss.
func (m *Manager) GetAudio(id int64) (*domain.AudioItem, error) {
	return m.store.GetAudio(id)
}

// GetAudioByContentKey returns the first cached item for a key, or nil.
func (m *Manager) GetAudioByContentKey(key string) (*domain.AudioItem, error) {
	return m.store.GetAudioByContentKey(key)
}

// ListAudioMetadata lists cached items newest first, payloads omitted.
func (m *Manager) ListAudioMetadata() ([]domain.AudioMetadata, error) {
	return m.store.ListAudioMetadata()
}

// DeleteAudio removes a locally cached item. Idempotent.
func (m *Manager) DeleteAudio(id int64) error {
	return m.store.DeleteAudio(id)
}

// ListCloudRecordings returns the owner's cloud recordings, or an empty list
// on any remote failure. Callers cannot tell an outage from an empty library.
func (m *Manager) ListCloudRecordings(ctx context.Context) []domain.CloudRecording {
	ownerID := m.owner.OwnerID(ctx)
	recs, err := m.remote.ListRecordings(ctx, ownerID)
	if err != nil {
		m.log.Warn("cloud recordings fetch failed", "owner_id", ownerID, "error", err)
		return []domain.CloudRecording{}
	}
	if recs == nil {
		recs = []domain.CloudRecording{}
	}
	return recs
}

// DeleteCloudRecording deletes remote-first and surfaces failure: pretending
// a destructive operation on shared data succeeded is unacceptable. On
// success the refreshed listing is returned (best-effort).
func (m *Manager) DeleteCloudRecording(ctx context.Context, id string) ([]domain.CloudRecording, error) {
	ownerID := m.owner.OwnerID(ctx)
	if err := m.remote.DeleteRecording(ctx, ownerID, id); err != nil {
		return nil, err
	}
	return m.ListCloudRecordings(ctx), nil
}
