// Package identity derives the owner identity that scopes progress and cloud
// recording records.
package identity

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/mzahid/tartil/internal/logger"
)

// AuthProvider yields the current authenticated session's user id, when one
// exists. Implementations must not block on the network; an absent or expired
// session simply reports false.
type AuthProvider interface {
	CurrentUserID(ctx context.Context) (string, bool)
}

// Settings is the persistence surface the resolver needs for the anonymous
// identity. Satisfied by store.SettingsRepo.
type Settings interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

const anonymousKey = "anonymous_owner_id"

// Resolver resolves the owner identity, preferring an authenticated user and
// falling back to a per-device anonymous id. Resolution never fails: auth or
// storage trouble degrades to a generated identity.
type Resolver struct {
	auth     AuthProvider // nil when the app runs without an auth provider
	settings Settings
	log      *logger.Logger

	mu        sync.Mutex
	anonymous string
}

func NewResolver(auth AuthProvider, settings Settings, log *logger.Logger) *Resolver {
	return &Resolver{
		auth:     auth,
		settings: settings,
		log:      log.WithComponent("identity"),
	}
}

// OwnerID returns the stable identity scoping this device's records.
func (r *Resolver) OwnerID(ctx context.Context) string {
	if r.auth != nil {
		if id, ok := r.auth.CurrentUserID(ctx); ok && id != "" {
			return id
		}
	}
	return r.anonymousID()
}

// anonymousID loads or mints the per-device guest identity. The generated id
// is persisted exactly once; if the write fails we keep the in-memory value so
// the session stays consistent and try persisting again next process start.
func (r *Resolver) anonymousID() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.anonymous != "" {
		return r.anonymous
	}

	stored, err := r.settings.Get(anonymousKey)
	if err != nil {
		r.log.Warn("failed to read anonymous owner id", "error", err)
	}
	if stored != "" {
		r.anonymous = stored
		return stored
	}

	id := "guest-" + uuid.NewString()
	if err := r.settings.Set(anonymousKey, id); err != nil {
		r.log.Warn("failed to persist anonymous owner id", "error", err)
	}
	r.anonymous = id
	r.log.Info("generated anonymous owner id", "owner_id", id)
	return id
}
