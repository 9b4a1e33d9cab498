package identity

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/mzahid/tartil/internal/logger"
)

type fakeAuth struct {
	id string
	ok bool
}

func (f *fakeAuth) CurrentUserID(ctx context.Context) (string, bool) {
	return f.id, f.ok
}

type memSettings struct {
	mu     sync.Mutex
	data   map[string]string
	getErr error
	setErr error
	sets   int
}

func newMemSettings() *memSettings {
	return &memSettings{data: make(map[string]string)}
}

func (m *memSettings) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", m.getErr
	}
	return m.data[key], nil
}

func (m *memSettings) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func TestOwnerID_PrefersAuthenticatedUser(t *testing.T) {
	r := NewResolver(&fakeAuth{id: "user-xyz", ok: true}, newMemSettings(), logger.Default())

	if got := r.OwnerID(context.Background()); got != "user-xyz" {
		t.Errorf("Expected authenticated id, got %q", got)
	}
}

func TestOwnerID_AnonymousGeneratedOnce(t *testing.T) {
	settings := newMemSettings()
	r := NewResolver(nil, settings, logger.Default())
	ctx := context.Background()

	first := r.OwnerID(ctx)
	if !strings.HasPrefix(first, "guest-") {
		t.Fatalf("Expected guest- prefix, got %q", first)
	}

	second := r.OwnerID(ctx)
	if second != first {
		t.Errorf("Expected stable anonymous id, got %q then %q", first, second)
	}
	if settings.sets != 1 {
		t.Errorf("Expected exactly one persist, got %d", settings.sets)
	}
}

func TestOwnerID_AnonymousSurvivesNewResolver(t *testing.T) {
	settings := newMemSettings()
	ctx := context.Background()

	first := NewResolver(nil, settings, logger.Default()).OwnerID(ctx)
	second := NewResolver(nil, settings, logger.Default()).OwnerID(ctx)

	if first != second {
		t.Errorf("Expected persisted id across resolvers, got %q then %q", first, second)
	}
}

func TestOwnerID_ExpiredSessionFallsBack(t *testing.T) {
	settings := newMemSettings()
	r := NewResolver(&fakeAuth{ok: false}, settings, logger.Default())

	if got := r.OwnerID(context.Background()); !strings.HasPrefix(got, "guest-") {
		t.Errorf("Expected anonymous fallback, got %q", got)
	}
}

func TestOwnerID_NeverFails(t *testing.T) {
	// Storage trouble degrades to an in-memory identity, stable within the
	// session.
	settings := newMemSettings()
	settings.getErr = errors.New("disk on fire")
	settings.setErr = errors.New("disk on fire")
	r := NewResolver(nil, settings, logger.Default())
	ctx := context.Background()

	first := r.OwnerID(ctx)
	if first == "" {
		t.Fatal("Expected an identity despite storage failure")
	}
	if r.OwnerID(ctx) != first {
		t.Error("Expected session-stable identity despite storage failure")
	}
}
