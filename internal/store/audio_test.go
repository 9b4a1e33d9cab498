package store

import (
	"encoding/base64"
	"path/filepath"
	"testing"
	"time"

	"github.com/mzahid/tartil/internal/domain"
)

func TestAudio_PutGetRoundTrip(t *testing.T) {
	db := setupTestDB(t)

	payload := base64.StdEncoding.EncodeToString([]byte("fake mp3 bytes"))
	item := &domain.AudioItem{
		ContentKey: "2:255",
		SourceText: "Ayat al-Kursi",
		Payload:    payload,
		CreatedAt:  time.Now(),
	}

	if err := db.PutAudio(item); err != nil {
		t.Fatalf("PutAudio failed: %v", err)
	}
	if item.ID == 0 {
		t.Fatal("Expected assigned id")
	}

	fetched, err := db.GetAudio(item.ID)
	if err != nil {
		t.Fatalf("GetAudio failed: %v", err)
	}
	if fetched == nil {
		t.Fatal("Expected item, got nil")
	}
	if fetched.Payload != payload {
		t.Errorf("Payload mismatch after round trip")
	}
	if fetched.ContentKey != "2:255" {
		t.Errorf("Expected content key 2:255, got %s", fetched.ContentKey)
	}
}

func TestAudio_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audio.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}

	payload := base64.StdEncoding.EncodeToString([]byte("persistent audio"))
	item := &domain.AudioItem{ContentKey: "1:1", SourceText: "Bismillah", Payload: payload}
	if err := db.PutAudio(item); err != nil {
		t.Fatalf("PutAudio failed: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	db, err = Open(path)
	if err != nil {
		t.Fatalf("Failed to reopen db: %v", err)
	}
	defer db.Close()

	fetched, err := db.GetAudio(item.ID)
	if err != nil {
		t.Fatalf("GetAudio failed: %v", err)
	}
	if fetched == nil {
		t.Fatal("Expected item to survive reopen")
	}
	if fetched.Payload != payload {
		t.Errorf("Payload mismatch after reopen")
	}
}

func TestAudio_GetMissIsNotError(t *testing.T) {
	db := setupTestDB(t)

	item, err := db.GetAudio(12345)
	if err != nil {
		t.Fatalf("GetAudio failed: %v", err)
	}
	if item != nil {
		t.Error("Expected nil for missing id")
	}

	item, err = db.GetAudioByContentKey("nope")
	if err != nil {
		t.Fatalf("GetAudioByContentKey failed: %v", err)
	}
	if item != nil {
		t.Error("Expected nil for missing content key")
	}
}

func TestAudio_DeleteIdempotent(t *testing.T) {
	db := setupTestDB(t)

	item := &domain.AudioItem{ContentKey: "3:1", Payload: "QUJD"}
	if err := db.PutAudio(item); err != nil {
		t.Fatalf("PutAudio failed: %v", err)
	}

	if err := db.DeleteAudio(item.ID); err != nil {
		t.Fatalf("DeleteAudio failed: %v", err)
	}
	// Second delete of the same id must not error
	if err := db.DeleteAudio(item.ID); err != nil {
		t.Errorf("Second DeleteAudio failed: %v", err)
	}

	fetched, err := db.GetAudio(item.ID)
	if err != nil {
		t.Fatalf("GetAudio failed: %v", err)
	}
	if fetched != nil {
		t.Error("Expected item gone after delete")
	}
}

func TestAudio_ContentKeyLookupDeterministic(t *testing.T) {
	db := setupTestDB(t)

	first := &domain.AudioItem{ContentKey: "36:1", SourceText: "first voice", Payload: "QQ=="}
	second := &domain.AudioItem{ContentKey: "36:1", SourceText: "second voice", Payload: "Qg=="}
	if err := db.PutAudio(first); err != nil {
		t.Fatalf("PutAudio failed: %v", err)
	}
	if err := db.PutAudio(second); err != nil {
		t.Fatalf("PutAudio failed: %v", err)
	}
	if first.ID == second.ID {
		t.Fatal("Expected distinct ids for shared content key")
	}

	// Both retrievable by id
	for _, id := range []int64{first.ID, second.ID} {
		got, err := db.GetAudio(id)
		if err != nil || got == nil {
			t.Fatalf("GetAudio(%d) = %v, %v", id, got, err)
		}
	}

	// Key lookup returns the same match every time
	for i := 0; i < 3; i++ {
		got, err := db.GetAudioByContentKey("36:1")
		if err != nil {
			t.Fatalf("GetAudioByContentKey failed: %v", err)
		}
		if got.ID != first.ID {
			t.Errorf("Expected deterministic first match %d, got %d", first.ID, got.ID)
		}
	}
}

func TestAudio_ListNewestFirstWithSize(t *testing.T) {
	db := setupTestDB(t)

	base := time.Now().Add(-time.Hour)
	items := []*domain.AudioItem{
		{ContentKey: "old", Payload: base64.StdEncoding.EncodeToString([]byte("aaaa")), CreatedAt: base},
		{ContentKey: "mid", Payload: base64.StdEncoding.EncodeToString([]byte("bbbbbbbb")), CreatedAt: base.Add(10 * time.Minute)},
		{ContentKey: "new", Payload: base64.StdEncoding.EncodeToString([]byte("cc")), CreatedAt: base.Add(20 * time.Minute)},
	}
	for _, it := range items {
		if err := db.PutAudio(it); err != nil {
			t.Fatalf("PutAudio failed: %v", err)
		}
	}

	metas, err := db.ListAudioMetadata()
	if err != nil {
		t.Fatalf("ListAudioMetadata failed: %v", err)
	}
	if len(metas) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(metas))
	}

	if metas[0].ContentKey != "new" || metas[1].ContentKey != "mid" || metas[2].ContentKey != "old" {
		t.Errorf("Expected newest-first order, got %s, %s, %s",
			metas[0].ContentKey, metas[1].ContentKey, metas[2].ContentKey)
	}

	// Size approximates the decoded length
	if metas[1].Size < 6 || metas[1].Size > 9 {
		t.Errorf("Expected size near 8 for mid item, got %d", metas[1].Size)
	}
}

func TestAudio_PutWithExplicitIDReplaces(t *testing.T) {
	db := setupTestDB(t)

	item := &domain.AudioItem{ContentKey: "5:5", Payload: "QQ=="}
	if err := db.PutAudio(item); err != nil {
		t.Fatalf("PutAudio failed: %v", err)
	}

	replacement := &domain.AudioItem{
		ID:         item.ID,
		ContentKey: "5:5",
		SourceText: "replaced",
		Payload:    "Qg==",
	}
	if err := db.PutAudio(replacement); err != nil {
		t.Fatalf("PutAudio replace failed: %v", err)
	}

	fetched, _ := db.GetAudio(item.ID)
	if fetched.Payload != "Qg==" {
		t.Errorf("Expected replaced payload, got %s", fetched.Payload)
	}
	if fetched.SourceText != "replaced" {
		t.Errorf("Expected replaced source text, got %s", fetched.SourceText)
	}

	metas, _ := db.ListAudioMetadata()
	if len(metas) != 1 {
		t.Errorf("Expected exactly 1 item after replace, got %d", len(metas))
	}
}
