package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"gridshell/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	return s
}

// filePath returns the on-disk location diskv uses for a dash-separated key.
func filePath(root, key string) string {
	return filepath.Join(append([]string{root}, splitKey(key)...)...)
}

func splitKey(key string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(key); i++ {
		if key[i] == '-' {
			parts = append(parts, key[start:i])
			start = i + 1
		}
	}
	return append(parts, key[start:])
}

func TestPutGetRoundtrip(t *testing.T) {
	s := openTestStore(t)
	want := domain.Layout{ID: "l1", Name: "Main", Tabs: []domain.Tab{
		{ID: "t1", Name: "Markets", Type: domain.TabDynamic, Closable: true, Components: []domain.ComponentInstance{}},
	}}
	key := CurrentLayoutKey("u1")
	if err := s.Put(key, want); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	var got domain.Layout
	if !s.Get(key, &got) {
		t.Fatalf("Get reported absent after Put")
	}
	if got.ID != want.ID || got.Name != want.Name || len(got.Tabs) != 1 || got.Tabs[0].ID != "t1" {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}
}

func TestGetAbsentKey(t *testing.T) {
	s := openTestStore(t)
	var out domain.Layout
	if s.Get(CurrentLayoutKey("nobody"), &out) {
		t.Fatalf("Get of absent key reported present")
	}
}

func TestGetCorruptRecordFailsSoft(t *testing.T) {
	s := openTestStore(t)
	key := UserKey()
	path := filePath(s.Root(), key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt record: %v", err)
	}
	var u domain.User
	if s.Get(key, &u) {
		t.Fatalf("corrupt record should read as absent")
	}
	// A later Put must recover the key
	if err := s.Put(key, domain.User{ID: "u1", Name: "Trader"}); err != nil {
		t.Fatalf("Put after corruption: %v", err)
	}
	if !s.Get(key, &u) || u.ID != "u1" {
		t.Fatalf("Put did not recover corrupt key: %+v", u)
	}
}

// Loading then immediately re-saving a record must produce identical bytes;
// repeated round-trips may not drift.
func TestLoadSaveIdempotent(t *testing.T) {
	s := openTestStore(t)
	key := CurrentLayoutKey("u1")
	lay := domain.Layout{ID: "l1", Name: "Main", Tabs: []domain.Tab{
		{ID: "t1", Name: "Markets", Type: domain.TabDynamic, Closable: true,
			Components: []domain.ComponentInstance{
				{ID: "candle-chart-1700000000000", ComponentID: "candle-chart", Grid: &domain.GridPlacement{X: 0, Y: 0, W: 6, H: 4}},
			}},
	}}
	if err := s.Put(key, lay); err != nil {
		t.Fatalf("Put: %v", err)
	}
	first, err := os.ReadFile(filePath(s.Root(), key))
	if err != nil {
		t.Fatalf("read record file: %v", err)
	}
	var loaded domain.Layout
	if !s.Get(key, &loaded) {
		t.Fatalf("Get reported absent")
	}
	if err := s.Put(key, loaded); err != nil {
		t.Fatalf("re-Put: %v", err)
	}
	second, err := os.ReadFile(filePath(s.Root(), key))
	if err != nil {
		t.Fatalf("re-read record file: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("record bytes drifted across load/save:\n%s\nvs\n%s", first, second)
	}
}

// Version 1 records were bare payloads using "title" for display names.
// Reading one must migrate it in place and rewrite it enveloped.
func TestV1RecordMigratedOnRead(t *testing.T) {
	s := openTestStore(t)
	key := CurrentLayoutKey("u9")
	v1 := []byte(`{"id":"l1","title":"Old Desk","tabs":[{"id":"t1","title":"FX","type":"dynamic","closable":true,"components":[]}]}`)
	path := filePath(s.Root(), key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, v1, 0o644); err != nil {
		t.Fatalf("seed v1 record: %v", err)
	}

	var lay domain.Layout
	if !s.Get(key, &lay) {
		t.Fatalf("Get of v1 record reported absent")
	}
	if lay.Name != "Old Desk" {
		t.Fatalf("layout title not migrated to name: %+v", lay)
	}
	if len(lay.Tabs) != 1 || lay.Tabs[0].Name != "FX" {
		t.Fatalf("tab title not migrated to name: %+v", lay.Tabs)
	}

	// The rewritten record must now be enveloped at the current schema.
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read migrated record: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.SchemaVersion != CurrentSchemaVersion {
		t.Fatalf("migrated record not enveloped at v%d: %s", CurrentSchemaVersion, raw)
	}

	// Migrating twice produces the same result as migrating once.
	var again domain.Layout
	if !s.Get(key, &again) || again.Name != "Old Desk" {
		t.Fatalf("second read after migration mismatch: %+v", again)
	}
}

func TestDeleteAndKeys(t *testing.T) {
	s := openTestStore(t)
	if err := s.Put(ThemeKey(), "dark"); err != nil {
		t.Fatalf("Put theme: %v", err)
	}
	if err := s.Put(UserKey(), domain.User{ID: "u1"}); err != nil {
		t.Fatalf("Put user: %v", err)
	}
	keys := s.Keys(context.Background())
	if len(keys) != 2 {
		t.Fatalf("Keys = %v, want 2 entries", keys)
	}
	if err := s.Delete(ThemeKey()); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	var theme string
	if s.Get(ThemeKey(), &theme) {
		t.Fatalf("deleted key still readable")
	}
	// Deleting again is not an error
	if err := s.Delete(ThemeKey()); err != nil {
		t.Fatalf("Delete of absent key: %v", err)
	}
}

func TestSessionStoreIsProcessLocal(t *testing.T) {
	ss := NewSessionStore()
	key := ActiveTabKey("u1")
	if err := ss.Put(key, "t2"); err != nil {
		t.Fatalf("session Put: %v", err)
	}
	var tab string
	if !ss.Get(key, &tab) || tab != "t2" {
		t.Fatalf("session Get = %q", tab)
	}
	if err := ss.Delete(key); err != nil {
		t.Fatalf("session Delete: %v", err)
	}
	if ss.Get(key, &tab) {
		t.Fatalf("session key survived delete")
	}
	// A fresh store never shares state
	if NewSessionStore().Get(key, &tab) {
		t.Fatalf("fresh session store should be empty")
	}
}
