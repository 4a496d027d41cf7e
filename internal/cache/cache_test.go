package cache

import (
	"path/filepath"
	"testing"
	"time"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	tmp := t.TempDir()
	store, err := Open(filepath.Join(tmp, "cache.db"), filepath.Join(tmp, "cache.lock"))
	if err != nil {
		t.Fatalf("Open cache failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestCacheSetGetFreshAndStale(t *testing.T) {
	store := openStore(t)
	now := time.Unix(1_700_000_000, 0)
	store.now = func() time.Time { return now }

	if err := store.Set("k1", []byte(`{"v":1}`), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	res, err := store.Get("k1")
	if err != nil {
		t.Fatalf("Get fresh failed: %v", err)
	}
	if !res.Hit || res.Stale {
		t.Fatalf("expected fresh hit, got %+v", res)
	}

	now = now.Add(2 * time.Minute)
	res, err = store.Get("k1")
	if err != nil {
		t.Fatalf("Get stale failed: %v", err)
	}
	if !res.Hit || !res.Stale {
		t.Fatalf("expected stale hit, got %+v", res)
	}
}

func TestCacheJSONRoundTripAndPrune(t *testing.T) {
	store := openStore(t)
	now := time.Unix(1_700_000_000, 0)
	store.now = func() time.Time { return now }

	type match struct{ Address string }
	key := TokenKey("Base", " PEPE ")
	if key != "token:base:pepe" {
		t.Fatalf("unexpected key: %s", key)
	}
	if err := store.SetJSON(key, match{Address: "0x01"}, TokenLookupTTL); err != nil {
		t.Fatalf("SetJSON failed: %v", err)
	}
	var got match
	hit, err := store.GetJSON(key, &got)
	if err != nil || !hit || got.Address != "0x01" {
		t.Fatalf("GetJSON = %v %v %+v", hit, err, got)
	}

	now = now.Add(TokenLookupTTL + time.Second)
	if hit, _ := store.GetJSON(key, &got); hit {
		t.Fatal("expected stale entry to miss")
	}
	if err := store.Prune(); err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if res, _ := store.Get(key); res.Hit {
		t.Fatal("expected pruned entry to be gone")
	}
}
