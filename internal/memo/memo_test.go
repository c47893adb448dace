package memo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestDeriveKeyIgnoresArgumentOrder(t *testing.T) {
	a, err := DeriveKey("gen-1", "predict", Arg{"data", []float64{1, 2}}, Arg{"steps", 30})
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	b, err := DeriveKey("gen-1", "predict", Arg{"steps", 30}, Arg{"data", []float64{1, 2}})
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if a != b {
		t.Fatalf("argument order changed the key: %s vs %s", a, b)
	}
}

func TestDeriveKeySensitivity(t *testing.T) {
	base, _ := DeriveKey("gen-1", "predict", Arg{"steps", 30})
	differentValue, _ := DeriveKey("gen-1", "predict", Arg{"steps", 70})
	differentMethod, _ := DeriveKey("gen-1", "infer", Arg{"steps", 30})
	differentModel, _ := DeriveKey("gen-2", "predict", Arg{"steps", 30})

	for name, other := range map[string]Key{
		"value":  differentValue,
		"method": differentMethod,
		"model":  differentModel,
	} {
		if base == other {
			t.Fatalf("changing %s did not change the key", name)
		}
	}
}

func TestDeriveKeyStable(t *testing.T) {
	// Keys must survive process restarts; pin the derivation.
	a, _ := DeriveKey("g", "m", Arg{"x", 1})
	b, _ := DeriveKey("g", "m", Arg{"x", 1})
	if a != b || len(a) != 64 {
		t.Fatalf("unstable or malformed key: %s vs %s", a, b)
	}
}

func testStoreRoundTrip(t *testing.T, store Store) {
	t.Helper()

	if _, ok, err := store.Get("missing"); err != nil || ok {
		t.Fatalf("get missing: ok=%v err=%v", ok, err)
	}
	if err := store.Set("k", []byte("v1")); err != nil {
		t.Fatalf("set: %v", err)
	}
	// One stored result per key: a second set overwrites.
	if err := store.Set("k", []byte("v2")); err != nil {
		t.Fatalf("set again: %v", err)
	}
	value, ok, err := store.Get("k")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if string(value) != "v2" {
		t.Fatalf("value = %q, want v2", value)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := store.Get("k"); ok {
		t.Fatal("entry survived clear")
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	testStoreRoundTrip(t, store)
	if store.Location() != "" {
		t.Fatalf("memory store has location %q", store.Location())
	}
}

func TestBadgerStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gen-a")
	store, err := Open(KindBadger, dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	testStoreRoundTrip(t, store)
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestBadgerStoreSurvivesReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gen-a")

	store, err := Open(KindBadger, dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.Set("k", []byte("warm")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	store, err = Open(KindBadger, dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()
	value, ok, err := store.Get("k")
	if err != nil || !ok {
		t.Fatalf("get after reopen: ok=%v err=%v", ok, err)
	}
	if string(value) != "warm" {
		t.Fatalf("value = %q, want warm", value)
	}
}

func TestBadgerStoreSharedLocation(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gen-shared")

	first, err := Open(KindBadger, dir)
	if err != nil {
		t.Fatalf("open first: %v", err)
	}
	second, err := Open(KindBadger, dir)
	if err != nil {
		t.Fatalf("open second handle on same location: %v", err)
	}

	if err := first.Set("k", []byte("shared")); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, ok, err := second.Get("k")
	if err != nil || !ok {
		t.Fatalf("second handle missed shared entry: ok=%v err=%v", ok, err)
	}
	if string(value) != "shared" {
		t.Fatalf("value = %q, want shared", value)
	}

	if err := first.Close(); err != nil {
		t.Fatalf("close first: %v", err)
	}
	// Second handle must stay usable after the first closes.
	if _, ok, err := second.Get("k"); err != nil || !ok {
		t.Fatalf("second handle broken after first close: ok=%v err=%v", ok, err)
	}
	if err := second.Close(); err != nil {
		t.Fatalf("close second: %v", err)
	}
}

func TestSQLiteStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gen-a")
	store, err := Open(KindSQLite, dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()
	testStoreRoundTrip(t, store)
}

func TestOpenRejectsUnknownKind(t *testing.T) {
	if _, err := Open("redis", t.TempDir()); err == nil {
		t.Fatal("unknown backend accepted")
	}
}

func TestCacheGetOrCompute(t *testing.T) {
	cache := NewTransient(zerolog.Nop())

	computes := 0
	compute := func() ([]byte, error) {
		computes++
		return []byte("result"), nil
	}

	key, _ := DeriveKey("g", "predict", Arg{"steps", 30})

	value, hit, err := cache.GetOrCompute(key, compute)
	if err != nil || hit {
		t.Fatalf("first call: hit=%v err=%v", hit, err)
	}
	if string(value) != "result" {
		t.Fatalf("value = %q", value)
	}

	value, hit, err = cache.GetOrCompute(key, compute)
	if err != nil || !hit {
		t.Fatalf("second call: hit=%v err=%v", hit, err)
	}
	if string(value) != "result" || computes != 1 {
		t.Fatalf("cached call recomputed: computes=%d", computes)
	}

	other, _ := DeriveKey("g", "predict", Arg{"steps", 70})
	if _, hit, _ := cache.GetOrCompute(other, compute); hit {
		t.Fatal("different arguments produced a cache hit")
	}
	if computes != 2 {
		t.Fatalf("computes = %d, want 2", computes)
	}
}

func TestCacheFailedComputeStoresNothing(t *testing.T) {
	cache := NewTransient(zerolog.Nop())
	key, _ := DeriveKey("g", "predict", Arg{"steps", 1})

	fails := func() ([]byte, error) { return nil, os.ErrDeadlineExceeded }
	if _, _, err := cache.GetOrCompute(key, fails); err == nil {
		t.Fatal("expected compute error")
	}

	_, hit, err := cache.GetOrCompute(key, func() ([]byte, error) { return []byte("ok"), nil })
	if err != nil || hit {
		t.Fatalf("failed compute left a cache entry: hit=%v err=%v", hit, err)
	}
}

func TestCacheHardClearRemovesDirectory(t *testing.T) {
	root := t.TempDir()
	dir := GenerationDir(root, "abc")
	cache, err := NewPersistent(KindBadger, dir, "abc", zerolog.Nop())
	if err != nil {
		t.Fatalf("new persistent: %v", err)
	}

	key, _ := DeriveKey("abc", "predict", Arg{"steps", 1})
	if _, _, err := cache.GetOrCompute(key, func() ([]byte, error) { return []byte("v"), nil }); err != nil {
		t.Fatalf("populate: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("expected cache dir on disk: %v", err)
	}

	if err := cache.Clear(false); err != nil {
		t.Fatalf("hard clear: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("cache dir survived hard clear: %v", err)
	}
}

func TestCacheSoftClearKeepsDirectory(t *testing.T) {
	root := t.TempDir()
	dir := GenerationDir(root, "soft")
	cache, err := NewPersistent(KindBadger, dir, "soft", zerolog.Nop())
	if err != nil {
		t.Fatalf("new persistent: %v", err)
	}
	defer cache.Close()

	key, _ := DeriveKey("soft", "predict", Arg{"steps", 1})
	if _, _, err := cache.GetOrCompute(key, func() ([]byte, error) { return []byte("v"), nil }); err != nil {
		t.Fatalf("populate: %v", err)
	}
	if err := cache.Clear(true); err != nil {
		t.Fatalf("soft clear: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("soft clear removed the backing dir: %v", err)
	}
	if _, hit, _ := cache.GetOrCompute(key, func() ([]byte, error) { return []byte("v"), nil }); hit {
		t.Fatal("entry survived soft clear")
	}
}

func TestCacheSoftClearReachesUnopenedStore(t *testing.T) {
	root := t.TempDir()
	dir := GenerationDir(root, "lazy")
	key, _ := DeriveKey("lazy", "predict", Arg{"steps", 1})

	writer, err := NewPersistent(KindBadger, dir, "lazy", zerolog.Nop())
	if err != nil {
		t.Fatalf("new persistent: %v", err)
	}
	if _, _, err := writer.GetOrCompute(key, func() ([]byte, error) { return []byte("v"), nil }); err != nil {
		t.Fatalf("populate: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	// A fresh cache over the same generation has not opened its store.
	// Soft-clearing before any lookup must still drop the persisted entry.
	reader, err := NewPersistent(KindBadger, dir, "lazy", zerolog.Nop())
	if err != nil {
		t.Fatalf("new persistent: %v", err)
	}
	defer reader.Close()
	if err := reader.Clear(true); err != nil {
		t.Fatalf("soft clear: %v", err)
	}
	if _, hit, _ := reader.GetOrCompute(key, func() ([]byte, error) { return []byte("v"), nil }); hit {
		t.Fatal("persisted entry survived soft clear on an unopened cache")
	}
}

func TestCacheSoftClearSkipsAbsentGeneration(t *testing.T) {
	dir := GenerationDir(t.TempDir(), "never")
	cache, err := NewPersistent(KindBadger, dir, "never", zerolog.Nop())
	if err != nil {
		t.Fatalf("new persistent: %v", err)
	}
	if err := cache.Clear(true); err != nil {
		t.Fatalf("soft clear: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("soft clear materialized an unused generation: %v", err)
	}
}

func TestRemoveOrphans(t *testing.T) {
	root := t.TempDir()
	for _, gen := range []string{"old1", "old2", "live"} {
		if err := os.MkdirAll(GenerationDir(root, gen), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(root, "unrelated.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := RemoveOrphans(root, "live"); err != nil {
		t.Fatalf("remove orphans: %v", err)
	}
	if _, err := os.Stat(GenerationDir(root, "live")); err != nil {
		t.Fatal("kept generation was removed")
	}
	if _, err := os.Stat(GenerationDir(root, "old1")); !os.IsNotExist(err) {
		t.Fatal("orphaned generation survived")
	}
	if _, err := os.Stat(filepath.Join(root, "unrelated.txt")); err != nil {
		t.Fatal("non-generation file was removed")
	}
}

func TestRemoveOrphansMissingRoot(t *testing.T) {
	if err := RemoveOrphans(filepath.Join(t.TempDir(), "nope")); err != nil {
		t.Fatalf("missing root should be a no-op: %v", err)
	}
}
