package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	// DiagramKey should include options in hash
	dk1 := k.DiagramKey("hash123", DiagramKeyOpts{Block: -1})
	dk2 := k.DiagramKey("hash123", DiagramKeyOpts{Block: 0})
	if dk1 == dk2 {
		t.Error("Different DiagramKeyOpts should produce different keys")
	}
	if !strings.HasPrefix(dk1, "diagram:v1:") {
		t.Errorf("DiagramKey unexpected prefix: %s", dk1)
	}

	// LayoutKey
	lk1 := k.LayoutKey("hash123", LayoutKeyOpts{Engine: "sequence", Constants: map[string]float64{"gap": 20}})
	lk2 := k.LayoutKey("hash123", LayoutKeyOpts{Engine: "sequence", Constants: map[string]float64{"gap": 30}})
	if lk1 == lk2 {
		t.Error("Different LayoutKeyOpts should produce different keys")
	}

	// Version isolates releases
	old := &DefaultKeyer{Version: "v0"}
	if old.LayoutKey("hash123", LayoutKeyOpts{}) == k.LayoutKey("hash123", LayoutKeyOpts{}) {
		t.Error("Different versions should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "tenant:123:")

	key := scoped.DiagramKey("abc", DiagramKeyOpts{})
	if key != "tenant:123:"+inner.DiagramKey("abc", DiagramKeyOpts{}) {
		t.Errorf("ScopedKeyer DiagramKey unexpected: %s", key)
	}

	layoutKey := scoped.LayoutKey("abc", LayoutKeyOpts{Engine: "nodelink"})
	if !strings.HasPrefix(layoutKey, "tenant:123:layout:") {
		t.Errorf("ScopedKeyer LayoutKey should be prefixed: %s", layoutKey)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.DiagramKey("abc", DiagramKeyOpts{})
	if key != "prefix:"+NewDefaultKeyer().DiagramKey("abc", DiagramKeyOpts{}) {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestLRUCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewLRUCache(2)
	if err != nil {
		t.Fatalf("NewLRUCache: %v", err)
	}
	defer c.Close()

	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)
	if _, hit, _ := c.Get(ctx, "a"); !hit {
		t.Fatal("a should be cached")
	}
	// b is now least recently used and is evicted by c.
	_ = c.Set(ctx, "c", []byte("3"), 0)
	if _, hit, _ := c.Get(ctx, "b"); hit {
		t.Error("b should have been evicted")
	}
	if data, hit, _ := c.Get(ctx, "a"); !hit || string(data) != "1" {
		t.Errorf("a = %q, %v", data, hit)
	}

	_ = c.Delete(ctx, "a")
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("a should be deleted")
	}
}

func TestLRUCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewLRUCache(0)
	lc := c.(*LRUCache)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	lc.now = func() time.Time { return now }

	_ = c.Set(ctx, "k", []byte("v"), time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); !hit {
		t.Fatal("fresh entry should hit")
	}
	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
	if lc.Len() != 0 {
		t.Errorf("expired entry should be removed, len = %d", lc.Len())
	}
}

func TestLRUCacheCopiesData(t *testing.T) {
	ctx := context.Background()
	c, _ := NewLRUCache(4)
	data := []byte("abc")
	_ = c.Set(ctx, "k", data, 0)
	data[0] = 'x'
	got, _, _ := c.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("cached data changed with caller buffer: %q", got)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Fatalf("missing key: hit=%v err=%v", hit, err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), time.Hour); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}
	if data, hit, _ := c.Get(ctx, "b"); !hit || string(data) != "b" {
		t.Errorf("b = %q, %v", data, hit)
	}

	// Expired entries are misses.
	_ = c.Set(ctx, "old", []byte("x"), time.Nanosecond)
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "old"); hit {
		t.Error("expired entry should miss")
	}

	n, err := c.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d entries, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("a should be gone after Clear")
	}
}

type payload struct {
	Name  string            `json:"name"`
	Tags  []string          `json:"tags"`
	Props map[string]string `json:"props,omitempty"`
}

func TestCodecUsesJSONNames(t *testing.T) {
	in := payload{Name: "orders", Tags: []string{"er"}, Props: map[string]string{"k": "v"}}
	data, err := Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	// Decoding into a map shows the field names used on the wire.
	var raw map[string]any
	if err := Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal map: %v", err)
	}
	if _, ok := raw["name"]; !ok {
		t.Errorf("expected json field names, got %v", raw)
	}

	var out payload
	if err := Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.Name != in.Name || len(out.Tags) != 1 || out.Props["k"] != "v" {
		t.Errorf("round trip = %+v", out)
	}
}

func TestHashValue(t *testing.T) {
	h1, err := HashValue(payload{Name: "a"})
	if err != nil {
		t.Fatal(err)
	}
	h2, _ := HashValue(payload{Name: "b"})
	if h1 == h2 || len(h1) != 64 {
		t.Errorf("HashValue: %s %s", h1, h2)
	}
}

func TestRetryableError(t *testing.T) {
	// Retryable(nil) returns nil
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	// Non-nil error is wrapped
	err := Retryable(ErrUnavailable)
	if err == nil {
		t.Fatal("Retryable should return wrapped error")
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}

	// Error message is preserved
	if err.Error() != ErrUnavailable.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}

	// Non-wrapped errors are not retryable
	if IsRetryable(ErrUnavailable) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()
	defer func(d time.Duration) { retryDelay = d }(retryDelay)
	retryDelay = time.Millisecond

	// Success on first try
	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should call once: %d", calls)
	}

	// Non-retryable error stops immediately
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return context.DeadlineExceeded
	})
	if err != context.DeadlineExceeded {
		t.Errorf("Should return non-retryable error: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should not retry non-retryable error: %d", calls)
	}

	// Retryable error triggers retries
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrUnavailable)
		}
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed after retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("Should retry once: %d", calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrUnavailable)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}
