package cache

import (
	"testing"
	"time"
)

func TestSetAndGet(t *testing.T) {
	c := New(true)
	data := []byte(`{"data":"value"}`)

	etag := c.Set("key", data, time.Minute)
	if etag == "" {
		t.Fatal("Set returned empty etag")
	}

	got, gotETag, ok := c.Get("key")
	if !ok {
		t.Fatal("Get miss for fresh entry")
	}
	if string(got) != string(data) || gotETag != etag {
		t.Errorf("Get = %q / %q", got, gotETag)
	}
}

func TestGetExpired(t *testing.T) {
	c := New(true)
	c.Set("key", []byte("x"), -time.Second)

	if _, _, ok := c.Get("key"); ok {
		t.Error("expired entry should miss")
	}
}

func TestDisabledCache(t *testing.T) {
	c := New(false)
	etag := c.Set("key", []byte("x"), time.Minute)
	if etag == "" {
		t.Error("disabled cache still computes etags for responses")
	}
	if _, _, ok := c.Get("key"); ok {
		t.Error("disabled cache must never hit")
	}
}

func TestEvict(t *testing.T) {
	c := New(true)
	c.Set("live", []byte("a"), time.Minute)
	c.Set("dead", []byte("b"), -time.Second)

	c.evict()

	c.mu.RLock()
	_, liveOK := c.entries["live"]
	_, deadOK := c.entries["dead"]
	c.mu.RUnlock()
	if !liveOK || deadOK {
		t.Errorf("after evict: live=%v dead=%v", liveOK, deadOK)
	}
}

func TestStats(t *testing.T) {
	c := New(true)
	c.Set("a", []byte("1"), time.Minute)
	c.Set("b", []byte("2"), -time.Second)

	stats := c.Stats()
	if stats["total_keys"] != 2 || stats["active_keys"] != 1 || stats["expired_keys"] != 1 {
		t.Errorf("stats = %v", stats)
	}
}

func TestComputeETag(t *testing.T) {
	a := ComputeETag([]byte("payload"))
	b := ComputeETag([]byte("payload"))
	other := ComputeETag([]byte("different"))

	if a != b {
		t.Error("same payload must produce the same etag")
	}
	if a == other {
		t.Error("different payloads must differ")
	}
	if len(a) < 4 || a[:3] != `W/"` {
		t.Errorf("etag format = %q, want weak etag", a)
	}
}

func TestCheckETagMatch(t *testing.T) {
	etag := `W/"abc"`
	if !CheckETagMatch(etag, etag) {
		t.Error("matching etags")
	}
	if CheckETagMatch("", etag) {
		t.Error("empty If-None-Match never matches")
	}
	if CheckETagMatch(`W/"zzz"`, etag) {
		t.Error("different etags must not match")
	}
}
