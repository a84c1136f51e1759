package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestCacheGetOrLoadMemoryHit(t *testing.T) {
	c := New[string](10, time.Minute, StringCodec())
	ctx := context.Background()
	key := NewKey(PrefixProfile, "https://example.com/sub", "surge")

	var calls int32
	loader := func(context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "loaded-value", nil
	}

	for i := 0; i < 3; i++ {
		value, err := c.GetOrLoad(ctx, key, loader)
		if err != nil {
			t.Fatalf("GetOrLoad: %v", err)
		}
		if value != "loaded-value" {
			t.Fatalf("got %q", value)
		}
	}
	if calls != 1 {
		t.Fatalf("loader called %d times, want 1", calls)
	}
}

func TestCacheKVTierPopulatesMemory(t *testing.T) {
	kv := NewMemoryKVStore()
	c := New[string](10, time.Minute, StringCodec(), WithKV[string](kv, time.Minute))
	ctx := context.Background()
	key := NewKey(PrefixProfile, "https://example.com/sub", "clash")

	if err := kv.Set(ctx, key.String(), "from-kv", time.Minute); err != nil {
		t.Fatalf("kv.Set: %v", err)
	}

	var calls int32
	value, err := c.GetOrLoad(ctx, key, func(context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "from-loader", nil
	})
	if err != nil {
		t.Fatalf("GetOrLoad: %v", err)
	}
	if value != "from-kv" {
		t.Fatalf("got %q, want from-kv", value)
	}
	if calls != 0 {
		t.Fatalf("loader should not run on kv hit, called %d times", calls)
	}
}

func TestCacheAtMostOneLoaderInFlight(t *testing.T) {
	c := New[string](10, time.Minute, StringCodec())
	ctx := context.Background()
	key := NewKey(PrefixRawSubURL, "shared-key", "")

	var calls int32
	release := make(chan struct{})
	started := make(chan struct{})

	loader := func(context.Context) (string, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
			<-release
		}
		return "result", nil
	}

	const n = 8
	var wg sync.WaitGroup
	results := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.GetOrLoad(ctx, key, loader)
		}(i)
	}

	<-started
	close(release)
	wg.Wait()

	if calls != 1 {
		t.Fatalf("loader invoked %d times, want exactly 1", calls)
	}
	for i, err := range errs {
		if err != nil {
			t.Fatalf("goroutine %d: %v", i, err)
		}
		if results[i] != "result" {
			t.Fatalf("goroutine %d: got %q", i, results[i])
		}
	}
}

func TestCacheErrorsAreNotMemoized(t *testing.T) {
	c := New[string](10, time.Minute, StringCodec())
	ctx := context.Background()
	key := NewKey(PrefixAuthToken, "login-path", "")

	var calls int32
	loader := func(context.Context) (string, error) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			return "", errFirstCallFails
		}
		return "ok", nil
	}

	if _, err := c.GetOrLoad(ctx, key, loader); err != errFirstCallFails {
		t.Fatalf("got err %v", err)
	}
	value, err := c.GetOrLoad(ctx, key, loader)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if value != "ok" {
		t.Fatalf("got %q", value)
	}
	if calls != 2 {
		t.Fatalf("loader called %d times, want 2 (error not cached)", calls)
	}
}

var errFirstCallFails = &Error{Key: "test", Cause: context.DeadlineExceeded}
