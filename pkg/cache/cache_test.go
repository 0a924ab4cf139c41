package cache

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = %q, %v, %v; want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(filepath.Join(dir, "plans"))
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	t.Run("set and get", func(t *testing.T) {
		if err := c.Set(ctx, "a", []byte("plan-a"), time.Hour); err != nil {
			t.Fatalf("Set: %v", err)
		}
		data, hit, err := c.Get(ctx, "a")
		if err != nil || !hit || string(data) != "plan-a" {
			t.Errorf("Get = %q, %v, %v", data, hit, err)
		}
	})

	t.Run("miss", func(t *testing.T) {
		_, hit, err := c.Get(ctx, "missing")
		if err != nil || hit {
			t.Errorf("Get missing = %v, %v", hit, err)
		}
	})

	t.Run("expired entry is a miss", func(t *testing.T) {
		if err := c.Set(ctx, "old", []byte("x"), time.Nanosecond); err != nil {
			t.Fatal(err)
		}
		time.Sleep(5 * time.Millisecond)
		if _, hit, _ := c.Get(ctx, "old"); hit {
			t.Error("expired entry returned as hit")
		}
		if _, err := os.Stat(c.path("old")); !os.IsNotExist(err) {
			t.Error("expired entry file not removed")
		}
	})

	t.Run("corrupt entry is a miss", func(t *testing.T) {
		path := c.path("bad")
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
			t.Errorf("Get corrupt = %v, %v", hit, err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		_ = c.Set(ctx, "gone", []byte("x"), 0)
		if err := c.Delete(ctx, "gone"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if err := c.Delete(ctx, "gone"); err != nil {
			t.Errorf("second Delete: %v", err)
		}
		if _, hit, _ := c.Get(ctx, "gone"); hit {
			t.Error("deleted entry still present")
		}
	})

	t.Run("clear", func(t *testing.T) {
		for _, k := range []string{"k1", "k2", "k3"} {
			if err := c.Set(ctx, k, []byte(k), 0); err != nil {
				t.Fatal(err)
			}
		}
		n, err := c.Clear()
		if err != nil {
			t.Fatalf("Clear: %v", err)
		}
		if n < 3 {
			t.Errorf("Clear removed %d entries, want at least 3", n)
		}
		entries, _ := os.ReadDir(c.Dir())
		if len(entries) != 0 {
			t.Errorf("cache dir still has %d entries", len(entries))
		}
	})
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	base := PlanKeyOpts{Layout: "8x12+2/4x24", MaxFrontier: 5000, KeepOnCull: 100}

	balance := k.PlanKey(KindBalance, "abc", base)
	if !strings.HasPrefix(balance, "plan:balance:") {
		t.Errorf("PlanKey = %q, want plan:balance: prefix", balance)
	}
	if balance != k.PlanKey(KindBalance, "abc", base) {
		t.Error("PlanKey should be deterministic")
	}

	load := base
	load.Unloads = []string{"Cat"}
	variants := []string{
		k.PlanKey(KindLoad, "abc", base),
		k.PlanKey(KindBalance, "abd", base),
		k.PlanKey(KindLoad, "abc", load),
		k.PlanKey(KindBalance, "abc", PlanKeyOpts{Layout: base.Layout, MaxFrontier: 10, KeepOnCull: 100}),
	}
	seen := map[string]bool{balance: true}
	for _, v := range variants {
		if seen[v] {
			t.Errorf("key collision: %s", v)
		}
		seen[v] = true
	}

	if got := k.ManifestKey("abc"); got != "manifest:abc" {
		t.Errorf("ManifestKey = %q", got)
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	k := NewScopedKeyer(nil, "north:")
	opts := PlanKeyOpts{Layout: "x"}

	if got, want := k.PlanKey(KindBalance, "h", opts), "north:"+inner.PlanKey(KindBalance, "h", opts); got != want {
		t.Errorf("PlanKey = %q, want %q", got, want)
	}
	if got := k.ManifestKey("h"); got != "north:manifest:h" {
		t.Errorf("ManifestKey = %q", got)
	}
}

func TestBackoff(t *testing.T) {
	ctx := context.Background()
	b := Backoff{Attempts: 3, Delay: time.Millisecond}

	t.Run("retries retryable errors", func(t *testing.T) {
		calls := 0
		err := b.Do(ctx, func() error {
			calls++
			if calls < 3 {
				return Retryable(errors.New("flaky"))
			}
			return nil
		})
		if err != nil || calls != 3 {
			t.Errorf("err=%v calls=%d, want nil and 3", err, calls)
		}
	})

	t.Run("stops on permanent errors", func(t *testing.T) {
		calls := 0
		perm := errors.New("permanent")
		err := b.Do(ctx, func() error {
			calls++
			return perm
		})
		if !errors.Is(err, perm) || calls != 1 {
			t.Errorf("err=%v calls=%d", err, calls)
		}
	})

	t.Run("gives up after the last attempt", func(t *testing.T) {
		calls := 0
		err := b.Do(ctx, func() error {
			calls++
			return Retryable(errors.New("down"))
		})
		if !IsRetryable(err) || calls != 3 {
			t.Errorf("err=%v calls=%d", err, calls)
		}
	})

	t.Run("honours cancellation between attempts", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		calls := 0
		err := Backoff{Attempts: 5, Delay: time.Hour}.Do(cctx, func() error {
			calls++
			cancel()
			return Retryable(errors.New("down"))
		})
		if !errors.Is(err, context.Canceled) || calls != 1 {
			t.Errorf("err=%v calls=%d", err, calls)
		}
	})
}

func TestTransient(t *testing.T) {
	if transient(nil) != nil {
		t.Error("transient(nil) should be nil")
	}
	err := transient(io.EOF)
	if !IsRetryable(err) || !errors.Is(err, ErrNetwork) {
		t.Errorf("transient(EOF) = %v, want retryable network error", err)
	}
	other := errors.New("WRONGTYPE")
	if transient(other) != other {
		t.Error("non-network errors should pass through")
	}
}

// TestRedisCache runs against a live server when CRANEPLAN_TEST_REDIS is set.
func TestRedisCache(t *testing.T) {
	addr := os.Getenv("CRANEPLAN_TEST_REDIS")
	if addr == "" {
		t.Skip("CRANEPLAN_TEST_REDIS not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, addr, "", 0)
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()

	key := "craneplan:test:" + Hash([]byte(t.Name()))
	if err := c.Set(ctx, key, []byte("plan"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, key)
	if err != nil || !hit || string(data) != "plan" {
		t.Errorf("Get = %q, %v, %v", data, hit, err)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, key); hit {
		t.Error("deleted key still present")
	}
}
