package lock

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestTryAcquire(t *testing.T) {
	t.Run("creates lock file", func(t *testing.T) {
		dir := t.TempDir()

		l, err := TryAcquire(dir, "chrome")
		if err != nil {
			t.Fatalf("TryAcquire failed: %v", err)
		}
		defer l.Release()

		lockPath := filepath.Join(dir, "chrome.lock")
		if l.Path() != lockPath {
			t.Errorf("Path() = %s, want %s", l.Path(), lockPath)
		}
		data, err := os.ReadFile(lockPath)
		if err != nil {
			t.Fatalf("lock file not created: %v", err)
		}
		if !strings.HasPrefix(string(data), "pid=") {
			t.Errorf("unexpected lock data: %q", data)
		}
	})

	t.Run("prevents concurrent locks", func(t *testing.T) {
		dir := t.TempDir()

		l1, err := TryAcquire(dir, "chrome")
		if err != nil {
			t.Fatalf("first TryAcquire failed: %v", err)
		}
		defer l1.Release()

		if _, err := TryAcquire(dir, "chrome"); !errors.Is(err, ErrLockExists) {
			t.Errorf("expected ErrLockExists, got %v", err)
		}

		// Different names do not conflict
		l2, err := TryAcquire(dir, "firefox")
		if err != nil {
			t.Fatalf("TryAcquire(firefox) failed: %v", err)
		}
		l2.Release()
	})

	t.Run("takes over stale lock", func(t *testing.T) {
		dir := t.TempDir()
		lockPath := filepath.Join(dir, "edge.lock")
		if err := os.WriteFile(lockPath, []byte("pid=1\n"), 0600); err != nil {
			t.Fatal(err)
		}
		old := time.Now().Add(-2 * StaleThreshold)
		if err := os.Chtimes(lockPath, old, old); err != nil {
			t.Fatal(err)
		}

		l, err := TryAcquire(dir, "edge")
		if err != nil {
			t.Fatalf("expected stale lock takeover, got %v", err)
		}
		l.Release()
	})

	t.Run("release removes file and is idempotent", func(t *testing.T) {
		dir := t.TempDir()
		l, err := TryAcquire(dir, "opera")
		if err != nil {
			t.Fatal(err)
		}
		path := l.Path()

		if err := l.Release(); err != nil {
			t.Fatalf("Release failed: %v", err)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("lock file should be removed")
		}
		if err := l.Release(); err != nil {
			t.Errorf("second Release failed: %v", err)
		}
	})
}

func TestAcquire(t *testing.T) {
	t.Run("waits for release", func(t *testing.T) {
		dir := t.TempDir()
		held, err := TryAcquire(dir, "chrome")
		if err != nil {
			t.Fatal(err)
		}

		go func() {
			time.Sleep(50 * time.Millisecond)
			held.Release()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		l, err := Acquire(ctx, dir, "chrome", 10*time.Millisecond)
		if err != nil {
			t.Fatalf("Acquire failed: %v", err)
		}
		l.Release()
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		dir := t.TempDir()
		held, err := TryAcquire(dir, "chrome")
		if err != nil {
			t.Fatal(err)
		}
		defer held.Release()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()

		if _, err := Acquire(ctx, dir, "chrome", 5*time.Millisecond); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected deadline exceeded, got %v", err)
		}
	})
}
