// Package lock serializes driver installs across processes that share a
// download root. A lock is a file created with O_CREATE|O_EXCL; a lock
// older than StaleThreshold is assumed abandoned and taken over.
package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// StaleThreshold is the maximum age of a lock before it's considered stale.
	// It exceeds the default download timeout.
	StaleThreshold = 10 * time.Minute
	// DefaultPollInterval is how often Acquire retries a held lock.
	DefaultPollInterval = 100 * time.Millisecond
)

// ErrLockExists is returned by TryAcquire when another holder owns the lock.
var ErrLockExists = errors.New("lock exists: another install may be in progress")

// Lock represents a held lock file.
type Lock struct {
	path string
	file *os.File
}

// TryAcquire attempts to take the lock named name in dir without waiting.
func TryAcquire(dir, name string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lockPath := filepath.Join(dir, name+".lock")

	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
	if err != nil {
		if !os.IsExist(err) {
			return nil, fmt.Errorf("create lock file: %w", err)
		}
		if stale, _ := isStale(lockPath); !stale {
			return nil, ErrLockExists
		}
		// Remove stale lock and retry once
		os.Remove(lockPath)
		file, err = os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
		if err != nil {
			return nil, ErrLockExists
		}
	}

	lockData := fmt.Sprintf("pid=%d\ntimestamp=%s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
	if _, err := file.WriteString(lockData); err != nil {
		file.Close()
		os.Remove(lockPath)
		return nil, fmt.Errorf("write lock data: %w", err)
	}

	return &Lock{path: lockPath, file: file}, nil
}

// Acquire waits until the lock named name in dir is free and takes it.
// It returns ctx.Err() if ctx ends first.
func Acquire(ctx context.Context, dir, name string, poll time.Duration) (*Lock, error) {
	if poll <= 0 {
		poll = DefaultPollInterval
	}

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		l, err := TryAcquire(dir, name)
		if err == nil {
			return l, nil
		}
		if !errors.Is(err, ErrLockExists) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Release releases the lock.
func (l *Lock) Release() error {
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}

	if l.path != "" {
		if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove lock file: %w", err)
		}
		l.path = ""
	}

	return nil
}

// isStale checks if a lock file is older than StaleThreshold.
func isStale(lockPath string) (bool, error) {
	info, err := os.Stat(lockPath)
	if err != nil {
		return false, err
	}
	return time.Since(info.ModTime()) > StaleThreshold, nil
}
