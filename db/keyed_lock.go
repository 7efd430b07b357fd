package db

import (
	"context"
	"errors"
	"sync"
	"time"

	"ong_equipment_tool/apperr"
)

var errLockWait = errors.New("equipment lock wait timed out")

// DefaultLockTimeout bounds a lock wait when none is configured.
const DefaultLockTimeout = 5 * time.Second

// keyedLocks is a set of per-key mutexes that support a bounded wait.
type keyedLocks struct {
	mu sync.Mutex
	m  map[string]*keyedEntry
}

type keyedEntry struct {
	ch   chan struct{}
	refs int
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{m: map[string]*keyedEntry{}}
}

// acquire blocks until key is free, ctx ends or timeout passes. The
// returned func releases the key exactly once.
func (k *keyedLocks) acquire(ctx context.Context, key string, timeout time.Duration) (func(), error) {
	k.mu.Lock()
	e, ok := k.m[key]
	if !ok {
		e = &keyedEntry{ch: make(chan struct{}, 1)}
		k.m[key] = e
	}
	e.refs++
	k.mu.Unlock()

	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case e.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-e.ch
				k.unref(key, e)
			})
		}, nil
	case <-timer.C:
		k.unref(key, e)
		return nil, apperr.Retryable(errLockWait, "equipment %s is busy, try again", key)
	case <-ctx.Done():
		k.unref(key, e)
		return nil, apperr.Retryable(ctx.Err(), "equipment %s is busy, try again", key)
	}
}

func (k *keyedLocks) unref(key string, e *keyedEntry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(k.m, key)
	}
}
