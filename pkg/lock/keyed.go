// Package lock provides a keyed mutex table: one exclusive slot per key,
// created on first use and dropped once nobody holds or waits for it.
package lock

import (
	"context"
	"sync"
)

type entry struct {
	slot chan struct{}
	refs int
}

// Keyed serialises holders of the same key while letting different keys
// proceed in parallel. The zero value is not usable; call NewKeyed.
type Keyed struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewKeyed returns an empty lock table.
func NewKeyed() *Keyed {
	return &Keyed{entries: make(map[string]*entry)}
}

// Lock blocks until key is free or ctx is done. On success it returns an
// unlock function that is safe to call more than once.
func (k *Keyed) Lock(ctx context.Context, key string) (func(), error) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{slot: make(chan struct{}, 1)}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	select {
	case e.slot <- struct{}{}:
	case <-ctx.Done():
		k.release(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.slot
			k.release(key, e)
		})
	}, nil
}

func (k *Keyed) release(key string, e *entry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
}

// Len returns the number of keys currently held or waited on.
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
