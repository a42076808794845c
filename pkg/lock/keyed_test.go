package lock_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/amirasaad/ledger/pkg/lock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyed_SerialisesSameKey(t *testing.T) {
	t.Parallel()
	k := lock.NewKeyed()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
		counter int
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := k.Lock(context.Background(), "acc-1")
			require.NoError(t, err)
			defer unlock()

			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			counter++ // guarded by the keyed lock only

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Equal(t, 50, counter)
	assert.Equal(t, 0, k.Len(), "entries should be dropped once released")
}

func TestKeyed_DifferentKeysDoNotBlock(t *testing.T) {
	t.Parallel()
	k := lock.NewKeyed()

	unlockA, err := k.Lock(context.Background(), "a")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlockB, err := k.Lock(ctx, "b")
	require.NoError(t, err)
	unlockB()
}

func TestKeyed_ContextCancelledWhileWaiting(t *testing.T) {
	t.Parallel()
	k := lock.NewKeyed()

	unlock, err := k.Lock(context.Background(), "a")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = k.Lock(ctx, "a")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock() // idempotent
	assert.Equal(t, 0, k.Len())

	unlock2, err := k.Lock(context.Background(), "a")
	require.NoError(t, err)
	unlock2()
}
