package triage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedMutexRejectsSecondAcquire(t *testing.T) {
	locks := NewKeyedMutex()
	ctx := context.Background()

	release, err := locks.Acquire(ctx, "t1")
	require.NoError(t, err)

	_, err = locks.Acquire(ctx, "t1")
	assert.ErrorIs(t, err, ErrTriageInProgress)

	release()
	release2, err := locks.Acquire(ctx, "t1")
	require.NoError(t, err)
	release2()
}

func TestKeyedMutexIndependentTickets(t *testing.T) {
	locks := NewKeyedMutex()
	ctx := context.Background()

	r1, err := locks.Acquire(ctx, "t1")
	require.NoError(t, err)
	defer r1()

	r2, err := locks.Acquire(ctx, "t2")
	require.NoError(t, err)
	defer r2()
}

func TestKeyedMutexSingleWinnerUnderContention(t *testing.T) {
	locks := NewKeyedMutex()
	ctx := context.Background()

	const attempts = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	var releases []func()
	rejected := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locks.Acquire(ctx, "t1")
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				rejected++
				return
			}
			// hold until every attempt has settled
			releases = append(releases, release)
		}()
	}
	wg.Wait()

	assert.Len(t, releases, 1)
	assert.Equal(t, attempts-1, rejected)
	for _, release := range releases {
		release()
	}
}
