package db

import (
	"context"
	"fmt"
	"testing"
	"time"

	"ong_equipment_tool/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedLocksSerializeSameKey(t *testing.T) {
	k := newKeyedLocks()
	ctx := context.Background()

	release, err := k.acquire(ctx, "eq-1", time.Second)
	require.NoError(t, err)

	// other keys are independent
	other, err := k.acquire(ctx, "eq-2", 10*time.Millisecond)
	require.NoError(t, err)
	other()

	got := make(chan struct{})
	go func() {
		r2, err := k.acquire(ctx, "eq-1", time.Second)
		if err == nil {
			r2()
		}
		close(got)
	}()

	select {
	case <-got:
		t.Fatal("second holder acquired a held key")
	case <-time.After(50 * time.Millisecond):
	}
	release()
	<-got

	k.mu.Lock()
	assert.Empty(t, k.m)
	k.mu.Unlock()
}

func TestKeyedLocksTimeoutIsRetryable(t *testing.T) {
	k := newKeyedLocks()
	release, err := k.acquire(context.Background(), "eq-1", time.Second)
	require.NoError(t, err)
	defer release()

	_, err = k.acquire(context.Background(), "eq-1", 20*time.Millisecond)
	require.Error(t, err)
	assert.True(t, apperr.IsRetryable(err))
	assert.ErrorIs(t, err, apperr.ErrInternal)
}

func TestKeyedLocksReleaseTwice(t *testing.T) {
	k := newKeyedLocks()
	release, err := k.acquire(context.Background(), "eq-1", time.Second)
	require.NoError(t, err)
	release()
	release()

	again, err := k.acquire(context.Background(), "eq-1", 10*time.Millisecond)
	require.NoError(t, err)
	again()
}

func TestKeyedLocksZeroTimeoutUsesDefault(t *testing.T) {
	k := newKeyedLocks()
	ctx := context.Background()

	for i := 0; i < 200; i++ {
		release, err := k.acquire(ctx, "eq-1", 0)
		require.NoError(t, err)
		release()
	}
}

func TestRepoWithoutLockTimeoutStillLends(t *testing.T) {
	r := newRepo(t)
	r.LockTimeout = 0
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		eq := seedEquipment(t, r, fmt.Sprintf("LAP-9%02d", i))
		_, err := r.CreateLoan(ctx, LoanInput{EquipmentID: eq.ID, BorrowerName: "Ana", DueDate: ptr(t0)}, admin)
		require.NoError(t, err)
	}
}
