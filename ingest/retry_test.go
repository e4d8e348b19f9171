package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoff_SucceedsAfterFailures(t *testing.T) {
	attempts := 0
	err := retryWithBackoff(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	}, 5, time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithBackoff_ExhaustsAttempts(t *testing.T) {
	boom := errors.New("boom")
	attempts := 0
	err := retryWithBackoff(context.Background(), func() error {
		attempts++
		return boom
	}, 3, time.Millisecond)

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithBackoff_InvalidMaxAttempts(t *testing.T) {
	err := retryWithBackoff(context.Background(), func() error { return nil }, 0, time.Millisecond)
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
}

func TestRetryWithBackoff_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := retryWithBackoff(ctx, func() error {
		attempts++
		return errors.New("never reached")
	}, 3, time.Millisecond)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, attempts)
}

func TestRetryWithBackoff_CanceledDuringSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	done := make(chan error, 1)
	go func() {
		done <- retryWithBackoff(ctx, func() error {
			attempts++
			return errors.New("transient")
		}, 5, time.Hour)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, attempts)
	case <-time.After(5 * time.Second):
		t.Fatal("retry did not honor cancellation")
	}
}
