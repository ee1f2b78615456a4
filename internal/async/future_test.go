package async

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGo_ReturnsValue(t *testing.T) {
	f := Go(context.Background(), func(context.Context) (int, error) { return 42, nil })
	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	// A completed future can be awaited again.
	v, err = f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestGo_RecoversPanic(t *testing.T) {
	f := Go(context.Background(), func(context.Context) (int, error) { panic("boom") })
	_, err := f.Await(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestAfter_WaitsForDelay(t *testing.T) {
	start := time.Now()
	f := After(context.Background(), 30*time.Millisecond, func(context.Context) (bool, error) { return true, nil })

	select {
	case <-f.Done():
		t.Fatal("future resolved before its delay")
	default:
	}

	ok, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestAfter_CanceledBeforeDelaySkipsWork(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var ran atomic.Bool
	f := After(ctx, time.Hour, func(context.Context) (bool, error) {
		ran.Store(true)
		return true, nil
	})
	cancel()

	_, err := f.Await(context.Background())
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran.Load())
}

func TestAwait_ContextEndsFirst(t *testing.T) {
	f := After(context.Background(), time.Hour, func(context.Context) (int, error) { return 1, nil })
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestResolved(t *testing.T) {
	want := errors.New("nope")
	v, err := Resolved("x", want).Await(context.Background())
	assert.Equal(t, "x", v)
	assert.ErrorIs(t, err, want)
}
