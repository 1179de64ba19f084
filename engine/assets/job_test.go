package assets

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJobSystem(t *testing.T) {
	_, err := NewJobSystem(0)
	assert.ErrorIs(t, err, ErrNoWorkers)

	js, err := NewJobSystem(2)
	require.NoError(t, err)
	assert.NoError(t, js.Shutdown())
	assert.NoError(t, js.Shutdown())
}

func TestJobSystemRunsCallbacks(t *testing.T) {
	js, err := NewJobSystem(2)
	require.NoError(t, err)

	var completed, failed atomic.Int32
	boom := errors.New("boom")
	var failErr error
	var mu sync.Mutex

	for i := 0; i < 20; i++ {
		fail := i%4 == 0
		require.NoError(t, js.Submit(JobTask{
			Name: "job",
			OnStart: func(ctx context.Context) error {
				if fail {
					return boom
				}
				return nil
			},
			OnComplete: func() { completed.Add(1) },
			OnFailure: func(err error) {
				failed.Add(1)
				mu.Lock()
				failErr = err
				mu.Unlock()
			},
		}))
	}
	require.NoError(t, js.Shutdown())

	assert.Equal(t, int32(15), completed.Load())
	assert.Equal(t, int32(5), failed.Load())
	assert.ErrorIs(t, failErr, boom)
}

func TestJobSystemNestedSubmitDoesNotBlock(t *testing.T) {
	js, err := NewJobSystem(1)
	require.NoError(t, err)

	var (
		ran      atomic.Int32
		finished sync.WaitGroup
		spawn    func(depth int) JobTask
	)
	spawn = func(depth int) JobTask {
		finished.Add(1)
		return JobTask{
			Name: "nested",
			OnStart: func(ctx context.Context) error {
				ran.Add(1)
				if depth == 0 {
					return nil
				}
				// more jobs than the queue holds, from inside the only worker
				for i := 0; i < 4; i++ {
					if err := js.Submit(spawn(depth - 1)); err != nil {
						return err
					}
				}
				return nil
			},
			OnComplete: finished.Done,
			OnFailure:  func(error) { finished.Done() },
		}
	}
	require.NoError(t, js.Submit(spawn(2)))
	finished.Wait()
	require.NoError(t, js.Shutdown())

	assert.Equal(t, int32(1+4+16), ran.Load())
}

func TestJobSystemShutdown(t *testing.T) {
	js, err := NewJobSystem(1)
	require.NoError(t, err)

	started := make(chan struct{})
	var sawCancel atomic.Bool
	require.NoError(t, js.Submit(JobTask{
		Name: "long",
		OnStart: func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			sawCancel.Store(true)
			return ctx.Err()
		},
	}))
	<-started
	require.NoError(t, js.Shutdown())

	assert.True(t, sawCancel.Load())
	assert.ErrorIs(t, js.Submit(JobTask{Name: "late", OnStart: func(context.Context) error { return nil }}), ErrJobSystemClosed)
}
