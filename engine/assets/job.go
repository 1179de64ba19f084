package assets

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/spaghettifunk/ronasset/engine/core"
)

// JobTask describes a unit of work run by the JobSystem.
type JobTask struct {
	// Name is used in log lines only.
	Name string
	// OnStart runs on a worker. Required.
	OnStart func(ctx context.Context) error
	// OnComplete runs after OnStart returned nil. Optional.
	OnComplete func()
	// OnFailure runs after OnStart returned an error. Optional.
	OnFailure func(err error)
}

// JobSystem is a fixed-size worker pool. Submitting never blocks the caller,
// so a running job may submit further jobs.
type JobSystem struct {
	numWorkers int
	jobQueue   chan JobTask
	wg         sync.WaitGroup
	pending    sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool
}

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrJobSystemClosed = errors.New("job system is shut down")

func NewJobSystem(numWorkers int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}

	ctx, cancel := context.WithCancel(context.Background())
	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan JobTask, numWorkers),
		ctx:        ctx,
		cancel:     cancel,
	}

	js.start()

	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				js.run(job)
				js.pending.Done()
			}
		}()
	}
}

func (js *JobSystem) run(job JobTask) {
	if err := job.OnStart(js.ctx); err != nil {
		core.LogError("job '%s' failed: %s", job.Name, err.Error())
		if job.OnFailure != nil {
			job.OnFailure(err)
		}
		return
	}
	if job.OnComplete != nil {
		job.OnComplete()
	}
}

// Submit queues the job for execution. It returns ErrJobSystemClosed once
// Shutdown has been called.
func (js *JobSystem) Submit(jt JobTask) error {
	js.mu.RLock()
	defer js.mu.RUnlock()
	if js.closed {
		return ErrJobSystemClosed
	}
	js.pending.Add(1)
	select {
	case js.jobQueue <- jt:
	default:
		// queue is full, hand off so the caller (possibly a worker) never blocks
		go func() { js.jobQueue <- jt }()
	}
	return nil
}

// Shutdown rejects new jobs, cancels the context passed to running jobs and
// waits for every submitted job to finish.
func (js *JobSystem) Shutdown() error {
	js.mu.Lock()
	if js.closed {
		js.mu.Unlock()
		return nil
	}
	js.closed = true
	js.mu.Unlock()

	js.cancel()
	js.pending.Wait()
	close(js.jobQueue)
	js.wg.Wait()
	return nil
}
