package assets

import (
	"errors"
	"sync"

	"github.com/spaghettifunk/kiln/engine/core"
)

var (
	ErrNoWorkers         = errors.New("job system needs at least one worker")
	ErrNegativeQueueSize = errors.New("job queue size must not be negative")
)

// Job is a unit of background work. Work runs on a worker goroutine; Done,
// when set, receives Work's error on the goroutine that calls Dispatch.
type Job struct {
	Name string
	Work func() error
	Done func(err error)
}

// JobSystem is a fixed pool of workers fed by a bounded queue. Completions are
// held until Dispatch so callers never see them from another goroutine.
type JobSystem struct {
	jobs chan Job
	wg   sync.WaitGroup

	// lock guards closed against sends on the closed queue
	lock   sync.RWMutex
	closed bool

	mutex     sync.Mutex
	completed []func()
}

func NewJobSystem(numWorkers, queueSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if queueSize < 0 {
		return nil, ErrNegativeQueueSize
	}
	js := &JobSystem{jobs: make(chan Job, queueSize)}
	for i := 0; i < numWorkers; i++ {
		js.wg.Add(1)
		go js.worker()
	}
	return js, nil
}

func (js *JobSystem) worker() {
	defer js.wg.Done()
	for job := range js.jobs {
		err := job.Work()
		if err != nil {
			core.LogError("job %s failed: %s", job.Name, err)
		}
		if job.Done == nil {
			continue
		}
		done := job.Done
		js.mutex.Lock()
		js.completed = append(js.completed, func() { done(err) })
		js.mutex.Unlock()
	}
}

// Submit queues job, blocking while the queue is full.
func (js *JobSystem) Submit(job Job) error {
	if job.Work == nil {
		return errors.New("job has no work")
	}
	js.lock.RLock()
	defer js.lock.RUnlock()
	if js.closed {
		return ErrClosed
	}
	js.jobs <- job
	return nil
}

// Dispatch runs the completions of every job finished so far and returns how
// many ran.
func (js *JobSystem) Dispatch() int {
	js.mutex.Lock()
	ready := js.completed
	js.completed = nil
	js.mutex.Unlock()
	for _, fn := range ready {
		fn()
	}
	return len(ready)
}

// Shutdown lets queued jobs finish and stops the workers. Completions not yet
// dispatched are dropped.
func (js *JobSystem) Shutdown() {
	js.lock.Lock()
	if js.closed {
		js.lock.Unlock()
		return
	}
	js.closed = true
	close(js.jobs)
	js.lock.Unlock()
	js.wg.Wait()

	js.mutex.Lock()
	if n := len(js.completed); n > 0 {
		core.LogDebug("dropping %d undispatched job completions", n)
	}
	js.completed = nil
	js.mutex.Unlock()
}
