package jobs

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spaghettifunk/tundra/engine/core"
)

var (
	ErrNoWorkers           = errors.New("attempting to create worker pool with less than 1 worker")
	ErrNegativeChannelSize = errors.New("attempting to create worker pool with a negative channel size")
	ErrClosed              = errors.New("job system is shut down")
)

// Job is a unit of work for the pool. Run executes on a worker goroutine;
// OnComplete and OnFailure run later on the thread calling Update.
type Job struct {
	Name       string
	Run        func() (any, error)
	OnComplete func(result any)
	OnFailure  func(err error)
}

type JobSystem struct {
	numWorkers int
	jobQueue   chan Job
	wg         sync.WaitGroup

	// guards jobQueue against sends after Shutdown
	closeMu sync.RWMutex
	closed  bool

	mu          sync.Mutex
	completions []func()
}

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan Job, channelSize),
	}
	js.start()
	core.LogDebug("job system started with %d workers", numWorkers)
	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				js.execute(job)
			}
		}()
	}
}

func (js *JobSystem) execute(job Job) {
	result, err := runJob(job)
	if err != nil {
		core.LogError("job %s failed: %s", job.Name, err)
		if job.OnFailure != nil {
			js.enqueue(func() { job.OnFailure(err) })
		}
		return
	}
	if job.OnComplete != nil {
		js.enqueue(func() { job.OnComplete(result) })
	}
}

func runJob(job Job) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	if job.Run == nil {
		return nil, nil
	}
	return job.Run()
}

func (js *JobSystem) enqueue(fn func()) {
	js.mu.Lock()
	js.completions = append(js.completions, fn)
	js.mu.Unlock()
}

/**
 * @brief Submits the provided job to be queued for execution. Blocks while
 * the queue is full.
 * @param job The description of the job to be executed.
 */
func (js *JobSystem) Submit(job Job) error {
	js.closeMu.RLock()
	defer js.closeMu.RUnlock()
	if js.closed {
		return ErrClosed
	}
	js.jobQueue <- job
	return nil
}

/**
 * @brief Runs the callbacks of finished jobs. Should happen once an update
 * cycle, on the main thread.
 * @return The number of callbacks that ran.
 */
func (js *JobSystem) Update() int {
	js.mu.Lock()
	pending := js.completions
	js.completions = nil
	js.mu.Unlock()

	for _, fn := range pending {
		fn()
	}
	return len(pending)
}

/**
 * @brief Shuts the job system down. Queued jobs finish first; their
 * callbacks stay pending until the next Update.
 */
func (js *JobSystem) Shutdown() error {
	js.closeMu.Lock()
	if js.closed {
		js.closeMu.Unlock()
		return ErrClosed
	}
	js.closed = true
	close(js.jobQueue)
	js.closeMu.Unlock()

	js.wg.Wait()
	return nil
}
