package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrQueueFull is returned by Submit when the job queue cannot accept
// more work.
var ErrQueueFull = errors.New("job queue is full")

// Job is a unit of background work: a transcription run or an export.
// Execute must honor ctx cancellation since both job types shell out to
// long-running external tools.
type Job interface {
	ID() string
	Execute(ctx context.Context) error
}

// Dispatcher fans jobs out to a fixed pool of workers. Each worker
// registers its private channel with the pool and picks up one job at a
// time; failed jobs are responsible for recording their own failure
// state, the dispatcher only logs.
type Dispatcher struct {
	log        *logrus.Logger
	workers    int
	workerPool chan chan Job
	jobQueue   chan Job
	quit       chan struct{}
	wg         sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
}

// NewDispatcher creates a dispatcher with the given worker count and
// queue capacity.
func NewDispatcher(log *logrus.Logger, workers, queueSize int) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		log:        log,
		workers:    workers,
		workerPool: make(chan chan Job, workers),
		jobQueue:   make(chan Job, queueSize),
		quit:       make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Run starts the workers and the dispatch loop.
func (d *Dispatcher) Run() {
	d.log.Infof("Starting dispatcher with %d workers", d.workers)
	for i := 1; i <= d.workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
	go d.dispatch()
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()
	jobChannel := make(chan Job)
	for {
		d.workerPool <- jobChannel

		select {
		case job := <-jobChannel:
			d.log.WithFields(logrus.Fields{"worker": id, "job_id": job.ID()}).Info("Job started")
			if err := job.Execute(d.ctx); err != nil {
				d.log.WithFields(logrus.Fields{"worker": id, "job_id": job.ID()}).Errorf("Job failed: %v", err)
			} else {
				d.log.WithFields(logrus.Fields{"worker": id, "job_id": job.ID()}).Info("Job finished")
			}
		case <-d.quit:
			return
		}
	}
}

func (d *Dispatcher) dispatch() {
	for {
		select {
		case job := <-d.jobQueue:
			select {
			case jobChannel := <-d.workerPool:
				jobChannel <- job
			case <-d.quit:
				return
			}
		case <-d.quit:
			return
		}
	}
}

// Submit enqueues a job without blocking. A full queue is surfaced to
// the caller so the HTTP layer can reject the request instead of
// silently dropping work.
func (d *Dispatcher) Submit(job Job) error {
	select {
	case d.jobQueue <- job:
		d.log.WithField("job_id", job.ID()).Debug("Job queued")
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop cancels running jobs and waits for all workers to exit.
func (d *Dispatcher) Stop() {
	d.log.Info("Dispatcher shutting down")
	d.cancel()
	close(d.quit)
	d.wg.Wait()
	d.log.Info("Dispatcher stopped")
}
