package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrQueueClosed is returned by Enqueue after Shutdown.
var ErrQueueClosed = errors.New("queue is shutting down")

// Job asks the queue to process one document.
type Job struct {
	Path        string
	SubmittedAt time.Time
}

// Queue runs documents on a fixed pool of workers. A path that is already
// queued or running is not queued again.
type Queue struct {
	proc     *Processor
	opts     Options
	logger   *slog.Logger
	workers  int
	timeout  time.Duration
	onResult func(Result)

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool

	pendingMu sync.Mutex
	pending   map[string]struct{}
}

type QueueOption func(*Queue)

func WithWorkers(n int) QueueOption {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) QueueOption {
	return func(q *Queue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) QueueOption {
	return func(q *Queue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// WithResultHandler is called from the worker goroutine after every job.
func WithResultHandler(fn func(Result)) QueueOption {
	return func(q *Queue) { q.onResult = fn }
}

func NewQueue(proc *Processor, opts Options, logger *slog.Logger, qopts ...QueueOption) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &Queue{
		proc:    proc,
		opts:    opts,
		logger:  logger,
		workers: 2,
		timeout: 5 * time.Minute,
		ch:      make(chan Job, 64),
		pending: map[string]struct{}{},
	}
	for _, o := range qopts {
		o(q)
	}
	q.start()
	return q
}

func (q *Queue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("pipeline.worker.started", "worker_id", workerID)
				for job := range q.ch {
					q.run(workerID, job)
				}
				q.logger.Debug("pipeline.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *Queue) run(workerID int, job Job) {
	defer q.release(job.Path)
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	res, err := q.proc.ProcessFile(ctx, job.Path, q.opts)
	if err != nil {
		q.logger.Debug("pipeline.job.failed", "worker_id", workerID, "path", job.Path, "error", err)
	} else {
		q.logger.Debug("pipeline.job.ok", "worker_id", workerID, "path", job.Path,
			"queued_ms", time.Since(job.SubmittedAt).Milliseconds())
	}
	if q.onResult != nil {
		q.onResult(res)
	}
}

func (q *Queue) release(path string) {
	q.pendingMu.Lock()
	delete(q.pending, path)
	q.pendingMu.Unlock()
}

// Enqueue adds path unless it is already pending. It blocks while the queue
// is full, until ctx is done.
func (q *Queue) Enqueue(ctx context.Context, path string) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false, ErrQueueClosed
	}

	q.pendingMu.Lock()
	if _, ok := q.pending[path]; ok {
		q.pendingMu.Unlock()
		q.logger.Debug("pipeline.job.coalesced", "path", path)
		return false, nil
	}
	q.pending[path] = struct{}{}
	q.pendingMu.Unlock()

	job := Job{Path: path, SubmittedAt: time.Now()}
	select {
	case q.ch <- job:
		return true, nil
	default:
	}
	q.logger.Warn("pipeline.queue.full", "path", path)
	select {
	case q.ch <- job:
		return true, nil
	case <-ctx.Done():
		q.release(path)
		return false, ctx.Err()
	}
}

// Shutdown stops accepting jobs and waits for queued ones to finish or for
// ctx to end.
func (q *Queue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("pipeline.queue.shutdown_interrupted")
	case <-done:
		q.logger.Debug("pipeline.queue.drained")
	}
}
