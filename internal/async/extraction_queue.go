package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/crewsheet/internal/common"
	"github.com/joseph-ayodele/crewsheet/internal/entity"
	"github.com/joseph-ayodele/crewsheet/internal/pipeline"
)

// FileProcessor runs one document through extraction.
type FileProcessor interface {
	ProcessFile(ctx context.Context, path string, opts entity.Options) (pipeline.Outcome, error)
}

// ResultHandler is called from the worker goroutine after each job.
type ResultHandler func(job Job, out pipeline.Outcome, err error)

// ExtractionQueue is a fixed worker pool draining a buffered job channel.
type ExtractionQueue struct {
	proc    FileProcessor
	logger  *slog.Logger
	workers int
	timeout time.Duration
	onDone  ResultHandler

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.RWMutex
	closed bool
}

var _ Queue = (*ExtractionQueue)(nil)

type Option func(*ExtractionQueue)

func WithWorkers(n int) Option {
	return func(q *ExtractionQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *ExtractionQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *ExtractionQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func WithResultHandler(h ResultHandler) Option {
	return func(q *ExtractionQueue) {
		q.onDone = h
	}
}

// NewExtractionQueue starts the workers immediately.
func NewExtractionQueue(proc FileProcessor, logger *slog.Logger, opts ...Option) *ExtractionQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ExtractionQueue{
		proc:    proc,
		logger:  logger,
		workers: 4,
		timeout: 3 * time.Minute,
		ch:      make(chan Job, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

// FromConfig maps QueueConfig onto options.
func FromConfig(cfg common.QueueConfig) []Option {
	return []Option{WithWorkers(cfg.Workers), WithQueueSize(cfg.Size), WithProcessTimeout(cfg.Timeout)}
}

func (q *ExtractionQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go q.work(i + 1)
		}
	})
}

func (q *ExtractionQueue) work(workerID int) {
	defer q.wg.Done()
	q.logger.Debug("queue.worker.started", "worker_id", workerID)

	for job := range q.ch {
		ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
		if job.TraceID != "" {
			ctx = common.WithRequestID(ctx, job.TraceID)
		}
		out, err := q.proc.ProcessFile(ctx, job.Path, job.Options)
		cancel()

		if err != nil {
			q.logger.Error("queue.job.failed", "worker_id", workerID, "job_id", job.ID, "path", job.Path, "err", err)
		} else {
			q.logger.Info("queue.job.done",
				"worker_id", workerID,
				"job_id", job.ID,
				"path", job.Path,
				"run_id", out.RunID,
				"wait_ms", time.Since(job.SubmittedAt).Milliseconds(),
			)
		}
		if q.onDone != nil {
			q.onDone(job, out, err)
		}
	}

	q.logger.Debug("queue.worker.stopped", "worker_id", workerID)
}

// Enqueue blocks while the buffer is full until ctx is done.
func (q *ExtractionQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.logger.Warn("queue.enqueue.closed", "path", job.Path)
		return ErrQueueClosed
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}

	select {
	case q.ch <- job:
		q.logger.Debug("queue.enqueued", "job_id", job.ID, "path", job.Path)
		return nil
	default:
	}

	q.logger.Warn("queue.full", "path", job.Path, "capacity", cap(q.ch))
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Len is the number of buffered jobs.
func (q *ExtractionQueue) Len() int {
	return len(q.ch)
}

// Shutdown stops intake and waits for buffered jobs to finish or ctx to end.
func (q *ExtractionQueue) Shutdown(ctx context.Context) {
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
		q.logger.Warn("queue.shutdown.interrupted")
	case <-done:
		q.logger.Info("queue.shutdown.drained")
	}
}
