package ingest

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/joseph-ayodele/crewsheet/internal/async"
	"github.com/joseph-ayodele/crewsheet/internal/entity"
)

// FileResult is the per-file ingest outcome.
type FileResult struct {
	Path         string
	JobID        string
	Deduplicated bool
	HashHex      string
	Err          string
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Queued       uint32
	Deduplicated uint32
	Failed       uint32
}

// Ingestor hands discovered documents to the extraction queue. Files whose
// content was already queued are skipped.
type Ingestor struct {
	queue  async.Queue
	opts   entity.Options
	logger *slog.Logger

	mu   sync.Mutex
	seen map[string]string // content hash -> first path
}

func NewIngestor(queue async.Queue, opts entity.Options, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{queue: queue, opts: opts, logger: logger, seen: map[string]string{}}
}

// IngestPath queues a single file.
func (i *Ingestor) IngestPath(ctx context.Context, path string) (FileResult, error) {
	out := FileResult{Path: path}
	abs, err := filepath.Abs(path)
	if err != nil {
		return out, err
	}
	out.Path = abs

	sum, err := hashFile(abs)
	if err != nil {
		i.logger.Warn("ingest.hash.failed", "path", abs, "err", err)
		return out, err
	}
	out.HashHex = sum

	i.mu.Lock()
	first, dup := i.seen[sum]
	if !dup {
		i.seen[sum] = abs
	}
	i.mu.Unlock()
	if dup {
		i.logger.Info("ingest.deduplicated", "path", abs, "first", first)
		out.Deduplicated = true
		return out, nil
	}

	job := async.NewJob(abs, i.opts)
	if err := i.queue.Enqueue(ctx, job); err != nil {
		i.forget(sum)
		return out, err
	}
	out.JobID = job.ID.String()
	return out, nil
}

func (i *Ingestor) forget(sum string) {
	i.mu.Lock()
	delete(i.seen, sum)
	i.mu.Unlock()
}

// Run queues every document that shows up under cfg.Roots until ctx ends.
func (i *Ingestor) Run(ctx context.Context, cfg WatchConfig) error {
	events, errs, err := StartWatcher(ctx, cfg, i.logger)
	if err != nil {
		return err
	}
	for {
		select {
		case path, ok := <-events:
			if !ok {
				return ctx.Err()
			}
			if _, err := i.IngestPath(ctx, path); err != nil {
				i.logger.Error("ingest.path.failed", "path", path, "err", err)
			}
		case err, ok := <-errs:
			if ok && err != nil {
				i.logger.Warn("ingest.watch.error", "err", err)
			}
		}
	}
}
