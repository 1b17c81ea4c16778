package async

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/crewsheet/internal/entity"
)

var ErrQueueClosed = errors.New("queue is shutting down")

// Job is one document waiting for extraction.
type Job struct {
	ID          uuid.UUID
	Path        string
	Options     entity.Options
	SubmittedAt time.Time
	TraceID     string
}

// NewJob stamps a job for path.
func NewJob(path string, opts entity.Options) Job {
	return Job{ID: uuid.New(), Path: path, Options: opts, SubmittedAt: time.Now()}
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
