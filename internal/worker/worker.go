package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/agro-ad/backend/pkg/queue"
)

// JobQueue is the queue the worker consumes.
type JobQueue interface {
	Dequeue(ctx context.Context) (*queue.Job, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// ObjectDeleter removes stored media objects.
type ObjectDeleter interface {
	DeleteMedia(ctx context.Context, key string) error
}

// MediaCleaner processes media delete jobs: removes objects left behind by deleted ads and campaigns.
type MediaCleaner struct {
	objects ObjectDeleter
	queue   JobQueue
	backoff time.Duration
	logger  *zap.Logger
}

// NewMediaCleaner creates a media cleanup processor.
func NewMediaCleaner(objects ObjectDeleter, q JobQueue, logger *zap.Logger) *MediaCleaner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MediaCleaner{objects: objects, queue: q, backoff: queue.RetryBackoff, logger: logger}
}

// Process executes one media delete job. Every key is attempted; the job fails if any key failed.
func (p *MediaCleaner) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeMediaDelete {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.MediaDeletePayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	var failed []error
	for _, key := range payload.Keys {
		if err := p.objects.DeleteMedia(ctx, key); err != nil {
			failed = append(failed, fmt.Errorf("%s: %w", key, err))
			continue
		}
		p.logger.Info("media object deleted", zap.String("key", key), zap.String("job_id", job.ID))
	}
	return errors.Join(failed...)
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *MediaCleaner) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("media worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			p.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			p.sleep(ctx)
		}
	}
}

func (p *MediaCleaner) sleep(ctx context.Context) {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
