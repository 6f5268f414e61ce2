// Package batch runs a filter pipeline over a queue of images and reports
// per-job status snapshots.
package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"image-processor/internal/logger"
	"image-processor/internal/models"
	"image-processor/internal/processing/chain"
)

var (
	ErrAlreadyRunning = errors.New("batch run already in progress")
	ErrJobFailed      = errors.New("batch job failed")
)

// Processor is the transform a job applies to its image.
type Processor interface {
	ApplyWithProgress(ctx context.Context, buf *models.PixelBuffer, settings models.FilterSettings, progress chain.ProgressFunc) (*models.PixelBuffer, error)
}

// Image is one queued input.
type Image struct {
	FileName string
	Buffer   *models.PixelBuffer
}

// Result is the terminal outcome of a job: a processed buffer or an error.
type Result struct {
	Buffer *models.PixelBuffer
	Err    error
}

// JobError records why one job failed. It matches ErrJobFailed and the cause.
type JobError struct {
	JobID    string
	FileName string
	Err      error
}

func (je *JobError) Error() string {
	return fmt.Sprintf("job %s (%s): %v", je.JobID, je.FileName, je.Err)
}

func (je *JobError) Unwrap() []error {
	return []error{ErrJobFailed, je.Err}
}

type job struct {
	snapshot   models.BatchJob
	image      *models.PixelBuffer
	settings   models.FilterSettings
	dispatched bool
	result     Result
}

// Executor owns a queue of jobs. With one worker (the default) jobs run
// strictly in queue order and at most one job is processing at a time.
// More workers process jobs concurrently; each job's snapshots still
// arrive in monotonic order.
type Executor struct {
	processor Processor
	logger    logger.Logger
	workers   int
	stepDelay time.Duration
	now       func() time.Time

	mu      sync.Mutex
	jobs    []*job
	index   map[string]*job
	running bool
}

type Option func(*Executor)

func WithLogger(log logger.Logger) Option {
	return func(e *Executor) {
		if log != nil {
			e.logger = log
		}
	}
}

// WithWorkers sets the number of jobs processed concurrently. Values below
// one select the sequential mode.
func WithWorkers(n int) Option {
	return func(e *Executor) {
		e.workers = max(n, 1)
	}
}

// WithStepDelay pauses between progress updates, pacing a run the way an
// interactive queue display expects.
func WithStepDelay(d time.Duration) Option {
	return func(e *Executor) {
		e.stepDelay = max(d, 0)
	}
}

func NewExecutor(processor Processor, opts ...Option) *Executor {
	e := &Executor{
		processor: processor,
		logger:    logger.Nop(),
		workers:   1,
		now:       time.Now,
		index:     make(map[string]*job),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enqueue adds one pending job per image, all sharing settings, and returns
// their IDs in order. Images are not validated here: a bad buffer fails its
// own job when it runs.
func (e *Executor) Enqueue(images []Image, settings models.FilterSettings) ([]string, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	stamp := e.now().UnixMilli()
	ids := make([]string, len(images))
	for i, img := range images {
		id := fmt.Sprintf("%d-%d", stamp, len(e.jobs))
		j := &job{
			snapshot: models.BatchJob{
				ID:       id,
				FileName: img.FileName,
				Status:   models.JobPending,
			},
			image:    img.Buffer,
			settings: settings,
		}
		e.jobs = append(e.jobs, j)
		e.index[id] = j
		ids[i] = id
	}

	e.logger.Debug("BatchExecutor", "jobs enqueued", map[string]interface{}{
		"count":   len(images),
		"filters": settings.String(),
	})

	return ids, nil
}

// Run processes pending jobs until the queue drains or ctx is cancelled and
// streams a snapshot on every state or progress change. The channel is
// closed when the run ends.
//
// Cancellation is checked before each job starts: a job already processing
// runs to completion, jobs not yet started stay pending. Snapshots emitted
// after cancellation may be dropped; Jobs always reports the final state.
func (e *Executor) Run(ctx context.Context) (<-chan models.BatchJob, error) {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	e.running = true
	e.mu.Unlock()

	out := make(chan models.BatchJob, 16)
	emit := func(s models.BatchJob) {
		select {
		case out <- s:
		case <-ctx.Done():
		}
	}

	go func() {
		defer close(out)
		defer func() {
			e.mu.Lock()
			e.running = false
			e.mu.Unlock()
		}()

		start := e.now()
		g := new(errgroup.Group)
		g.SetLimit(e.workers)
		for ctx.Err() == nil {
			j := e.claimNext()
			if j == nil {
				break
			}
			g.Go(func() error {
				if ctx.Err() != nil {
					e.release(j)
					return nil
				}
				e.process(ctx, j, emit)
				return nil
			})
		}
		_ = g.Wait()

		summary := e.Summary()
		e.logger.Info("BatchExecutor", "batch run finished", map[string]interface{}{
			"completed": summary[models.JobCompleted],
			"failed":    summary[models.JobError],
			"pending":   summary[models.JobPending],
			"duration":  e.now().Sub(start).String(),
			"cancelled": ctx.Err() != nil,
		})
	}()

	return out, nil
}

// process drives one job through processing to a terminal state.
func (e *Executor) process(ctx context.Context, j *job, emit func(models.BatchJob)) {
	emit(e.update(j, func(s *models.BatchJob) {
		s.Status = models.JobProcessing
		s.Progress = 0
	}))

	progress := func(done, total int) {
		if total <= 0 {
			return
		}
		pct := done * 100 / total
		emit(e.update(j, func(s *models.BatchJob) {
			s.Progress = max(s.Progress, pct)
		}))
		e.pause(ctx)
	}

	buf, err := e.apply(context.WithoutCancel(ctx), j, progress)
	if err != nil {
		jobErr := &JobError{JobID: j.snapshot.ID, FileName: j.snapshot.FileName, Err: err}
		e.mu.Lock()
		j.result = Result{Err: jobErr}
		e.mu.Unlock()

		e.logger.Error("BatchExecutor", jobErr, map[string]interface{}{
			"job_id":    j.snapshot.ID,
			"file_name": j.snapshot.FileName,
		})
		emit(e.update(j, func(s *models.BatchJob) {
			s.Status = models.JobError
			s.Error = err.Error()
		}))
		return
	}

	e.mu.Lock()
	j.result = Result{Buffer: buf}
	e.mu.Unlock()

	e.logger.Info("BatchExecutor", "job completed", map[string]interface{}{
		"job_id":    j.snapshot.ID,
		"file_name": j.snapshot.FileName,
	})
	emit(e.update(j, func(s *models.BatchJob) {
		s.Status = models.JobCompleted
		s.Progress = 100
	}))
}

// apply runs the processor, turning a panic into the job's error.
func (e *Executor) apply(ctx context.Context, j *job, progress chain.ProgressFunc) (buf *models.PixelBuffer, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf = nil
			err = fmt.Errorf("panic while processing: %v", r)
		}
	}()

	return e.processor.ApplyWithProgress(ctx, j.image, j.settings, progress)
}

func (e *Executor) pause(ctx context.Context) {
	if e.stepDelay <= 0 {
		return
	}
	timer := time.NewTimer(e.stepDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func (e *Executor) update(j *job, fn func(*models.BatchJob)) models.BatchJob {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&j.snapshot)
	return j.snapshot
}

// claimNext reserves the first pending job that has not been dispatched.
func (e *Executor) claimNext() *job {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, j := range e.jobs {
		if j.snapshot.Status == models.JobPending && !j.dispatched {
			j.dispatched = true
			return j
		}
	}
	return nil
}

func (e *Executor) release(j *job) {
	e.mu.Lock()
	defer e.mu.Unlock()
	j.dispatched = false
}

// Jobs returns snapshots of every job in queue order.
func (e *Executor) Jobs() []models.BatchJob {
	e.mu.Lock()
	defer e.mu.Unlock()

	return lo.Map(e.jobs, func(j *job, _ int) models.BatchJob {
		return j.snapshot
	})
}

// Job returns the snapshot of one job.
func (e *Executor) Job(id string) (models.BatchJob, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	j, ok := e.index[id]
	if !ok {
		return models.BatchJob{}, false
	}
	return j.snapshot, true
}

// Result returns the outcome of a job once it has reached a terminal state.
func (e *Executor) Result(id string) (Result, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	j, ok := e.index[id]
	if !ok || !j.snapshot.Status.IsTerminal() {
		return Result{}, false
	}
	return j.result, true
}

// Summary counts jobs per status.
func (e *Executor) Summary() map[models.JobStatus]int {
	return lo.CountValuesBy(e.Jobs(), func(j models.BatchJob) models.JobStatus {
		return j.Status
	})
}

// Running reports whether a run is in progress.
func (e *Executor) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}
