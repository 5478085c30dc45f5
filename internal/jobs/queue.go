// Package jobs runs document emails and zip packaging in the background.
package jobs

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/diewo77/go-quotes/internal/actions"
	"github.com/diewo77/go-quotes/internal/mail"
	"github.com/diewo77/go-quotes/internal/models"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrQueueFull is returned when the buffer has no room left.
	ErrQueueFull = errors.New("job queue is full")
	// ErrQueueClosed is returned after Stop.
	ErrQueueClosed = errors.New("job queue is closed")
)

// Documents reloads documents and companies for a job.
type Documents interface {
	Find(ctx context.Context, companyID, id uint) (*models.Document, error)
	Company(ctx context.Context, id uint) (*models.Company, error)
}

type job struct {
	name string
	run  func(ctx context.Context) error
}

// Queue is a bounded in-process job queue drained by a fixed number of workers.
type Queue struct {
	docs       Documents
	renderer   actions.Renderer
	mailer     mail.Mailer
	archiveDir string

	workers int
	jobs    chan job

	mu      sync.Mutex
	closed  bool
	group   *errgroup.Group
	cancel  context.CancelFunc
	started bool
}

// Options configures a Queue.
type Options struct {
	Workers    int
	Size       int
	ArchiveDir string
}

// NewQueue creates a stopped queue. Call Start before enqueueing work.
func NewQueue(docs Documents, renderer actions.Renderer, mailer mail.Mailer, opts Options) *Queue {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Size < 1 {
		opts.Size = 1
	}
	return &Queue{
		docs:       docs,
		renderer:   renderer,
		mailer:     mailer,
		archiveDir: opts.ArchiveDir,
		workers:    opts.Workers,
		jobs:       make(chan job, opts.Size),
	}
}

// Start launches the workers. Cancelling ctx does not stop them; only Stop
// does, after the buffered jobs have run.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.started = true
	ctx, q.cancel = context.WithCancel(context.WithoutCancel(ctx))
	q.group, ctx = errgroup.WithContext(ctx)
	for w := 0; w < q.workers; w++ {
		id := w
		q.group.Go(func() error {
			q.work(ctx, id)
			return nil
		})
	}
	log.Printf("[queue] started %d workers", q.workers)
}

func (q *Queue) work(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-q.jobs:
			if !ok {
				return
			}
			if err := j.run(ctx); err != nil {
				log.Printf("[queue] worker %d: %s failed: %v", id, j.name, err)
				continue
			}
			log.Printf("[queue] worker %d: %s done", id, j.name)
		}
	}
}

// Stop refuses new jobs, lets the workers drain the buffer and waits for
// them. If ctx ends first the workers are cancelled.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.jobs)
	group, cancel := q.group, q.cancel
	q.mu.Unlock()

	if group == nil {
		return nil
	}
	done := make(chan error, 1)
	go func() { done <- group.Wait() }()
	select {
	case err := <-done:
		cancel()
		return err
	case <-ctx.Done():
		cancel()
		<-done
		return ctx.Err()
	}
}

func (q *Queue) enqueue(j job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.jobs <- j:
		return nil
	default:
		return ErrQueueFull
	}
}

// EnqueueEmail schedules sending doc to each invited contact.
func (q *Queue) EnqueueEmail(_ context.Context, doc *models.Document) error {
	companyID, id := doc.CompanyID, doc.ID
	return q.enqueue(job{
		name: "email " + doc.Number,
		run: func(ctx context.Context) error {
			return q.sendDocument(ctx, companyID, id)
		},
	})
}

// EnqueueZipAndEmail schedules packaging docs into one archive mailed to address.
func (q *Queue) EnqueueZipAndEmail(_ context.Context, docs []*models.Document, company *models.Company, address string) error {
	snapshot := make([]*models.Document, len(docs))
	copy(snapshot, docs)
	return q.enqueue(job{
		name: "zip for " + address,
		run: func(ctx context.Context) error {
			return q.zipAndSend(ctx, snapshot, company, address)
		},
	})
}
