// Package pipeline runs pixel transforms on background workers. Each subject
// (a layer) has at most one current job: submitting a new transform for a
// subject supersedes the running one, which is cancelled and whose result is
// marked stale by a generation counter. The controlling thread consumes
// results from a single channel and decides what stale results mean.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	img "refstudio/internal/image"
)

var (
	// ErrJobCancelled marks a result whose job was interrupted before it
	// produced a usable buffer.
	ErrJobCancelled = errors.New("job cancelled")

	// ErrWorkerTimeout is returned by Cancel when a worker does not stop
	// within the cancel wait. The worker keeps running detached; its result
	// will arrive stale.
	ErrWorkerTimeout = errors.New("worker did not stop in time")

	// ErrClosed is returned by Submit after Close.
	ErrClosed = errors.New("pipeline is closed")
)

const (
	// DefaultCancelWait bounds how long Cancel blocks for a worker to
	// acknowledge its context.
	DefaultCancelWait = 1000 * time.Millisecond

	// DefaultResultBuffer is the result channel capacity.
	DefaultResultBuffer = 16
)

// Params carries named transform parameters.
type Params map[string]any

// Float returns the named parameter as a float64, or def when absent or of
// another type. Integer values are widened.
func (p Params) Float(key string, def float64) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	}
	return def
}

// Int returns the named parameter as an int, or def.
func (p Params) Int(key string, def int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return def
}

// String returns the named parameter as a string, or def.
func (p Params) String(key, def string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return def
}

// TransformFunc computes a new buffer from a source buffer. Implementations
// must not mutate src, and long-running ones should poll ctx between
// expensive phases.
type TransformFunc func(ctx context.Context, src *img.Buffer, params Params) (*img.Buffer, error)

// Result is the outcome of one submitted job. Exactly one Result is
// published per job unless the pipeline closes first. Consumers must check
// the generation against IsCurrent before applying the buffer; a stale
// result means a newer job superseded this one.
type Result struct {
	Subject    string
	Generation uint64
	Buffer     *img.Buffer
	Err        error
}

type job struct {
	generation uint64
	cancel     context.CancelFunc
	done       chan struct{}
}

// Pipeline owns the worker goroutines and the shared result channel. Safe
// for concurrent use; the result channel expects a single consumer.
type Pipeline struct {
	mu     sync.Mutex
	gens   map[string]uint64
	jobs   map[string]*job
	closed bool

	results    chan Result
	stop       chan struct{}
	cancelWait time.Duration
	log        *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithCancelWait overrides how long Cancel waits for a worker.
func WithCancelWait(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.cancelWait = d
		}
	}
}

// WithResultBuffer overrides the result channel capacity.
func WithResultBuffer(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.results = make(chan Result, n)
		}
	}
}

// New creates a pipeline. A nil logger discards log output.
func New(log *slog.Logger, opts ...Option) *Pipeline {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	p := &Pipeline{
		gens:       make(map[string]uint64),
		jobs:       make(map[string]*job),
		results:    make(chan Result, DefaultResultBuffer),
		stop:       make(chan struct{}),
		cancelWait: DefaultCancelWait,
		log:        log,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Results returns the channel jobs publish to. A single consumer should
// drain it and apply only results that are still current.
func (p *Pipeline) Results() <-chan Result { return p.results }

// Submit starts a transform for the subject on a fresh worker, superseding
// any job already running for it. The prior job is cancelled without being
// waited on. Returns the new job's generation.
func (p *Pipeline) Submit(subject string, src *img.Buffer, fn TransformFunc, params Params) (uint64, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return 0, ErrClosed
	}
	p.gens[subject]++
	gen := p.gens[subject]

	if prev, ok := p.jobs[subject]; ok {
		prev.cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	j := &job{generation: gen, cancel: cancel, done: make(chan struct{})}
	p.jobs[subject] = j
	p.mu.Unlock()

	p.log.Debug("job submitted", "subject", subject, "generation", gen)
	go p.run(ctx, j, subject, src, fn, params)
	return gen, nil
}

// IsCurrent reports whether the generation is still the latest submitted
// for the subject.
func (p *Pipeline) IsCurrent(subject string, generation uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gens[subject] == generation
}

// Cancel interrupts the subject's running job, if any, and waits up to the
// cancel wait for the worker to stop. A worker stuck past the wait is left
// to finish detached and ErrWorkerTimeout is returned.
func (p *Pipeline) Cancel(subject string) error {
	p.mu.Lock()
	j, ok := p.jobs[subject]
	if ok {
		// Bump the generation so the in-flight result reads as stale even
		// if the worker finishes before noticing the cancellation.
		p.gens[subject]++
		j.cancel()
	}
	p.mu.Unlock()
	if !ok {
		return nil
	}

	select {
	case <-j.done:
		return nil
	case <-time.After(p.cancelWait):
		p.log.Warn("worker did not acknowledge cancellation",
			"subject", subject, "generation", j.generation, "wait", p.cancelWait)
		return ErrWorkerTimeout
	}
}

// Close cancels every running job, releases any worker parked on the result
// channel, and waits up to the cancel wait for the workers to stop. Submit
// fails afterwards. The result channel is left open; anything a straggler
// publishes after Close simply goes unread.
func (p *Pipeline) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.stop)
	running := make([]*job, 0, len(p.jobs))
	for _, j := range p.jobs {
		j.cancel()
		running = append(running, j)
	}
	p.mu.Unlock()

	deadline := time.After(p.cancelWait)
	for _, j := range running {
		select {
		case <-j.done:
		case <-deadline:
		}
	}
}

func (p *Pipeline) run(ctx context.Context, j *job, subject string, src *img.Buffer, fn TransformFunc, params Params) {
	defer close(j.done)
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("transform panicked", "subject", subject, "panic", r)
			p.publish(Result{Subject: subject, Generation: j.generation,
				Err: fmt.Errorf("transform panicked: %v", r)})
		}
		p.finish(subject, j)
	}()

	if ctx.Err() != nil {
		p.publish(Result{Subject: subject, Generation: j.generation, Err: ErrJobCancelled})
		return
	}

	out, err := fn(ctx, src, params)

	// A cancellation during the transform wins over whatever fn returned.
	if ctx.Err() != nil {
		p.publish(Result{Subject: subject, Generation: j.generation, Err: ErrJobCancelled})
		return
	}
	p.publish(Result{Subject: subject, Generation: j.generation, Buffer: out, Err: err})
}

// finish detaches the job from the subject slot if it still owns it.
func (p *Pipeline) finish(subject string, j *job) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.jobs[subject] == j {
		delete(p.jobs, subject)
	}
}

// publish delivers a result, parking the worker until the consumer drains
// the channel or the pipeline shuts down. Only worker goroutines call this;
// the controlling thread never blocks here.
func (p *Pipeline) publish(r Result) {
	select {
	case p.results <- r:
	case <-p.stop:
	}
}
