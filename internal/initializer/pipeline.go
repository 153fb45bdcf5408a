package initializer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/proximity/internal/metrics"
	"golang.org/x/sync/semaphore"
)

// DefaultConcurrency is the most tasks allowed to run at the same time.
const DefaultConcurrency = 4

// Policy decides what a pipeline does when a task fails.
type Policy int

const (
	// PolicyContinue logs failures and lets every other task run.
	PolicyContinue Policy = iota
	// PolicyAbort cancels the remaining work after the first failure.
	PolicyAbort
)

var (
	// ErrReleased marks failures caused by a resource that was already released, e.g. during shutdown.
	ErrReleased = errors.New("resource already released")
	// ErrTaskPanicked wraps a panic recovered from a task.
	ErrTaskPanicked = errors.New("initializer panicked")
	// ErrUnknownPolicy is returned by ParsePolicy.
	ErrUnknownPolicy = errors.New("unknown failure policy")
)

// ParsePolicy converts a configuration value into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "continue":
		return PolicyContinue, nil
	case "abort":
		return PolicyAbort, nil
	default:
		return PolicyContinue, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

func (p Policy) String() string {
	if p == PolicyAbort {
		return "abort"
	}
	return "continue"
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithConcurrency lowers how many tasks may run at once.
// Values outside [1, DefaultConcurrency] leave the default in place.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 && n <= DefaultConcurrency {
			p.concurrency = n
		}
	}
}

// WithBenign sets the classifier for errors that are logged at debug level and otherwise ignored.
func WithBenign(benign func(error) bool) Option {
	return func(p *Pipeline) {
		if benign != nil {
			p.benign = benign
		}
	}
}

// WithPolicy sets the failure policy.
func WithPolicy(policy Policy) Option {
	return func(p *Pipeline) { p.policy = policy }
}

// Pipeline runs registered startup tasks concurrently behind an admission gate.
type Pipeline struct {
	log         *slog.Logger
	metrics     *metrics.Metrics
	concurrency int
	benign      func(error) bool
	policy      Policy

	mu    sync.Mutex
	tasks []Task
}

// New creates an empty Pipeline.
func New(log *slog.Logger, m *metrics.Metrics, opts ...Option) *Pipeline {
	p := &Pipeline{
		log:         log,
		metrics:     m,
		concurrency: DefaultConcurrency,
		benign:      func(err error) bool { return errors.Is(err, ErrReleased) },
		policy:      PolicyContinue,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Register adds tasks in the order they should be admitted.
func (p *Pipeline) Register(tasks ...Task) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tasks = append(p.tasks, tasks...)
}

// Len returns the number of registered tasks.
func (p *Pipeline) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.tasks)
}

// Run starts every registered task once, never more than the configured number at a time,
// and waits for all admitted tasks to finish.
//
// With PolicyContinue failures are logged and Run returns nil. With PolicyAbort the first
// failure cancels the context shared by the running tasks, tasks not yet admitted are
// skipped, and Run returns every failure joined.
func (p *Pipeline) Run(ctx context.Context) error {
	p.mu.Lock()
	tasks := append([]Task(nil), p.tasks...)
	p.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	gate := semaphore.NewWeighted(int64(p.concurrency))
	start := time.Now()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures []error
	)

	admitted := 0
	for _, task := range tasks {
		if err := gate.Acquire(runCtx, 1); err != nil {
			break
		}
		admitted++

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer gate.Release(1)

			if err := p.runTask(runCtx, task); err != nil {
				mu.Lock()
				failures = append(failures, err)
				mu.Unlock()
				if p.policy == PolicyAbort {
					cancel()
				}
			}
		}()
	}
	wg.Wait()

	for _, task := range tasks[admitted:] {
		p.metrics.InitTasks.WithLabelValues(NameOf(task), "skipped").Inc()
		p.log.WarnContext(ctx, "Initializer skipped", "task", NameOf(task))
	}

	p.log.InfoContext(ctx, "Initializer pipeline finished",
		"tasks", len(tasks), "admitted", admitted, "failed", len(failures),
		"policy", p.policy.String(), "duration", time.Since(start))

	if p.policy == PolicyAbort && len(failures) > 0 {
		return errors.Join(failures...)
	}

	return nil
}

// runTask runs one task and classifies its outcome. It returns only real failures.
func (p *Pipeline) runTask(ctx context.Context, task Task) error {
	name := NameOf(task)
	start := time.Now()

	p.metrics.ActiveInitTasks.Inc()
	defer func() {
		p.metrics.ActiveInitTasks.Dec()
		p.metrics.InitTaskSeconds.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	err := p.safeInit(ctx, task)

	switch {
	case err == nil:
		p.metrics.InitTasks.WithLabelValues(name, "ok").Inc()
		p.log.InfoContext(ctx, "Initializer finished", "task", name, "duration", time.Since(start))
		return nil
	case p.benign(err):
		p.metrics.InitTasks.WithLabelValues(name, "released").Inc()
		p.log.DebugContext(ctx, "Initializer stopped on a released resource", "task", name, "error", err)
		return nil
	default:
		p.metrics.InitTasks.WithLabelValues(name, "failed").Inc()
		p.log.ErrorContext(ctx, "Initializer failed", "task", name, "error", err)
		return fmt.Errorf("initializer %s: %w", name, err)
	}
}

func (p *Pipeline) safeInit(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
	}()

	return task.Init(ctx)
}
