package initializer

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Task is one unit of startup work.
type Task interface {
	Init(ctx context.Context) error
}

// Namer is implemented by tasks that report a name in logs and metrics.
type Namer interface {
	Name() string
}

// TaskFunc adapts a function to the Task interface.
type TaskFunc func(ctx context.Context) error

func (f TaskFunc) Init(ctx context.Context) error { return f(ctx) }

type namedTask struct {
	name string
	Task
}

func (n namedTask) Name() string { return n.name }

// Named attaches a name to a task function.
func Named(name string, fn func(ctx context.Context) error) Task {
	return namedTask{name: name, Task: TaskFunc(fn)}
}

// NameOf returns the task's name, or its type when it has none.
func NameOf(task Task) string {
	if n, ok := task.(Namer); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", task)
}

// RetryPolicy bounds the retries of a task wrapped with WithRetry.
type RetryPolicy struct {
	Attempts        uint64        // Attempts is the total number of tries, including the first.
	InitialInterval time.Duration // InitialInterval is the delay before the first retry.
}

type retryTask struct {
	task   Task
	policy RetryPolicy
	log    *slog.Logger
}

// WithRetry retries a failing task with exponential backoff until it succeeds,
// the attempts are used up, or the context is done. The last error is returned.
func WithRetry(task Task, policy RetryPolicy, log *slog.Logger) Task {
	if policy.Attempts == 0 {
		policy.Attempts = 1
	}
	return &retryTask{task: task, policy: policy, log: log}
}

func (r *retryTask) Name() string { return NameOf(r.task) }

func (r *retryTask) Init(ctx context.Context) error {
	exp := backoff.NewExponentialBackOff()
	if r.policy.InitialInterval > 0 {
		exp.InitialInterval = r.policy.InitialInterval
	}
	b := backoff.WithContext(backoff.WithMaxRetries(exp, r.policy.Attempts-1), ctx)

	attempt := 0
	return backoff.RetryNotify(
		func() error {
			attempt++
			return r.task.Init(ctx)
		},
		b,
		func(err error, wait time.Duration) {
			r.log.WarnContext(ctx, "Initializer failed, retrying",
				"task", r.Name(), "attempt", attempt, "wait", wait, "error", err)
		},
	)
}

// Readiness records whether startup initialization has finished.
type Readiness struct {
	ready atomic.Bool
}

// MarkReady flags initialization as finished.
func (r *Readiness) MarkReady() { r.ready.Store(true) }

// Ready reports whether MarkReady was called.
func (r *Readiness) Ready() bool { return r.ready.Load() }
