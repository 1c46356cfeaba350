package sched

import (
	"github.com/joeycumines/go-kernelcore/klog"
	"github.com/joeycumines/go-kernelcore/ksync"
)

// schedulerOptions holds configuration accumulated by Option values
// before a Scheduler is constructed.
type schedulerOptions struct {
	logger  *klog.Logger
	metrics *Metrics
}

// Option configures a Scheduler built via New.
type Option interface {
	apply(*schedulerOptions)
}

type optionFunc func(*schedulerOptions)

func (f optionFunc) apply(o *schedulerOptions) { f(o) }

// WithLogger attaches a structured logger, used for diagnostics such
// as a kernel thread's recovered panic (logged by RunCore) and an
// async task's recovered panic (logged by task.Runtime through
// Scheduler.Logger).
func WithLogger(log *klog.Logger) Option {
	return optionFunc(func(o *schedulerOptions) { o.logger = log })
}

// WithSchedulerMetrics attaches a Metrics to record queue-wait latency
// into.
func WithSchedulerMetrics(m *Metrics) Option {
	return optionFunc(func(o *schedulerOptions) { o.metrics = m })
}

// New constructs a Scheduler from options, defaulting to a no-op
// logger and no metrics collection.
func New(ctrl ksync.InterruptController, opts ...Option) *Scheduler {
	cfg := &schedulerOptions{logger: klog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(cfg)
		}
	}
	s := NewScheduler(ctrl, cfg.logger)
	if cfg.metrics != nil {
		s.WithMetrics(cfg.metrics)
	}
	return s
}
