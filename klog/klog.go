// Package klog is the structured-logging surface shared by the kernel
// core's packages (sched, task, trap, mm). It wires
// github.com/joeycumines/logiface's generic Logger, backed by
// github.com/joeycumines/stumpy's JSON encoder, rather than
// hand-rolling a logging interface: logiface is already part of the
// retrieved dependency surface, and stumpy's fluent builder
// (Info().Str(...).Log(msg)) is the idiom every component should use
// for per-core, per-thread and per-task diagnostics.
package klog

import (
	"io"
	"os"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the concrete logger type used throughout the kernel core.
type Logger = logiface.Logger[*stumpy.Event]

// Builder is the fluent, per-entry field builder returned by the
// Logger's level methods (Info, Err, Debug, ...).
type Builder = logiface.Builder[*stumpy.Event]

// New constructs a Logger writing JSON lines to w, with field names
// matching the kernel's convention: "core" for the executing core id,
// "thread"/"task" for the scheduled unit, matching stumpy's default
// lvl/msg/err fields otherwise.
func New(w io.Writer) *Logger {
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(w)),
	)
}

// Default returns a Logger writing to os.Stderr, suitable for a
// freshly booted core before any explicit logger has been configured.
func Default() *Logger {
	return New(os.Stderr)
}

// Nop returns a Logger that discards every entry. Components default
// to this so that logging is opt-in and never a required dependency
// for correctness.
func Nop() *Logger {
	return New(io.Discard)
}

// WithCore returns a Builder pre-populated with the executing core's
// id, for the common case of logging from inside a CoreInfo closure.
func WithCore(b *Builder, coreID int) *Builder {
	return b.Int("core", coreID)
}
