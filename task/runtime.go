package task

import (
	"sync/atomic"

	"github.com/joeycumines/go-kernelcore/kerrors"
	"github.com/joeycumines/go-kernelcore/ksync"
	"github.com/joeycumines/go-kernelcore/sched"
)

// Task is a spawned future plus the priority it was spawned at,
// ported from the original Task struct (a pinned boxed future there;
// a plain interface value here since Go values are already
// heap-allocated and relocatable by the garbage collector, so there is
// nothing for pinning to protect against).
type Task struct {
	future   Future
	priority sched.Priority
}

// taskState is the Ready/Running sum type keyed by TaskID in Runtime's
// table. Exactly one of ready != nil or running is true at any time;
// while running, woken counts wake calls that arrive mid-poll so none
// of them are lost.
type taskState struct {
	ready   *Task
	running bool
	woken   int
}

// Runtime is the task table: TaskList renamed for this package's
// surface. Concurrent Spawn/Poll calls (from any of the four cores)
// are serialized by the single SpinLock guarding the whole map, matching
// the original's SpinLock<BTreeMap<TaskId, TaskState>>.
type Runtime struct {
	count     atomic.Uint64
	tasks     *ksync.SpinLock[map[sched.TaskID]*taskState]
	scheduler *sched.Scheduler
}

// NewRuntime constructs a Runtime that enqueues AsyncTask events onto s.
func NewRuntime(s *sched.Scheduler) *Runtime {
	return &Runtime{
		tasks:     ksync.NewSpinLock(map[sched.TaskID]*taskState{}),
		scheduler: s,
	}
}

func (r *Runtime) nextID(priority sched.Priority) sched.TaskID {
	id := r.count.Add(1) - 1
	return sched.NewTaskID(id, priority)
}

// Spawn inserts fut as a Ready task at the given priority and enqueues
// an AsyncTask event so some core polls it at least once.
func (r *Runtime) Spawn(priority sched.Priority, fut Future) sched.TaskID {
	id := r.nextID(priority)
	g := r.tasks.Lock()
	(*g.Value())[id] = &taskState{ready: &Task{future: fut, priority: priority}}
	g.Unlock()
	r.scheduler.AddTask(sched.AsyncTaskEvent(id))
	return id
}

// SpawnAsync spawns fut at Normal priority.
func (r *Runtime) SpawnAsync(fut Future) sched.TaskID { return r.Spawn(sched.Normal, fut) }

// SpawnAsyncRT spawns fut at Realtime priority.
func (r *Runtime) SpawnAsyncRT(fut Future) sched.TaskID { return r.Spawn(sched.Realtime, fut) }

// take removes the task for id from the Ready state so it can be
// polled, or records a wake that arrived while it was already Running
// and returns nil — someone else is polling it, or will re-poll it
// when that poll returns having observed woken > 0.
func (r *Runtime) take(id sched.TaskID) *Task {
	g := r.tasks.Lock()
	defer g.Unlock()
	st, ok := (*g.Value())[id]
	if !ok {
		return nil
	}
	if st.ready != nil {
		t := st.ready
		st.ready = nil
		st.running = true
		st.woken = 0
		return t
	}
	st.woken++
	return nil
}

// ret puts t back as Ready and reports whether a wake arrived while it
// was out being polled.
func (r *Runtime) ret(id sched.TaskID, t *Task) (wokenWhileRunning bool) {
	g := r.tasks.Lock()
	defer g.Unlock()
	st, ok := (*g.Value())[id]
	if !ok {
		panic("task: return of a removed task")
	}
	if st.ready != nil {
		panic("task: return of a task that is already ready")
	}
	wokenWhileRunning = st.woken > 0
	st.ready = t
	st.running = false
	st.woken = 0
	return wokenWhileRunning
}

func (r *Runtime) remove(id sched.TaskID) {
	g := r.tasks.Lock()
	delete(*g.Value(), id)
	g.Unlock()
}

// Poll implements sched.TaskPoller: it polls the task named by id
// exactly once, per §4.7's four-step algorithm — take, build a Waker,
// poll, then either remove (Ready) or put back and possibly
// re-enqueue (Pending with a wake recorded during the poll). A future
// that panics instead of returning is treated as done (removed) and
// reported through the scheduler's logger rather than taking its core
// down, the async-task counterpart of a kernel thread's own recovered
// panic.
func (r *Runtime) Poll(id sched.TaskID) {
	t := r.take(id)
	if t == nil {
		return
	}
	w := newWaker(r, id)
	done, panicErr := pollFuture(t.future, w)
	if panicErr != nil {
		r.remove(id)
		r.scheduler.Logger().Err().Err(panicErr).Uint64("task", id.Index()).Log("async task panicked")
		return
	}
	if done {
		r.remove(id)
		return
	}
	if r.ret(id, t) {
		r.scheduler.AddTask(sched.AsyncTaskEvent(id))
	}
}

func pollFuture(f Future, w *Waker) (done bool, panicErr *kerrors.PanicError) {
	defer func() {
		if r := recover(); r != nil {
			panicErr = &kerrors.PanicError{Value: r}
		}
	}()
	return f.Poll(w), nil
}

// Len reports the number of tasks currently tracked (Ready or
// Running), for diagnostics and tests.
func (r *Runtime) Len() int {
	g := r.tasks.Lock()
	defer g.Unlock()
	return len(*g.Value())
}
