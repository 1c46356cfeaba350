package sched

// TaskPoller polls the stackless task named by id once. task.Runtime
// implements this; Scheduler itself has no notion of a task table, so
// that the task package can depend on sched (for TaskID, Event and
// AddTask) without sched needing to depend back on task.
type TaskPoller interface {
	Poll(TaskID)
}

// RunCore is the per-core event loop: on the per-core "stack" (here,
// the calling goroutine) with interrupts conceptually enabled, it
// drains the scheduler forever, dispatching each Event according to
// its kind. restore_context's one-way jump back into a running thread
// is modeled by Thread.run/resume blocking until that thread next
// parks or exits.
func (s *Scheduler) RunCore(coreID int, tasks TaskPoller) {
	core := AllCores[coreID]
	for {
		ev := s.WaitForTask()
		switch ev.Kind {
		case EventScheduleThread:
			th := ev.Thread
			core.currentThread.Store(th)
			if !th.started {
				th.run(s)
			} else {
				th.resume(s)
			}
			core.currentThread.Store(nil)
			if th.Panic != nil {
				p := th.Panic
				th.Panic = nil
				s.log.Err().Err(p).Uint64("thread", th.ID).Log("kernel thread panicked")
			}
		case EventAsyncTask:
			if tasks != nil {
				tasks.Poll(ev.TaskID)
			}
		case EventFunction:
			if ev.Function != nil {
				ev.Function()
			}
		}
	}
}
