package session

import "time"

// Scheduler runs f once after d. The returned func cancels it and reports
// whether f was still pending.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}

type wallScheduler struct{}

func (wallScheduler) AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// WallScheduler schedules on real timers.
var WallScheduler Scheduler = wallScheduler{}

// Task is the cancellation handle of one scheduled transition. Gen identifies
// the schedule; an actor drops fires whose Gen is no longer current, so a fire
// that raced past Stop is still a no-op.
type Task struct {
	Gen  uint64
	stop func() bool
}

func (t *Task) Stop() {
	if t != nil && t.stop != nil {
		t.stop()
	}
}
