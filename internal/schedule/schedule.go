// Package schedule runs delayed and periodic tasks with cancellable handles.
package schedule

import (
	"container/heap"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Scheduler owns every task armed through it so they can be cancelled
// individually or all at once. Tasks sit in one deadline queue behind a
// single clock timer and run one at a time.
type Scheduler struct {
	clock clock.Clock

	// run serialises callbacks.
	run sync.Mutex

	mu      sync.Mutex
	queue   taskQueue
	live    map[*Handle]struct{}
	seq     uint64
	timer   *clock.Timer
	armedAt time.Time
	stopped bool
}

// Handle refers to one scheduled task.
type Handle struct {
	s     *Scheduler
	f     func()
	at    time.Time
	every time.Duration
	seq   uint64
	index int
	done  bool
}

// New creates a scheduler on the given clock. A nil clock uses wall time.
func New(c clock.Clock) *Scheduler {
	if c == nil {
		c = clock.New()
	}
	return &Scheduler{
		clock: c,
		live:  make(map[*Handle]struct{}),
	}
}

// Clock returns the scheduler's time source.
func (s *Scheduler) Clock() clock.Clock {
	return s.clock
}

// Now returns the scheduler's current time.
func (s *Scheduler) Now() time.Time {
	return s.clock.Now()
}

// After runs f once, d from now.
func (s *Scheduler) After(d time.Duration, f func()) *Handle {
	return s.add(d, 0, f)
}

// Every runs f every d until the handle is cancelled. The first run happens
// after one full interval. Missed intervals are caught up in order.
func (s *Scheduler) Every(d time.Duration, f func()) *Handle {
	if d <= 0 {
		return &Handle{s: s, done: true, index: -1}
	}
	return s.add(d, d, f)
}

func (s *Scheduler) add(d, every time.Duration, f func()) *Handle {
	h := &Handle{s: s, f: f, every: every, index: -1}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		h.done = true
		return h
	}
	if d < 0 {
		d = 0
	}
	h.at = s.clock.Now().Add(d)
	s.push(h)
	s.live[h] = struct{}{}
	s.rearm()
	return h
}

// RunDue runs every task whose deadline has passed, earliest first, then arms
// the clock for the next one. The clock timer calls it; a manually advanced
// clock calls it after moving time.
func (s *Scheduler) RunDue() {
	s.run.Lock()
	defer s.run.Unlock()

	for {
		h := s.popDue()
		if h == nil {
			break
		}
		h.f()
		s.finish(h)
	}

	s.mu.Lock()
	s.rearm()
	s.mu.Unlock()
}

// Pending reports how many tasks are still armed.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// Stop cancels every task and refuses new ones.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for h := range s.live {
		h.done = true
		h.index = -1
	}
	s.live = make(map[*Handle]struct{})
	s.queue = nil
	s.rearm()
}

func (s *Scheduler) popDue() *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || len(s.queue) == 0 || s.queue[0].at.After(s.clock.Now()) {
		return nil
	}
	h := heap.Pop(&s.queue).(*Handle)
	if h.every == 0 {
		h.done = true
		delete(s.live, h)
	}
	return h
}

func (s *Scheduler) finish(h *Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h.every == 0 || h.done || s.stopped {
		return
	}
	h.at = h.at.Add(h.every)
	s.push(h)
}

func (s *Scheduler) push(h *Handle) {
	s.seq++
	h.seq = s.seq
	heap.Push(&s.queue, h)
}

// rearm points the clock timer at the earliest deadline. Callers hold mu.
func (s *Scheduler) rearm() {
	if s.stopped || len(s.queue) == 0 {
		if s.timer != nil {
			s.timer.Stop()
			s.timer = nil
		}
		return
	}
	next := s.queue[0].at
	if s.timer != nil {
		if s.armedAt.Equal(next) {
			return
		}
		s.timer.Stop()
	}
	s.armedAt = next
	s.timer = s.clock.AfterFunc(next.Sub(s.clock.Now()), s.RunDue)
}

// Cancel stops the task. It returns false when the task already ran or was
// already cancelled.
func (h *Handle) Cancel() bool {
	if h == nil || h.s == nil {
		return false
	}
	s := h.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if h.done {
		return false
	}
	h.done = true
	delete(s.live, h)
	if h.index >= 0 {
		heap.Remove(&s.queue, h.index)
	}
	return true
}

// Active reports whether the task can still run.
func (h *Handle) Active() bool {
	if h == nil || h.s == nil {
		return false
	}
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	return !h.done
}

// taskQueue orders handles by deadline, then by arming order.
type taskQueue []*Handle

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if q[i].at.Equal(q[j].at) {
		return q[i].seq < q[j].seq
	}
	return q[i].at.Before(q[j].at)
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x any) {
	h := x.(*Handle)
	h.index = len(*q)
	*q = append(*q, h)
}

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	h := old[n-1]
	old[n-1] = nil
	h.index = -1
	*q = old[:n-1]
	return h
}
