package schedule

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newMockScheduler() (*Scheduler, *clock.Mock) {
	mock := clock.NewMock()
	mock.Set(epoch)
	return New(mock), mock
}

// advance moves the mock forward and settles every task that came due.
func advance(s *Scheduler, mock *clock.Mock, d time.Duration) {
	mock.Add(d)
	s.RunDue()
}

func TestAfterFiresOnlyOnceDeadlinePasses(t *testing.T) {
	s, mock := newMockScheduler()

	fired := 0
	h := s.After(500*time.Millisecond, func() { fired++ })

	advance(s, mock, 499*time.Millisecond)
	assert.Equal(t, 0, fired)
	assert.True(t, h.Active())

	advance(s, mock, time.Millisecond)
	assert.Equal(t, 1, fired)
	assert.False(t, h.Active())

	advance(s, mock, time.Hour)
	assert.Equal(t, 1, fired)
	assert.Equal(t, 0, s.Pending())
}

func TestCancelPreventsRun(t *testing.T) {
	s, mock := newMockScheduler()

	fired := false
	h := s.After(time.Second, func() { fired = true })
	require.True(t, h.Cancel())
	assert.False(t, h.Cancel())

	advance(s, mock, 2*time.Second)
	assert.False(t, fired)
	assert.Equal(t, 0, s.Pending())
}

func TestCancelAfterFireReturnsFalse(t *testing.T) {
	s, mock := newMockScheduler()

	h := s.After(time.Second, func() {})
	advance(s, mock, time.Second)
	assert.False(t, h.Cancel())
}

func TestEveryRepeatsUntilCancelled(t *testing.T) {
	s, mock := newMockScheduler()

	count := 0
	h := s.Every(time.Minute, func() { count++ })

	advance(s, mock, 59*time.Second)
	assert.Equal(t, 0, count)

	advance(s, mock, time.Second)
	assert.Equal(t, 1, count)

	advance(s, mock, 3*time.Minute)
	assert.Equal(t, 4, count)

	h.Cancel()
	advance(s, mock, 10*time.Minute)
	assert.Equal(t, 4, count)
}

func TestEveryCancelledFromItsOwnCallback(t *testing.T) {
	s, mock := newMockScheduler()

	count := 0
	var h *Handle
	h = s.Every(time.Second, func() {
		count++
		if count == 2 {
			h.Cancel()
		}
	})

	advance(s, mock, 5*time.Second)
	assert.Equal(t, 2, count)
	assert.False(t, h.Active())
	assert.Equal(t, 0, s.Pending())
}

func TestEveryRejectsNonPositiveInterval(t *testing.T) {
	s, _ := newMockScheduler()
	h := s.Every(0, func() {})
	assert.False(t, h.Active())
	assert.Equal(t, 0, s.Pending())
}

func TestTasksFireInDeadlineOrder(t *testing.T) {
	s, mock := newMockScheduler()

	var order []string
	s.After(300*time.Millisecond, func() { order = append(order, "back") })
	s.After(500*time.Millisecond, func() { order = append(order, "nav") })
	s.After(100*time.Millisecond, func() { order = append(order, "first") })

	advance(s, mock, time.Second)
	assert.Equal(t, []string{"first", "back", "nav"}, order)
}

func TestEqualDeadlinesKeepArmingOrder(t *testing.T) {
	s, mock := newMockScheduler()

	var order []int
	for i := 0; i < 4; i++ {
		i := i
		s.After(time.Second, func() { order = append(order, i) })
	}

	advance(s, mock, time.Second)
	assert.Equal(t, []int{0, 1, 2, 3}, order)
}

func TestTaskArmedByCallbackRunsWhenDue(t *testing.T) {
	s, mock := newMockScheduler()

	var order []string
	s.After(100*time.Millisecond, func() {
		order = append(order, "show")
		s.After(200*time.Millisecond, func() { order = append(order, "hide") })
	})

	advance(s, mock, 200*time.Millisecond)
	assert.Equal(t, []string{"show"}, order)

	advance(s, mock, 100*time.Millisecond)
	assert.Equal(t, []string{"show", "hide"}, order)
	assert.Equal(t, epoch.Add(300*time.Millisecond), s.Now())
}

func TestStopCancelsEverything(t *testing.T) {
	s, mock := newMockScheduler()

	fired := 0
	s.After(time.Second, func() { fired++ })
	s.Every(time.Second, func() { fired++ })
	s.Stop()

	advance(s, mock, time.Minute)
	assert.Equal(t, 0, fired)
	assert.Equal(t, 0, s.Pending())

	h := s.After(time.Millisecond, func() { fired++ })
	assert.False(t, h.Active())
}

func TestNilHandleIsInert(t *testing.T) {
	var h *Handle
	assert.False(t, h.Cancel())
	assert.False(t, h.Active())
}

func TestRealClockAfterRuns(t *testing.T) {
	s := New(nil)
	defer s.Stop()
	done := make(chan struct{})
	s.After(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run")
	}
}

func TestRealClockEveryRepeats(t *testing.T) {
	s := New(nil)
	defer s.Stop()
	ticks := make(chan struct{}, 8)
	s.Every(5*time.Millisecond, func() {
		select {
		case ticks <- struct{}{}:
		default:
		}
	})

	for n := 0; n < 3; n++ {
		select {
		case <-ticks:
		case <-time.After(2 * time.Second):
			t.Fatal("interval task stalled")
		}
	}
}
