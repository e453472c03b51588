package ui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gravitrone/darknet/cli/internal/probe"
)

// --- Bridge Events ---

type navigateEvent struct{ location string }
type loadingEvent struct{ visible bool }
type clockEvent struct{ now time.Time }
type bootDoneEvent struct{}
type rainEvent struct{}
type probeResultEvent struct {
	cycle  string
	result probe.Result
}
type probeCycleEvent struct{ cycle probe.Cycle }

// bridgeMsg carries every event queued since the last wake.
type bridgeMsg struct{ events []any }

// bridge collects events raised on timer and probe goroutines and hands them
// to the Bubble Tea loop. It also serves as the dispatcher's host.
type bridge struct {
	mu       sync.Mutex
	queue    []any
	location string
	wake     chan struct{}
	done     chan struct{}
	closed   bool
	opener   func(string) error
}

func newBridge(opener func(string) error) *bridge {
	return &bridge{
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		opener: opener,
	}
}

func (b *bridge) post(ev any) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.queue = append(b.queue, ev)
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *bridge) drain() []any {
	b.mu.Lock()
	defer b.mu.Unlock()
	events := b.queue
	b.queue = nil
	return events
}

// wait blocks until events are queued, then delivers them as one message.
func (b *bridge) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-b.wake:
			return bridgeMsg{events: b.drain()}
		case <-b.done:
			return nil
		}
	}
}

func (b *bridge) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.done)
}

func (b *bridge) setLocation(location string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.location = location
}

// --- navigate.Host ---

func (b *bridge) Location() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.location
}

func (b *bridge) Navigate(location string) { b.post(navigateEvent{location: location}) }

func (b *bridge) Open(url string) error {
	if b.opener == nil {
		return nil
	}
	return b.opener(url)
}

func (b *bridge) ShowLoading() { b.post(loadingEvent{visible: true}) }

func (b *bridge) HideLoading() { b.post(loadingEvent{visible: false}) }
