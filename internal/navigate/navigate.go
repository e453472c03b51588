// Package navigate turns activated targets into page transitions.
package navigate

import (
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gravitrone/darknet/cli/internal/registry"
	"github.com/gravitrone/darknet/cli/internal/schedule"
	"github.com/gravitrone/darknet/cli/internal/site"
)

// Default delays, matching the site's transition timings.
const (
	DefaultNavDelay        = 500 * time.Millisecond
	DefaultBackDelay       = 300 * time.Millisecond
	DefaultOverlayDuration = 1500 * time.Millisecond
)

// Kind classifies a navigation target.
type Kind int

const (
	KindInternal Kind = iota
	KindExternal
)

func (k Kind) String() string {
	if k == KindExternal {
		return "external"
	}
	return "internal"
}

// Classify reports whether target leaves the site.
func Classify(target string) Kind {
	if registry.IsExternal(target) {
		return KindExternal
	}
	return KindInternal
}

// IsRoot reports whether location is the site root or an index page, where
// back navigation does nothing.
func IsRoot(location string) bool {
	location = strings.TrimSpace(location)
	return location == "" || location == "/" || strings.HasSuffix(location, site.IndexPage)
}

// Host performs the visible side of navigation.
type Host interface {
	// Location returns the current page location.
	Location() string
	// Navigate replaces the current page.
	Navigate(location string)
	// Open hands url to a new browsing context.
	Open(url string) error
	ShowLoading()
	HideLoading()
}

// Options sets the transition delays.
type Options struct {
	NavDelay        time.Duration
	BackDelay       time.Duration
	OverlayDuration time.Duration
}

// DefaultOptions returns the standard delays.
func DefaultOptions() Options {
	return Options{
		NavDelay:        DefaultNavDelay,
		BackDelay:       DefaultBackDelay,
		OverlayDuration: DefaultOverlayDuration,
	}
}

// Dispatcher schedules navigations and the loading overlay around them.
// A new navigation cancels the one still waiting, so the last request wins.
type Dispatcher struct {
	host   Host
	sched  *schedule.Scheduler
	opts   Options
	logger *slog.Logger

	mu          sync.Mutex
	pendingNav  *schedule.Handle
	pendingHide *schedule.Handle
}

// New creates a dispatcher. Zero option fields take the defaults.
func New(host Host, sched *schedule.Scheduler, opts Options, logger *slog.Logger) *Dispatcher {
	def := DefaultOptions()
	if opts.NavDelay <= 0 {
		opts.NavDelay = def.NavDelay
	}
	if opts.BackDelay <= 0 {
		opts.BackDelay = def.BackDelay
	}
	if opts.OverlayDuration <= 0 {
		opts.OverlayDuration = def.OverlayDuration
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dispatcher{host: host, sched: sched, opts: opts, logger: logger}
}

// Dispatch activates target: external targets open in a new context right
// away, internal ones replace the page after the navigation delay.
func (d *Dispatcher) Dispatch(target string) {
	target = strings.TrimSpace(target)
	if target == "" {
		return
	}
	switch Classify(target) {
	case KindExternal:
		d.showLoading()
		d.open(target)
	default:
		next := site.Resolve(d.host.Location(), target)
		d.showLoading()
		d.schedule(d.opts.NavDelay, next)
	}
}

// Back returns to the index page of the current directory. It does nothing
// on the root or an index page and reports whether a navigation was queued.
func (d *Dispatcher) Back() bool {
	current := d.host.Location()
	if IsRoot(current) {
		return false
	}
	d.showLoading()
	d.schedule(d.opts.BackDelay, site.Resolve(current, site.IndexPage))
	return true
}

// OpenReference opens an explicit reference link without the overlay.
func (d *Dispatcher) OpenReference(href string) {
	href = strings.TrimSpace(href)
	if href == "" {
		return
	}
	d.open(href)
}

// Pending reports whether a navigation is waiting to fire.
func (d *Dispatcher) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pendingNav.Active()
}

// Cancel drops the waiting navigation, if any.
func (d *Dispatcher) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pendingNav.Cancel()
}

func (d *Dispatcher) schedule(delay time.Duration, location string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pendingNav.Cancel() {
		d.logger.Debug("navigation superseded", "next", location)
	}
	d.pendingNav = d.sched.After(delay, func() {
		d.logger.Info("navigate", "location", location)
		d.host.Navigate(location)
	})
}

func (d *Dispatcher) showLoading() {
	d.host.ShowLoading()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.pendingHide.Cancel()
	d.pendingHide = d.sched.After(d.opts.OverlayDuration, d.host.HideLoading)
}

func (d *Dispatcher) open(url string) {
	if err := d.host.Open(url); err != nil {
		d.logger.Warn("open external target failed", "url", url, "err", err)
		return
	}
	d.logger.Info("opened external target", "url", url)
}
