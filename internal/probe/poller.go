package probe

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gravitrone/darknet/cli/internal/registry"
	"github.com/gravitrone/darknet/cli/internal/schedule"
)

// DefaultInterval is the time between probe cycles.
const DefaultInterval = 5 * time.Minute

// Cycle is one full pass over the probe targets.
type Cycle struct {
	ID       string
	Results  []Result
	Started  time.Time
	Finished time.Time
}

// Online counts the reachable targets in the cycle.
func (c Cycle) Online() int {
	n := 0
	for _, r := range c.Results {
		if r.Status == StatusOnline {
			n++
		}
	}
	return n
}

// PollerOptions configures the polling loop.
type PollerOptions struct {
	Interval time.Duration
	// Concurrency bounds in-flight probes. One probes sequentially.
	Concurrency int
	// OnResult receives each result as it lands, in target order when
	// sequential.
	OnResult func(cycleID string, r Result)
	// OnCycle receives every completed cycle with results in target order.
	OnCycle func(Cycle)
}

// Poller runs a probe cycle at start and then on every interval.
type Poller struct {
	prober      *Prober
	sched       *schedule.Scheduler
	interval    time.Duration
	concurrency int
	onResult    func(string, Result)
	onCycle     func(Cycle)
	logger      *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	targets     []registry.ProbeTarget
	ticker      *schedule.Handle
	running     bool
	rerun       bool
	cycleCancel context.CancelFunc
	last        *Cycle
}

// NewPoller creates a poller. It does nothing until Start.
func NewPoller(prober *Prober, sched *schedule.Scheduler, opts PollerOptions, logger *slog.Logger) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Poller{
		prober:      prober,
		sched:       sched,
		interval:    opts.Interval,
		concurrency: opts.Concurrency,
		onResult:    opts.OnResult,
		onCycle:     opts.OnCycle,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// SetTargets replaces the probe set, typically after a page load.
func (p *Poller) SetTargets(targets []registry.ProbeTarget) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.targets = append([]registry.ProbeTarget(nil), targets...)
}

// Start launches the first cycle and arms the interval.
func (p *Poller) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		return
	}
	p.ticker = p.sched.Every(p.interval, p.RefreshNow)
	p.mu.Unlock()

	p.RefreshNow()
}

// RefreshNow starts a cycle in the background. When one is already running
// another cycle follows it.
func (p *Poller) RefreshNow() {
	p.trigger(false)
}

// Restart abandons the in-flight cycle, if any, and starts a fresh one over
// the current targets. Results of the abandoned cycle are not delivered.
func (p *Poller) Restart() {
	p.trigger(true)
}

func (p *Poller) trigger(restart bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctx.Err() != nil {
		return
	}
	if p.running {
		p.rerun = true
		if restart && p.cycleCancel != nil {
			p.cycleCancel()
		}
		return
	}
	p.running = true
	ctx, cancel := context.WithCancel(p.ctx)
	p.cycleCancel = cancel
	p.wg.Add(1)
	go p.loop(ctx, cancel)
}

// loop runs cycles until no rerun is queued.
func (p *Poller) loop(ctx context.Context, cancel context.CancelFunc) {
	defer p.wg.Done()
	for {
		p.RunCycle(ctx)
		cancel()

		p.mu.Lock()
		if !p.rerun || p.ctx.Err() != nil {
			p.running = false
			p.cycleCancel = nil
			p.mu.Unlock()
			return
		}
		p.rerun = false
		ctx, cancel = context.WithCancel(p.ctx)
		p.cycleCancel = cancel
		p.mu.Unlock()
	}
}

// Stop cancels the interval and in-flight probes and waits for them.
func (p *Poller) Stop() {
	p.mu.Lock()
	p.ticker.Cancel()
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
}

// Last returns the most recent completed cycle.
func (p *Poller) Last() (Cycle, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return Cycle{}, false
	}
	return *p.last, true
}

// RunCycle probes every target once and returns the results in target order.
// A cycle cut short by ctx is returned partial and never recorded.
func (p *Poller) RunCycle(ctx context.Context) Cycle {
	p.mu.Lock()
	targets := append([]registry.ProbeTarget(nil), p.targets...)
	p.mu.Unlock()

	cycle := Cycle{
		ID:      uuid.NewString(),
		Results: make([]Result, len(targets)),
		Started: p.sched.Now(),
	}
	p.logger.Debug("probe cycle started", "cycle", cycle.ID, "targets", len(targets))

	if p.concurrency <= 1 {
		for i, t := range targets {
			if ctx.Err() != nil {
				break
			}
			cycle.Results[i] = p.probeOne(ctx, cycle.ID, t)
		}
	} else {
		p.fanOut(ctx, cycle.ID, targets, cycle.Results)
	}

	cycle.Results = completed(cycle.Results)
	cycle.Finished = p.sched.Now()

	if ctx.Err() != nil {
		p.logger.Debug("probe cycle abandoned", "cycle", cycle.ID, "probed", len(cycle.Results))
		return cycle
	}

	p.mu.Lock()
	p.last = &cycle
	p.mu.Unlock()

	p.logger.Info("probe cycle finished",
		"cycle", cycle.ID,
		"online", cycle.Online(),
		"total", len(cycle.Results),
	)
	if p.onCycle != nil {
		p.onCycle(cycle)
	}
	return cycle
}

func (p *Poller) fanOut(ctx context.Context, cycleID string, targets []registry.ProbeTarget, out []Result) {
	sem := make(chan struct{}, p.concurrency)
	var wg sync.WaitGroup

	for i, t := range targets {
		wg.Add(1)
		go func(i int, t registry.ProbeTarget) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			select {
			case <-ctx.Done():
				return
			default:
			}
			out[i] = p.probeOne(ctx, cycleID, t)
		}(i, t)
	}
	wg.Wait()
}

func (p *Poller) probeOne(ctx context.Context, cycleID string, t registry.ProbeTarget) Result {
	res := p.prober.Probe(ctx, t.Target)
	res.Item = t.Item
	if res.Err != nil {
		p.logger.Debug("probe failed", "cycle", cycleID, "target", t.Target, "err", res.Err)
	}
	if p.onResult != nil && ctx.Err() == nil {
		p.onResult(cycleID, res)
	}
	return res
}

// completed drops slots left empty by a cancelled cycle.
func completed(results []Result) []Result {
	out := results[:0]
	for _, r := range results {
		if r.Target != "" {
			out = append(out, r)
		}
	}
	return out
}
