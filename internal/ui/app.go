package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gravitrone/darknet/cli/internal/effects"
	"github.com/gravitrone/darknet/cli/internal/logging"
	"github.com/gravitrone/darknet/cli/internal/navigate"
	"github.com/gravitrone/darknet/cli/internal/probe"
	"github.com/gravitrone/darknet/cli/internal/registry"
	"github.com/gravitrone/darknet/cli/internal/schedule"
	"github.com/gravitrone/darknet/cli/internal/selection"
	"github.com/gravitrone/darknet/cli/internal/site"
	"github.com/gravitrone/darknet/cli/internal/sound"
	"github.com/gravitrone/darknet/cli/internal/ui/components"
)

const (
	toastDuration  = 2500 * time.Millisecond
	fullBannerRows = 32
	minListRows    = 3
	maxLineWidth   = 100
	currentMarker  = "▶ "
)

// --- Messages ---

type pageLoadedMsg struct {
	location string
	page     *registry.Page
	err      error
}

type clearToastMsg struct{}

// PageLoader loads and parses one page of the site.
type PageLoader interface {
	Load(ctx context.Context, location string) (*registry.Page, error)
}

// Options tunes the terminal session.
type Options struct {
	StartPage string
	// BootDelay is how long the boot overlay stays up. Zero skips it.
	BootDelay        time.Duration
	Navigation       navigate.Options
	PollInterval     time.Duration
	ProbeConcurrency int
	MatrixRain       bool
}

// DefaultOptions returns the standard session timings.
func DefaultOptions() Options {
	return Options{
		StartPage:        site.IndexPage,
		BootDelay:        effects.DefaultBootDelay,
		Navigation:       navigate.DefaultOptions(),
		PollInterval:     probe.DefaultInterval,
		ProbeConcurrency: 1,
	}
}

// Deps are the collaborators the session drives.
type Deps struct {
	Pages  PageLoader
	Sched  *schedule.Scheduler
	Prober *probe.Prober
	Player sound.Player
	Opener func(url string) error
	Logger *slog.Logger
}

// App is the root Bubble Tea model.
type App struct {
	pages  PageLoader
	sched  *schedule.Scheduler
	player sound.Player
	logger *slog.Logger
	opts   Options
	keys   keyMap

	bridge     *bridge
	dispatcher *navigate.Dispatcher
	poller     *probe.Poller

	sel           *selection.Controller
	page          *registry.Page
	status        map[int]probe.Status
	lastCycle     *probe.Cycle
	pollerStarted bool

	width  int
	height int
	now    time.Time

	booting      bool
	bootStart    time.Time
	loading      bool
	loadingSince time.Time
	ticking      bool
	loadingBar   effects.Loading
	spinner      spinner.Model
	rain         *effects.Rain

	err      error
	toast    string
	helpOpen bool
}

// NewApp wires a session. Missing dependencies fall back to inert ones.
func NewApp(deps Deps, opts Options) App {
	if deps.Sched == nil {
		deps.Sched = schedule.New(nil)
	}
	if deps.Player == nil {
		deps.Player = sound.Nop{}
	}
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	if deps.Prober == nil {
		deps.Prober = probe.NewProber(probe.ProberOptions{Relay: probe.DefaultRelay})
	}
	if strings.TrimSpace(opts.StartPage) == "" {
		opts.StartPage = site.IndexPage
	}

	b := newBridge(deps.Opener)
	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(ColorAccent)),
	)

	a := App{
		pages:      deps.Pages,
		sched:      deps.Sched,
		player:     deps.Player,
		logger:     deps.Logger,
		opts:       opts,
		keys:       defaultKeyMap(),
		bridge:     b,
		sel:        selection.New(nil),
		status:     map[int]probe.Status{},
		now:        deps.Sched.Now(),
		booting:    opts.BootDelay > 0,
		ticking:    opts.BootDelay > 0,
		bootStart:  deps.Sched.Now(),
		loadingBar: effects.NewLoading(string(ColorPrimary)),
		spinner:    sp,
	}
	a.dispatcher = navigate.New(b, deps.Sched, opts.Navigation, deps.Logger)
	a.poller = probe.NewPoller(deps.Prober, deps.Sched, probe.PollerOptions{
		Interval:    opts.PollInterval,
		Concurrency: opts.ProbeConcurrency,
		OnResult: func(cycleID string, r probe.Result) {
			b.post(probeResultEvent{cycle: cycleID, result: r})
		},
		OnCycle: func(c probe.Cycle) {
			b.post(probeCycleEvent{cycle: c})
		},
	}, deps.Logger)
	return a
}

// Init arms the clock, boot and rain tasks and loads the start page.
func (a App) Init() tea.Cmd {
	b := a.bridge
	sched := a.sched
	sched.Every(effects.ClockInterval, func() {
		b.post(clockEvent{now: sched.Now()})
	})
	if a.opts.BootDelay > 0 {
		sched.After(a.opts.BootDelay, func() { b.post(bootDoneEvent{}) })
	}
	if a.opts.MatrixRain {
		sched.Every(effects.MatrixFrameTime, func() { b.post(rainEvent{}) })
	}

	cmds := []tea.Cmd{b.wait(), a.loadPageCmd(a.opts.StartPage)}
	if a.booting {
		cmds = append(cmds, a.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.sel.SetViewport(a.listRows())
		if a.opts.MatrixRain {
			if a.rain == nil {
				a.rain = effects.NewRain(msg.Width, msg.Height, a.sched.Now().UnixNano())
			} else {
				a.rain.Resize(msg.Width, msg.Height)
			}
		}
		return a, nil

	case spinner.TickMsg:
		if !a.booting && !a.loading {
			a.ticking = false
			return a, nil
		}
		a.ticking = true
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case pageLoadedMsg:
		return a.handlePageLoaded(msg)

	case bridgeMsg:
		var cmds []tea.Cmd
		for _, ev := range msg.events {
			var cmd tea.Cmd
			a, cmd = a.applyEvent(ev)
			if cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		cmds = append(cmds, a.bridge.wait())
		return a, tea.Batch(cmds...)

	case clearToastMsg:
		a.toast = ""
		return a, nil

	case tea.MouseMsg:
		return a.handleMouse(msg)

	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if isQuit(msg) {
		a.shutdown()
		return a, tea.Quit
	}
	if a.helpOpen {
		if isBack(msg) || isKey(msg, "?") {
			a.helpOpen = false
		}
		return a, nil
	}
	a.err = nil

	switch {
	case isUp(msg):
		a.sel.MoveUp()
		a.player.Play(sound.CueKeypress)
	case isDown(msg):
		a.sel.MoveDown()
		a.player.Play(sound.CueKeypress)
	case isEnter(msg):
		a.sel.Activate(a.dispatcher)
		a.player.Play(sound.CueSelect)
	case isBack(msg):
		a.dispatcher.Back()
		a.player.Play(sound.CueKeypress)
	case isKey(msg, "r"):
		a.poller.RefreshNow()
		return a, a.setToast("Probing links...")
	case isKey(msg, "?"):
		a.helpOpen = true
	}
	return a, nil
}

func (a App) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if a.booting || a.loading || a.helpOpen {
		return a, nil
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return a, nil
	}
	scr := a.screen()
	if i, ok := scr.itemRows[msg.Y]; ok {
		a.err = nil
		if a.sel.Select(i) {
			a.sel.Activate(a.dispatcher)
		}
		return a, nil
	}
	if i, ok := scr.linkRows[msg.Y]; ok && a.page != nil && i < len(a.page.Links) {
		a.dispatcher.OpenReference(a.page.Links[i].Href)
	}
	return a, nil
}

func (a App) handlePageLoaded(msg pageLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.err = msg.err
		a.player.Play(sound.CueError)
		a.logger.Warn("page load failed", "location", msg.location, "err", msg.err)
		return a, nil
	}

	a.page = msg.page
	a.err = nil
	a.status = map[int]probe.Status{}
	a.lastCycle = nil
	a.sel.Reset(msg.page.Items)
	a.sel.SetViewport(a.listRows())

	location := msg.page.Location
	if location == "" {
		location = msg.location
	}
	a.bridge.setLocation(location)
	a.logger.Info("page loaded",
		"location", location,
		"items", len(msg.page.Items),
		"probes", len(msg.page.Probes),
	)

	a.poller.SetTargets(msg.page.Probes)
	if !a.pollerStarted {
		a.pollerStarted = true
		a.poller.Start()
	} else {
		a.poller.Restart()
	}
	return a, nil
}

func (a App) applyEvent(ev any) (App, tea.Cmd) {
	switch ev := ev.(type) {
	case navigateEvent:
		return a, a.loadPageCmd(ev.location)
	case loadingEvent:
		a.loading = ev.visible
		if ev.visible {
			a.loadingSince = a.sched.Now()
			if !a.ticking {
				a.ticking = true
				return a, a.spinner.Tick
			}
		}
	case clockEvent:
		a.now = ev.now
	case bootDoneEvent:
		a.booting = false
	case rainEvent:
		if a.rain != nil {
			a.rain.Step()
		}
	case probeResultEvent:
		a.annotate(ev.result)
	case probeCycleEvent:
		cycle := ev.cycle
		a.lastCycle = &cycle
	}
	return a, nil
}

// annotate records r against its item, ignoring results for a page that has
// since been replaced.
func (a App) annotate(r probe.Result) {
	items := a.sel.Items()
	if r.Item < 0 || r.Item >= len(items) {
		return
	}
	item := items[r.Item]
	if item.Target != r.Target || !item.HasStatus {
		return
	}
	a.status[r.Item] = r.Status
}

func (a App) loadPageCmd(location string) tea.Cmd {
	pages := a.pages
	return func() tea.Msg {
		if pages == nil {
			return pageLoadedMsg{location: location, err: fmt.Errorf("no site configured")}
		}
		page, err := pages.Load(context.Background(), location)
		return pageLoadedMsg{location: location, page: page, err: err}
	}
}

func (a *App) setToast(text string) tea.Cmd {
	a.toast = text
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return clearToastMsg{}
	})
}

func (a App) shutdown() {
	a.dispatcher.Cancel()
	a.poller.Stop()
	a.sched.Stop()
	a.bridge.close()
}

// --- Layout ---

// screen is the rendered page with the rows that react to clicks.
type screen struct {
	lines    []string
	itemRows map[int]int
	linkRows map[int]int
}

func (s *screen) add(block string) {
	s.lines = append(s.lines, strings.Split(block, "\n")...)
}

func (a App) contentWidth() int {
	w := a.width - 4
	if a.width <= 0 || w > maxLineWidth {
		w = maxLineWidth
	}
	if w < 20 {
		w = 20
	}
	return w
}

func (a App) banner() string {
	if a.height == 0 || a.height >= fullBannerRows {
		return RenderBanner()
	}
	return compactBanner()
}

// listRows is the number of items that fit between the header and footer.
func (a App) listRows() int {
	if a.height <= 0 {
		return 0
	}
	chrome := strings.Count(a.banner(), "\n") + 1
	chrome += 2 // title line and spacer
	chrome += 2 // scroll indicators
	chrome += 4 // spacer, framed message and key bar
	if a.page != nil && len(a.page.Links) > 0 {
		chrome += len(a.page.Links) + 2
	}
	rows := a.height - chrome
	if rows < minListRows {
		rows = minListRows
	}
	return rows
}

func (a App) screen() screen {
	scr := screen{itemRows: map[int]int{}, linkRows: map[int]int{}}
	width := a.contentWidth()

	scr.add(a.banner())
	scr.add(a.headerLine())
	scr.add("")

	items := a.sel.Items()
	if len(items) == 0 {
		if a.page != nil {
			scr.add(MutedStyle.Render("  (no entries on this page)"))
		}
	} else {
		start, end := a.sel.Window()
		if start > 0 {
			scr.add(MutedStyle.Render(fmt.Sprintf("  ↑ %d more", start)))
		} else {
			scr.add("")
		}
		for i := start; i < end; i++ {
			scr.itemRows[len(scr.lines)] = i
			scr.add(a.itemLine(i, items[i], width))
		}
		if rest := len(items) - end; rest > 0 {
			scr.add(MutedStyle.Render(fmt.Sprintf("  ↓ %d more", rest)))
		} else {
			scr.add("")
		}
	}

	if a.page != nil && len(a.page.Links) > 0 {
		scr.add("")
		scr.add(HeaderStyle.Render("REFERENCES"))
		for i, link := range a.page.Links {
			text := link.Text
			if text == "" {
				text = link.Href
			}
			scr.linkRows[len(scr.lines)] = i
			scr.add("  ↗ " + LinkStyle.Render(components.Fit(text, width-4)))
		}
	}

	scr.add("")
	switch {
	case a.err != nil:
		scr.add(components.Panel{Title: "Error", Tone: components.ToneAlert, Width: a.width}.Render(errorText(a.err)))
	case a.toast != "":
		scr.add(WarningStyle.Render(a.toast))
	}
	scr.add(components.KeyBar(a.keys.bar(), a.width))
	return scr
}

func (a App) headerLine() string {
	title := "DARKNET"
	if a.page != nil {
		switch {
		case a.page.Title != "":
			title = a.page.Title
		case a.page.Heading != "":
			title = a.page.Heading
		case a.page.Location != "":
			title = a.page.Location
		}
	}
	line := TitleStyle.Render(components.Fit(title, 48)) + "  " + ClockStyle.Render(effects.FormatClock(a.now))
	if a.lastCycle != nil && len(a.lastCycle.Results) > 0 {
		line += "  " + MutedStyle.Render(fmt.Sprintf("links %d/%d online", a.lastCycle.Online(), len(a.lastCycle.Results)))
	}
	return line
}

func (a App) itemLine(i int, item registry.Item, width int) string {
	marker := "  "
	titleStyle := NormalStyle
	if a.sel.IsCurrent(i) {
		marker = currentMarker
		titleStyle = SelectedStyle
	}

	tag := "[" + roleTag(item.Role) + "]"
	statusText, statusStyle := a.statusOf(i, item)

	used := lipgloss.Width(marker) + lipgloss.Width(tag) + 1
	if statusText != "" {
		used += lipgloss.Width(statusText) + 2
	}
	room := width - used
	title := components.Fit(item.Title, room)

	line := marker + RoleStyle.Render(tag) + " " + titleStyle.Render(title)
	if desc := item.Description; desc != "" {
		if left := room - lipgloss.Width(title) - 3; left > 8 {
			line += MutedStyle.Render(" · " + components.Fit(desc, left))
		}
	}
	if statusText != "" {
		line += "  " + statusStyle.Render(statusText)
	}
	return line
}

// statusOf returns the indicator for item i: the latest probe result when
// there is one, otherwise the text authored in the page.
func (a App) statusOf(i int, item registry.Item) (string, lipgloss.Style) {
	if !item.HasStatus {
		return "", MutedStyle
	}
	switch a.status[i] {
	case probe.StatusOnline:
		return probe.StatusOnline.Label(), OnlineStyle
	case probe.StatusOffline:
		return probe.StatusOffline.Label(), OfflineStyle
	}
	return item.StatusText, MutedStyle
}

func roleTag(r registry.Role) string {
	switch r {
	case registry.RoleRecord:
		return "REC"
	case registry.RoleFile:
		return "FILE"
	}
	return "MENU"
}

func errorText(err error) string {
	var nf *site.NotFoundError
	if errors.As(err, &nf) {
		return "Page not found: " + nf.Location
	}
	return err.Error()
}

// --- View ---

// View renders the active overlay or the page.
func (a App) View() string {
	switch {
	case a.booting:
		return a.renderBoot()
	case a.loading:
		return a.renderLoading()
	case a.helpOpen:
		return a.renderHelp()
	}

	scr := a.screen()
	lines := scr.lines
	if a.rain != nil && a.height > len(lines) {
		rain := a.rain.Lines()
		for row := len(lines); row < a.height && row < len(rain); row++ {
			lines = append(lines, RainStyle.Render(rain[row]))
		}
	}
	return centerBlockUniform(strings.Join(lines, "\n"), a.width)
}

func (a App) renderBoot() string {
	elapsed := a.sched.Now().Sub(a.bootStart)
	lines := effects.BootFrame(elapsed, a.opts.BootDelay)

	var b strings.Builder
	b.WriteString(a.spinner.View() + " " + HeaderStyle.Render("BOOT SEQUENCE"))
	b.WriteString("\n\n")
	for i, line := range lines {
		style := NormalStyle
		if i == len(effects.BootLines)-1 {
			style = BannerStyle
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return a.place(b.String())
}

func (a App) renderLoading() string {
	elapsed := a.sched.Now().Sub(a.loadingSince)
	return a.place(OverlayStyle.Render(a.loadingBar.View(elapsed)))
}

func (a App) renderHelp() string {
	rows := make([]components.Row, 0, len(a.keys.bindings())+1)
	for _, b := range a.keys.bindings() {
		h := b.Help()
		rows = append(rows, components.Row{Key: h.Key, Value: h.Desc})
	}
	rows = append(rows, components.Row{Key: "click", Value: "open entry or reference"})
	panel := components.Panel{Title: "Help", Width: a.width}
	body := panel.Render(components.KeyValues(rows, panel.InnerWidth()))
	return a.place(body + "\n" + MutedStyle.Render("esc or ? to close"))
}

func (a App) place(block string) string {
	if a.width <= 0 || a.height <= 0 {
		return block
	}
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, block)
}

// centerBlockUniform pads every line of s by the same amount so the widest
// line is centered.
func centerBlockUniform(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	maxWidth := 0
	for _, line := range lines {
		if w := lipgloss.Width(line); w > maxWidth {
			maxWidth = w
		}
	}
	if maxWidth <= 0 || maxWidth >= width {
		return s
	}
	pad := (width - maxWidth) / 2
	if pad <= 0 {
		return s
	}
	prefix := strings.Repeat(" ", pad)
	for i := range lines {
		if lines[i] != "" {
			lines[i] = prefix + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}
