// Package sound plays the interface's short audio cues.
package sound

import (
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
)

// Cue names a sound effect.
type Cue string

const (
	CueKeypress Cue = "keypress"
	CueSelect   Cue = "select"
	CueError    Cue = "error"
)

// Player plays cues. Playback failures are swallowed; Play never blocks on
// the audio device.
type Player interface {
	Play(cue Cue)
}

// Nop plays nothing.
type Nop struct{}

func (Nop) Play(Cue) {}

// --- Bell ---

// Bell rings the terminal bell for every known cue.
type Bell struct {
	mu  sync.Mutex
	out io.Writer
}

// NewBell writes BEL characters to out.
func NewBell(out io.Writer) *Bell {
	return &Bell{out: out}
}

func (b *Bell) Play(cue Cue) {
	if b == nil || b.out == nil || !known(cue) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_, _ = io.WriteString(b.out, "\a")
}

// --- Command ---

// Command plays cue files through an external audio player, one process per
// cue. The command line is split on whitespace and the cue file is appended.
type Command struct {
	argv   []string
	files  map[Cue]string
	logger *slog.Logger
	start  func(name string, args ...string) error
}

// NewCommand builds a command player. Cues without a file are silent.
func NewCommand(command string, files map[Cue]string, logger *slog.Logger) *Command {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Command{
		argv:   strings.Fields(command),
		files:  files,
		logger: logger,
		start:  startDetached,
	}
}

func (c *Command) Play(cue Cue) {
	if c == nil || len(c.argv) == 0 {
		return
	}
	file := strings.TrimSpace(c.files[cue])
	if file == "" {
		return
	}
	args := append(append([]string{}, c.argv[1:]...), file)
	if err := c.start(c.argv[0], args...); err != nil {
		c.logger.Debug("sound playback failed", "cue", string(cue), "err", err)
	}
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func known(cue Cue) bool {
	switch cue {
	case CueKeypress, CueSelect, CueError:
		return true
	}
	return false
}
