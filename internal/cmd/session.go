package cmd

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gravitrone/darknet/cli/internal/config"
	"github.com/gravitrone/darknet/cli/internal/probe"
	"github.com/gravitrone/darknet/cli/internal/site"
	"github.com/gravitrone/darknet/cli/internal/sound"
)

// DirectRelay disables the relay so targets are probed directly.
const DirectRelay = "direct"

// Globals are the flags every command shares. Set flags override the config
// file and environment.
type Globals struct {
	Site  string
	Relay string
}

// Bind registers the shared flags on root so subcommands inherit them.
func (g *Globals) Bind(root *cobra.Command) {
	f := root.PersistentFlags()
	f.StringVar(&g.Site, "site", "", "site root: a directory or an http(s) base URL")
	f.StringVar(&g.Relay, "relay", "", `probe relay URL ("direct" probes targets directly)`)
}

// Load reads the config and applies the flag overrides.
func (g *Globals) Load() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if g.Site != "" {
		cfg.SiteRoot = g.Site
	}
	switch g.Relay {
	case "":
	case DirectRelay:
		cfg.RelayURL = ""
	default:
		cfg.RelayURL = g.Relay
	}
	return cfg, nil
}

// NewSiteClient opens the configured site root.
func NewSiteClient(cfg *config.Config) (*site.Client, error) {
	return site.NewClient(cfg.SiteRoot)
}

// NewProber builds the link prober from the relay settings. An empty
// relay_header sends requests without one.
func NewProber(cfg *config.Config) *probe.Prober {
	name, value := cfg.ProbeHeader()
	return probe.NewProber(probe.ProberOptions{
		Relay:       cfg.RelayURL,
		HeaderName:  name,
		HeaderValue: value,
		NoHeader:    name == "",
		Timeout:     cfg.ProbeTimeout,
	})
}

// NewPlayer picks the sound backend: an audio command when one is set, the
// terminal bell when enabled, silence otherwise.
func NewPlayer(cfg *config.Config, out io.Writer, logger *slog.Logger) sound.Player {
	switch {
	case cfg.SoundCommand != "":
		return sound.NewCommand(cfg.SoundCommand, map[sound.Cue]string{
			sound.CueKeypress: cfg.Sounds.Keypress,
			sound.CueSelect:   cfg.Sounds.Select,
			sound.CueError:    cfg.Sounds.Error,
		}, logger)
	case cfg.Bell:
		if out == nil {
			out = os.Stdout
		}
		return sound.NewBell(out)
	}
	return sound.Nop{}
}
