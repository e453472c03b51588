package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. DARKNET_SITE_ROOT.
const EnvPrefix = "DARKNET"

// Config holds terminal configuration stored at ~/.darknet/config.
type Config struct {
	SiteRoot         string        `mapstructure:"site_root"`
	StartPage        string        `mapstructure:"start_page"`
	RelayURL         string        `mapstructure:"relay_url"`
	RelayHeader      string        `mapstructure:"relay_header"`
	ProbeTimeout     time.Duration `mapstructure:"probe_timeout"`
	ProbeConcurrency int           `mapstructure:"probe_concurrency"`
	PollInterval     time.Duration `mapstructure:"poll_interval"`
	BootDelay        time.Duration `mapstructure:"boot_delay"`
	NavDelay         time.Duration `mapstructure:"nav_delay"`
	BackDelay        time.Duration `mapstructure:"back_delay"`
	OverlayDuration  time.Duration `mapstructure:"overlay_duration"`
	MatrixRain       bool          `mapstructure:"matrix_rain"`
	Bell             bool          `mapstructure:"bell"`
	SoundCommand     string        `mapstructure:"sound_command"`
	Sounds           Sounds        `mapstructure:"sounds"`
	LogFile          string        `mapstructure:"log_file"`
}

// Sounds maps each cue to an audio file.
type Sounds struct {
	Keypress string `mapstructure:"keypress" yaml:"keypress,omitempty"`
	Select   string `mapstructure:"select" yaml:"select,omitempty"`
	Error    string `mapstructure:"error" yaml:"error,omitempty"`
}

// fileConfig is the on-disk layout; durations are written as "5m0s" strings.
type fileConfig struct {
	SiteRoot         string `yaml:"site_root"`
	StartPage        string `yaml:"start_page"`
	RelayURL         string `yaml:"relay_url"`
	RelayHeader      string `yaml:"relay_header"`
	ProbeTimeout     string `yaml:"probe_timeout"`
	ProbeConcurrency int    `yaml:"probe_concurrency"`
	PollInterval     string `yaml:"poll_interval"`
	BootDelay        string `yaml:"boot_delay"`
	NavDelay         string `yaml:"nav_delay"`
	BackDelay        string `yaml:"back_delay"`
	OverlayDuration  string `yaml:"overlay_duration"`
	MatrixRain       bool   `yaml:"matrix_rain"`
	Bell             bool   `yaml:"bell"`
	SoundCommand     string `yaml:"sound_command,omitempty"`
	Sounds           Sounds `yaml:"sounds,omitempty"`
	LogFile          string `yaml:"log_file"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		SiteRoot:         ".",
		StartPage:        "index.html",
		RelayURL:         "https://cors-anywhere.herokuapp.com/",
		RelayHeader:      "X-Requested-With: XMLHttpRequest",
		ProbeTimeout:     10 * time.Second,
		ProbeConcurrency: 1,
		PollInterval:     5 * time.Minute,
		BootDelay:        4500 * time.Millisecond,
		NavDelay:         500 * time.Millisecond,
		BackDelay:        300 * time.Millisecond,
		OverlayDuration:  1500 * time.Millisecond,
		LogFile:          filepath.Join(Dir(), "darknet.log"),
	}
}

// Dir returns the config directory.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".darknet")
}

// Path returns the config file path. DARKNET_CONFIG overrides it.
func Path() string {
	if p := strings.TrimSpace(os.Getenv(EnvPrefix + "_CONFIG")); p != "" {
		return p
	}
	return filepath.Join(Dir(), "config")
}

// Load merges defaults, the config file (if present) and DARKNET_*
// environment overrides. A missing file is not an error; a group- or
// world-writable one is.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	path := Path()
	info, err := os.Stat(path)
	switch {
	case err == nil:
		if perm := info.Mode().Perm(); perm&0o022 != 0 {
			return nil, fmt.Errorf("config permissions too open: %04o (want 0600)", perm)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("stat config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the terminal cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.SiteRoot) == "" {
		return fmt.Errorf("config missing site_root")
	}
	if c.ProbeConcurrency < 1 {
		return fmt.Errorf("probe_concurrency must be at least 1, got %d", c.ProbeConcurrency)
	}
	for name, d := range map[string]time.Duration{
		"poll_interval":    c.PollInterval,
		"probe_timeout":    c.ProbeTimeout,
		"nav_delay":        c.NavDelay,
		"back_delay":       c.BackDelay,
		"overlay_duration": c.OverlayDuration,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if c.BootDelay < 0 {
		return fmt.Errorf("boot_delay must not be negative")
	}
	if c.RelayHeader != "" && !strings.Contains(c.RelayHeader, ":") {
		return fmt.Errorf("relay_header must look like \"Name: value\"")
	}
	return nil
}

// ProbeHeader splits RelayHeader into name and value.
func (c *Config) ProbeHeader() (string, string) {
	name, value, ok := strings.Cut(c.RelayHeader, ":")
	if !ok {
		return "", ""
	}
	return strings.TrimSpace(name), strings.TrimSpace(value)
}

// Save writes the config to disk with secure permissions.
func (c *Config) Save() error {
	path := Path()
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c.file())
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// YAML renders the config in its on-disk form.
func (c *Config) YAML() (string, error) {
	data, err := yaml.Marshal(c.file())
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return string(data), nil
}

func (c *Config) file() fileConfig {
	return fileConfig{
		SiteRoot:         c.SiteRoot,
		StartPage:        c.StartPage,
		RelayURL:         c.RelayURL,
		RelayHeader:      c.RelayHeader,
		ProbeTimeout:     c.ProbeTimeout.String(),
		ProbeConcurrency: c.ProbeConcurrency,
		PollInterval:     c.PollInterval.String(),
		BootDelay:        c.BootDelay.String(),
		NavDelay:         c.NavDelay.String(),
		BackDelay:        c.BackDelay.String(),
		OverlayDuration:  c.OverlayDuration.String(),
		MatrixRain:       c.MatrixRain,
		Bell:             c.Bell,
		SoundCommand:     c.SoundCommand,
		Sounds:           c.Sounds,
		LogFile:          c.LogFile,
	}
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("site_root", d.SiteRoot)
	v.SetDefault("start_page", d.StartPage)
	v.SetDefault("relay_url", d.RelayURL)
	v.SetDefault("relay_header", d.RelayHeader)
	v.SetDefault("probe_timeout", d.ProbeTimeout)
	v.SetDefault("probe_concurrency", d.ProbeConcurrency)
	v.SetDefault("poll_interval", d.PollInterval)
	v.SetDefault("boot_delay", d.BootDelay)
	v.SetDefault("nav_delay", d.NavDelay)
	v.SetDefault("back_delay", d.BackDelay)
	v.SetDefault("overlay_duration", d.OverlayDuration)
	v.SetDefault("matrix_rain", d.MatrixRain)
	v.SetDefault("bell", d.Bell)
	v.SetDefault("sound_command", d.SoundCommand)
	v.SetDefault("sounds.keypress", d.Sounds.Keypress)
	v.SetDefault("sounds.select", d.Sounds.Select)
	v.SetDefault("sounds.error", d.Sounds.Error)
	v.SetDefault("log_file", d.LogFile)
}
