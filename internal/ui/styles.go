package ui

import "github.com/charmbracelet/lipgloss"

// --- Theme Colors ---

var (
	ColorPrimary    = lipgloss.Color("#00ff00") // phosphor green
	ColorSecondary  = lipgloss.Color("#00b300") // dim green
	ColorAccent     = lipgloss.Color("#39ff14") // neon
	ColorBackground = lipgloss.Color("#000000") // black
	ColorText       = lipgloss.Color("#c8ffc8") // main text
	ColorMuted      = lipgloss.Color("#2e7d32") // muted text
	ColorSuccess    = lipgloss.Color("#00ff00") // online
	ColorError      = lipgloss.Color("#ff3333") // offline
	ColorWarning    = lipgloss.Color("#ffcc00") // warning
	ColorBorder     = lipgloss.Color("#1b5e20") // border
	ColorRain       = lipgloss.Color("#0f3d0f") // background rain
)

// --- Reusable Styles ---

var (
	BannerStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	ClockStyle = lipgloss.NewStyle().
			Foreground(ColorAccent)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorBackground).
			Background(ColorPrimary).
			Bold(true).
			Padding(0, 1)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorBackground).
			Background(ColorPrimary).
			Bold(true)

	NormalStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	RoleStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true)

	OnlineStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)

	OfflineStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	LinkStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Underline(true)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true)

	RainStyle = lipgloss.NewStyle().
			Foreground(ColorRain)

	OverlayStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(ColorPrimary).
			Foreground(ColorPrimary).
			Padding(1, 4).
			Align(lipgloss.Center)
)
