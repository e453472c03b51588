package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Tone picks a panel's palette.
type Tone int

const (
	ToneTerminal Tone = iota
	ToneAlert
)

type palette struct {
	edge  lipgloss.Color
	title lipgloss.Style
	body  lipgloss.Style
}

var palettes = map[Tone]palette{
	ToneTerminal: {
		edge:  lipgloss.Color("#1b5e20"),
		title: lipgloss.NewStyle().Foreground(lipgloss.Color("#39ff14")).Bold(true),
		body:  lipgloss.NewStyle().Foreground(lipgloss.Color("#c8ffc8")),
	},
	ToneAlert: {
		edge:  lipgloss.Color("#7a1f1f"),
		title: lipgloss.NewStyle().Foreground(lipgloss.Color("#ff3333")).Bold(true),
		body:  lipgloss.NewStyle().Foreground(lipgloss.Color("#ffb3b3")),
	},
}

var (
	panelEdge = lipgloss.NormalBorder()

	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00b300")).Bold(true)
)

// Panel is a framed block sized from the terminal width, with its title cut
// into the top edge at the left.
type Panel struct {
	Title string
	Tone  Tone
	// Width is the terminal width. Zero renders unconstrained.
	Width int
}

// OuterWidth is the panel's share of the terminal: seven tenths, kept
// between 40 and 80 columns and never wider than the terminal.
func (p Panel) OuterWidth() int {
	if p.Width <= 0 {
		return 0
	}
	w := min(max(p.Width*7/10, 40), 80)
	return min(w, p.Width)
}

// InnerWidth is the room left for the body inside the frame.
func (p Panel) InnerWidth() int {
	return max(p.OuterWidth()-4, 0)
}

// Render frames body.
func (p Panel) Render(body string) string {
	pal := palettes[p.Tone]
	style := lipgloss.NewStyle().
		Border(panelEdge).
		BorderForeground(pal.edge).
		Padding(0, 1)
	if w := p.OuterWidth(); w > 0 {
		style = style.Width(w - 2)
	}
	framed := style.Render(pal.body.Render(body))
	if p.Title == "" {
		return framed
	}

	lines := strings.Split(framed, "\n")
	lines[0] = p.topEdge(lipgloss.Width(lines[0]), pal)
	return strings.Join(lines, "\n")
}

// topEdge draws "┌─ TITLE ───┐" at exactly width cells.
func (p Panel) topEdge(width int, pal palette) string {
	edge := lipgloss.NewStyle().Foreground(pal.edge)
	room := width - 4
	if room < 3 {
		return edge.Render(panelEdge.TopLeft + strings.Repeat(panelEdge.Top, max(width-2, 0)) + panelEdge.TopRight)
	}
	label := " " + Fit(strings.ToUpper(OneLine(p.Title)), room-2) + " "
	fill := room - lipgloss.Width(label)
	return edge.Render(panelEdge.TopLeft+panelEdge.Top) +
		pal.title.Render(label) +
		edge.Render(strings.Repeat(panelEdge.Top, fill+1)+panelEdge.TopRight)
}

// Row is one line of a key/value listing.
type Row struct {
	Key   string
	Value string
}

// KeyValues lays rows out in two columns within width cells. The key column
// is as wide as the longest key, up to a third of the width.
func KeyValues(rows []Row, width int) string {
	keyWidth := 0
	for _, r := range rows {
		keyWidth = max(keyWidth, lipgloss.Width(OneLine(r.Key)))
	}
	valueWidth := 0
	if width > 0 {
		keyWidth = min(keyWidth, max(width/3, 4))
		valueWidth = max(width-keyWidth-2, 4)
	}

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		k := Fit(OneLine(r.Key), keyWidth)
		pad := strings.Repeat(" ", max(keyWidth-lipgloss.Width(k), 0))
		lines = append(lines, labelStyle.Render(k+pad)+"  "+Fit(OneLine(r.Value), valueWidth))
	}
	return strings.Join(lines, "\n")
}
