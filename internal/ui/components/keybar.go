package components

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#39ff14")).Bold(true)
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#00b300")).Bold(true)
	actionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#2e7d32"))
)

const (
	keyBarPrompt = "root@darknet:~$"
	keyBarGap    = "  "
)

// KeyBar renders the enabled bindings after a shell prompt on one line.
// Bindings that do not fit in width are dropped from the end and replaced by
// an ellipsis. A non-positive width keeps them all.
func KeyBar(bindings []key.Binding, width int) string {
	line := promptStyle.Render(keyBarPrompt)
	used := lipgloss.Width(line)

	for i, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		chip := keyBarGap + keyStyle.Render(h.Key) + " " + actionStyle.Render(h.Desc)
		w := lipgloss.Width(chip)
		// keep room for the ellipsis while later bindings remain
		reserve := 0
		if i < len(bindings)-1 {
			reserve = len(keyBarGap) + 1
		}
		if width > 0 && used+w+reserve > width {
			if used+len(keyBarGap)+1 <= width {
				line += keyBarGap + actionStyle.Render("…")
			}
			return line
		}
		line += chip
		used += w
	}
	return line
}
