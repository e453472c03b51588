package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gravitrone/darknet/cli/internal/effects"
)

const bannerSubtitle = "Darknet Archive • Secure Terminal Interface"

// RenderBanner returns the styled ASCII banner with its subtitle.
func RenderBanner() string {
	lines := effects.BannerLines()

	maxWidth := 0
	for _, line := range lines {
		if w := lipgloss.Width(line); w > maxWidth {
			maxWidth = w
		}
	}

	var rendered strings.Builder
	for _, line := range lines {
		rendered.WriteString(BannerStyle.Render(line))
		rendered.WriteString("\n")
	}

	subtitleWidth := lipgloss.Width(bannerSubtitle)
	blockWidth := maxWidth
	if blockWidth < subtitleWidth {
		blockWidth = subtitleWidth
	}

	subtitle := lipgloss.NewStyle().
		Foreground(ColorSecondary).
		Width(blockWidth).
		Align(lipgloss.Center).
		Render(bannerSubtitle)

	underline := lipgloss.NewStyle().
		Foreground(ColorBorder).
		Width(blockWidth).
		Align(lipgloss.Center).
		Render(strings.Repeat("─", subtitleWidth))

	return rendered.String() + subtitle + "\n" + underline
}

// compactBanner is used when the terminal is too short for the full art.
func compactBanner() string {
	return BannerStyle.Render("[ DARKNET ARCHIVE ]")
}
