package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gravitrone/darknet/cli/internal/effects"
	"github.com/gravitrone/darknet/cli/internal/ui/components"
)

func TestRenderBannerIncludesSubtitleAndNoOSC(t *testing.T) {
	out := RenderBanner()
	assert.NotContains(t, out, "\x1b]")

	clean := components.Printable(out)
	assert.Contains(t, clean, "Darknet Archive")
	assert.Contains(t, clean, "Secure Terminal Interface")
	assert.Contains(t, clean, "─")
}

func TestRenderBannerCarriesEveryArtLine(t *testing.T) {
	out := RenderBanner()
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, len(effects.BannerLines())+2)
}

func TestCompactBannerIsOneLine(t *testing.T) {
	out := compactBanner()
	assert.NotContains(t, out, "\n")
	assert.Contains(t, components.Printable(out), "DARKNET")
}
