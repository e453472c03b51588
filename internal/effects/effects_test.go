package effects

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatClockUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	ts := time.Date(2024, 3, 9, 22, 4, 5, 0, loc)

	assert.Equal(t, "17:04:05 UTC", FormatClock(ts))
}

func TestFormatClockIs24Hour(t *testing.T) {
	ts := time.Date(2024, 3, 9, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, "23:59:59 UTC", FormatClock(ts))
}

func TestBootFrameRevealsProgressively(t *testing.T) {
	assert.Len(t, BootFrame(0, DefaultBootDelay), 1)
	assert.Len(t, BootFrame(DefaultBootDelay*4/5, DefaultBootDelay), len(BootLines))
	assert.Len(t, BootFrame(DefaultBootDelay, DefaultBootDelay), len(BootLines))
	assert.Len(t, BootFrame(time.Second, 0), len(BootLines))

	prev := 0
	for ms := 0; ms <= 4500; ms += 250 {
		n := len(BootFrame(time.Duration(ms)*time.Millisecond, DefaultBootDelay))
		assert.GreaterOrEqual(t, n, prev)
		prev = n
	}
}

func TestLoadingProgressEasesToFull(t *testing.T) {
	assert.Equal(t, 0.0, LoadingProgress(0))
	assert.InDelta(t, 0.5, LoadingProgress(LoadingFillTime/2), 1e-9)
	assert.Equal(t, 1.0, LoadingProgress(LoadingFillTime))
	assert.Equal(t, 1.0, LoadingProgress(time.Hour))
	assert.Less(t, LoadingProgress(LoadingFillTime/4), 0.25)
}

func TestLoadingView(t *testing.T) {
	view := NewLoading("#00ff00").View(0)
	assert.True(t, strings.HasPrefix(view, "LOADING..."))
}

func TestBannerLines(t *testing.T) {
	lines := BannerLines()
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "██████╗"))
}

func TestRainFillsAndStaysInBounds(t *testing.T) {
	r := NewRain(20, 10, 1)
	assert.Equal(t, 0, r.Glyphs())

	for i := 0; i < 200; i++ {
		r.Step()
	}
	lines := r.Lines()
	require.Len(t, lines, 10)
	for _, line := range lines {
		assert.Equal(t, 20, len([]rune(line)))
		for _, c := range line {
			assert.True(t, c == ' ' || strings.ContainsRune(matrixCharset, c))
		}
	}
	assert.Greater(t, r.Glyphs(), 0)
}

func TestRainTrailsFade(t *testing.T) {
	r := NewRain(1, 100, 7)
	for i := 0; i < 60; i++ {
		r.Step()
	}
	assert.LessOrEqual(t, r.Glyphs(), matrixTrailFrames+1)
}

func TestRainResizeEmpty(t *testing.T) {
	r := NewRain(5, 5, 3)
	r.Resize(-1, -1)
	r.Step()
	assert.Empty(t, r.Lines())
}
