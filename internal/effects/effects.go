// Package effects holds the cosmetic pieces of the interface: the boot
// sequence, the loading bar, the clock and the matrix rain.
package effects

import (
	"strings"
	"time"
)

// Default timings.
const (
	DefaultBootDelay   = 4500 * time.Millisecond
	ClockInterval      = time.Second
	LoadingFillTime    = time.Second
	MatrixFrameTime    = 35 * time.Millisecond
	matrixTrailFrames  = 18
	matrixResetChance  = 0.025
	matrixCharset      = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789@#$%^&*()"
	loadingLabel       = "LOADING..."
	defaultLoadingBars = 30
)

// FormatClock renders t as 24-hour UTC time with a literal suffix.
func FormatClock(t time.Time) string {
	return t.UTC().Format("15:04:05") + " UTC"
}

// Welcome is logged once on startup.
const Welcome = `
██████╗  █████╗ ██████╗ ██╗  ██╗███╗   ██╗███████╗████████╗
██╔══██╗██╔══██╗██╔══██╗██║ ██╔╝████╗  ██║██╔════╝╚══██╔══╝
██║  ██║███████║██████╔╝█████╔╝ ██╔██╗ ██║█████╗     ██║
██║  ██║██╔══██║██╔══██╗██╔═██╗ ██║╚██╗██║██╔══╝     ██║
██████╔╝██║  ██║██║  ██║██║  ██╗██║ ╚████║███████╗   ██║
╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝╚═╝  ╚═╝╚═╝  ╚═══╝╚══════╝   ╚═╝

ACCESS GRANTED - Welcome to the Darknet Archive
System Status: OPERATIONAL
Security Level: MAXIMUM
Connection: ENCRYPTED

Use keyboard navigation for optimal security.
`

// BannerLines returns the ASCII banner without the trailing message.
func BannerLines() []string {
	var lines []string
	for _, line := range strings.Split(Welcome, "\n") {
		if strings.TrimSpace(line) == "" {
			if len(lines) > 0 {
				break
			}
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// BootLines is the boot sequence transcript.
var BootLines = []string{
	"INITIALIZING SECURE TERMINAL...",
	"LOADING KERNEL MODULES.......... [OK]",
	"MOUNTING ENCRYPTED VOLUMES...... [OK]",
	"ESTABLISHING PROXY CHAIN........ [OK]",
	"VERIFYING NODE SIGNATURES....... [OK]",
	"SYNCING ARCHIVE INDEX........... [OK]",
	"ACCESS GRANTED",
}

// BootFrame returns the boot lines revealed after elapsed of a boot that
// lasts total. All lines show by the time 80% of the boot has passed.
func BootFrame(elapsed, total time.Duration) []string {
	if total <= 0 || elapsed >= total {
		return BootLines
	}
	if elapsed < 0 {
		elapsed = 0
	}
	window := total * 4 / 5
	n := int(float64(len(BootLines))*float64(elapsed)/float64(window)) + 1
	if n > len(BootLines) {
		n = len(BootLines)
	}
	return BootLines[:n]
}

// LoadingProgress returns how full the loading bar is after elapsed, with
// ease-in-out over LoadingFillTime.
func LoadingProgress(elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	if elapsed >= LoadingFillTime {
		return 1
	}
	x := float64(elapsed) / float64(LoadingFillTime)
	if x < 0.5 {
		return 2 * x * x
	}
	return 1 - 2*(1-x)*(1-x)
}
