package ui

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestIsQuit(t *testing.T) {
	assert.True(t, isQuit(tea.KeyMsg{Type: tea.KeyCtrlC}))
	assert.True(t, isQuit(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}))
	assert.False(t, isQuit(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}}))
}

func TestIsEnter(t *testing.T) {
	assert.True(t, isEnter(tea.KeyMsg{Type: tea.KeyEnter}))
	assert.False(t, isEnter(tea.KeyMsg{Type: tea.KeySpace}))
}

func TestIsBack(t *testing.T) {
	assert.True(t, isBack(tea.KeyMsg{Type: tea.KeyEsc}))
	assert.False(t, isBack(tea.KeyMsg{Type: tea.KeyEnter}))
}

func TestIsDown(t *testing.T) {
	assert.True(t, isDown(tea.KeyMsg{Type: tea.KeyDown}))
	assert.False(t, isDown(tea.KeyMsg{Type: tea.KeyUp}))
	assert.False(t, isDown(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}))
}

func TestIsUp(t *testing.T) {
	assert.True(t, isUp(tea.KeyMsg{Type: tea.KeyUp}))
	assert.False(t, isUp(tea.KeyMsg{Type: tea.KeyDown}))
}

func TestKeyMapMatchesArrowBindings(t *testing.T) {
	km := defaultKeyMap()
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyUp}, km.Up))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyDown}, km.Down))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyEnter}, km.Enter))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyEsc}, km.Back))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}}, km.Refresh))
	assert.Len(t, km.bindings(), 7)
}

func TestBarFoldsArrowsIntoOneEntry(t *testing.T) {
	bar := defaultKeyMap().bar()
	assert.Equal(t, "↑/↓", bar[0].Help().Key)
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyDown}, bar[0]))
	assert.Len(t, bar, 6)
}
