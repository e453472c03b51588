package effects

import (
	"math/rand"
	"strings"
)

// Rain is the falling-character background. It owns its own state and
// shares nothing with the rest of the interface.
type Rain struct {
	cols  int
	rows  int
	drops []int
	cells [][]rune
	age   [][]int
	rng   *rand.Rand
}

// NewRain creates a rain field of the given size.
func NewRain(cols, rows int, seed int64) *Rain {
	r := &Rain{rng: rand.New(rand.NewSource(seed))}
	r.Resize(cols, rows)
	return r
}

// Resize clears the field and restarts every column at the top.
func (r *Rain) Resize(cols, rows int) {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	r.cols, r.rows = cols, rows
	r.drops = make([]int, cols)
	for i := range r.drops {
		r.drops[i] = 1
	}
	r.cells = make([][]rune, rows)
	r.age = make([][]int, rows)
	for y := range r.cells {
		r.cells[y] = make([]rune, cols)
		r.age[y] = make([]int, cols)
	}
}

// Step advances one frame: old glyphs fade, each column drops a new glyph,
// and columns past the bottom restart at random.
func (r *Rain) Step() {
	for y := range r.cells {
		for x := range r.cells[y] {
			if r.cells[y][x] == 0 {
				continue
			}
			r.age[y][x]++
			if r.age[y][x] > matrixTrailFrames {
				r.cells[y][x] = 0
				r.age[y][x] = 0
			}
		}
	}
	for x := range r.drops {
		y := r.drops[x] - 1
		if y >= 0 && y < r.rows {
			r.cells[y][x] = rune(matrixCharset[r.rng.Intn(len(matrixCharset))])
			r.age[y][x] = 0
		}
		if r.drops[x] > r.rows && r.rng.Float64() < matrixResetChance {
			r.drops[x] = 0
		}
		r.drops[x]++
	}
}

// Lines renders the field, blanks as spaces.
func (r *Rain) Lines() []string {
	lines := make([]string, r.rows)
	for y := range r.cells {
		var b strings.Builder
		for _, c := range r.cells[y] {
			if c == 0 {
				b.WriteByte(' ')
				continue
			}
			b.WriteRune(c)
		}
		lines[y] = b.String()
	}
	return lines
}

// Glyphs counts the visible glyphs.
func (r *Rain) Glyphs() int {
	n := 0
	for y := range r.cells {
		for _, c := range r.cells[y] {
			if c != 0 {
				n++
			}
		}
	}
	return n
}
