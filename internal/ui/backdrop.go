package ui

import (
	"math/rand"
	"strings"
)

// DefaultParticles is the number of notes drifting behind the header.
const DefaultParticles = 18

// Backdrop coordinates are in virtual pixels; each terminal cell covers cellWidth x cellHeight.
const (
	cellWidth  = 8
	cellHeight = 16

	bottomMargin = 40
	respawnY     = -30
	sideMargin   = 40
	wrapInset    = 20
)

var noteGlyphs = []rune{'♫', '♪', '♬', '♩'}

// Particle is one drifting note.
type Particle struct {
	X, Y  float64
	Speed float64
	Drift float64
	Alpha float64
	Glyph rune
}

// Backdrop animates notes falling slowly across a surface.
type Backdrop struct {
	cols, rows int
	width      float64
	height     float64
	particles  []Particle
	rng        *rand.Rand
	scattered  bool
}

// NewBackdrop seeds count particles on a cols x rows cell surface.
//
// Positions are randomized once the surface has an area, so a backdrop built before the terminal size is
// known is scattered on its first real Resize.
func NewBackdrop(cols, rows, count int, rng *rand.Rand) *Backdrop {
	if count < 0 {
		count = DefaultParticles
	}
	b := &Backdrop{rng: rng}

	b.particles = make([]Particle, count)
	for i := range b.particles {
		b.particles[i] = Particle{
			Speed: 0.3 + rng.Float64()*0.5,
			Drift: (rng.Float64() - 0.5) * 0.2,
			Glyph: noteGlyphs[rng.Intn(len(noteGlyphs))],
			Alpha: 0.12 + rng.Float64()*0.18,
		}
	}
	b.Resize(cols, rows)
	return b
}

// Resize changes the surface. Scattered particles keep their positions and wrap on the next step.
func (b *Backdrop) Resize(cols, rows int) {
	b.cols, b.rows = max(cols, 0), max(rows, 0)
	b.width = float64(b.cols * cellWidth)
	b.height = float64(b.rows * cellHeight)

	if !b.scattered && b.width > 0 && b.height > 0 {
		b.scatter()
	}
}

func (b *Backdrop) scatter() {
	for i := range b.particles {
		b.particles[i].X = b.rng.Float64() * b.width
		b.particles[i].Y = b.rng.Float64() * b.height
	}
	b.scattered = true
}

// Step advances every particle by one frame.
func (b *Backdrop) Step() {
	for i := range b.particles {
		p := &b.particles[i]
		p.Y += p.Speed
		p.X += p.Drift

		if p.Y > b.height+bottomMargin {
			p.Y = respawnY
			p.X = b.rng.Float64() * b.width
		}
		if p.X < -sideMargin {
			p.X = b.width + wrapInset
		}
		if p.X > b.width+sideMargin {
			p.X = -wrapInset
		}
	}
}

// cell maps a particle to the grid; ok is false while it is off surface.
func (b *Backdrop) cell(p Particle) (col, row int, ok bool) {
	if p.X < 0 || p.Y < 0 {
		return 0, 0, false
	}
	col, row = int(p.X)/cellWidth, int(p.Y)/cellHeight
	return col, row, col < b.cols && row < b.rows
}

// View renders the surface. Brighter particles use the note style, dimmer ones the faint style.
func (b *Backdrop) View(p *Palette) string {
	if b.cols == 0 || b.rows == 0 {
		return ""
	}

	grid := make([][]string, b.rows)
	for y := range grid {
		grid[y] = make([]string, b.cols)
		for x := range grid[y] {
			grid[y][x] = " "
		}
	}

	for _, pt := range b.particles {
		col, row, ok := b.cell(pt)
		if !ok {
			continue
		}
		style := p.faintNote
		if pt.Alpha >= 0.21 {
			style = p.note
		}
		grid[row][col] = style.Render(string(pt.Glyph))
	}

	lines := make([]string, b.rows)
	for y, row := range grid {
		lines[y] = strings.Join(row, "")
	}
	return strings.Join(lines, "\n")
}
