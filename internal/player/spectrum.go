package player

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// IdleHint is drawn in the visualizer while nothing is playing.
const IdleHint = "♪ press space to play"

// BarWidthFactor scales the per-bin bar width so only the lower part of the spectrum is drawn.
const BarWidthFactor = 2.5

var eighths = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderBars draws data as vertical bars on a width x height grid.
//
// Bars are width/len(data)*2.5 cells wide with a one cell gap, tallest at 255.
func RenderBars(data []byte, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	grid := make([][]rune, height)
	for y := range grid {
		grid[y] = []rune(strings.Repeat(" ", width))
	}

	if len(data) > 0 {
		barWidth := float64(width) / float64(len(data)) * BarWidthFactor
		x := 0.0
		for _, v := range data {
			if int(x) >= width {
				break
			}

			// height in eighths of a cell
			level := int(float64(v) / 255 * float64(height*8))
			end := min(int(x+barWidth), width)
			if end <= int(x) {
				end = int(x) + 1
			}

			for col := int(x); col < end && col < width; col++ {
				fillColumn(grid, col, level)
			}
			x += barWidth + 1
		}
	}

	lines := make([]string, height)
	for y, row := range grid {
		lines[y] = string(row)
	}
	return strings.Join(lines, "\n")
}

func fillColumn(grid [][]rune, col, level int) {
	height := len(grid)
	for y := height - 1; y >= 0 && level > 0; y-- {
		if level >= 8 {
			grid[y][col] = eighths[8]
			level -= 8
			continue
		}
		grid[y][col] = eighths[level]
		level = 0
	}
}

// IdlePanel draws an empty visualizer with [IdleHint] centered.
func IdlePanel(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}

	hint := runewidth.Truncate(IdleHint, width, "")
	pad := (width - runewidth.StringWidth(hint)) / 2
	blank := strings.Repeat(" ", width)

	lines := make([]string, height)
	for y := range lines {
		lines[y] = blank
	}
	lines[height/2] = runewidth.FillRight(strings.Repeat(" ", pad)+hint, width)
	return strings.Join(lines, "\n")
}
