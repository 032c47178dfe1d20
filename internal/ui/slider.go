package ui

import (
	"fmt"
	"strings"

	"github.com/desertthunder/tunesmith/internal/shared"
)

// DurationSlider is the integer duration control of the generate form.
type DurationSlider struct {
	min, max, step int
	value          int
}

// NewDurationSlider builds a slider from the configured bounds.
func NewDurationSlider(cfg shared.GenerationConfig) DurationSlider {
	s := DurationSlider{min: cfg.MinDuration, max: cfg.MaxDuration, step: cfg.Step}
	if s.min <= 0 {
		s.min = 10
	}
	if s.max < s.min {
		s.max = s.min
	}
	if s.step <= 0 {
		s.step = 5
	}
	s.Set(cfg.DefaultDuration)
	return s
}

func (s DurationSlider) Value() int { return s.value }

// Set clamps v into range.
func (s *DurationSlider) Set(v int) {
	s.value = min(max(v, s.min), s.max)
}

func (s *DurationSlider) Increase() { s.Set(s.value + s.step) }
func (s *DurationSlider) Decrease() { s.Set(s.value - s.step) }

// View renders a track of width cells with a knob at the current value.
func (s DurationSlider) View(width int) string {
	if width < 3 {
		return fmt.Sprintf("%ds", s.value)
	}
	pos := 0
	if s.max > s.min {
		pos = (s.value - s.min) * (width - 1) / (s.max - s.min)
	}
	track := strings.Repeat("─", pos) + "●" + strings.Repeat("─", width-1-pos)
	return fmt.Sprintf("%s %ds", track, s.value)
}
