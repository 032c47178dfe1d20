package ui

// Presets are suggestion prompts offered by the generate form.
var Presets = []string{
	"Upbeat electronic dance track with driving bass",
	"Calm acoustic guitar ballad for a rainy evening",
	"Jazz, moody, slow",
	"Epic orchestral theme with soaring strings",
	"Lo-fi hip hop beat to study to",
	"Energetic rock anthem with distorted guitars",
}

// presetCycler hands out presets in order, wrapping at the end.
type presetCycler struct {
	next int
}

func (p *presetCycler) Next() string {
	s := Presets[p.next%len(Presets)]
	p.next = (p.next + 1) % len(Presets)
	return s
}
