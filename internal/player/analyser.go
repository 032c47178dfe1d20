package player

import (
	"encoding/binary"
	"math"
	"math/cmplx"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

const (
	DefaultFFTSize   = 256
	DefaultSmoothing = 0.8
	MinDecibels      = -100.0
	MaxDecibels      = -30.0
)

// sampleRing keeps the most recent mono samples written to the output.
type sampleRing struct {
	mu      sync.Mutex
	samples []float64
	write   int
}

func newSampleRing(size int) *sampleRing {
	return &sampleRing{samples: make([]float64, size)}
}

// WritePCM mixes interleaved s16le stereo frames down to mono and appends them.
func (r *sampleRing) WritePCM(p []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := 0; i+3 < len(p); i += 4 {
		l := int16(binary.LittleEndian.Uint16(p[i:]))
		rr := int16(binary.LittleEndian.Uint16(p[i+2:]))
		r.samples[r.write] = (float64(l) + float64(rr)) / (2 * 32768)
		r.write++
		if r.write >= len(r.samples) {
			r.write = 0
		}
	}
}

// Snapshot copies the ring into dst, oldest sample first.
func (r *sampleRing) Snapshot(dst []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	read := r.write
	for i := range dst {
		dst[i] = r.samples[read]
		read++
		if read >= len(r.samples) {
			read = 0
		}
	}
}

// Reset zeroes the ring, e.g. after a seek.
func (r *sampleRing) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.samples)
	r.write = 0
}

// FFTAnalyser computes a smoothed magnitude spectrum of a [sampleRing].
type FFTAnalyser struct {
	mu           sync.Mutex
	ring         *sampleRing
	fft          *fourier.FFT
	size         int
	smoothing    float64
	frame        []float64
	coeff        []complex128
	smoothed     []float64
	disconnected bool
	onDisconnect func()
}

func newFFTAnalyser(ring *sampleRing, size int, onDisconnect func()) *FFTAnalyser {
	if size <= 0 || size&(size-1) != 0 {
		size = DefaultFFTSize
	}
	return &FFTAnalyser{
		ring:         ring,
		fft:          fourier.NewFFT(size),
		size:         size,
		smoothing:    DefaultSmoothing,
		frame:        make([]float64, size),
		coeff:        make([]complex128, size/2+1),
		smoothed:     make([]float64, size/2),
		onDisconnect: onDisconnect,
	}
}

// FrequencyBinCount is half the FFT size.
func (a *FFTAnalyser) FrequencyBinCount() int { return a.size / 2 }

// ByteFrequencyData fills dst with the current spectrum mapped from [MinDecibels, MaxDecibels] to 0..255.
//
// Each call advances the smoothing by one frame. A disconnected analyser reports silence.
func (a *FFTAnalyser) ByteFrequencyData(dst []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.disconnected {
		clear(dst)
		return
	}

	a.ring.Snapshot(a.frame)
	window.Blackman(a.frame)
	a.fft.Coefficients(a.coeff, a.frame)

	bins := len(a.smoothed)
	for k := 0; k < bins; k++ {
		mag := cmplx.Abs(a.coeff[k]) / float64(a.size)
		a.smoothed[k] = a.smoothing*a.smoothed[k] + (1-a.smoothing)*mag
		if k < len(dst) {
			dst[k] = decibelsToByte(a.smoothed[k])
		}
	}
	if len(dst) > bins {
		clear(dst[bins:])
	}
}

// Disconnect detaches the analyser from its source.
func (a *FFTAnalyser) Disconnect() {
	a.mu.Lock()
	if a.disconnected {
		a.mu.Unlock()
		return
	}
	a.disconnected = true
	cb := a.onDisconnect
	a.mu.Unlock()

	if cb != nil {
		cb()
	}
}

func decibelsToByte(mag float64) byte {
	if mag <= 0 {
		return 0
	}
	db := 20 * math.Log10(mag)
	scaled := 255 * (db - MinDecibels) / (MaxDecibels - MinDecibels)
	switch {
	case scaled <= 0 || math.IsNaN(scaled):
		return 0
	case scaled >= 255:
		return 255
	}
	return byte(scaled)
}
