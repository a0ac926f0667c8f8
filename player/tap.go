package player

import (
	"sync"

	"github.com/gopxl/beep/v2"
)

// Tap is a fixed-capacity ring buffer of the most recent mono samples that
// passed through the playback graph. One tap is shared across sessions; each
// session routes its source through Capture. Reads and writes may come from
// different goroutines.
type Tap struct {
	mu   sync.Mutex
	buf  []float64
	pos  int
	size int
}

// NewTap returns a tap holding the last size samples.
func NewTap(size int) *Tap {
	if size <= 0 {
		size = DefaultTapSize
	}
	return &Tap{
		buf:  make([]float64, size),
		size: size,
	}
}

// Capture wraps s so everything it streams is recorded into the tap while
// passing through unchanged.
func (t *Tap) Capture(s beep.Streamer) beep.Streamer {
	return &captureStream{tap: t, s: s}
}

type captureStream struct {
	tap *Tap
	s   beep.Streamer
}

func (c *captureStream) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = c.s.Stream(samples)
	if n > 0 {
		c.tap.record(samples[:n])
	}
	return n, ok
}

func (c *captureStream) Err() error { return c.s.Err() }

// record captures a mono mix of the streamed frames.
func (t *Tap) record(samples [][2]float64) {
	t.mu.Lock()
	for i := range samples {
		t.buf[t.pos] = (samples[i][0] + samples[i][1]) / 2
		t.pos = (t.pos + 1) % t.size
	}
	t.mu.Unlock()
}

// Samples returns the last n samples in chronological order. Positions that
// have not been written yet read as zero, so a fresh tap yields silence.
func (t *Tap) Samples(n int) []float64 {
	if n > t.size {
		n = t.size
	}
	if n < 0 {
		n = 0
	}
	out := make([]float64, n)
	t.mu.Lock()
	start := (t.pos - n + t.size) % t.size
	for i := 0; i < n; i++ {
		out[i] = t.buf[(start+i)%t.size]
	}
	t.mu.Unlock()
	return out
}

// Window returns the last n samples mapped to the byte domain used by the
// oscilloscope: 0..255 with 128 as silence.
func (t *Tap) Window(n int) []byte {
	samples := t.Samples(n)
	out := make([]byte, len(samples))
	for i, s := range samples {
		v := (s + 1.0) * 128.0
		if v < 0 {
			v = 0
		} else if v > 255 {
			v = 255
		}
		out[i] = byte(v)
	}
	return out
}
