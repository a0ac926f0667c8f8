package player

import (
	"errors"
	"testing"

	"github.com/gopxl/beep/v2"
)

// pump streams s to exhaustion in small chunks, discarding the output.
func pump(t *testing.T, s beep.Streamer) {
	t.Helper()
	out := make([][2]float64, 4)
	for i := 0; i < 10000; i++ {
		if n, ok := s.Stream(out); !ok || n == 0 {
			return
		}
	}
	t.Fatal("streamer did not drain")
}

func TestTapSamplesChronological(t *testing.T) {
	tap := NewTap(8)
	pump(t, tap.Capture(newBufferStream(monoBuffer(0.1, 0.2, 0.3))))

	got := tap.Samples(3)
	want := []float64{0.1, 0.2, 0.3}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Samples(3)[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTapZeroPaddedBeforeFill(t *testing.T) {
	tap := NewTap(8)
	pump(t, tap.Capture(newBufferStream(monoBuffer(0.5, 0.6, 0.7))))

	got := tap.Samples(8)
	if len(got) != 8 {
		t.Fatalf("len(Samples(8)) = %d, want 8", len(got))
	}
	for i := 0; i < 5; i++ {
		if got[i] != 0 {
			t.Errorf("Samples(8)[%d] = %v, want 0 (unwritten)", i, got[i])
		}
	}
	want := []float64{0.5, 0.6, 0.7}
	for i, w := range want {
		if got[5+i] != w {
			t.Errorf("Samples(8)[%d] = %v, want %v", 5+i, got[5+i], w)
		}
	}
}

func TestTapWrapAround(t *testing.T) {
	tap := NewTap(4)
	samples := make([]float64, 10)
	for i := range samples {
		samples[i] = float64(i) / 10.0
	}
	pump(t, tap.Capture(newBufferStream(monoBuffer(samples...))))

	got := tap.Samples(4)
	want := []float64{0.6, 0.7, 0.8, 0.9}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Samples(4)[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTapSamplesClampsRequest(t *testing.T) {
	tap := NewTap(4)
	if got := len(tap.Samples(100)); got != 4 {
		t.Errorf("len(Samples(100)) = %d, want 4", got)
	}
	if got := len(tap.Samples(-1)); got != 0 {
		t.Errorf("len(Samples(-1)) = %d, want 0", got)
	}
}

func TestTapWindowByteDomain(t *testing.T) {
	tap := NewTap(4)
	pump(t, tap.Capture(newBufferStream(monoBuffer(-1.0, 0.0, 1.0))))

	got := tap.Window(3)
	want := []byte{0, 128, 255}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Window(3)[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestTapWindowSilenceCentered(t *testing.T) {
	tap := NewTap(16)
	for i, b := range tap.Window(16) {
		if b != 128 {
			t.Fatalf("fresh tap Window[%d] = %d, want 128", i, b)
		}
	}
}

func TestTapStereoMonoMix(t *testing.T) {
	tap := NewTap(4)
	src := &staticStream{frames: [][2]float64{{1.0, 0.0}, {-0.5, -0.5}}}
	pump(t, tap.Capture(src))

	got := tap.Samples(2)
	if got[0] != 0.5 {
		t.Errorf("mix of [1.0, 0.0] = %v, want 0.5", got[0])
	}
	if got[1] != -0.5 {
		t.Errorf("mix of [-0.5, -0.5] = %v, want -0.5", got[1])
	}
}

func TestCaptureStreamPassthrough(t *testing.T) {
	tap := NewTap(8)
	s := tap.Capture(newBufferStream(monoBuffer(0.25, -0.25)))

	out := make([][2]float64, 2)
	n, ok := s.Stream(out)
	if n != 2 || !ok {
		t.Fatalf("Stream() = (%d, %v), want (2, true)", n, ok)
	}
	if out[0][0] != 0.25 || out[1][0] != -0.25 {
		t.Errorf("passthrough altered samples: %v", out)
	}
}

func TestCaptureStreamErrForwarded(t *testing.T) {
	wantErr := errors.New("upstream broke")
	s := NewTap(4).Capture(&staticStream{err: wantErr})
	if got := s.Err(); got != wantErr {
		t.Errorf("Err() = %v, want %v", got, wantErr)
	}
}

// staticStream plays a fixed set of stereo frames.
type staticStream struct {
	frames [][2]float64
	pos    int
	err    error
}

func (s *staticStream) Stream(samples [][2]float64) (n int, ok bool) {
	if s.pos >= len(s.frames) {
		return 0, false
	}
	for i := range samples {
		if s.pos >= len(s.frames) {
			return i, true
		}
		samples[i] = s.frames[s.pos]
		s.pos++
	}
	return len(samples), true
}

func (s *staticStream) Err() error { return s.err }
