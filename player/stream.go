package player

import (
	"github.com/gopxl/beep/v2"

	"github.com/LLCo/JapaneseVoiceSpeaker/audio"
)

// bufferStream adapts an audio.Buffer to beep.StreamSeeker. Mono buffers are
// duplicated onto both output channels; wider buffers map channel 0 to the
// left and channel 1 to the right, further channels are ignored.
type bufferStream struct {
	buf *audio.Buffer
	pos int
}

var _ beep.StreamSeeker = (*bufferStream)(nil)

func newBufferStream(buf *audio.Buffer) *bufferStream {
	return &bufferStream{buf: buf}
}

func (s *bufferStream) Stream(samples [][2]float64) (n int, ok bool) {
	frames := s.buf.Frames()
	if s.pos >= frames {
		return 0, false
	}
	mono := s.buf.Channels() == 1
	for i := range samples {
		if s.pos >= frames {
			return i, true
		}
		if mono {
			v := s.buf.Data[0][s.pos]
			samples[i][0] = v
			samples[i][1] = v
		} else {
			samples[i][0] = s.buf.Data[0][s.pos]
			samples[i][1] = s.buf.Data[1][s.pos]
		}
		s.pos++
	}
	return len(samples), true
}

func (s *bufferStream) Err() error { return nil }

func (s *bufferStream) Len() int { return s.buf.Frames() }

func (s *bufferStream) Position() int { return s.pos }

func (s *bufferStream) Seek(p int) error {
	if p < 0 {
		p = 0
	}
	if max := s.buf.Frames(); p > max {
		p = max
	}
	s.pos = p
	return nil
}
