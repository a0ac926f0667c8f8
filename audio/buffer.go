// Package audio implements the local audio pipeline: base64 transport
// decoding, s16le PCM decoding into float sample buffers, and WAV file
// encoding. It is UI-free and safe to use from any goroutine as long as a
// Buffer is not mutated while being read.
package audio

import "time"

// Default stream parameters for speech API payloads that arrive without a
// declared format.
const (
	DefaultSampleRate = 24000
	DefaultChannels   = 1
)

// Buffer holds decoded PCM audio as per-channel float samples in [-1, 1].
// Data has one slice per channel; all channel slices have equal length.
type Buffer struct {
	SampleRate int
	Data       [][]float64
}

// NewBuffer allocates a zeroed buffer with the given shape.
func NewBuffer(sampleRate, channels, frames int) *Buffer {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if channels <= 0 {
		channels = DefaultChannels
	}
	data := make([][]float64, channels)
	for ch := range data {
		data[ch] = make([]float64, frames)
	}
	return &Buffer{SampleRate: sampleRate, Data: data}
}

// Channels reports the number of channels.
func (b *Buffer) Channels() int {
	if b == nil {
		return 0
	}
	return len(b.Data)
}

// Frames reports the number of sample frames per channel.
func (b *Buffer) Frames() int {
	if b == nil || len(b.Data) == 0 {
		return 0
	}
	return len(b.Data[0])
}

// Empty reports whether the buffer holds no complete frames.
func (b *Buffer) Empty() bool {
	return b.Frames() == 0
}

// Duration reports the playback length at the buffer's sample rate.
func (b *Buffer) Duration() time.Duration {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.SampleRate)
}

// Seconds reports the playback length as a float, frames over sample rate.
func (b *Buffer) Seconds() float64 {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.SampleRate)
}

// ChannelData returns the sample slice for one channel, or nil when the
// channel does not exist.
func (b *Buffer) ChannelData(ch int) []float64 {
	if b == nil || ch < 0 || ch >= len(b.Data) {
		return nil
	}
	return b.Data[ch]
}
