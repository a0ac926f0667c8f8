package audio

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

const bytesPerSample = 2 // s16le

// DecodeError reports a failure to interpret transport audio data.
type DecodeError struct {
	Op  string // stage that failed, e.g. "base64"
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("audio decode (%s): %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DecodeBase64 decodes a base64 speech payload into raw PCM bytes. Both
// padded and unpadded input are accepted since the API sends both forms.
// An empty string decodes to an empty slice. Invalid input returns a
// *DecodeError.
func DecodeBase64(s string) ([]byte, error) {
	if s == "" {
		return []byte{}, nil
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return data, nil
	}
	data, rawErr := base64.RawStdEncoding.DecodeString(s)
	if rawErr == nil {
		return data, nil
	}
	return nil, &DecodeError{Op: "base64", Err: err}
}

// DecodePCM16 interprets raw as interleaved s16le frames and de-interleaves
// them into per-channel float samples, each sample divided by 32768 so the
// result lies in [-1.0, 1.0). Non-positive sampleRate or channels fall back
// to the 24 kHz mono defaults. A trailing partial frame is dropped; zero
// complete frames yields an empty buffer.
func DecodePCM16(raw []byte, sampleRate, channels int) *Buffer {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if channels <= 0 {
		channels = DefaultChannels
	}
	frameBytes := bytesPerSample * channels
	frames := len(raw) / frameBytes

	buf := NewBuffer(sampleRate, channels, frames)
	for i := 0; i < frames; i++ {
		base := i * frameBytes
		for ch := 0; ch < channels; ch++ {
			u := binary.LittleEndian.Uint16(raw[base+ch*bytesPerSample:])
			buf.Data[ch][i] = float64(int16(u)) / 32768.0
		}
	}
	return buf
}
