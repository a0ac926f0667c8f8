package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const (
	wavHeaderSize    = 44
	wavBitsPerSample = 16
)

// EncodingError reports a failure to render a buffer as a WAV file.
type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("wav encode: %v", e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// EncodeWAV renders buf as a complete 16-bit PCM WAV file image. Channels
// re-interleave in channel order. Encoding is deterministic: the same buffer
// always produces byte-identical output. A zero-frame buffer encodes to a
// valid header with an empty data chunk.
func EncodeWAV(buf *Buffer) ([]byte, error) {
	if buf == nil {
		return nil, &EncodingError{Err: errors.New("nil buffer")}
	}
	channels := buf.Channels()
	if channels == 0 {
		return nil, &EncodingError{Err: errors.New("buffer has no channels")}
	}
	sampleRate := buf.SampleRate
	if sampleRate <= 0 {
		return nil, &EncodingError{Err: fmt.Errorf("invalid sample rate %d", sampleRate)}
	}

	frames := buf.Frames()
	dataSize := frames * channels * bytesPerSample
	out := make([]byte, 0, wavHeaderSize+dataSize)
	out = append(out, WavHeader(dataSize, channels, sampleRate, wavBitsPerSample)...)

	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			out = binary.LittleEndian.AppendUint16(out, uint16(quantizeSample(buf.Data[ch][i])))
		}
	}
	return out, nil
}

// quantizeSample clamps s to [-1, 1] and requantizes to int16 with
// round-to-nearest. Negative samples scale by 32768 and non-negative ones by
// 32767 since int16 has one more negative value than positive.
func quantizeSample(s float64) int16 {
	if s < -1 {
		s = -1
	} else if s > 1 {
		s = 1
	}
	if s < 0 {
		return int16(math.Round(s * 32768))
	}
	return int16(math.Round(s * 32767))
}

// WavHeader builds the canonical 44-byte WAV header for the given
// parameters. dataSize is the size of the raw audio data chunk only.
func WavHeader(dataSize, numChannels, sampleRate, bitsPerSample int) []byte {
	header := make([]byte, wavHeaderSize)
	totalSize := uint32(dataSize + 36) // 36 = bytes remaining after ChunkSize field (44 - 8)
	byteRate := uint32(sampleRate * numChannels * bitsPerSample / 8)
	blockAlign := uint16(numChannels * bitsPerSample / 8)

	// RIFF Header ("RIFF" chunk descriptor)
	copy(header[0:4], []byte("RIFF"))
	binary.LittleEndian.PutUint32(header[4:8], totalSize) // ChunkSize
	copy(header[8:12], []byte("WAVE"))                    // Format

	// Format Subchunk ("fmt " subchunk)
	copy(header[12:16], []byte("fmt "))              // Subchunk1ID
	binary.LittleEndian.PutUint32(header[16:20], 16) // Subchunk1Size for PCM
	binary.LittleEndian.PutUint16(header[20:22], 1)  // AudioFormat 1 for PCM
	binary.LittleEndian.PutUint16(header[22:24], uint16(numChannels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], byteRate)
	binary.LittleEndian.PutUint16(header[32:34], blockAlign)
	binary.LittleEndian.PutUint16(header[34:36], uint16(bitsPerSample))

	// Data Subchunk ("data" subchunk)
	copy(header[36:40], []byte("data"))                            // Subchunk2ID
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataSize)) // Subchunk2Size

	return header
}
