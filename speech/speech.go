// Package speech turns text into spoken audio through the Gemini
// speech-generation API. Three interchangeable backends produce the same
// result shape: a REST call (default), a gRPC call through the
// generativelanguage proto client, and a WebSocket session against the live
// API. Callers hand the base64 payload to the audio package for decoding.
package speech

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/LLCo/JapaneseVoiceSpeaker/audio"
)

// Backend selects how Synthesize reaches the API.
type Backend string

const (
	BackendREST Backend = "rest"
	BackendGRPC Backend = "grpc"
	BackendLive Backend = "live"
)

// ParseBackend maps a flag value onto a Backend. Empty input selects REST.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rest":
		return BackendREST, nil
	case "grpc":
		return BackendGRPC, nil
	case "live", "ws", "websocket":
		return BackendLive, nil
	default:
		return "", fmt.Errorf("unknown speech backend %q (want rest, grpc, or live)", s)
	}
}

// SynthesizeRequest describes one utterance to generate.
type SynthesizeRequest struct {
	Text  string
	Voice string
	Model string
}

// SynthesizeResult is the uniform result of every backend: the audio as a
// base64 string plus the format the API declared for it.
type SynthesizeResult struct {
	AudioBase64 string
	MimeType    string
	SampleRate  int
}

// GenerationError reports a remote synthesis failure with an
// operator-readable reason.
type GenerationError struct {
	Backend Backend
	Reason  string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("speech generation (%s): %s: %v", e.Backend, e.Reason, e.Err)
	}
	return fmt.Sprintf("speech generation (%s): %s", e.Backend, e.Reason)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// RateFromMime extracts the declared sample rate from a speech part MIME
// type such as "audio/L16;codec=pcm;rate=24000". Missing or malformed rate
// parameters fall back to the 24 kHz default.
func RateFromMime(mime string) int {
	for _, param := range strings.Split(mime, ";") {
		param = strings.TrimSpace(param)
		if !strings.HasPrefix(param, "rate=") {
			continue
		}
		rate, err := strconv.Atoi(strings.TrimPrefix(param, "rate="))
		if err != nil || rate <= 0 {
			return audio.DefaultSampleRate
		}
		return rate
	}
	return audio.DefaultSampleRate
}

// normalizeModel ensures the "models/" prefix every API surface expects.
func normalizeModel(model string) string {
	if strings.HasPrefix(model, "models/") {
		return model
	}
	return "models/" + model
}
