package speech

import (
	"encoding/base64"
	"fmt"

	"github.com/LLCo/JapaneseVoiceSpeaker/audio"
)

// Wire types shared by the REST and live backends. Field names follow the
// generativelanguage JSON surface, which is camelCase on both directions.

// Content is a single conversational turn.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts,omitempty"`
}

// Part is one piece of a turn. Text carries the request; InlineData carries
// the synthesized audio on the way back.
type Part struct {
	Text       string `json:"text,omitempty"`
	InlineData *Blob  `json:"inlineData,omitempty"`
}

// Blob is base64 bytes tagged with their MIME type.
type Blob struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

// GenerationConfig selects the output modality and voice.
type GenerationConfig struct {
	ResponseModalities []string      `json:"responseModalities,omitempty"`
	SpeechConfig       *SpeechConfig `json:"speechConfig,omitempty"`
}

// SpeechConfig wraps the voice selection.
type SpeechConfig struct {
	VoiceConfig *VoiceConfig `json:"voiceConfig,omitempty"`
}

// VoiceConfig selects a prebuilt voice.
type VoiceConfig struct {
	PrebuiltVoiceConfig *PrebuiltVoiceConfig `json:"prebuiltVoiceConfig,omitempty"`
}

// PrebuiltVoiceConfig names one of the stock voices.
type PrebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName,omitempty"`
}

// audioConfig builds the generation config every backend sends: audio out,
// one named voice.
func audioConfig(voice string) *GenerationConfig {
	cfg := &GenerationConfig{ResponseModalities: []string{"AUDIO"}}
	if voice != "" {
		cfg.SpeechConfig = &SpeechConfig{
			VoiceConfig: &VoiceConfig{
				PrebuiltVoiceConfig: &PrebuiltVoiceConfig{VoiceName: voice},
			},
		}
	}
	return cfg
}

// joinBase64Chunks merges per-message base64 payloads into one string.
// Chunks may arrive padded, so naive concatenation would corrupt the
// stream; each chunk is decoded and the raw bytes re-encoded as a whole.
func joinBase64Chunks(chunks []string) (string, error) {
	if len(chunks) == 0 {
		return "", nil
	}
	if len(chunks) == 1 {
		// Still decode to validate, but avoid re-encoding the common case.
		if _, err := audio.DecodeBase64(chunks[0]); err != nil {
			return "", fmt.Errorf("invalid audio chunk: %w", err)
		}
		return chunks[0], nil
	}
	var raw []byte
	for i, chunk := range chunks {
		b, err := audio.DecodeBase64(chunk)
		if err != nil {
			return "", fmt.Errorf("invalid audio chunk %d of %d: %w", i+1, len(chunks), err)
		}
		raw = append(raw, b...)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}
