package speech

import "strings"

// Voice describes one prebuilt speech voice. The API identifies voices by
// bare name; Character is the official one-word description shown in pickers.
type Voice struct {
	Name      string
	Character string
}

// prebuiltVoices is the cycle order used by the UI, default voice first.
var prebuiltVoices = []Voice{
	{Name: "Kore", Character: "Firm"},
	{Name: "Puck", Character: "Upbeat"},
	{Name: "Charon", Character: "Informative"},
	{Name: "Fenrir", Character: "Excitable"},
	{Name: "Aoede", Character: "Breezy"},
	{Name: "Leda", Character: "Youthful"},
	{Name: "Orus", Character: "Firm"},
	{Name: "Zephyr", Character: "Bright"},
}

// PrebuiltVoices returns the voices the TTS models ship with, in cycle order.
func PrebuiltVoices() []Voice {
	out := make([]Voice, len(prebuiltVoices))
	copy(out, prebuiltVoices)
	return out
}

// VoiceNames returns just the voice names, in the same order as
// PrebuiltVoices.
func VoiceNames() []string {
	names := make([]string, len(prebuiltVoices))
	for i, v := range prebuiltVoices {
		names[i] = v.Name
	}
	return names
}

// FindVoice looks a voice up by name, ignoring case.
func FindVoice(name string) (Voice, bool) {
	for _, v := range prebuiltVoices {
		if strings.EqualFold(v.Name, name) {
			return v, true
		}
	}
	return Voice{}, false
}
