package nihongovoice

import (
	"fmt"

	"github.com/LLCo/JapaneseVoiceSpeaker/internal/config"
	"github.com/LLCo/JapaneseVoiceSpeaker/speech"
)

// WithAPIKey sets the Google API Key for the client.
func WithAPIKey(key string) Option {
	return func(m *Model) error {
		m.apiKey = key
		if m.client == nil {
			m.client = &speech.Client{}
		}
		m.client.APIKey = key
		return nil
	}
}

// WithModel sets the speech model name to use.
func WithModel(name string) Option {
	return func(m *Model) error {
		if name != "" {
			m.modelName = name
		}
		return nil
	}
}

// WithVoice sets the prebuilt voice used for generation.
func WithVoice(name string) Option {
	return func(m *Model) error {
		if name != "" {
			m.voiceName = name
		}
		return nil
	}
}

// WithBackend selects the transport used to reach the speech API.
// Accepts "rest", "grpc", "live" (or aliases "ws", "websocket").
func WithBackend(name string) Option {
	return func(m *Model) error {
		backend, err := speech.ParseBackend(name)
		if err != nil {
			return err
		}
		m.backend = backend
		return nil
	}
}

// WithOutputDir sets the directory saved WAV files are written to.
// An empty value means the working directory.
func WithOutputDir(dir string) Option {
	return func(m *Model) error {
		m.outputDir = dir
		return nil
	}
}

// WithHistory enables the utterance log and optionally overrides its path.
// The store itself is opened during InitModel so option order does not
// matter.
func WithHistory(enabled bool, path ...string) Option {
	return func(m *Model) error {
		m.historyEnabled = enabled
		if len(path) > 0 && path[0] != "" {
			m.historyPath = path[0]
		}
		return nil
	}
}

// WithLogo enables or disables the logo display.
func WithLogo(showLogo bool) Option {
	return func(m *Model) error {
		m.showLogo = showLogo
		return nil
	}
}

// WithWaveform enables or disables the live oscilloscope block.
func WithWaveform(show bool) Option {
	return func(m *Model) error {
		m.showWave = show
		return nil
	}
}

// WithWaveformSize overrides the oscilloscope geometry.
func WithWaveformSize(width, height int) Option {
	return func(m *Model) error {
		if width > 0 && height > 0 {
			m.wave.SetSize(width, height)
		}
		return nil
	}
}

// WithLogMessages enables or disables the log messages display.
func WithLogMessages(show bool, maxEntries ...int) Option {
	return func(m *Model) error {
		m.showLogMessages = show

		// Set default maximum number of log messages if not specified
		if len(maxEntries) > 0 && maxEntries[0] > 0 {
			m.maxLogMessages = maxEntries[0]
		} else if m.maxLogMessages == 0 {
			m.maxLogMessages = 10 // Default to 10 entries
		}

		return nil
	}
}

// WithConfig applies file-based settings onto the model. Flags applied after
// this option still win, so pass it first.
func WithConfig(cfg *config.Config) Option {
	return func(m *Model) error {
		if cfg == nil {
			return fmt.Errorf("nil config")
		}
		if cfg.Speech.Model != "" {
			m.modelName = cfg.Speech.Model
		}
		if cfg.Speech.Voice != "" {
			m.voiceName = cfg.Speech.Voice
		}
		if cfg.Speech.Backend != "" {
			backend, err := speech.ParseBackend(cfg.Speech.Backend)
			if err != nil {
				return err
			}
			m.backend = backend
		}
		if cfg.Output.Dir != "" {
			m.outputDir = cfg.Output.Dir
		}
		m.historyEnabled = cfg.History.Enabled
		if cfg.History.Path != "" {
			m.historyPath = cfg.History.Path
		}
		if cfg.UI.WaveWidth > 0 && cfg.UI.WaveHeight > 0 {
			m.wave.SetSize(cfg.UI.WaveWidth, cfg.UI.WaveHeight)
		}
		return nil
	}
}
