package nihongovoice

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/LLCo/JapaneseVoiceSpeaker/audio"
	"github.com/LLCo/JapaneseVoiceSpeaker/history"
	"github.com/LLCo/JapaneseVoiceSpeaker/player"
	"github.com/LLCo/JapaneseVoiceSpeaker/settings"
	"github.com/LLCo/JapaneseVoiceSpeaker/speech"
	"github.com/LLCo/JapaneseVoiceSpeaker/waveform"
)

// senderName identifies who a transcript entry belongs to.
type senderName string

const (
	senderYou    senderName = "You"
	senderVoice  senderName = "Voice"
	senderSystem senderName = "System"
)

// Message represents a chat message in the transcript.
type Message struct {
	Sender  senderName // Who the entry belongs to (You, Voice, System)
	Content string     // The message text

	// Audio playback state for entries that carry synthesized speech.
	HasAudio    bool
	UtteranceID string
	IsPlaying   bool
	IsPlayed    bool

	Timestamp time.Time // When the entry was added
}

// utterance carries one synthesized line from the speech API through decode,
// playback, save and history.
type utterance struct {
	ID        string
	Text      string
	Voice     string
	ModelName string
	Result    *speech.SynthesizeResult
	Buffer    *audio.Buffer
	CreatedAt time.Time

	// Index of the transcript entry that owns the audio line.
	msgIndex int
}

// Model represents the state of the Bubble Tea application.
type Model struct {
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model
	wave     waveform.Model

	client    *speech.Client     // Speech API client
	playerCtl *player.Controller // Speaker output, one session at a time
	histStore *history.Store     // Utterance log, nil when history is disabled

	messages []Message // Stores structured chat messages for display
	err      error
	width    int
	height   int

	// Configuration
	apiKey    string         // Store API key if provided via option
	modelName string         // Config: which model generates speech
	voiceName string         // Config: which prebuilt voice to use
	backend   speech.Backend // Config: REST, gRPC or live transport
	outputDir string         // Config: where saved WAV files land ("" = cwd)

	historyEnabled bool
	historyPath    string

	// Recent texts loaded from the store; Ctrl+H steps through them.
	recallTexts []string
	recallIdx   int

	// UI settings
	showLogo        bool
	showWave        bool     // Whether to render the oscilloscope block
	showLogMessages bool     // Whether to show log messages or not
	maxLogMessages  int      // Maximum number of log messages to store
	logMessages     []string // Stores recent log messages

	// Activity flags that drive the status line.
	generating bool
	saving     bool
	quitting   bool

	// Last fully decoded utterance; replay and save target. Dropped when the
	// voice changes so stale audio is never replayed under a new voice.
	current *utterance

	// ID of the in-flight generation; results for any other ID are stale.
	pendingID string

	// Channel for goroutines to send messages back to the UI loop
	uiUpdateChan chan tea.Msg

	// New UI components
	settingsPanel *settings.Model

	// Focus management
	focusedComponent  string // One of "input", "settings"
	showSettingsPanel bool   // Whether to show the settings panel

	rootCtx       context.Context
	rootCtxCancel context.CancelFunc
}

// Option defines a functional option for configuring the Model.
type Option func(*Model) error

// --- Messages ---

// speechResultMsg carries a successful generation back to the UI loop.
type speechResultMsg struct {
	id     string
	text   string
	result *speech.SynthesizeResult
}

// speechFailedMsg signals a failed generation.
type speechFailedMsg struct {
	id  string
	err error
}

// playbackFinishedMsg signals that a playback session drained naturally.
// Posted through uiUpdateChan from the player completion callback.
type playbackFinishedMsg struct {
	id string
}

// saveCompletedMsg signals a WAV file was written.
type saveCompletedMsg struct {
	id   string
	path string
}

// saveFailedMsg signals the WAV export failed.
type saveFailedMsg struct {
	id  string
	err error
}

// historyLoadedMsg delivers recent utterances from the store.
type historyLoadedMsg struct {
	utterances []*history.Utterance
}

// historyFailedMsg signals the store could not be read.
type historyFailedMsg struct {
	err error
}

// logMessageMsg is for internal logging captured via interceptor.
// Posted through uiUpdateChan.
type logMessageMsg struct {
	message string
}
