// Package nihongovoice implements an interactive terminal app that turns
// Japanese text into speech. Each line typed is synthesized by the Gemini
// speech API, decoded to PCM, played through the local speaker with a live
// waveform view, and can be replayed or exported as a WAV file.
package nihongovoice

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/LLCo/JapaneseVoiceSpeaker/audio"
	"github.com/LLCo/JapaneseVoiceSpeaker/history"
	"github.com/LLCo/JapaneseVoiceSpeaker/player"
	"github.com/LLCo/JapaneseVoiceSpeaker/settings"
	"github.com/LLCo/JapaneseVoiceSpeaker/speech"
	"github.com/LLCo/JapaneseVoiceSpeaker/waveform"
)

// New creates a new Model instance with default settings and applies options.
func New(opts ...Option) *Model {
	ta := textarea.New()
	ta.Placeholder = "日本語のテキストを入力して Enter..."
	ta.Focus()
	ta.Prompt = "┃ "
	ta.CharLimit = 0
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)
	// Ctrl+V cycles the voice, so the paste binding has to go.
	ta.KeyMap.Paste.SetEnabled(false)
	// Ctrl+H recalls history; leave only backspace for character deletion.
	ta.KeyMap.DeleteCharacterBackward.SetKeys("backspace")
	// Ctrl+W toggles the waveform, so word deletion keeps only alt+backspace.
	ta.KeyMap.DeleteWordBackward.SetKeys("alt+backspace")

	vp := viewport.New(50, 5)
	vp.SetContent("Initializing...")

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	// Create settings panel
	settingsPanel := settings.New()

	m := &Model{
		textarea:        ta,
		viewport:        vp,
		spinner:         s,
		wave:            waveform.New(),
		messages:        []Message{},
		client:          &speech.Client{},
		modelName:       DefaultModel,
		voiceName:       DefaultVoice,
		backend:         speech.BackendREST,
		showLogo:        true,
		showWave:        true,
		logMessages:     []string{},             // Initialize empty log messages
		maxLogMessages:  10,                     // Default to storing 10 log messages
		showLogMessages: false,                  // Default log messages display off
		uiUpdateChan:    make(chan tea.Msg, 10), // Initialize channel with a small buffer

		// New UI components
		settingsPanel: &settingsPanel,

		// Focus management
		focusedComponent:  "input", // Start with input focused
		showSettingsPanel: false,   // Settings panel hidden by default

		// History defaults to disabled, enabled via options
		historyEnabled: false,
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			log.Printf("Warning: Error applying option: %v", err)
		}
	}

	return m
}

// InitModel initializes the Bubble Tea model details before starting the program.
func (m *Model) InitModel() (tea.Model, error) {
	if m.client == nil {
		m.client = &speech.Client{}
	}
	m.client.APIKey = m.apiKey
	m.client.Backend = m.backend

	m.rootCtx, m.rootCtxCancel = context.WithCancel(context.Background())
	if err := m.client.InitClient(m.rootCtx); err != nil {
		return nil, err
	}

	m.playerCtl = player.NewController(audio.DefaultSampleRate)
	m.wave.SetFeed(m.playerCtl)

	if m.historyEnabled {
		path := m.historyPath
		if path == "" {
			path = defaultHistoryPath()
		}
		store, err := history.Open(path)
		if err != nil {
			log.Printf("Warning: Failed to open utterance history: %v", err)
			m.historyEnabled = false
		} else {
			m.histStore = store
			m.historyPath = path
		}
	}

	// Set up log interceptor if log messages are enabled
	if m.showLogMessages {
		interceptor := &logInterceptor{
			ch:       m.uiUpdateChan,
			original: log.Writer(),
		}
		log.SetOutput(interceptor)
		log.Println("Log messages display enabled")
	}

	// Make sure textarea has focus from the beginning
	m.textarea.Focus()
	m.focusedComponent = "input"

	m.syncSettingsPanel()

	// Log configuration details
	log.Printf("Using model: %s", m.modelName)
	log.Printf("Voice: %s", m.voiceName)
	log.Printf("Backend: %s", m.backend)
	log.Printf("Audio format: %s at %d Hz", audioFormat, audio.DefaultSampleRate)
	if m.outputDir != "" {
		log.Printf("Output directory: %s", m.outputDir)
	}
	log.Printf("History enabled: %t (%s)", m.historyEnabled, m.historyPath)
	log.Printf("Show logo: %t", m.showLogo)
	log.Printf("Show waveform: %t", m.showWave)
	log.Printf("Show log messages: %t (max %d)", m.showLogMessages, m.maxLogMessages)

	m.messages = append(m.messages, formatMessage(senderSystem,
		"Ready. Type Japanese text and press Enter to hear it."))

	return m, nil
}

// listenForUIUpdatesCmd returns a command that listens on the uiUpdateChan
// and forwards messages to the main Bubble Tea update loop.
func (m *Model) listenForUIUpdatesCmd() tea.Cmd {
	return func() tea.Msg {
		// Blocks until a message is available on the channel
		msg := <-m.uiUpdateChan
		return msg
	}
}

// Init is the initial command called by Bubble Tea.
func (m Model) Init() tea.Cmd {
	// Ensure the textarea has focus from the very beginning
	m.textarea.Focus()

	cmds := []tea.Cmd{
		m.spinner.Tick,
		m.listenForUIUpdatesCmd(), // Starts listening for background messages
	}
	// Surface the recent utterances right away so earlier lines can be
	// recalled without an extra keypress.
	if m.histStore != nil {
		cmds = append(cmds, m.loadHistoryCmd())
	}
	return tea.Batch(cmds...)
}

// generateCmd performs one speech generation round trip off the UI loop. The
// utterance ID travels with the result so late arrivals can be dropped.
func (m *Model) generateCmd(id, text string) tea.Cmd {
	client := m.client
	req := speech.SynthesizeRequest{
		Text:  text,
		Voice: m.voiceName,
		Model: m.modelName,
	}
	rootCtx := m.rootCtx
	if rootCtx == nil {
		rootCtx = context.Background()
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(rootCtx, synthesizeTimeout)
		defer cancel()
		result, err := client.Synthesize(ctx, req)
		if err != nil {
			return speechFailedMsg{id: id, err: err}
		}
		return speechResultMsg{id: id, text: text, result: result}
	}
}

// saveCmd encodes the utterance as WAV and writes it under the output dir.
func (m *Model) saveCmd(utt *utterance) tea.Cmd {
	dir := m.outputDir
	return func() tea.Msg {
		data, err := audio.EncodeWAV(utt.Buffer)
		if err != nil {
			return saveFailedMsg{id: utt.ID, err: err}
		}
		path := downloadFilename(time.Now())
		if dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return saveFailedMsg{id: utt.ID, err: err}
			}
			path = filepath.Join(dir, path)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return saveFailedMsg{id: utt.ID, err: err}
		}
		log.Printf("Saved WAV: %s (%d bytes)", path, len(data))
		return saveCompletedMsg{id: utt.ID, path: path}
	}
}

// recordHistoryCmd appends the utterance to the store in the background.
func (m *Model) recordHistoryCmd(utt *utterance) tea.Cmd {
	store := m.histStore
	if store == nil {
		return nil
	}
	rootCtx := m.rootCtx
	if rootCtx == nil {
		rootCtx = context.Background()
	}
	entry := &history.Utterance{
		ID:          utt.ID,
		Text:        utt.Text,
		Voice:       utt.Voice,
		Model:       utt.ModelName,
		SampleRate:  utt.Buffer.SampleRate,
		SampleCount: utt.Buffer.Frames(),
		Duration:    utt.Buffer.Duration(),
		CreatedAt:   utt.CreatedAt,
	}
	return func() tea.Msg {
		if err := store.Add(rootCtx, entry); err != nil {
			return logMessageMsg{message: fmt.Sprintf("history: %v", err)}
		}
		return nil
	}
}

// loadHistoryCmd fetches the most recent utterances from the store.
func (m *Model) loadHistoryCmd() tea.Cmd {
	store := m.histStore
	rootCtx := m.rootCtx
	if rootCtx == nil {
		rootCtx = context.Background()
	}
	return func() tea.Msg {
		utterances, err := store.Recent(rootCtx, 10)
		if err != nil {
			return historyFailedMsg{err: err}
		}
		return historyLoadedMsg{utterances: utterances}
	}
}

// handleSpeechResult decodes a finished generation, records the utterance and
// starts playback.
func (m *Model) handleSpeechResult(msg speechResultMsg) []tea.Cmd {
	raw, err := audio.DecodeBase64(msg.result.AudioBase64)
	if err != nil {
		m.err = err
		m.messages = append(m.messages, formatError(err))
		m.refreshTranscript()
		return nil
	}
	buf := audio.DecodePCM16(raw, msg.result.SampleRate, audio.DefaultChannels)
	if buf.Empty() {
		err := fmt.Errorf("generation returned no playable audio")
		m.err = err
		m.messages = append(m.messages, formatError(err))
		m.refreshTranscript()
		return nil
	}
	log.Printf("Decoded %d frames at %d Hz (%.2fs) for %q",
		buf.Frames(), buf.SampleRate, buf.Seconds(), msg.text)

	utt := &utterance{
		ID:        msg.id,
		Text:      msg.text,
		Voice:     m.voiceName,
		ModelName: m.modelName,
		Result:    msg.result,
		Buffer:    buf,
		CreatedAt: time.Now(),
		msgIndex:  len(m.messages),
	}
	m.messages = append(m.messages, Message{
		Sender:      senderVoice,
		Content:     msg.text,
		HasAudio:    true,
		UtteranceID: utt.ID,
		Timestamp:   time.Now(),
	})
	m.current = utt
	m.refreshTranscript()

	var cmds []tea.Cmd
	if cmd := m.startPlayback(utt); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if cmd := m.recordHistoryCmd(utt); cmd != nil {
		cmds = append(cmds, cmd)
		// Keep the recall ring aligned with the store, newest first.
		m.recallTexts = append([]string{utt.Text}, m.recallTexts...)
		m.recallIdx = 0
	}
	return cmds
}

// startPlayback hands the utterance to the speaker and starts the waveform
// frame loop. The completion callback posts back through uiUpdateChan with
// the utterance ID so stale completions are ignored.
func (m *Model) startPlayback(utt *utterance) tea.Cmd {
	if m.playerCtl == nil {
		return nil
	}
	ch := m.uiUpdateChan
	id := utt.ID
	err := m.playerCtl.Play(utt.Buffer, func() {
		ch <- playbackFinishedMsg{id: id}
	})
	if err != nil {
		m.err = err
		m.messages = append(m.messages, formatError(err))
		m.refreshTranscript()
		return nil
	}
	if utt.msgIndex >= 0 && utt.msgIndex < len(m.messages) {
		m.messages[utt.msgIndex].IsPlaying = true
		m.messages[utt.msgIndex].IsPlayed = false
	}
	m.refreshTranscript()
	return m.wave.Start()
}

// stopPlayback tears the active session down and settles the audio line.
// Safe to call with nothing playing.
func (m *Model) stopPlayback() {
	if m.playerCtl == nil || !m.playerCtl.Playing() {
		return
	}
	m.playerCtl.Stop()
	m.wave.Reset()
	for i := range m.messages {
		if m.messages[i].IsPlaying {
			m.messages[i].IsPlaying = false
			m.messages[i].IsPlayed = true
		}
	}
	m.refreshTranscript()
}

// invalidateCache drops the replay cache and orphans any generation still in
// flight; the orphaned result fails the pending-ID check when it lands.
func (m *Model) invalidateCache() {
	m.current = nil
	if m.pendingID != "" {
		log.Printf("Orphaning in-flight generation %s", m.pendingID)
		m.pendingID = ""
		m.generating = false
	}
}

// cycleVoice advances to the next prebuilt voice and drops cached audio so a
// replay never speaks with the old voice.
func (m *Model) cycleVoice() {
	idx := 0
	for i, v := range availableVoices {
		if v == m.voiceName {
			idx = i + 1
			break
		}
	}
	m.voiceName = availableVoices[idx%len(availableVoices)]
	m.invalidateCache()
	m.syncSettingsPanel()
	m.messages = append(m.messages, formatMessage(senderSystem,
		fmt.Sprintf("Voice set to %s.", m.voiceName)))
	m.refreshTranscript()
}

// cycleBackend steps the transport rest -> grpc -> live -> rest.
func (m *Model) cycleBackend() {
	switch m.backend {
	case speech.BackendREST:
		m.backend = speech.BackendGRPC
	case speech.BackendGRPC:
		m.backend = speech.BackendLive
	default:
		m.backend = speech.BackendREST
	}
	if m.client != nil {
		m.client.Backend = m.backend
	}
	m.syncSettingsPanel()
	m.messages = append(m.messages, formatMessage(senderSystem,
		fmt.Sprintf("Backend set to %s.", m.backend)))
	m.refreshTranscript()
}

// syncSettingsPanel pushes current model state into the settings panel.
func (m *Model) syncSettingsPanel() {
	if m.settingsPanel == nil {
		return
	}
	m.settingsPanel.Voices = availableVoices
	m.settingsPanel.CurrentModel = m.modelName
	m.settingsPanel.CurrentVoice = m.voiceName
	m.settingsPanel.CurrentBackend = string(m.backend)
	m.settingsPanel.SampleRate = audio.DefaultSampleRate
	m.settingsPanel.OutputDir = m.outputDir
	m.settingsPanel.HistoryEnabled = m.historyEnabled
	m.settingsPanel.HistoryPath = m.historyPath
	m.settingsPanel.ShowWave = m.showWave
}

// applySettingsPanel copies state the panel changed back onto the model.
func (m *Model) applySettingsPanel() {
	if m.settingsPanel == nil {
		return
	}
	if v := m.settingsPanel.CurrentVoice; v != "" && v != m.voiceName {
		m.voiceName = v
		m.invalidateCache()
		m.messages = append(m.messages, formatMessage(senderSystem,
			fmt.Sprintf("Voice set to %s.", m.voiceName)))
		m.refreshTranscript()
	}
	if b := m.settingsPanel.CurrentBackend; b != string(m.backend) {
		if backend, err := speech.ParseBackend(b); err == nil {
			m.backend = backend
			if m.client != nil {
				m.client.Backend = backend
			}
			m.messages = append(m.messages, formatMessage(senderSystem,
				fmt.Sprintf("Backend set to %s.", m.backend)))
			m.refreshTranscript()
		}
	}
	if m.settingsPanel.ShowWave != m.showWave {
		m.showWave = m.settingsPanel.ShowWave
	}
}

// refreshTranscript re-renders the viewport content and follows the tail.
func (m *Model) refreshTranscript() {
	m.viewport.SetContent(m.formatAllMessages())
	m.viewport.GotoBottom()
}

// shutdown releases the speaker, API client and history store.
func (m *Model) shutdown() {
	if m.playerCtl != nil {
		m.playerCtl.Close()
	}
	if m.client != nil {
		if err := m.client.Close(); err != nil {
			log.Printf("Error closing speech client: %v", err)
		}
	}
	if m.histStore != nil {
		if err := m.histStore.Close(); err != nil {
			log.Printf("Error closing history store: %v", err)
		}
	}
	if m.rootCtxCancel != nil {
		m.rootCtxCancel()
		m.rootCtxCancel = nil
	}
}

// Update handles incoming messages and updates the model state.
// It acts as the main dispatcher.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		taCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
		cmds  []tea.Cmd
	)

	// Update standard components
	switch msg.(type) {
	case tea.KeyMsg:
		// Key messages processed below
	case waveform.TickMsg:
		// Frame ticks only drive the oscilloscope
	default:
		m.textarea, taCmd = m.textarea.Update(msg)
		m.viewport, vpCmd = m.viewport.Update(msg)
	}
	m.spinner, spCmd = m.spinner.Update(msg)
	cmds = append(cmds, taCmd, vpCmd, spCmd)

	// --- Process specific message types ---
	switch msg := msg.(type) {
	case tea.KeyMsg:
		settingsHadFocus := m.showSettingsPanel && m.settingsPanel != nil && m.focusedComponent == "settings"

		// Check if settings panel is focused first
		if settingsHadFocus {
			var settingsCmd tea.Cmd
			*m.settingsPanel, settingsCmd = m.settingsPanel.Update(msg)
			cmds = append(cmds, settingsCmd)
			m.applySettingsPanel()

			// If settings panel no longer focused, return to input
			if !m.settingsPanel.Focused {
				m.showSettingsPanel = false
				m.focusedComponent = "input"
				m.textarea.Focus()
			}
		} else {
			before := m.textarea.Value()
			m.textarea, taCmd = m.textarea.Update(msg)
			cmds = append(cmds, taCmd)
			// Editing the input invalidates the replay cache; the old
			// audio no longer matches what is in the box.
			if m.textarea.Value() != before {
				m.invalidateCache()
			}
		}

		switch msg.String() {
		case "ctrl+c", "ctrl+q":
			m.quitting = true
			m.stopPlayback()
			m.shutdown()
			return m, tea.Quit

		case "esc":
			// Esc that just closed the settings panel should not also cut audio.
			if m.focusedComponent == "input" && !settingsHadFocus {
				m.stopPlayback()
			}
			return m, tea.Batch(cmds...)

		case "enter":
			if m.focusedComponent != "input" {
				return m, tea.Batch(cmds...)
			}
			text := strings.TrimSpace(m.textarea.Value())
			if text == "" {
				return m, tea.Batch(cmds...)
			}
			if m.generating {
				log.Println("Generation already in flight; rejecting input")
				m.messages = append(m.messages, formatMessage(senderSystem,
					"Still generating the previous line."))
				m.refreshTranscript()
				return m, tea.Batch(cmds...)
			}
			m.stopPlayback()
			m.textarea.Reset()
			m.err = nil
			m.messages = append(m.messages, formatMessage(senderYou, text))
			m.refreshTranscript()
			id := uuid.NewString()
			m.pendingID = id
			m.generating = true
			cmds = append(cmds, m.generateCmd(id, text))
			return m, tea.Batch(cmds...)

		case "ctrl+p", "ctrl+r":
			if m.generating {
				return m, tea.Batch(cmds...)
			}
			if m.current == nil {
				m.messages = append(m.messages, formatMessage(senderSystem, "Nothing to replay yet."))
				m.refreshTranscript()
				return m, tea.Batch(cmds...)
			}
			m.stopPlayback()
			if cmd := m.startPlayback(m.current); cmd != nil {
				cmds = append(cmds, cmd)
			}
			return m, tea.Batch(cmds...)

		case "ctrl+s":
			if m.current == nil || m.current.Buffer == nil {
				m.messages = append(m.messages, formatMessage(senderSystem, "No audio to save yet."))
				m.refreshTranscript()
				return m, tea.Batch(cmds...)
			}
			if m.saving {
				return m, tea.Batch(cmds...)
			}
			m.saving = true
			cmds = append(cmds, m.saveCmd(m.current))
			return m, tea.Batch(cmds...)

		case "ctrl+v":
			m.cycleVoice()
			return m, tea.Batch(cmds...)

		case "ctrl+b":
			m.cycleBackend()
			return m, tea.Batch(cmds...)

		case "ctrl+o":
			m.showSettingsPanel = !m.showSettingsPanel
			if m.showSettingsPanel {
				m.syncSettingsPanel()
				m.settingsPanel.Focus()
				m.focusedComponent = "settings"
				m.textarea.Blur()
			} else {
				m.settingsPanel.Blur()
				m.focusedComponent = "input"
				m.textarea.Focus()
			}
			return m, tea.Batch(cmds...)

		case "ctrl+h":
			if m.histStore == nil {
				m.messages = append(m.messages, formatMessage(senderSystem, "History is disabled."))
				m.refreshTranscript()
				return m, tea.Batch(cmds...)
			}
			if len(m.recallTexts) == 0 {
				cmds = append(cmds, m.loadHistoryCmd())
				return m, tea.Batch(cmds...)
			}
			// Step through recent texts, most recent first, wrapping around.
			text := m.recallTexts[m.recallIdx%len(m.recallTexts)]
			m.recallIdx++
			m.textarea.SetValue(text)
			m.textarea.CursorEnd()
			if m.current == nil || m.current.Text != text {
				m.invalidateCache()
			}
			return m, tea.Batch(cmds...)

		case "ctrl+w":
			m.showWave = !m.showWave
			m.syncSettingsPanel()
			return m, tea.Batch(cmds...)

		case "tab":
			if m.showSettingsPanel {
				if m.focusedComponent == "input" {
					m.focusedComponent = "settings"
					m.settingsPanel.Focus()
					m.textarea.Blur()
				} else {
					m.focusedComponent = "input"
					m.settingsPanel.Blur()
					m.textarea.Focus()
				}
			}
			return m, tea.Batch(cmds...)
		}

	case waveform.TickMsg:
		var waveCmd tea.Cmd
		m.wave, waveCmd = m.wave.Update(msg)
		cmds = append(cmds, waveCmd)

	case speechResultMsg:
		if msg.id != m.pendingID {
			log.Printf("Dropping stale generation result %s", msg.id)
			return m, tea.Batch(cmds...)
		}
		m.generating = false
		m.pendingID = ""
		cmds = append(cmds, m.handleSpeechResult(msg)...)

	case speechFailedMsg:
		if msg.id != m.pendingID {
			log.Printf("Dropping stale generation failure %s", msg.id)
			return m, tea.Batch(cmds...)
		}
		m.generating = false
		m.pendingID = ""
		m.err = msg.err
		m.messages = append(m.messages, formatError(msg.err))
		m.refreshTranscript()

	case playbackFinishedMsg:
		// Arrived via uiUpdateChan; put the listener back first.
		cmds = append(cmds, m.listenForUIUpdatesCmd())
		if m.current == nil || m.current.ID != msg.id {
			log.Printf("Dropping stale playback completion %s", msg.id)
			return m, tea.Batch(cmds...)
		}
		m.wave.Reset()
		if idx := m.current.msgIndex; idx >= 0 && idx < len(m.messages) {
			m.messages[idx].IsPlaying = false
			m.messages[idx].IsPlayed = true
		}
		m.refreshTranscript()

	case saveCompletedMsg:
		m.saving = false
		m.messages = append(m.messages, formatMessage(senderSystem, fmt.Sprintf("Saved %s", msg.path)))
		m.refreshTranscript()

	case saveFailedMsg:
		m.saving = false
		m.err = msg.err
		m.messages = append(m.messages, formatError(fmt.Errorf("save failed: %w", msg.err)))
		m.refreshTranscript()

	case historyLoadedMsg:
		m.recallTexts = m.recallTexts[:0]
		for _, utt := range msg.utterances {
			m.recallTexts = append(m.recallTexts, utt.Text)
		}
		m.recallIdx = 0
		m.messages = append(m.messages, formatMessage(senderSystem, formatHistory(msg.utterances)))
		m.refreshTranscript()

	case historyFailedMsg:
		m.messages = append(m.messages, formatError(fmt.Errorf("failed to load history: %w", msg.err)))
		m.refreshTranscript()

	case logMessageMsg:
		// Arrived via uiUpdateChan; put the listener back first.
		cmds = append(cmds, m.listenForUIUpdatesCmd())
		m.logMessages = append(m.logMessages, msg.message)
		if len(m.logMessages) > m.maxLogMessages {
			m.logMessages = m.logMessages[len(m.logMessages)-m.maxLogMessages:]
		}

	case spinner.TickMsg:
		// Handled by spinner update earlier

	case tea.WindowSizeMsg:
		// Prevent zero dimensions
		m.width = max(msg.Width, 20)
		m.height = max(msg.Height, 10)

		m.wave.SetSize(max(m.width-6, 8), m.wave.Height)

		headerHeight := lipgloss.Height(m.headerView())
		footerHeight := lipgloss.Height(m.footerView())
		waveHeight := 0
		if m.showWave {
			waveHeight = lipgloss.Height(m.waveView())
		}

		vpHeight := m.height - headerHeight - footerHeight - waveHeight
		if vpHeight < 1 {
			vpHeight = 1
		}

		m.viewport.Width = m.width
		m.viewport.Height = vpHeight

		// Always ensure textarea is visible with proper width
		m.textarea.SetWidth(m.width)
		m.textarea.SetHeight(1)

		m.viewport.SetContent(m.formatAllMessages())
		m.viewport.GotoBottom()

	default:
		// Ignore unknown messages
	}

	return m, tea.Batch(cmds...)
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	// Set default dimensions if needed
	if m.width == 0 || m.height == 0 {
		m.width = 80
		m.height = 24
	}

	// Always ensure textarea is visible with proper width
	m.textarea.SetWidth(m.width)
	m.textarea.SetHeight(1)
	if m.focusedComponent == "input" {
		m.textarea.Focus()
	}

	headerHeight := 2
	footerHeight := 2
	var waveBlock string
	waveHeight := 0
	if m.showWave {
		waveBlock = m.waveView()
		waveHeight = lipgloss.Height(waveBlock)
	}
	vpHeight := m.height - headerHeight - footerHeight - waveHeight
	m.viewport.Width = m.width
	m.viewport.Height = max(5, vpHeight)

	m.viewport.Style = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	var mainContent strings.Builder
	mainContent.WriteString(m.headerView())
	mainContent.WriteString(m.viewport.View())
	if waveBlock != "" {
		mainContent.WriteString("\n")
		mainContent.WriteString(waveBlock)
	}
	mainContent.WriteString(m.footerView())

	// If settings panel is visible, join horizontally
	if m.showSettingsPanel && m.settingsPanel != nil {
		settingsPanelWidth := m.width / 4
		mainContentWidth := m.width - settingsPanelWidth - 1
		m.textarea.SetWidth(mainContentWidth)

		settingsStyled := lipgloss.NewStyle().
			Width(settingsPanelWidth).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Render(m.settingsPanel.View())

		return lipgloss.JoinHorizontal(lipgloss.Top, mainContent.String(), settingsStyled)
	}

	return mainContent.String()
}
