// Package settings implements the side panel showing the active speech
// configuration. The panel owns voice and backend cycling while focused; the
// root model reads the fields back after each update.
package settings

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Model represents the settings panel state
type Model struct {
	Width   int
	Height  int
	Focused bool

	CurrentModel   string
	CurrentVoice   string
	CurrentBackend string
	SampleRate     int
	OutputDir      string
	HistoryEnabled bool
	HistoryPath    string
	ShowWave       bool

	// Cycle orders for the v and b keys.
	Voices   []string
	Backends []string
}

// New creates a new settings model
func New() Model {
	return Model{
		CurrentVoice:   "Kore",
		CurrentBackend: "rest",
		ShowWave:       true,
		Backends:       []string{"rest", "grpc", "live"},
	}
}

// Init initializes the settings model
func (m Model) Init() tea.Cmd {
	return nil
}

// next returns the entry after current in values, wrapping at the end.
// Unknown or empty current selects the first entry.
func next(values []string, current string) string {
	if len(values) == 0 {
		return current
	}
	for i, v := range values {
		if v == current {
			return values[(i+1)%len(values)]
		}
	}
	return values[0]
}

// Update handles updating the settings model
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width / 4
		m.Height = msg.Height
	case tea.KeyMsg:
		if !m.Focused {
			return m, nil
		}

		switch msg.String() {
		case "v":
			m.CurrentVoice = next(m.Voices, m.CurrentVoice)
		case "b":
			m.CurrentBackend = next(m.Backends, m.CurrentBackend)
		case "w":
			m.ShowWave = !m.ShowWave
		case "esc":
			m.Focused = false
		}
	}

	return m, nil
}

// View renders the settings panel
func (m Model) View() string {
	outputDir := m.OutputDir
	if outputDir == "" {
		outputDir = "."
	}

	historyLine := "off"
	if m.HistoryEnabled {
		historyLine = m.HistoryPath
		if historyLine == "" {
			historyLine = "on"
		}
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("Settings"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Model: %s\n", m.CurrentModel)
	fmt.Fprintf(&b, "Voice: %s\n", m.CurrentVoice)
	fmt.Fprintf(&b, "Backend: %s\n", m.CurrentBackend)
	fmt.Fprintf(&b, "Sample rate: %d Hz\n", m.SampleRate)
	fmt.Fprintf(&b, "Output dir: %s\n", outputDir)
	fmt.Fprintf(&b, "History: %s\n", historyLine)
	fmt.Fprintf(&b, "Waveform: %t\n", m.ShowWave)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Faint(true).Render(
		"v: voice  b: backend  w: wave\nesc: close"))

	return b.String()
}

// Focus sets focus on the settings panel
func (m *Model) Focus() {
	m.Focused = true
}

// Blur removes focus from the settings panel
func (m *Model) Blur() {
	m.Focused = false
}

// IsFocused returns whether the settings panel is focused
func (m Model) IsFocused() bool {
	return m.Focused
}
