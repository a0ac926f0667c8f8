package settings

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestNew(t *testing.T) {
	model := New()

	// Check default values
	if model.CurrentVoice != "Kore" {
		t.Errorf("New() CurrentVoice = %s, want Kore", model.CurrentVoice)
	}

	if model.CurrentBackend != "rest" {
		t.Errorf("New() CurrentBackend = %s, want rest", model.CurrentBackend)
	}

	if !model.ShowWave {
		t.Error("New() ShowWave = false, want true")
	}

	if model.Focused {
		t.Error("New() Focused = true, want false")
	}

	if len(model.Backends) != 3 {
		t.Errorf("New() Backends = %v, want rest/grpc/live", model.Backends)
	}
}

func TestInit(t *testing.T) {
	model := New()
	cmd := model.Init()

	if cmd != nil {
		t.Error("Init() returned non-nil command")
	}
}

func TestNext(t *testing.T) {
	values := []string{"a", "b", "c"}

	tests := []struct {
		current string
		want    string
	}{
		{"a", "b"},
		{"b", "c"},
		{"c", "a"}, // wraps
		{"", "a"},  // empty selects first
		{"x", "a"}, // unknown selects first
	}
	for _, tt := range tests {
		if got := next(values, tt.current); got != tt.want {
			t.Errorf("next(%v, %q) = %q, want %q", values, tt.current, got, tt.want)
		}
	}

	if got := next(nil, "keep"); got != "keep" {
		t.Errorf("next(nil, keep) = %q, want keep", got)
	}
}

func TestFocusAndBlur(t *testing.T) {
	model := New()

	// Test Focus
	model.Focus()
	if !model.Focused {
		t.Error("Focus() should set Focused to true")
	}
	if !model.IsFocused() {
		t.Error("IsFocused() should return true after Focus()")
	}

	// Test Blur
	model.Blur()
	if model.Focused {
		t.Error("Blur() should set Focused to false")
	}
	if model.IsFocused() {
		t.Error("IsFocused() should return false after Blur()")
	}
}

func TestView(t *testing.T) {
	model := New()
	model.CurrentModel = "models/gemini-2.5-flash-preview-tts"
	model.SampleRate = 24000
	model.HistoryEnabled = true
	model.HistoryPath = "/tmp/history.db"

	view := model.View()

	if !strings.Contains(view, "Settings") {
		t.Error("View() should contain 'Settings' title")
	}
	if !strings.Contains(view, "Model: models/gemini-2.5-flash-preview-tts") {
		t.Error("View() should contain model information")
	}
	if !strings.Contains(view, "Voice: Kore") {
		t.Error("View() should contain voice information")
	}
	if !strings.Contains(view, "Backend: rest") {
		t.Error("View() should contain backend information")
	}
	if !strings.Contains(view, "Sample rate: 24000 Hz") {
		t.Error("View() should contain the sample rate")
	}
	if !strings.Contains(view, "History: /tmp/history.db") {
		t.Error("View() should show the history path when enabled")
	}
	if !strings.Contains(view, "esc: close") {
		t.Error("View() should contain exit instructions")
	}
}

func TestViewDefaults(t *testing.T) {
	model := New()

	view := model.View()

	// Empty output dir shows the working directory
	if !strings.Contains(view, "Output dir: .") {
		t.Error("View() should default output dir to '.'")
	}
	if !strings.Contains(view, "History: off") {
		t.Error("View() should show history off when disabled")
	}
}

func TestUpdate(t *testing.T) {
	model := New()

	// Test window size message
	newModel, cmd := model.Update(tea.WindowSizeMsg{Width: 120, Height: 80})
	if newModel.Width != 30 { // Panel takes a quarter of the window
		t.Errorf("Update(WindowSizeMsg) Width = %d, want 30", newModel.Width)
	}
	if newModel.Height != 80 {
		t.Errorf("Update(WindowSizeMsg) Height = %d, want 80", newModel.Height)
	}
	if cmd != nil {
		t.Error("Update(WindowSizeMsg) returned non-nil command")
	}

	// Test key message when not focused
	model.Focused = false
	model.CurrentVoice = "Kore"
	model.Voices = []string{"Kore", "Puck"}
	newModel, cmd = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("v")})
	if newModel.CurrentVoice != "Kore" {
		t.Error("Update(KeyMsg) when not focused should not cycle the voice")
	}
	if cmd != nil {
		t.Error("Update(KeyMsg) when not focused returned non-nil command")
	}

	// Test key message when focused
	model.Focus()
	newModel, cmd = model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if newModel.Focused {
		t.Error("Update(KeyMsg{Esc}) when focused should set Focused to false")
	}
	if cmd != nil {
		t.Error("Update(KeyMsg{Esc}) returned non-nil command")
	}

	// Test other key message when focused
	model.Focus()
	newModel, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !newModel.Focused {
		t.Error("Update(KeyMsg{Enter}) when focused should not change focus state")
	}
}

func TestUpdateCycleKeys(t *testing.T) {
	model := New()
	model.Focus()
	model.Voices = []string{"Kore", "Puck", "Charon"}
	model.CurrentVoice = "Kore"

	press := func(m Model, key string) Model {
		updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
		return updated
	}

	model = press(model, "v")
	if model.CurrentVoice != "Puck" {
		t.Errorf("after v, CurrentVoice = %s, want Puck", model.CurrentVoice)
	}

	model = press(model, "b")
	if model.CurrentBackend != "grpc" {
		t.Errorf("after b, CurrentBackend = %s, want grpc", model.CurrentBackend)
	}
	model = press(model, "b")
	if model.CurrentBackend != "live" {
		t.Errorf("after second b, CurrentBackend = %s, want live", model.CurrentBackend)
	}
	model = press(model, "b")
	if model.CurrentBackend != "rest" {
		t.Errorf("backend cycle should wrap to rest, got %s", model.CurrentBackend)
	}

	model = press(model, "w")
	if model.ShowWave {
		t.Error("after w, ShowWave should be false")
	}
	model = press(model, "w")
	if !model.ShowWave {
		t.Error("after second w, ShowWave should be true again")
	}
}
