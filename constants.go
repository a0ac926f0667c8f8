package nihongovoice

import (
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/LLCo/JapaneseVoiceSpeaker/speech"
)

// --- Config ---
// DefaultVoice is the prebuilt voice used when none is configured.
const DefaultVoice = "Kore"

// DefaultModel is the speech-capable model used when none is configured.
const DefaultModel = "models/gemini-2.5-flash-preview-tts"

// Audio ships as signed 16-bit little-endian linear PCM.
const audioFormat = "s16le"

// synthesizeTimeout bounds one speech generation round trip.
const synthesizeTimeout = 90 * time.Second

// progressBarWidth defines the width of the playback progress bar.
const progressBarWidth = 25 // characters

// availableVoices lists the prebuilt voices the voice cycle key steps through.
var availableVoices = speech.VoiceNames()

// Styles
var (
	senderYouStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")) // Cyan
	senderVoiceStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5")) // Magenta
	senderSystemStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("8")) // Gray
	errorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true) // Red
	statusStyle       = lipgloss.NewStyle().Faint(true)
	logoStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)  // Magenta
	logMessageStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Faint(true) // Gray
	// Audio UI Styles
	audioIconStyle  = lipgloss.NewStyle().Bold(true)
	audioTimeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8")) // Gray
	audioProgStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("5")) // Magenta
	audioHelpStyle  = statusStyle                                         // Reuse faint style
	audioPlayIcon   = audioIconStyle.Foreground(lipgloss.Color("10")).Render("▶")
	audioPlayedIcon = audioIconStyle.Foreground(lipgloss.Color("8")).Render("✓")
	audioReadyIcon  = audioIconStyle.Foreground(lipgloss.Color("5")).Render("🔊")
)
