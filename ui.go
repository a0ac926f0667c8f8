package nihongovoice

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// formatMessageText formats a message as a string for display, including the
// audio line for entries that carry synthesized speech.
func (m *Model) formatMessageText(msg Message) string {
	var senderStyle lipgloss.Style
	switch msg.Sender {
	case senderYou:
		senderStyle = senderYouStyle
	case senderVoice:
		senderStyle = senderVoiceStyle
	default:
		senderStyle = senderSystemStyle
	}

	// Keep sender header even if content is empty
	header := senderStyle.Render(string(msg.Sender) + ":")

	cleanedContent := strings.TrimSpace(msg.Content)

	var audioLine string
	if msg.HasAudio {
		audioLine = m.formatAudioLine(msg)
	}

	var finalMsg strings.Builder
	finalMsg.WriteString(header)
	finalMsg.WriteString("\n")

	// For voice entries the text and audio controls share one line.
	if msg.HasAudio && msg.Sender == senderVoice && cleanedContent != "" {
		finalMsg.WriteString(cleanedContent)
		if audioLine != "" {
			finalMsg.WriteString(" ")
			finalMsg.WriteString(audioLine)
		}
		finalMsg.WriteString("\n")
	} else {
		if cleanedContent != "" {
			finalMsg.WriteString(cleanedContent)
			finalMsg.WriteString("\n")
		}
		if audioLine != "" {
			finalMsg.WriteString(audioLine)
			finalMsg.WriteString("\n")
		}
	}

	// Extra newline for spacing between messages
	finalMsg.WriteString("\n")

	return finalMsg.String()
}

// formatAudioLine renders icon, elapsed/total time and a progress bar for one
// audio-bearing entry.
func (m *Model) formatAudioLine(msg Message) string {
	totalSeconds := 0.0
	if m.current != nil && m.current.ID == msg.UtteranceID && m.current.Buffer != nil {
		totalSeconds = m.current.Buffer.Seconds()
	}
	totalDurationStr := formatDuration(totalSeconds)

	audioIcon := audioReadyIcon
	timestampStr := fmt.Sprintf("00:00 / %s", totalDurationStr)
	progressBar := strings.Repeat("╌", progressBarWidth) // Default empty bar
	helpText := "[Ctrl+P] play"

	switch {
	case msg.IsPlaying:
		audioIcon = audioPlayIcon

		elapsedSeconds := 0.0
		if m.playerCtl != nil {
			elapsed, total := m.playerCtl.Progress()
			elapsedSeconds = elapsed.Seconds()
			if total > 0 {
				totalSeconds = total.Seconds()
				totalDurationStr = formatDuration(totalSeconds)
			}
		}
		// Ensure elapsed doesn't exceed total due to timing issues
		elapsedSeconds = math.Max(0, math.Min(elapsedSeconds, totalSeconds))
		timestampStr = fmt.Sprintf("%s / %s", formatDuration(elapsedSeconds), totalDurationStr)

		progress := 0.0
		if totalSeconds > 0 {
			progress = elapsedSeconds / totalSeconds
		}
		progress = math.Min(1.0, math.Max(0.0, progress)) // Clamp progress [0, 1]
		filledWidth := int(progress * float64(progressBarWidth))
		progressBar = strings.Repeat("━", filledWidth) + strings.Repeat("╌", progressBarWidth-filledWidth)
		helpText = "[Esc] stop"

	case msg.IsPlayed:
		audioIcon = audioPlayedIcon
		timestampStr = fmt.Sprintf("%s / %s", totalDurationStr, totalDurationStr)
		progressBar = strings.Repeat("━", progressBarWidth) // Full bar
		helpText = "[Ctrl+P] replay"
	}

	var line strings.Builder
	line.WriteString(audioIcon)
	line.WriteString(" ")
	line.WriteString(audioTimeStyle.Render(timestampStr))
	line.WriteString(" ")
	line.WriteString(audioProgStyle.Render(progressBar))
	if helpText != "" {
		line.WriteString(" ")
		line.WriteString(audioHelpStyle.Render(helpText))
	}
	return line.String()
}

// formatAllMessages formats all messages as a single string for display.
func (m *Model) formatAllMessages() string {
	var formattedMessages []string
	for _, msg := range m.messages {
		formatted := m.formatMessageText(msg)
		if formatted != "" {
			formattedMessages = append(formattedMessages, formatted)
		}
	}
	// formatMessageText adds trailing newlines already
	return strings.Join(formattedMessages, "")
}

// headerView renders the header for the UI.
func (m Model) headerView() string {
	var header strings.Builder

	// Add logo if enabled
	if m.showLogo {
		line := "nihongo-voice"
		padding := (m.width - lipgloss.Width(line)) / 2
		if padding < 0 {
			padding = 0
		}
		header.WriteString(logoStyle.Render(strings.Repeat(" ", padding)+line) + "\n")
	}

	// Add the title
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	modelInfo := fmt.Sprintf("%s (Voice: %s) [%s]", m.modelName, m.voiceName, m.backend)
	header.WriteString(titleStyle.Width(m.width).Align(lipgloss.Center).Render("Japanese Voice Speaker - " + modelInfo))
	header.WriteString("\n")

	return header.String()
}

// logMessagesView renders the log messages box.
func (m Model) logMessagesView() string {
	if !m.showLogMessages || len(m.logMessages) == 0 {
		return ""
	}

	logBoxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(0, 1).
		Width(m.width - 2)

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("8")).
		Render("Recent Log Messages")

	var logContent strings.Builder
	logContent.WriteString(header + "\n")

	// Available width inside border and padding
	innerWidth := m.width - 4

	for i, logMsg := range m.logMessages {
		prefix := fmt.Sprintf("[%d] ", i+1)
		maxMsgWidth := innerWidth - lipgloss.Width(prefix)
		if maxMsgWidth < 1 {
			maxMsgWidth = 1
		}
		renderedMsg := logMessageStyle.MaxWidth(maxMsgWidth).Render(logMsg)
		logContent.WriteString(prefix + renderedMsg + "\n")
	}

	return logBoxStyle.Render(logContent.String())
}

// waveView renders the oscilloscope block under the transcript.
func (m Model) waveView() string {
	if !m.showWave {
		return ""
	}
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Render(m.wave.View())
}

// footerView renders the footer for the UI.
func (m Model) footerView() string {
	var footer strings.Builder

	logBox := m.logMessagesView()
	if logBox != "" {
		footer.WriteString(logBox)
		footer.WriteRune('\n')
	}

	// Status indicator
	var status string
	switch {
	case m.err != nil:
		errStr := fmt.Sprintf("Error: %v", m.err)
		// Truncate error if too long for status line. Width-aware so
		// double-width runes in Japanese error text survive the cut.
		maxErrWidth := m.width / 2
		if maxErrWidth > 3 && lipgloss.Width(errStr) > maxErrWidth {
			errStr = ansi.Truncate(errStr, maxErrWidth-3, "...")
		}
		status = errorStyle.Render(errStr)
	case m.generating:
		status = m.spinner.View() + " Generating speech..."
	case m.saving:
		status = m.spinner.View() + " Saving WAV..."
	case m.playerCtl != nil && m.playerCtl.Playing():
		status = m.spinner.View() + " Playing..."
	default:
		status = statusStyle.Render("Ready.")
	}

	// Help text
	help := statusStyle.Render("Enter: Speak | Ctrl+P: Replay | Ctrl+S: Save | Ctrl+V: Voice | Ctrl+O: Settings | Ctrl+C: Quit")

	// Layout status line elements
	statusWidth := lipgloss.Width(status)
	helpWidth := lipgloss.Width(help)

	spacerWidth := m.width - statusWidth - helpWidth - 2
	if spacerWidth < 1 {
		spacerWidth = 1 // Ensure at least one space
	}
	spacer := strings.Repeat(" ", spacerWidth)

	statusLine := lipgloss.NewStyle().Width(m.width).Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, status, " ", spacer, help),
	)

	// Combine input area and status line
	footer.WriteString(lipgloss.JoinVertical(lipgloss.Left, "", m.textarea.View(), statusLine))

	return footer.String()
}
