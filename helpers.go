package nihongovoice

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/LLCo/JapaneseVoiceSpeaker/history"
)

// formatMessage creates a Message from sender and content.
func formatMessage(sender senderName, content string) Message {
	return Message{
		Sender:    sender,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// formatError creates an error Message.
func formatError(err error) Message {
	return Message{
		Sender:    senderSystem,
		Content:   fmt.Sprintf("Error: %v", err),
		Timestamp: time.Now(),
	}
}

// downloadFilename names a WAV export after its creation moment in UTC. The
// timestamp keeps ISO 8601 ordering but drops the colons so the name is safe
// on every filesystem.
func downloadFilename(t time.Time) string {
	return "nihongo-voice-" + t.UTC().Format("20060102T150405Z") + ".wav"
}

// defaultHistoryPath places the utterance log under the home directory,
// falling back to the working directory when home cannot be resolved.
func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "nihongo-voice-history.db"
	}
	return filepath.Join(home, ".nihongo-voice", "history.db")
}

// formatDuration converts total seconds into MM:SS format.
func formatDuration(totalSeconds float64) string {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	// Round to nearest second for display consistency
	ts := int(math.Round(totalSeconds))
	minutes := ts / 60
	seconds := ts % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// formatHistory renders recent utterances as one transcript block, newest
// first.
func formatHistory(utterances []*history.Utterance) string {
	if len(utterances) == 0 {
		return "History is empty."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Last %d utterances:", len(utterances))
	for _, u := range utterances {
		fmt.Fprintf(&b, "\n  %s  %-7s %s",
			u.CreatedAt.Local().Format("01-02 15:04"), u.Voice, u.Text)
	}
	return b.String()
}

// logInterceptor implements io.Writer to capture log output for display in
// the UI. Lines are forwarded through the UI update channel so the Bubble Tea
// loop owns all state changes.
type logInterceptor struct {
	ch       chan<- tea.Msg
	original io.Writer // The original log output
}

func (li *logInterceptor) Write(p []byte) (n int, err error) {
	message := strings.TrimSpace(string(p))
	if message != "" && li.ch != nil {
		// Never block the logger; drop the line if the UI is behind.
		select {
		case li.ch <- logMessageMsg{message: message}:
		default:
		}
	}

	// Write original bytes to preserve formatting in the log file
	if li.original != nil {
		return li.original.Write(p)
	}
	return len(p), nil
}
