// Package waveform renders a live oscilloscope of the audio currently being
// played. It polls an analysis feed on a frame tick that is only scheduled
// while playback is active, so no frames render after a stop.
package waveform

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Render geometry defaults.
const (
	DefaultWidth  = 60
	DefaultHeight = 9
	framesPerSec  = 30
)

var (
	traceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	idleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	timeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Feed supplies the component with live playback data. The player controller
// satisfies it.
type Feed interface {
	// Window returns the latest n samples in byte domain, 128 = silence.
	Window(n int) []byte
	// Progress reports elapsed and total playback time.
	Progress() (elapsed, total time.Duration)
	// Playing reports whether a session is active.
	Playing() bool
}

// TickMsg advances the render loop by one frame.
type TickMsg time.Time

// Model is the oscilloscope component state.
type Model struct {
	Width  int
	Height int

	feed    Feed
	window  []byte
	elapsed time.Duration
	total   time.Duration
	active  bool // frame loop scheduled
}

// New creates an oscilloscope with the default geometry.
func New() Model {
	return Model{
		Width:  DefaultWidth,
		Height: DefaultHeight,
	}
}

// SetFeed attaches the data source polled on each frame.
func (m *Model) SetFeed(feed Feed) {
	m.feed = feed
}

// SetSize adjusts the render geometry, keeping sane minimums.
func (m *Model) SetSize(width, height int) {
	if width < 8 {
		width = 8
	}
	if height < 3 {
		height = 3
	}
	m.Width = width
	m.Height = height
}

// Init implements tea.Model; the frame loop starts with Start, not here.
func (m Model) Init() tea.Cmd {
	return nil
}

// tickCmd schedules the next frame.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second/framesPerSec, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Start begins the frame loop. Calling it while the loop is already running
// returns nil so only one tick chain exists at a time.
func (m *Model) Start() tea.Cmd {
	if m.active {
		return nil
	}
	m.active = true
	return tickCmd()
}

// Reset drops the captured window immediately, returning the view to its
// idle line before the next frame would notice the feed went quiet.
func (m *Model) Reset() {
	m.active = false
	m.window = nil
	m.elapsed = 0
}

// Active reports whether the frame loop is scheduled.
func (m Model) Active() bool {
	return m.active
}

// Update handles frame ticks. The loop sustains itself only while the feed
// reports active playback; otherwise it stops by not rescheduling.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg.(type) {
	case TickMsg:
		if !m.active {
			return m, nil
		}
		if m.feed == nil || !m.feed.Playing() {
			m.Reset()
			return m, nil
		}
		m.window = m.feed.Window(m.Width)
		m.elapsed, m.total = m.feed.Progress()
		return m, tickCmd()
	}
	return m, nil
}

// sampleRow maps a byte-domain sample to a grid row. Byte 0 lands on the top
// row, 128 on the center, 255 on the bottom, matching canvas coordinates.
func sampleRow(sample byte, height int) int {
	halfHeight := float64(height) / 2.0
	y := (float64(sample)/128.0-1.0)*halfHeight + halfHeight
	row := int(y)
	if row < 0 {
		row = 0
	}
	if row >= height {
		row = height - 1
	}
	return row
}

// View renders the oscilloscope grid plus a time line underneath.
func (m Model) View() string {
	var b strings.Builder
	if m.active && len(m.window) > 0 {
		b.WriteString(traceStyle.Render(m.renderTrace()))
	} else {
		b.WriteString(idleStyle.Render(m.renderIdle()))
	}
	b.WriteString("\n")
	b.WriteString(timeStyle.Render(m.timeLine()))
	return b.String()
}

// renderTrace plots the window as a connected line, one column per sample,
// sweeping left to right.
func (m Model) renderTrace() string {
	grid := make([][]rune, m.Height)
	for r := range grid {
		grid[r] = make([]rune, m.Width)
		for c := range grid[r] {
			grid[r][c] = ' '
		}
	}

	prevRow := 0
	for col := 0; col < m.Width && col < len(m.window); col++ {
		row := sampleRow(m.window[col], m.Height)
		if col == 0 || row == prevRow {
			grid[row][col] = '─'
		} else {
			lo, hi := row, prevRow
			if lo > hi {
				lo, hi = hi, lo
			}
			for r := lo; r <= hi; r++ {
				grid[r][col] = '│'
			}
		}
		prevRow = row
	}

	lines := make([]string, m.Height)
	for r := range grid {
		lines[r] = string(grid[r])
	}
	return strings.Join(lines, "\n")
}

// renderIdle draws a flat line through the center of the grid.
func (m Model) renderIdle() string {
	lines := make([]string, m.Height)
	blank := strings.Repeat(" ", m.Width)
	for r := range lines {
		lines[r] = blank
	}
	lines[sampleRow(128, m.Height)] = strings.Repeat("─", m.Width)
	return strings.Join(lines, "\n")
}

// timeLine renders elapsed/total below the grid.
func (m Model) timeLine() string {
	icon := "·"
	if m.active {
		icon = "▶"
	}
	return fmt.Sprintf("%s %s / %s", icon, formatDuration(m.elapsed), formatDuration(m.total))
}

// formatDuration formats a duration as MM:SS.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	seconds := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
