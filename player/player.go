// Package player owns speaker output. A Controller manages the single
// playback session, lazily initializes the speaker backend, and routes every
// session through a shared analysis tap so the UI can observe the samples
// being played.
package player

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"

	"github.com/LLCo/JapaneseVoiceSpeaker/audio"
)

// Seams over the process-global beep speaker so tests can run without an
// audio device.
var (
	speakerInit   = speaker.Init
	speakerPlay   = speaker.Play
	speakerClear  = speaker.Clear
	speakerLock   = speaker.Lock
	speakerUnlock = speaker.Unlock
)

// speakerBufferLen is the latency of the speaker ring buffer.
const speakerBufferLen = 100 * time.Millisecond

// DefaultTapSize is the capacity of the shared analysis tap in samples.
const DefaultTapSize = 4096

// State describes what the controller is doing.
type State int

const (
	StateIdle State = iota
	StatePlaying
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StatePlaying:
		return "Playing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// PlaybackError reports a speaker initialization or playback start failure.
type PlaybackError struct {
	Op  string
	Err error
}

func (e *PlaybackError) Error() string {
	return fmt.Sprintf("playback %s: %v", e.Op, e.Err)
}

func (e *PlaybackError) Unwrap() error { return e.Err }

// Controller plays decoded buffers through the speaker. At most one session
// is active at a time; starting a new one tears down the previous one. All
// methods are safe to call from any goroutine.
type Controller struct {
	mu          sync.Mutex
	sampleRate  beep.SampleRate
	initialized bool
	closed      bool
	state       State
	tap         *Tap
	source      *bufferStream
	generation  uint64 // bumped per session and on stop; guards stale completions
}

// NewController returns a controller that will drive the speaker at the
// given sample rate. The speaker itself is not touched until Ensure or the
// first Play.
func NewController(sampleRate int) *Controller {
	if sampleRate <= 0 {
		sampleRate = audio.DefaultSampleRate
	}
	return &Controller{sampleRate: beep.SampleRate(sampleRate)}
}

// Ensure initializes the speaker backend if it has not been initialized yet.
// Repeat calls are no-ops returning nil.
func (c *Controller) Ensure() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ensureLocked()
}

func (c *Controller) ensureLocked() error {
	if c.closed {
		return &PlaybackError{Op: "init", Err: errors.New("controller is closed")}
	}
	if c.initialized {
		return nil
	}
	bufSize := c.sampleRate.N(speakerBufferLen)
	if err := speakerInit(c.sampleRate, bufSize); err != nil {
		return &PlaybackError{Op: "init", Err: err}
	}
	c.initialized = true
	log.Printf("[PLAYER] Speaker initialized at %d Hz (buffer %d samples)", int(c.sampleRate), bufSize)
	return nil
}

// Play starts a new session for buf, tearing down any session already in
// flight. onDone fires exactly once if the buffer drains naturally; an
// explicit Stop suppresses it. A zero-frame buffer completes immediately
// through the same callback path.
func (c *Controller) Play(buf *audio.Buffer, onDone func()) error {
	if buf == nil {
		return &PlaybackError{Op: "play", Err: errors.New("nil buffer")}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureLocked(); err != nil {
		return err
	}
	if buf.SampleRate != int(c.sampleRate) {
		log.Printf("[PLAYER] Buffer rate %d Hz differs from speaker rate %d Hz; playing as-is",
			buf.SampleRate, int(c.sampleRate))
	}
	if c.state == StatePlaying {
		log.Printf("[PLAYER] Replacing in-flight session")
		speakerClear()
	}
	if c.tap == nil {
		c.tap = NewTap(DefaultTapSize)
	}

	c.generation++
	gen := c.generation
	src := newBufferStream(buf)
	c.source = src
	c.state = StatePlaying

	// The callback runs on the speaker goroutine; hand off so it never
	// blocks the audio path or takes locks under the speaker mutex.
	seq := beep.Seq(c.tap.Capture(src), beep.Callback(func() {
		go c.finish(gen, onDone)
	}))
	speakerPlay(seq)
	log.Printf("[PLAYER] Session %d started: %d frames (%.2fs)", gen, buf.Frames(), buf.Seconds())
	return nil
}

// finish handles natural end of a session. Stale generations mean the
// session was already stopped or replaced; that race is harmless.
func (c *Controller) finish(gen uint64, onDone func()) {
	c.mu.Lock()
	if c.generation != gen || c.state != StatePlaying {
		c.mu.Unlock()
		return
	}
	c.state = StateIdle
	c.source = nil
	c.mu.Unlock()
	log.Printf("[PLAYER] Session %d finished", gen)
	if onDone != nil {
		onDone()
	}
}

// Stop tears down the active session synchronously. With no session active,
// including before the first Play, it is a no-op. The session's completion
// callback will not fire.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StatePlaying {
		return
	}
	c.generation++
	speakerClear()
	c.source = nil
	c.state = StateIdle
	log.Printf("[PLAYER] Session stopped")
}

// State reports the current playback state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Playing reports whether a session is active.
func (c *Controller) Playing() bool {
	return c.State() == StatePlaying
}

// Tap returns the shared analysis tap, or nil before the first Play.
func (c *Controller) Tap() *Tap {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tap
}

// Window returns the latest n played samples in byte domain, centered silence
// before the first session.
func (c *Controller) Window(n int) []byte {
	tap := c.Tap()
	if tap == nil {
		w := make([]byte, n)
		for i := range w {
			w[i] = 128
		}
		return w
	}
	return tap.Window(n)
}

// Progress reports elapsed and total time of the active session, both zero
// when idle.
func (c *Controller) Progress() (elapsed, total time.Duration) {
	c.mu.Lock()
	src := c.source
	c.mu.Unlock()
	if src == nil {
		return 0, 0
	}
	speakerLock()
	pos, length := src.Position(), src.Len()
	speakerUnlock()
	return c.sampleRate.D(pos), c.sampleRate.D(length)
}

// SampleRate reports the speaker rate the controller was built with.
func (c *Controller) SampleRate() int {
	return int(c.sampleRate)
}

// Close stops any active session and releases the tap. Safe to call more
// than once.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.state == StatePlaying {
		c.generation++
		speakerClear()
		c.source = nil
		c.state = StateIdle
	}
	c.tap = nil
	c.closed = true
	log.Printf("[PLAYER] Controller closed")
}
