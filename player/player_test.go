package player

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"

	"github.com/LLCo/JapaneseVoiceSpeaker/audio"
)

// fakeSpeaker replaces the beep speaker seams so controller behavior can be
// tested without an audio device. Streamers are drained manually the way the
// audio goroutine would drain them.
type fakeSpeaker struct {
	mu         sync.Mutex
	initCalls  int
	clearCalls int
	initErr    error
	played     []beep.Streamer
}

func installFakeSpeaker(t *testing.T) *fakeSpeaker {
	t.Helper()
	f := &fakeSpeaker{}
	origInit, origPlay, origClear := speakerInit, speakerPlay, speakerClear
	origLock, origUnlock := speakerLock, speakerUnlock
	speakerInit = func(sr beep.SampleRate, bufSize int) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.initCalls++
		return f.initErr
	}
	speakerPlay = func(s ...beep.Streamer) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.played = append(f.played, s...)
	}
	speakerClear = func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.clearCalls++
		f.played = nil
	}
	speakerLock = func() {}
	speakerUnlock = func() {}
	t.Cleanup(func() {
		speakerInit, speakerPlay, speakerClear = origInit, origPlay, origClear
		speakerLock, speakerUnlock = origLock, origUnlock
	})
	return f
}

func (f *fakeSpeaker) active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.played)
}

func (f *fakeSpeaker) inits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.initCalls
}

func (f *fakeSpeaker) clears() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clearCalls
}

// drain streams the current session to exhaustion, firing any completion
// callback the way the real speaker would.
func (f *fakeSpeaker) drain(t *testing.T) {
	t.Helper()
	f.mu.Lock()
	var s beep.Streamer
	if len(f.played) > 0 {
		s = f.played[len(f.played)-1]
	}
	f.mu.Unlock()
	if s == nil {
		t.Fatal("drain: nothing playing")
	}
	out := make([][2]float64, 512)
	for i := 0; i < 100000; i++ {
		if _, ok := s.Stream(out); !ok {
			return
		}
	}
	t.Fatal("drain: streamer did not finish")
}

// drainFrames streams exactly n frames of the current session.
func (f *fakeSpeaker) drainFrames(t *testing.T, n int) {
	t.Helper()
	f.mu.Lock()
	var s beep.Streamer
	if len(f.played) > 0 {
		s = f.played[len(f.played)-1]
	}
	f.mu.Unlock()
	if s == nil {
		t.Fatal("drainFrames: nothing playing")
	}
	s.Stream(make([][2]float64, n))
}

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestControllerEnsureIdempotent(t *testing.T) {
	f := installFakeSpeaker(t)
	c := NewController(24000)
	if err := c.Ensure(); err != nil {
		t.Fatalf("first Ensure() error: %v", err)
	}
	if err := c.Ensure(); err != nil {
		t.Fatalf("second Ensure() error: %v", err)
	}
	if got := f.inits(); got != 1 {
		t.Errorf("speaker init calls = %d, want 1", got)
	}
}

func TestControllerEnsureFailure(t *testing.T) {
	f := installFakeSpeaker(t)
	f.initErr = errors.New("no output device")
	c := NewController(24000)

	err := c.Ensure()
	if err == nil {
		t.Fatal("Ensure() expected error, got nil")
	}
	var playbackErr *PlaybackError
	if !errors.As(err, &playbackErr) {
		t.Errorf("error type = %T, want *PlaybackError", err)
	}
}

func TestControllerStopBeforePlay(t *testing.T) {
	f := installFakeSpeaker(t)
	c := NewController(24000)

	c.Stop() // must be a harmless no-op
	if got := c.State(); got != StateIdle {
		t.Errorf("State() = %v, want Idle", got)
	}
	if got := f.clears(); got != 0 {
		t.Errorf("speaker clear calls = %d, want 0", got)
	}
}

func TestControllerStopIdempotent(t *testing.T) {
	f := installFakeSpeaker(t)
	c := NewController(24000)
	if err := c.Play(monoBuffer(0.1, 0.2, 0.3), nil); err != nil {
		t.Fatalf("Play() error: %v", err)
	}
	c.Stop()
	c.Stop()
	if got := c.State(); got != StateIdle {
		t.Errorf("State() = %v, want Idle", got)
	}
	if got := f.clears(); got != 1 {
		t.Errorf("speaker clear calls = %d, want 1", got)
	}
}

func TestControllerDoublePlaySingleSession(t *testing.T) {
	f := installFakeSpeaker(t)
	c := NewController(24000)

	if err := c.Play(monoBuffer(0.1, 0.2), nil); err != nil {
		t.Fatalf("first Play() error: %v", err)
	}
	if err := c.Play(monoBuffer(0.3, 0.4), nil); err != nil {
		t.Fatalf("second Play() error: %v", err)
	}
	if got := f.active(); got != 1 {
		t.Errorf("active sessions on speaker = %d, want 1", got)
	}
	if got := f.clears(); got != 1 {
		t.Errorf("speaker clear calls = %d, want 1 (first session torn down)", got)
	}
	if got := c.State(); got != StatePlaying {
		t.Errorf("State() = %v, want Playing", got)
	}
}

func TestControllerNaturalEnd(t *testing.T) {
	f := installFakeSpeaker(t)
	c := NewController(24000)

	done := make(chan struct{})
	err := c.Play(monoBuffer(0.1, 0.2, 0.3), func() {
		if got := c.State(); got != StateIdle {
			t.Errorf("State() inside completion = %v, want Idle", got)
		}
		close(done)
	})
	if err != nil {
		t.Fatalf("Play() error: %v", err)
	}
	f.drain(t)
	waitFor(t, done, "completion callback")
}

func TestControllerEmptyBufferCompletesImmediately(t *testing.T) {
	f := installFakeSpeaker(t)
	c := NewController(24000)

	done := make(chan struct{})
	err := c.Play(audio.NewBuffer(24000, 1, 0), func() { close(done) })
	if err != nil {
		t.Fatalf("Play() error: %v", err)
	}
	f.drain(t)
	waitFor(t, done, "completion callback for empty buffer")
	if got := c.State(); got != StateIdle {
		t.Errorf("State() = %v, want Idle", got)
	}
}

func TestControllerStopSuppressesCallback(t *testing.T) {
	f := installFakeSpeaker(t)
	c := NewController(24000)

	fired := make(chan struct{})
	if err := c.Play(monoBuffer(0.1, 0.2, 0.3), func() { close(fired) }); err != nil {
		t.Fatalf("Play() error: %v", err)
	}
	c.Stop()

	// The session is gone from the speaker, so nothing can drain it and the
	// callback must never fire.
	if got := f.active(); got != 0 {
		t.Errorf("active sessions after Stop() = %d, want 0", got)
	}
	select {
	case <-fired:
		t.Error("completion callback fired after explicit Stop()")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestControllerPlayNilBuffer(t *testing.T) {
	installFakeSpeaker(t)
	c := NewController(24000)

	err := c.Play(nil, nil)
	if err == nil {
		t.Fatal("Play(nil) expected error, got nil")
	}
	var playbackErr *PlaybackError
	if !errors.As(err, &playbackErr) {
		t.Errorf("error type = %T, want *PlaybackError", err)
	}
}

func TestControllerTapSharedAcrossSessions(t *testing.T) {
	installFakeSpeaker(t)
	c := NewController(24000)

	if c.Tap() != nil {
		t.Error("Tap() before first Play should be nil")
	}
	if err := c.Play(monoBuffer(0.1), nil); err != nil {
		t.Fatalf("Play() error: %v", err)
	}
	first := c.Tap()
	if first == nil {
		t.Fatal("Tap() after Play should not be nil")
	}
	if err := c.Play(monoBuffer(0.2), nil); err != nil {
		t.Fatalf("second Play() error: %v", err)
	}
	if c.Tap() != first {
		t.Error("Tap() changed between sessions, want the same shared tap")
	}
}

func TestControllerWindow(t *testing.T) {
	f := installFakeSpeaker(t)
	c := NewController(24000)

	// Before the first session the window reads as centered silence
	w := c.Window(8)
	if len(w) != 8 {
		t.Fatalf("Window length = %d, want 8", len(w))
	}
	for i, b := range w {
		if b != 128 {
			t.Fatalf("Window[%d] = %d before first Play, want 128", i, b)
		}
	}

	if err := c.Play(monoBuffer(1.0, 1.0, 1.0, 1.0), nil); err != nil {
		t.Fatalf("Play() error: %v", err)
	}
	f.drainFrames(t, 4)

	w = c.Window(4)
	for i, b := range w {
		if b != 255 {
			t.Errorf("Window[%d] = %d after full-scale samples, want 255", i, b)
		}
	}
}

func TestControllerProgress(t *testing.T) {
	f := installFakeSpeaker(t)
	c := NewController(24000)

	if e, total := c.Progress(); e != 0 || total != 0 {
		t.Errorf("idle Progress() = (%v, %v), want (0, 0)", e, total)
	}
	if err := c.Play(monoBuffer(make([]float64, 24000)...), nil); err != nil {
		t.Fatalf("Play() error: %v", err)
	}
	if _, total := c.Progress(); total != time.Second {
		t.Errorf("Progress() total = %v, want 1s", total)
	}
	f.drainFrames(t, 2400)
	if elapsed, _ := c.Progress(); elapsed != 100*time.Millisecond {
		t.Errorf("Progress() elapsed = %v, want 100ms", elapsed)
	}
}

func TestControllerClose(t *testing.T) {
	installFakeSpeaker(t)
	c := NewController(24000)
	if err := c.Play(monoBuffer(0.1, 0.2), nil); err != nil {
		t.Fatalf("Play() error: %v", err)
	}
	c.Close()
	c.Close() // second close is a no-op

	if got := c.State(); got != StateIdle {
		t.Errorf("State() after Close = %v, want Idle", got)
	}
	if c.Tap() != nil {
		t.Error("Tap() after Close should be nil")
	}
	if err := c.Play(monoBuffer(0.3), nil); err == nil {
		t.Error("Play() after Close expected error, got nil")
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateIdle, "Idle"},
		{StatePlaying, "Playing"},
		{State(42), "State(42)"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", int(tt.state), got, tt.want)
		}
	}
}
