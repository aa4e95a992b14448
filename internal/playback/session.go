// Package playback drives the timed syllable reveal: a fixed-interval
// state machine over an ordered syllable sequence with pause/resume that
// keeps elapsed wall-clock time continuous across pause gaps.
package playback

import (
	"sync"
	"time"

	"syllaread/internal/clock"
)

// State is the session lifecycle state.
type State int

const (
	Idle State = iota
	Playing
	Paused
	Completed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Completed:
		return "completed"
	}
	return "unknown"
}

// Progress is a snapshot of how far the reveal has advanced.
type Progress struct {
	Current    int `json:"current"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// Session reveals one syllable per interval. Exactly one Session is live
// per document; replacing content builds a fresh Session and transplants
// position and elapsed time into it via Restore.
type Session struct {
	mu        sync.Mutex
	clk       clock.Clock
	syllables []string

	speed       time.Duration
	index       int
	state       State
	startedAt   time.Time
	pausedAccum time.Duration
	everStarted bool

	timer clock.Timer
	epoch int // invalidates timer callbacks cancelled after scheduling

	onChange   func(index int, syllable string)
	onComplete func()
}

// NewSession builds an Idle session over syllables. onChange and
// onComplete may be nil.
func NewSession(clk clock.Clock, syllables []string, speed time.Duration,
	onChange func(int, string), onComplete func()) *Session {
	return &Session{
		clk:        clk,
		syllables:  syllables,
		speed:      speed,
		onChange:   onChange,
		onComplete: onComplete,
	}
}

// Start begins (or restarts) playback. No-op while already Playing. A
// truthy paused accumulator is preserved so elapsed time carries over.
func (s *Session) Start() {
	s.mu.Lock()
	if s.state == Playing {
		s.mu.Unlock()
		return
	}
	s.startedAt = s.clk.Now().Add(-s.pausedAccum)
	s.everStarted = true
	s.state = Playing
	s.scheduleLocked()
	s.mu.Unlock()
}

// Pause freezes playback. No-op unless Playing.
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Playing {
		return
	}
	s.pausedAccum = s.clk.Now().Sub(s.startedAt)
	s.cancelLocked()
	s.state = Paused
}

// Resume continues playback after a pause. No-op unless Paused.
func (s *Session) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Paused {
		return
	}
	s.startedAt = s.clk.Now().Add(-s.pausedAccum)
	s.state = Playing
	s.scheduleLocked()
}

// Reset returns the session to Idle at position 0 with elapsed time
// cleared, and emits a one-time preview of syllable 0 without playing.
func (s *Session) Reset() {
	s.mu.Lock()
	s.cancelLocked()
	s.index = 0
	s.pausedAccum = 0
	s.everStarted = false
	s.state = Idle
	var preview func()
	if s.onChange != nil && len(s.syllables) > 0 {
		onChange, first := s.onChange, s.syllables[0]
		preview = func() { onChange(0, first) }
	}
	s.mu.Unlock()

	if preview != nil {
		preview()
	}
}

// Stop cancels scheduling and returns to Idle. Unlike Reset it keeps the
// current position and emits no preview.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	s.state = Idle
}

// SetSpeed changes the reveal interval. Takes effect from the next
// scheduled tick, never retroactively.
func (s *Session) SetSpeed(speed time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speed = speed
}

// Speed returns the current reveal interval.
func (s *Session) Speed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speed
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Position returns the current syllable index.
func (s *Session) Position() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// PausedAccum returns the frozen elapsed time captured by the last pause.
func (s *Session) PausedAccum() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pausedAccum
}

// Progress reports current index, total and rounded percentage.
func (s *Session) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := len(s.syllables)
	pct := 0
	if total > 0 {
		pct = int(float64(s.index)/float64(total)*100 + 0.5)
	}
	return Progress{Current: s.index, Total: total, Percentage: pct}
}

// Elapsed returns accumulated playback time: zero before the first start,
// the frozen accumulator while paused, wall-clock since the adjusted
// start otherwise.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.state == Paused:
		return s.pausedAccum
	case !s.everStarted && s.pausedAccum == 0:
		return 0
	case !s.everStarted:
		return s.pausedAccum
	default:
		return s.clk.Now().Sub(s.startedAt)
	}
}

// Restore transplants position and elapsed time captured from a replaced
// session. Only meaningful while Idle; the index is clamped into range.
func (s *Session) Restore(index int, elapsed time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 {
		index = 0
	}
	if n := len(s.syllables); n > 0 && index > n-1 {
		index = n - 1
	}
	s.index = index
	s.pausedAccum = elapsed
}

// ForcePaused moves an Idle session directly to Paused without scheduling,
// used when swapped-in content must keep the caller's paused state.
func (s *Session) ForcePaused() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Idle {
		return
	}
	s.state = Paused
}

// scheduleLocked arms the next reveal, reading the interval fresh so a
// SetSpeed applies from the following tick.
func (s *Session) scheduleLocked() {
	s.epoch++
	epoch := s.epoch
	s.timer = s.clk.AfterFunc(s.speed, func() { s.reveal(epoch) })
}

// cancelLocked stops the pending reveal and invalidates any callback that
// already fired but has not yet run.
func (s *Session) cancelLocked() {
	s.epoch++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) reveal(epoch int) {
	s.mu.Lock()
	if epoch != s.epoch || s.state != Playing {
		s.mu.Unlock()
		return
	}

	if s.index >= len(s.syllables) {
		s.cancelLocked()
		s.state = Completed
		done := s.onComplete
		s.mu.Unlock()
		if done != nil {
			done()
		}
		return
	}

	index, syllable := s.index, s.syllables[s.index]
	s.index++
	s.scheduleLocked()
	emit := s.onChange
	s.mu.Unlock()

	if emit != nil {
		emit(index, syllable)
	}
}
