package playback

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syllaread/internal/clock"
)

// recorder collects reveal notifications with their fake-clock times.
type recorder struct {
	mu        sync.Mutex
	clk       *clock.Fake
	indices   []int
	syllables []string
	times     []time.Time
	completes int
}

func newRecorder(clk *clock.Fake) *recorder {
	return &recorder{clk: clk}
}

func (r *recorder) onChange(i int, s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.indices = append(r.indices, i)
	r.syllables = append(r.syllables, s)
	r.times = append(r.times, r.clk.Now())
}

func (r *recorder) onComplete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completes++
}

func newTestSession(syllables []string, speed time.Duration) (*Session, *recorder, *clock.Fake) {
	clk := clock.NewFake()
	rec := newRecorder(clk)
	s := NewSession(clk, syllables, speed, rec.onChange, rec.onComplete)
	return s, rec, clk
}

func TestPlaybackMonotonicity(t *testing.T) {
	s, rec, clk := newTestSession([]string{"a", "b", "c"}, 100*time.Millisecond)

	s.Start()
	clk.Advance(time.Second)

	require.Equal(t, []int{0, 1, 2}, rec.indices)
	assert.Equal(t, []string{"a", "b", "c"}, rec.syllables)
	assert.Equal(t, 1, rec.completes)
	assert.Equal(t, Completed, s.State())

	for i := 1; i < len(rec.times); i++ {
		assert.Equal(t, 100*time.Millisecond, rec.times[i].Sub(rec.times[i-1]))
	}

	// no further notifications after completion
	clk.Advance(time.Second)
	assert.Len(t, rec.indices, 3)
	assert.Equal(t, 1, rec.completes)
}

func TestPauseCancelsPendingTick(t *testing.T) {
	s, rec, clk := newTestSession([]string{"a", "b", "c"}, 100*time.Millisecond)

	s.Start()
	clk.Advance(150 * time.Millisecond) // one reveal fired, next pending
	require.Equal(t, []int{0}, rec.indices)

	s.Pause()
	clk.Advance(time.Second)
	assert.Equal(t, []int{0}, rec.indices, "no tick may fire after a pause")
	assert.Equal(t, Paused, s.State())
}

func TestPauseResumeElapsedPreserved(t *testing.T) {
	s, _, clk := newTestSession([]string{"a", "b", "c", "d", "e"}, 100*time.Millisecond)

	s.Start()
	clk.Advance(250 * time.Millisecond)
	s.Pause()
	assert.Equal(t, 250*time.Millisecond, s.Elapsed())

	clk.Advance(2 * time.Second) // paused gap must not count
	assert.Equal(t, 250*time.Millisecond, s.Elapsed())

	s.Resume()
	assert.Equal(t, 250*time.Millisecond, s.Elapsed())

	clk.Advance(100 * time.Millisecond)
	assert.Equal(t, 350*time.Millisecond, s.Elapsed())
}

func TestElapsedZeroBeforeStart(t *testing.T) {
	s, _, _ := newTestSession([]string{"a"}, 100*time.Millisecond)
	assert.Equal(t, time.Duration(0), s.Elapsed())
}

func TestResetEmitsPreviewWithoutPlaying(t *testing.T) {
	s, rec, clk := newTestSession([]string{"first", "second"}, 100*time.Millisecond)

	s.Reset()
	assert.Equal(t, []int{0}, rec.indices)
	assert.Equal(t, []string{"first"}, rec.syllables)
	assert.Equal(t, Idle, s.State())

	clk.Advance(time.Second)
	assert.Len(t, rec.indices, 1, "preview must not start playback")
}

func TestResetMidPlayback(t *testing.T) {
	s, rec, clk := newTestSession([]string{"a", "b", "c"}, 100*time.Millisecond)

	s.Start()
	clk.Advance(250 * time.Millisecond)
	require.Equal(t, 2, s.Position())

	s.Reset()
	assert.Equal(t, 0, s.Position())
	assert.Equal(t, time.Duration(0), s.PausedAccum())
	assert.Equal(t, Idle, s.State())

	before := len(rec.indices)
	clk.Advance(time.Second)
	assert.Len(t, rec.indices, before, "reset cancels scheduling")
}

func TestStopKeepsPosition(t *testing.T) {
	s, rec, clk := newTestSession([]string{"a", "b", "c"}, 100*time.Millisecond)

	s.Start()
	clk.Advance(250 * time.Millisecond)
	require.Equal(t, 2, s.Position())
	emitted := len(rec.indices)

	s.Stop()
	assert.Equal(t, Idle, s.State())
	assert.Equal(t, 2, s.Position(), "stop does not reset the index")

	clk.Advance(time.Second)
	assert.Len(t, rec.indices, emitted, "stop cancels scheduling")
}

func TestSetSpeedAppliesFromNextTick(t *testing.T) {
	s, rec, clk := newTestSession([]string{"a", "b", "c"}, 100*time.Millisecond)

	s.Start()
	clk.Advance(100 * time.Millisecond)
	require.Equal(t, []int{0}, rec.indices)

	s.SetSpeed(300 * time.Millisecond)

	// the already-armed tick still fires on the old interval
	clk.Advance(100 * time.Millisecond)
	assert.Equal(t, []int{0, 1}, rec.indices)

	// from here on the new interval applies
	clk.Advance(100 * time.Millisecond)
	assert.Equal(t, []int{0, 1}, rec.indices)
	clk.Advance(200 * time.Millisecond)
	assert.Equal(t, []int{0, 1, 2}, rec.indices)
}

func TestOperationsAreSafeNoOpsOutsideValidStates(t *testing.T) {
	s, rec, clk := newTestSession([]string{"a", "b"}, 100*time.Millisecond)

	s.Pause()  // not playing
	s.Resume() // not paused
	assert.Equal(t, Idle, s.State())
	assert.Empty(t, rec.indices)

	s.Start()
	s.Start() // already playing
	clk.Advance(100 * time.Millisecond)
	assert.Equal(t, []int{0}, rec.indices, "double start must not double-schedule")
}

func TestProgress(t *testing.T) {
	s, _, clk := newTestSession([]string{"a", "b", "c", "d"}, 100*time.Millisecond)

	p := s.Progress()
	assert.Equal(t, Progress{Current: 0, Total: 4, Percentage: 0}, p)

	s.Start()
	clk.Advance(200 * time.Millisecond)
	p = s.Progress()
	assert.Equal(t, Progress{Current: 2, Total: 4, Percentage: 50}, p)
}

func TestProgressEmptySequence(t *testing.T) {
	s, _, _ := newTestSession(nil, 100*time.Millisecond)
	assert.Equal(t, Progress{Current: 0, Total: 0, Percentage: 0}, s.Progress())
}

func TestEmptySequenceCompletesImmediately(t *testing.T) {
	s, rec, clk := newTestSession(nil, 100*time.Millisecond)

	s.Start()
	clk.Advance(100 * time.Millisecond)
	assert.Empty(t, rec.indices)
	assert.Equal(t, 1, rec.completes)
	assert.Equal(t, Completed, s.State())
}

func TestRestoreClampsIndex(t *testing.T) {
	s, _, _ := newTestSession([]string{"a", "b", "c"}, 100*time.Millisecond)

	s.Restore(10, 400*time.Millisecond)
	assert.Equal(t, 2, s.Position())
	assert.Equal(t, 400*time.Millisecond, s.Elapsed())

	s.Restore(-1, 0)
	assert.Equal(t, 0, s.Position())
}

func TestRestoredElapsedCarriesIntoStart(t *testing.T) {
	s, _, clk := newTestSession([]string{"a", "b", "c"}, 100*time.Millisecond)

	s.Restore(1, 500*time.Millisecond)
	s.Start()
	assert.Equal(t, 500*time.Millisecond, s.Elapsed())

	clk.Advance(100 * time.Millisecond)
	assert.Equal(t, 600*time.Millisecond, s.Elapsed())
}

func TestForcePaused(t *testing.T) {
	s, rec, clk := newTestSession([]string{"a", "b"}, 100*time.Millisecond)

	s.Restore(1, 300*time.Millisecond)
	s.ForcePaused()
	assert.Equal(t, Paused, s.State())
	assert.Equal(t, 300*time.Millisecond, s.Elapsed())

	clk.Advance(time.Second)
	assert.Empty(t, rec.indices, "forced pause must not schedule")

	s.Resume()
	clk.Advance(100 * time.Millisecond)
	assert.Equal(t, []int{1}, rec.indices, "resume picks up at the restored index")
}
