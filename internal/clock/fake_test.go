package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeAdvanceFiresInDeadlineOrder(t *testing.T) {
	clk := NewFake()
	var fired []string

	clk.AfterFunc(200*time.Millisecond, func() { fired = append(fired, "b") })
	clk.AfterFunc(100*time.Millisecond, func() { fired = append(fired, "a") })

	clk.Advance(time.Second)
	assert.Equal(t, []string{"a", "b"}, fired)
}

func TestFakeStoppedTimerDoesNotFire(t *testing.T) {
	clk := NewFake()
	fired := false

	timer := clk.AfterFunc(100*time.Millisecond, func() { fired = true })
	assert.True(t, timer.Stop())

	clk.Advance(time.Second)
	assert.False(t, fired)
	assert.False(t, timer.Stop(), "second stop reports the timer already stopped")
}

func TestFakeCallbackMaySchedule(t *testing.T) {
	clk := NewFake()
	var fired []time.Time

	clk.AfterFunc(100*time.Millisecond, func() {
		fired = append(fired, clk.Now())
		clk.AfterFunc(100*time.Millisecond, func() { fired = append(fired, clk.Now()) })
	})

	start := clk.Now()
	clk.Advance(250 * time.Millisecond)
	assert.Equal(t, []time.Time{
		start.Add(100 * time.Millisecond),
		start.Add(200 * time.Millisecond),
	}, fired)
	assert.Equal(t, start.Add(250*time.Millisecond), clk.Now())
}
