package spindle

import (
	"time"
)

type TimerMode uint8

const (
	TimerOnce TimerMode = iota
	TimerRepeating
)

// Timer counts down a duration, either once or repeatedly.
// Systems keep timers in resources or components and advance them with dt.
type Timer struct {
	duration time.Duration
	elapsed  time.Duration
	mode     TimerMode

	finished bool

	// number of times the timer finished during the last call to Tick
	justFinished int
}

func NewTimer(duration time.Duration, mode TimerMode) Timer {
	return Timer{duration: duration, mode: mode}
}

// Tick advances the timer by delta.
func (t *Timer) Tick(delta time.Duration) *Timer {
	t.justFinished = 0

	if t.finished || t.duration <= 0 {
		return t
	}

	t.elapsed += delta
	if t.elapsed < t.duration {
		return t
	}

	switch t.mode {
	case TimerOnce:
		t.elapsed = t.duration
		t.finished = true
		t.justFinished = 1

	case TimerRepeating:
		t.justFinished = int(t.elapsed / t.duration)
		t.elapsed %= t.duration
	}

	return t
}

func (t *Timer) Duration() time.Duration {
	return t.duration
}

func (t *Timer) Elapsed() time.Duration {
	return t.elapsed
}

func (t *Timer) Remaining() time.Duration {
	return t.duration - t.elapsed
}

// Fraction returns how much of the duration has elapsed, between zero and one.
func (t *Timer) Fraction() float64 {
	if t.duration <= 0 {
		return 1
	}

	return float64(t.elapsed) / float64(t.duration)
}

// Finished reports whether a TimerOnce timer has run out. A repeating timer never finishes.
func (t *Timer) Finished() bool {
	return t.finished
}

// JustFinished reports whether the timer ran out during the last call to Tick.
func (t *Timer) JustFinished() bool {
	return t.justFinished > 0
}

// TimesFinishedThisTick returns how often the timer ran out during the last
// call to Tick. Ticking a repeating 1s timer by 3.5s finishes it three times.
func (t *Timer) TimesFinishedThisTick() int {
	return t.justFinished
}

func (t *Timer) Reset() {
	t.elapsed = 0
	t.finished = false
	t.justFinished = 0
}
