package session

import (
	"sync"
	"time"

	cst "everink.io/ember/constants"
)

// TimerPhase is the burn/reveal timer's discrete, UI-facing phase.
type TimerPhase int

const (
	// TimerIdle means the timer is not armed.
	TimerIdle TimerPhase = iota
	// TimerCounting means the visible countdown is running.
	TimerCounting
	// TimerBurning means the burn animation window is in progress.
	TimerBurning
	// TimerDone is terminal until replay.
	TimerDone
)

// burnTickInterval drives progress updates while burning. Progress itself is
// computed from elapsed tick time, so the interval only bounds smoothness.
const burnTickInterval = 50 * time.Millisecond

// BurnTimer is the countdown + phased-burn machine nested inside a Session.
// Arming starts a per-second countdown; at zero (or on a manual burn) the
// burn window opens and progress runs 0..1 over a fixed duration of
// wall-clock time; shortly after full progress it goes DONE and fires the
// completion callback exactly once.
type BurnTimer struct {
	mu sync.Mutex

	sched        Scheduler
	countdown    time.Duration
	burnDuration time.Duration
	doneDelay    time.Duration

	phase       TimerPhase
	secondsLeft int
	progress    float64
	burnStart   time.Time
	completed   bool

	cancelCountdown CancelFunc
	cancelBurn      CancelFunc

	onComplete func()
	onReplay   func()
}

// TimerOption tweaks a BurnTimer's timings.
type TimerOption func(*BurnTimer)

// WithBurnTimings overrides the countdown length, burn window and done delay.
func WithBurnTimings(countdown, burn, doneDelay time.Duration) TimerOption {
	return func(t *BurnTimer) {
		t.countdown = countdown
		t.burnDuration = burn
		t.doneDelay = doneDelay
	}
}

// NewBurnTimer builds a timer with the default burn timings. Callbacks may
// be nil. They are only ever invoked from scheduler ticks or Replay, never
// synchronously from Arm/Burn/Disarm.
func NewBurnTimer(sched Scheduler, onComplete, onReplay func(), opts ...TimerOption) *BurnTimer {
	t := &BurnTimer{
		sched:        sched,
		countdown:    cst.BurnCountdown,
		burnDuration: cst.BurnDuration,
		doneDelay:    cst.BurnDoneDelay,
		onComplete:   onComplete,
		onReplay:     onReplay,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.secondsLeft = int(t.countdown / time.Second)
	return t
}

// Arm starts the countdown. Arming an already-armed timer is a no-op, which
// keeps the at-most-one-countdown-interval invariant.
func (t *BurnTimer) Arm() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.phase != TimerIdle {
		return
	}
	t.phase = TimerCounting
	t.secondsLeft = int(t.countdown / time.Second)
	t.cancelCountdown = t.sched.Every(time.Second, t.countTick)
}

// Burn opens the burn window immediately, bypassing any remaining countdown.
func (t *BurnTimer) Burn() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.phase == TimerBurning || t.phase == TimerDone {
		return
	}
	t.stopJobsLocked()
	t.startBurnLocked(t.sched.Now())
}

// Disarm cancels all ticking and clears progress without invoking any
// callback. Nothing the timer did remains observable afterwards.
func (t *BurnTimer) Disarm() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetLocked()
}

// Replay restores the pre-armed state (full countdown, zero progress, DONE
// cleared) and then invokes the replay callback.
func (t *BurnTimer) Replay() {
	t.mu.Lock()
	t.resetLocked()
	cb := t.onReplay
	t.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// Phase returns the current timer phase.
func (t *BurnTimer) Phase() TimerPhase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.phase
}

// SecondsLeft returns the remaining countdown seconds.
func (t *BurnTimer) SecondsLeft() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.secondsLeft
}

// Progress returns burn progress in [0, 1].
func (t *BurnTimer) Progress() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progress
}

func (t *BurnTimer) countTick(now time.Time) {
	t.mu.Lock()
	if t.phase != TimerCounting {
		t.mu.Unlock()
		return
	}
	t.secondsLeft--
	if t.secondsLeft > 0 {
		t.mu.Unlock()
		return
	}
	t.secondsLeft = 0
	t.stopJobsLocked()
	t.startBurnLocked(now)
	t.mu.Unlock()
}

func (t *BurnTimer) burnTick(now time.Time) {
	t.mu.Lock()
	if t.phase != TimerBurning {
		t.mu.Unlock()
		return
	}
	elapsed := now.Sub(t.burnStart)
	progress := float64(elapsed) / float64(t.burnDuration)
	if progress > 1 {
		progress = 1
	}
	t.progress = progress
	if elapsed < t.burnDuration+t.doneDelay {
		t.mu.Unlock()
		return
	}
	t.phase = TimerDone
	t.stopJobsLocked()
	fire := !t.completed
	t.completed = true
	cb := t.onComplete
	t.mu.Unlock()
	if fire && cb != nil {
		cb()
	}
}

func (t *BurnTimer) startBurnLocked(now time.Time) {
	t.phase = TimerBurning
	t.progress = 0
	t.burnStart = now
	t.cancelBurn = t.sched.Every(burnTickInterval, t.burnTick)
}

func (t *BurnTimer) resetLocked() {
	t.stopJobsLocked()
	t.phase = TimerIdle
	t.secondsLeft = int(t.countdown / time.Second)
	t.progress = 0
	t.completed = false
}

func (t *BurnTimer) stopJobsLocked() {
	if t.cancelCountdown != nil {
		t.cancelCountdown()
		t.cancelCountdown = nil
	}
	if t.cancelBurn != nil {
		t.cancelBurn()
		t.cancelBurn = nil
	}
}
