package domain

import "time"

// TimerPhase is the lifecycle phase of the session timer.
type TimerPhase string

const (
	// PhaseIdle means no session is running.
	PhaseIdle TimerPhase = "idle"

	// PhaseRunning means a session is counting down toward its deadline.
	PhaseRunning TimerPhase = "running"

	// PhaseAwaitingCompletion means the deadline passed (or the user finished
	// early) and the completion dialog has not been resolved yet.
	PhaseAwaitingCompletion TimerPhase = "awaiting_completion"
)

// TimerMachine owns the idle → running → awaiting-completion lifecycle.
// The deadline is an absolute timestamp, so the machine survives process
// restarts via Resume; ticks are only a display refresh trigger. The clock
// is injected so tests can drive time explicitly.
type TimerMachine struct {
	phase    TimerPhase
	snapshot *TimerSnapshot
	now      func() time.Time
}

// NewTimerMachine returns an idle machine using the given clock.
// A nil clock defaults to time.Now.
func NewTimerMachine(clock func() time.Time) *TimerMachine {
	if clock == nil {
		clock = time.Now
	}
	return &TimerMachine{phase: PhaseIdle, now: clock}
}

// Phase returns the current lifecycle phase.
func (m *TimerMachine) Phase() TimerPhase {
	return m.phase
}

// Snapshot returns the active snapshot, or nil when idle.
func (m *TimerMachine) Snapshot() *TimerSnapshot {
	return m.snapshot
}

// Start transitions Idle → Running with a freshly computed deadline.
// The caller has already created the server-side session and validated
// title and duration. No-op outside Idle.
func (m *TimerMachine) Start(id, title string, total time.Duration) *TimerSnapshot {
	if m.phase != PhaseIdle {
		return nil
	}
	snap := &TimerSnapshot{
		ID:            id,
		Title:         title,
		EndTime:       m.now().Add(total),
		TotalDuration: total,
	}
	m.snapshot = snap
	m.phase = PhaseRunning
	return snap
}

// Resume initializes the machine directly into Running from a persisted
// snapshot, skipping Idle. Used once at startup; the server is not consulted.
func (m *TimerMachine) Resume(snap TimerSnapshot) {
	if m.phase != PhaseIdle {
		return
	}
	s := snap
	m.snapshot = &s
	m.phase = PhaseRunning
}

// Tick checks the deadline while Running. It returns true exactly once per
// session, on the tick that crosses the deadline; that tick transitions the
// machine to AwaitingCompletion.
func (m *TimerMachine) Tick() bool {
	if m.phase != PhaseRunning {
		return false
	}
	if !m.snapshot.Expired(m.now()) {
		return false
	}
	m.phase = PhaseAwaitingCompletion
	return true
}

// FinishEarly transitions Running → AwaitingCompletion before the deadline.
// Behaves like natural expiry except the caller skips the alarm.
func (m *TimerMachine) FinishEarly() bool {
	if m.phase != PhaseRunning {
		return false
	}
	m.phase = PhaseAwaitingCompletion
	return true
}

// Cancel abandons the running session and returns to Idle.
func (m *TimerMachine) Cancel() {
	if m.phase != PhaseRunning {
		return
	}
	m.snapshot = nil
	m.phase = PhaseIdle
}

// Complete resolves AwaitingCompletion and returns to Idle.
func (m *TimerMachine) Complete() {
	if m.phase != PhaseAwaitingCompletion {
		return
	}
	m.snapshot = nil
	m.phase = PhaseIdle
}

// Remaining returns the time left on the active session, or zero when idle.
func (m *TimerMachine) Remaining() time.Duration {
	if m.snapshot == nil {
		return 0
	}
	return m.snapshot.Remaining(m.now())
}

// Progress returns the active session's completion fraction in [0, 1].
func (m *TimerMachine) Progress() float64 {
	if m.snapshot == nil {
		return 0
	}
	return m.snapshot.Progress(m.now())
}
