package tui

// Key-flow tests for the timer, history and shell models. Each test drives a
// complete interaction through Update so regressions in key dispatch, guard
// conditions or command wiring fail fast here.

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/calegria/focus-cli/internal/config"
	"github.com/calegria/focus-cli/internal/domain"
	"github.com/calegria/focus-cli/internal/ports"
	"github.com/calegria/focus-cli/internal/services"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+q":
		return tea.KeyMsg{Type: tea.KeyCtrlQ}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

type fakeBackend struct {
	sessions   map[string]*domain.Session
	failCreate bool
	failDelete bool
	shutdowns  int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{sessions: make(map[string]*domain.Session)}
}

func (b *fakeBackend) CreateSession(_ context.Context, title string, durationMinutes float64) (*domain.Session, error) {
	if b.failCreate {
		return nil, errors.New("backend unreachable")
	}
	session, err := domain.NewSession(title, durationMinutes, time.Now())
	if err != nil {
		return nil, err
	}
	b.sessions[session.ID] = session
	return session, nil
}

func (b *fakeBackend) CompleteSession(_ context.Context, id string, payload domain.CompletionPayload) (*domain.Session, error) {
	session, ok := b.sessions[id]
	if !ok {
		return nil, errors.New("session not found")
	}
	if err := session.Complete(payload, time.Now()); err != nil {
		return nil, err
	}
	return session, nil
}

func (b *fakeBackend) DeleteSession(_ context.Context, id string) error {
	if b.failDelete {
		return errors.New("backend unreachable")
	}
	delete(b.sessions, id)
	return nil
}

func (b *fakeBackend) SessionsByDate(_ context.Context, date string) ([]*domain.Session, error) {
	var out []*domain.Session
	for _, s := range b.sessions {
		if s.Date == date {
			out = append(out, s)
		}
	}
	return out, nil
}

func (b *fakeBackend) DayAggregates(_ context.Context) ([]domain.DayAggregate, error) {
	byDate := make(map[string]*domain.DayAggregate)
	for _, s := range b.sessions {
		if s.EndTime == nil {
			continue
		}
		agg, ok := byDate[s.Date]
		if !ok {
			agg = &domain.DayAggregate{Date: s.Date}
			byDate[s.Date] = agg
		}
		agg.SessionCount++
		agg.TotalMinutes += s.DurationMinutes
	}
	var out []domain.DayAggregate
	for _, agg := range byDate {
		out = append(out, *agg)
	}
	return out, nil
}

func (b *fakeBackend) Shutdown(context.Context) error {
	b.shutdowns++
	return nil
}

type memSnapshots struct {
	snap *domain.TimerSnapshot
}

func (s *memSnapshots) Save(snap domain.TimerSnapshot) error {
	s.snap = &snap
	return nil
}

func (s *memSnapshots) Load() (domain.TimerSnapshot, error) {
	if s.snap == nil {
		return domain.TimerSnapshot{}, ports.ErrNoSnapshot
	}
	return *s.snap, nil
}

func (s *memSnapshots) Clear() error {
	s.snap = nil
	return nil
}

type noopNotifier struct {
	calls int
}

func (n *noopNotifier) SessionEnded(string) error {
	n.calls++
	return nil
}

type fixture struct {
	backend   *fakeBackend
	snapshots *memSnapshots
	notifier  *noopNotifier
	service   *services.TimerService
}

func newFixture() *fixture {
	backend := newFakeBackend()
	snapshots := &memSnapshots{}
	return &fixture{
		backend:   backend,
		snapshots: snapshots,
		notifier:  &noopNotifier{},
		service:   services.NewTimerService(backend, snapshots),
	}
}

func newTestTimer(f *fixture) TimerModel {
	return NewTimerModel(f.service, f.notifier, config.DefaultThemeConfig(), nil)
}

// typeString feeds each rune through Update as a key press.
func typeString(m TimerModel, s string) TimerModel {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

// runCmd executes a command synchronously. It must not be used on batches
// that contain the display tick.
func runCmd(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command, got nil")
	}
	return cmd()
}

func runningTimer(t *testing.T, f *fixture, title string) TimerModel {
	t.Helper()
	m := newTestTimer(f)
	m = typeString(m, title)
	m, cmd := m.Update(key("enter"))
	m, _ = m.Update(runCmd(t, cmd))
	if !m.Running() {
		t.Fatal("timer should be running after start round-trip")
	}
	return m
}

// ---------------------------------------------------------------------------
// Timer: idle form
// ---------------------------------------------------------------------------

func TestTimer_StartRoundTrip(t *testing.T) {
	f := newFixture()
	m := newTestTimer(f)
	m = typeString(m, "deep work")

	m, cmd := m.Update(key("enter"))
	if !m.starting {
		t.Error("enter with a valid form should set starting = true")
	}

	msg := runCmd(t, cmd)
	started, ok := msg.(sessionStartedMsg)
	if !ok {
		t.Fatalf("expected sessionStartedMsg, got %T", msg)
	}
	if started.snap.Title != "deep work" {
		t.Errorf("snapshot title = %q, want %q", started.snap.Title, "deep work")
	}

	m, _ = m.Update(msg)
	if !m.Running() {
		t.Error("timer should be running after sessionStartedMsg")
	}
	if f.snapshots.snap == nil {
		t.Error("a snapshot should be persisted on start")
	}
}

func TestTimer_EnterRejectsEmptyTitle(t *testing.T) {
	f := newFixture()
	m := newTestTimer(f)

	m, cmd := m.Update(key("enter"))
	if cmd != nil {
		t.Error("enter with an empty title should not issue a start command")
	}
	if m.lastError == nil {
		t.Error("enter with an empty title should surface a validation error")
	}
	if m.Running() {
		t.Error("timer must stay idle on invalid input")
	}
}

func TestTimer_StartFailureStaysIdle(t *testing.T) {
	f := newFixture()
	f.backend.failCreate = true
	m := newTestTimer(f)
	m = typeString(m, "deep work")

	m, cmd := m.Update(key("enter"))
	msg := runCmd(t, cmd)
	if _, ok := msg.(startFailedMsg); !ok {
		t.Fatalf("expected startFailedMsg, got %T", msg)
	}

	m, _ = m.Update(msg)
	if m.Running() {
		t.Error("timer must stay idle when the backend rejects the start")
	}
	if m.starting {
		t.Error("starting flag should reset on failure")
	}
	if m.lastError == nil {
		t.Error("start failure should be surfaced as an error")
	}
	if f.snapshots.snap != nil {
		t.Error("no snapshot may be written on a failed start")
	}
	if m.titleInput.Value() != "deep work" {
		t.Error("typed title should survive a failed start for retry")
	}
}

func TestTimer_DurationFieldKeys(t *testing.T) {
	f := newFixture()
	m := newTestTimer(f)

	// Typed digits go to the title while it has focus.
	m = typeString(m, "2")
	if m.picker.Minutes() != domain.DefaultDurationMinutes {
		t.Error("digit keys must not change the duration while the title is focused")
	}
	m.titleInput.Reset()

	m, _ = m.Update(key("down"))
	if !m.durationFocused {
		t.Fatal("down should move focus to the duration field")
	}

	m, _ = m.Update(key("2"))
	if m.picker.Minutes() != 5 {
		t.Errorf("preset [2] should select 5 minutes, got %v", m.picker.Minutes())
	}

	m, _ = m.Update(key("a"))
	if m.picker.Minutes() != 5.5 {
		t.Errorf("[a] should add half a minute, got %v", m.picker.Minutes())
	}

	m, _ = m.Update(key("up"))
	if m.durationFocused {
		t.Error("up should move focus back to the title")
	}
}

// ---------------------------------------------------------------------------
// Timer: running
// ---------------------------------------------------------------------------

func TestTimer_TickExpiryOpensCompletionOnce(t *testing.T) {
	f := newFixture()
	m := newTestTimer(f)
	m.machine.Resume(domain.TimerSnapshot{
		ID:            "s1",
		Title:         "deep work",
		EndTime:       time.Now().Add(-time.Second),
		TotalDuration: 25 * time.Minute,
	})

	m, _ = m.Update(tickMsg(time.Now()))
	if m.machine.Phase() != domain.PhaseAwaitingCompletion {
		t.Fatal("an expired deadline should open the completion dialog on the next tick")
	}

	view := strings.Join(m.View(nil), "\n")
	if !strings.Contains(view, "Time is up") {
		t.Error("completion view should announce that time is up")
	}

	// Later ticks keep the dialog open without re-firing the transition.
	m, _ = m.Update(tickMsg(time.Now()))
	if m.machine.Phase() != domain.PhaseAwaitingCompletion {
		t.Error("extra ticks must not leave the completion phase")
	}
}

func TestTimer_CancelConfirmFlow(t *testing.T) {
	f := newFixture()
	m := runningTimer(t, f, "deep work")

	m, _ = m.Update(key("c"))
	if !m.confirmCancel {
		t.Fatal("first [c] should ask for confirmation")
	}
	view := strings.Join(m.View(nil), "\n")
	if !strings.Contains(view, "confirm") {
		t.Error("running view should show the confirm hint")
	}

	m, cmd := m.Update(key("y"))
	if m.Running() {
		t.Error("confirmed cancel should return the timer to idle")
	}
	if m.titleInput.Value() != "deep work" {
		t.Error("cancel must preserve the typed title")
	}

	msg := runCmd(t, cmd)
	if done, ok := msg.(cancelDoneMsg); !ok || done.err != nil {
		t.Fatalf("expected clean cancelDoneMsg, got %T %v", msg, msg)
	}
	if f.snapshots.snap != nil {
		t.Error("cancel must clear the snapshot")
	}
	if len(f.backend.sessions) != 0 {
		t.Error("cancel should delete the backend record")
	}
}

func TestTimer_CancelAbortedByOtherKey(t *testing.T) {
	f := newFixture()
	m := runningTimer(t, f, "deep work")

	m, _ = m.Update(key("c"))
	m, _ = m.Update(key("x"))
	if m.confirmCancel {
		t.Error("an unrelated key should dismiss the cancel confirmation")
	}
	if !m.Running() {
		t.Error("a dismissed confirmation must keep the timer running")
	}
}

func TestTimer_FinishEarlyOpensCompletion(t *testing.T) {
	f := newFixture()
	m := runningTimer(t, f, "deep work")

	m, _ = m.Update(key("f"))
	if m.machine.Phase() != domain.PhaseAwaitingCompletion {
		t.Error("[f] should open the completion dialog immediately")
	}
	if f.snapshots.snap == nil {
		t.Error("finishing early must keep the snapshot until completion is saved")
	}
}

// ---------------------------------------------------------------------------
// Timer: completion dialog
// ---------------------------------------------------------------------------

func TestTimer_CompletionSaveRoundTrip(t *testing.T) {
	f := newFixture()
	m := runningTimer(t, f, "deep work")
	m, _ = m.Update(key("f"))

	m, _ = m.Update(key("8"))
	m, cmd := m.Update(key("enter"))
	msg := runCmd(t, cmd)
	result, ok := msg.(completionResultMsg)
	if !ok {
		t.Fatalf("expected completionResultMsg, got %T", msg)
	}
	if result.err != nil {
		t.Fatalf("completion failed: %v", result.err)
	}

	m, _ = m.Update(msg)
	if m.Running() {
		t.Error("timer should be idle after a saved completion")
	}
	if m.titleInput.Value() != "" {
		t.Error("title input should reset for the next session")
	}
	if f.snapshots.snap != nil {
		t.Error("completion must clear the snapshot")
	}

	for _, session := range f.backend.sessions {
		if session.Rating == nil || *session.Rating != 8 {
			t.Errorf("backend session rating = %v, want 8", session.Rating)
		}
		if session.EndTime == nil {
			t.Error("backend session should be closed")
		}
	}
}

func TestTimer_CompletionEscSkips(t *testing.T) {
	f := newFixture()
	m := runningTimer(t, f, "deep work")
	m, _ = m.Update(key("f"))

	m, cmd := m.Update(key("esc"))
	msg := runCmd(t, cmd)
	m, _ = m.Update(msg)

	if m.Running() {
		t.Error("a skipped completion should still close the session")
	}
	for _, session := range f.backend.sessions {
		if session.Rating != nil {
			t.Error("a skip must not record a rating")
		}
		if session.EndTime == nil {
			t.Error("a skip still closes the session")
		}
	}
}

// ---------------------------------------------------------------------------
// Shell
// ---------------------------------------------------------------------------

func newTestShell(f *fixture) Shell {
	return NewShell(f.service, f.notifier, config.DefaultThemeConfig(), nil)
}

func TestShell_TabSwitchesViews(t *testing.T) {
	f := newFixture()
	m := newTestShell(f)

	result, cmd := m.Update(key("tab"))
	m = result.(Shell)
	if m.active != viewHistory {
		t.Fatal("tab should switch to the history view")
	}
	if cmd == nil {
		t.Error("entering history should load the day aggregates")
	}

	result, _ = m.Update(key("tab"))
	m = result.(Shell)
	if m.active != viewTimer {
		t.Error("tab should switch back to the timer view")
	}
}

func TestShell_CompletionSuccessLandsInHistory(t *testing.T) {
	f := newFixture()
	m := newTestShell(f)

	result, cmd := m.Update(completionResultMsg{err: nil})
	m = result.(Shell)
	if m.active != viewHistory {
		t.Error("a saved completion should land the user in history")
	}
	if cmd == nil {
		t.Error("landing in history should trigger an aggregate load")
	}
}

func TestShell_CompletionFailureStaysOnTimer(t *testing.T) {
	f := newFixture()
	m := newTestShell(f)

	result, _ := m.Update(completionResultMsg{err: errors.New("backend unreachable")})
	m = result.(Shell)
	if m.active != viewTimer {
		t.Error("a failed completion must stay on the timer view")
	}
}

func TestShell_ShutdownConfirmFlow(t *testing.T) {
	f := newFixture()
	m := newTestShell(f)

	result, _ := m.Update(key("ctrl+q"))
	m = result.(Shell)
	if !m.confirmShutdown {
		t.Fatal("ctrl+q should ask for confirmation")
	}
	if !strings.Contains(m.View(), "Shut down the server?") {
		t.Error("view should show the shutdown confirmation")
	}

	result, cmd := m.Update(key("y"))
	m = result.(Shell)
	msg := runCmd(t, cmd)
	if _, ok := msg.(shutdownResultMsg); !ok {
		t.Fatalf("expected shutdownResultMsg, got %T", msg)
	}
	if f.backend.shutdowns != 1 {
		t.Errorf("shutdown requests = %d, want 1", f.backend.shutdowns)
	}

	result, _ = m.Update(msg)
	m = result.(Shell)
	if !m.quitting {
		t.Error("a clean shutdown should quit the program")
	}
}

func TestShell_ShutdownConfirmDismissed(t *testing.T) {
	f := newFixture()
	m := newTestShell(f)

	result, _ := m.Update(key("ctrl+q"))
	m = result.(Shell)
	result, _ = m.Update(key("n"))
	m = result.(Shell)

	if m.confirmShutdown {
		t.Error("any other key should dismiss the shutdown confirmation")
	}
	if f.backend.shutdowns != 0 {
		t.Error("a dismissed confirmation must not hit the backend")
	}
}

func TestShell_CtrlCQuits(t *testing.T) {
	f := newFixture()
	m := newTestShell(f)

	result, cmd := m.Update(key("ctrl+c"))
	m = result.(Shell)
	if !m.quitting {
		t.Error("ctrl+c should quit")
	}
	if cmd == nil {
		t.Error("ctrl+c should return tea.Quit")
	}
}

// ---------------------------------------------------------------------------
// History
// ---------------------------------------------------------------------------

func historyWithDays(f *fixture) HistoryModel {
	m := NewHistoryModel(f.service, config.DefaultThemeConfig())
	m, _ = m.Update(datesLoadedMsg{aggregates: []domain.DayAggregate{
		{Date: "2026-08-28", SessionCount: 2, TotalMinutes: 50},
		{Date: "2026-08-27", SessionCount: 1, TotalMinutes: 25},
	}})
	return m
}

func TestHistory_ListNavigationAndOpen(t *testing.T) {
	f := newFixture()
	m := historyWithDays(f)

	m, _ = m.Update(key("j"))
	if m.cursor != 1 {
		t.Errorf("j should move the cursor down, got %d", m.cursor)
	}
	m, _ = m.Update(key("k"))
	if m.cursor != 0 {
		t.Errorf("k should move the cursor up, got %d", m.cursor)
	}

	_, cmd := m.Update(key("enter"))
	msg := runCmd(t, cmd)
	loaded, ok := msg.(sessionsLoadedMsg)
	if !ok {
		t.Fatalf("expected sessionsLoadedMsg, got %T", msg)
	}
	if loaded.date != "2026-08-28" {
		t.Errorf("enter should open the selected day, got %q", loaded.date)
	}
}

func TestHistory_DetailFuzzyFilter(t *testing.T) {
	f := newFixture()
	m := historyWithDays(f)

	s1, _ := domain.NewSession("write report", 25, time.Now())
	s2, _ := domain.NewSession("review code", 25, time.Now())
	m, _ = m.Update(sessionsLoadedMsg{date: s1.Date, sessions: []*domain.Session{s1, s2}})
	if !m.detail {
		t.Fatal("sessionsLoadedMsg should open the day detail")
	}

	m, _ = m.Update(key("/"))
	if !m.filtering {
		t.Fatal("/ should enter filter mode")
	}
	m, _ = m.Update(key("r"))
	m, _ = m.Update(key("e"))
	m, _ = m.Update(key("p"))

	visible := m.visibleSessions()
	if len(visible) != 1 || visible[0].Title != "write report" {
		titles := make([]string, len(visible))
		for i, s := range visible {
			titles[i] = s.Title
		}
		t.Errorf("filter 'rep' should match only 'write report', got %v", titles)
	}

	m, _ = m.Update(key("esc"))
	if m.filterInput.Value() != "" {
		t.Error("esc should clear the filter")
	}
	if len(m.visibleSessions()) != 2 {
		t.Error("clearing the filter should restore all sessions")
	}
}

func TestHistory_DeleteConfirmAndRefetch(t *testing.T) {
	f := newFixture()
	session, err := f.backend.CreateSession(context.Background(), "write report", 25)
	if err != nil {
		t.Fatal(err)
	}

	m := historyWithDays(f)
	m, _ = m.Update(sessionsLoadedMsg{date: session.Date, sessions: []*domain.Session{session}})

	m, _ = m.Update(key("d"))
	if !m.confirmDelete {
		t.Fatal("d should ask for confirmation")
	}

	m, cmd := m.Update(key("y"))
	msg := runCmd(t, cmd)
	deleted, ok := msg.(sessionDeletedMsg)
	if !ok {
		t.Fatalf("expected sessionDeletedMsg, got %T", msg)
	}
	if deleted.err != nil {
		t.Fatalf("delete failed: %v", deleted.err)
	}
	if len(f.backend.sessions) != 0 {
		t.Error("delete should remove the backend record")
	}

	// The deletion result refetches both the day and the aggregates.
	_, cmd = m.Update(msg)
	if cmd == nil {
		t.Error("a deletion should trigger a refetch")
	}
}

func TestHistory_BackRefetchesAggregates(t *testing.T) {
	f := newFixture()
	m := historyWithDays(f)
	s, _ := domain.NewSession("write report", 25, time.Now())
	m, _ = m.Update(sessionsLoadedMsg{date: s.Date, sessions: []*domain.Session{s}})

	m, cmd := m.Update(key("esc"))
	if m.detail {
		t.Error("esc should return to the day list")
	}
	msg := runCmd(t, cmd)
	if _, ok := msg.(datesLoadedMsg); !ok {
		t.Fatalf("going back should refetch aggregates, got %T", msg)
	}
}

func TestHistory_EmptyStateView(t *testing.T) {
	f := newFixture()
	m := NewHistoryModel(f.service, config.DefaultThemeConfig())
	m, _ = m.Update(datesLoadedMsg{})

	view := strings.Join(m.View(nil), "\n")
	if !strings.Contains(view, "No completed sessions yet.") {
		t.Error("empty history should show the empty state")
	}
}
