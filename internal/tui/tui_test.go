package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/nowdoing/internal/clock"
	"github.com/sadopc/nowdoing/internal/tracker"
)

var t0 = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestTracker(t *testing.T) (*tracker.Tracker, *clock.Manual) {
	t.Helper()
	clk := clock.NewManual(t0)
	tr := tracker.New(tracker.WithClock(clk), tracker.WithLocation(time.UTC))
	return tr, clk
}

func newTestApp(t *testing.T) (App, *tracker.Tracker, *clock.Manual) {
	t.Helper()
	tr, clk := newTestTracker(t)
	app := NewApp(tr, Options{Clock: clk, ExportDir: t.TempDir()})
	model, _ := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return model.(App), tr, clk
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func currentName(t *testing.T, tr *tracker.Tracker) string {
	t.Helper()
	s, err := tr.CurrentStatus()
	if err != nil {
		t.Fatalf("current status: %v", err)
	}
	return s.Name
}

// run executes cmd and returns its message, or nil.
func run(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	return cmd()
}

// ============================================================
// Click counter
// ============================================================

func TestClickCounterFiresOnThirdPress(t *testing.T) {
	clk := clock.NewManual(t0)
	c := newClickCounter(clk, 3, 5*time.Second)

	if c.press() || c.press() {
		t.Fatal("gesture fired early")
	}
	if c.pending() != 2 {
		t.Fatalf("pending = %d, want 2", c.pending())
	}
	if !c.press() {
		t.Fatal("third press should fire")
	}
	if c.pending() != 0 {
		t.Fatal("count should restart after firing")
	}
}

func TestClickCounterIdleResets(t *testing.T) {
	clk := clock.NewManual(t0)
	c := newClickCounter(clk, 3, 5*time.Second)

	c.press()
	c.press()
	clk.Advance(5 * time.Second)
	if c.pending() != 0 {
		t.Fatal("pending should drop to 0 after idle")
	}
	if c.press() {
		t.Fatal("press after idle should start a new gesture")
	}
	if c.pending() != 1 {
		t.Fatalf("pending = %d, want 1", c.pending())
	}
}

func TestClickCounterWithinWindow(t *testing.T) {
	clk := clock.NewManual(t0)
	c := newClickCounter(clk, 3, 5*time.Second)

	c.press()
	clk.Advance(4 * time.Second)
	c.press()
	clk.Advance(4 * time.Second)
	if !c.press() {
		t.Fatal("presses 4s apart should stay in one gesture")
	}
}

func TestClickCounterMinimumOne(t *testing.T) {
	c := newClickCounter(clock.NewManual(t0), 0, time.Second)
	if !c.press() {
		t.Fatal("a single press should fire when need < 1")
	}
}

// ============================================================
// Projection
// ============================================================

func TestProjection(t *testing.T) {
	tr, clk := newTestTracker(t)
	clk.Advance(90 * time.Second)

	p := project(tr)
	if p.err != nil {
		t.Fatal(p.err)
	}
	if p.status.Name != "❌" {
		t.Fatalf("status = %q, want ❌", p.status.Name)
	}
	if p.elapsed != 90 || p.elapsedString() != "1:30" {
		t.Fatalf("elapsed = %d (%q)", p.elapsed, p.elapsedString())
	}
	if len(p.today) != len(p.statuses) {
		t.Fatalf("today has %d entries, want %d", len(p.today), len(p.statuses))
	}
}

func TestProjectionTodayTotalActiveOnly(t *testing.T) {
	tr, clk := newTestTracker(t)
	clk.Advance(60 * time.Second) // idle
	tr.Start("💻")
	clk.Advance(120 * time.Second)

	p := project(tr)
	if got := p.todayTotal(); got != 120 {
		t.Fatalf("todayTotal = %d, want 120", got)
	}
}

func TestProjectionStatusFor(t *testing.T) {
	tr, _ := newTestTracker(t)
	p := project(tr)

	if _, ok := p.statusFor("💻"); !ok {
		t.Fatal("💻 should resolve")
	}
	if _, ok := p.statusFor("nope"); ok {
		t.Fatal("unknown name should not resolve")
	}
}

// ============================================================
// Now view
// ============================================================

func TestDashboardDigitStarts(t *testing.T) {
	tr, _ := newTestTracker(t)
	d := newDashboardModel(tr)

	d, cmd := d.update(runeKey("3"), project(tr))
	if got := currentName(t, tr); got != "💻" {
		t.Fatalf("current = %q, want 💻", got)
	}
	if d.cursor != 2 {
		t.Fatalf("cursor = %d, want 2", d.cursor)
	}
	if msg, ok := run(cmd).(startedMsg); !ok || msg.name != "💻" {
		t.Fatalf("expected startedMsg, got %#v", run(cmd))
	}
}

func TestDashboardDigitOutOfRange(t *testing.T) {
	tr, _ := newTestTracker(t)
	d := newDashboardModel(tr)
	before := len(tr.Records())

	_, cmd := d.update(runeKey("9"), project(tr))
	msg, ok := run(cmd).(statusMsg)
	if !ok || !msg.isError {
		t.Fatalf("expected error status, got %#v", run(cmd))
	}
	if len(tr.Records()) != before {
		t.Fatal("out-of-range digit must not mutate")
	}
}

func TestDashboardCursorEnter(t *testing.T) {
	tr, _ := newTestTracker(t)
	d := newDashboardModel(tr)
	p := project(tr)

	d, _ = d.update(tea.KeyMsg{Type: tea.KeyDown}, p)
	d, _ = d.update(tea.KeyMsg{Type: tea.KeyDown}, p)
	d, _ = d.update(tea.KeyMsg{Type: tea.KeyUp}, p)
	if d.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", d.cursor)
	}

	d.update(tea.KeyMsg{Type: tea.KeyEnter}, p)
	if got := currentName(t, tr); got != "😎" {
		t.Fatalf("current = %q, want 😎", got)
	}
}

func TestDashboardCursorBounds(t *testing.T) {
	tr, _ := newTestTracker(t)
	d := newDashboardModel(tr)
	p := project(tr)

	d, _ = d.update(tea.KeyMsg{Type: tea.KeyUp}, p)
	if d.cursor != 0 {
		t.Fatal("cursor should not go below 0")
	}
	for range 10 {
		d, _ = d.update(tea.KeyMsg{Type: tea.KeyDown}, p)
	}
	if d.cursor != len(p.statuses)-1 {
		t.Fatalf("cursor = %d, want %d", d.cursor, len(p.statuses)-1)
	}
}

func TestDashboardStartUnknownStatus(t *testing.T) {
	tr, _ := newTestTracker(t)
	d := newDashboardModel(tr)

	msg, ok := run(d.start("nope")).(statusMsg)
	if !ok || !msg.isError {
		t.Fatal("unknown status should surface an error")
	}
	if len(tr.Records()) != 1 {
		t.Fatal("unknown status must not mutate")
	}
}

func TestDashboardEditFormPrefill(t *testing.T) {
	tr, clk := newTestTracker(t)
	clk.Advance(75 * time.Second)
	d := newDashboardModel(tr)

	d, _ = d.update(runeKey("e"), project(tr))
	if !d.editing || d.form == nil {
		t.Fatal("e should open the edit form")
	}
	if *d.editValue != "1:15" {
		t.Fatalf("prefill = %q, want 1:15", *d.editValue)
	}

	d, _ = d.update(tea.KeyMsg{Type: tea.KeyEsc}, project(tr))
	if d.editing {
		t.Fatal("esc should close the edit form")
	}
}

func TestDashboardApplyEdit(t *testing.T) {
	tr, clk := newTestTracker(t)
	clk.Advance(10 * time.Second)
	d := newDashboardModel(tr)

	msg, ok := run(d.applyEdit("1:05")).(editedMsg)
	if !ok || msg.secs != 65 {
		t.Fatalf("expected editedMsg{65}, got %#v", msg)
	}
	r, _ := tr.CurrentRecord()
	if got := tr.ElapsedSeconds(r); got != 65 {
		t.Fatalf("elapsed = %d, want 65", got)
	}
}

func TestDashboardApplyEditInvalid(t *testing.T) {
	tr, clk := newTestTracker(t)
	clk.Advance(10 * time.Second)
	d := newDashboardModel(tr)
	before, _ := tr.CurrentRecord()

	msg, ok := run(d.applyEdit("1:xx")).(statusMsg)
	if !ok || !msg.isError {
		t.Fatal("invalid duration should surface an error")
	}
	after, _ := tr.CurrentRecord()
	if !after.StartedAt.Equal(before.StartedAt) {
		t.Fatal("invalid duration must not mutate")
	}
}

func TestValidateDuration(t *testing.T) {
	if err := validateDuration("1:02:03"); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}
	if err := validateDuration("-5"); err != nil {
		t.Fatalf("negative input rejected: %v", err)
	}
	if err := validateDuration("a:b"); err == nil {
		t.Fatal("invalid input accepted")
	}
}

// ============================================================
// History view
// ============================================================

func TestHistoryCursor(t *testing.T) {
	tr, clk := newTestTracker(t)
	for _, name := range []string{"😎", "💻", "🍔"} {
		clk.Advance(time.Minute)
		tr.Start(name)
	}
	p := project(tr)
	h := newHistoryModel()
	h.setSize(120, 40)

	for range 10 {
		h, _ = h.update(tea.KeyMsg{Type: tea.KeyDown}, p)
	}
	if h.cursor != len(p.records)-1 {
		t.Fatalf("cursor = %d, want %d", h.cursor, len(p.records)-1)
	}
	out := h.view(p)
	if !strings.Contains(out, "History (4)") {
		t.Fatalf("history header missing count:\n%s", out)
	}
}

func TestHistoryScrolls(t *testing.T) {
	tr, clk := newTestTracker(t)
	for range 20 {
		clk.Advance(time.Minute)
		tr.Start("💻")
	}
	p := project(tr)
	h := newHistoryModel()
	h.setSize(120, 12)

	for range 15 {
		h, _ = h.update(tea.KeyMsg{Type: tea.KeyDown}, p)
	}
	if h.offset == 0 {
		t.Fatal("offset should follow the cursor")
	}
	if h.cursor < h.offset || h.cursor >= h.offset+h.pageSize() {
		t.Fatalf("cursor %d outside window [%d,%d)", h.cursor, h.offset, h.offset+h.pageSize())
	}
}

type mapSlot map[string][]byte

func (m mapSlot) Read(key string) ([]byte, error) { return m[key], nil }
func (m mapSlot) Write(key string, value []byte) error {
	m[key] = value
	return nil
}

func TestHistoryNegativeSpanFloors(t *testing.T) {
	slot := mapSlot{tracker.AppName: []byte(`{"statuses":[{"name":"💻","kind":"active"}],"records":[` +
		`{"statusName":"💻","startedAt":"2026-03-10T11:30:00Z"},` +
		`{"statusName":"💻","startedAt":"2026-03-10T11:00:00Z","finishedAt":"2026-03-10T10:59:49.5Z"}]}`)}
	tr, err := tracker.Open(slot, tracker.WithClock(clock.NewManual(t0)))
	if err != nil {
		t.Fatal(err)
	}
	p := project(tr)
	if p.spans[1] != -11 {
		t.Fatalf("span = %d, want -11", p.spans[1])
	}
	h := newHistoryModel()
	h.setSize(120, 40)
	out := h.view(p)
	if !strings.Contains(out, "-0:11") || strings.Contains(out, "-0:10") {
		t.Fatalf("negative span should floor to -0:11:\n%s", out)
	}
	if !strings.Contains(out, "30:00") {
		t.Fatalf("open record should show its elapsed time:\n%s", out)
	}
}

// ============================================================
// Reset prompt
// ============================================================

func TestResetApply(t *testing.T) {
	tr, clk := newTestTracker(t)
	clk.Advance(time.Minute)
	tr.Start("💻")
	tr.SetStatuses([]tracker.Status{{Name: "x", Kind: tracker.KindIdle}})

	r := newResetModel(tr)
	if msg, ok := run(r.apply(resetStatuses)).(resetDoneMsg); !ok || msg.all {
		t.Fatal("expected resetDoneMsg{all: false}")
	}
	if len(tr.Statuses()) != len(tracker.DefaultStatuses()) {
		t.Fatal("statuses should be back to defaults")
	}
	if len(tr.Records()) != 2 {
		t.Fatal("resetting statuses must keep records")
	}

	if msg, ok := run(r.apply(resetAll)).(resetDoneMsg); !ok || !msg.all {
		t.Fatal("expected resetDoneMsg{all: true}")
	}
	if len(tr.Records()) != 1 {
		t.Fatal("reset all should leave one record")
	}

	if r.apply(resetCancel) != nil {
		t.Fatal("cancel should do nothing")
	}
}

// ============================================================
// App model
// ============================================================

func TestNewApp(t *testing.T) {
	app, _, _ := newTestApp(t)

	if app.activeView != viewNow {
		t.Fatal("default view should be Now")
	}
	if app.showHelp || app.exportPicking || app.isFormActive() {
		t.Fatal("no overlays should be open initially")
	}
	if app.poll != time.Second {
		t.Fatalf("poll = %v, want 1s", app.poll)
	}
}

func TestAppTickRefreshes(t *testing.T) {
	app, _, clk := newTestApp(t)
	clk.Advance(42 * time.Second)

	model, cmd := app.Update(tickMsg(clk.Now()))
	app = model.(App)
	if app.proj.elapsed != 42 {
		t.Fatalf("elapsed = %d, want 42", app.proj.elapsed)
	}
	if cmd == nil {
		t.Fatal("tick should schedule the next tick")
	}
}

func TestAppDigitStartsStatus(t *testing.T) {
	app, tr, _ := newTestApp(t)

	model, cmd := app.Update(runeKey("2"))
	model, _ = model.(App).Update(run(cmd))
	app = model.(App)

	if got := currentName(t, tr); got != "😎" {
		t.Fatalf("current = %q, want 😎", got)
	}
	if app.proj.status.Name != "😎" {
		t.Fatal("projection should refresh after start")
	}
	if !strings.Contains(app.status, "😎") {
		t.Fatalf("status line = %q", app.status)
	}
}

func TestAppTabCycles(t *testing.T) {
	app, _, _ := newTestApp(t)

	for _, want := range []viewState{viewToday, viewHistory, viewNow} {
		model, _ := app.Update(tea.KeyMsg{Type: tea.KeyTab})
		app = model.(App)
		if app.activeView != want {
			t.Fatalf("view = %d, want %d", app.activeView, want)
		}
	}

	model, _ := app.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if model.(App).activeView != viewHistory {
		t.Fatal("shift+tab should go back to History")
	}
}

func TestAppResetGesture(t *testing.T) {
	app, _, _ := newTestApp(t)

	for i := 0; i < 2; i++ {
		model, _ := app.Update(runeKey("r"))
		app = model.(App)
		if app.reset.active {
			t.Fatalf("reset opened after %d presses", i+1)
		}
	}
	if !strings.Contains(app.status, "1 more") {
		t.Fatalf("status line = %q", app.status)
	}

	model, _ := app.Update(runeKey("r"))
	app = model.(App)
	if !app.reset.active || !app.isFormActive() {
		t.Fatal("third press should open the reset prompt")
	}

	model, _ = app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if model.(App).reset.active {
		t.Fatal("esc should close the reset prompt")
	}
}

func TestAppResetGestureExpires(t *testing.T) {
	app, _, clk := newTestApp(t)

	model, _ := app.Update(runeKey("r"))
	model, _ = model.(App).Update(runeKey("r"))
	clk.Advance(6 * time.Second)
	model, _ = model.(App).Update(runeKey("r"))

	if model.(App).reset.active {
		t.Fatal("presses separated by idle time should not open reset")
	}
}

func TestAppResetDone(t *testing.T) {
	app, tr, clk := newTestApp(t)
	clk.Advance(time.Minute)
	tr.Start("💻")
	app.dashboard.cursor = 2

	tr.ResetAll()
	model, _ := app.Update(resetDoneMsg{all: true})
	app = model.(App)

	if app.dashboard.cursor != 0 {
		t.Fatal("cursor should reset")
	}
	if app.proj.status.Name != "❌" {
		t.Fatalf("status = %q, want ❌", app.proj.status.Name)
	}
	if app.status != "Everything reset" {
		t.Fatalf("status line = %q", app.status)
	}
}

func TestAppExport(t *testing.T) {
	app, _, _ := newTestApp(t)

	msg, ok := run(app.doExport(0)).(exportDoneMsg)
	if !ok {
		t.Fatal("expected exportDoneMsg")
	}
	if filepath.Base(msg.path) != "nowdoing-export-2026-03-10.csv" {
		t.Fatalf("path = %q", msg.path)
	}
	if _, err := os.Stat(msg.path); err != nil {
		t.Fatalf("export file missing: %v", err)
	}

	msg, ok = run(app.doExport(1)).(exportDoneMsg)
	if !ok || filepath.Ext(msg.path) != ".json" {
		t.Fatalf("expected json export, got %#v", msg)
	}
}

func TestAppExportBadDir(t *testing.T) {
	tr, clk := newTestTracker(t)
	app := NewApp(tr, Options{Clock: clk, ExportDir: "/nonexistent/dir"})

	msg, ok := run(app.doExport(0)).(statusMsg)
	if !ok || !msg.isError {
		t.Fatal("export to a bad dir should surface an error")
	}
}

func TestAppExportPicker(t *testing.T) {
	app, _, _ := newTestApp(t)

	model, _ := app.Update(runeKey("x"))
	app = model.(App)
	if !app.exportPicking {
		t.Fatal("x should open the export picker")
	}
	model, _ = app.Update(tea.KeyMsg{Type: tea.KeyDown})
	app = model.(App)
	if app.exportCursor != 1 {
		t.Fatal("down should select JSON")
	}
	model, _ = app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if model.(App).exportPicking {
		t.Fatal("esc should close the picker")
	}
}

func TestAppViewStates(t *testing.T) {
	app, _, _ := newTestApp(t)

	for v := range viewNames {
		app.activeView = viewState(v)
		if app.View() == "" {
			t.Fatalf("view %d rendered empty", v)
		}
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	app, _, _ := newTestApp(t)

	header := app.renderHeader()
	for _, name := range viewNames {
		if !strings.Contains(header, name) {
			t.Fatalf("header missing tab %q", name)
		}
	}
}

func TestAppLoadingState(t *testing.T) {
	tr, _ := newTestTracker(t)
	app := NewApp(tr, Options{})
	if out := app.View(); out != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", out)
	}
}

func TestAppStatusMessage(t *testing.T) {
	app, _, _ := newTestApp(t)

	model, _ := app.Update(statusMsg{text: "test status"})
	if !strings.Contains(model.(App).renderFooter(), "test status") {
		t.Fatal("footer should contain status message")
	}
}

func TestAppEditedStatusUsesAppliedValue(t *testing.T) {
	app, tr, clk := newTestApp(t)
	clk.Advance(10 * time.Second)
	if err := tr.EditCurrentDuration(65); err != nil {
		t.Fatal(err)
	}
	clk.Advance(3 * time.Second)

	model, _ := app.Update(editedMsg{secs: 65})
	footer := model.(App).renderFooter()
	if !strings.Contains(footer, "Duration set to 1:05") {
		t.Fatalf("footer should report the applied duration:\n%s", footer)
	}
}

type failingSlot struct{}

func (failingSlot) Read(string) ([]byte, error) { return nil, nil }
func (failingSlot) Write(string, []byte) error  { return errors.New("disk full") }

func TestAppFooterShowsSaveError(t *testing.T) {
	tr, err := tracker.Open(failingSlot{}, tracker.WithClock(clock.NewManual(t0)))
	if err != nil {
		t.Fatal(err)
	}
	app := NewApp(tr, Options{})
	model, _ := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	if !strings.Contains(model.(App).renderFooter(), "not saved") {
		t.Fatal("footer should flag the failed save")
	}
}

// ============================================================
// Key bindings
// ============================================================

func TestKeyMapShortHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should have bindings")
	}
}

func TestKeyMapFullHelp(t *testing.T) {
	groups := keys.FullHelp()
	if len(groups) == 0 {
		t.Fatal("full help should have groups")
	}
	for i, g := range groups {
		if len(g) == 0 {
			t.Fatalf("full help group %d is empty", i)
		}
	}
}

// ============================================================
// Styles (smoke test: verify they don't panic)
// ============================================================

func TestStylesRender(t *testing.T) {
	styles := []struct {
		name string
		fn   func() string
	}{
		{"activeTab", func() string { return activeTabStyle.Render("test") }},
		{"inactiveTab", func() string { return inactiveTabStyle.Render("test") }},
		{"panel", func() string { return panelStyle.Render("test") }},
		{"activePanel", func() string { return activePanelStyle.Render("test") }},
		{"timer", func() string { return timerStyle.Render("test") }},
		{"title", func() string { return titleStyle.Render("test") }},
		{"accent", func() string { return accentStyle.Render("test") }},
		{"success", func() string { return successStyle.Render("test") }},
		{"warning", func() string { return warningStyle.Render("test") }},
		{"error", func() string { return errorStyle.Render("test") }},
		{"muted", func() string { return mutedStyle.Render("test") }},
		{"highlight", func() string { return highlightStyle.Render("test") }},
		{"header", func() string { return headerStyle.Render("test") }},
		{"footer", func() string { return footerStyle.Render("test") }},
		{"selectedItem", func() string { return selectedItemStyle.Render("test") }},
		{"normalItem", func() string { return normalItemStyle.Render("test") }},
		{"status", func() string { return statusStyle(tracker.DefaultStatuses()[1]).Render("test") }},
		{"bareStatus", func() string { return statusStyle(tracker.Status{Name: "x"}).Render("test") }},
	}

	for _, s := range styles {
		if s.fn() == "" {
			t.Fatalf("style %q rendered empty", s.name)
		}
	}
}
