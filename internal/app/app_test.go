package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/andyrewlee/scrollwin/internal/config"
	"github.com/andyrewlee/scrollwin/internal/messages"
)

type fakeSource struct {
	name     string
	startErr error
	started  bool
	closed   bool
	rows     uint16
	cols     uint16
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Start(context.Context, chan<- tea.Msg) error {
	f.started = true
	return f.startErr
}

func (f *fakeSource) Close() error {
	f.closed = true
	return nil
}

func (f *fakeSource) SetSize(rows, cols uint16) error {
	f.rows, f.cols = rows, cols
	return nil
}

func newTestApp(t *testing.T) (*App, *fakeSource) {
	return newTestAppWith(t, nil)
}

func newTestAppWith(t *testing.T, adjust func(*config.Config)) (*App, *fakeSource) {
	t.Helper()
	cfg, err := config.LoadFrom(config.PathsAt(t.TempDir()))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	cfg.FrameInterval = time.Millisecond
	if adjust != nil {
		adjust(cfg)
	}
	src := &fakeSource{name: "fake.log"}
	a := New(cfg, src)
	t.Cleanup(a.Shutdown)
	return a, src
}

func numberedLines(from, to int) []byte {
	var b strings.Builder
	for i := from; i < to; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	return []byte(b.String())
}

func press(a *App, text string) tea.Cmd {
	_, cmd := a.Update(tea.KeyPressMsg{Code: []rune(text)[0], Text: text})
	return cmd
}

func frame(a *App) {
	a.Update(messages.Frame{At: time.Now()})
}

func TestInitStartsSource(t *testing.T) {
	a, src := newTestApp(t)
	if cmd := a.Init(); cmd != nil {
		t.Fatalf("expected no command, got one")
	}
	if !src.started {
		t.Fatal("expected source to be started")
	}
	a.Shutdown()
	if !src.closed {
		t.Fatal("expected Shutdown to close the source")
	}
}

func TestInitReportsStartError(t *testing.T) {
	a, src := newTestApp(t)
	src.startErr = errors.New("no such file")

	cmd := a.Init()
	if cmd == nil {
		t.Fatal("expected an error command")
	}
	msg, ok := cmd().(messages.Error)
	if !ok || !strings.Contains(msg.Error(), "no such file") {
		t.Fatalf("unexpected message %#v", msg)
	}
	if !a.stopped {
		t.Fatal("a source that failed to start counts as stopped")
	}
}

func TestLinesBeforeSizeAreHeld(t *testing.T) {
	a, _ := newTestApp(t)
	a.Update(messages.SourceOutput{Source: "fake.log", Data: []byte("alpha\nbravo\n")})

	if got := a.Scroller().LineCount(); got != 2 {
		t.Fatalf("LineCount = %d, want 2", got)
	}
	if !a.Scroller().Dirty() {
		t.Fatal("expected a redraw to be owed until the surface exists")
	}
	if a.render() != "Loading..." {
		t.Fatalf("render = %q", a.render())
	}

	_, cmd := a.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	if cmd == nil {
		t.Fatal("expected a frame tick once the surface is attached")
	}
	frame(a)
	if a.Scroller().Dirty() {
		t.Fatal("expected the frame to render the held lines")
	}
	if !strings.Contains(a.render(), "bravo") {
		t.Fatalf("render missing content: %q", a.render())
	}
}

func TestFollowsTail(t *testing.T) {
	a, src := newTestApp(t)
	a.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	if src.cols != 80 || int(src.rows) != a.paneHeight() {
		t.Fatalf("source size = %dx%d, want %dx%d", src.rows, src.cols, a.paneHeight(), 80)
	}

	a.Update(messages.SourceOutput{Data: numberedLines(0, 1000)})
	frame(a)

	start, end := a.Scroller().Window()
	if start != 950 || end != 1000 {
		t.Fatalf("window = [%d,%d), want [950,1000)", start, end)
	}
	if !a.surface.AtBottom() {
		t.Fatal("expected the pane to be pinned to the bottom")
	}
	out := a.render()
	if !strings.Contains(out, "line 999") || !strings.Contains(out, "FOLLOW") {
		t.Fatalf("render missing tail or badge:\n%s", out)
	}
	if !strings.Contains(out, "of 1000") {
		t.Fatalf("render missing line range:\n%s", out)
	}
}

func TestScrollUpPausesAndFollowResumes(t *testing.T) {
	a, _ := newTestApp(t)
	a.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	a.Update(messages.SourceOutput{Data: numberedLines(0, 1000)})
	frame(a)

	press(a, "k")
	if a.Scroller().Sticky() {
		t.Fatal("scrolling up should pause following")
	}
	if !strings.Contains(a.render(), "PAUSED") {
		t.Fatal("expected PAUSED badge")
	}

	// New output while paused does not move the window.
	a.Update(messages.SourceOutput{Data: numberedLines(1000, 1010)})
	frame(a)
	if _, end := a.Scroller().Window(); end != 1000 {
		t.Fatalf("window end = %d, want 1000 while paused", end)
	}

	press(a, "G")
	if !a.Scroller().Sticky() || !a.Scroller().JumpPending() {
		t.Fatal("follow key should resume following")
	}
	frame(a)
	if _, end := a.Scroller().Window(); end != 1010 {
		t.Fatalf("window end = %d, want 1010", end)
	}
	if !a.surface.AtBottom() {
		t.Fatal("expected jump to bottom")
	}
}

func TestWheelScrollsOnlyInsidePane(t *testing.T) {
	a, _ := newTestApp(t)
	a.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	a.Update(messages.SourceOutput{Data: numberedLines(0, 200)})
	frame(a)
	top := a.surface.TopRow()

	a.Update(tea.MouseWheelMsg{X: 5, Y: a.paneHeight(), Button: tea.MouseWheelUp})
	if a.surface.TopRow() != top {
		t.Fatal("wheel over the status bar must not scroll")
	}

	a.Update(tea.MouseWheelMsg{X: 5, Y: 1, Button: tea.MouseWheelUp})
	if got := a.surface.TopRow(); got != top-wheelRows {
		t.Fatalf("top row = %d, want %d", got, top-wheelRows)
	}
	if a.Scroller().Sticky() {
		t.Fatal("wheel up should pause following")
	}
}

func TestTopWalksToOldestLine(t *testing.T) {
	a, _ := newTestApp(t)
	a.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	a.Update(messages.SourceOutput{Data: numberedLines(0, 1000)})
	frame(a)

	press(a, "g")
	frame(a)

	start, end := a.Scroller().Window()
	if start != 0 {
		t.Fatalf("window start = %d, want 0", start)
	}
	if end > 2*a.Scroller().VisibleCount() {
		t.Fatalf("window end = %d exceeds the cap after a frame", end)
	}
	if a.surface.TopRow() != 0 {
		t.Fatalf("top row = %d, want 0", a.surface.TopRow())
	}
	if !strings.Contains(a.render(), "line 0") {
		t.Fatal("expected the oldest line in view")
	}
}

func TestTallPaneReachesHistory(t *testing.T) {
	a, _ := newTestApp(t)
	a.Update(tea.WindowSizeMsg{Width: 80, Height: 70})
	if a.paneHeight() <= a.cfg.Window.VisibleCount {
		t.Fatalf("pane height = %d, want taller than %d lines", a.paneHeight(), a.cfg.Window.VisibleCount)
	}
	a.Update(messages.SourceOutput{Data: numberedLines(0, 1000)})
	frame(a)

	if got := a.Scroller().VisibleCount(); got <= a.paneHeight() {
		t.Fatalf("visible count = %d, want more than the %d row pane", got, a.paneHeight())
	}
	if !a.surface.AtBottom() {
		t.Fatal("expected the pane to follow the tail")
	}

	press(a, "k")
	if a.Scroller().Sticky() {
		t.Fatal("scrolling up in a tall pane should pause following")
	}
	for range 5 {
		a.Update(tea.MouseWheelMsg{X: 5, Y: 1, Button: tea.MouseWheelUp})
	}

	press(a, "g")
	frame(a)
	if start, _ := a.Scroller().Window(); start != 0 {
		t.Fatalf("window start = %d, want 0", start)
	}
	if a.surface.TopRow() != 0 {
		t.Fatalf("top row = %d, want 0", a.surface.TopRow())
	}
	if !strings.Contains(a.render(), "line 0") {
		t.Fatal("expected the oldest line in view")
	}
}

func TestResizeTallerKeepsFollowing(t *testing.T) {
	a, _ := newTestApp(t)
	a.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	a.Update(messages.SourceOutput{Data: numberedLines(0, 1000)})
	frame(a)

	a.Update(tea.WindowSizeMsg{Width: 80, Height: 120})
	frame(a)

	start, end := a.Scroller().Window()
	if end != 1000 || end-start != 2*a.paneHeight() {
		t.Fatalf("window = [%d,%d), want %d lines ending at 1000", start, end, 2*a.paneHeight())
	}
	if !a.Scroller().Sticky() || !a.surface.AtBottom() {
		t.Fatal("expected a taller pane to keep following the tail")
	}
}

func TestFollowButtonClick(t *testing.T) {
	a, _ := newTestApp(t)
	a.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	a.Update(messages.SourceOutput{Data: numberedLines(0, 300)})
	frame(a)
	press(a, "k")
	if a.Scroller().Sticky() {
		t.Fatal("expected paused")
	}

	var x, y int
	deadline := time.Now().Add(2 * time.Second)
	for {
		_ = a.render()
		if z := a.zone.Get(followZoneID); z != nil && !z.IsZero() {
			x, y = z.StartX, z.StartY
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("follow zone was never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	a.Update(tea.MouseClickMsg{X: x, Y: y, Button: tea.MouseLeft})
	if !a.Scroller().Sticky() {
		t.Fatal("clicking [follow] should resume following")
	}
}

func TestSourceStoppedFlushesPartialLine(t *testing.T) {
	a, _ := newTestApp(t)
	a.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	a.Update(messages.SourceOutput{Data: []byte("done\nno newline")})
	if got := a.Scroller().LineCount(); got != 1 {
		t.Fatalf("LineCount = %d, want 1", got)
	}

	a.Update(messages.SourceStopped{Source: "fake.log"})
	frame(a)
	if got := a.Scroller().LineCount(); got != 2 {
		t.Fatalf("LineCount = %d, want 2", got)
	}
	out := a.render()
	if !strings.Contains(out, "no newline") || !strings.Contains(out, "EOF") {
		t.Fatalf("render:\n%s", out)
	}

	a.Update(messages.SourceStopped{Source: "fake.log", Err: errors.New("exit status 2")})
	if !strings.Contains(a.render(), "EXITED") {
		t.Fatal("expected EXITED badge")
	}
}

func TestRestartAndResetClearHistory(t *testing.T) {
	a, _ := newTestApp(t)
	a.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	a.Update(messages.SourceOutput{Data: numberedLines(0, 300)})
	frame(a)
	press(a, "k")

	a.Update(messages.SourceRestarted{Source: "fake.log", Reason: "truncated"})
	if got := a.Scroller().LineCount(); got != 0 {
		t.Fatalf("LineCount = %d, want 0 after restart", got)
	}
	if !a.Scroller().Sticky() {
		t.Fatal("restart should resume following")
	}

	a.Update(messages.SourceOutput{Data: numberedLines(0, 5)})
	a.Update(tea.KeyPressMsg{Code: 'l', Mod: tea.ModCtrl})
	if got := a.Scroller().LineCount(); got != 0 {
		t.Fatalf("LineCount = %d, want 0 after reset", got)
	}
}

func TestNoFollowStartsAtOldestLine(t *testing.T) {
	a, _ := newTestAppWith(t, func(cfg *config.Config) { cfg.Window.Follow = false })
	a.Update(messages.SourceOutput{Data: numberedLines(0, 1000)})
	a.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	frame(a)

	if a.Scroller().Sticky() {
		t.Fatal("expected the window to stay detached")
	}
	if start, end := a.Scroller().Window(); start != 0 || end == 0 {
		t.Fatalf("window = [%d,%d), want the oldest lines", start, end)
	}
	if !strings.Contains(a.render(), "line 0") {
		t.Fatal("expected the oldest line in view")
	}
}

func TestRotationKeepsHistory(t *testing.T) {
	a, _ := newTestApp(t)
	a.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	a.Update(messages.SourceOutput{Data: append(numberedLines(0, 300), "unterminated"...)})
	frame(a)

	a.Update(messages.SourceRestarted{Source: "fake.log", Reason: "rotated", Continues: true})
	if got := a.Scroller().LineCount(); got != 301 {
		t.Fatalf("LineCount = %d, want 301 with the old tail kept", got)
	}

	a.Update(messages.SourceOutput{Data: []byte("fresh\n")})
	frame(a)
	if got := a.Scroller().LineCount(); got != 302 {
		t.Fatalf("LineCount = %d, want 302", got)
	}
	out := a.render()
	if !strings.Contains(out, "unterminated") || !strings.Contains(out, "fresh") {
		t.Fatalf("render missing old tail or new line:\n%s", out)
	}
}

func TestTrimmedCountShown(t *testing.T) {
	a, _ := newTestAppWith(t, func(cfg *config.Config) { cfg.History.MaxLines = 200 })
	a.Update(tea.WindowSizeMsg{Width: 120, Height: 24})
	a.Update(messages.SourceOutput{Data: numberedLines(0, 500)})
	frame(a)

	if got := a.Scroller().LineOffset(); got != 300 {
		t.Fatalf("LineOffset = %d, want 300", got)
	}
	if start, end := a.Scroller().Window(); start != 450 || end != 500 {
		t.Fatalf("window = [%d,%d), want [450,500)", start, end)
	}
	if !strings.Contains(a.render(), "300 trimmed") {
		t.Fatalf("render missing trimmed count:\n%s", a.render())
	}
}

func TestQuitKey(t *testing.T) {
	a, _ := newTestApp(t)
	cmd := press(a, "q")
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
	if a.render() != "" {
		t.Fatal("expected empty render while quitting")
	}
}

func TestHelpToggleResizesPaneAndPersists(t *testing.T) {
	a, _ := newTestApp(t)
	a.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	withHelp := a.paneHeight()

	cmd := press(a, "?")
	if a.cfg.UI.ShowHelp {
		t.Fatal("expected help to be hidden")
	}
	if a.paneHeight() != 23 || a.paneHeight() <= withHelp {
		t.Fatalf("pane height = %d (was %d), want 23", a.paneHeight(), withHelp)
	}
	if cmd == nil {
		t.Fatal("expected a save command")
	}
	_ = cmd()

	data, err := os.ReadFile(a.cfg.Paths.ConfigPath)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(data), `"show_help": false`) {
		t.Fatalf("config = %s", data)
	}
}

func TestCopyWindowReturnsCommand(t *testing.T) {
	a, _ := newTestApp(t)
	a.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	a.Update(messages.SourceOutput{Data: numberedLines(0, 10)})
	frame(a)

	cmd := press(a, "y")
	if cmd == nil {
		t.Fatal("expected copy key to emit a command")
	}
	if _, ok := cmd().(messages.CopyWindow); !ok {
		t.Fatal("expected CopyWindow message")
	}
	if _, cmd := a.Update(messages.CopyWindow{}); cmd == nil {
		t.Fatal("expected a clipboard command")
	}
}

func TestMsgSenderForwardsSourceMessages(t *testing.T) {
	a, _ := newTestApp(t)
	got := make(chan tea.Msg, 1)
	a.SetMsgSender(func(msg tea.Msg) { got <- msg })

	a.sourceMsgs <- messages.SourceOutput{Data: []byte("x\n")}
	select {
	case msg := <-got:
		if _, ok := msg.(messages.SourceOutput); !ok {
			t.Fatalf("got %T", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("message was not forwarded")
	}
}

func TestUpdateRecoversPanic(t *testing.T) {
	a, _ := newTestApp(t)
	a.frames = nil
	model, cmd := a.Update(messages.Frame{})
	if model != a || cmd != nil {
		t.Fatal("expected the app back with no command")
	}
	if a.err == nil {
		t.Fatal("expected the panic to be recorded")
	}
}
