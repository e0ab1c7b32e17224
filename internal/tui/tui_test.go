package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/castedit/internal/cast"
	"github.com/dshills/castedit/internal/castfile"
)

const testCast = `{"version": 2, "width": 80, "height": 24, "title": "demo", "theme": {"fg": "#ffffff", "bg": "#000000", "palette": "#000000:#aa0000:#00aa00:#aa5500:#0000aa:#aa00aa:#00aaaa:#aaaaaa"}}
[1.0, "o", "one"]
[2.0, "i", "two"]
[3.0, "o", "three"]
`

func newTestEditor(t *testing.T) (*Editor, *NullBackend, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.cast")
	if err := os.WriteFile(path, []byte(testCast), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := castfile.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { f.Close() })

	b := NewNullBackend(60, 10)
	if err := b.Init(); err != nil {
		t.Fatal(err)
	}
	opts := DefaultOptions()
	opts.OutPath = filepath.Join(dir, "out.cast")
	e := New(f, b, opts)
	if err := e.load(0); err != nil {
		t.Fatalf("load: %v", err)
	}
	return e, b, opts.OutPath
}

func press(e *Editor, keys string) {
	for _, r := range keys {
		e.Handle(KeyEvent(r))
	}
}

func typeLine(e *Editor, s string) {
	press(e, s)
	e.Handle(SpecialKey(KeyEnter))
}

func clearInput(e *Editor) {
	for len(e.input) > 0 {
		e.Handle(SpecialKey(KeyBackspace))
	}
}

func eventTimes(e *Editor) []float64 {
	out := make([]float64, len(e.events))
	for i, p := range e.events {
		out[i] = p.Time
	}
	return out
}

func sameTimes(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello world", 5, "hell…"},
		{"日本語", 4, "日…"},
		{"abc", 0, ""},
		{"abc", 1, "…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
	if w := displayWidth("日本"); w != 4 {
		t.Errorf("displayWidth = %d, want 4", w)
	}
}

func TestSanitize(t *testing.T) {
	if got := sanitize("a\x1b[0mb\n"); got != "a·[0mb·" {
		t.Errorf("sanitize = %q", got)
	}
	if got := sanitize(`plain \u001b`); got != `plain \u001b` {
		t.Errorf("sanitize changed plain text: %q", got)
	}
}

func TestDrawTextWide(t *testing.T) {
	b := NewNullBackend(10, 1)
	b.Init()
	if n := drawText(b, 0, 0, 10, "日a", DefaultStyle()); n != 3 {
		t.Errorf("drawText used %d columns, want 3", n)
	}
	if got := b.Line(0); got != "日a" {
		t.Errorf("Line = %q", got)
	}
	if n := drawText(b, 0, 0, 1, "日", DefaultStyle()); n != 0 {
		t.Errorf("wide rune in one column used %d", n)
	}
}

func TestDraw(t *testing.T) {
	e, b, _ := newTestEditor(t)
	e.Draw()

	if top := b.Line(0); !strings.Contains(top, "demo") || !strings.Contains(top, "80x24") {
		t.Errorf("header row = %q", top)
	}
	if sw := b.Line(1); !strings.Contains(sw, "fg") || !strings.Contains(sw, " 7 ") {
		t.Errorf("swatch row = %q", sw)
	}
	cell := b.GetCell(2, 1)
	if cell.Style.BG == nil || *cell.Style.BG != (cast.RGB{R: 0xff, G: 0xff, B: 0xff}) {
		t.Errorf("fg swatch background = %v", cell.Style.BG)
	}
	if cell.Style.FG == nil || *cell.Style.FG != (cast.RGB{}) {
		t.Errorf("fg swatch text = %v, want black", cell.Style.FG)
	}

	if row := b.Line(2); !strings.HasSuffix(row, "1.000000 o one") {
		t.Errorf("first event row = %q", row)
	}
	if row := b.Line(3); !strings.HasSuffix(row, "2.000000 i two") {
		t.Errorf("second event row = %q", row)
	}
	if b.GetCell(5, 2).Style.Attrs&AttrReverse == 0 {
		t.Error("selected row is not highlighted")
	}
	if status := b.Line(9); !strings.Contains(status, "1/3") {
		t.Errorf("status row = %q", status)
	}
}

func TestNavigation(t *testing.T) {
	e, b, _ := newTestEditor(t)

	press(e, "jj")
	if e.sel != 2 {
		t.Fatalf("sel = %d, want 2", e.sel)
	}
	press(e, "j")
	if p, _ := e.Selected(); p.Time != 3 || b.Beeps() != 1 {
		t.Errorf("past end: selected %v, beeps %d", p.Time, b.Beeps())
	}
	press(e, "g")
	if p, _ := e.Selected(); p.Time != 1 {
		t.Errorf("after g selected %v", p.Time)
	}
	press(e, "G")
	if p, _ := e.Selected(); p.Time != 3 {
		t.Errorf("after G selected %v", p.Time)
	}
	e.Handle(SpecialKey(KeyHome))
	press(e, "k")
	if b.Beeps() != 2 {
		t.Errorf("up at start beeps = %d, want 2", b.Beeps())
	}
}

func TestDeleteUndelete(t *testing.T) {
	e, _, _ := newTestEditor(t)

	press(e, "jd")
	if !sameTimes(eventTimes(e), []float64{1, 3}) {
		t.Fatalf("after delete times = %v", eventTimes(e))
	}
	if !e.Dirty() {
		t.Error("delete did not mark the editor dirty")
	}
	press(e, "u")
	if !sameTimes(eventTimes(e), []float64{1, 2, 3}) {
		t.Fatalf("after undelete times = %v", eventTimes(e))
	}
	if p, _ := e.Selected(); p.Time != 2 {
		t.Errorf("undelete selected %v, want 2", p.Time)
	}
	press(e, "u")
	if e.Status() != "nothing to undelete" {
		t.Errorf("status = %q", e.Status())
	}
}

func TestInsertAndEdit(t *testing.T) {
	e, b, _ := newTestEditor(t)

	press(e, "j")
	press(e, "i")
	typeLine(e, "1.5 m chapter")
	if !sameTimes(eventTimes(e), []float64{1, 1.5, 2, 3}) {
		t.Fatalf("times = %v, status %q", eventTimes(e), e.Status())
	}
	e.Draw()
	if row := b.Line(3); !strings.HasPrefix(row, "+") || !strings.HasSuffix(row, "m chapter") {
		t.Errorf("inserted row = %q", row)
	}

	// Editing in place only works on insertions.
	e.sel = 2
	press(e, "e")
	if e.prompt != promptNone || !strings.Contains(e.Status(), "use m") {
		t.Errorf("edit of original: prompt %v status %q", e.prompt, e.Status())
	}

	e.sel = 1
	press(e, "e")
	if string(e.input) != "chapter" {
		t.Fatalf("edit prompt prefilled with %q", string(e.input))
	}
	clearInput(e)
	typeLine(e, "intro")
	if p := e.events[1]; p.Payload() != "intro" || p.Code() != cast.CodeMarker {
		t.Errorf("edited event = %v", p.Event)
	}

	press(e, "i")
	typeLine(e, "9 o late")
	if !strings.HasPrefix(e.Status(), "error:") {
		t.Errorf("out of order insert status = %q", e.Status())
	}
	if len(e.events) != 4 {
		t.Errorf("failed insert changed the events: %v", eventTimes(e))
	}
}

func TestModify(t *testing.T) {
	e, _, _ := newTestEditor(t)

	press(e, "jm")
	if string(e.input) != "2 two" {
		t.Fatalf("modify prompt prefilled with %q", string(e.input))
	}
	clearInput(e)
	typeLine(e, "2.5 moved")
	if !sameTimes(eventTimes(e), []float64{1, 2.5, 3}) {
		t.Fatalf("times = %v, status %q", eventTimes(e), e.Status())
	}
	if p := e.events[1]; p.Code() != cast.CodeInput || p.Payload() != "moved" {
		t.Errorf("modified event = %v", p.Event)
	}
}

func TestPromptCancel(t *testing.T) {
	e, _, _ := newTestEditor(t)
	press(e, "iabc")
	e.Handle(SpecialKey(KeyEscape))
	if e.prompt != promptNone || e.Dirty() {
		t.Errorf("escape left prompt %v dirty %v", e.prompt, e.Dirty())
	}
}

func TestSaveAndQuit(t *testing.T) {
	e, _, out := newTestEditor(t)

	press(e, "d")
	if e.Handle(KeyEvent('q')) {
		t.Fatal("quit with unsaved changes on first q")
	}
	if !strings.Contains(e.Status(), "unsaved") {
		t.Errorf("status = %q", e.Status())
	}
	press(e, "j")
	if e.Handle(KeyEvent('q')) {
		t.Fatal("another key must disarm the quit guard")
	}

	press(e, "w")
	if e.Dirty() {
		t.Fatalf("still dirty after save: %q", e.Status())
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 || lines[1] != `[2.0, "i", "two"]` {
		t.Errorf("saved file =\n%s", data)
	}
	if !e.Handle(KeyEvent('q')) {
		t.Error("q after save did not quit")
	}
}

func TestCtrlCQuits(t *testing.T) {
	e, _, _ := newTestEditor(t)
	press(e, "d")
	if !e.Handle(SpecialKey(KeyCtrlC)) {
		t.Error("ctrl-c did not quit")
	}
}

func TestRunLoop(t *testing.T) {
	e, b, _ := newTestEditor(t)
	b.PostEvent(KeyEvent('j'))
	b.Resize(40, 8)
	b.PostEvent(KeyEvent('q'))
	if err := e.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if p, _ := e.Selected(); p.Time != 2 {
		t.Errorf("selected %v after run, want 2", p.Time)
	}
}
