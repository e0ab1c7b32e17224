// Package tui is the interactive terminal editor for cast files.
package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dshills/castedit/internal/cast"
	"github.com/dshills/castedit/internal/castfile"
	"github.com/dshills/castedit/internal/logging"
)

// Colors maps event codes to display colors.
type Colors struct {
	Output cast.RGB
	Input  cast.RGB
	Resize cast.RGB
	Marker cast.RGB
}

// For returns the color of events with code.
func (c Colors) For(code rune) cast.RGB {
	switch code {
	case cast.CodeOutput:
		return c.Output
	case cast.CodeInput:
		return c.Input
	case cast.CodeResize:
		return c.Resize
	case cast.CodeMarker:
		return c.Marker
	default:
		return cast.OtherColor(code)
	}
}

// Options configures an Editor.
type Options struct {
	// WindowLines is the number of original lines loaded at a time.
	WindowLines int
	// ScrollStep is the fraction of the file moved by a page.
	ScrollStep float64
	// OutPath is where w saves. It defaults to the file's own path.
	OutPath string
	Colors  Colors
	Logger  *logging.Logger
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		WindowLines: 200,
		ScrollStep:  0.02,
		Colors: Colors{
			Output: cast.MustColorFromHex("#00ff00"),
			Input:  cast.MustColorFromHex("#ffff00"),
			Resize: cast.MustColorFromHex("#ff0000"),
			Marker: cast.MustColorFromHex("#0000ff"),
		},
	}
}

const headerRows = 2

type promptKind int

const (
	promptNone promptKind = iota
	promptInsert
	promptModify
	promptEdit
)

var promptLabels = map[promptKind]string{
	promptInsert: "insert (TIME CODE DATA): ",
	promptModify: "modify (TIME DATA): ",
	promptEdit:   "data: ",
}

// Editor browses and edits one cast file on a Backend. All methods must be
// called from the goroutine running the event loop.
type Editor struct {
	file    *castfile.CastFile
	backend Backend
	opts    Options
	log     *logging.Logger

	pos    float64
	events []cast.Positioned
	sel    int
	top    int

	prompt     promptKind
	input      []rune
	status     string
	dirty      bool
	quitArmed  bool
	undeletion []cast.Positioned
}

// New creates an editor for f drawing on b.
func New(f *castfile.CastFile, b Backend, opts Options) *Editor {
	def := DefaultOptions()
	if opts.WindowLines <= 0 {
		opts.WindowLines = def.WindowLines
	}
	if opts.ScrollStep <= 0 {
		opts.ScrollStep = def.ScrollStep
	}
	if opts.OutPath == "" {
		opts.OutPath = f.Path()
	}
	return &Editor{
		file:    f,
		backend: b,
		opts:    opts,
		log:     logging.OrNull(opts.Logger).WithComponent("tui"),
	}
}

// Run initializes the backend and processes events until the user quits.
func (e *Editor) Run() error {
	if err := e.backend.Init(); err != nil {
		return err
	}
	defer e.backend.Shutdown()

	if err := e.load(0); err != nil {
		return err
	}
	for {
		e.Draw()
		if e.Handle(e.backend.PollEvent()) {
			return nil
		}
	}
}

// Dirty reports whether there are edits not yet saved.
func (e *Editor) Dirty() bool {
	return e.dirty
}

// Status returns the message shown on the status line.
func (e *Editor) Status() string {
	return e.status
}

// Selected returns the selected event.
func (e *Editor) Selected() (cast.Positioned, bool) {
	if e.sel < 0 || e.sel >= len(e.events) {
		return cast.Positioned{}, false
	}
	return e.events[e.sel], true
}

// load reads the window starting at pos.
func (e *Editor) load(pos float64) error {
	events, err := e.file.GetLines(pos, e.opts.WindowLines)
	if err != nil {
		return err
	}
	e.pos = pos
	e.events = events
	e.sel = max(0, min(e.sel, len(events)-1))
	return nil
}

// reload re-reads the current window and keeps the selection on the event
// at index near, or on the closest remaining one.
func (e *Editor) reload(near int) {
	if err := e.load(e.pos); err != nil {
		e.fail(err)
		return
	}
	e.sel = max(0, min(near, len(e.events)-1))
}

func find(events []cast.Positioned, p cast.Positioned) int {
	for i, ev := range events {
		if ev.Offset == p.Offset && ev.Time == p.Time && ev.Code() == p.Code() && ev.Payload() == p.Payload() {
			return i
		}
	}
	return -1
}

// Handle processes one event and reports whether the editor should exit.
func (e *Editor) Handle(ev Event) bool {
	switch ev.Type {
	case EventKey:
		if e.prompt != promptNone {
			e.handlePrompt(ev)
			return false
		}
		return e.handleKey(ev)
	case EventResize:
		e.backend.Clear()
	}
	return false
}

func (e *Editor) handleKey(ev Event) bool {
	if ev.Key == KeyCtrlC {
		return true
	}
	if !(ev.Key == KeyRune && ev.Rune == 'q') {
		e.quitArmed = false
	}
	e.status = ""

	switch ev.Key {
	case KeyUp:
		e.up()
	case KeyDown:
		e.down()
	case KeyPageUp:
		e.page(-1)
	case KeyPageDown:
		e.page(1)
	case KeyHome:
		e.first()
	case KeyEnd:
		e.last()
	case KeyRune:
		switch ev.Rune {
		case 'j':
			e.down()
		case 'k':
			e.up()
		case 'g':
			e.first()
		case 'G':
			e.last()
		case 'd':
			e.delete()
		case 'u':
			e.undelete()
		case 'e':
			e.startEdit()
		case 'i':
			e.startPrompt(promptInsert, "")
		case 'm':
			if p, ok := e.Selected(); ok {
				e.startPrompt(promptModify, strconv.FormatFloat(p.Time, 'f', -1, 64)+" "+p.Payload())
			}
		case 'w':
			e.save()
		case 'q':
			return e.quit()
		}
	}
	return false
}

func (e *Editor) down() {
	if e.sel+1 < len(e.events) {
		e.sel++
		return
	}
	cur, ok := e.Selected()
	if !ok {
		e.backend.Beep()
		return
	}
	// Re-anchor the window on the selected line to reach the lines after it.
	pos := e.file.Fraction(cur.Offset)
	if err := e.load(pos); err != nil {
		e.fail(err)
		return
	}
	i := find(e.events, cur)
	if i < 0 || i+1 >= len(e.events) {
		e.sel = max(0, i)
		e.backend.Beep()
		return
	}
	e.sel = i + 1
}

func (e *Editor) up() {
	if e.sel > 0 {
		e.sel--
		return
	}
	cur, ok := e.Selected()
	if !ok || e.pos <= 0 {
		e.backend.Beep()
		return
	}
	if err := e.load(max(0, e.pos-e.opts.ScrollStep)); err != nil {
		e.fail(err)
		return
	}
	switch i := find(e.events, cur); {
	case i > 0:
		e.sel = i - 1
	case i == 0:
		e.backend.Beep()
	default:
		e.sel = len(e.events) - 1
	}
}

func (e *Editor) page(dir int) {
	pos := min(1, max(0, e.pos+float64(dir)*e.opts.ScrollStep))
	if dir > 0 && len(e.events) > 0 {
		// Never page past the start of the last line.
		pos = min(pos, e.file.Fraction(e.events[len(e.events)-1].Offset))
	}
	e.sel = 0
	if err := e.load(pos); err != nil {
		e.fail(err)
	}
}

func (e *Editor) first() {
	e.sel = 0
	if err := e.load(0); err != nil {
		e.fail(err)
	}
}

func (e *Editor) last() {
	// A position inside the last line starts the window at end of file, so
	// fall back to the last line alone.
	for _, pos := range []float64{max(0, 1-e.opts.ScrollStep), 1} {
		if err := e.load(pos); err != nil {
			e.fail(err)
			return
		}
		if len(e.events) > 0 {
			break
		}
	}
	e.sel = max(0, len(e.events)-1)
}

// orderOf returns the chain order addressing p and whether p is an
// insertion rather than the original line.
func (e *Editor) orderOf(p cast.Positioned) (int, bool) {
	n := e.file.Insertions(p.Offset)
	order := e.file.GetOrder(p.Offset, p.Event)
	if order < n {
		return order, true
	}
	return n, false
}

func (e *Editor) delete() {
	p, ok := e.Selected()
	if !ok {
		e.backend.Beep()
		return
	}
	order, inserted := e.orderOf(p)
	if err := e.file.Action(castfile.Deletion{}, order, p, nil); err != nil {
		e.fail(err)
		return
	}
	if !inserted {
		e.undeletion = append(e.undeletion, p)
	}
	e.edited("deleted %s", p.Event)
	e.reload(e.sel)
}

// undelete restores the most recently deleted original line.
func (e *Editor) undelete() {
	if len(e.undeletion) == 0 {
		e.status = "nothing to undelete"
		return
	}
	p := e.undeletion[len(e.undeletion)-1]
	e.undeletion = e.undeletion[:len(e.undeletion)-1]
	if err := e.file.Action(castfile.Deletion{}, e.file.Insertions(p.Offset), p, nil); err != nil {
		e.fail(err)
		return
	}
	e.edited("restored %s", p.Event)
	e.reload(e.sel)
	if i := find(e.events, p); i >= 0 {
		e.sel = i
	}
}

func (e *Editor) startEdit() {
	p, ok := e.Selected()
	if !ok {
		e.backend.Beep()
		return
	}
	if _, inserted := e.orderOf(p); !inserted {
		e.status = "only inserted events can be edited in place, use m"
		return
	}
	e.startPrompt(promptEdit, p.Payload())
}

func (e *Editor) startPrompt(kind promptKind, initial string) {
	e.prompt = kind
	e.input = []rune(initial)
}

func (e *Editor) handlePrompt(ev Event) {
	switch ev.Key {
	case KeyEscape, KeyCtrlC:
		e.prompt = promptNone
		e.input = nil
	case KeyBackspace:
		if len(e.input) > 0 {
			e.input = e.input[:len(e.input)-1]
		}
	case KeyEnter:
		kind, text := e.prompt, string(e.input)
		e.prompt = promptNone
		e.input = nil
		e.submit(kind, text)
	case KeyRune:
		e.input = append(e.input, ev.Rune)
	}
}

func (e *Editor) submit(kind promptKind, text string) {
	p, ok := e.Selected()
	if !ok {
		e.backend.Beep()
		return
	}
	var prev, next *cast.Positioned
	if e.sel > 0 {
		prev = &e.events[e.sel-1]
	}
	if e.sel+1 < len(e.events) {
		next = &e.events[e.sel+1]
	}

	switch kind {
	case promptInsert:
		ev, err := parseInsert(text)
		if err != nil {
			e.fail(err)
			return
		}
		order, _ := e.orderOf(p)
		if err := e.file.Action(castfile.Addition{Event: ev}, order, p, prev); err != nil {
			e.fail(err)
			return
		}
		e.edited("inserted %s", ev)
		e.reload(e.sel)

	case promptModify:
		ev, err := parseModify(text, p.Code())
		if err != nil {
			e.fail(err)
			return
		}
		order, _ := e.orderOf(p)
		if err := e.file.AdvancedAction(castfile.Modify{Event: ev}, order, p, prev, next); err != nil {
			e.fail(err)
			return
		}
		e.edited("modified %s", ev)
		e.reload(e.sel)

	case promptEdit:
		data, err := cast.ParseData(p.Code(), text)
		if err != nil {
			e.fail(err)
			return
		}
		order, _ := e.orderOf(p)
		if err := e.file.Action(castfile.ModifyData{Data: data}, order, p, nil); err != nil {
			e.fail(err)
			return
		}
		e.edited("edited %s", p.WithData(data))
		e.reload(e.sel)
	}
}

// parseInsert parses "TIME CODE DATA".
func parseInsert(s string) (cast.Event, error) {
	fields := strings.SplitN(strings.TrimLeft(s, " "), " ", 3)
	if len(fields) < 2 {
		return cast.Event{}, fmt.Errorf("%w: want TIME CODE DATA", cast.ErrPartCount)
	}
	t, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return cast.Event{}, fmt.Errorf("%w: %v", cast.ErrEventTime, err)
	}
	if utf8.RuneCountInString(fields[1]) != 1 {
		return cast.Event{}, fmt.Errorf("%w: %q", cast.ErrMissingCode, fields[1])
	}
	code, _ := utf8.DecodeRuneInString(fields[1])
	data := ""
	if len(fields) == 3 {
		data = fields[2]
	}
	return cast.NewEvent(t, code, data)
}

// parseModify parses "TIME DATA" for an event with code.
func parseModify(s string, code rune) (cast.Event, error) {
	timeStr, data, _ := strings.Cut(strings.TrimLeft(s, " "), " ")
	t, err := strconv.ParseFloat(timeStr, 64)
	if err != nil {
		return cast.Event{}, fmt.Errorf("%w: %v", cast.ErrEventTime, err)
	}
	return cast.NewEvent(t, code, data)
}

func (e *Editor) save() {
	if err := e.file.SaveToFile(e.opts.OutPath); err != nil {
		e.fail(err)
		return
	}
	e.dirty = false
	e.status = "saved " + e.opts.OutPath
	e.log.WithField("path", e.opts.OutPath).Info("saved")
}

func (e *Editor) quit() bool {
	if e.dirty && !e.quitArmed {
		e.quitArmed = true
		e.status = "unsaved changes, press q again to quit"
		return false
	}
	return true
}

func (e *Editor) edited(format string, args ...any) {
	e.dirty = true
	e.status = fmt.Sprintf(format, args...)
	e.log.Debug(format, args...)
}

func (e *Editor) fail(err error) {
	e.status = "error: " + err.Error()
	e.log.Warn("%v", err)
	e.backend.Beep()
	if errors.Is(err, castfile.ErrSourceChanged) {
		e.status += " (reopen the file or save elsewhere)"
	}
}
