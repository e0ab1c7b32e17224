package tui

import "github.com/dshills/castedit/internal/cast"

// EventType identifies the type of terminal event.
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventResize
	EventInterrupt
)

// Event is a terminal event.
type Event struct {
	Type EventType

	Key  Key
	Rune rune
	Mod  ModMask

	Width, Height int
}

// KeyEvent returns a key event for r.
func KeyEvent(r rune) Event {
	return Event{Type: EventKey, Key: KeyRune, Rune: r}
}

// SpecialKey returns a key event for a non-rune key.
func SpecialKey(k Key) Event {
	return Event{Type: EventKey, Key: k}
}

// Key is a keyboard key.
type Key int

const (
	KeyNone Key = iota
	KeyRune
	KeyEscape
	KeyEnter
	KeyBackspace
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyUp
	KeyDown
	KeyCtrlC
)

// ModMask is the modifier key state.
type ModMask int

const (
	ModNone  ModMask = 0
	ModShift ModMask = 1 << iota
	ModCtrl
	ModAlt
)

// Has returns true if the mask contains mod.
func (m ModMask) Has(mod ModMask) bool {
	return m&mod != 0
}

// Attr is a set of text attributes.
type Attr uint8

const (
	AttrNone Attr = 0
	AttrBold Attr = 1 << iota
	AttrDim
	AttrReverse
	AttrUnderline
)

// Style is the look of a cell. A nil color means the terminal default.
type Style struct {
	FG, BG *cast.RGB
	Attrs  Attr
}

// DefaultStyle uses the terminal's colors.
func DefaultStyle() Style {
	return Style{}
}

// Foreground returns s with the foreground set to c.
func (s Style) Foreground(c cast.RGB) Style {
	s.FG = &c
	return s
}

// Background returns s with the background set to c.
func (s Style) Background(c cast.RGB) Style {
	s.BG = &c
	return s
}

// With returns s with attrs added.
func (s Style) With(attrs Attr) Style {
	s.Attrs |= attrs
	return s
}

// Equals reports whether two styles render the same.
func (s Style) Equals(o Style) bool {
	return sameColor(s.FG, o.FG) && sameColor(s.BG, o.BG) && s.Attrs == o.Attrs
}

func sameColor(a, b *cast.RGB) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Cell is a single terminal cell. A zero Rune marks the second column of a
// wide character.
type Cell struct {
	Rune  rune
	Comb  []rune
	Style Style
}

// EmptyCell is a blank cell with the default style.
func EmptyCell() Cell {
	return Cell{Rune: ' '}
}

// Backend draws to a terminal or other display surface.
type Backend interface {
	// Init must be called before any other method.
	Init() error
	// Shutdown restores the terminal.
	Shutdown()

	Size() (width, height int)

	// SetCell ignores positions outside the screen.
	SetCell(x, y int, cell Cell)
	GetCell(x, y int) Cell
	Clear()
	Show()

	ShowCursor(x, y int)
	HideCursor()

	// PollEvent blocks until the next event.
	PollEvent() Event
	PostEvent(event Event)

	Beep()
}

// NullBackend is an in-memory backend for testing.
type NullBackend struct {
	width, height int
	cells         [][]Cell
	cursorX       int
	cursorY       int
	cursorVisible bool
	events        chan Event
	beeps         int
}

// NewNullBackend creates a null backend with the given dimensions.
func NewNullBackend(width, height int) *NullBackend {
	return &NullBackend{
		width:  width,
		height: height,
		events: make(chan Event, 100),
	}
}

func (b *NullBackend) Init() error {
	b.allocate()
	return nil
}

func (b *NullBackend) allocate() {
	b.cells = make([][]Cell, b.height)
	for i := range b.cells {
		b.cells[i] = make([]Cell, b.width)
		for j := range b.cells[i] {
			b.cells[i][j] = EmptyCell()
		}
	}
}

func (b *NullBackend) Shutdown() {}

func (b *NullBackend) Size() (int, int) {
	return b.width, b.height
}

func (b *NullBackend) SetCell(x, y int, cell Cell) {
	if x >= 0 && x < b.width && y >= 0 && y < b.height {
		b.cells[y][x] = cell
	}
}

func (b *NullBackend) GetCell(x, y int) Cell {
	if x >= 0 && x < b.width && y >= 0 && y < b.height {
		return b.cells[y][x]
	}
	return EmptyCell()
}

func (b *NullBackend) Clear() {
	empty := EmptyCell()
	for y := range b.cells {
		for x := range b.cells[y] {
			b.cells[y][x] = empty
		}
	}
}

func (b *NullBackend) Show() {}

func (b *NullBackend) ShowCursor(x, y int) {
	b.cursorX = x
	b.cursorY = y
	b.cursorVisible = true
}

func (b *NullBackend) HideCursor() {
	b.cursorVisible = false
}

func (b *NullBackend) PollEvent() Event {
	return <-b.events
}

func (b *NullBackend) PostEvent(event Event) {
	select {
	case b.events <- event:
	default:
	}
}

func (b *NullBackend) Beep() { b.beeps++ }

// Line returns row y as a string with trailing blanks trimmed.
func (b *NullBackend) Line(y int) string {
	if y < 0 || y >= b.height {
		return ""
	}
	rs := make([]rune, 0, b.width)
	for _, c := range b.cells[y] {
		if c.Rune != 0 {
			rs = append(rs, c.Rune)
			rs = append(rs, c.Comb...)
		}
	}
	end := len(rs)
	for end > 0 && rs[end-1] == ' ' {
		end--
	}
	return string(rs[:end])
}

// CursorPosition returns the cursor position for testing.
func (b *NullBackend) CursorPosition() (x, y int, visible bool) {
	return b.cursorX, b.cursorY, b.cursorVisible
}

// Beeps returns the number of bells rung.
func (b *NullBackend) Beeps() int {
	return b.beeps
}

// Resize simulates a terminal resize and queues the resize event.
func (b *NullBackend) Resize(width, height int) {
	b.width = width
	b.height = height
	b.allocate()
	b.PostEvent(Event{Type: EventResize, Width: width, Height: height})
}
