package tui

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/dshills/castedit/internal/cast"
)

// Draw renders the header panel, the event list and the status line.
func (e *Editor) Draw() {
	b := e.backend
	width, height := b.Size()
	b.Clear()
	if width <= 0 || height <= 0 {
		return
	}

	e.drawHeader(width)
	listRows := max(0, height-headerRows-1)
	e.scrollTo(listRows)
	for row := 0; row < listRows; row++ {
		i := e.top + row
		if i >= len(e.events) {
			break
		}
		e.drawEvent(headerRows+row, width, i)
	}
	e.drawStatus(height-1, width)
	b.Show()
}

func (e *Editor) scrollTo(rows int) {
	if rows <= 0 {
		e.top = e.sel
		return
	}
	if e.sel < e.top {
		e.top = e.sel
	}
	if e.sel >= e.top+rows {
		e.top = e.sel - rows + 1
	}
	e.top = max(0, e.top)
}

func (e *Editor) drawHeader(width int) {
	h := e.file.Header()
	bar := DefaultStyle().With(AttrReverse)
	fill(e.backend, 0, 0, width, bar)
	line := fmt.Sprintf(" %s | %s | %dx%d | v%d",
		h.TitleOr(e.file.Path()), h.CommandOr("-"), h.Width, h.Height, h.Version)
	if h.Duration != nil {
		line += " | " + strconv.FormatFloat(*h.Duration, 'f', 1, 64) + "s"
	}
	if e.file.Stale() {
		line += " | changed on disk"
	}
	drawText(e.backend, 0, 0, width, truncate(line, width), bar.With(AttrBold))

	if h.Theme == nil {
		drawText(e.backend, 0, 1, width, " no theme", DefaultStyle().With(AttrDim))
		return
	}
	x := 1
	x += e.drawSwatch(x, 1, "fg", h.Theme.FG)
	x += e.drawSwatch(x, 1, "bg", h.Theme.BG)
	for i, c := range h.Theme.Palette {
		if x+3 > width {
			break
		}
		x += e.drawSwatch(x, 1, strconv.FormatInt(int64(i), 16), c)
	}
}

// drawSwatch draws label on a block of color c and returns its width.
func (e *Editor) drawSwatch(x, y int, label string, c cast.RGB) int {
	style := DefaultStyle().Background(c).Foreground(c.Contrast())
	text := " " + label + " "
	return drawText(e.backend, x, y, displayWidth(text), text, style) + 1
}

func (e *Editor) drawEvent(y, width, i int) {
	p := e.events[i]
	_, inserted := e.orderOf(p)

	style := DefaultStyle().Foreground(e.opts.Colors.For(p.Code()))
	if i == e.sel {
		style = style.With(AttrReverse)
		fill(e.backend, 0, y, width, style)
	}
	mark := " "
	if inserted {
		mark = "+"
	}
	prefix := fmt.Sprintf("%s%12.6f %c ", mark, p.Time, p.Code())
	x := drawText(e.backend, 0, y, width, prefix, style.With(AttrBold))
	drawText(e.backend, x, y, width-x, truncate(sanitize(p.Payload()), width-x), style)
}

func (e *Editor) drawStatus(y, width int) {
	style := DefaultStyle().With(AttrReverse)
	fill(e.backend, 0, y, width, style)

	if e.prompt != promptNone {
		label := promptLabels[e.prompt]
		x := drawText(e.backend, 0, y, width, label, style.With(AttrBold))
		input := string(e.input)
		// Keep the end of long input visible.
		for displayWidth(input) > width-x-1 && input != "" {
			_, size := utf8.DecodeRuneInString(input)
			input = input[size:]
		}
		x += drawText(e.backend, x, y, width-x, input, style)
		e.backend.ShowCursor(x, y)
		return
	}
	e.backend.HideCursor()

	right := ""
	if p, ok := e.Selected(); ok {
		right = fmt.Sprintf("%3.0f%% %d/%d ", 100*e.file.Fraction(p.Offset), e.sel+1, len(e.events))
	}
	if e.dirty {
		right = "[+] " + right
	}
	rw := displayWidth(right)
	drawText(e.backend, 0, y, max(0, width-rw), truncate(" "+e.status, width-rw), style)
	drawText(e.backend, max(0, width-rw), y, rw, right, style)
}
