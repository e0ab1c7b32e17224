package tui

import (
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
)

const ellipsis = "…"

// displayWidth returns the number of columns s occupies.
func displayWidth(s string) int {
	return uniseg.StringWidth(s)
}

// truncate shortens s to at most width columns, ending in an ellipsis when
// anything was cut.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if uniseg.StringWidth(s) <= width {
		return s
	}
	limit := width - uniseg.StringWidth(ellipsis)
	var (
		b     strings.Builder
		used  int
		state = -1
	)
	rest := s
	for len(rest) > 0 {
		var cluster string
		var w int
		cluster, rest, w, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if used+w > limit {
			break
		}
		b.WriteString(cluster)
		used += w
	}
	b.WriteString(ellipsis)
	return b.String()
}

// sanitize replaces control characters so a payload cannot move the cursor.
func sanitize(s string) string {
	if strings.IndexFunc(s, unicode.IsControl) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return '·'
		}
		return r
	}, s)
}

// drawText writes s at (x, y) clipped to width columns and returns the
// number of columns used.
func drawText(b Backend, x, y, width int, s string, style Style) int {
	used := 0
	state := -1
	rest := s
	for len(rest) > 0 && used < width {
		var cluster string
		var w int
		cluster, rest, w, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if w == 0 {
			continue
		}
		if used+w > width {
			break
		}
		runes := []rune(cluster)
		b.SetCell(x+used, y, Cell{Rune: runes[0], Comb: runes[1:], Style: style})
		for i := 1; i < w; i++ {
			b.SetCell(x+used+i, y, Cell{Style: style})
		}
		used += w
	}
	return used
}

// fill paints width blank cells starting at (x, y).
func fill(b Backend, x, y, width int, style Style) {
	for i := 0; i < width; i++ {
		b.SetCell(x+i, y, Cell{Rune: ' ', Style: style})
	}
}
