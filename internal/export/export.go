// Package export renders events and headers for the command line: NDJSON
// event records, pretty printed headers and glob filtering.
package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dshills/castedit/internal/cast"
	"github.com/dshills/castedit/internal/castfile"
	"github.com/tidwall/match"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// ErrEmptyPattern is returned when a filter has no pattern.
var ErrEmptyPattern = errors.New("empty pattern")

// EventJSON encodes p as a JSON object with time, code, kind, data, text
// and offset fields. data is the escaped payload as stored on disk, text is
// the payload with escapes interpreted.
func EventJSON(p cast.Positioned) ([]byte, error) {
	out := []byte(`{}`)
	var err error
	for _, kv := range []struct {
		path  string
		value any
	}{
		{"time", p.Time},
		{"code", string(p.Code())},
		{"kind", p.Kind()},
		{"data", p.Payload()},
		{"text", p.Text()},
		{"offset", p.Offset},
	} {
		out, err = sjson.SetBytes(out, kv.path, kv.value)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", kv.path, err)
		}
	}
	return out, nil
}

// Encoder writes events to a stream, one per line.
type Encoder struct {
	w    *bufio.Writer
	json bool
}

// NewEncoder returns an encoder writing bracket lines, or NDJSON records
// when asJSON is set.
func NewEncoder(w io.Writer, asJSON bool) *Encoder {
	return &Encoder{w: bufio.NewWriter(w), json: asJSON}
}

// Encode writes one event.
func (e *Encoder) Encode(p cast.Positioned) error {
	if !e.json {
		line := cast.AppendLine(nil, p.Event)
		_, err := e.w.Write(append(line, '\n'))
		return err
	}
	rec, err := EventJSON(p)
	if err != nil {
		return err
	}
	_, err = e.w.Write(append(rec, '\n'))
	return err
}

// Flush writes buffered output.
func (e *Encoder) Flush() error {
	return e.w.Flush()
}

// HeaderOptions controls HeaderJSON.
type HeaderOptions struct {
	Pretty bool
	Color  bool
}

// HeaderJSON encodes h, optionally indented and colorized for a terminal.
func HeaderJSON(h cast.Header, opts HeaderOptions) ([]byte, error) {
	out, err := h.Encode()
	if err != nil {
		return nil, err
	}
	if opts.Pretty {
		out = pretty.PrettyOptions(out, &pretty.Options{
			Width:    80,
			Prefix:   "",
			Indent:   "  ",
			SortKeys: true,
		})
	}
	if opts.Color {
		out = pretty.Color(out, nil)
	}
	return out, nil
}

// Filter selects events by code and by a glob over their display text.
type Filter struct {
	pattern string
	codes   map[rune]bool
}

// NewFilter returns a filter for pattern. A pattern without wildcards
// matches anywhere in the text. codes restricts matches to those event
// codes when non-empty.
func NewFilter(pattern string, codes ...rune) (*Filter, error) {
	if pattern == "" {
		return nil, ErrEmptyPattern
	}
	if !match.IsPattern(pattern) {
		pattern = "*" + pattern + "*"
	}
	f := &Filter{pattern: pattern}
	if len(codes) > 0 {
		f.codes = make(map[rune]bool, len(codes))
		for _, c := range codes {
			f.codes[c] = true
		}
	}
	return f, nil
}

// Pattern returns the effective glob.
func (f *Filter) Pattern() string {
	return f.pattern
}

// Match reports whether p passes the filter.
func (f *Filter) Match(p cast.Positioned) bool {
	if f.codes != nil && !f.codes[p.Code()] {
		return false
	}
	return match.Match(p.Text(), f.pattern)
}

// Grep streams every event of src that passes filter to enc and returns the
// number written.
func Grep(src *castfile.CastFile, filter *Filter, enc *Encoder) (int, error) {
	var (
		n      int
		encErr error
	)
	err := src.Each(func(p cast.Positioned) bool {
		if !filter.Match(p) {
			return true
		}
		if encErr = enc.Encode(p); encErr != nil {
			return false
		}
		n++
		return true
	})
	if err != nil {
		return n, err
	}
	if encErr != nil {
		return n, encErr
	}
	return n, enc.Flush()
}

// ParseCodes parses a comma separated list of single character codes.
func ParseCodes(s string) ([]rune, error) {
	if s == "" {
		return nil, nil
	}
	var codes []rune
	for _, part := range strings.Split(s, ",") {
		r := []rune(strings.TrimSpace(part))
		if len(r) != 1 {
			return nil, fmt.Errorf("%w: %q", cast.ErrMissingCode, part)
		}
		codes = append(codes, r[0])
	}
	return codes, nil
}
