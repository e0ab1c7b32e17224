package cast

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Event codes defined by asciicast v2.
const (
	CodeOutput = 'o'
	CodeInput  = 'i'
	CodeResize = 'r'
	CodeMarker = 'm'
)

// EventData is the payload of an event. The set of implementations is closed:
// Output, Input, Resize, Marker and Other.
type EventData interface {
	// Code returns the single character event code.
	Code() rune
	// Kind returns a human readable name of the variant.
	Kind() string
	// Payload returns the escaped textual payload as stored on disk.
	Payload() string

	eventData()
}

// Output is data written to the terminal.
type Output string

// Input is data typed by the user.
type Input string

// Marker is a named breakpoint.
type Marker string

// Resize records a terminal size change.
type Resize struct {
	Cols uint16
	Rows uint16
}

// Other preserves an event with an unrecognized code.
type Other struct {
	Char rune
	Text string
}

func (Output) Code() rune   { return CodeOutput }
func (Input) Code() rune    { return CodeInput }
func (Marker) Code() rune   { return CodeMarker }
func (Resize) Code() rune   { return CodeResize }
func (o Other) Code() rune  { return o.Char }
func (Output) Kind() string { return "Output" }
func (Input) Kind() string  { return "Input" }
func (Marker) Kind() string { return "Marker" }
func (Resize) Kind() string { return "Resize" }
func (Other) Kind() string  { return "Other" }

func (o Output) Payload() string { return string(o) }
func (i Input) Payload() string  { return string(i) }
func (m Marker) Payload() string { return string(m) }
func (r Resize) Payload() string { return fmt.Sprintf("%dx%d", r.Cols, r.Rows) }
func (o Other) Payload() string  { return o.Text }

func (Output) eventData() {}
func (Input) eventData()  {}
func (Marker) eventData() {}
func (Resize) eventData() {}
func (Other) eventData()  {}

// ParseData builds the variant selected by code from an escaped payload.
//
// In the escaped form `\"` stands for a quote and every other backslash
// sequence is kept as written, so `\n` stays two characters. Escaped quotes
// are resolved here, which makes a payload typed by a user encode to the
// same line as one read from a file.
func ParseData(code rune, payload string) (EventData, error) {
	payload = unescapeQuotes(payload)
	switch code {
	case CodeOutput:
		return Output(payload), nil
	case CodeInput:
		return Input(payload), nil
	case CodeMarker:
		return Marker(payload), nil
	case CodeResize:
		return parseResize(payload)
	case 0:
		return nil, ErrMissingCode
	default:
		return Other{Char: code, Text: payload}, nil
	}
}

func parseResize(payload string) (Resize, error) {
	cols, rows, ok := strings.Cut(payload, "x")
	if !ok {
		return Resize{}, fmt.Errorf("%w: %q", ErrResizeFormat, payload)
	}
	c, err := strconv.ParseUint(strings.TrimSpace(cols), 10, 16)
	if err != nil {
		return Resize{}, fmt.Errorf("%w: %q", ErrResizeFormat, payload)
	}
	r, err := strconv.ParseUint(strings.TrimSpace(rows), 10, 16)
	if err != nil {
		return Resize{}, fmt.Errorf("%w: %q", ErrResizeFormat, payload)
	}
	return Resize{Cols: uint16(c), Rows: uint16(r)}, nil
}

// Event is a single timed record of a recording.
type Event struct {
	// Time is the offset in seconds from the start of the recording.
	Time float64
	Data EventData
}

// NewEvent parses payload according to code and returns the event.
func NewEvent(t float64, code rune, payload string) (Event, error) {
	if err := checkTime(t); err != nil {
		return Event{}, err
	}
	data, err := ParseData(code, payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Time: t, Data: data}, nil
}

// Code returns the event code or 0 for an empty event.
func (e Event) Code() rune {
	if e.Data == nil {
		return 0
	}
	return e.Data.Code()
}

// Kind returns the variant name of the event data.
func (e Event) Kind() string {
	if e.Data == nil {
		return ""
	}
	return e.Data.Kind()
}

// Payload returns the escaped payload.
func (e Event) Payload() string {
	if e.Data == nil {
		return ""
	}
	return e.Data.Payload()
}

// Text returns the payload with JSON escapes interpreted, ready for display
// or searching.
func (e Event) Text() string {
	return gjson.Parse(`"` + escapePayload(e.Payload()) + `"`).String()
}

// WithData returns a copy of e carrying data.
func (e Event) WithData(data EventData) Event {
	e.Data = data
	return e
}

// String returns the on-disk bracket form of the event.
func (e Event) String() string {
	return FormatLine(e)
}

// MarshalText implements encoding.TextMarshaler. Events serialize to their
// bracket form, so JSON encoding produces a string holding that line.
func (e Event) MarshalText() ([]byte, error) {
	if e.Data == nil {
		return nil, ErrMissingCode
	}
	return AppendLine(nil, e), nil
}

// UnmarshalJSON implements json.Unmarshaler. It accepts either a string
// holding a bracket form line or a three element JSON array.
func (e *Event) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ErrEventFormat
	}

	var (
		ev  Event
		err error
	)
	switch data[0] {
	case '"':
		var line string
		if err := json.Unmarshal(data, &line); err != nil {
			return fmt.Errorf("%w: %v", ErrEventFormat, err)
		}
		ev, err = ParseLine(line)
	case '[':
		ev, err = ParseJSONArray(data)
	default:
		err = fmt.Errorf("%w: expected string or array", ErrEventFormat)
	}
	if err != nil {
		return err
	}
	*e = ev
	return nil
}

// Positioned is an event together with the byte offset, in the original
// file, of the line it comes from or is anchored before.
type Positioned struct {
	Event
	Offset int
}
