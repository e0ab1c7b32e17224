package cast

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// ParseLine decodes one bracket form event line.
//
// The lexer only recognizes escapes, it does not interpret them: an escaped
// quote becomes a plain quote, every other backslash sequence (including
// "\n" and "\u001b") is kept as written. Commas inside quoted text do not
// separate fields.
func ParseLine(line string) (Event, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "[") || !strings.HasSuffix(line, "]") || len(line) < 2 {
		return Event{}, fmt.Errorf("%w: event must be wrapped in brackets", ErrEventFormat)
	}

	parts := splitFields(line[1 : len(line)-1])
	if len(parts) != 3 {
		return Event{}, fmt.Errorf("%w: got %d", ErrPartCount, len(parts))
	}

	t, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %q", ErrEventTime, parts[0])
	}
	if err := checkTime(t); err != nil {
		return Event{}, err
	}

	code, _ := utf8.DecodeRuneInString(strings.Trim(parts[1], `"`))
	if code == utf8.RuneError {
		return Event{}, ErrMissingCode
	}

	data, err := ParseData(code, stripQuotes(parts[2]))
	if err != nil {
		return Event{}, err
	}
	return Event{Time: t, Data: data}, nil
}

// splitFields runs the quote and escape aware scan over the inside of a
// bracketed line and returns the trimmed fields.
func splitFields(s string) []string {
	var (
		parts    []string
		cur      strings.Builder
		inQuotes bool
		escaped  bool
	)
	flush := func() {
		if cur.Len() > 0 {
			parts = append(parts, strings.TrimSpace(cur.String()))
			cur.Reset()
		}
	}

	for _, r := range s {
		switch {
		case escaped:
			if r != '"' {
				cur.WriteByte('\\')
			}
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			inQuotes = !inQuotes
			cur.WriteRune(r)
		case r == ',' && !inQuotes:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	if escaped {
		cur.WriteByte('\\')
	}
	flush()
	return parts
}

// stripQuotes removes one leading and one trailing quote.
func stripQuotes(s string) string {
	s = strings.TrimPrefix(s, `"`)
	return strings.TrimSuffix(s, `"`)
}

// ParseJSONArray decodes an event that is already a strict JSON array such
// as [1.5, "o", "text"]. The payload keeps its JSON escapes so the result
// matches what ParseLine returns for the same line.
func ParseJSONArray(raw []byte) (Event, error) {
	if !gjson.ValidBytes(raw) {
		return Event{}, fmt.Errorf("%w: invalid JSON", ErrEventFormat)
	}
	v := gjson.ParseBytes(raw)
	if !v.IsArray() {
		return Event{}, fmt.Errorf("%w: expected array", ErrEventFormat)
	}
	arr := v.Array()
	if len(arr) != 3 {
		return Event{}, fmt.Errorf("%w: got %d", ErrPartCount, len(arr))
	}

	if arr[0].Type != gjson.Number {
		return Event{}, fmt.Errorf("%w: %s", ErrEventTime, arr[0].Raw)
	}
	t := arr[0].Float()
	if err := checkTime(t); err != nil {
		return Event{}, err
	}

	if arr[1].Type != gjson.String {
		return Event{}, ErrMissingCode
	}
	code, _ := utf8.DecodeRuneInString(arr[1].Str)
	if code == utf8.RuneError {
		return Event{}, ErrMissingCode
	}

	if arr[2].Type != gjson.String {
		return Event{}, fmt.Errorf("%w: payload must be a string", ErrEventFormat)
	}
	data, err := ParseData(code, stripQuotes(arr[2].Raw))
	if err != nil {
		return Event{}, err
	}
	return Event{Time: t, Data: data}, nil
}

// FormatLine encodes an event in its bracket form without a line terminator.
func FormatLine(e Event) string {
	return string(AppendLine(nil, e))
}

// AppendLine appends the bracket form of e to dst.
func AppendLine(dst []byte, e Event) []byte {
	dst = append(dst, '[')
	dst = strconv.AppendFloat(dst, e.Time, 'f', -1, 64)
	dst = append(dst, `, "`...)
	if code := e.Code(); code != 0 {
		dst = append(dst, escapePayload(string(code))...)
	}
	dst = append(dst, `", "`...)
	dst = append(dst, escapePayload(e.Payload())...)
	dst = append(dst, `"]`...)
	return dst
}

func checkTime(t float64) error {
	if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
		return fmt.Errorf("%w: %v", ErrEventTime, t)
	}
	return nil
}

// unescapeQuotes turns escaped quotes into plain quotes and leaves every
// other escape sequence untouched.
func unescapeQuotes(s string) string {
	if !strings.Contains(s, `\"`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			if s[i+1] != '"' {
				b.WriteByte('\\')
			}
			b.WriteByte(s[i+1])
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// escapePayload is the inverse of the lexer: plain quotes are escaped,
// existing escape sequences pass through and raw control characters, which
// cannot appear inside a line, are escaped.
func escapePayload(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\':
			if i+1 < len(s) && s[i+1] != '"' {
				b.WriteByte(c)
				b.WriteByte(s[i+1])
				i++
			} else {
				b.WriteString(`\\`)
			}
		case c == '"':
			b.WriteString(`\"`)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\t':
			b.WriteString(`\t`)
		case c < 0x20 || c == 0x7f:
			fmt.Fprintf(&b, `\u%04x`, c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
