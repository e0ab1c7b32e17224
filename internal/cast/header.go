package cast

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Version is the only asciicast format version understood by this package.
const Version = 2

// Header is the first line of an asciicast v2 file.
type Header struct {
	Version       uint8             `json:"version"`
	Width         uint16            `json:"width"`
	Height        uint16            `json:"height"`
	Timestamp     *uint64           `json:"timestamp,omitempty"`
	Duration      *float64          `json:"duration,omitempty"`
	IdleTimeLimit *float64          `json:"idle_time_limit,omitempty"`
	Command       *string           `json:"command,omitempty"`
	Title         *string           `json:"title,omitempty"`
	Env           map[string]string `json:"env,omitempty"`
	Theme         *Theme            `json:"theme,omitempty"`
}

// ParseHeader decodes a header line and checks its version.
func ParseHeader(line []byte) (Header, error) {
	var h Header
	if err := json.Unmarshal(bytes.TrimSpace(line), &h); err != nil {
		return Header{}, fmt.Errorf("%w: %w", ErrHeaderFormat, err)
	}
	if h.Version != Version {
		return Header{}, fmt.Errorf("%w: %d", ErrInvalidVersion, h.Version)
	}
	return h, nil
}

// Encode serializes the header as a single JSON line without the trailing
// newline.
func (h Header) Encode() ([]byte, error) {
	if h.Theme != nil {
		if err := h.Theme.Validate(); err != nil {
			return nil, err
		}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(h); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// TitleOr returns the title or fallback when the header has none.
func (h Header) TitleOr(fallback string) string {
	if h.Title == nil || *h.Title == "" {
		return fallback
	}
	return *h.Title
}

// CommandOr returns the command or fallback when the header has none.
func (h Header) CommandOr(fallback string) string {
	if h.Command == nil || *h.Command == "" {
		return fallback
	}
	return *h.Command
}
