package cast

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Theme is the optional terminal color theme stored in a header.
type Theme struct {
	FG      RGB
	BG      RGB
	Palette []RGB
}

// ValidatePalette reports whether the palette holds exactly 8 or 16 colors.
func ValidatePalette(palette []RGB) error {
	switch len(palette) {
	case 8, 16:
		return nil
	default:
		return fmt.Errorf("%w: expected 8 or 16 colors, got %d", ErrPaletteSize, len(palette))
	}
}

// ParsePalette decodes a colon separated list of "#rrggbb" colors.
func ParsePalette(s string) ([]RGB, error) {
	fields := strings.Split(s, ":")
	palette := make([]RGB, 0, len(fields))
	for i, f := range fields {
		c, err := ColorFromHex(f)
		if err != nil {
			return nil, fmt.Errorf("palette color %d: %w", i, err)
		}
		palette = append(palette, c)
	}
	if err := ValidatePalette(palette); err != nil {
		return nil, err
	}
	return palette, nil
}

// FormatPalette encodes a palette in its colon separated wire form.
func FormatPalette(palette []RGB) (string, error) {
	if err := ValidatePalette(palette); err != nil {
		return "", err
	}
	parts := make([]string, len(palette))
	for i, c := range palette {
		parts[i] = c.Hex()
	}
	return strings.Join(parts, ":"), nil
}

// Validate checks the palette size.
func (t Theme) Validate() error {
	return ValidatePalette(t.Palette)
}

type themeWire struct {
	FG      string `json:"fg"`
	BG      string `json:"bg"`
	Palette string `json:"palette"`
}

// MarshalJSON implements json.Marshaler. A theme with an invalid palette
// is refused so a corrupt header is never written.
func (t Theme) MarshalJSON() ([]byte, error) {
	palette, err := FormatPalette(t.Palette)
	if err != nil {
		return nil, err
	}
	return json.Marshal(themeWire{
		FG:      t.FG.Hex(),
		BG:      t.BG.Hex(),
		Palette: palette,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Theme) UnmarshalJSON(data []byte) error {
	var w themeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	fg, err := ColorFromHex(w.FG)
	if err != nil {
		return fmt.Errorf("theme fg: %w", err)
	}
	bg, err := ColorFromHex(w.BG)
	if err != nil {
		return fmt.Errorf("theme bg: %w", err)
	}
	palette, err := ParsePalette(w.Palette)
	if err != nil {
		return fmt.Errorf("theme palette: %w", err)
	}
	*t = Theme{FG: fg, BG: bg, Palette: palette}
	return nil
}
