package cast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB is an opaque 24-bit color.
type RGB struct {
	R, G, B uint8
}

// ColorFromHex parses a CSS style "#rrggbb" color.
func ColorFromHex(s string) (RGB, error) {
	if !strings.HasPrefix(s, "#") {
		return RGB{}, fmt.Errorf("%w: %q must start with '#'", ErrHexFormat, s)
	}
	if len(s) != 7 {
		return RGB{}, fmt.Errorf("%w: %q must have 6 hex digits", ErrHexFormat, s)
	}

	var out [3]uint8
	for i := range out {
		v, err := strconv.ParseUint(s[1+2*i:3+2*i], 16, 8)
		if err != nil {
			return RGB{}, fmt.Errorf("%w: %q: %v", ErrHexValue, s, err)
		}
		out[i] = uint8(v)
	}
	return RGB{R: out[0], G: out[1], B: out[2]}, nil
}

// MustColorFromHex is like ColorFromHex but panics on error.
// It is intended for package level defaults.
func MustColorFromHex(s string) RGB {
	c, err := ColorFromHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex returns the color as lowercase "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// String implements fmt.Stringer.
func (c RGB) String() string {
	return c.Hex()
}

// Colorful converts the color for use with go-colorful.
func (c RGB) Colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
}

// Luminance returns the perceptual lightness of the color in [0, 1].
func (c RGB) Luminance() float64 {
	l, _, _ := c.Colorful().Lab()
	return l
}

// Contrast returns black or white, whichever reads better on c.
func (c RGB) Contrast() RGB {
	if c.Luminance() > 0.55 {
		return RGB{}
	}
	return RGB{R: 0xff, G: 0xff, B: 0xff}
}

// OtherColor derives a display color for an unrecognized event code.
// Bits 7-6, 5-4 and 3-2 of the code byte select the red, green and blue
// levels. Terminals have no alpha channel so bits 1-0 are ignored.
func OtherColor(code rune) RGB {
	bits := uint8(code)
	return RGB{
		R: ((bits & 0b11000000) >> 6) << 6,
		G: ((bits & 0b00110000) >> 4) << 6,
		B: ((bits & 0b00001100) >> 2) << 6,
	}
}
