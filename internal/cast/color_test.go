package cast

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestColorFromHex(t *testing.T) {
	tests := []struct {
		in      string
		want    RGB
		wantErr error
	}{
		{"#000000", RGB{}, nil},
		{"#ffffff", RGB{255, 255, 255}, nil},
		{"#1A2b3C", RGB{0x1a, 0x2b, 0x3c}, nil},
		{"000000", RGB{}, ErrHexFormat},
		{"#fff", RGB{}, ErrHexFormat},
		{"#fffffff", RGB{}, ErrHexFormat},
		{"#gg0000", RGB{}, ErrHexValue},
		{"#00+100", RGB{}, ErrHexValue},
	}

	for _, tt := range tests {
		got, err := ColorFromHex(tt.in)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ColorFromHex(%q) error = %v, want %v", tt.in, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("ColorFromHex(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ColorFromHex(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRGBHexRoundTrip(t *testing.T) {
	for _, c := range []RGB{{}, {1, 2, 3}, {0xab, 0xcd, 0xef}, {255, 0, 128}} {
		h := c.Hex()
		if len(h) != 7 || h != strings.ToLower(h) {
			t.Errorf("Hex() = %q, want lowercase #rrggbb", h)
		}
		back, err := ColorFromHex(h)
		if err != nil {
			t.Fatalf("ColorFromHex(%q): %v", h, err)
		}
		if back != c {
			t.Errorf("round trip %v -> %q -> %v", c, h, back)
		}
	}
}

func TestContrast(t *testing.T) {
	if got := (RGB{255, 255, 255}).Contrast(); got != (RGB{}) {
		t.Errorf("Contrast(white) = %v, want black", got)
	}
	if got := (RGB{}).Contrast(); got != (RGB{255, 255, 255}) {
		t.Errorf("Contrast(black) = %v, want white", got)
	}
}

func TestOtherColor(t *testing.T) {
	// 'x' is 0b01111000.
	got := OtherColor('x')
	want := RGB{R: 0x40, G: 0xc0, B: 0x80}
	if got != want {
		t.Errorf("OtherColor('x') = %v, want %v", got, want)
	}
}

func makePalette(n int) []RGB {
	p := make([]RGB, n)
	for i := range p {
		p[i] = RGB{uint8(i), uint8(i * 2), uint8(i * 3)}
	}
	return p
}

func TestValidatePalette(t *testing.T) {
	for _, n := range []int{0, 1, 7, 9, 15, 17} {
		if err := ValidatePalette(makePalette(n)); !errors.Is(err, ErrPaletteSize) {
			t.Errorf("ValidatePalette(len %d) = %v, want ErrPaletteSize", n, err)
		}
	}
	for _, n := range []int{8, 16} {
		if err := ValidatePalette(makePalette(n)); err != nil {
			t.Errorf("ValidatePalette(len %d) = %v, want nil", n, err)
		}
	}
}

func TestThemeJSON(t *testing.T) {
	for _, n := range []int{8, 16} {
		theme := Theme{FG: RGB{1, 2, 3}, BG: RGB{4, 5, 6}, Palette: makePalette(n)}
		data, err := json.Marshal(theme)
		if err != nil {
			t.Fatalf("Marshal(len %d): %v", n, err)
		}
		var back Theme
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("Unmarshal(%s): %v", data, err)
		}
		if back.FG != theme.FG || back.BG != theme.BG || len(back.Palette) != n {
			t.Errorf("round trip mismatch: %+v", back)
		}
		for i := range back.Palette {
			if back.Palette[i] != theme.Palette[i] {
				t.Errorf("palette[%d] = %v, want %v", i, back.Palette[i], theme.Palette[i])
			}
		}
	}
}

func TestThemeJSONBadPalette(t *testing.T) {
	for _, n := range []int{7, 17} {
		theme := Theme{Palette: makePalette(n)}
		if _, err := json.Marshal(theme); !errors.Is(err, ErrPaletteSize) {
			t.Errorf("Marshal(len %d) error = %v, want ErrPaletteSize", n, err)
		}

		s, _ := FormatPalette(makePalette(8))
		parts := strings.Split(s, ":")
		if n == 7 {
			parts = parts[:7]
		} else {
			parts = append(parts, strings.Split(s, ":")...)
			parts = parts[:17]
		}
		raw := `{"fg":"#000000","bg":"#ffffff","palette":"` + strings.Join(parts, ":") + `"}`
		var back Theme
		if err := json.Unmarshal([]byte(raw), &back); !errors.Is(err, ErrPaletteSize) {
			t.Errorf("Unmarshal(len %d) error = %v, want ErrPaletteSize", n, err)
		}
	}
}

func TestThemeJSONBadColor(t *testing.T) {
	raw := `{"fg":"000000","bg":"#ffffff","palette":"#000000"}`
	var th Theme
	if err := json.Unmarshal([]byte(raw), &th); !errors.Is(err, ErrHexFormat) {
		t.Errorf("Unmarshal error = %v, want ErrHexFormat", err)
	}
}
