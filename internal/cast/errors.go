package cast

import "errors"

// Theme and color errors.
var (
	// ErrHexFormat indicates a color string is not "#" followed by six hex digits.
	ErrHexFormat = errors.New("invalid hex color format")

	// ErrHexValue indicates a color component is not a valid hex byte.
	ErrHexValue = errors.New("invalid hex color component")

	// ErrPaletteSize indicates a palette does not hold 8 or 16 colors.
	ErrPaletteSize = errors.New("invalid palette size")
)

// Event errors.
var (
	// ErrEventFormat indicates a line is not enclosed in brackets.
	ErrEventFormat = errors.New("invalid event format")

	// ErrPartCount indicates an event line does not have exactly three fields.
	ErrPartCount = errors.New("event must have exactly three fields")

	// ErrEventTime indicates the event time is not a finite, non-negative number.
	ErrEventTime = errors.New("invalid event time")

	// ErrMissingCode indicates the event code field is empty.
	ErrMissingCode = errors.New("missing event code")

	// ErrResizeFormat indicates a resize payload is not "COLSxROWS".
	ErrResizeFormat = errors.New("invalid resize format")
)

// Header errors.
var (
	// ErrInvalidVersion indicates the header version is not 2.
	ErrInvalidVersion = errors.New("unsupported asciicast version")

	// ErrHeaderFormat indicates the header line is not a valid JSON object.
	ErrHeaderFormat = errors.New("invalid header")
)
