package castfile

import (
	"errors"

	"github.com/dshills/castedit/internal/cast"
)

// Errors returned by CastFile operations.
var (
	// ErrIO indicates the file could not be opened, mapped or written.
	ErrIO = errors.New("i/o error")

	// ErrDeserialization indicates the header or body could not be read.
	ErrDeserialization = errors.New("deserialization error")

	// ErrSerialization indicates the header could not be encoded.
	ErrSerialization = errors.New("serialization error")

	// ErrInvalidVersion indicates the file is not asciicast v2.
	ErrInvalidVersion = cast.ErrInvalidVersion

	// ErrTiming indicates an edit would break the time ordering of events.
	ErrTiming = errors.New("event time must lie strictly between its neighbours")

	// ErrUnverifiableTime indicates an edit lacked the neighbouring events
	// needed to check its time.
	ErrUnverifiableTime = errors.New("no neighbouring event to verify time against")

	// ErrModification indicates an edit targeted an event that cannot be changed.
	ErrModification = errors.New("invalid modification target")

	// ErrInvalidOffset indicates a byte offset is not the start of a body line.
	ErrInvalidOffset = errors.New("offset is not the start of an event line")

	// ErrSourceChanged indicates the source file changed on disk after it was
	// opened, so its mapped bytes can no longer be trusted.
	ErrSourceChanged = errors.New("source file changed on disk")

	// ErrClosed indicates the CastFile was used after Close.
	ErrClosed = errors.New("cast file is closed")
)
