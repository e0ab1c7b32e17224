// Package overlay holds pending edits to an immutable event log.
//
// Edits are keyed by the byte offset of an original line. Each offset owns
// a Chain: the events inserted immediately before that line and a flag that
// suppresses the line itself. Offsets are kept in ascending order so readers
// and writers can merge the overlay with the original bytes in a single
// forward pass.
package overlay
