// Package cast models asciicast v2 recordings.
//
// It provides the header model, the color and theme codec used by the
// header's optional theme, and the event codec. The event codec includes a
// tolerant line lexer that accepts the bracketed textual form found in cast
// files even when the payload holds commas, escaped quotes or raw escape
// sequences that a strict JSON decoder would reinterpret.
package cast
