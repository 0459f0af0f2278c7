// Package draft reconstructs a participant's in-progress text from the
// incremental edit operations broadcast by the room.
//
// Offsets and counts are UTF-16 code units, the unit the room protocol was
// defined in. Measuring in bytes or runes would shift every offset after the
// first character outside the Basic Multilingual Plane.
//
// Apply never fails: offsets are clamped to the current text, and operation
// types this package does not know leave the text unchanged.
package draft
