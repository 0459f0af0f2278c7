// Package room implements the reference relay server for livedraft rooms.
//
// It assigns participant ids, tracks who is in which room along with each
// participant's current draft, and fans edits out to everyone else in the
// room. It holds no history beyond the live drafts.
package room
