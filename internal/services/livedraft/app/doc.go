// Package app runs a livedraft participant: it keeps a roster of everyone in
// a room, rebuilds each participant's in-progress text from the edit stream,
// and publishes the local participant's own text.
//
// Events reach the roster through one Session goroutine, so roster writes and
// draft edits are applied strictly in the order the room delivered them.
package app
