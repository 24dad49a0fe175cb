// Package session owns the client side of a packet connection: one
// net.Conn, separately buffered reader and writer views over it, and the
// compression threshold both directions frame with.
//
// A Conn has a single logical owner. Sends flush before returning, so a
// threshold change applies to the very next frame in either direction.
package session
