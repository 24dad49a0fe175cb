// Package status answers the server-list ping: handshake, status request,
// JSON status document, then an optional ping echoed as a pong.
package status
