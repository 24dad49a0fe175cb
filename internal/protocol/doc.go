// Package protocol owns the wire contract shared by the transport packages.
//
// Ownership boundary:
// - varint: variable-length integer primitives
// - wire: wire-type adapters (Codec[T])
// - frame: length-prefixed, optionally compressed framing
// - schema: declarative record / tagged-union codecs
// - session: one connection over a duplex stream
//
// This package only carries the error taxonomy so every layer reports
// failures in the same categories.
package protocol
