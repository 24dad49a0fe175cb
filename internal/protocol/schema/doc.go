// Package schema derives packet codecs from ordered field declarations.
//
// A Record lists (name, wire type) pairs for one packet struct; a Union
// lists (discriminant literal, variant) entries for a tagged sum type.
// Both drive one generic codec, so the declaration is the whole wire
// contract. Field order is wire order and must only change together with
// the protocol version.
package schema
