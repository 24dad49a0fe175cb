// Package packets declares a small catalogue of message types for the
// handshake, status, login and play states, built on package schema.
//
// Every packet type is a plain struct; its Record lists the fields in wire
// order. Catalogues group records by state and direction.
package packets
