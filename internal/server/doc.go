// Package server implements the broker's TCP transport: newline-delimited
// JSON messages in, one reply envelope per message out.
//
// The transport owns no business logic. It decodes the envelope, routes
// external messages through the access gate and every message through the
// command router, and guarantees the peer always receives a well-formed
// reply, even for input that fails to parse.
package server
