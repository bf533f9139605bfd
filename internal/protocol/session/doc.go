// Package session owns the tracectl<->traced control channel.
//
// Ownership boundary:
// - envelope read/write over a byte stream
// - record-kind dispatch to the variant codecs
// - channel timeouts and size limits
package session
