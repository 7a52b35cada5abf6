// Package dnswire implements the small slice of the DNS wire format
// (RFC 1035) needed for mDNS service discovery: encoding dotted names to
// length-prefixed labels, decoding possibly-compressed names out of
// untrusted packets, and building PTR query packets.
//
// Every read of an inbound buffer is bounds-checked against the packet
// length before use; the packets this package parses arrive off the
// network and are attacker-influenceable.
//
// Error Handling:
//
// Failures fall into two sentinel families. ErrEncode covers outbound
// construction problems (bad label, capacity exceeded) and is always
// recoverable by the caller fixing its input. ErrMalformed covers anything
// wrong with an inbound packet (truncation, bad label lengths, pointer
// loops, lying RDLENGTH); the only correct reaction is to discard the
// whole packet. Both are wrapped with context via
// fmt.Errorf("...: %w", err).
package dnswire

import "errors"

var (
	// ErrEncode reports a failure building outbound wire data.
	ErrEncode = errors.New("dns encode error")

	// ErrMalformed reports an inbound packet that cannot be trusted.
	// Callers must discard the packet entirely; no partial result is usable.
	ErrMalformed = errors.New("malformed dns packet")
)
