package dnswire

import (
	"encoding/binary"
	"fmt"
)

// Header represents a DNS message header (RFC 1035 Section 4.1.1).
//
// The header is always 12 bytes:
//   - ID: transaction identifier
//   - Flags: QR, opcode, and response bits
//   - QDCount/ANCount/NSCount/ARCount: section entry counts
//
// Counts read off the wire are advisory only. Record walking must stop at
// the end of the buffer regardless of what ANCount claims.
type Header struct {
	ID      uint16
	Flags   uint16
	QDCount uint16
	ANCount uint16
	NSCount uint16
	ARCount uint16
}

// ParseHeader parses the fixed 12-byte header at the start of msg.
func ParseHeader(msg []byte) (Header, error) {
	if len(msg) < HeaderSize {
		return Header{}, fmt.Errorf("%w: %d bytes is too short for a DNS header", ErrMalformed, len(msg))
	}
	return Header{
		ID:      binary.BigEndian.Uint16(msg[0:2]),
		Flags:   binary.BigEndian.Uint16(msg[2:4]),
		QDCount: binary.BigEndian.Uint16(msg[4:6]),
		ANCount: binary.BigEndian.Uint16(msg[6:8]),
		NSCount: binary.BigEndian.Uint16(msg[8:10]),
		ARCount: binary.BigEndian.Uint16(msg[10:12]),
	}, nil
}

// IsResponse reports whether the QR bit is set (QR=1 means response).
func (h Header) IsResponse() bool {
	return h.Flags&QRFlag != 0
}

// marshalInto writes the header into the first HeaderSize bytes of dst.
// The caller guarantees len(dst) >= HeaderSize.
func (h Header) marshalInto(dst []byte) {
	binary.BigEndian.PutUint16(dst[0:2], h.ID)
	binary.BigEndian.PutUint16(dst[2:4], h.Flags)
	binary.BigEndian.PutUint16(dst[4:6], h.QDCount)
	binary.BigEndian.PutUint16(dst[6:8], h.ANCount)
	binary.BigEndian.PutUint16(dst[8:10], h.NSCount)
	binary.BigEndian.PutUint16(dst[10:12], h.ARCount)
}
