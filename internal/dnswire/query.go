package dnswire

import (
	"encoding/binary"
	"fmt"
)

// initialTransactionID seeds the query counter. mDNS responders echo the
// ID but matching is done on the question name, so the seed value only
// needs to be stable and non-zero.
const initialTransactionID = 0x1234

// Builder assembles outbound PTR query packets into a caller-supplied
// buffer. Each build increments the transaction ID.
//
// Builder is not safe for concurrent use; the discovery client that owns
// it runs build and parse strictly sequentially on one buffer.
type Builder struct {
	nextID uint16
}

// NewBuilder returns a Builder with the transaction counter seeded.
func NewBuilder() *Builder {
	return &Builder{nextID: initialTransactionID}
}

// BuildPTRQuery writes a complete PTR query for name into dst and returns
// the number of bytes written.
//
// Layout: 12-byte header (ID, flags=0, QDCOUNT=1), the encoded question
// name, then QTYPE=PTR and QCLASS=IN. Fails without touching the
// transaction counter's monotonicity guarantees if the encoded name plus
// fixed fields would not fit in dst.
func (b *Builder) BuildPTRQuery(dst []byte, name string) (int, error) {
	encoded, err := EncodeName(name)
	if err != nil {
		return 0, err
	}

	total := HeaderSize + len(encoded) + 4
	if total > len(dst) {
		return 0, fmt.Errorf("%w: query needs %d bytes, buffer holds %d", ErrEncode, total, len(dst))
	}

	h := Header{ID: b.nextID, QDCount: 1}
	h.marshalInto(dst)
	b.nextID++

	pos := HeaderSize
	copy(dst[pos:], encoded)
	pos += len(encoded)

	binary.BigEndian.PutUint16(dst[pos:], uint16(TypePTR))
	binary.BigEndian.PutUint16(dst[pos+2:], uint16(ClassIN))
	pos += 4

	return pos, nil
}
