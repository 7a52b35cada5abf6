package dnswire

// DNS header flags (RFC 1035 Section 4.1.1).
//
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	|QR|   Opcode  |AA|TC|RD|RA| Z|AD|CD|   RCODE   |
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	 15 14 13 12 11 10  9  8  7  6  5  4  3  2  1  0
//
// Only QR matters for a query-only mDNS client: it distinguishes the
// responses we want from other hosts' queries on the multicast group.
const (
	// QRFlag is set on responses, clear on queries.
	QRFlag uint16 = 0x8000
)

// RecordType represents DNS resource record types (RFC 1035, RFC 2782).
type RecordType uint16

const (
	TypeA   RecordType = 1  // IPv4 address
	TypePTR RecordType = 12 // Domain name pointer (service enumeration)
	TypeTXT RecordType = 16 // Text strings (service metadata)
	TypeSRV RecordType = 33 // Service locator (RFC 2782)
)

// RecordClass represents DNS resource record classes (RFC 1035).
type RecordClass uint16

const (
	ClassIN RecordClass = 1 // Internet class
)

// Wire-format size limits.
const (
	// HeaderSize is the fixed size of a DNS header in bytes.
	HeaderSize = 12

	// MaxPacketSize bounds every packet this package builds or parses.
	// mDNS messages must fit in a single unfragmented Ethernet frame
	// (RFC 6762 Section 17).
	MaxPacketSize = 1500

	// MaxNameLen is the longest decoded name text we keep (RFC 1035
	// Section 2.3.4). Longer names are truncated, never overflowed.
	MaxNameLen = 255

	// MaxLabelLen is the longest single label (RFC 1035 Section 2.3.4).
	MaxLabelLen = 63

	// maxPointerJumps bounds compression pointer chasing. Pointers in a
	// hostile packet can form cycles; ten jumps is far beyond anything a
	// legitimate name needs.
	maxPointerJumps = 10
)
