package discovery

import (
	"log/slog"

	"github.com/dessyd/scout/internal/dnswire"
)

// Outcome classifies what a call to HandleResponse did with a packet.
type Outcome int

const (
	// OutcomeIgnored means the packet was not a matching response: too
	// short, addressed to a different question, or not a response at all.
	// Nothing changed; this is the common case on a busy multicast group.
	OutcomeIgnored Outcome = iota

	// OutcomeIncomplete means the packet was a matching response but its
	// answers did not cover all required fields. The store is untouched.
	OutcomeIncomplete

	// OutcomeDiscovered means a complete record was extracted and
	// committed to the store.
	OutcomeDiscovered
)

// String returns a short label for logging.
func (o Outcome) String() string {
	switch o {
	case OutcomeIncomplete:
		return "incomplete"
	case OutcomeDiscovered:
		return "discovered"
	default:
		return "ignored"
	}
}

// Client drives one query/response discovery flow.
//
// It owns the single packet buffer shared by outbound builds and inbound
// parses, and the name of the last query sent. That sharing is safe only
// because the caller's loop is strictly sequential: build, send, then
// receive into the same buffer, never overlapping. Owning both pieces of
// state here makes the invariant structural instead of a convention
// spread over globals.
//
// Client is not safe for concurrent use.
type Client struct {
	builder *dnswire.Builder
	store   *Store
	logger  *slog.Logger

	buf     [dnswire.MaxPacketSize]byte
	pending string // question name of the last query sent
}

// NewClient returns a Client committing discoveries to store.
func NewClient(store *Store, logger *slog.Logger) *Client {
	return &Client{
		builder: dnswire.NewBuilder(),
		store:   store,
		logger:  logger,
	}
}

// Buffer exposes the client's packet buffer so the caller can receive
// datagrams directly into it between builds.
func (c *Client) Buffer() []byte {
	return c.buf[:]
}

// BuildQuery assembles a PTR query for name into the client's buffer and
// records name as the pending question. The returned slice aliases the
// buffer and is only good until the next build or receive.
func (c *Client) BuildQuery(name string) ([]byte, error) {
	n, err := c.builder.BuildPTRQuery(c.buf[:], name)
	if err != nil {
		return nil, err
	}
	c.pending = name
	return c.buf[:n], nil
}

// Pending returns the question name awaiting a response.
func (c *Client) Pending() string {
	return c.pending
}

// HandleResponse screens pkt, walks its answer section, and commits the
// extracted record when complete.
//
// Errors are returned only for malformed packets that passed the gate;
// they are recoverable by discarding the packet, and a previously
// committed record is never contaminated. Packets failing the gate are
// reported as OutcomeIgnored with no error: on a multicast group most
// traffic simply belongs to someone else.
func (c *Client) HandleResponse(pkt []byte) (Outcome, error) {
	ansOff, ancount, ok := c.screenResponse(pkt)
	if !ok {
		return OutcomeIgnored, nil
	}
	if ancount == 0 {
		return OutcomeIncomplete, nil
	}

	svc, err := walkAnswers(pkt, ansOff, ancount)
	if err != nil {
		return OutcomeIgnored, err
	}

	if !svc.Valid {
		c.logger.Debug("incomplete service record",
			"port", svc.Port, "path", svc.Path, "ipv4", svc.IPv4Text)
		return OutcomeIncomplete, nil
	}

	c.store.Commit(svc)
	c.logger.Info("service discovered",
		"hostname", svc.Hostname,
		"port", svc.Port,
		"path", svc.Path,
		"ipv4", svc.IPv4Text,
		"api_version", svc.APIVersion,
	)
	return OutcomeDiscovered, nil
}

// screenResponse validates a packet before any record parsing. Checks run
// in order and short-circuit: enough bytes for a header, the first
// question's name matches the pending query (case-sensitively), and the
// QR bit marks it as a response. On pass it returns the offset of the
// answer section (past the question name and QTYPE/QCLASS) and ANCOUNT.
func (c *Client) screenResponse(pkt []byte) (ansOff int, ancount uint16, ok bool) {
	h, err := dnswire.ParseHeader(pkt)
	if err != nil {
		return 0, 0, false
	}

	qname, next, err := dnswire.DecodeName(pkt, dnswire.HeaderSize)
	if err != nil {
		return 0, 0, false
	}
	if qname != c.pending {
		c.logger.Debug("response for different service", "got", qname, "want", c.pending)
		return 0, 0, false
	}

	if !h.IsResponse() {
		c.logger.Debug("query packet on group, ignoring")
		return 0, 0, false
	}

	return next + 4, h.ANCount, true
}
