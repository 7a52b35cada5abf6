package discovery

import (
	"encoding/binary"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dessyd/scout/internal/dnswire"
)

const testService = "_config._tcp.local"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mustEncodeName is a test helper for hand-building packets.
func mustEncodeName(t *testing.T, name string) []byte {
	t.Helper()
	b, err := dnswire.EncodeName(name)
	require.NoError(t, err)
	return b
}

// buildResponse assembles a response packet with one question and the
// given pre-encoded answer records.
func buildResponse(t *testing.T, qname string, flags uint16, ancount uint16, answers ...[]byte) []byte {
	t.Helper()

	pkt := make([]byte, dnswire.HeaderSize)
	binary.BigEndian.PutUint16(pkt[0:2], 0x1235)
	binary.BigEndian.PutUint16(pkt[2:4], flags)
	binary.BigEndian.PutUint16(pkt[4:6], 1)
	binary.BigEndian.PutUint16(pkt[6:8], ancount)

	pkt = append(pkt, mustEncodeName(t, qname)...)
	pkt = binary.BigEndian.AppendUint16(pkt, uint16(dnswire.TypePTR))
	pkt = binary.BigEndian.AppendUint16(pkt, uint16(dnswire.ClassIN))

	for _, a := range answers {
		pkt = append(pkt, a...)
	}
	return pkt
}

// record assembles NAME TYPE CLASS TTL RDLENGTH RDATA.
func record(t *testing.T, owner string, rrType dnswire.RecordType, rdata []byte) []byte {
	t.Helper()

	b := mustEncodeName(t, owner)
	b = binary.BigEndian.AppendUint16(b, uint16(rrType))
	b = binary.BigEndian.AppendUint16(b, uint16(dnswire.ClassIN))
	b = binary.BigEndian.AppendUint32(b, 120) // TTL
	b = binary.BigEndian.AppendUint16(b, uint16(len(rdata)))
	return append(b, rdata...)
}

func srvRData(t *testing.T, port uint16, target string) []byte {
	t.Helper()
	rdata := make([]byte, 6)
	binary.BigEndian.PutUint16(rdata[4:6], port)
	return append(rdata, mustEncodeName(t, target)...)
}

func txtRData(entries ...string) []byte {
	var rdata []byte
	for _, e := range entries {
		rdata = append(rdata, byte(len(e)))
		rdata = append(rdata, e...)
	}
	return rdata
}

func fullResponse(t *testing.T) []byte {
	t.Helper()
	return buildResponse(t, testService, dnswire.QRFlag, 3,
		record(t, testService, dnswire.TypeSRV, srvRData(t, 5050, "host.local")),
		record(t, testService, dnswire.TypeTXT, txtRData("path=/config", "version=1.0")),
		record(t, "host.local", dnswire.TypeA, []byte{192, 168, 1, 50}),
	)
}

func TestHandleResponse_EndToEnd(t *testing.T) {
	store := NewStore()
	c := NewClient(store, testLogger())
	_, err := c.BuildQuery(testService)
	require.NoError(t, err)

	outcome, err := c.HandleResponse(fullResponse(t))
	require.NoError(t, err)
	assert.Equal(t, OutcomeDiscovered, outcome)

	svc, ok := store.Current()
	require.True(t, ok)
	assert.True(t, svc.Valid)
	assert.Equal(t, "host.local", svc.Hostname)
	assert.Equal(t, uint16(5050), svc.Port)
	assert.Equal(t, "/config", svc.Path)
	assert.Equal(t, "1.0", svc.APIVersion)
	assert.Equal(t, "192.168.1.50", svc.IPv4Text)

	url, err := svc.URL()
	require.NoError(t, err)
	assert.Equal(t, "http://192.168.1.50:5050/config", url)
}

func TestHandleResponse_PartialPacketKeepsStickyRecord(t *testing.T) {
	store := NewStore()
	c := NewClient(store, testLogger())
	_, err := c.BuildQuery(testService)
	require.NoError(t, err)

	// First a full discovery.
	_, err = c.HandleResponse(fullResponse(t))
	require.NoError(t, err)

	// Then a packet missing the TXT record: no path, so invalid.
	partial := buildResponse(t, testService, dnswire.QRFlag, 2,
		record(t, testService, dnswire.TypeSRV, srvRData(t, 9999, "other.local")),
		record(t, "other.local", dnswire.TypeA, []byte{10, 0, 0, 1}),
	)
	outcome, err := c.HandleResponse(partial)
	require.NoError(t, err)
	assert.Equal(t, OutcomeIncomplete, outcome)

	// The earlier valid record is untouched.
	svc, ok := store.Current()
	require.True(t, ok)
	assert.Equal(t, uint16(5050), svc.Port)
	assert.Equal(t, "192.168.1.50", svc.IPv4Text)
}

func TestHandleResponse_QueryPacketIgnored(t *testing.T) {
	store := NewStore()
	c := NewClient(store, testLogger())
	_, err := c.BuildQuery(testService)
	require.NoError(t, err)

	// QR bit clear: someone else's query echoed back to the group.
	query := buildResponse(t, testService, 0, 3,
		record(t, testService, dnswire.TypeSRV, srvRData(t, 5050, "host.local")),
	)
	outcome, err := c.HandleResponse(query)
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, outcome)

	_, ok := store.Current()
	assert.False(t, ok, "store must be unchanged by non-response packets")
}

func TestHandleResponse_NameMismatchIgnored(t *testing.T) {
	store := NewStore()
	c := NewClient(store, testLogger())
	_, err := c.BuildQuery(testService)
	require.NoError(t, err)

	other := buildResponse(t, "_printer._tcp.local", dnswire.QRFlag, 1,
		record(t, "_printer._tcp.local", dnswire.TypeA, []byte{10, 0, 0, 2}),
	)
	outcome, err := c.HandleResponse(other)
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, outcome)
}

func TestHandleResponse_TooShortIgnored(t *testing.T) {
	store := NewStore()
	c := NewClient(store, testLogger())
	_, err := c.BuildQuery(testService)
	require.NoError(t, err)

	outcome, err := c.HandleResponse([]byte{0x12, 0x34, 0x80})
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, outcome)
}

func TestHandleResponse_LyingRDLengthFailsWalk(t *testing.T) {
	store := NewStore()
	c := NewClient(store, testLogger())
	_, err := c.BuildQuery(testService)
	require.NoError(t, err)

	// SRV record whose RDLENGTH claims bytes past the end of the packet.
	bad := mustEncodeName(t, testService)
	bad = binary.BigEndian.AppendUint16(bad, uint16(dnswire.TypeSRV))
	bad = binary.BigEndian.AppendUint16(bad, uint16(dnswire.ClassIN))
	bad = binary.BigEndian.AppendUint32(bad, 120)
	bad = binary.BigEndian.AppendUint16(bad, 500) // lies
	bad = append(bad, 0, 0, 0, 0, 0x13, 0xBA)

	pkt := buildResponse(t, testService, dnswire.QRFlag, 1, bad)
	_, err = c.HandleResponse(pkt)
	require.ErrorIs(t, err, dnswire.ErrMalformed)

	_, ok := store.Current()
	assert.False(t, ok)
}

func TestWalkAnswers_UntrustedCountStopsAtBufferEnd(t *testing.T) {
	// Header claims 10 answers but the packet holds one. The walk must
	// consume what exists and stop, not read past the buffer.
	pkt := buildResponse(t, testService, dnswire.QRFlag, 10,
		record(t, "host.local", dnswire.TypeA, []byte{192, 168, 1, 50}),
	)

	// Skip the question section to find the answer offset.
	_, next, err := dnswire.DecodeName(pkt, dnswire.HeaderSize)
	require.NoError(t, err)

	svc, err := walkAnswers(pkt, next+4, 10)
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.50", svc.IPv4Text)
	assert.False(t, svc.Valid)
}

func TestWalkAnswers_UnknownTypeAndKeysSkipped(t *testing.T) {
	pkt := buildResponse(t, testService, dnswire.QRFlag, 3,
		record(t, testService, dnswire.TypePTR, mustEncodeName(t, "instance.local")),
		record(t, testService, dnswire.TypeTXT, txtRData("color=blue", "path=/config")),
		record(t, "host.local", dnswire.TypeA, []byte{10, 1, 2, 3}),
	)
	_, next, err := dnswire.DecodeName(pkt, dnswire.HeaderSize)
	require.NoError(t, err)

	svc, err := walkAnswers(pkt, next+4, 3)
	require.NoError(t, err)
	assert.Equal(t, "/config", svc.Path)
	assert.Equal(t, "10.1.2.3", svc.IPv4Text)
	assert.False(t, svc.Valid, "no SRV record, so no port")
}

func TestWalkAnswers_CompressedSRVTarget(t *testing.T) {
	// SRV target written as a pointer back into the question name. The
	// question starts at offset 12, so "_tcp.local" lives at 12+8.
	pkt := buildResponse(t, testService, dnswire.QRFlag, 0)
	qnameOff := dnswire.HeaderSize

	rdata := make([]byte, 6)
	binary.BigEndian.PutUint16(rdata[4:6], 8080)
	rdata = append(rdata, 4, 'h', 'o', 's', 't', 0xC0, byte(qnameOff+8))

	pkt = append(pkt, record(t, testService, dnswire.TypeSRV, rdata)...)
	binary.BigEndian.PutUint16(pkt[6:8], 1)

	_, next, err := dnswire.DecodeName(pkt, dnswire.HeaderSize)
	require.NoError(t, err)

	svc, err := walkAnswers(pkt, next+4, 1)
	require.NoError(t, err)
	assert.Equal(t, uint16(8080), svc.Port)
	assert.Equal(t, "host._tcp.local", svc.Hostname)
}

func TestWalkAnswers_SRVTooSmallSkipped(t *testing.T) {
	pkt := buildResponse(t, testService, dnswire.QRFlag, 2,
		record(t, testService, dnswire.TypeSRV, []byte{0, 0, 0, 1}), // 4 bytes < 6
		record(t, "host.local", dnswire.TypeA, []byte{10, 0, 0, 9}),
	)
	_, next, err := dnswire.DecodeName(pkt, dnswire.HeaderSize)
	require.NoError(t, err)

	svc, err := walkAnswers(pkt, next+4, 2)
	require.NoError(t, err)
	assert.Zero(t, svc.Port)
	assert.Equal(t, "10.0.0.9", svc.IPv4Text)
}

func TestWalkAnswers_OversizedARecordSkipped(t *testing.T) {
	pkt := buildResponse(t, testService, dnswire.QRFlag, 1,
		record(t, "host.local", dnswire.TypeA, []byte{10, 0, 0, 1, 0, 0}), // 6 bytes
	)
	_, next, err := dnswire.DecodeName(pkt, dnswire.HeaderSize)
	require.NoError(t, err)

	svc, err := walkAnswers(pkt, next+4, 1)
	require.NoError(t, err)
	assert.Empty(t, svc.IPv4Text)
}
