package dnswire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeader(t *testing.T) {
	msg := []byte{
		0x12, 0x35, // ID
		0x84, 0x00, // Flags: QR + AA
		0x00, 0x01, // QDCOUNT
		0x00, 0x03, // ANCOUNT
		0x00, 0x00, // NSCOUNT
		0x00, 0x00, // ARCOUNT
	}
	h, err := ParseHeader(msg)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1235), h.ID)
	assert.Equal(t, uint16(1), h.QDCount)
	assert.Equal(t, uint16(3), h.ANCount)
	assert.True(t, h.IsResponse())
}

func TestParseHeader_TooShort(t *testing.T) {
	_, err := ParseHeader(make([]byte, HeaderSize-1))
	require.ErrorIs(t, err, ErrMalformed)
}

func TestHeader_IsResponse(t *testing.T) {
	assert.False(t, Header{Flags: 0}.IsResponse())
	assert.True(t, Header{Flags: QRFlag}.IsResponse())
}
