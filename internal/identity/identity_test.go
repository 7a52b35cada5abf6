package identity

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMAC(t *testing.T) {
	addr := net.HardwareAddr{0xa4, 0xcf, 0x12, 0x0f, 0x00, 0x3b}
	assert.Equal(t, "A4:CF:12:0F:00:3B", formatMAC(addr))
}

func TestQueryValues(t *testing.T) {
	d := DeviceID{ID: "0123456789ABCDEF", MAC: "A4:CF:12:0F:00:3B"}
	v := d.QueryValues()
	assert.Equal(t, "0123456789ABCDEF", v.Get("device_id"))
	assert.Equal(t, "A4:CF:12:0F:00:3B", v.Get("mac"))
}
