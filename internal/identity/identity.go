// Package identity resolves the stable identifiers this agent reports
// to the configuration service: a machine identifier and the primary
// network interface's MAC address.
package identity

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/shirou/gopsutil/v3/host"
)

// ErrNoInterface is returned when no usable network interface exposes a
// hardware address.
var ErrNoInterface = errors.New("identity: no interface with a hardware address")

// DeviceID identifies this agent instance.
type DeviceID struct {
	ID  string // uppercase machine identifier
	MAC string // XX:XX:XX:XX:XX:XX
}

// Resolve reads the machine identifier and primary MAC address.
func Resolve() (DeviceID, error) {
	id, err := host.HostID()
	if err != nil {
		return DeviceID{}, fmt.Errorf("identity: read host id: %w", err)
	}
	if id == "" {
		return DeviceID{}, errors.New("identity: empty host id")
	}

	mac, err := primaryMAC()
	if err != nil {
		return DeviceID{}, err
	}

	return DeviceID{
		ID:  strings.ToUpper(strings.ReplaceAll(id, "-", "")),
		MAC: mac,
	}, nil
}

// QueryValues returns the identity as URL query parameters for the
// configuration request.
func (d DeviceID) QueryValues() url.Values {
	v := url.Values{}
	v.Set("device_id", d.ID)
	v.Set("mac", d.MAC)
	return v
}

// primaryMAC returns the hardware address of the first interface that
// is up, not a loopback, and carries a MAC.
func primaryMAC() (string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", fmt.Errorf("identity: list interfaces: %w", err)
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if iface.Flags&net.FlagUp == 0 {
			continue
		}
		if len(iface.HardwareAddr) == 0 {
			continue
		}
		return formatMAC(iface.HardwareAddr), nil
	}
	return "", ErrNoInterface
}

func formatMAC(addr net.HardwareAddr) string {
	parts := make([]string, len(addr))
	for i, b := range addr {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, ":")
}
