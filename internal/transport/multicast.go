// Package transport provides the UDP multicast socket the discovery core
// sends and receives on. The core itself only ever sees byte buffers;
// all socket concerns live here.
package transport

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"golang.org/x/net/ipv4"
)

// mDNS transport constants (RFC 6762 Section 5).
const (
	GroupAddr = "224.0.0.251"
	Port      = 5353
)

// Multicast is a datagram channel joined to the mDNS group.
type Multicast struct {
	conn  *net.UDPConn
	pconn *ipv4.PacketConn
	group *net.UDPAddr
}

// Listen binds to the mDNS port, joins 224.0.0.251, and configures the
// socket for multicast use.
func Listen() (*Multicast, error) {
	group, err := net.ResolveUDPAddr("udp4", net.JoinHostPort(GroupAddr, strconv.Itoa(Port)))
	if err != nil {
		return nil, fmt.Errorf("resolve mdns group: %w", err)
	}

	conn, err := net.ListenMulticastUDP("udp4", nil, group)
	if err != nil {
		return nil, fmt.Errorf("join mdns group: %w", err)
	}

	if err := conn.SetReadBuffer(64 * 1024); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("set read buffer: %w", err)
	}

	// RFC 6762 Section 11: multicast DNS messages use TTL 255.
	pconn := ipv4.NewPacketConn(conn)
	if err := pconn.SetMulticastTTL(255); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("set multicast ttl: %w", err)
	}

	return &Multicast{conn: conn, pconn: pconn, group: group}, nil
}

// Send transmits packet to the multicast group.
func (m *Multicast) Send(packet []byte) error {
	n, err := m.conn.WriteToUDP(packet, m.group)
	if err != nil {
		return fmt.Errorf("send to mdns group: %w", err)
	}
	if n != len(packet) {
		return fmt.Errorf("partial send: %d of %d bytes", n, len(packet))
	}
	return nil
}

// Receive reads one datagram into buf, waiting at most wait. It returns
// the packet length, or 0 when the wait elapsed without traffic. Reading
// into the caller's buffer keeps the discovery client's single-buffer
// reuse intact.
func (m *Multicast) Receive(buf []byte, wait time.Duration) (int, error) {
	if err := m.conn.SetReadDeadline(time.Now().Add(wait)); err != nil {
		return 0, err
	}
	n, _, err := m.conn.ReadFromUDP(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

// Close releases the socket.
func (m *Multicast) Close() error {
	return m.conn.Close()
}
