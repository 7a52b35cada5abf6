package discovery

import (
	"encoding/binary"
	"fmt"
	"net"
	"strings"

	"github.com/dessyd/scout/internal/dnswire"
)

// maxTXTLen is a sanity ceiling on TXT RDATA. The walker has already
// fenced RDLENGTH against the buffer; this additionally rejects absurd
// claims before string scanning starts.
const maxTXTLen = 512

// walkAnswers iterates the answer section starting at off and folds
// SRV/TXT/A payloads into a fresh Service.
//
// count comes from the header's ANCOUNT and is untrusted: the walk also
// stops as soon as the offset cannot hold another record. A record whose
// fixed header or RDATA extends past the buffer fails the whole walk —
// after a lying RDLENGTH nothing downstream can be resynchronized.
// Records of other types, and records whose type-specific payload is
// unusable, are skipped without failing the walk.
//
// Validity is evaluated once, after every record in the packet has been
// folded in, so the required fields may arrive in any answer order.
func walkAnswers(pkt []byte, off int, count uint16) (Service, error) {
	var svc Service

	for processed := uint16(0); processed < count && off < len(pkt); processed++ {
		_, next, err := dnswire.DecodeName(pkt, off)
		if err != nil {
			return Service{}, fmt.Errorf("record %d owner name: %w", processed, err)
		}
		off = next

		if off+10 > len(pkt) {
			return Service{}, fmt.Errorf("%w: record header extends beyond packet", dnswire.ErrMalformed)
		}
		rrType := dnswire.RecordType(binary.BigEndian.Uint16(pkt[off : off+2]))
		rdlen := int(binary.BigEndian.Uint16(pkt[off+8 : off+10]))
		off += 10

		if off+rdlen > len(pkt) {
			return Service{}, fmt.Errorf("%w: record data extends beyond packet", dnswire.ErrMalformed)
		}

		switch rrType {
		case dnswire.TypeSRV:
			extractSRV(pkt, off, rdlen, &svc)
		case dnswire.TypeTXT:
			extractTXT(pkt, off, rdlen, &svc)
		case dnswire.TypeA:
			if rdlen == 4 {
				extractA(pkt, off, &svc)
			}
		default:
			// Not a record type we consume; advance past it.
		}

		off += rdlen
	}

	svc.revalidate()
	return svc, nil
}

// extractSRV reads PRIORITY(2) WEIGHT(2) PORT(2) TARGET(name) out of SRV
// RDATA (RFC 2782). Priority and weight are ignored. The target name may
// be compressed, so it decodes against the full packet. RDATA too small
// to hold the fixed fields, or an undecodable target, leaves svc
// untouched.
func extractSRV(pkt []byte, off, rdlen int, svc *Service) {
	if rdlen < 6 {
		return
	}
	port := binary.BigEndian.Uint16(pkt[off+4 : off+6])

	target, _, err := dnswire.DecodeName(pkt, off+6)
	if err != nil {
		return
	}
	svc.Port = port
	svc.Hostname = target
}

// extractTXT scans the length-prefixed character strings of TXT RDATA for
// the recognized keys. The closed key set is deliberate: unknown keys are
// metadata for somebody else, not an error.
func extractTXT(pkt []byte, off, rdlen int, svc *Service) {
	if rdlen == 0 || rdlen > maxTXTLen {
		return
	}

	pos, end := off, off+rdlen
	for pos < end {
		strLen := int(pkt[pos])
		pos++
		if strLen == 0 {
			break
		}
		if pos+strLen > end {
			strLen = end - pos
		}
		entry := string(pkt[pos : pos+strLen])
		pos += strLen

		if v, ok := strings.CutPrefix(entry, "path="); ok {
			svc.Path = truncate(v, maxPathLen)
		}
		if v, ok := strings.CutPrefix(entry, "version="); ok {
			svc.APIVersion = truncate(v, maxVersionLen)
		}
	}
}

// extractA reads the 4-byte IPv4 address. The walker has already checked
// rdlen == 4 and fenced the RDATA.
func extractA(pkt []byte, off int, svc *Service) {
	svc.IPv4 = binary.BigEndian.Uint32(pkt[off : off+4])
	svc.IPv4Text = net.IP(pkt[off : off+4]).String()
}

func truncate(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen]
	}
	return s
}
