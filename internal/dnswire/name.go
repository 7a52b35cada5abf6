package dnswire

import "fmt"

// EncodeName encodes a dotted domain name to DNS wire format (RFC 1035
// Section 3.1).
//
// Each label is written as a one-byte length followed by its raw bytes,
// and the sequence terminates with a zero-length root label:
//
//	"_config._tcp.local" → [7]_config[4]_tcp[5]local[0]
//
// Labels must be 1..63 bytes; an empty label (leading, trailing, or
// doubled dot) or an oversized one fails the whole encode. Nothing is
// returned on failure, so callers never see a partially encoded name.
func EncodeName(domain string) ([]byte, error) {
	if domain == "" {
		return nil, fmt.Errorf("%w: name must be non-empty", ErrEncode)
	}

	out := make([]byte, 0, len(domain)+2)
	labelStart := 0
	for i := 0; i <= len(domain); i++ {
		if i < len(domain) && domain[i] != '.' {
			continue
		}
		label := domain[labelStart:i]
		if len(label) == 0 {
			return nil, fmt.Errorf("%w: empty label in %q", ErrEncode, domain)
		}
		if len(label) > MaxLabelLen {
			return nil, fmt.Errorf("%w: label too long (%d > %d): %q", ErrEncode, len(label), MaxLabelLen, label)
		}
		out = append(out, byte(len(label)))
		out = append(out, label...)
		labelStart = i + 1
	}
	out = append(out, 0) // root label terminator

	if len(out) > MaxNameLen {
		return nil, fmt.Errorf("%w: encoded name too long (%d > %d)", ErrEncode, len(out), MaxNameLen)
	}
	return out, nil
}

// DecodeName decodes a possibly-compressed DNS name from msg starting at
// off (RFC 1035 Section 4.1.4).
//
// It returns the dotted-text name and the offset immediately following the
// original occurrence of the name. When the name uses compression, that is
// the offset just past the first 2-byte pointer, not past the jump target:
// pointers are followed only to finish resolving the text, never to
// advance the caller's cursor. Nested pointers do not move the returned
// offset again.
//
// Safety bounds on untrusted input:
//   - every label copy and pointer target is checked against len(msg)
//   - at most maxPointerJumps pointer indirections are followed, so a
//     pointer cycle fails instead of looping
//   - the decoded text is capped at MaxNameLen bytes; an oversized name
//     degrades to truncation while the wire walk still completes, keeping
//     the returned offset correct
func DecodeName(msg []byte, off int) (string, int, error) {
	if off < 0 || off >= len(msg) {
		return "", 0, fmt.Errorf("%w: name offset %d out of range", ErrMalformed, off)
	}

	name := make([]byte, 0, 64)
	pos := off
	next := 0
	jumped := false
	jumps := 0

	for {
		if pos >= len(msg) {
			return "", 0, fmt.Errorf("%w: unexpected EOF while decoding name", ErrMalformed)
		}
		b := msg[pos]
		pos++

		switch {
		case b == 0:
			// End of name.
			if !jumped {
				next = pos
			}
			return string(name), next, nil

		case b&0xC0 == 0xC0:
			// Compression pointer: low 6 bits + next byte form a 14-bit
			// offset from the start of the message.
			if pos >= len(msg) {
				return "", 0, fmt.Errorf("%w: unexpected EOF in compression pointer", ErrMalformed)
			}
			target := int(b&0x3F)<<8 | int(msg[pos])
			pos++
			if !jumped {
				next = pos
				jumped = true
			}
			jumps++
			if jumps > maxPointerJumps {
				return "", 0, fmt.Errorf("%w: compression pointer loop detected", ErrMalformed)
			}
			if target >= len(msg) {
				return "", 0, fmt.Errorf("%w: compression pointer out of bounds", ErrMalformed)
			}
			pos = target

		case b&0xC0 != 0:
			// 01/10 high bits are reserved label types (RFC 1035).
			return "", 0, fmt.Errorf("%w: invalid label length byte 0x%02x", ErrMalformed, b)

		default:
			// Regular label, length 1..63.
			length := int(b)
			if pos+length > len(msg) {
				return "", 0, fmt.Errorf("%w: label extends beyond packet", ErrMalformed)
			}
			if len(name) > 0 && len(name) < MaxNameLen {
				name = append(name, '.')
			}
			if room := MaxNameLen - len(name); room > 0 {
				if length < room {
					room = length
				}
				name = append(name, msg[pos:pos+room]...)
			}
			pos += length
		}
	}
}
