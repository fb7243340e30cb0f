package protocol

import (
	"iter"
	"slices"

	"go.uber.org/zap"

	"github.com/muurk/aprilaire/internal/logging"
)

// nackPayloadSize is the action byte plus the rejected attribute.
const nackPayloadSize = 2

// Parse scans data frame by frame and yields every message whose checksum
// verifies. Frames with an unknown action, domain or attribute are skipped
// using their length field. Scanning stops at the first truncated frame.
//
// The length field is combined as hi<<2 | lo, which is what deployed devices
// have been observed to expect. Every observed frame has a zero high byte; a
// non-zero one is logged so it can be investigated.
func Parse(data []byte) iter.Seq[*Packet] {
	return func(yield func(*Packet) bool) {
		pos := 0
		for pos < len(data) {
			// Need the envelope plus the action byte to decide anything.
			if len(data)-pos < HeaderSize+1 {
				logging.Debug("Truncated frame header", zap.Int("offset", pos), zap.Int("remaining", len(data)-pos))
				return
			}

			revision := data[pos]
			sequence := data[pos+1]
			if data[pos+2] != 0 {
				logging.Warn("Frame length high byte is non-zero",
					zap.Int("offset", pos),
					zap.Uint8("length_hi", data[pos+2]),
					zap.Uint8("length_lo", data[pos+3]),
				)
			}
			count := int(data[pos+2])<<2 | int(data[pos+3])
			skip := pos + count + 5
			action := Action(data[pos+4])

			if action == ActionNack {
				end := pos + HeaderSize + nackPayloadSize
				if end >= len(data) {
					logging.Debug("Truncated nack frame", zap.Int("offset", pos))
					return
				}
				if !VerifyCRC(data[pos:end], data[end]) {
					logging.Debug("Dropping nack with bad checksum",
						zap.Int("offset", pos),
						zap.Uint8("crc", data[end]),
						zap.Uint8("expected", CalculateCRC(data[pos:end])),
					)
					pos = skip
					continue
				}
				nack := NewNack(data[pos+5])
				nack.Revision = revision
				nack.Sequence = sequence
				nack.Count = count
				if !yield(nack) {
					return
				}
				pos = skip
				continue
			}

			if len(data)-pos < HeaderSize+SubHeaderSize {
				logging.Debug("Truncated frame sub-header", zap.Int("offset", pos))
				return
			}

			domain := Domain(data[pos+5])
			attribute := data[pos+6]
			specs, known := lookup(action, domain, attribute)
			if !action.Valid() || !domain.Valid() || !known {
				logging.Debug("Skipping unknown frame",
					zap.Stringer("action", action),
					zap.Stringer("domain", domain),
					zap.Uint8("attribute", attribute),
				)
				pos = skip
				continue
			}

			p := &Packet{
				Action:    action,
				Domain:    domain,
				Attribute: attribute,
				Revision:  revision,
				Sequence:  sequence,
				Count:     count,
				Fields:    Fields{},
			}

			last := pos + count + 3
			i := pos + HeaderSize + SubHeaderSize
			for idx := 0; i <= last; idx++ {
				if idx >= len(specs) {
					// Trailing bytes beyond the known layout.
					i++
					continue
				}
				spec := specs[idx]
				width := spec.Width()
				if i+width > len(data) {
					logging.Debug("Truncated frame fields", zap.Int("offset", pos))
					return
				}
				decodeField(p.Fields, spec, data[i:i+width])
				i += width
			}

			if i >= len(data) {
				logging.Debug("Truncated frame checksum", zap.Int("offset", pos))
				return
			}

			valid := VerifyCRC(data[pos:i], data[i])
			start := pos
			pos = i + 1
			if !valid {
				logging.Debug("Dropping frame with bad checksum",
					zap.Int("offset", start),
					zap.Uint8("crc", data[i]),
					zap.Uint8("expected", CalculateCRC(data[start:i])),
				)
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}

// ParseAll collects every message Parse yields.
func ParseAll(data []byte) []*Packet {
	return slices.Collect(Parse(data))
}

func decodeField(f Fields, spec FieldSpec, b []byte) {
	switch spec.Type {
	case TypeReserved:
	case TypeInteger:
		f[spec.Name] = int(b[0])
	case TypeIntegerRequired:
		if b[0] != 0 {
			f[spec.Name] = int(b[0])
		}
	case TypeTemperature:
		f[spec.Name] = DecodeTemperature(b[0])
	case TypeTemperatureRequired:
		if b[0] != 0 {
			f[spec.Name] = DecodeTemperature(b[0])
		}
	case TypeHumidity:
		if h, ok := DecodeHumidity(b[0]); ok {
			f[spec.Name] = h
		} else {
			f[spec.Name] = nil
		}
	case TypeMACAddress:
		f[spec.Name] = FormatMAC(b)
	case TypeText:
		f[spec.Name] = decodeText(b[:spec.Length])
	}
}
