package protocol

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DecodeTemperature unpacks a temperature byte: bits 0-5 hold the whole
// degrees, bit 6 adds one half and bit 7 marks a negative value.
func DecodeTemperature(raw byte) float64 {
	v := float64(raw & 0x3f)
	if raw&0x40 != 0 {
		v += 0.5
	}
	if raw&0x80 != 0 {
		v = -v
	}
	return v
}

// EncodeTemperature packs v into a temperature byte. Fractions below one half
// are truncated and magnitudes above 63 do not fit.
func EncodeTemperature(v float64) byte {
	abs := math.Abs(v)
	whole := math.Floor(abs)
	raw := byte(int(whole) & 0x3f)
	if abs-whole >= 0.5 {
		raw |= 0x40
	}
	if v < 0 {
		raw |= 0x80
	}
	return raw
}

// DecodeHumidity returns the relative humidity and whether it is present.
// Only 1..99 are valid readings.
func DecodeHumidity(raw byte) (int, bool) {
	if raw == 0 || raw >= 100 {
		return 0, false
	}
	return int(raw), true
}

// FormatMAC renders six bytes as lowercase hex octets joined by colons,
// without zero padding ("1:2:a:4:5:6").
func FormatMAC(b []byte) string {
	parts := make([]string, len(b))
	for i, octet := range b {
		parts[i] = strconv.FormatUint(uint64(octet), 16)
	}
	return strings.Join(parts, ":")
}

// ParseMAC accepts the FormatMAC form as well as zero-padded octets.
func ParseMAC(s string) ([]byte, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 6 {
		return nil, fmt.Errorf("invalid MAC address %q: want 6 octets, got %d", s, len(parts))
	}
	out := make([]byte, 6)
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid MAC address %q: octet %d: %w", s, i, err)
		}
		out[i] = byte(n)
	}
	return out, nil
}

// decodeText reads n characters, mapping NUL to space, then trims spaces.
func decodeText(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		if c == 0 {
			sb.WriteByte(' ')
		} else {
			sb.WriteRune(rune(c))
		}
	}
	return strings.Trim(sb.String(), " ")
}

// encodeText writes s into n characters plus the pad byte, zero filled.
func encodeText(s string, n int) []byte {
	out := make([]byte, n+1)
	copy(out[:n], s)
	return out
}
