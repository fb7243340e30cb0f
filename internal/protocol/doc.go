// Package protocol implements the Aprilaire thermostat automation protocol.
//
// This package handles framing, checksumming, parsing and construction of the
// binary messages exchanged with the thermostat over its TCP automation port.
// Every function is stateless; connection handling lives in the client package.
//
// # Frame Format
//
// Each frame on the wire has this structure:
//   - Revision: 1 byte (always 0x01 when sent)
//   - Sequence: 1 byte (7-bit rolling counter, diagnostic only)
//   - Length: 2 bytes (count of action, domain, attribute and field bytes)
//   - Action: 1 byte (write, read request, read response, COS, NACK)
//   - Domain: 1 byte (functional area, e.g. control or sensors)
//   - Attribute: 1 byte (sub-selector within the domain)
//   - Fields: variable, laid out by the attribute schema
//   - CRC: 1 byte (CRC-8, polynomial 0x31, over every preceding byte)
//
// Negative acknowledgements replace action, domain and attribute with a
// two byte payload: the NACK action followed by the rejected attribute.
//
// # Value Types
//
// Field bytes are decoded according to the schema entry:
//   - Integer: one byte as-is
//   - IntegerRequired / TemperatureRequired: omitted when the byte is zero
//   - Temperature: bits 0-5 degrees, bit 6 adds 0.5, bit 7 negative
//   - Humidity: valid 1..99, anything else decodes to nil
//   - MAC address: six bytes rendered as "b4:82:55:50:93:6d" without padding
//   - Text: n characters plus one pad byte, NUL mapped to space and trimmed
//
// # Usage Example - Parsing
//
//	for packet := range protocol.Parse(buf) {
//	    if packet.IsNack() {
//	        log.Printf("rejected attribute %d", packet.NackAttribute)
//	        continue
//	    }
//	    fmt.Printf("%s/%d: %s\n", packet.Domain, packet.Attribute, packet.Fields)
//	}
//
// # Usage Example - Construction
//
//	packet := protocol.UpdateSetpoint(24, 20)
//	packet.Sequence = 5
//	frame, err := packet.Serialize()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	conn.Write(frame)
//
// # Error Handling
//
// Parsing is best effort: frames with an unknown action, domain or attribute
// or a bad checksum are dropped and scanning continues. A truncated frame ends
// the scan. Serialization returns ErrUnknownAttribute for writes outside the
// schema and *EncodeError for values that do not fit their wire type.
package protocol
