package protocol

import (
	"errors"
	"fmt"
	"maps"
	"sort"
	"strings"
)

// ErrUnknownAttribute is returned when serializing fields for a domain and
// attribute that the schema does not cover.
var ErrUnknownAttribute = errors.New("attribute not in schema")

// EncodeError reports a field value that cannot be encoded.
type EncodeError struct {
	Field  string
	Value  any
	Reason string
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("field %s: cannot encode %v: %s", e.Field, e.Value, e.Reason)
}

// Fields holds decoded values keyed by field name. Integers decode as int,
// temperatures as float64, humidity as int (nil when the reading is absent),
// MAC addresses and text as string.
type Fields map[string]any

// Int returns the named field as an int.
func (f Fields) Int(name string) (int, bool) {
	v, ok := f[name]
	if !ok || v == nil {
		return 0, false
	}
	n, err := toInt(v)
	return n, err == nil
}

// Float returns the named field as a float64.
func (f Fields) Float(name string) (float64, bool) {
	v, ok := f[name]
	if !ok || v == nil {
		return 0, false
	}
	n, err := toFloat(v)
	return n, err == nil
}

// Text returns the named field as a string.
func (f Fields) Text(name string) (string, bool) {
	s, ok := f[name].(string)
	return s, ok
}

// Bool returns the named field as a bool. Connectivity fields are booleans.
func (f Fields) Bool(name string) (bool, bool) {
	b, ok := f[name].(bool)
	return b, ok
}

// Clone returns a shallow copy.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	return maps.Clone(f)
}

func (f Fields) String() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%s=%v", k, f[k])
	}
	sb.WriteByte('}')
	return sb.String()
}

// Packet is one protocol message. A negative acknowledgement has Action set
// to ActionNack and carries only NackAttribute.
type Packet struct {
	Action    Action
	Domain    Domain
	Attribute byte
	Revision  byte
	Sequence  byte
	Count     int // Length field as received

	Fields  Fields
	RawData []byte // Emitted verbatim in place of Fields when non-nil

	NackAttribute byte
}

// NewPacket creates a message for the given action, domain and attribute.
func NewPacket(action Action, domain Domain, attribute byte, fields Fields) *Packet {
	if fields == nil {
		fields = Fields{}
	}
	return &Packet{
		Action:    action,
		Domain:    domain,
		Attribute: attribute,
		Revision:  FrameRevision,
		Fields:    fields,
	}
}

// NewNack creates a negative acknowledgement rejecting attribute.
func NewNack(attribute byte) *Packet {
	return &Packet{
		Action:        ActionNack,
		Domain:        DomainNack,
		Revision:      FrameRevision,
		Fields:        Fields{},
		NackAttribute: attribute,
	}
}

// IsNack reports whether p is a negative acknowledgement.
func (p *Packet) IsNack() bool {
	return p.Action == ActionNack
}

// Key returns the correlation key for p.
func (p *Packet) Key() AttributeKey {
	return AttributeKey{Domain: p.Domain, Attribute: p.Attribute}
}

func (p *Packet) String() string {
	if p.IsNack() {
		return fmt.Sprintf("nack{seq=%d, attribute=%d}", p.Sequence, p.NackAttribute)
	}
	if p.RawData != nil {
		return fmt.Sprintf("%s{seq=%d, %s/%d, raw=% x}", p.Action, p.Sequence, p.Domain, p.Attribute, p.RawData)
	}
	return fmt.Sprintf("%s{seq=%d, %s/%d, fields=%s}", p.Action, p.Sequence, p.Domain, p.Attribute, p.Fields)
}
