package protocol

import (
	"fmt"
	"math"
)

// Serialize encodes p as a complete frame. Write, read response and change of
// state messages carry their schema fields; read requests carry none. RawData,
// when set, replaces the field section. The revision byte is always 1.
func (p *Packet) Serialize() ([]byte, error) {
	var payload []byte

	if p.IsNack() {
		payload = []byte{byte(ActionNack), p.NackAttribute}
	} else {
		payload = []byte{byte(p.Action), byte(p.Domain), p.Attribute}

		switch {
		case p.RawData != nil:
			payload = append(payload, p.RawData...)
		case p.Action == ActionWrite || p.Action == ActionReadResponse || p.Action == ActionCOS:
			specs, ok := lookup(p.Action, p.Domain, p.Attribute)
			if !ok {
				return nil, fmt.Errorf("%w: %s/%d", ErrUnknownAttribute, p.Domain, p.Attribute)
			}
			for _, spec := range specs {
				b, err := encodeField(spec, p.Fields[spec.Name])
				if err != nil {
					return nil, err
				}
				payload = append(payload, b...)
			}
		}
	}

	n := len(payload)
	frame := make([]byte, 0, HeaderSize+n+1)
	frame = append(frame, FrameRevision, p.Sequence, byte(n>>8), byte(n))
	frame = append(frame, payload...)
	frame = append(frame, CalculateCRC(frame))
	return frame, nil
}

// MustSerialize is like Serialize but panics on error. Intended for
// constructors whose fields are known to be valid.
func (p *Packet) MustSerialize() []byte {
	b, err := p.Serialize()
	if err != nil {
		panic(err)
	}
	return b
}

func encodeField(spec FieldSpec, v any) ([]byte, error) {
	switch spec.Type {
	case TypeReserved:
		return []byte{0}, nil

	case TypeInteger, TypeIntegerRequired, TypeHumidity:
		if v == nil {
			return []byte{0}, nil
		}
		n, err := toInt(v)
		if err != nil {
			return nil, &EncodeError{Field: spec.Name, Value: v, Reason: err.Error()}
		}
		if n < 0 || n > 255 {
			return nil, &EncodeError{Field: spec.Name, Value: v, Reason: "out of byte range"}
		}
		return []byte{byte(n)}, nil

	case TypeTemperature, TypeTemperatureRequired:
		if v == nil {
			return []byte{0}, nil
		}
		f, err := toFloat(v)
		if err != nil {
			return nil, &EncodeError{Field: spec.Name, Value: v, Reason: err.Error()}
		}
		if math.Abs(f) >= 64 {
			return nil, &EncodeError{Field: spec.Name, Value: v, Reason: "magnitude must be below 64"}
		}
		return []byte{EncodeTemperature(f)}, nil

	case TypeMACAddress:
		return encodeMAC(spec, v)

	case TypeText:
		if v == nil {
			return make([]byte, spec.Length+1), nil
		}
		s, ok := v.(string)
		if !ok {
			return nil, &EncodeError{Field: spec.Name, Value: v, Reason: "not a string"}
		}
		return encodeText(s, spec.Length), nil
	}
	return nil, &EncodeError{Field: spec.Name, Value: v, Reason: "unsupported value type " + spec.Type.String()}
}

func encodeMAC(spec FieldSpec, v any) ([]byte, error) {
	var out []byte
	switch mac := v.(type) {
	case nil:
		return make([]byte, 6), nil
	case string:
		b, err := ParseMAC(mac)
		if err != nil {
			return nil, &EncodeError{Field: spec.Name, Value: v, Reason: err.Error()}
		}
		out = b
	case []byte:
		out = mac
	case []int:
		out = make([]byte, len(mac))
		for i, n := range mac {
			if n < 0 || n > 255 {
				return nil, &EncodeError{Field: spec.Name, Value: v, Reason: "octet out of range"}
			}
			out[i] = byte(n)
		}
	default:
		return nil, &EncodeError{Field: spec.Name, Value: v, Reason: "unsupported MAC representation"}
	}
	if len(out) != 6 {
		return nil, &EncodeError{Field: spec.Name, Value: v, Reason: "need exactly 6 octets"}
	}
	return out, nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int8:
		return int(n), nil
	case int16:
		return int(n), nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case uint:
		return int(n), nil
	case uint8:
		return int(n), nil
	case uint16:
		return int(n), nil
	case uint32:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("not an integer (%T)", v)
}

func floatToInt(f float64) (int, error) {
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("not a whole number")
	}
	return int(f), nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	}
	i, err := toInt(v)
	if err != nil {
		return 0, fmt.Errorf("not a number (%T)", v)
	}
	return float64(i), nil
}
