package protocol

import (
	"reflect"
	"testing"
)

func TestParse_Skips(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty buffer", []byte{}},
		{"invalid action", []byte{1, 1, 0, 3, 7, 1, 1, 0}},
		{"invalid domain", []byte{1, 1, 0, 3, 3, 17, 1, 0}},
		{"unmapped attribute", []byte{1, 1, 0, 3, 3, 13, 1, 0}},
		{"bad checksum", []byte{1, 1, 0, 7, 3, 2, 1, 1, 2, 10, 20, 108}},
		{"truncated header", []byte{1, 1, 0}},
		{"truncated fields", []byte{1, 1, 0, 9, 3, 8, 2, 1, 2, 3}},
		{"missing checksum", []byte{1, 1, 0, 7, 3, 2, 1, 1, 2, 10, 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseAll(tt.data); len(got) != 0 {
				t.Errorf("ParseAll() returned %d packets, want 0: %v", len(got), got)
			}
		})
	}
}

func TestParse_Single(t *testing.T) {
	packets := ParseAll([]byte{1, 1, 0, 3, 2, 1, 1, 107})
	if len(packets) != 1 {
		t.Fatalf("ParseAll() returned %d packets, want 1", len(packets))
	}

	p := packets[0]
	if p.Action != ActionReadRequest {
		t.Errorf("Action = %v, want %v", p.Action, ActionReadRequest)
	}
	if p.Domain != DomainSetup {
		t.Errorf("Domain = %v, want %v", p.Domain, DomainSetup)
	}
	if p.Attribute != 1 {
		t.Errorf("Attribute = %d, want 1", p.Attribute)
	}
	if p.Sequence != 1 || p.Revision != 1 || p.Count != 3 {
		t.Errorf("envelope = (rev %d, seq %d, count %d), want (1, 1, 3)", p.Revision, p.Sequence, p.Count)
	}
}

func TestParse_ExtraData(t *testing.T) {
	packets := ParseAll([]byte{1, 1, 0, 8, 3, 2, 1, 1, 1, 1, 1, 10, 146})
	if len(packets) != 1 {
		t.Fatalf("ParseAll() returned %d packets, want 1", len(packets))
	}
	want := Fields{FieldMode: 1, FieldFanMode: 1, FieldHeatSetpoint: 1.0, FieldCoolSetpoint: 1.0}
	if !reflect.DeepEqual(packets[0].Fields, want) {
		t.Errorf("Fields = %v, want %v", packets[0].Fields, want)
	}
}

func TestParse_Multiple(t *testing.T) {
	packets := ParseAll([]byte{1, 1, 0, 3, 2, 1, 1, 107, 1, 2, 0, 3, 3, 3, 4, 248})
	if len(packets) != 2 {
		t.Fatalf("ParseAll() returned %d packets, want 2", len(packets))
	}

	if packets[0].Domain != DomainSetup {
		t.Errorf("packets[0].Domain = %v, want %v", packets[0].Domain, DomainSetup)
	}
	p := packets[1]
	if p.Action != ActionReadResponse || p.Domain != DomainScheduling || p.Attribute != 4 {
		t.Errorf("packets[1] = %v, want read_response scheduling/4", p)
	}
	if p.Sequence != 2 {
		t.Errorf("packets[1].Sequence = %d, want 2", p.Sequence)
	}
}

func TestParse_EarlyStop(t *testing.T) {
	data := []byte{1, 1, 0, 3, 2, 1, 1, 107, 1, 2, 0, 3, 3, 3, 4, 248}
	n := 0
	for range Parse(data) {
		n++
		break
	}
	if n != 1 {
		t.Errorf("iterations = %d, want 1", n)
	}
}

func TestParse_Nack(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		attr byte
	}{
		{"two byte payload", []byte{1, 1, 0, 2, 6, 1, 99}, 1},
		{"three byte length", []byte{1, 1, 0, 3, 6, 1, 37}, 1},
		{"serialized", []byte{1, 0, 0, 2, 6, 2, 227}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			packets := ParseAll(tt.data)
			if len(packets) != 1 {
				t.Fatalf("ParseAll() returned %d packets, want 1", len(packets))
			}
			if !packets[0].IsNack() {
				t.Fatalf("packet is not a nack: %v", packets[0])
			}
			if packets[0].NackAttribute != tt.attr {
				t.Errorf("NackAttribute = %d, want %d", packets[0].NackAttribute, tt.attr)
			}
		})
	}
}

func TestParse_NackBadChecksum(t *testing.T) {
	frame := NewNack(1).MustSerialize()
	frame[len(frame)-1] ^= 0x01

	if got := ParseAll(frame); len(got) != 0 {
		t.Errorf("ParseAll() returned %d packets, want 0: %v", len(got), got)
	}

	// The damaged nack is skipped and the frame after it still parses.
	data := append(frame, 1, 1, 0, 7, 3, 2, 1, 1, 2, 10, 20, 107)
	packets := ParseAll(data)
	if len(packets) != 1 || packets[0].IsNack() {
		t.Fatalf("ParseAll() = %v, want one control packet", packets)
	}
}

func TestParse_NackThenPacket(t *testing.T) {
	data := []byte{
		0x01, 0x04, 0x00, 0x02, 0x06, 0x03, 0xCD,
		0x01, 0x01, 0x00, 0x11, 0x03, 0x08, 0x02,
		0xB4, 0x82, 0x55, 0x50, 0x93, 0x6D,
		0x01, 0x49, 0x02, 0x01, 0x02, 0x0D, 0x04, 0x0E,
		0x51,
	}

	packets := ParseAll(data)
	if len(packets) != 2 {
		t.Fatalf("ParseAll() returned %d packets, want 2", len(packets))
	}
	if !packets[0].IsNack() || packets[0].NackAttribute != 3 {
		t.Errorf("packets[0] = %v, want nack for attribute 3", packets[0])
	}
	if mac, _ := packets[1].Fields.Text(FieldMACAddress); mac != "b4:82:55:50:93:6d" {
		t.Errorf("mac_address = %q, want %q", mac, "b4:82:55:50:93:6d")
	}
}

func TestParse_Attributes(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Fields
	}{
		{
			name: "control 1",
			data: []byte{1, 1, 0, 7, 3, 2, 1, 1, 2, 10, 20, 107},
			want: Fields{FieldMode: 1, FieldFanMode: 2, FieldHeatSetpoint: 10.0, FieldCoolSetpoint: 20.0},
		},
		{
			name: "scheduling 4",
			data: []byte{1, 1, 0, 13, 3, 3, 4, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 42},
			want: Fields{FieldHold: 1},
		},
		{
			name: "sensors 2",
			data: []byte{1, 1, 0, 11, 3, 5, 2, 1, 10, 2, 20, 3, 50, 4, 60, 12},
			want: Fields{
				FieldIndoorTemperatureControllingSensorStatus:  1,
				FieldIndoorTemperatureControllingSensorValue:   10.0,
				FieldOutdoorTemperatureControllingSensorStatus: 2,
				FieldOutdoorTemperatureControllingSensorValue:  20.0,
				FieldIndoorHumidityControllingSensorStatus:     3,
				FieldIndoorHumidityControllingSensorValue:      50,
				FieldOutdoorHumidityControllingSensorStatus:    4,
				FieldOutdoorHumidityControllingSensorValue:     60,
			},
		},
		{
			name: "identification 2",
			data: []byte{1, 1, 0, 9, 3, 8, 2, 1, 2, 3, 4, 5, 6, 176},
			want: Fields{FieldMACAddress: "1:2:3:4:5:6"},
		},
		{
			name: "identification 4",
			data: []byte{
				1, 1, 0, 27, 3, 8, 4,
				49, 50, 51, 52, 53, 0, 0, 0,
				84, 101, 115, 116, 32, 78, 97, 109, 101, 0, 0, 0, 0, 0, 0, 0,
				180,
			},
			want: Fields{FieldLocation: "12345", FieldName: "Test Name"},
		},
		{
			name: "status 8 error",
			data: []byte{1, 1, 0, 4, 3, 7, 8, 2, 149},
			want: Fields{FieldError: 2},
		},
		{
			name: "required fields omitted when zero",
			data: []byte{1, 1, 0, 7, 1, 2, 1, 3, 0, 0, 0, 106},
			want: Fields{FieldMode: 3},
		},
		{
			name: "humidity zero is absent",
			data: []byte{1, 1, 0, 4, 3, 2, 3, 0, 130},
			want: Fields{FieldDehumidificationSetpoint: nil},
		},
		{
			name: "humidity 100 is absent",
			data: []byte{1, 1, 0, 4, 3, 2, 3, 100, 253},
			want: Fields{FieldDehumidificationSetpoint: nil},
		},
		{
			name: "humidity in range",
			data: []byte{1, 1, 0, 4, 3, 2, 3, 45, 72},
			want: Fields{FieldDehumidificationSetpoint: 45},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			packets := ParseAll(tt.data)
			if len(packets) != 1 {
				t.Fatalf("ParseAll() returned %d packets, want 1", len(packets))
			}
			if !reflect.DeepEqual(packets[0].Fields, tt.want) {
				t.Errorf("Fields = %v, want %v", packets[0].Fields, tt.want)
			}
		})
	}
}

func TestParse_SingleByteCorruption(t *testing.T) {
	frames := map[string][]byte{
		"control": {1, 1, 0, 7, 3, 2, 1, 1, 2, 10, 20, 107},
		"sensors": {1, 1, 0, 11, 3, 5, 2, 1, 10, 2, 20, 3, 50, 4, 60, 12},
		"mac":     {1, 1, 0, 9, 3, 8, 2, 1, 2, 3, 4, 5, 6, 176},
		"nack":    NewNack(2).MustSerialize(),
	}

	for name, frame := range frames {
		// 0x05 turns a read response action (3) into a nack (6).
		for _, mask := range []byte{0x01, 0x05, 0x10, 0x80, 0xff} {
			for i := range frame {
				corrupted := append([]byte(nil), frame...)
				corrupted[i] ^= mask
				if got := ParseAll(corrupted); len(got) != 0 {
					t.Errorf("%s: byte %d ^ 0x%02x parsed %d packets, want 0", name, i, mask, len(got))
				}
			}
		}
	}
}
