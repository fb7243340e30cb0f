package protocol

import (
	"bytes"
	"testing"
)

func TestDecodeTemperature(t *testing.T) {
	tests := []struct {
		raw  byte
		want float64
	}{
		{0x15, 21},
		{0x95, -21},
		{0x5A, 26.5},
		{0xDA, -26.5},
		{0x00, 0},
		{0x3F, 63},
	}

	for _, tt := range tests {
		if got := DecodeTemperature(tt.raw); got != tt.want {
			t.Errorf("DecodeTemperature(0x%02X) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestEncodeTemperature(t *testing.T) {
	tests := []struct {
		value float64
		want  byte
	}{
		{21, 0x15},
		{26.5, 0x5A},
		{-21, 0x95},
		{-26.5, 0xDA},
		{22.2, 0x16},
		{22.7, 0x56},
		{0, 0x00},
	}

	for _, tt := range tests {
		if got := EncodeTemperature(tt.value); got != tt.want {
			t.Errorf("EncodeTemperature(%v) = 0x%02X, want 0x%02X", tt.value, got, tt.want)
		}
	}
}

func TestTemperatureRoundTrip(t *testing.T) {
	for raw := 0; raw < 256; raw++ {
		if raw == 0x80 {
			// negative zero encodes as zero
			continue
		}
		v := DecodeTemperature(byte(raw))
		if got := EncodeTemperature(v); got != byte(raw) {
			t.Errorf("EncodeTemperature(DecodeTemperature(0x%02X)) = 0x%02X", raw, got)
		}
	}
}

func TestDecodeHumidity(t *testing.T) {
	tests := []struct {
		raw    byte
		want   int
		wantOK bool
	}{
		{0, 0, false},
		{1, 1, true},
		{50, 50, true},
		{99, 99, true},
		{100, 0, false},
		{255, 0, false},
	}

	for _, tt := range tests {
		got, ok := DecodeHumidity(tt.raw)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("DecodeHumidity(%d) = (%d, %v), want (%d, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestFormatMAC(t *testing.T) {
	tests := []struct {
		in   []byte
		want string
	}{
		{[]byte{1, 2, 3, 4, 5, 6}, "1:2:3:4:5:6"},
		{[]byte{0xb4, 0x82, 0x55, 0x50, 0x93, 0x6d}, "b4:82:55:50:93:6d"},
		{[]byte{0, 0x0a, 0xff, 0x10, 0, 1}, "0:a:ff:10:0:1"},
	}

	for _, tt := range tests {
		if got := FormatMAC(tt.in); got != tt.want {
			t.Errorf("FormatMAC(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseMAC(t *testing.T) {
	tests := []struct {
		in      string
		want    []byte
		wantErr bool
	}{
		{"1:2:3:4:5:6", []byte{1, 2, 3, 4, 5, 6}, false},
		{"01:02:0a:ff:10:00", []byte{1, 2, 10, 255, 16, 0}, false},
		{"1:2:3:4:5", nil, true},
		{"1:2:3:4:5:zz", nil, true},
		{"1:2:3:4:5:100", nil, true},
	}

	for _, tt := range tests {
		got, err := ParseMAC(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMAC(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && !bytes.Equal(got, tt.want) {
			t.Errorf("ParseMAC(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestText(t *testing.T) {
	encoded := encodeText("12345", 7)
	want := []byte{'1', '2', '3', '4', '5', 0, 0, 0}
	if !bytes.Equal(encoded, want) {
		t.Errorf("encodeText = %v, want %v", encoded, want)
	}

	if got := decodeText(encoded[:7]); got != "12345" {
		t.Errorf("decodeText = %q, want %q", got, "12345")
	}

	long := encodeText("ABCDEFGHIJ", 7)
	if len(long) != 8 || long[7] != 0 || string(long[:7]) != "ABCDEFG" {
		t.Errorf("encodeText truncation = %v", long)
	}

	if got := decodeText([]byte{0, 'a', 0, 'b', 0}); got != "a b" {
		t.Errorf("decodeText inner NUL = %q, want %q", got, "a b")
	}
}
