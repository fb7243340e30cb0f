package protocol

// CRC-8 parameters used by the thermostat: polynomial 0x31, no reflection,
// no final XOR.
const (
	CRCPolynomial = 0x31
	CRCInitial    = 0x00
)

// CalculateCRC computes the frame checksum over data.
func CalculateCRC(data []byte) byte {
	crc := byte(CRCInitial)
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = (crc << 1) ^ CRCPolynomial
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// VerifyCRC reports whether crc matches the checksum of data.
func VerifyCRC(data []byte, crc byte) bool {
	return CalculateCRC(data) == crc
}
