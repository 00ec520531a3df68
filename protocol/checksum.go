package protocol

// Checksum calculates the 8-bit additive checksum that trails every XMODEM
// packet: the sum of the data bytes modulo 256
func Checksum(data []byte) uint8 {
	var sum uint8
	for _, b := range data {
		sum += b
	}
	return sum
}
