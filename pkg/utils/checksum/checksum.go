// Package checksum implements the additive 8-bit checksum used by the
// hand's serial link protocol.
package checksum

// Sum8 returns the low 8 bits of the byte sum of data.
func Sum8(data []byte) byte {
	var sum uint32
	for _, b := range data {
		sum += uint32(b)
	}
	return byte(sum & 0xFF)
}
