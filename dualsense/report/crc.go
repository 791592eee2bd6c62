package report

import (
	"encoding/binary"
	"hash/crc32"
)

// btCRCSeed is prepended (as a single byte) ahead of the buffer before
// computing the Bluetooth output trailer, per the DualSense BT wire format.
const btCRCSeed = 0xA2

// btCRC computes the CRC-32/ISO-HDLC checksum the BT transport expects over
// a report buffer, seeded by the single byte 0xA2. CRC-32/ISO-HDLC is the
// same polynomial as crc32.IEEE, so the standard library table is exact.
func btCRC(buf []byte) uint32 {
	crc := crc32.NewIEEE()
	crc.Write([]byte{btCRCSeed})
	crc.Write(buf)
	return crc.Sum32()
}

// appendBTCRC computes the trailer CRC over buf[:len(buf)-4] and stores it
// little-endian into the last 4 bytes of buf. buf must already contain its
// final transmitted content in every byte preceding the trailer.
func appendBTCRC(buf []byte) {
	n := len(buf)
	sum := btCRC(buf[:n-btCRCSize])
	binary.LittleEndian.PutUint32(buf[n-btCRCSize:], sum)
}
