package zkfs

import (
	"encoding/binary"
	"hash/crc32"
)

// crcTable is the reflected IEEE 802.3 table (polynomial 0xEDB88320) used
// for envelope framing checks.
var crcTable = crc32.MakeTable(crc32.IEEE)

// Checksum returns the CRC-32 of data with the IEEE polynomial.
func Checksum(data []byte) uint32 {
	return crc32.Checksum(data, crcTable)
}

// AppendChecksum appends the big-endian CRC-32 of dst to dst itself and
// returns the extended slice.
func AppendChecksum(dst []byte) []byte {
	return binary.BigEndian.AppendUint32(dst, Checksum(dst))
}

// VerifyChecksum reports whether the trailing four bytes of buf hold the
// big-endian CRC-32 of everything before them. Buffers shorter than the
// checksum itself never verify.
func VerifyChecksum(buf []byte) bool {
	if len(buf) < 4 {
		return false
	}
	body := buf[:len(buf)-4]
	stored := binary.BigEndian.Uint32(buf[len(buf)-4:])
	return Checksum(body) == stored
}
