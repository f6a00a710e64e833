// Package endian selects the byte order used by archive sections.
//
// Archives are little-endian by default. The byte order is recorded in the archive
// header flags, so an archive written with the big-endian engine is still readable on
// any host:
//
//	engine := endian.FromFlag(header.Flag.IsBigEndian())
//	rowCount := engine.Uint64(b[4:12])
//
// EndianEngine combines encoding/binary's ByteOrder and AppendByteOrder so writers can
// append fields without temporary slices.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine combines the ByteOrder and AppendByteOrder interfaces from encoding/binary.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness reports the host byte order.
func CheckEndianness() binary.ByteOrder {
	var i uint16 = 0x0100

	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// IsNativeLittleEndian reports whether the host is little-endian.
func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.LittleEndian
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// FromFlag returns the big-endian engine when bigEndian is set, the little-endian one otherwise.
func FromFlag(bigEndian bool) EndianEngine {
	if bigEndian {
		return binary.BigEndian
	}

	return binary.LittleEndian
}
