// Package encoding implements the variable-length payload encodings of fragscan
// archives that do not fit a fixed-size section.
//
// Fragment layouts are stored per row as:
//
//	[Count: uvarint] ([Len: uvarint][Flags: byte]) * Count
//
// Flags bit 0 marks a technical fragment and bit 1 an aligned one; the remaining bits
// must be zero.
package encoding
