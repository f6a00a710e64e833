package encoding

import (
	"encoding/binary"
	"fmt"

	"github.com/arloliu/fragscan/errs"
	"github.com/arloliu/fragscan/fragment"
)

const (
	flagTechnical = 0x01
	flagAligned   = 0x02
	flagReserved  = ^uint8(flagTechnical | flagAligned)
)

// AppendLayout appends the encoded layout of one row to dst.
func AppendLayout(dst []byte, frags []fragment.Fragment) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(frags)))
	for _, f := range frags {
		dst = binary.AppendUvarint(dst, uint64(f.Len))

		var flags uint8
		if f.Technical {
			flags |= flagTechnical
		}
		if f.Aligned {
			flags |= flagAligned
		}
		dst = append(dst, flags)
	}

	return dst
}

// DecodeLayouts decodes the layouts of rows consecutive rows.
//
// Parameters:
//   - data: the uncompressed layout payload of one blob
//   - rows: the number of rows the blob covers
//
// Returns:
//   - []fragment.Layout: one placed layout per row, in row order
//   - error: ErrInvalidLayout when the payload is truncated, has trailing bytes or
//     uses reserved flag bits
func DecodeLayouts(data []byte, rows int) ([]fragment.Layout, error) {
	layouts := make([]fragment.Layout, rows)
	frags := make([]fragment.Fragment, 0, 4)
	offset := 0

	for row := range layouts {
		count, n := binary.Uvarint(data[offset:])
		if n <= 0 {
			return nil, fmt.Errorf("%w: cannot read fragment count of row %d at offset %d", errs.ErrInvalidLayout, row, offset)
		}
		offset += n

		if count > uint64(len(data)-offset) {
			return nil, fmt.Errorf("%w: fragment count %d of row %d exceeds payload", errs.ErrInvalidLayout, count, row)
		}

		frags = frags[:0]
		for i := uint64(0); i < count; i++ {
			length, n := binary.Uvarint(data[offset:])
			if n <= 0 || length > uint64(^uint32(0)) {
				return nil, fmt.Errorf("%w: cannot read length of fragment %d in row %d", errs.ErrInvalidLayout, i, row)
			}
			offset += n

			if offset >= len(data) {
				return nil, fmt.Errorf("%w: missing flags of fragment %d in row %d", errs.ErrInvalidLayout, i, row)
			}
			flags := data[offset]
			offset++

			if flags&flagReserved != 0 {
				return nil, fmt.Errorf("%w: reserved flag bits 0x%02x in row %d", errs.ErrInvalidLayout, flags, row)
			}

			frags = append(frags, fragment.Fragment{
				Len:       uint32(length),
				Technical: flags&flagTechnical != 0,
				Aligned:   flags&flagAligned != 0,
			})
		}

		layouts[row] = fragment.NewLayout(frags)
	}

	if offset != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes after %d rows", errs.ErrInvalidLayout, len(data)-offset, rows)
	}

	return layouts, nil
}
