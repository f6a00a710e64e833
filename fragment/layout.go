package fragment

// Fragment describes one fragment of a row as it is written.
type Fragment struct {
	Len       uint32
	Technical bool // barcode, adapter or linker; never reported and has no identifier
	Aligned   bool
}

// Placed is a fragment positioned inside its row.
type Placed struct {
	Fragment

	// Start is the offset of the fragment's first base within the row.
	Start uint32
	// Number is the ordinal among the row's biological fragments, or -1 when technical.
	Number int
}

// End returns the offset just past the fragment's last base.
func (p Placed) End() uint32 {
	return p.Start + p.Len
}

// IsBiological reports whether the fragment carries sequence worth reporting.
func (p Placed) IsBiological() bool {
	return p.Number >= 0
}

// Category classifies a read by the alignment state of its biological fragments.
type Category uint8

const (
	CategoryUnaligned Category = iota + 1
	CategoryPartiallyAligned
	CategoryFullyAligned
)

func (c Category) String() string {
	switch c {
	case CategoryUnaligned:
		return "unaligned"
	case CategoryPartiallyAligned:
		return "partially-aligned"
	case CategoryFullyAligned:
		return "fully-aligned"
	default:
		return "unknown"
	}
}

// Layout is the ordered fragment list of one row.
type Layout []Placed

// NewLayout places frags one after another and numbers the biological ones from 0.
func NewLayout(frags []Fragment) Layout {
	layout := make(Layout, len(frags))

	var start uint32
	number := 0
	for i, f := range frags {
		layout[i] = Placed{Fragment: f, Start: start, Number: -1}
		if !f.Technical {
			layout[i].Number = number
			number++
		}
		start += f.Len
	}

	return layout
}

// Len returns the number of bases covered by the layout.
func (l Layout) Len() uint32 {
	if len(l) == 0 {
		return 0
	}

	return l[len(l)-1].End()
}

// Locate returns the fragment that owns offset off of the row.
func (l Layout) Locate(off uint32) (Placed, bool) {
	for _, p := range l {
		if off < p.End() {
			return p, off >= p.Start
		}
	}

	return Placed{}, false
}

// Biological returns the number of biological fragments.
func (l Layout) Biological() int {
	n := 0
	for _, p := range l {
		if p.IsBiological() {
			n++
		}
	}

	return n
}

// Category returns the alignment category of the row. A row without biological
// fragments is unaligned.
func (l Layout) Category() Category {
	aligned, total := 0, 0
	for _, p := range l {
		if !p.IsBiological() {
			continue
		}
		total++
		if p.Aligned {
			aligned++
		}
	}

	switch {
	case aligned == 0:
		return CategoryUnaligned
	case aligned == total:
		return CategoryFullyAligned
	default:
		return CategoryPartiallyAligned
	}
}
