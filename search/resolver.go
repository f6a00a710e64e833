package search

import (
	"github.com/arloliu/fragscan/archive"
	"github.com/arloliu/fragscan/errs"
	"github.com/arloliu/fragscan/fragment"
)

// FragmentInfo locates the fragment that owns an offset of a blob.
type FragmentInfo struct {
	// ID is the fragment identifier, empty for technical fragments.
	ID      string
	RowID   uint64
	FragNum int // -1 for technical fragments
	// Start is the offset of the fragment's first base within the blob.
	Start int
	// Len is the fragment length in bases.
	Len        int
	Biological bool

	// RowStart is the offset of the row's stored bases within the blob.
	RowStart int
	// Repeat is the number of identical rows sharing the stored bases, starting at RowID.
	Repeat uint32
	// Increment is the row length of the run.
	Increment uint32
}

// End returns the offset just past the fragment's last base.
func (fi FragmentInfo) End() int {
	return fi.Start + fi.Len
}

// Resolver maps blob offsets to fragments using the page map of the blob and the row
// layouts read through a cursor. It shares the cursor's lack of concurrency safety:
// callers sharing one cursor must serialize Resolve calls.
type Resolver struct {
	cur  *archive.Cursor
	run  string
	kind fragment.ObjectKind
}

// NewResolver creates a resolver naming fragments after run.
func NewResolver(cur *archive.Cursor, run string) *Resolver {
	return &Resolver{cur: cur, run: run, kind: fragment.KindReadFragment}
}

// Resolve returns the fragment owning offset. For a run of repeated rows the first row
// of the run is resolved; see ResolveRow for the others.
func (r *Resolver) Resolve(blob *archive.Blob, offset int) (FragmentInfo, error) {
	info, err := blob.RowInfo(offset)
	if err != nil {
		return FragmentInfo{}, err
	}

	rowID := blob.FirstRow() + uint64(info.RowInBlob)
	fi, err := r.ResolveRow(rowID, int(info.Start), int(info.Len), offset-int(info.Start))
	if err != nil {
		return FragmentInfo{}, err
	}
	fi.Repeat = info.Repeat
	fi.Increment = info.Increment

	return fi, nil
}

// ResolveRow returns the fragment of rowID that owns offsetInRow, for a row whose
// stored bases start at rowStart in the blob and span rowLen bases.
func (r *Resolver) ResolveRow(rowID uint64, rowStart, rowLen, offsetInRow int) (FragmentInfo, error) {
	if rowID == 0 {
		return FragmentInfo{}, errs.Internal("resolve", "row id underflow at blob offset %d", rowStart+offsetInRow)
	}

	layout, err := r.cur.Layout(rowID)
	if err != nil {
		return FragmentInfo{}, err
	}
	if int(layout.Len()) != rowLen {
		return FragmentInfo{}, errs.Internal("resolve", "row %d layout covers %d bases, page map has %d",
			rowID, layout.Len(), rowLen)
	}

	p, ok := layout.Locate(uint32(offsetInRow)) //nolint: gosec
	if offsetInRow < 0 || !ok {
		return FragmentInfo{}, errs.Internal("resolve", "no fragment of row %d owns offset %d", rowID, offsetInRow)
	}

	fi := FragmentInfo{
		RowID:      rowID,
		FragNum:    p.Number,
		Start:      rowStart + int(p.Start),
		Len:        int(p.Len),
		Biological: p.IsBiological(),
		RowStart:   rowStart,
		Repeat:     1,
		Increment:  uint32(rowLen), //nolint: gosec
	}
	if fi.Biological {
		id := fragment.ID{Run: r.run, Kind: r.kind, RowID: int64(rowID), FragNum: p.Number} //nolint: gosec
		fi.ID = id.String()
	}

	return fi, nil
}
