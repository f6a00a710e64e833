package archive

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/arloliu/fragscan/errs"
	"github.com/arloliu/fragscan/fragment"
)

const maxFASTALine = 64 * 1024 * 1024

// ImportFASTA adds the records of a FASTA stream to w and returns the number of rows added.
//
// Sequence lines are concatenated and upper-cased. With chunkSize zero each record
// becomes one row holding a single biological fragment; a positive chunkSize splits
// records into rows of at most chunkSize bases, the layout used by reference archives.
func ImportFASTA(r io.Reader, w *Writer, chunkSize int) (uint64, error) {
	if chunkSize < 0 {
		return 0, fmt.Errorf("%w: negative chunk size %d", errs.ErrInvalidConfig, chunkSize)
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFASTALine)

	start := w.RowCount()
	var seq []byte
	inRecord := false

	flush := func() error {
		if !inRecord {
			return nil
		}
		if chunkSize == 0 || len(seq) <= chunkSize {
			return w.Add(Row{Bases: seq})
		}
		for off := 0; off < len(seq); off += chunkSize {
			end := min(off+chunkSize, len(seq))
			if err := w.Add(Row{Bases: seq[off:end]}); err != nil {
				return err
			}
		}

		return nil
	}

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		switch {
		case len(line) == 0, line[0] == ';':
			continue
		case line[0] == '>':
			if err := flush(); err != nil {
				return w.RowCount() - start, err
			}
			seq = seq[:0]
			inRecord = true
		default:
			if !inRecord {
				return w.RowCount() - start, fmt.Errorf("%w: sequence data before the first FASTA header", errs.ErrUnsupported)
			}
			seq = append(seq, bytes.ToUpper(line)...)
		}
	}
	if err := scanner.Err(); err != nil {
		return w.RowCount() - start, errs.Storage("read fasta", err)
	}
	if err := flush(); err != nil {
		return w.RowCount() - start, err
	}

	return w.RowCount() - start, nil
}

// ParquetRead is the row type of Parquet read tables accepted by ImportParquet and
// produced by ExportParquet. Empty FragmentLengths means one unaligned biological
// fragment; Technical and Aligned are either empty or parallel to FragmentLengths.
type ParquetRead struct {
	Name            string  `parquet:"name"`
	Bases           []byte  `parquet:"bases"`
	FragmentLengths []int32 `parquet:"fragment_lengths"`
	Technical       []bool  `parquet:"technical"`
	Aligned         []bool  `parquet:"aligned"`
}

func (p ParquetRead) fragments() ([]fragment.Fragment, error) {
	n := len(p.FragmentLengths)
	if n == 0 {
		return nil, nil
	}
	if (len(p.Technical) != 0 && len(p.Technical) != n) || (len(p.Aligned) != 0 && len(p.Aligned) != n) {
		return nil, fmt.Errorf("%w: read %q has %d fragment lengths, %d technical and %d aligned flags",
			errs.ErrInvalidLayout, p.Name, n, len(p.Technical), len(p.Aligned))
	}

	frags := make([]fragment.Fragment, n)
	for i, length := range p.FragmentLengths {
		if length <= 0 {
			return nil, fmt.Errorf("%w: read %q fragment %d has length %d", errs.ErrInvalidLayout, p.Name, i, length)
		}
		frags[i].Len = uint32(length)
		if len(p.Technical) == n {
			frags[i].Technical = p.Technical[i]
		}
		if len(p.Aligned) == n {
			frags[i].Aligned = p.Aligned[i]
		}
	}

	return frags, nil
}

// ImportParquet adds every row of a Parquet read table to w and returns the number of
// rows added.
func ImportParquet(r io.ReaderAt, size int64, w *Writer) (uint64, error) {
	file, err := parquet.OpenFile(r, size)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", errs.ErrUnsupported, err)
	}

	reader := parquet.NewGenericReader[ParquetRead](file)
	defer reader.Close()

	start := w.RowCount()
	rows := make([]ParquetRead, 128)
	for {
		n, readErr := reader.Read(rows)
		for _, rec := range rows[:n] {
			frags, err := rec.fragments()
			if err != nil {
				return w.RowCount() - start, err
			}
			if err := w.Add(Row{Bases: rec.Bases, Fragments: frags}); err != nil {
				return w.RowCount() - start, err
			}
		}

		if errors.Is(readErr, io.EOF) {
			return w.RowCount() - start, nil
		}
		if readErr != nil {
			return w.RowCount() - start, errs.Storage("read parquet", readErr)
		}
	}
}

// ExportParquet writes every read of c as a Parquet read table. Names are the
// read identifiers "<run>.R.<row>".
func ExportParquet(c *Collection, out io.Writer) (uint64, error) {
	it, err := NewReadIterator(c)
	if err != nil {
		return 0, err
	}
	defer it.Close()

	writer := parquet.NewGenericWriter[ParquetRead](out)
	batch := make([]ParquetRead, 0, 128)
	var count uint64

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if _, err := writer.Write(batch); err != nil {
			return errs.Storage("write parquet", err)
		}
		batch = batch[:0]

		return nil
	}

	for {
		read, ok, err := it.Next()
		if err != nil {
			return count, err
		}
		if !ok {
			break
		}

		name := fragment.ID{Run: c.Run(), Kind: fragment.KindRead, RowID: int64(read.RowID)} //nolint: gosec
		rec := ParquetRead{
			Name:            name.String(),
			Bases:           append([]byte(nil), read.Bases...),
			FragmentLengths: make([]int32, len(read.Layout)),
			Technical:       make([]bool, len(read.Layout)),
			Aligned:         make([]bool, len(read.Layout)),
		}
		for i, p := range read.Layout {
			rec.FragmentLengths[i] = int32(p.Len) //nolint: gosec
			rec.Technical[i] = p.Technical
			rec.Aligned[i] = p.Aligned
		}

		batch = append(batch, rec)
		count++
		if len(batch) == cap(batch) {
			if err := flush(); err != nil {
				return count, err
			}
		}
	}

	if err := flush(); err != nil {
		return count, err
	}
	if err := writer.Close(); err != nil {
		return count, errs.Storage("write parquet", err)
	}

	return count, nil
}
