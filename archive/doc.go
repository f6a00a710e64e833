// Package archive implements the fragscan archive: a column store of sequencing reads
// (or reference chunks) split into immutable, independently compressed blobs.
//
// # Writing
//
//	w, err := archive.NewWriter(file,
//	    archive.WithRunName("SRR000001"),
//	    archive.WithCompression(format.CompressionZstd),
//	    archive.WithRowsPerBlob(4096),
//	)
//	for _, read := range reads {
//	    err = w.Add(archive.Row{Bases: read.Bases, Fragments: read.Fragments})
//	}
//	err = w.Finish()
//
// Rows are numbered from 1 in insertion order. Consecutive identical rows collapse into
// one page run whose bases are stored once.
//
// # Reading
//
//	coll, err := archive.OpenFile(path)
//	defer coll.Close()
//
//	cur, err := coll.OpenCursor(archive.ColumnRead)
//	var blob *archive.Blob
//	for {
//	    next, ok, err := cur.NextBlob(blob)
//	    blob.Release()
//	    if err != nil || !ok {
//	        break
//	    }
//	    blob = next
//	    ...
//	}
//
// A Collection is safe for concurrent use. A Cursor caches decoded fragment layouts and
// must be used by one goroutine at a time. Blobs are immutable once fetched and can be
// scanned from any goroutine; each Blob has a single owner that calls Release.
package archive
