// Package search finds the fragments of an archive whose bases contain a query.
//
// The pieces fit together as:
//
//	MatchIterator --NextBuffer--> Buffer --NextMatch--> Block.FirstMatch
//	                                  \--> Resolver (offset -> fragment)
//
// A MatchIterator walks one accession unit by unit. The blob-driven iterator yields one
// Buffer per stored blob and reports read fragments found anywhere in the blob's bases;
// the fragment-driven iterator yields one Buffer per biological fragment and can be
// limited to unaligned fragments. Buffers from one iterator may be scanned from
// different goroutines: blob data is immutable, each Buffer has its own Block, and
// every resolver call goes through the iterator's lock because it shares the
// iterator's cursor.
//
// Exhaustion is never an error. NextBuffer and NextMatch report it with ok == false,
// and keep doing so on further calls.
//
//	it, err := search.NewMatchIterator(coll, "ATTAGC")
//	for {
//	    buf, ok, err := it.NextBuffer()
//	    if err != nil || !ok {
//	        break
//	    }
//	    for {
//	        m, ok, err := buf.NextMatch()
//	        if err != nil || !ok {
//	            break
//	        }
//	        fmt.Println(m.FragmentID)
//	    }
//	    buf.Close()
//	}
package search
