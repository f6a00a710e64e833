// Package driver runs one query over many accessions.
//
// Accessions are searched in parallel, up to the configured thread count. Within an
// accession a single dispatcher pulls buffers from the match iterator while a pool of
// workers scans them, so blob fetching overlaps with scanning.
//
// A failing accession never aborts the others: its error is recorded in the Report
// and logged. Only a failing sink, an invalid request or a cancelled context stop
// the whole run.
//
// Matches reach the sink as soon as they are found. With Request.Ordered set, the
// matches of each accession are emitted in buffer order instead, which makes the
// output identical to a single-threaded scan.
package driver
