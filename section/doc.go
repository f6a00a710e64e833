// Package section defines the fixed-size binary sections of a fragscan archive.
//
// An archive file is laid out as:
//
//	+-----------------------------+  offset 0
//	| ArchiveHeader (32 bytes)    |
//	+-----------------------------+  offset 32
//	| blob body 1                 |
//	|   BlobHeader (32 bytes)     |
//	|   PageRun x RunCount (8 B)  |
//	|   compressed bases          |
//	|   LayoutHeader (16 bytes)   |
//	|   compressed layouts        |
//	+-----------------------------+
//	| blob body 2 ...             |
//	+-----------------------------+  ArchiveHeader.IndexOffset
//	| BlobIndexEntry x BlobCount  |
//	+-----------------------------+  IndexOffset + BlobCount*32
//	| CBOR metadata               |
//	+-----------------------------+
//
// The header flag carries the byte order; every other section is decoded with the
// engine selected by it. Fields are documented with their byte offsets.
package section
