// Package repository resolves accessions to open archive collections.
//
// Three resolvers are provided:
//
//   - Local looks for <root>/<accession><extension> under a list of directory roots,
//     and accepts a path to an existing archive as-is.
//   - S3 opens <prefix><accession><extension> in a bucket through ranged GET requests,
//     so only the header, the blob index and the fetched blobs are transferred.
//   - Chain tries Local first and falls back to a remote repository when remote
//     access is enabled.
//
// Every resolver satisfies search.Opener. Errors follow the errs taxonomy: malformed
// accession text is ErrInvalidAccession, an unknown accession is ErrNotFound, bytes
// that are not an archive are ErrUnsupported, and a local miss with remote access
// switched off is ErrRemoteAccessDisabled.
package repository
