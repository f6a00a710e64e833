package search

// Match is one fragment containing the query.
type Match struct {
	Accession  string
	FragmentID string
	RowID      uint64
	FragNum    int
	// Position is the offset of the occurrence within the fragment.
	Position int
	// Bases holds the fragment's bases. It is owned by the Match.
	Bases []byte
}
