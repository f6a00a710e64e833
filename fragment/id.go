// Package fragment builds and parses fragment identifiers.
//
// A fragment identifier has the form "<run>.<TAG><fragNum?>.<rowId>", for example
// "SRR000001.FR0.1". The tag encodes the object kind; only the fragment kinds carry a
// fragment number. Run names may themselves contain dots, so parsing splits on the
// last two dots.
package fragment

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arloliu/fragscan/errs"
)

// ObjectKind is the kind of object a fragment identifier names.
type ObjectKind uint8

const (
	KindRead               ObjectKind = iota + 1 // KindRead is a whole read, tag "R".
	KindPrimaryAlignment                         // KindPrimaryAlignment is a primary alignment, tag "PA".
	KindSecondaryAlignment                       // KindSecondaryAlignment is a secondary alignment, tag "SA".
	KindReadFragment                             // KindReadFragment is one biological fragment of a read, tag "FR<n>".
	KindAlignmentFragment                        // KindAlignmentFragment is one fragment of an alignment, tag "FA<n>".
)

// Tag returns the identifier tag without the fragment number.
func (k ObjectKind) Tag() string {
	switch k {
	case KindRead:
		return "R"
	case KindPrimaryAlignment:
		return "PA"
	case KindSecondaryAlignment:
		return "SA"
	case KindReadFragment:
		return "FR"
	case KindAlignmentFragment:
		return "FA"
	default:
		return ""
	}
}

// HasFragNum reports whether the kind's tag carries a fragment number.
func (k ObjectKind) HasFragNum() bool {
	return k == KindReadFragment || k == KindAlignmentFragment
}

func (k ObjectKind) String() string {
	switch k {
	case KindRead:
		return "Read"
	case KindPrimaryAlignment:
		return "PrimaryAlignment"
	case KindSecondaryAlignment:
		return "SecondaryAlignment"
	case KindReadFragment:
		return "ReadFragment"
	case KindAlignmentFragment:
		return "AlignmentFragment"
	default:
		return "Unknown"
	}
}

// ID is the parsed form of a fragment identifier.
type ID struct {
	Run     string
	Kind    ObjectKind
	RowID   int64
	FragNum int // always 0 for kinds without a fragment number
}

// New validates the parts and returns the identifier.
//
// Parameters:
//   - run: run name, must be non-empty and free of whitespace
//   - kind: object kind
//   - rowID: 1-based row id
//   - fragNum: fragment number, must be non-negative; ignored for non-fragment kinds
//
// Returns ErrInvalidFragmentID wrapped with the offending part on failure.
func New(run string, kind ObjectKind, rowID int64, fragNum int) (ID, error) {
	if run == "" || strings.ContainsAny(run, " \t\r\n") {
		return ID{}, fmt.Errorf("%w: bad run name %q", errs.ErrInvalidFragmentID, run)
	}
	if kind.Tag() == "" {
		return ID{}, fmt.Errorf("%w: unknown object kind %d", errs.ErrInvalidFragmentID, kind)
	}
	if rowID < 1 {
		return ID{}, fmt.Errorf("%w: row id %d", errs.ErrInvalidFragmentID, rowID)
	}
	if !kind.HasFragNum() {
		fragNum = 0
	} else if fragNum < 0 {
		return ID{}, fmt.Errorf("%w: negative fragment number %d", errs.ErrInvalidFragmentID, fragNum)
	}

	return ID{Run: run, Kind: kind, RowID: rowID, FragNum: fragNum}, nil
}

// Build returns the string form of the identifier for the given parts.
func Build(run string, kind ObjectKind, rowID int64, fragNum int) (string, error) {
	id, err := New(run, kind, rowID, fragNum)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

// String returns the canonical identifier.
func (id ID) String() string {
	return string(id.AppendTo(make([]byte, 0, len(id.Run)+24)))
}

// AppendTo appends the canonical identifier to dst.
func (id ID) AppendTo(dst []byte) []byte {
	dst = append(dst, id.Run...)
	dst = append(dst, '.')
	dst = append(dst, id.Kind.Tag()...)
	if id.Kind.HasFragNum() {
		dst = strconv.AppendInt(dst, int64(id.FragNum), 10)
	}
	dst = append(dst, '.')

	return strconv.AppendInt(dst, id.RowID, 10)
}

// Parse parses a canonical identifier. Parse(id.String()) returns id for every valid id.
func Parse(s string) (ID, error) {
	last := strings.LastIndexByte(s, '.')
	if last <= 0 {
		return ID{}, fmt.Errorf("%w: %q", errs.ErrInvalidFragmentID, s)
	}
	mid := strings.LastIndexByte(s[:last], '.')
	if mid <= 0 {
		return ID{}, fmt.Errorf("%w: %q", errs.ErrInvalidFragmentID, s)
	}

	rowID, err := parseDigits(s[last+1:])
	if err != nil {
		return ID{}, fmt.Errorf("%w: row id of %q", errs.ErrInvalidFragmentID, s)
	}

	kind, fragNum, err := parseTag(s[mid+1 : last])
	if err != nil {
		return ID{}, fmt.Errorf("%w: tag of %q", errs.ErrInvalidFragmentID, s)
	}

	return New(s[:mid], kind, rowID, int(fragNum))
}

func parseTag(tag string) (ObjectKind, int64, error) {
	switch tag {
	case "R":
		return KindRead, 0, nil
	case "PA":
		return KindPrimaryAlignment, 0, nil
	case "SA":
		return KindSecondaryAlignment, 0, nil
	}

	if len(tag) < 3 {
		return 0, 0, errs.ErrInvalidFragmentID
	}

	var kind ObjectKind
	switch tag[:2] {
	case "FR":
		kind = KindReadFragment
	case "FA":
		kind = KindAlignmentFragment
	default:
		return 0, 0, errs.ErrInvalidFragmentID
	}

	n, err := parseDigits(tag[2:])
	if err != nil {
		return 0, 0, err
	}

	return kind, n, nil
}

// parseDigits accepts only plain decimal digits, so "+1" or "-1" never parse.
func parseDigits(s string) (int64, error) {
	if s == "" {
		return 0, errs.ErrInvalidFragmentID
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, errs.ErrInvalidFragmentID
		}
	}

	return strconv.ParseInt(s, 10, 64)
}
