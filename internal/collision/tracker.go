package collision

import (
	"github.com/arloliu/fragscan/errs"
	"github.com/arloliu/fragscan/internal/hash"
)

// Tracker de-duplicates accession names by their xxHash64. Names whose hashes
// collide are kept apart through an exact-match fallback.
type Tracker struct {
	names        map[uint64]string   // hash → first name seen with it
	overflow     map[string]struct{} // names sharing a hash with an earlier name
	nameList     []string            // first-seen order
	hasCollision bool
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		names:    make(map[uint64]string),
		nameList: make([]string, 0),
	}
}

// Track records name and reports whether it was new.
// Returns ErrInvalidAccession for an empty name.
func (t *Tracker) Track(name string) (bool, error) {
	if name == "" {
		return false, errs.ErrInvalidAccession
	}

	return t.track(name, hash.Name(name)), nil
}

func (t *Tracker) track(name string, h uint64) bool {
	existing, exists := t.names[h]
	switch {
	case !exists:
		t.names[h] = name
	case existing == name:
		return false
	default:
		if _, dup := t.overflow[name]; dup {
			return false
		}
		if t.overflow == nil {
			t.overflow = make(map[string]struct{})
		}
		t.overflow[name] = struct{}{}
		t.hasCollision = true
	}

	t.nameList = append(t.nameList, name)

	return true
}

// HasCollision reports whether two distinct names shared a hash.
func (t *Tracker) HasCollision() bool {
	return t.hasCollision
}

// Names returns the distinct names in first-seen order.
func (t *Tracker) Names() []string {
	return t.nameList
}

// Count returns the number of distinct names.
func (t *Tracker) Count() int {
	return len(t.nameList)
}

// Reset clears the tracker, keeping its allocations.
func (t *Tracker) Reset() {
	clear(t.names)
	t.overflow = nil
	t.nameList = t.nameList[:0]
	t.hasCollision = false
}
