// Package capabilities models the set of company setting codes that are switched on
// for a session. The set is resolved once and passed explicitly to whatever needs it.
package capabilities

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// Well-known setting codes.
const (
	// LookupFields offers the LookupField type.
	LookupFields = "LookupFields"
	// MultiSelectLists offers the multiSelect drop-down subtype.
	MultiSelectLists = "MultiSelectLists"
	// UniversalValueSets offers UniversalMetadata as a drop-down source.
	UniversalValueSets = "UniversalValueSets"
)

// Set is an immutable set of enabled setting codes.
type Set struct {
	codes mapset.Set[string]
}

// New builds a Set from the given codes. Empty codes are ignored.
func New(codes ...string) Set {
	s := mapset.NewThreadUnsafeSet[string]()
	for _, c := range codes {
		if c != "" {
			s.Add(c)
		}
	}
	return Set{codes: s}
}

// All is a Set that reports every code as enabled.
func All() Set {
	return Set{}
}

// Enabled reports whether code is switched on. An empty code is always enabled.
func (s Set) Enabled(code string) bool {
	if code == "" || s.codes == nil {
		return true
	}
	return s.codes.Contains(code)
}

// Codes returns the enabled codes sorted.
func (s Set) Codes() []string {
	if s.codes == nil {
		return nil
	}
	out := s.codes.ToSlice()
	sort.Strings(out)
	return out
}

// Subset reports whether every element of want appears in have, and returns the
// missing elements in their original order.
func Subset(want, have []string) (bool, []string) {
	haveSet := mapset.NewThreadUnsafeSet(have...)
	var missing []string
	for _, w := range want {
		if !haveSet.Contains(w) {
			missing = append(missing, w)
		}
	}
	return len(missing) == 0, missing
}

// HasDuplicates reports whether values contains the same entry twice.
func HasDuplicates(values []string) bool {
	return mapset.NewThreadUnsafeSet(values...).Cardinality() != len(values)
}
