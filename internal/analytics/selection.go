package analytics

// MaxComparison is the most districts that can be compared side by side.
const MaxComparison = 3

// MinComparison is the fewest districts a comparison needs.
const MinComparison = 2

// Selection tracks the districts picked for comparison, in the order they
// were picked. The zero value is an empty selection ready to use.
// It is owned by a single view and is not safe for concurrent use.
type Selection struct {
	ids []int
}

// NewSelection builds a selection by toggling ids in order, so duplicates
// cancel out and anything past the capacity is dropped.
func NewSelection(ids ...int) *Selection {
	s := &Selection{}
	for _, id := range ids {
		s.Toggle(id)
	}
	return s
}

// Toggle removes id when present, appends it when there is room, and
// otherwise does nothing. It reports whether the selection changed.
func (s *Selection) Toggle(id int) bool {
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return true
		}
	}
	if len(s.ids) >= MaxComparison {
		return false
	}
	s.ids = append(s.ids, id)
	return true
}

// Contains reports whether id is selected.
func (s *Selection) Contains(id int) bool {
	for _, v := range s.ids {
		if v == id {
			return true
		}
	}
	return false
}

// Full reports whether no further id can be added.
func (s *Selection) Full() bool {
	return len(s.ids) >= MaxComparison
}

// CanCompare reports whether enough districts are selected.
func (s *Selection) CanCompare() bool {
	return len(s.ids) >= MinComparison
}

// Len returns the number of selected ids.
func (s *Selection) Len() int {
	return len(s.ids)
}

// IDs returns a copy of the selected ids in insertion order.
func (s *Selection) IDs() []int {
	out := make([]int, len(s.ids))
	copy(out, s.ids)
	return out
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.ids = s.ids[:0]
}

// SelectionState is the coarse state of a selection.
type SelectionState int

const (
	SelectionEmpty SelectionState = iota
	SelectionPartial
	SelectionReady
)

// State returns empty, partial (one id) or ready (two or three ids).
func (s *Selection) State() SelectionState {
	switch {
	case len(s.ids) == 0:
		return SelectionEmpty
	case len(s.ids) < MinComparison:
		return SelectionPartial
	default:
		return SelectionReady
	}
}
