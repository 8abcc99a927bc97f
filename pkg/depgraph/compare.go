package depgraph

// PositionDiff pairs a name's index in each of two deduplicated orderings.
type PositionDiff struct {
	Name           string `json:"name"`
	OurIndex       int    `json:"our_index"`
	ReferenceIndex int    `json:"reference_index"`
}

// Comparison is the result of [Compare].
type Comparison struct {
	// OnlyOurs lists names missing from the reference, in our order.
	OnlyOurs []string `json:"only_ours"`
	// OnlyReference lists names missing from ours, in reference order.
	OnlyReference []string `json:"only_reference"`
	// PositionDiffs has one entry per name present in both, in our order.
	PositionDiffs []PositionDiff `json:"position_diffs"`
}

// SameSet reports whether both orderings contain the same names.
func (c Comparison) SameSet() bool {
	return len(c.OnlyOurs) == 0 && len(c.OnlyReference) == 0
}

// Moved returns the position diffs whose indices differ.
func (c Comparison) Moved() []PositionDiff {
	var moved []PositionDiff
	for _, d := range c.PositionDiffs {
		if d.OurIndex != d.ReferenceIndex {
			moved = append(moved, d)
		}
	}
	return moved
}

// Compare diffs our ordering against a reference ordering. Both inputs are
// deduplicated first, keeping first occurrences, and indices refer to the
// deduplicated sequences. Names are compared by exact string equality.
func Compare(ours, reference []string) Comparison {
	ours = dedupe(ours)
	reference = dedupe(reference)

	refIndex := make(map[string]int, len(reference))
	for i, n := range reference {
		refIndex[n] = i
	}
	ourIndex := make(map[string]int, len(ours))
	for i, n := range ours {
		ourIndex[n] = i
	}

	var c Comparison
	for i, n := range ours {
		if j, ok := refIndex[n]; ok {
			c.PositionDiffs = append(c.PositionDiffs, PositionDiff{Name: n, OurIndex: i, ReferenceIndex: j})
		} else {
			c.OnlyOurs = append(c.OnlyOurs, n)
		}
	}
	for _, n := range reference {
		if _, ok := ourIndex[n]; !ok {
			c.OnlyReference = append(c.OnlyReference, n)
		}
	}
	return c
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
