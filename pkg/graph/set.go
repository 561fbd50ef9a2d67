package graph

// SetGraph is implemented by graphs that never hold the same triple twice.
// It adds no behaviour: a backend asserting it must deduplicate on its own,
// and in exchange callers may read Insert and Remove results as "membership
// changed" and assume Iter yields each triple at most once.
type SetGraph interface {
	Graph
	UniqueTriples()
}

// IsSet reports whether g asserts set semantics.
func IsSet(g Graph) bool {
	_, ok := g.(SetGraph)
	return ok
}

// IterationMode documents what an open iterator sees when its graph is
// modified before the iterator is exhausted.
type IterationMode int

const (
	// IterationUndefined: the graph must not be modified while an iterator
	// is open.
	IterationUndefined IterationMode = iota
	// IterationSnapshot: an iterator reflects the graph as it was when the
	// iterator was created; later changes are invisible to it.
	IterationSnapshot
)

func (m IterationMode) String() string {
	switch m {
	case IterationSnapshot:
		return "snapshot"
	default:
		return "undefined"
	}
}

// IterationModer is implemented by graphs that document their iteration mode.
type IterationModer interface {
	IterationMode() IterationMode
}

// ModeOf returns the iteration mode of g, IterationUndefined if g does not say.
func ModeOf(g Graph) IterationMode {
	if m, ok := g.(IterationModer); ok {
		return m.IterationMode()
	}
	return IterationUndefined
}
