// Package inmem provides in-memory graph backends.
//
// Both backends are copy-on-write: an iterator sees the graph as it was when
// the iterator was created, and mutations never disturb open iterators.
package inmem

import (
	"github.com/aleksaelezovic/trigraph/pkg/graph"
	"github.com/aleksaelezovic/trigraph/pkg/rdf"
)

var (
	_ graph.MutableGraph   = (*SliceGraph)(nil)
	_ graph.Hinter         = (*SliceGraph)(nil)
	_ graph.IterationModer = (*SliceGraph)(nil)
)

// SliceGraph keeps triples in insertion order and allows duplicates. It only
// implements the full scan; every lookup uses the package defaults.
type SliceGraph struct {
	triples []*rdf.Triple
}

// NewSliceGraph creates an empty graph
func NewSliceGraph() *SliceGraph {
	return &SliceGraph{}
}

// Iter yields every triple
func (g *SliceGraph) Iter() (graph.TripleIterator, error) {
	// elements below len are never rewritten, so the header is a snapshot
	return graph.SliceIterator(g.triples[:len(g.triples):len(g.triples)]), nil
}

// Insert appends one occurrence of the triple; it always grows the graph
func (g *SliceGraph) Insert(s, p, o rdf.Term) (bool, error) {
	g.triples = append(g.triples, rdf.NewTriple(rdf.Copy(s), rdf.Copy(p), rdf.Copy(o)))
	return true, nil
}

// Remove deletes the first occurrence of the triple
func (g *SliceGraph) Remove(s, p, o rdf.Term) (bool, error) {
	target := rdf.NewTriple(s, p, o)
	for i, t := range g.triples {
		if !t.Equals(target) {
			continue
		}
		next := make([]*rdf.Triple, 0, len(g.triples)-1)
		next = append(next, g.triples[:i]...)
		next = append(next, g.triples[i+1:]...)
		g.triples = next
		return true, nil
	}
	return false, nil
}

// Hint is exact
func (g *SliceGraph) Hint() graph.Hint {
	return graph.ExactHint(len(g.triples))
}

func (g *SliceGraph) IterationMode() graph.IterationMode {
	return graph.IterationSnapshot
}
