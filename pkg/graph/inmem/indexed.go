package inmem

import (
	"github.com/zeebo/xxh3"

	"github.com/aleksaelezovic/trigraph/pkg/graph"
	"github.com/aleksaelezovic/trigraph/pkg/rdf"
)

var (
	_ graph.MutableGraph           = (*IndexedGraph)(nil)
	_ graph.SetGraph               = (*IndexedGraph)(nil)
	_ graph.SubjectLookup          = (*IndexedGraph)(nil)
	_ graph.PredicateLookup        = (*IndexedGraph)(nil)
	_ graph.ObjectLookup           = (*IndexedGraph)(nil)
	_ graph.SubjectPredicateLookup = (*IndexedGraph)(nil)
	_ graph.SubjectObjectLookup    = (*IndexedGraph)(nil)
	_ graph.PredicateObjectLookup  = (*IndexedGraph)(nil)
	_ graph.TripleLookup           = (*IndexedGraph)(nil)
	_ graph.Container              = (*IndexedGraph)(nil)
	_ graph.SubjectHinter          = (*IndexedGraph)(nil)
	_ graph.PredicateObjectHinter  = (*IndexedGraph)(nil)
)

// termHash keys the index buckets. Different terms may share a bucket, so
// bucket contents are always filtered by equality.
func termHash(t rdf.Term) uint64 {
	return xxh3.HashString(rdf.CanonicalTerm(t))
}

// index maps a term hash to the triples holding that term in one position.
// Buckets are copy-on-write.
type index map[uint64][]*rdf.Triple

func (ix index) add(h uint64, t *rdf.Triple) {
	ix[h] = append(ix[h], t)
}

func (ix index) remove(h uint64, t *rdf.Triple) {
	bucket := ix[h]
	for i, cur := range bucket {
		if cur != t {
			continue
		}
		if len(bucket) == 1 {
			delete(ix, h)
			return
		}
		next := make([]*rdf.Triple, 0, len(bucket)-1)
		next = append(next, bucket[:i]...)
		next = append(next, bucket[i+1:]...)
		ix[h] = next
		return
	}
}

func (ix index) bucket(t rdf.Term) []*rdf.Triple {
	b := ix[termHash(t)]
	return b[:len(b):len(b)]
}

// IndexedGraph is a set of triples indexed by subject, predicate and object.
type IndexedGraph struct {
	all         []*rdf.Triple
	bySubject   index
	byPredicate index
	byObject    index
}

// NewIndexedGraph creates an empty graph
func NewIndexedGraph() *IndexedGraph {
	return &IndexedGraph{
		bySubject:   make(index),
		byPredicate: make(index),
		byObject:    make(index),
	}
}

// UniqueTriples marks IndexedGraph as a set graph.
func (g *IndexedGraph) UniqueTriples() {}

func (g *IndexedGraph) IterationMode() graph.IterationMode {
	return graph.IterationSnapshot
}

func (g *IndexedGraph) Iter() (graph.TripleIterator, error) {
	return graph.SliceIterator(g.all[:len(g.all):len(g.all)]), nil
}

func (g *IndexedGraph) IterForS(s rdf.Term) (graph.TripleIterator, error) {
	return scan(g.bySubject.bucket(s), s, nil, nil), nil
}

func (g *IndexedGraph) IterForP(p rdf.Term) (graph.TripleIterator, error) {
	return scan(g.byPredicate.bucket(p), nil, p, nil), nil
}

func (g *IndexedGraph) IterForO(o rdf.Term) (graph.TripleIterator, error) {
	return scan(g.byObject.bucket(o), nil, nil, o), nil
}

func (g *IndexedGraph) IterForSP(s, p rdf.Term) (graph.TripleIterator, error) {
	return scan(smallest(g.bySubject.bucket(s), g.byPredicate.bucket(p)), s, p, nil), nil
}

func (g *IndexedGraph) IterForSO(s, o rdf.Term) (graph.TripleIterator, error) {
	return scan(smallest(g.bySubject.bucket(s), g.byObject.bucket(o)), s, nil, o), nil
}

func (g *IndexedGraph) IterForPO(p, o rdf.Term) (graph.TripleIterator, error) {
	return scan(smallest(g.byPredicate.bucket(p), g.byObject.bucket(o)), nil, p, o), nil
}

func (g *IndexedGraph) IterForSPO(s, p, o rdf.Term) (graph.TripleIterator, error) {
	if t := g.find(s, p, o); t != nil {
		return graph.SliceIterator([]*rdf.Triple{t}), nil
	}
	return graph.Empty(), nil
}

func (g *IndexedGraph) Contains(s, p, o rdf.Term) (bool, error) {
	return g.find(s, p, o) != nil, nil
}

func (g *IndexedGraph) find(s, p, o rdf.Term) *rdf.Triple {
	target := rdf.NewTriple(s, p, o)
	for _, t := range smallest(g.bySubject.bucket(s), g.byPredicate.bucket(p), g.byObject.bucket(o)) {
		if t.Equals(target) {
			return t
		}
	}
	return nil
}

// Insert adds the triple unless it is already present
func (g *IndexedGraph) Insert(s, p, o rdf.Term) (bool, error) {
	if g.find(s, p, o) != nil {
		return false, nil
	}

	t := rdf.NewTriple(rdf.Copy(s), rdf.Copy(p), rdf.Copy(o))
	g.all = append(g.all, t)
	g.bySubject.add(termHash(t.Subject), t)
	g.byPredicate.add(termHash(t.Predicate), t)
	g.byObject.add(termHash(t.Object), t)
	return true, nil
}

// Remove deletes the triple if present
func (g *IndexedGraph) Remove(s, p, o rdf.Term) (bool, error) {
	t := g.find(s, p, o)
	if t == nil {
		return false, nil
	}

	for i, cur := range g.all {
		if cur == t {
			next := make([]*rdf.Triple, 0, len(g.all)-1)
			next = append(next, g.all[:i]...)
			next = append(next, g.all[i+1:]...)
			g.all = next
			break
		}
	}
	g.bySubject.remove(termHash(t.Subject), t)
	g.byPredicate.remove(termHash(t.Predicate), t)
	g.byObject.remove(termHash(t.Object), t)
	return true, nil
}

// Hint is exact
func (g *IndexedGraph) Hint() graph.Hint {
	return graph.ExactHint(len(g.all))
}

// HintForS is bounded by the subject bucket, which may hold hash neighbours.
func (g *IndexedGraph) HintForS(s rdf.Term) graph.Hint {
	return graph.AtMost(len(g.bySubject.bucket(s)))
}

func (g *IndexedGraph) HintForP(p rdf.Term) graph.Hint {
	return graph.AtMost(len(g.byPredicate.bucket(p)))
}

func (g *IndexedGraph) HintForO(o rdf.Term) graph.Hint {
	return graph.AtMost(len(g.byObject.bucket(o)))
}

func (g *IndexedGraph) HintForPO(p, o rdf.Term) graph.Hint {
	return graph.AtMost(len(smallest(g.byPredicate.bucket(p), g.byObject.bucket(o))))
}

// smallest returns the shortest bucket.
func smallest(buckets ...[]*rdf.Triple) []*rdf.Triple {
	best := buckets[0]
	for _, b := range buckets[1:] {
		if len(b) < len(best) {
			best = b
		}
	}
	return best
}

// scan filters a bucket by the bound positions; nil positions are free.
func scan(bucket []*rdf.Triple, s, p, o rdf.Term) graph.TripleIterator {
	return graph.Filter(graph.SliceIterator(bucket), func(t *rdf.Triple) bool {
		return (s == nil || rdf.Equal(t.Subject, s)) &&
			(p == nil || rdf.Equal(t.Predicate, p)) &&
			(o == nil || rdf.Equal(t.Object, o))
	})
}
