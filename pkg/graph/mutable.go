package graph

import (
	"fmt"

	"github.com/aleksaelezovic/trigraph/pkg/rdf"
)

// MutableGraph is a Graph that can be modified in place.
//
// Insert adds one occurrence of (s, p, o) and reports whether the graph grew.
// Remove deletes one occurrence and reports whether one was found. Unless
// the graph is also a SetGraph, true from Insert does not mean the triple
// was absent before, and true from Remove does not mean it is gone.
// Terms may be any rdf.Term implementation; backends convert as needed.
type MutableGraph interface {
	Graph
	Insert(s, p, o rdf.Term) (bool, error)
	Remove(s, p, o rdf.Term) (bool, error)
}

// MatchRemover is implemented by graphs that can delete matching triples
// without materialising them first.
type MatchRemover interface {
	RemoveMatching(ms, mp, mo TermMatcher) (int, error)
}

// Retainer is implemented by graphs with a native retain.
type Retainer interface {
	Retain(ms, mp, mo TermMatcher) error
}

// BatchInserter is implemented by graphs that insert many triples at once
// more cheaply than one by one.
type BatchInserter interface {
	InsertBatch(triples []*rdf.Triple) (int, error)
}

// RemoveMatching removes every triple accepted by the three matchers and
// returns how many were removed.
//
// The default collects the matches before removing any of them, so no
// iterator is open while the graph changes; it costs one slice of k
// triples for k matches.
func RemoveMatching(g MutableGraph, ms, mp, mo TermMatcher) (int, error) {
	if r, ok := g.(MatchRemover); ok {
		return r.RemoveMatching(ms, mp, mo)
	}

	it, err := IterMatching(g, ms, mp, mo)
	if err != nil {
		return 0, err
	}
	toRemove, err := Collect(it)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, t := range toRemove {
		ok, err := g.Remove(t.Subject, t.Predicate, t.Object)
		if err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", t, err)
		}
		if ok {
			removed++
		}
	}
	return removed, nil
}

// Retain keeps only the triples accepted by all three matchers.
//
// The default removes, position by position, every triple whose term is
// rejected by that position's matcher; a triple survives only if no pass
// removes it.
func Retain(g MutableGraph, ms, mp, mo TermMatcher) error {
	if r, ok := g.(Retainer); ok {
		return r.Retain(ms, mp, mo)
	}

	passes := [][3]TermMatcher{
		{Not(ms), Any(), Any()},
		{Any(), Not(mp), Any()},
		{Any(), Any(), Not(mo)},
	}
	for i, m := range []TermMatcher{ms, mp, mo} {
		// Not(Any) rejects everything; the pass would be a wasted scan
		if _, ok := m.(anyMatcher); ok {
			continue
		}
		if _, err := RemoveMatching(g, passes[i][0], passes[i][1], passes[i][2]); err != nil {
			return err
		}
	}
	return nil
}

// InsertAll inserts triples and returns how many calls grew the graph.
func InsertAll(g MutableGraph, triples []*rdf.Triple) (int, error) {
	if b, ok := g.(BatchInserter); ok {
		return b.InsertBatch(triples)
	}

	inserted := 0
	for _, t := range triples {
		ok, err := g.Insert(t.Subject, t.Predicate, t.Object)
		if err != nil {
			return inserted, fmt.Errorf("failed to insert %s: %w", t, err)
		}
		if ok {
			inserted++
		}
	}
	return inserted, nil
}
