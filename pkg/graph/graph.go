// Package graph defines the access layer shared by every triple backend.
//
// A backend only has to implement Graph, whose single primitive is a full
// scan. Every other lookup is a package function (IterForS, IterForPO,
// Contains, IterMatching, the hints, RemoveMatching, Retain...) with a
// default written purely in terms of that scan. A backend that can do
// better implements the matching optional interface (SubjectLookup,
// PredicateObjectLookup, ...) and the package function dispatches to it.
//
// Whatever path is taken, the result is the sub-multiset of Iter() selected
// by the query: duplicates are preserved unless the backend is a SetGraph.
//
// Implementations of an optional interface must not call the package
// function of the same name on themselves; use Filter over Iter or a more
// specific lookup instead.
package graph

import (
	"errors"

	"github.com/aleksaelezovic/trigraph/pkg/rdf"
)

// ErrBackendUnavailable classifies storage-layer failures surfaced by a
// backend. The functions of this package pass them through unchanged.
var ErrBackendUnavailable = errors.New("graph backend unavailable")

// Graph is the minimal read contract of a triple backend.
type Graph interface {
	// Iter yields every triple currently in the graph, in unspecified order.
	Iter() (TripleIterator, error)
}

// SubjectLookup is implemented by graphs with an index on subjects.
type SubjectLookup interface {
	IterForS(s rdf.Term) (TripleIterator, error)
}

// PredicateLookup is implemented by graphs with an index on predicates.
type PredicateLookup interface {
	IterForP(p rdf.Term) (TripleIterator, error)
}

// ObjectLookup is implemented by graphs with an index on objects.
type ObjectLookup interface {
	IterForO(o rdf.Term) (TripleIterator, error)
}

type SubjectPredicateLookup interface {
	IterForSP(s, p rdf.Term) (TripleIterator, error)
}

type SubjectObjectLookup interface {
	IterForSO(s, o rdf.Term) (TripleIterator, error)
}

type PredicateObjectLookup interface {
	IterForPO(p, o rdf.Term) (TripleIterator, error)
}

// TripleLookup is implemented by graphs that can look up a fully bound triple.
type TripleLookup interface {
	IterForSPO(s, p, o rdf.Term) (TripleIterator, error)
}

// Container is implemented by graphs with a cheaper membership test than
// a fully bound lookup.
type Container interface {
	Contains(s, p, o rdf.Term) (bool, error)
}

// IterForS yields the triples of g whose subject equals s.
func IterForS(g Graph, s rdf.Term) (TripleIterator, error) {
	if l, ok := g.(SubjectLookup); ok {
		return l.IterForS(s)
	}
	it, err := g.Iter()
	if err != nil {
		return nil, err
	}
	return Filter(it, func(t *rdf.Triple) bool { return rdf.Equal(t.Subject, s) }), nil
}

// IterForP yields the triples of g whose predicate equals p.
func IterForP(g Graph, p rdf.Term) (TripleIterator, error) {
	if l, ok := g.(PredicateLookup); ok {
		return l.IterForP(p)
	}
	it, err := g.Iter()
	if err != nil {
		return nil, err
	}
	return Filter(it, func(t *rdf.Triple) bool { return rdf.Equal(t.Predicate, p) }), nil
}

// IterForO yields the triples of g whose object equals o.
func IterForO(g Graph, o rdf.Term) (TripleIterator, error) {
	if l, ok := g.(ObjectLookup); ok {
		return l.IterForO(o)
	}
	it, err := g.Iter()
	if err != nil {
		return nil, err
	}
	return Filter(it, func(t *rdf.Triple) bool { return rdf.Equal(t.Object, o) }), nil
}

// IterForSP yields the triples of g with subject s and predicate p.
// The default narrows IterForS, so a subject index alone already helps.
func IterForSP(g Graph, s, p rdf.Term) (TripleIterator, error) {
	if l, ok := g.(SubjectPredicateLookup); ok {
		return l.IterForSP(s, p)
	}
	it, err := IterForS(g, s)
	if err != nil {
		return nil, err
	}
	return Filter(it, func(t *rdf.Triple) bool { return rdf.Equal(t.Predicate, p) }), nil
}

// IterForSO yields the triples of g with subject s and object o.
func IterForSO(g Graph, s, o rdf.Term) (TripleIterator, error) {
	if l, ok := g.(SubjectObjectLookup); ok {
		return l.IterForSO(s, o)
	}
	it, err := IterForS(g, s)
	if err != nil {
		return nil, err
	}
	return Filter(it, func(t *rdf.Triple) bool { return rdf.Equal(t.Object, o) }), nil
}

// IterForPO yields the triples of g with predicate p and object o.
func IterForPO(g Graph, p, o rdf.Term) (TripleIterator, error) {
	if l, ok := g.(PredicateObjectLookup); ok {
		return l.IterForPO(p, o)
	}
	it, err := IterForP(g, p)
	if err != nil {
		return nil, err
	}
	return Filter(it, func(t *rdf.Triple) bool { return rdf.Equal(t.Object, o) }), nil
}

// IterForSPO yields every occurrence of the triple (s, p, o) in g.
func IterForSPO(g Graph, s, p, o rdf.Term) (TripleIterator, error) {
	if l, ok := g.(TripleLookup); ok {
		return l.IterForSPO(s, p, o)
	}
	it, err := IterForSP(g, s, p)
	if err != nil {
		return nil, err
	}
	return Filter(it, func(t *rdf.Triple) bool { return rdf.Equal(t.Object, o) }), nil
}

// Contains reports whether g holds at least one occurrence of (s, p, o).
// The default stops at the first match.
func Contains(g Graph, s, p, o rdf.Term) (bool, error) {
	if c, ok := g.(Container); ok {
		return c.Contains(s, p, o)
	}
	it, err := IterForSPO(g, s, p, o)
	if err != nil {
		return false, err
	}
	t, err := First(it)
	if err != nil {
		return false, err
	}
	return t != nil, nil
}

// Len counts the triples of g, duplicates included.
func Len(g Graph) (int, error) {
	it, err := g.Iter()
	if err != nil {
		return 0, err
	}
	return Count(it)
}
