package graph

import (
	"github.com/aleksaelezovic/trigraph/pkg/rdf"
)

// PatternShape records which positions of a triple pattern are bound to a
// constant term.
type PatternShape uint8

const (
	BoundS PatternShape = 1 << iota
	BoundP
	BoundO

	Unbound  PatternShape = 0
	BoundSP               = BoundS | BoundP
	BoundSO               = BoundS | BoundO
	BoundPO               = BoundP | BoundO
	BoundSPO              = BoundS | BoundP | BoundO
)

func (s PatternShape) String() string {
	if s == Unbound {
		return "none"
	}
	var out []byte
	if s&BoundS != 0 {
		out = append(out, 's')
	}
	if s&BoundP != 0 {
		out = append(out, 'p')
	}
	if s&BoundO != 0 {
		out = append(out, 'o')
	}
	return string(out)
}

// Shape classifies a pattern by the constants its matchers expose.
func Shape(ms, mp, mo TermMatcher) PatternShape {
	var shape PatternShape
	if ms.Constant() != nil {
		shape |= BoundS
	}
	if mp.Constant() != nil {
		shape |= BoundP
	}
	if mo.Constant() != nil {
		shape |= BoundO
	}
	return shape
}

// IterMatching yields the triples of g accepted by all three matchers.
//
// The bound positions select the most specific lookup available and the
// remaining matchers filter its output. This is a static table: a backend
// speeds it up by implementing the lookups, not by changing the table.
func IterMatching(g Graph, ms, mp, mo TermMatcher) (TripleIterator, error) {
	s, p, o := ms.Constant(), mp.Constant(), mo.Constant()

	var (
		it   TripleIterator
		keep func(*rdf.Triple) bool
		err  error
	)
	switch Shape(ms, mp, mo) {
	case Unbound:
		it, err = g.Iter()
		keep = func(t *rdf.Triple) bool {
			return ms.Matches(t.Subject) && mp.Matches(t.Predicate) && mo.Matches(t.Object)
		}
	case BoundS:
		it, err = IterForS(g, s)
		keep = func(t *rdf.Triple) bool { return mp.Matches(t.Predicate) && mo.Matches(t.Object) }
	case BoundP:
		it, err = IterForP(g, p)
		keep = func(t *rdf.Triple) bool { return ms.Matches(t.Subject) && mo.Matches(t.Object) }
	case BoundO:
		it, err = IterForO(g, o)
		keep = func(t *rdf.Triple) bool { return ms.Matches(t.Subject) && mp.Matches(t.Predicate) }
	case BoundSP:
		it, err = IterForSP(g, s, p)
		keep = func(t *rdf.Triple) bool { return mo.Matches(t.Object) }
	case BoundSO:
		it, err = IterForSO(g, s, o)
		keep = func(t *rdf.Triple) bool { return mp.Matches(t.Predicate) }
	case BoundPO:
		it, err = IterForPO(g, p, o)
		keep = func(t *rdf.Triple) bool { return ms.Matches(t.Subject) }
	default:
		return IterForSPO(g, s, p, o)
	}
	if err != nil {
		return nil, err
	}
	return Filter(it, keep), nil
}
