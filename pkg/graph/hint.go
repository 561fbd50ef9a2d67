package graph

import (
	"fmt"

	"github.com/aleksaelezovic/trigraph/pkg/rdf"
)

// Hint estimates how many triples a query returns. Upper is only meaningful
// when HasUpper is set. Hints are advisory: they size buffers and order
// joins, they never change results.
type Hint struct {
	Lower    int
	Upper    int
	HasUpper bool
}

// Unknown is the hint of a query nothing is known about.
var Unknown = Hint{}

// ExactHint returns a hint for a result of exactly n triples.
func ExactHint(n int) Hint {
	return Hint{Lower: n, Upper: n, HasUpper: true}
}

// AtMost returns a hint with no lower bound and upper bound n.
func AtMost(n int) Hint {
	return Hint{Upper: n, HasUpper: true}
}

// Exact reports whether the hint pins the result size.
func (h Hint) Exact() bool {
	return h.HasUpper && h.Lower == h.Upper
}

func (h Hint) String() string {
	if !h.HasUpper {
		return fmt.Sprintf("[%d, ?]", h.Lower)
	}
	return fmt.Sprintf("[%d, %d]", h.Lower, h.Upper)
}

// upperOnly keeps the upper bound of h and drops its lower bound.
func (h Hint) upperOnly() Hint {
	return Hint{Upper: h.Upper, HasUpper: h.HasUpper}
}

// within clamps h so that it never promises more than outer.
func (h Hint) within(outer Hint) Hint {
	if !outer.HasUpper {
		return h
	}
	if !h.HasUpper || h.Upper > outer.Upper {
		h.Upper, h.HasUpper = outer.Upper, true
	}
	if h.Lower > h.Upper {
		h.Lower = h.Upper
	}
	return h
}

// Hinter is implemented by graphs that know their size.
type Hinter interface {
	Hint() Hint
}

type SubjectHinter interface {
	HintForS(s rdf.Term) Hint
}

type PredicateHinter interface {
	HintForP(p rdf.Term) Hint
}

type ObjectHinter interface {
	HintForO(o rdf.Term) Hint
}

type SubjectPredicateHinter interface {
	HintForSP(s, p rdf.Term) Hint
}

type SubjectObjectHinter interface {
	HintForSO(s, o rdf.Term) Hint
}

type PredicateObjectHinter interface {
	HintForPO(p, o rdf.Term) Hint
}

// HintOf returns the size hint of the whole graph.
func HintOf(g Graph) Hint {
	if h, ok := g.(Hinter); ok {
		return h.Hint()
	}
	return Unknown
}

// HintForS estimates len(IterForS(g, s)). Backend hints are clamped by the
// graph hint, so binding a slot never loosens the upper bound.
func HintForS(g Graph, s rdf.Term) Hint {
	outer := HintOf(g)
	if h, ok := g.(SubjectHinter); ok {
		return h.HintForS(s).within(outer)
	}
	return outer.upperOnly()
}

func HintForP(g Graph, p rdf.Term) Hint {
	outer := HintOf(g)
	if h, ok := g.(PredicateHinter); ok {
		return h.HintForP(p).within(outer)
	}
	return outer.upperOnly()
}

func HintForO(g Graph, o rdf.Term) Hint {
	outer := HintOf(g)
	if h, ok := g.(ObjectHinter); ok {
		return h.HintForO(o).within(outer)
	}
	return outer.upperOnly()
}

// HintForSP defaults to the upper bound of HintForS, tightened by HintForP.
func HintForSP(g Graph, s, p rdf.Term) Hint {
	outer := HintForS(g, s).within(HintForP(g, p))
	if h, ok := g.(SubjectPredicateHinter); ok {
		return h.HintForSP(s, p).within(outer)
	}
	return outer.upperOnly()
}

// HintForSO defaults to the upper bound of HintForS, tightened by HintForO.
func HintForSO(g Graph, s, o rdf.Term) Hint {
	outer := HintForS(g, s).within(HintForO(g, o))
	if h, ok := g.(SubjectObjectHinter); ok {
		return h.HintForSO(s, o).within(outer)
	}
	return outer.upperOnly()
}

// HintForPO defaults to the upper bound of HintForP, tightened by HintForO.
func HintForPO(g Graph, p, o rdf.Term) Hint {
	outer := HintForP(g, p).within(HintForO(g, o))
	if h, ok := g.(PredicateObjectHinter); ok {
		return h.HintForPO(p, o).within(outer)
	}
	return outer.upperOnly()
}

// HintForSPO narrows HintForSP; a SetGraph holds a fully bound triple at most once.
func HintForSPO(g Graph, s, p, o rdf.Term) Hint {
	h := HintForSP(g, s, p).upperOnly().within(HintForSO(g, s, o)).within(HintForPO(g, p, o))
	if IsSet(g) {
		h = h.within(AtMost(1))
	}
	return h
}

// HintMatching estimates len(IterMatching(g, ms, mp, mo)) following the same
// dispatch table as IterMatching.
func HintMatching(g Graph, ms, mp, mo TermMatcher) Hint {
	s, p, o := ms.Constant(), mp.Constant(), mo.Constant()
	var h Hint
	switch Shape(ms, mp, mo) {
	case Unbound:
		h = HintOf(g)
	case BoundS:
		h = HintForS(g, s)
	case BoundP:
		h = HintForP(g, p)
	case BoundO:
		h = HintForO(g, o)
	case BoundSP:
		h = HintForSP(g, s, p)
	case BoundSO:
		h = HintForSO(g, s, o)
	case BoundPO:
		h = HintForPO(g, p, o)
	default:
		return HintForSPO(g, s, p, o)
	}
	if !allResidualsAny(ms, mp, mo) {
		// residual filters may drop anything
		h = h.upperOnly()
	}
	return h
}

func allResidualsAny(ms, mp, mo TermMatcher) bool {
	for _, m := range []TermMatcher{ms, mp, mo} {
		if m.Constant() != nil {
			continue
		}
		if _, ok := m.(anyMatcher); !ok {
			return false
		}
	}
	return true
}
