package graph

import (
	"github.com/aleksaelezovic/trigraph/pkg/rdf"
)

// TermMatcher is a predicate over terms. Constant returns the only term the
// matcher accepts, or nil when it may accept several; the planner uses it to
// treat the slot as bound.
type TermMatcher interface {
	Matches(t rdf.Term) bool
	Constant() rdf.Term
}

type anyMatcher struct{}

func (anyMatcher) Matches(rdf.Term) bool { return true }
func (anyMatcher) Constant() rdf.Term    { return nil }

// Any matches every term.
func Any() TermMatcher { return anyMatcher{} }

type exactMatcher struct{ term rdf.Term }

func (m exactMatcher) Matches(t rdf.Term) bool { return rdf.Equal(m.term, t) }
func (m exactMatcher) Constant() rdf.Term      { return m.term }

// Exactly matches terms equal to t.
func Exactly(t rdf.Term) TermMatcher { return exactMatcher{term: t} }

type oneOfMatcher []rdf.Term

func (m oneOfMatcher) Matches(t rdf.Term) bool {
	for _, c := range m {
		if rdf.Equal(c, t) {
			return true
		}
	}
	return false
}

func (m oneOfMatcher) Constant() rdf.Term {
	if len(m) == 1 {
		return m[0]
	}
	return nil
}

// OneOf matches any of terms. With a single term it behaves like Exactly;
// with none it matches nothing.
func OneOf(terms ...rdf.Term) TermMatcher {
	return oneOfMatcher(terms)
}

// MatchFunc adapts an arbitrary predicate. It never reports a constant.
type MatchFunc func(rdf.Term) bool

func (f MatchFunc) Matches(t rdf.Term) bool { return f(t) }
func (f MatchFunc) Constant() rdf.Term      { return nil }

type notMatcher struct{ m TermMatcher }

func (n notMatcher) Matches(t rdf.Term) bool { return !n.m.Matches(t) }
func (n notMatcher) Constant() rdf.Term      { return nil }

// Not inverts m.
func Not(m TermMatcher) TermMatcher {
	if n, ok := m.(notMatcher); ok {
		return n.m
	}
	return notMatcher{m: m}
}

// OfType matches terms of the given kind, e.g. rdf.TermTypeLiteral.
func OfType(kind rdf.TermType) TermMatcher {
	return MatchFunc(func(t rdf.Term) bool { return t != nil && t.Type() == kind })
}

// matcherFor turns a possibly nil term into a matcher: nil and variables
// match anything, other terms match themselves.
func matcherFor(t rdf.Term) TermMatcher {
	if t == nil || t.Type() == rdf.TermTypeVariable {
		return Any()
	}
	return Exactly(t)
}

// Pattern builds the three matchers of a triple pattern. Nil positions and
// variables are wildcards.
func Pattern(s, p, o rdf.Term) (TermMatcher, TermMatcher, TermMatcher) {
	return matcherFor(s), matcherFor(p), matcherFor(o)
}
