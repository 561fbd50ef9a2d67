package graph_test

import (
	"errors"

	"github.com/aleksaelezovic/trigraph/pkg/graph"
	"github.com/aleksaelezovic/trigraph/pkg/rdf"
)

const ex = "http://example.org/"

var (
	alice = rdf.NewNamedNode(ex + "alice")
	bob   = rdf.NewNamedNode(ex + "bob")
	knows = rdf.NewNamedNode(ex + "knows")
	name  = rdf.NewNamedNode(ex + "name")
	blank = rdf.NewBlankNode("b0")
	lit   = rdf.NewLiteral("Alice")
)

func sample() []*rdf.Triple {
	return []*rdf.Triple{
		rdf.NewTriple(alice, knows, bob),
		rdf.NewTriple(alice, name, lit),
		rdf.NewTriple(bob, knows, alice),
		rdf.NewTriple(blank, knows, alice),
		rdf.NewTriple(alice, knows, bob), // duplicate
	}
}

// scanGraph implements only the full scan, so every package function takes
// its default path.
type scanGraph struct {
	triples []*rdf.Triple
	scans   int
}

func (g *scanGraph) Iter() (graph.TripleIterator, error) {
	g.scans++
	return graph.SliceIterator(g.triples[:len(g.triples):len(g.triples)]), nil
}

func (g *scanGraph) Insert(s, p, o rdf.Term) (bool, error) {
	g.triples = append(g.triples, rdf.NewTriple(s, p, o))
	return true, nil
}

func (g *scanGraph) Remove(s, p, o rdf.Term) (bool, error) {
	target := rdf.NewTriple(s, p, o)
	for i, t := range g.triples {
		if t.Equals(target) {
			g.triples = append(g.triples[:i:i], g.triples[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// spyGraph implements every lookup and records which one served a query.
type spyGraph struct {
	scanGraph
	calls []string
}

func (g *spyGraph) lookup(name string, keep func(*rdf.Triple) bool) (graph.TripleIterator, error) {
	g.calls = append(g.calls, name)
	return graph.Filter(graph.SliceIterator(g.triples[:len(g.triples):len(g.triples)]), keep), nil
}

func (g *spyGraph) IterForS(s rdf.Term) (graph.TripleIterator, error) {
	return g.lookup("S", func(t *rdf.Triple) bool { return rdf.Equal(t.Subject, s) })
}

func (g *spyGraph) IterForP(p rdf.Term) (graph.TripleIterator, error) {
	return g.lookup("P", func(t *rdf.Triple) bool { return rdf.Equal(t.Predicate, p) })
}

func (g *spyGraph) IterForO(o rdf.Term) (graph.TripleIterator, error) {
	return g.lookup("O", func(t *rdf.Triple) bool { return rdf.Equal(t.Object, o) })
}

func (g *spyGraph) IterForSP(s, p rdf.Term) (graph.TripleIterator, error) {
	return g.lookup("SP", func(t *rdf.Triple) bool { return rdf.Equal(t.Subject, s) && rdf.Equal(t.Predicate, p) })
}

func (g *spyGraph) IterForSO(s, o rdf.Term) (graph.TripleIterator, error) {
	return g.lookup("SO", func(t *rdf.Triple) bool { return rdf.Equal(t.Subject, s) && rdf.Equal(t.Object, o) })
}

func (g *spyGraph) IterForPO(p, o rdf.Term) (graph.TripleIterator, error) {
	return g.lookup("PO", func(t *rdf.Triple) bool { return rdf.Equal(t.Predicate, p) && rdf.Equal(t.Object, o) })
}

func (g *spyGraph) IterForSPO(s, p, o rdf.Term) (graph.TripleIterator, error) {
	target := rdf.NewTriple(s, p, o)
	return g.lookup("SPO", func(t *rdf.Triple) bool { return t.Equals(target) })
}

var errBroken = errors.New("broken")

// brokenGraph fails every scan.
type brokenGraph struct{}

func (brokenGraph) Iter() (graph.TripleIterator, error) {
	return nil, errBroken
}

func (brokenGraph) Insert(rdf.Term, rdf.Term, rdf.Term) (bool, error) { return false, errBroken }
func (brokenGraph) Remove(rdf.Term, rdf.Term, rdf.Term) (bool, error) { return false, errBroken }

// failingIterator yields n triples, then an error.
type failingIterator struct {
	n      int
	closed bool
}

func (f *failingIterator) Next() bool { return !f.closed && f.n >= 0 }

func (f *failingIterator) Triple() (*rdf.Triple, error) {
	if f.n == 0 {
		f.n--
		return nil, errBroken
	}
	f.n--
	return rdf.NewTriple(alice, knows, bob), nil
}

func (f *failingIterator) Close() error {
	f.closed = true
	return nil
}

func canonical(triples []*rdf.Triple) []string {
	out := make([]string, len(triples))
	for i, t := range triples {
		out[i] = rdf.CanonicalTriple(t)
	}
	return out
}
