// Package graphtest checks that a graph backend honours the contract of
// package graph. Backends call Run from their own tests:
//
//	func TestConformance(t *testing.T) {
//		graphtest.Run(t, func(t *testing.T) graph.MutableGraph {
//			return inmem.NewIndexedGraph()
//		})
//	}
package graphtest

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleksaelezovic/trigraph/pkg/graph"
	"github.com/aleksaelezovic/trigraph/pkg/rdf"
)

// Factory returns an empty graph. It is called once per subtest; cleanup
// belongs in t.Cleanup.
type Factory func(t *testing.T) graph.MutableGraph

const ex = "http://example.org/"

var (
	exA = rdf.NewNamedNode(ex + "a")
	exB = rdf.NewNamedNode(ex + "b")
	exC = rdf.NewNamedNode(ex + "C")
	exD = rdf.NewNamedNode(ex + "D")
	exP = rdf.NewNamedNode(ex + "p")
	exQ = rdf.NewNamedNode(ex + "q")

	bnode     = rdf.NewBlankNode("x1")
	litA      = rdf.NewLiteral("A")
	litLong   = rdf.NewLiteral("a literal that does not fit into sixteen bytes")
	litEN     = rdf.NewLiteralWithLanguage("chat", "en")
	litFR     = rdf.NewLiteralWithLanguage("chat", "fr")
	litInt    = rdf.NewIntegerLiteral(42)
	litOddInt = rdf.NewLiteralWithDatatype("042", rdf.XSDInteger)
	litCustom = rdf.NewLiteralWithDatatype("x", rdf.NewNamedNode(ex+"dt"))
)

// Scenario is the small graph of the reference scenario.
func Scenario() []*rdf.Triple {
	return []*rdf.Triple{
		rdf.NewTriple(exA, rdf.RDFType, exC),
		rdf.NewTriple(exB, rdf.RDFType, exC),
		rdf.NewTriple(exA, rdf.RDFSLabel, litA),
	}
}

// Fixture is a graph touching every term kind and every slot combination.
func Fixture() []*rdf.Triple {
	return []*rdf.Triple{
		rdf.NewTriple(exA, rdf.RDFType, exC),
		rdf.NewTriple(exB, rdf.RDFType, exC),
		rdf.NewTriple(exA, rdf.RDFType, exD),
		rdf.NewTriple(exA, rdf.RDFSLabel, litA),
		rdf.NewTriple(exA, exP, exB),
		rdf.NewTriple(exB, exP, exA),
		rdf.NewTriple(exB, exQ, litLong),
		rdf.NewTriple(bnode, exP, exA),
		rdf.NewTriple(bnode, exQ, litEN),
		rdf.NewTriple(exA, exQ, litFR),
		rdf.NewTriple(exC, exQ, litInt),
		rdf.NewTriple(exC, exQ, litOddInt),
		rdf.NewTriple(exD, exP, litCustom),
		rdf.NewTriple(exD, rdf.RDFType, exD),
	}
}

// terms used as constants in queries, including absent ones
func probeTerms() []rdf.Term {
	return []rdf.Term{
		exA, exB, exC, exD, exP, exQ, rdf.RDFType, rdf.RDFSLabel,
		bnode, litA, litLong, litEN, litFR, litInt, litOddInt, litCustom,
		rdf.NewNamedNode(ex + "absent"), rdf.NewLiteral("absent"),
	}
}

// Run executes the whole conformance suite against newGraph.
func Run(t *testing.T, newGraph Factory) {
	t.Run("SubsetProperty", func(t *testing.T) { testSubset(t, newGraph) })
	t.Run("DispatchEquivalence", func(t *testing.T) { testDispatch(t, newGraph) })
	t.Run("PredicateObjectResidual", func(t *testing.T) { testPredicateObjectResidual(t, newGraph) })
	t.Run("ContainsConsistency", func(t *testing.T) { testContains(t, newGraph) })
	t.Run("MutationRoundTrip", func(t *testing.T) { testRoundTrip(t, newGraph) })
	t.Run("RemoveMatchingCount", func(t *testing.T) { testRemoveMatching(t, newGraph) })
	t.Run("Retain", func(t *testing.T) { testRetain(t, newGraph) })
	t.Run("SetIdempotence", func(t *testing.T) { testSetIdempotence(t, newGraph) })
	t.Run("HintMonotonicity", func(t *testing.T) { testHints(t, newGraph) })
	t.Run("Scenario", func(t *testing.T) { testScenario(t, newGraph) })
	t.Run("IterationMode", func(t *testing.T) { testIterationMode(t, newGraph) })
	t.Run("TermEquality", func(t *testing.T) { testTermEquality(t, newGraph) })
}

// Load builds a graph from newGraph and inserts triples one by one.
func Load(t *testing.T, newGraph Factory, triples []*rdf.Triple) graph.MutableGraph {
	t.Helper()
	g := newGraph(t)
	for _, tr := range triples {
		_, err := g.Insert(tr.Subject, tr.Predicate, tr.Object)
		require.NoError(t, err)
	}
	return g
}

// Keys returns the sorted canonical forms of triples, duplicates included.
func Keys(triples []*rdf.Triple) []string {
	keys := make([]string, len(triples))
	for i, tr := range triples {
		keys[i] = rdf.CanonicalTriple(tr)
	}
	sort.Strings(keys)
	return keys
}

// Drain returns a function collecting an iterator into its keys. It takes
// an accessor's results directly: Drain(t)(graph.IterForS(g, s)).
func Drain(t *testing.T) func(graph.TripleIterator, error) []string {
	return func(it graph.TripleIterator, err error) []string {
		t.Helper()
		require.NoError(t, err)
		triples, err := graph.Collect(it)
		require.NoError(t, err)
		return Keys(triples)
	}
}

func all(t *testing.T, g graph.Graph) []string {
	t.Helper()
	it, err := g.Iter()
	return Drain(t)(it, err)
}

// filterKeys is the naive full-scan reference.
func filterKeys(t *testing.T, g graph.Graph, keep func(*rdf.Triple) bool) []string {
	t.Helper()
	it, err := g.Iter()
	require.NoError(t, err)
	triples, err := graph.Collect(it)
	require.NoError(t, err)

	var kept []*rdf.Triple
	for _, tr := range triples {
		if keep(tr) {
			kept = append(kept, tr)
		}
	}
	return Keys(kept)
}

func testSubset(t *testing.T, newGraph Factory) {
	g := Load(t, newGraph, Fixture())
	probes := probeTerms()

	it, err := g.Iter()
	require.NoError(t, err)
	stored, err := graph.Collect(it)
	require.NoError(t, err)
	assert.True(t, rdf.AreGraphsIsomorphic(Fixture(), stored), "Iter does not return the loaded graph")

	for _, x := range probes {
		assert.Equal(t, filterKeys(t, g, func(tr *rdf.Triple) bool { return rdf.Equal(tr.Subject, x) }),
			Drain(t)(graph.IterForS(g, x)), "IterForS(%s)", x)
		assert.Equal(t, filterKeys(t, g, func(tr *rdf.Triple) bool { return rdf.Equal(tr.Predicate, x) }),
			Drain(t)(graph.IterForP(g, x)), "IterForP(%s)", x)
		assert.Equal(t, filterKeys(t, g, func(tr *rdf.Triple) bool { return rdf.Equal(tr.Object, x) }),
			Drain(t)(graph.IterForO(g, x)), "IterForO(%s)", x)
	}

	for _, x := range probes {
		for _, y := range probes {
			assert.Equal(t,
				filterKeys(t, g, func(tr *rdf.Triple) bool { return rdf.Equal(tr.Subject, x) && rdf.Equal(tr.Predicate, y) }),
				Drain(t)(graph.IterForSP(g, x, y)), "IterForSP(%s, %s)", x, y)
			assert.Equal(t,
				filterKeys(t, g, func(tr *rdf.Triple) bool { return rdf.Equal(tr.Subject, x) && rdf.Equal(tr.Object, y) }),
				Drain(t)(graph.IterForSO(g, x, y)), "IterForSO(%s, %s)", x, y)
			assert.Equal(t,
				filterKeys(t, g, func(tr *rdf.Triple) bool { return rdf.Equal(tr.Predicate, x) && rdf.Equal(tr.Object, y) }),
				Drain(t)(graph.IterForPO(g, x, y)), "IterForPO(%s, %s)", x, y)
		}
	}

	for _, tr := range Fixture() {
		assert.Equal(t, []string{rdf.CanonicalTriple(tr)},
			Drain(t)(graph.IterForSPO(g, tr.Subject, tr.Predicate, tr.Object)), "IterForSPO(%s)", tr)
	}
	assert.Empty(t, Drain(t)(graph.IterForSPO(g, exA, exP, exA)))
}

type matcherCase struct {
	name string
	m    graph.TermMatcher
}

func matcherCases() []matcherCase {
	return []matcherCase{
		{"any", graph.Any()},
		{"exA", graph.Exactly(exA)},
		{"type", graph.Exactly(rdf.RDFType)},
		{"exC", graph.Exactly(exC)},
		{"absent", graph.Exactly(rdf.NewNamedNode(ex + "absent"))},
		{"oneOf(a,b)", graph.OneOf(exA, exB)},
		{"oneOf(p)", graph.OneOf(exP)},
		{"literal", graph.OfType(rdf.TermTypeLiteral)},
		{"not(exA)", graph.Not(graph.Exactly(exA))},
	}
}

func testDispatch(t *testing.T, newGraph Factory) {
	g := Load(t, newGraph, Fixture())
	cases := matcherCases()

	for _, ms := range cases {
		for _, mp := range cases {
			for _, mo := range cases {
				want := filterKeys(t, g, func(tr *rdf.Triple) bool {
					return ms.m.Matches(tr.Subject) && mp.m.Matches(tr.Predicate) && mo.m.Matches(tr.Object)
				})
				it, err := graph.IterMatching(g, ms.m, mp.m, mo.m)
				assert.Equal(t, want, Drain(t)(it, err), "IterMatching(%s, %s, %s)", ms.name, mp.name, mo.name)
			}
		}
	}
}

// A constant predicate and object with a non-constant subject matcher
// must filter subjects with the subject matcher.
func testPredicateObjectResidual(t *testing.T, newGraph Factory) {
	g := Load(t, newGraph, Scenario())

	it, err := graph.IterMatching(g, graph.Exactly(exA), graph.Any(), graph.Any())
	require.NoError(t, err)
	n, err := graph.Count(it)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	// subjects exA and exB both have (rdf:type, ex:C); only exA passes
	onlyA := graph.MatchFunc(func(term rdf.Term) bool { return rdf.Equal(term, exA) })
	it, err = graph.IterMatching(g, onlyA, graph.Exactly(rdf.RDFType), graph.Exactly(exC))
	assert.Equal(t, Keys([]*rdf.Triple{rdf.NewTriple(exA, rdf.RDFType, exC)}), Drain(t)(it, err))

	it, err = graph.IterMatching(g, graph.Not(graph.Exactly(exA)), graph.Exactly(rdf.RDFType), graph.Exactly(exC))
	assert.Equal(t, Keys([]*rdf.Triple{rdf.NewTriple(exB, rdf.RDFType, exC)}), Drain(t)(it, err))
}

func testContains(t *testing.T, newGraph Factory) {
	g := Load(t, newGraph, Fixture())
	probes := probeTerms()

	for _, s := range probes {
		for _, p := range probes {
			for _, o := range probes {
				want := len(filterKeys(t, g, func(tr *rdf.Triple) bool {
					return rdf.Equal(tr.Subject, s) && rdf.Equal(tr.Predicate, p) && rdf.Equal(tr.Object, o)
				})) > 0
				got, err := graph.Contains(g, s, p, o)
				require.NoError(t, err)
				assert.Equal(t, want, got, "Contains(%s, %s, %s)", s, p, o)
			}
		}
	}
}

func occurrences(t *testing.T, g graph.Graph, tr *rdf.Triple) int {
	t.Helper()
	return len(filterKeys(t, g, tr.Equals))
}

func testRoundTrip(t *testing.T, newGraph Factory) {
	g := Load(t, newGraph, Fixture())
	fresh := rdf.NewTriple(exC, exP, rdf.NewLiteralWithLanguage("neu", "de"))

	ok, err := graph.Contains(g, fresh.Subject, fresh.Predicate, fresh.Object)
	require.NoError(t, err)
	require.False(t, ok)

	inserted, err := g.Insert(fresh.Subject, fresh.Predicate, fresh.Object)
	require.NoError(t, err)
	assert.True(t, inserted)

	ok, err = graph.Contains(g, fresh.Subject, fresh.Predicate, fresh.Object)
	require.NoError(t, err)
	assert.True(t, ok)

	for _, tr := range append(Fixture(), fresh) {
		before := occurrences(t, g, tr)
		removed, err := g.Remove(tr.Subject, tr.Predicate, tr.Object)
		require.NoError(t, err)
		assert.True(t, removed, "Remove(%s)", tr)
		assert.Equal(t, before-1, occurrences(t, g, tr), "occurrences of %s", tr)
	}
	assert.Empty(t, all(t, g))

	removed, err := g.Remove(exA, exP, exB)
	require.NoError(t, err)
	assert.False(t, removed)
}

// reset empties g and loads the fixture again.
func reset(t *testing.T, g graph.MutableGraph) {
	t.Helper()
	_, err := graph.RemoveMatching(g, graph.Any(), graph.Any(), graph.Any())
	require.NoError(t, err)
	require.Empty(t, all(t, g))
	_, err = graph.InsertAll(g, Fixture())
	require.NoError(t, err)
}

func testRemoveMatching(t *testing.T, newGraph Factory) {
	g := newGraph(t)
	for _, mc := range matcherCases() {
		for pos := 0; pos < 3; pos++ {
			reset(t, g)
			ms, mp, mo := graph.Any(), graph.Any(), graph.Any()
			switch pos {
			case 0:
				ms = mc.m
			case 1:
				mp = mc.m
			default:
				mo = mc.m
			}

			before := len(all(t, g))
			want := filterKeys(t, g, func(tr *rdf.Triple) bool {
				return !(ms.Matches(tr.Subject) && mp.Matches(tr.Predicate) && mo.Matches(tr.Object))
			})

			n, err := graph.RemoveMatching(g, ms, mp, mo)
			require.NoError(t, err)
			after := all(t, g)
			assert.Equal(t, before-len(after), n, "RemoveMatching(%s at %d)", mc.name, pos)
			assert.Equal(t, want, after, "RemoveMatching(%s at %d)", mc.name, pos)
		}
	}
}

func testRetain(t *testing.T, newGraph Factory) {
	tests := []struct {
		name       string
		ms, mp, mo graph.TermMatcher
	}{
		{"everything", graph.Any(), graph.Any(), graph.Any()},
		{"subject", graph.Exactly(exA), graph.Any(), graph.Any()},
		{"predicate", graph.Any(), graph.Exactly(rdf.RDFType), graph.Any()},
		{"all three", graph.OneOf(exA, exB), graph.Exactly(rdf.RDFType), graph.Exactly(exC)},
		{"literals of a or b", graph.OneOf(exA, exB), graph.Any(), graph.OfType(rdf.TermTypeLiteral)},
		{"nothing", graph.OneOf(), graph.Any(), graph.Any()},
	}

	g := newGraph(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reset(t, g)
			want := filterKeys(t, g, func(tr *rdf.Triple) bool {
				return tt.ms.Matches(tr.Subject) && tt.mp.Matches(tr.Predicate) && tt.mo.Matches(tr.Object)
			})

			require.NoError(t, graph.Retain(g, tt.ms, tt.mp, tt.mo))
			assert.Equal(t, want, all(t, g))
		})
	}
}

func testSetIdempotence(t *testing.T, newGraph Factory) {
	g := newGraph(t)
	if !graph.IsSet(g) {
		t.Skip("not a set graph")
	}

	first, err := g.Insert(exA, exP, exB)
	require.NoError(t, err)
	second, err := g.Insert(exA, exP, exB)
	require.NoError(t, err)
	assert.True(t, first)
	assert.False(t, second)

	// an equal literal written differently is the same triple
	_, err = g.Insert(exA, exQ, rdf.NewLiteral("v"))
	require.NoError(t, err)
	dup, err := g.Insert(exA, exQ, rdf.NewLiteralWithDatatype("v", rdf.XSDString))
	require.NoError(t, err)
	assert.False(t, dup)

	n, err := graph.InsertAll(g, Fixture())
	require.NoError(t, err)
	assert.Equal(t, len(Fixture())-1, n, "exA exP exB was already present")
	_, err = graph.InsertAll(g, Fixture())
	require.NoError(t, err)

	assert.Len(t, all(t, g), len(Fixture())+1)
	assert.LessOrEqual(t, graph.HintForSPO(g, exA, exP, exB).Upper, 1)
}

func upperLE(t *testing.T, narrow, wide graph.Hint, msg string) {
	t.Helper()
	if narrow.HasUpper && wide.HasUpper {
		assert.LessOrEqual(t, narrow.Upper, wide.Upper, msg)
	}
	if wide.HasUpper {
		assert.True(t, narrow.HasUpper, "%s: binding more slots lost the upper bound", msg)
	}
}

func testHints(t *testing.T, newGraph Factory) {
	g := Load(t, newGraph, Fixture())
	total := len(all(t, g))
	whole := graph.HintOf(g)
	if whole.HasUpper {
		assert.GreaterOrEqual(t, whole.Upper, total)
	}
	assert.LessOrEqual(t, whole.Lower, total)

	for _, tr := range Fixture() {
		s, p, o := tr.Subject, tr.Predicate, tr.Object
		hs, hp, ho := graph.HintForS(g, s), graph.HintForP(g, p), graph.HintForO(g, o)
		hsp, hso, hpo := graph.HintForSP(g, s, p), graph.HintForSO(g, s, o), graph.HintForPO(g, p, o)
		hspo := graph.HintForSPO(g, s, p, o)

		for name, h := range map[string]graph.Hint{"s": hs, "p": hp, "o": ho} {
			upperLE(t, h, whole, name+" vs whole graph")
		}
		upperLE(t, hsp, hs, "sp vs s")
		upperLE(t, hsp, hp, "sp vs p")
		upperLE(t, hso, hs, "so vs s")
		upperLE(t, hso, ho, "so vs o")
		upperLE(t, hpo, hp, "po vs p")
		upperLE(t, hpo, ho, "po vs o")
		upperLE(t, hspo, hsp, "spo vs sp")
		upperLE(t, hspo, hso, "spo vs so")
		upperLE(t, hspo, hpo, "spo vs po")

		// hints never contradict the real result
		n, err := graph.Count(mustIter(t)(graph.IterForSP(g, s, p)))
		require.NoError(t, err)
		assert.LessOrEqual(t, hsp.Lower, n)
		if hsp.HasUpper {
			assert.GreaterOrEqual(t, hsp.Upper, n)
		}
	}

	m := graph.HintMatching(g, graph.Exactly(exA), graph.Any(), graph.OfType(rdf.TermTypeLiteral))
	assert.Equal(t, 0, m.Lower, "residual filters drop the lower bound")
	upperLE(t, m, graph.HintForS(g, exA), "matching vs s")
}

func mustIter(t *testing.T) func(graph.TripleIterator, error) graph.TripleIterator {
	return func(it graph.TripleIterator, err error) graph.TripleIterator {
		t.Helper()
		require.NoError(t, err)
		return it
	}
}

func testScenario(t *testing.T, newGraph Factory) {
	g := Load(t, newGraph, Scenario())

	assert.Equal(t,
		Keys([]*rdf.Triple{
			rdf.NewTriple(exA, rdf.RDFType, exC),
			rdf.NewTriple(exB, rdf.RDFType, exC),
		}),
		Drain(t)(graph.IterForPO(g, rdf.RDFType, exC)))

	n, err := graph.RemoveMatching(g, graph.Any(), graph.Exactly(rdf.RDFType), graph.Any())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, Keys([]*rdf.Triple{rdf.NewTriple(exA, rdf.RDFSLabel, litA)}), all(t, g))
}

func testIterationMode(t *testing.T, newGraph Factory) {
	g := newGraph(t)
	if graph.ModeOf(g) != graph.IterationSnapshot {
		t.Skip("iteration under mutation is undefined for this backend")
	}

	t.Run("ReadThenMutate", func(t *testing.T) {
		g := Load(t, newGraph, Scenario())
		it, err := g.Iter()
		require.NoError(t, err)

		_, err = g.Insert(exD, exP, exD)
		require.NoError(t, err)
		_, err = g.Remove(exA, rdf.RDFSLabel, litA)
		require.NoError(t, err)

		triples, err := graph.Collect(it)
		require.NoError(t, err)
		assert.Equal(t, Keys(Scenario()), Keys(triples))
	})

	t.Run("MutateThenRead", func(t *testing.T) {
		g := Load(t, newGraph, Scenario())
		_, err := g.Insert(exD, exP, exD)
		require.NoError(t, err)
		_, err = g.Remove(exA, rdf.RDFSLabel, litA)
		require.NoError(t, err)

		want := Keys([]*rdf.Triple{
			rdf.NewTriple(exA, rdf.RDFType, exC),
			rdf.NewTriple(exB, rdf.RDFType, exC),
			rdf.NewTriple(exD, exP, exD),
		})
		assert.Equal(t, want, all(t, g))
	})

	t.Run("RemoveWhileIterating", func(t *testing.T) {
		g := Load(t, newGraph, Scenario())
		it, err := graph.IterForP(g, rdf.RDFType)
		require.NoError(t, err)
		seen := 0
		for it.Next() {
			tr, err := it.Triple()
			require.NoError(t, err)
			_, err = g.Remove(tr.Subject, tr.Predicate, tr.Object)
			require.NoError(t, err)
			seen++
		}
		require.NoError(t, it.Close())
		assert.Equal(t, 2, seen)
		assert.Len(t, all(t, g), 1)
	})
}

func testTermEquality(t *testing.T, newGraph Factory) {
	g := newGraph(t)
	_, err := g.Insert(exA, exQ, rdf.NewLiteralWithLanguage("hello", "EN"))
	require.NoError(t, err)
	_, err = g.Insert(exA, exP, rdf.NewLiteral("plain"))
	require.NoError(t, err)

	ok, err := graph.Contains(g, exA, exQ, rdf.NewLiteralWithLanguage("hello", "en"))
	require.NoError(t, err)
	assert.True(t, ok, "language tags compare case-insensitively")

	ok, err = graph.Contains(g, exA, exP, rdf.NewLiteralWithDatatype("plain", rdf.XSDString))
	require.NoError(t, err)
	assert.True(t, ok, "a simple literal is an xsd:string")

	ok, err = graph.Contains(g, rdf.NewNamedNode(ex+"a"), exP, rdf.NewLiteral("plain"))
	require.NoError(t, err)
	assert.True(t, ok, "terms compare by content")

	ok, err = graph.Contains(g, exA, exP, rdf.NewLiteralWithLanguage("plain", "en"))
	require.NoError(t, err)
	assert.False(t, ok)

	// variables are wildcards in patterns, never stored terms
	it, err := graph.IterForS(g, rdf.NewVariable("s"))
	assert.Empty(t, Drain(t)(it, err))
}
