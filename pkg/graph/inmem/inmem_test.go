package inmem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleksaelezovic/trigraph/pkg/graph"
	"github.com/aleksaelezovic/trigraph/pkg/graph/graphtest"
	"github.com/aleksaelezovic/trigraph/pkg/rdf"
)

func TestSliceGraphConformance(t *testing.T) {
	graphtest.Run(t, func(t *testing.T) graph.MutableGraph {
		return NewSliceGraph()
	})
}

func TestIndexedGraphConformance(t *testing.T) {
	graphtest.Run(t, func(t *testing.T) graph.MutableGraph {
		return NewIndexedGraph()
	})
}

var (
	alice = rdf.NewNamedNode("http://example.org/alice")
	knows = rdf.NewNamedNode("http://xmlns.com/foaf/0.1/knows")
	bob   = rdf.NewNamedNode("http://example.org/bob")
)

func TestSliceGraphKeepsDuplicates(t *testing.T) {
	g := NewSliceGraph()
	for i := 0; i < 3; i++ {
		ok, err := g.Insert(alice, knows, bob)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.False(t, graph.IsSet(g))

	it, err := graph.IterForSPO(g, alice, knows, bob)
	require.NoError(t, err)
	n, err := graph.Count(it)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// Remove takes away one occurrence at a time
	ok, err := g.Remove(alice, knows, bob)
	require.NoError(t, err)
	assert.True(t, ok)
	size, err := graph.Len(g)
	require.NoError(t, err)
	assert.Equal(t, 2, size)

	removed, err := graph.RemoveMatching(g, graph.Any(), graph.Exactly(knows), graph.Any())
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	size, err = graph.Len(g)
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestSliceGraphOwnsTerms(t *testing.T) {
	g := NewSliceGraph()
	subject := rdf.NewNamedNode("http://example.org/mutable")
	_, err := g.Insert(subject, knows, bob)
	require.NoError(t, err)

	subject.IRI = "http://example.org/changed"

	ok, err := graph.Contains(g, rdf.NewNamedNode("http://example.org/mutable"), knows, bob)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIndexedGraphHints(t *testing.T) {
	g := NewIndexedGraph()
	_, err := graph.InsertAll(g, []*rdf.Triple{
		rdf.NewTriple(alice, knows, bob),
		rdf.NewTriple(bob, knows, alice),
		rdf.NewTriple(alice, rdf.RDFType, rdf.NewNamedNode("http://xmlns.com/foaf/0.1/Person")),
	})
	require.NoError(t, err)

	assert.Equal(t, graph.ExactHint(3), graph.HintOf(g))
	assert.Equal(t, graph.AtMost(2), graph.HintForS(g, alice))
	assert.Equal(t, graph.AtMost(2), graph.HintForP(g, knows))
	assert.Equal(t, graph.AtMost(0), graph.HintForO(g, rdf.NewLiteral("nobody")))
	assert.Equal(t, graph.AtMost(1), graph.HintForPO(g, knows, bob))
	assert.Equal(t, graph.AtMost(1), graph.HintForSPO(g, alice, knows, bob))
}

func TestIndexedGraphRemoveDropsEmptyBuckets(t *testing.T) {
	g := NewIndexedGraph()
	_, err := g.Insert(alice, knows, bob)
	require.NoError(t, err)
	_, err = g.Remove(alice, knows, bob)
	require.NoError(t, err)

	assert.Empty(t, g.bySubject)
	assert.Empty(t, g.byPredicate)
	assert.Empty(t, g.byObject)
	assert.Empty(t, g.all)
}
