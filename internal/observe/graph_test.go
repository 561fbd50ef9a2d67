package observe

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/aleksaelezovic/trigraph/pkg/graph"
	"github.com/aleksaelezovic/trigraph/pkg/graph/graphtest"
	"github.com/aleksaelezovic/trigraph/pkg/graph/inmem"
	"github.com/aleksaelezovic/trigraph/pkg/rdf"
)

func TestConformance(t *testing.T) {
	graphtest.Run(t, func(t *testing.T) graph.MutableGraph {
		return Wrap(inmem.NewIndexedGraph(), nil, zaptest.NewLogger(t, zaptest.Level(zap.InfoLevel)))
	})
}

var (
	alice = rdf.NewNamedNode("http://example.org/alice")
	bob   = rdf.NewNamedNode("http://example.org/bob")
	knows = rdf.NewNamedNode("http://xmlns.com/foaf/0.1/knows")
)

func TestAccessorCalls(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	g := Wrap(inmem.NewIndexedGraph(), m, nil)
	assert.True(t, graph.IsSet(g))
	assert.Equal(t, graph.IterationSnapshot, graph.ModeOf(g))

	_, err = g.Insert(alice, knows, bob)
	require.NoError(t, err)
	_, err = g.Insert(alice, knows, bob)
	require.NoError(t, err)

	it, err := graph.IterMatching(g, graph.Any(), graph.Exactly(knows), graph.Exactly(bob))
	require.NoError(t, err)
	n, err := graph.Count(it)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ok, err := graph.Contains(g, alice, knows, bob)
	require.NoError(t, err)
	assert.True(t, ok)

	removed, err := graph.RemoveMatching(g, graph.Exactly(alice), graph.Any(), graph.Any())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Calls.WithLabelValues("insert")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calls.WithLabelValues("iter_for_po")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Yielded.WithLabelValues("iter_for_po")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calls.WithLabelValues("contains")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calls.WithLabelValues("remove_matching")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Mutated.WithLabelValues("insert")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Mutated.WithLabelValues("remove")))
	assert.Zero(t, testutil.ToFloat64(m.Errors.WithLabelValues("insert")))
}

func TestRetainIsRecorded(t *testing.T) {
	m, err := NewMetrics(nil)
	require.NoError(t, err)
	g := Wrap(inmem.NewIndexedGraph(), m, nil)

	for _, tr := range []*rdf.Triple{
		rdf.NewTriple(alice, knows, bob),
		rdf.NewTriple(bob, knows, alice),
		rdf.NewTriple(bob, knows, bob),
	} {
		_, err := g.Insert(tr.Subject, tr.Predicate, tr.Object)
		require.NoError(t, err)
	}

	require.NoError(t, graph.Retain(g, graph.Exactly(bob), graph.Any(), graph.Any()))

	n, err := graph.Len(g)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calls.WithLabelValues("retain")))
	assert.Zero(t, testutil.ToFloat64(m.Calls.WithLabelValues("remove_matching")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Mutated.WithLabelValues("remove")))
}

func TestRegisteringTwiceReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewMetrics(reg)
	require.NoError(t, err)
	second, err := NewMetrics(reg)
	require.NoError(t, err)

	first.Calls.WithLabelValues("iter").Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(second.Calls.WithLabelValues("iter")))
}

var errOffline = errors.New("offline")

type failing struct{ graph.MutableGraph }

func (failing) Iter() (graph.TripleIterator, error) {
	return nil, errOffline
}

func TestFailuresAreCountedAndLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	m, err := NewMetrics(nil)
	require.NoError(t, err)

	g := Wrap(failing{inmem.NewSliceGraph()}, m, zap.New(core))
	_, err = graph.IterForS(g, alice)
	assert.ErrorIs(t, err, errOffline)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues("iter_for_s")))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "graph", entry.LoggerName)
	assert.Equal(t, "iter_for_s", entry.ContextMap()["accessor"])
}
