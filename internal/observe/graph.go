package observe

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/aleksaelezovic/trigraph/pkg/graph"
	"github.com/aleksaelezovic/trigraph/pkg/rdf"
)

var (
	_ graph.MutableGraph           = (*Graph)(nil)
	_ graph.SubjectLookup          = (*Graph)(nil)
	_ graph.PredicateLookup        = (*Graph)(nil)
	_ graph.ObjectLookup           = (*Graph)(nil)
	_ graph.SubjectPredicateLookup = (*Graph)(nil)
	_ graph.SubjectObjectLookup    = (*Graph)(nil)
	_ graph.PredicateObjectLookup  = (*Graph)(nil)
	_ graph.TripleLookup           = (*Graph)(nil)
	_ graph.Container              = (*Graph)(nil)
	_ graph.MatchRemover           = (*Graph)(nil)
	_ graph.Retainer               = (*Graph)(nil)
	_ graph.BatchInserter          = (*Graph)(nil)
	_ graph.Hinter                 = (*Graph)(nil)
	_ graph.SubjectHinter          = (*Graph)(nil)
	_ graph.PredicateHinter        = (*Graph)(nil)
	_ graph.ObjectHinter           = (*Graph)(nil)
	_ graph.SubjectPredicateHinter = (*Graph)(nil)
	_ graph.SubjectObjectHinter    = (*Graph)(nil)
	_ graph.PredicateObjectHinter  = (*Graph)(nil)
	_ graph.IterationModer         = (*Graph)(nil)
	_ graph.SetGraph               = setGraph{}
)

// Graph counts every accessor call on the wrapped graph. Lookups go through
// the package functions of graph, so the wrapped graph's overrides still
// apply and the accessor label names the path the caller asked for.
type Graph struct {
	g       graph.MutableGraph
	metrics *Metrics
	logger  *zap.Logger
}

type setGraph struct {
	*Graph
}

func (setGraph) UniqueTriples() {}

// Wrap instruments g; nil metrics are replaced by unregistered ones. The result is a SetGraph when g is one.
func Wrap(g graph.MutableGraph, metrics *Metrics, logger *zap.Logger) graph.MutableGraph {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics, _ = NewMetrics(nil)
	}
	o := &Graph{g: g, metrics: metrics, logger: logger.Named("graph")}
	if graph.IsSet(g) {
		return setGraph{o}
	}
	return o
}

// Unwrap returns the instrumented graph.
func (o *Graph) Unwrap() graph.MutableGraph {
	return o.g
}

func (o *Graph) IterationMode() graph.IterationMode {
	return graph.ModeOf(o.g)
}

func (o *Graph) record(accessor string, err error, fields ...zap.Field) {
	o.metrics.Calls.WithLabelValues(accessor).Inc()
	if err != nil {
		o.metrics.Errors.WithLabelValues(accessor).Inc()
		o.logger.Warn("graph accessor failed", append(fields, zap.String("accessor", accessor), zap.Error(err))...)
		return
	}
	if ce := o.logger.Check(zap.DebugLevel, "graph accessor"); ce != nil {
		ce.Write(append(fields, zap.String("accessor", accessor))...)
	}
}

func (o *Graph) iter(accessor string, it graph.TripleIterator, err error, terms ...rdf.Term) (graph.TripleIterator, error) {
	var fields []zap.Field
	if err != nil || o.logger.Core().Enabled(zap.DebugLevel) {
		bound := make([]string, len(terms))
		for i, t := range terms {
			bound[i] = rdf.CanonicalTerm(t)
		}
		fields = append(fields, zap.Strings("terms", bound))
	}
	o.record(accessor, err, fields...)
	if err != nil {
		return nil, err
	}
	return &countingIterator{TripleIterator: it, yielded: o.metrics.Yielded.WithLabelValues(accessor)}, nil
}

func (o *Graph) Iter() (graph.TripleIterator, error) {
	it, err := o.g.Iter()
	return o.iter("iter", it, err)
}

func (o *Graph) IterForS(s rdf.Term) (graph.TripleIterator, error) {
	it, err := graph.IterForS(o.g, s)
	return o.iter("iter_for_s", it, err, s)
}

func (o *Graph) IterForP(p rdf.Term) (graph.TripleIterator, error) {
	it, err := graph.IterForP(o.g, p)
	return o.iter("iter_for_p", it, err, p)
}

func (o *Graph) IterForO(obj rdf.Term) (graph.TripleIterator, error) {
	it, err := graph.IterForO(o.g, obj)
	return o.iter("iter_for_o", it, err, obj)
}

func (o *Graph) IterForSP(s, p rdf.Term) (graph.TripleIterator, error) {
	it, err := graph.IterForSP(o.g, s, p)
	return o.iter("iter_for_sp", it, err, s, p)
}

func (o *Graph) IterForSO(s, obj rdf.Term) (graph.TripleIterator, error) {
	it, err := graph.IterForSO(o.g, s, obj)
	return o.iter("iter_for_so", it, err, s, obj)
}

func (o *Graph) IterForPO(p, obj rdf.Term) (graph.TripleIterator, error) {
	it, err := graph.IterForPO(o.g, p, obj)
	return o.iter("iter_for_po", it, err, p, obj)
}

func (o *Graph) IterForSPO(s, p, obj rdf.Term) (graph.TripleIterator, error) {
	it, err := graph.IterForSPO(o.g, s, p, obj)
	return o.iter("iter_for_spo", it, err, s, p, obj)
}

func (o *Graph) Contains(s, p, obj rdf.Term) (bool, error) {
	ok, err := graph.Contains(o.g, s, p, obj)
	o.record("contains", err, zap.Bool("found", ok))
	return ok, err
}

func (o *Graph) Insert(s, p, obj rdf.Term) (bool, error) {
	ok, err := o.g.Insert(s, p, obj)
	o.record("insert", err, zap.Bool("changed", ok))
	if ok {
		o.metrics.Mutated.WithLabelValues("insert").Inc()
	}
	return ok, err
}

func (o *Graph) Remove(s, p, obj rdf.Term) (bool, error) {
	ok, err := o.g.Remove(s, p, obj)
	o.record("remove", err, zap.Bool("changed", ok))
	if ok {
		o.metrics.Mutated.WithLabelValues("remove").Inc()
	}
	return ok, err
}

func (o *Graph) RemoveMatching(ms, mp, mo graph.TermMatcher) (int, error) {
	n, err := graph.RemoveMatching(o.g, ms, mp, mo)
	o.record("remove_matching", err, zap.Stringer("shape", graph.Shape(ms, mp, mo)), zap.Int("removed", n))
	o.metrics.Mutated.WithLabelValues("remove").Add(float64(n))
	return n, err
}

// Retain counts removals only when the wrapped graph's hints are exact.
func (o *Graph) Retain(ms, mp, mo graph.TermMatcher) error {
	before := graph.HintOf(o.g)
	err := graph.Retain(o.g, ms, mp, mo)
	after := graph.HintOf(o.g)
	fields := []zap.Field{zap.Stringer("shape", graph.Shape(ms, mp, mo))}
	if before.Exact() && after.Exact() && before.Upper >= after.Upper {
		removed := before.Upper - after.Upper
		fields = append(fields, zap.Int("removed", removed))
		o.metrics.Mutated.WithLabelValues("remove").Add(float64(removed))
	}
	o.record("retain", err, fields...)
	return err
}

func (o *Graph) InsertBatch(triples []*rdf.Triple) (int, error) {
	n, err := graph.InsertAll(o.g, triples)
	o.record("insert_batch", err, zap.Int("triples", len(triples)), zap.Int("inserted", n))
	o.metrics.Mutated.WithLabelValues("insert").Add(float64(n))
	return n, err
}

func (o *Graph) Hint() graph.Hint {
	return graph.HintOf(o.g)
}

func (o *Graph) HintForS(s rdf.Term) graph.Hint {
	return graph.HintForS(o.g, s)
}

func (o *Graph) HintForP(p rdf.Term) graph.Hint {
	return graph.HintForP(o.g, p)
}

func (o *Graph) HintForO(obj rdf.Term) graph.Hint {
	return graph.HintForO(o.g, obj)
}

func (o *Graph) HintForSP(s, p rdf.Term) graph.Hint {
	return graph.HintForSP(o.g, s, p)
}

func (o *Graph) HintForSO(s, obj rdf.Term) graph.Hint {
	return graph.HintForSO(o.g, s, obj)
}

func (o *Graph) HintForPO(p, obj rdf.Term) graph.Hint {
	return graph.HintForPO(o.g, p, obj)
}

// countingIterator counts the triples it hands out.
type countingIterator struct {
	graph.TripleIterator
	yielded prometheus.Counter
}

func (c *countingIterator) Triple() (*rdf.Triple, error) {
	t, err := c.TripleIterator.Triple()
	if err == nil {
		c.yielded.Inc()
	}
	return t, err
}
