// Package syncgraph makes any mutable graph safe for concurrent use.
package syncgraph

import (
	"sync"

	"github.com/aleksaelezovic/trigraph/pkg/graph"
	"github.com/aleksaelezovic/trigraph/pkg/rdf"
)

var (
	_ graph.MutableGraph           = (*Locked)(nil)
	_ graph.SubjectLookup          = (*Locked)(nil)
	_ graph.PredicateLookup        = (*Locked)(nil)
	_ graph.ObjectLookup           = (*Locked)(nil)
	_ graph.SubjectPredicateLookup = (*Locked)(nil)
	_ graph.SubjectObjectLookup    = (*Locked)(nil)
	_ graph.PredicateObjectLookup  = (*Locked)(nil)
	_ graph.TripleLookup           = (*Locked)(nil)
	_ graph.Container              = (*Locked)(nil)
	_ graph.MatchRemover           = (*Locked)(nil)
	_ graph.Retainer               = (*Locked)(nil)
	_ graph.BatchInserter          = (*Locked)(nil)
	_ graph.Hinter                 = (*Locked)(nil)
	_ graph.SubjectHinter          = (*Locked)(nil)
	_ graph.PredicateHinter        = (*Locked)(nil)
	_ graph.ObjectHinter           = (*Locked)(nil)
	_ graph.SubjectPredicateHinter = (*Locked)(nil)
	_ graph.SubjectObjectHinter    = (*Locked)(nil)
	_ graph.PredicateObjectHinter  = (*Locked)(nil)
	_ graph.IterationModer         = (*Locked)(nil)
)

// Locked guards a graph with a read-write mutex. Lookups keep the wrapped
// graph's overrides; RemoveMatching, Retain and InsertBatch run under one
// write lock and are atomic with respect to other callers.
//
// When the wrapped graph iterates over snapshots, the read lock is released
// as soon as an iterator is created. Otherwise every open iterator holds the
// read lock until it is closed, so writers wait for readers; a goroutine
// holding an open iterator must not call into the graph again.
type Locked struct {
	mu       sync.RWMutex
	g        graph.MutableGraph
	snapshot bool
}

// New wraps g. g must not be used directly afterwards.
func New(g graph.MutableGraph) *Locked {
	return &Locked{g: g, snapshot: graph.ModeOf(g) == graph.IterationSnapshot}
}

// LockedSet is a Locked over a set graph.
type LockedSet struct {
	*Locked
}

var _ graph.SetGraph = LockedSet{}

// UniqueTriples marks LockedSet as a set graph.
func (LockedSet) UniqueTriples() {}

// Wrap guards g and keeps its set semantics visible: the result is a
// LockedSet when g is a SetGraph and a *Locked otherwise.
func Wrap(g graph.MutableGraph) graph.MutableGraph {
	l := New(g)
	if graph.IsSet(g) {
		return LockedSet{Locked: l}
	}
	return l
}

// Unwrap returns the wrapped graph.
func (l *Locked) Unwrap() graph.MutableGraph {
	return l.g
}

// IterationMode is the wrapped graph's mode.
func (l *Locked) IterationMode() graph.IterationMode {
	return graph.ModeOf(l.g)
}

// read opens an iterator under the read lock.
func (l *Locked) read(open func() (graph.TripleIterator, error)) (graph.TripleIterator, error) {
	l.mu.RLock()
	it, err := open()
	if err != nil || l.snapshot {
		l.mu.RUnlock()
		return it, err
	}
	return &lockedIterator{TripleIterator: it, unlock: l.mu.RUnlock}, nil
}

func (l *Locked) Iter() (graph.TripleIterator, error) {
	return l.read(l.g.Iter)
}

func (l *Locked) IterForS(s rdf.Term) (graph.TripleIterator, error) {
	return l.read(func() (graph.TripleIterator, error) { return graph.IterForS(l.g, s) })
}

func (l *Locked) IterForP(p rdf.Term) (graph.TripleIterator, error) {
	return l.read(func() (graph.TripleIterator, error) { return graph.IterForP(l.g, p) })
}

func (l *Locked) IterForO(o rdf.Term) (graph.TripleIterator, error) {
	return l.read(func() (graph.TripleIterator, error) { return graph.IterForO(l.g, o) })
}

func (l *Locked) IterForSP(s, p rdf.Term) (graph.TripleIterator, error) {
	return l.read(func() (graph.TripleIterator, error) { return graph.IterForSP(l.g, s, p) })
}

func (l *Locked) IterForSO(s, o rdf.Term) (graph.TripleIterator, error) {
	return l.read(func() (graph.TripleIterator, error) { return graph.IterForSO(l.g, s, o) })
}

func (l *Locked) IterForPO(p, o rdf.Term) (graph.TripleIterator, error) {
	return l.read(func() (graph.TripleIterator, error) { return graph.IterForPO(l.g, p, o) })
}

func (l *Locked) IterForSPO(s, p, o rdf.Term) (graph.TripleIterator, error) {
	return l.read(func() (graph.TripleIterator, error) { return graph.IterForSPO(l.g, s, p, o) })
}

func (l *Locked) Contains(s, p, o rdf.Term) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return graph.Contains(l.g, s, p, o)
}

func (l *Locked) Insert(s, p, o rdf.Term) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.g.Insert(s, p, o)
}

func (l *Locked) Remove(s, p, o rdf.Term) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.g.Remove(s, p, o)
}

func (l *Locked) RemoveMatching(ms, mp, mo graph.TermMatcher) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return graph.RemoveMatching(l.g, ms, mp, mo)
}

func (l *Locked) Retain(ms, mp, mo graph.TermMatcher) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return graph.Retain(l.g, ms, mp, mo)
}

func (l *Locked) InsertBatch(triples []*rdf.Triple) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return graph.InsertAll(l.g, triples)
}

func (l *Locked) Hint() graph.Hint {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return graph.HintOf(l.g)
}

func (l *Locked) HintForS(s rdf.Term) graph.Hint {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return graph.HintForS(l.g, s)
}

func (l *Locked) HintForP(p rdf.Term) graph.Hint {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return graph.HintForP(l.g, p)
}

func (l *Locked) HintForO(o rdf.Term) graph.Hint {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return graph.HintForO(l.g, o)
}

func (l *Locked) HintForSP(s, p rdf.Term) graph.Hint {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return graph.HintForSP(l.g, s, p)
}

func (l *Locked) HintForSO(s, o rdf.Term) graph.Hint {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return graph.HintForSO(l.g, s, o)
}

func (l *Locked) HintForPO(p, o rdf.Term) graph.Hint {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return graph.HintForPO(l.g, p, o)
}

// lockedIterator releases the read lock on Close.
type lockedIterator struct {
	graph.TripleIterator
	unlock func()
	once   sync.Once
}

func (it *lockedIterator) Close() error {
	err := it.TripleIterator.Close()
	it.once.Do(it.unlock)
	return err
}
