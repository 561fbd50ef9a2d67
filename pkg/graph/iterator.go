package graph

import (
	"errors"

	"github.com/aleksaelezovic/trigraph/pkg/rdf"
)

var errIteratorClosed = errors.New("iterator closed")

// ErrNoTriple is returned by Triple when the iterator is not positioned on one.
var ErrNoTriple = errors.New("no current triple")

// TripleIterator is a lazy, pull-based sequence of triples.
//
//	for it.Next() {
//		t, err := it.Triple()
//		...
//	}
//	err := it.Close()
//
// Close must be called even when iteration stops early.
type TripleIterator interface {
	Next() bool
	Triple() (*rdf.Triple, error)
	Close() error
}

// Filter returns an iterator over the triples of it accepted by keep.
// Closing the result closes it.
func Filter(it TripleIterator, keep func(*rdf.Triple) bool) TripleIterator {
	return &filterIterator{it: it, keep: keep}
}

type filterIterator struct {
	it   TripleIterator
	keep func(*rdf.Triple) bool
	cur  *rdf.Triple
	err  error
}

func (f *filterIterator) Next() bool {
	if f.err != nil {
		return false
	}
	for f.it.Next() {
		t, err := f.it.Triple()
		if err != nil {
			// surface the error on this step, stop on the next
			f.cur, f.err = nil, err
			return true
		}
		if f.keep(t) {
			f.cur = t
			return true
		}
	}
	f.cur = nil
	return false
}

func (f *filterIterator) Triple() (*rdf.Triple, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.cur == nil {
		return nil, ErrNoTriple
	}
	return f.cur, nil
}

func (f *filterIterator) Close() error {
	return f.it.Close()
}

// SliceIterator iterates over a fixed slice of triples. The slice is not
// copied; callers hand over a slice they no longer mutate.
func SliceIterator(triples []*rdf.Triple) TripleIterator {
	return &sliceIterator{triples: triples, pos: -1}
}

type sliceIterator struct {
	triples []*rdf.Triple
	pos     int
	closed  bool
}

func (s *sliceIterator) Next() bool {
	if s.closed || s.pos+1 >= len(s.triples) {
		return false
	}
	s.pos++
	return true
}

func (s *sliceIterator) Triple() (*rdf.Triple, error) {
	if s.closed {
		return nil, errIteratorClosed
	}
	if s.pos < 0 || s.pos >= len(s.triples) {
		return nil, ErrNoTriple
	}
	return s.triples[s.pos], nil
}

func (s *sliceIterator) Close() error {
	s.closed = true
	s.triples = nil
	return nil
}

// Empty returns an iterator that yields nothing.
func Empty() TripleIterator {
	return SliceIterator(nil)
}

// Collect drains it into a slice and closes it.
func Collect(it TripleIterator) (triples []*rdf.Triple, err error) {
	defer func() {
		if cerr := it.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for it.Next() {
		t, err := it.Triple()
		if err != nil {
			return nil, err
		}
		triples = append(triples, t)
	}
	return triples, nil
}

// Count drains it, closes it and returns the number of triples seen.
func Count(it TripleIterator) (n int, err error) {
	defer func() {
		if cerr := it.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for it.Next() {
		if _, err := it.Triple(); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// First returns the first triple of it, or nil if it is empty, and closes it.
func First(it TripleIterator) (t *rdf.Triple, err error) {
	defer func() {
		if cerr := it.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if !it.Next() {
		return nil, nil
	}
	return it.Triple()
}
