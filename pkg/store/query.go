package store

import (
	"errors"
	"fmt"

	"github.com/aleksaelezovic/trigraph/pkg/graph"
	"github.com/aleksaelezovic/trigraph/pkg/rdf"
)

// keyOrder maps key position -> triple position (S=0, P=1, O=2).
type keyOrder [3]int

var (
	orderSPO = keyOrder{0, 1, 2}
	orderPOS = keyOrder{1, 2, 0}
	orderOSP = keyOrder{2, 0, 1}
)

// selectIndex chooses the index whose key starts with every bound position
func selectIndex(sBound, pBound, oBound bool) (Table, keyOrder) {
	if sBound && pBound {
		return TableSPO, orderSPO // Key order: S, P, O
	}
	if pBound && oBound {
		return TablePOS, orderPOS // Key order: P, O, S
	}
	if oBound && sBound {
		return TableOSP, orderOSP // Key order: O, S, P
	}
	if sBound {
		return TableSPO, orderSPO
	}
	if pBound {
		return TablePOS, orderPOS
	}
	if oBound {
		return TableOSP, orderOSP
	}
	// Nothing bound, use SPO
	return TableSPO, orderSPO
}

func (s *TripleStore) Iter() (graph.TripleIterator, error) {
	return s.query(nil, nil, nil)
}

func (s *TripleStore) IterForS(subject rdf.Term) (graph.TripleIterator, error) {
	return s.query(subject, nil, nil)
}

func (s *TripleStore) IterForP(predicate rdf.Term) (graph.TripleIterator, error) {
	return s.query(nil, predicate, nil)
}

func (s *TripleStore) IterForO(object rdf.Term) (graph.TripleIterator, error) {
	return s.query(nil, nil, object)
}

func (s *TripleStore) IterForSP(subject, predicate rdf.Term) (graph.TripleIterator, error) {
	return s.query(subject, predicate, nil)
}

func (s *TripleStore) IterForSO(subject, object rdf.Term) (graph.TripleIterator, error) {
	return s.query(subject, nil, object)
}

func (s *TripleStore) IterForPO(predicate, object rdf.Term) (graph.TripleIterator, error) {
	return s.query(nil, predicate, object)
}

func (s *TripleStore) IterForSPO(subject, predicate, object rdf.Term) (graph.TripleIterator, error) {
	if subject == nil || predicate == nil || object == nil {
		return graph.Empty(), nil
	}
	return s.query(subject, predicate, object)
}

// query scans the index selected by the non-nil positions.
func (s *TripleStore) query(subject, predicate, object rdf.Term) (graph.TripleIterator, error) {
	positions := [3]rdf.Term{subject, predicate, object}
	table, order := selectIndex(subject != nil, predicate != nil, object != nil)

	// Build prefix from bound terms in key order
	var prefix []byte
	for _, idx := range order {
		term := positions[idx]
		if term == nil {
			// Stop at first unbound position
			break
		}
		encoded, _, err := s.encoder.EncodeTerm(term)
		if errors.Is(err, ErrUnsupportedTerm) {
			// never stored, so nothing matches
			return graph.Empty(), nil
		}
		if err != nil {
			return nil, err
		}
		prefix = append(prefix, encoded[:]...)
	}

	txn, err := s.storage.Begin(false)
	if err != nil {
		return nil, unavailable("begin", err)
	}

	it, err := txn.Scan(table, prefix)
	if err != nil {
		_ = txn.Rollback() // #nosec G104 - rollback error less important than original error
		return nil, unavailable("scan", err)
	}

	return &tripleIterator{
		store: s,
		txn:   txn,
		it:    it,
		order: order,
		cache: make(map[EncodedTerm]rdf.Term),
	}, nil
}

// tripleIterator decodes index keys inside the read transaction it owns
type tripleIterator struct {
	store  *TripleStore
	txn    Transaction
	it     Iterator
	order  keyOrder
	cache  map[EncodedTerm]rdf.Term
	closed bool
}

func (ti *tripleIterator) Next() bool {
	if ti.closed {
		return false
	}
	return ti.it.Next()
}

func (ti *tripleIterator) Triple() (*rdf.Triple, error) {
	if ti.closed {
		return nil, fmt.Errorf("iterator closed")
	}

	key := ti.it.Key()
	if key == nil {
		return nil, fmt.Errorf("no current key")
	}
	if len(key) != len(ti.order)*EncodedTermSize {
		return nil, fmt.Errorf("invalid key length: %d", len(key))
	}

	// Map key positions back to S, P, O
	var terms [3]rdf.Term
	for i, idx := range ti.order {
		var encoded EncodedTerm
		offset := i * EncodedTermSize
		copy(encoded[:], key[offset:offset+EncodedTermSize])

		term, err := ti.decode(encoded)
		if err != nil {
			return nil, err
		}
		terms[idx] = term
	}

	return rdf.NewTriple(terms[0], terms[1], terms[2]), nil
}

func (ti *tripleIterator) decode(encoded EncodedTerm) (rdf.Term, error) {
	if term, ok := ti.cache[encoded]; ok {
		return term, nil
	}
	term, err := ti.store.decodeTerm(ti.txn, encoded)
	if err != nil {
		return nil, err
	}
	ti.cache[encoded] = term
	return term, nil
}

func (ti *tripleIterator) Close() error {
	if ti.closed {
		return nil
	}
	ti.closed = true
	_ = ti.it.Close() // #nosec G104 - iterator close error less critical than transaction rollback error
	return ti.txn.Rollback()
}

// decodeTerm decodes an encoded term back to an rdf.Term
func (s *TripleStore) decodeTerm(txn Transaction, encoded EncodedTerm) (rdf.Term, error) {
	var stringValue *string
	if s.decoder.NeedsString(encoded) {
		str, err := txn.Get(TableID2Str, encoded[1:])
		if err != nil {
			return nil, unavailable(fmt.Sprintf("lookup %s term", encoded.Type()), err)
		}
		strVal := string(str)
		stringValue = &strVal
	}

	term, err := s.decoder.DecodeTerm(encoded, stringValue)
	if err != nil {
		return nil, fmt.Errorf("failed to decode term: %w", err)
	}
	return term, nil
}
