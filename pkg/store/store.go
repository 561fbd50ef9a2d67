// Package store implements a persistent triple graph over a transactional
// key-value storage.
//
// Every triple is written to three indexes (spo, pos, osp) whose keys are
// the concatenated 17-byte term encodings, so that any combination of bound
// positions is a prefix scan on one of them. Hashed terms keep their text in
// the id2str table.
package store

import (
	"encoding/binary"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/aleksaelezovic/trigraph/pkg/graph"
	"github.com/aleksaelezovic/trigraph/pkg/rdf"
)

// DefaultBatchSize is the number of triples InsertBatch writes per transaction.
const DefaultBatchSize = 5000

// countKey holds the number of triples in the meta table.
var countKey = []byte("triples")

var (
	_ graph.MutableGraph           = (*TripleStore)(nil)
	_ graph.SetGraph               = (*TripleStore)(nil)
	_ graph.SubjectLookup          = (*TripleStore)(nil)
	_ graph.PredicateLookup        = (*TripleStore)(nil)
	_ graph.ObjectLookup           = (*TripleStore)(nil)
	_ graph.SubjectPredicateLookup = (*TripleStore)(nil)
	_ graph.SubjectObjectLookup    = (*TripleStore)(nil)
	_ graph.PredicateObjectLookup  = (*TripleStore)(nil)
	_ graph.TripleLookup           = (*TripleStore)(nil)
	_ graph.Container              = (*TripleStore)(nil)
	_ graph.BatchInserter          = (*TripleStore)(nil)
	_ graph.Hinter                 = (*TripleStore)(nil)
)

// TripleStore is a set graph persisted in a Storage.
type TripleStore struct {
	storage   Storage
	encoder   TermEncoder
	decoder   TermDecoder
	logger    *zap.Logger
	batchSize int
}

// Option configures a TripleStore.
type Option func(*TripleStore)

// WithLogger sets the logger; the default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(s *TripleStore) {
		s.logger = logger
	}
}

// WithBatchSize sets how many triples InsertBatch writes per transaction.
func WithBatchSize(n int) Option {
	return func(s *TripleStore) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// NewTripleStore creates a new triplestore
func NewTripleStore(storage Storage, encoder TermEncoder, decoder TermDecoder, opts ...Option) *TripleStore {
	s := &TripleStore{
		storage:   storage,
		encoder:   encoder,
		decoder:   decoder,
		logger:    zap.NewNop(),
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close closes the triplestore
func (s *TripleStore) Close() error {
	return s.storage.Close()
}

// UniqueTriples marks TripleStore as a set graph.
func (s *TripleStore) UniqueTriples() {}

// IterationMode is snapshot: iterators run inside their own read transaction.
func (s *TripleStore) IterationMode() graph.IterationMode {
	return graph.IterationSnapshot
}

// unavailable marks a storage failure.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, graph.ErrBackendUnavailable, err)
}

type encodedTriple struct {
	s, p, o EncodedTerm
	strings [3]*string
}

func (s *TripleStore) encodeTriple(subject, predicate, object rdf.Term) (encodedTriple, error) {
	var enc encodedTriple
	var err error

	if enc.s, enc.strings[0], err = s.encoder.EncodeTerm(subject); err != nil {
		return enc, fmt.Errorf("failed to encode subject: %w", err)
	}
	if enc.p, enc.strings[1], err = s.encoder.EncodeTerm(predicate); err != nil {
		return enc, fmt.Errorf("failed to encode predicate: %w", err)
	}
	if enc.o, enc.strings[2], err = s.encoder.EncodeTerm(object); err != nil {
		return enc, fmt.Errorf("failed to encode object: %w", err)
	}
	return enc, nil
}

func (s *TripleStore) spoKey(enc encodedTriple) []byte {
	return s.encoder.EncodeKey(enc.s, enc.p, enc.o)
}

// exists reports whether the encoded triple is in the spo index.
func (s *TripleStore) exists(txn Transaction, enc encodedTriple) (bool, error) {
	_, err := txn.Get(TableSPO, s.spoKey(enc))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, unavailable("get", err)
	}
	return true, nil
}

// Insert adds a triple and reports whether it was absent.
func (s *TripleStore) Insert(subject, predicate, object rdf.Term) (bool, error) {
	enc, err := s.encodeTriple(subject, predicate, object)
	if err != nil {
		return false, err
	}

	txn, err := s.storage.Begin(true)
	if err != nil {
		return false, unavailable("begin", err)
	}
	defer txn.Rollback()

	inserted, err := s.insertInTxn(txn, enc)
	if err != nil || !inserted {
		return false, err
	}
	if err := s.addCount(txn, 1); err != nil {
		return false, err
	}
	if err := txn.Commit(); err != nil {
		return false, unavailable("commit", err)
	}
	return true, nil
}

// InsertBatch inserts triples in transactions of at most the configured batch size.
func (s *TripleStore) InsertBatch(triples []*rdf.Triple) (int, error) {
	inserted := 0
	for start := 0; start < len(triples); start += s.batchSize {
		end := min(start+s.batchSize, len(triples))
		n, err := s.insertSplitting(triples[start:end])
		if err != nil {
			return inserted, err
		}
		inserted += n
		s.logger.Debug("committed batch",
			zap.Int("triples", end-start),
			zap.Int("inserted", n))
	}
	return inserted, nil
}

// insertSplitting halves a chunk the storage rejects as too big for one
// transaction. A rejected transaction is rolled back, so nothing of it lands.
func (s *TripleStore) insertSplitting(triples []*rdf.Triple) (int, error) {
	n, err := s.insertChunk(triples)
	if !errors.Is(err, ErrTxnTooBig) || len(triples) < 2 {
		return n, err
	}

	s.logger.Debug("splitting batch", zap.Int("triples", len(triples)))
	mid := len(triples) / 2
	first, err := s.insertSplitting(triples[:mid])
	if err != nil {
		return first, err
	}
	second, err := s.insertSplitting(triples[mid:])
	return first + second, err
}

func (s *TripleStore) insertChunk(triples []*rdf.Triple) (int, error) {
	txn, err := s.storage.Begin(true)
	if err != nil {
		return 0, unavailable("begin", err)
	}
	defer txn.Rollback()

	inserted := 0
	for _, t := range triples {
		enc, err := s.encodeTriple(t.Subject, t.Predicate, t.Object)
		if err != nil {
			return 0, fmt.Errorf("failed to insert %s: %w", t, err)
		}
		ok, err := s.insertInTxn(txn, enc)
		if err != nil {
			return 0, err
		}
		if ok {
			inserted++
		}
	}

	if err := s.addCount(txn, inserted); err != nil {
		return 0, err
	}
	if err := txn.Commit(); err != nil {
		return 0, unavailable("commit", err)
	}
	return inserted, nil
}

func (s *TripleStore) insertInTxn(txn Transaction, enc encodedTriple) (bool, error) {
	found, err := s.exists(txn, enc)
	if err != nil || found {
		return false, err
	}

	terms := [3]EncodedTerm{enc.s, enc.p, enc.o}
	for i, str := range enc.strings {
		if err := s.storeString(txn, terms[i], str); err != nil {
			return false, unavailable("store string", err)
		}
	}

	// Empty value for all index entries
	emptyValue := []byte{}
	if err := txn.Set(TableSPO, s.encoder.EncodeKey(enc.s, enc.p, enc.o), emptyValue); err != nil {
		return false, unavailable("set spo", err)
	}
	if err := txn.Set(TablePOS, s.encoder.EncodeKey(enc.p, enc.o, enc.s), emptyValue); err != nil {
		return false, unavailable("set pos", err)
	}
	if err := txn.Set(TableOSP, s.encoder.EncodeKey(enc.o, enc.s, enc.p), emptyValue); err != nil {
		return false, unavailable("set osp", err)
	}
	return true, nil
}

// storeString stores a string in the id2str table if provided
func (s *TripleStore) storeString(txn Transaction, encoded EncodedTerm, str *string) error {
	if str == nil {
		return nil
	}

	// The hash portion is the key
	key := encoded[1:]

	// Check if already exists to avoid unnecessary writes
	if _, err := txn.Get(TableID2Str, key); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	return txn.Set(TableID2Str, key, []byte(*str))
}

// Remove deletes a triple and reports whether it was present.
// id2str entries are kept since other triples may share them.
func (s *TripleStore) Remove(subject, predicate, object rdf.Term) (bool, error) {
	enc, err := s.encodeTriple(subject, predicate, object)
	if errors.Is(err, ErrUnsupportedTerm) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	txn, err := s.storage.Begin(true)
	if err != nil {
		return false, unavailable("begin", err)
	}
	defer txn.Rollback()

	found, err := s.exists(txn, enc)
	if err != nil || !found {
		return false, err
	}

	if err := txn.Delete(TableSPO, s.encoder.EncodeKey(enc.s, enc.p, enc.o)); err != nil {
		return false, unavailable("delete spo", err)
	}
	if err := txn.Delete(TablePOS, s.encoder.EncodeKey(enc.p, enc.o, enc.s)); err != nil {
		return false, unavailable("delete pos", err)
	}
	if err := txn.Delete(TableOSP, s.encoder.EncodeKey(enc.o, enc.s, enc.p)); err != nil {
		return false, unavailable("delete osp", err)
	}
	if err := s.addCount(txn, -1); err != nil {
		return false, err
	}

	if err := txn.Commit(); err != nil {
		return false, unavailable("commit", err)
	}
	return true, nil
}

// Contains is a point lookup on the spo index.
func (s *TripleStore) Contains(subject, predicate, object rdf.Term) (bool, error) {
	enc, err := s.encodeTriple(subject, predicate, object)
	if errors.Is(err, ErrUnsupportedTerm) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	txn, err := s.storage.Begin(false)
	if err != nil {
		return false, unavailable("begin", err)
	}
	defer txn.Rollback()

	return s.exists(txn, enc)
}

// Count returns the number of triples, scanning the spo index.
func (s *TripleStore) Count() (int, error) {
	txn, err := s.storage.Begin(false)
	if err != nil {
		return 0, unavailable("begin", err)
	}
	defer txn.Rollback()

	it, err := txn.Scan(TableSPO, nil)
	if err != nil {
		return 0, unavailable("scan", err)
	}
	defer it.Close()

	count := 0
	for it.Next() {
		count++
	}
	return count, nil
}

// Hint is exact; it reads the triple count kept by the write transactions.
func (s *TripleStore) Hint() graph.Hint {
	txn, err := s.storage.Begin(false)
	if err != nil {
		s.logger.Warn("failed to read triple count", zap.Error(err))
		return graph.Unknown
	}
	defer txn.Rollback()

	n, err := readCount(txn)
	if err != nil {
		s.logger.Warn("failed to read triple count", zap.Error(err))
		return graph.Unknown
	}
	return graph.ExactHint(n)
}

// readCount returns the stored triple count; a store never written to has none.
func readCount(txn Transaction) (int, error) {
	value, err := txn.Get(TableMeta, countKey)
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(value) != 8 {
		return 0, fmt.Errorf("invalid triple count: %d bytes", len(value))
	}
	return int(binary.BigEndian.Uint64(value)), nil
}

// addCount adjusts the triple count inside txn.
func (s *TripleStore) addCount(txn Transaction, delta int) error {
	if delta == 0 {
		return nil
	}
	n, err := readCount(txn)
	if err != nil {
		return unavailable("read count", err)
	}
	var value [8]byte
	binary.BigEndian.PutUint64(value[:], uint64(max(n+delta, 0)))
	if err := txn.Set(TableMeta, countKey, value[:]); err != nil {
		return unavailable("update count", err)
	}
	return nil
}
