package store

import (
	"errors"

	"github.com/aleksaelezovic/trigraph/pkg/rdf"
)

// EncodedTermSize is the size of an encoded term: a type byte followed by
// 16 bytes of inline data or a 128-bit hash.
const EncodedTermSize = 17

// EncodedTerm represents a term encoded as a type byte followed by up to 16 bytes of data
// This is defined here to be used by both the encoder and decoder interfaces
type EncodedTerm [EncodedTermSize]byte

// Type returns the encoding type stored in the first byte.
func (e EncodedTerm) Type() rdf.TermType {
	return rdf.TermType(e[0])
}

// ErrUnsupportedTerm is returned when a term cannot be stored, e.g. a variable.
var ErrUnsupportedTerm = errors.New("term cannot be stored")

// TermEncoder handles encoding of RDF terms into a compact binary format
type TermEncoder interface {
	// EncodeTerm encodes an RDF term into a fixed-size byte array
	// Returns the encoded term and optionally a string to store in id2str table
	EncodeTerm(term rdf.Term) (EncodedTerm, *string, error)

	// EncodeKey concatenates encoded terms into an index key
	// Returns a big-endian byte array for lexicographic sorting
	EncodeKey(terms ...EncodedTerm) []byte
}

// TermDecoder handles decoding of RDF terms from binary format
type TermDecoder interface {
	// DecodeTerm decodes an encoded term back to an rdf.Term
	// For terms that require string lookup, stringValue should be provided
	DecodeTerm(encoded EncodedTerm, stringValue *string) (rdf.Term, error)

	// NeedsString reports whether DecodeTerm needs the id2str entry of encoded.
	NeedsString(encoded EncodedTerm) bool
}
