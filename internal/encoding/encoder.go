package encoding

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/zeebo/xxh3"

	"github.com/aleksaelezovic/trigraph/pkg/rdf"
	"github.com/aleksaelezovic/trigraph/pkg/store"
)

const (
	// Maximum size for inline strings (16 bytes of UTF-8)
	MaxInlineStringSize = 16

	dateLayout = "2006-01-02"
)

var _ store.TermEncoder = (*TermEncoder)(nil)

// TermEncoder encodes RDF terms into 17-byte keys.
//
// Numbers, booleans, dates and short strings are stored inline when the
// inline value decodes back to the same lexical form; anything else is
// hashed and its text goes to the id2str table.
type TermEncoder struct{}

func NewTermEncoder() *TermEncoder {
	return &TermEncoder{}
}

// Hash128 computes a 128-bit xxhash3 hash of the input string
func (e *TermEncoder) Hash128(s string) [16]byte {
	hash := xxh3.HashString128(s)
	var result [16]byte
	binary.BigEndian.PutUint64(result[0:8], hash.Hi)
	binary.BigEndian.PutUint64(result[8:16], hash.Lo)
	return result
}

// EncodeTerm encodes an RDF term into a fixed-size byte array
// Returns the encoded term and optionally a string to store in id2str table
func (e *TermEncoder) EncodeTerm(term rdf.Term) (store.EncodedTerm, *string, error) {
	var encoded store.EncodedTerm

	switch t := term.(type) {
	case *rdf.NamedNode:
		return e.hashed(rdf.TermTypeNamedNode, t.IRI)
	case *rdf.BlankNode:
		return e.encodeBlankNode(t)
	case *rdf.Literal:
		return e.encodeLiteral(t)
	case nil:
		return encoded, nil, fmt.Errorf("%w: nil term", store.ErrUnsupportedTerm)
	default:
		return encoded, nil, fmt.Errorf("%w: %s", store.ErrUnsupportedTerm, term)
	}
}

func (e *TermEncoder) hashed(kind rdf.TermType, s string) (store.EncodedTerm, *string, error) {
	var encoded store.EncodedTerm
	encoded[0] = byte(kind)
	hash := e.Hash128(s)
	copy(encoded[1:], hash[:])
	return encoded, &s, nil
}

func inline(kind rdf.TermType, value uint64) store.EncodedTerm {
	var encoded store.EncodedTerm
	encoded[0] = byte(kind)
	binary.BigEndian.PutUint64(encoded[1:9], value)
	return encoded
}

func (e *TermEncoder) encodeBlankNode(node *rdf.BlankNode) (store.EncodedTerm, *string, error) {
	// Numeric labels without leading zeros are stored inline
	if num, err := strconv.ParseUint(node.ID, 10, 64); err == nil && strconv.FormatUint(num, 10) == node.ID {
		return inline(rdf.TermTypeNumericBlankNode, num), nil, nil
	}
	return e.hashed(rdf.TermTypeBlankNode, node.ID)
}

func (e *TermEncoder) encodeLiteral(lit *rdf.Literal) (store.EncodedTerm, *string, error) {
	if lit.Language != "" {
		// Tags compare case-insensitively, so they are stored in lower case
		return e.hashed(rdf.TermTypeLangStringLiteral, lit.Value+"@"+strings.ToLower(lit.Language))
	}
	if lit.IsSimple() {
		return e.encodeStringLiteral(lit)
	}

	if encoded, ok := encodeInline(lit); ok {
		return encoded, nil, nil
	}
	return e.hashed(rdf.TermTypeTypedLiteral, lit.Datatype.IRI+"\x00"+lit.Value)
}

func (e *TermEncoder) encodeStringLiteral(lit *rdf.Literal) (store.EncodedTerm, *string, error) {
	if len(lit.Value) <= MaxInlineStringSize && !strings.ContainsRune(lit.Value, 0) {
		var encoded store.EncodedTerm
		encoded[0] = byte(rdf.TermTypeSmallStringLiteral)
		copy(encoded[1:], lit.Value)
		return encoded, nil, nil
	}
	return e.hashed(rdf.TermTypeStringLiteral, lit.Value)
}

// encodeInline packs a typed literal into the key when the packed value
// decodes to exactly lit.Value.
func encodeInline(lit *rdf.Literal) (store.EncodedTerm, bool) {
	var encoded store.EncodedTerm

	switch lit.Datatype.IRI {
	case rdf.XSDInteger.IRI:
		value, err := strconv.ParseInt(lit.Value, 10, 64)
		if err != nil || strconv.FormatInt(value, 10) != lit.Value {
			return encoded, false
		}
		return inline(rdf.TermTypeIntegerLiteral, uint64(value)), true // #nosec G115 - intentional bit-pattern conversion for binary encoding

	case rdf.XSDDecimal.IRI:
		value, err := strconv.ParseFloat(lit.Value, 64)
		if err != nil || formatDecimal(value) != lit.Value {
			return encoded, false
		}
		return inline(rdf.TermTypeDecimalLiteral, math.Float64bits(value)), true

	case rdf.XSDDouble.IRI:
		value, err := strconv.ParseFloat(lit.Value, 64)
		if err != nil || formatDouble(value) != lit.Value {
			return encoded, false
		}
		return inline(rdf.TermTypeDoubleLiteral, math.Float64bits(value)), true

	case rdf.XSDBoolean.IRI:
		switch lit.Value {
		case "true":
			return inline(rdf.TermTypeBooleanLiteral, 1), true
		case "false":
			return inline(rdf.TermTypeBooleanLiteral, 0), true
		}
		return encoded, false

	case rdf.XSDDateTime.IRI:
		t, err := time.Parse(time.RFC3339Nano, lit.Value)
		if err != nil || formatDateTime(t) != lit.Value || !time.Unix(0, t.UnixNano()).Equal(t) {
			return encoded, false
		}
		return inline(rdf.TermTypeDateTimeLiteral, uint64(t.UnixNano())), true // #nosec G115 - intentional bit-pattern conversion for timestamp encoding

	case rdf.XSDDate.IRI:
		t, err := time.Parse(dateLayout, lit.Value)
		if err != nil || t.Format(dateLayout) != lit.Value {
			return encoded, false
		}
		days := t.Unix() / 86400
		return inline(rdf.TermTypeDateLiteral, uint64(days)), true // #nosec G115 - intentional bit-pattern conversion for date encoding
	}
	return encoded, false
}

func formatDecimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		// a decimal without a fraction has no canonical float rendering
		return ""
	}
	return s
}

func formatDouble(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatDateTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// EncodeKey concatenates encoded terms into an index key
func (e *TermEncoder) EncodeKey(terms ...store.EncodedTerm) []byte {
	result := make([]byte, 0, len(terms)*store.EncodedTermSize)
	for _, term := range terms {
		result = append(result, term[:]...)
	}
	return result
}
