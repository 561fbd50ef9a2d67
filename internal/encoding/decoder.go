package encoding

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aleksaelezovic/trigraph/pkg/rdf"
	"github.com/aleksaelezovic/trigraph/pkg/store"
)

var _ store.TermDecoder = (*TermDecoder)(nil)

// TermDecoder handles decoding of RDF terms
type TermDecoder struct{}

// NewTermDecoder creates a new term decoder
func NewTermDecoder() *TermDecoder {
	return &TermDecoder{}
}

// NeedsString reports whether the term was hashed.
func (d *TermDecoder) NeedsString(encoded store.EncodedTerm) bool {
	switch encoded.Type() {
	case rdf.TermTypeNamedNode, rdf.TermTypeBlankNode, rdf.TermTypeStringLiteral,
		rdf.TermTypeLangStringLiteral, rdf.TermTypeTypedLiteral:
		return true
	default:
		return false
	}
}

// DecodeTerm decodes an encoded term back to an rdf.Term
// For terms that require string lookup, stringValue should be provided
func (d *TermDecoder) DecodeTerm(encoded store.EncodedTerm, stringValue *string) (rdf.Term, error) {
	termType := encoded.Type()
	if d.NeedsString(encoded) && stringValue == nil {
		return nil, fmt.Errorf("string value required for %d term", termType)
	}
	payload := binary.BigEndian.Uint64(encoded[1:9])

	switch termType {
	case rdf.TermTypeNamedNode:
		return rdf.NewNamedNode(*stringValue), nil

	case rdf.TermTypeBlankNode:
		return rdf.NewBlankNode(*stringValue), nil

	case rdf.TermTypeNumericBlankNode:
		return rdf.NewBlankNode(strconv.FormatUint(payload, 10)), nil

	case rdf.TermTypeStringLiteral:
		return rdf.NewLiteral(*stringValue), nil

	case rdf.TermTypeSmallStringLiteral:
		endIdx := 1
		for endIdx < store.EncodedTermSize && encoded[endIdx] != 0 {
			endIdx++
		}
		return rdf.NewLiteral(string(encoded[1:endIdx])), nil

	case rdf.TermTypeLangStringLiteral:
		i := strings.LastIndexByte(*stringValue, '@')
		if i < 0 {
			return nil, fmt.Errorf("malformed language-tagged literal %q", *stringValue)
		}
		return rdf.NewLiteralWithLanguage((*stringValue)[:i], (*stringValue)[i+1:]), nil

	case rdf.TermTypeTypedLiteral:
		datatype, value, ok := strings.Cut(*stringValue, "\x00")
		if !ok {
			return nil, fmt.Errorf("malformed typed literal %q", *stringValue)
		}
		return rdf.NewLiteralWithDatatype(value, rdf.NewNamedNode(datatype)), nil

	case rdf.TermTypeIntegerLiteral:
		return rdf.NewIntegerLiteral(int64(payload)), nil // #nosec G115 - intentional bit-pattern conversion for binary decoding

	case rdf.TermTypeDecimalLiteral:
		return rdf.NewLiteralWithDatatype(formatDecimal(math.Float64frombits(payload)), rdf.XSDDecimal), nil

	case rdf.TermTypeDoubleLiteral:
		return rdf.NewDoubleLiteral(math.Float64frombits(payload)), nil

	case rdf.TermTypeBooleanLiteral:
		return rdf.NewBooleanLiteral(payload != 0), nil

	case rdf.TermTypeDateTimeLiteral:
		return rdf.NewDateTimeLiteral(time.Unix(0, int64(payload))), nil // #nosec G115 - intentional bit-pattern conversion for timestamp decoding

	case rdf.TermTypeDateLiteral:
		days := int64(payload) // #nosec G115 - intentional bit-pattern conversion for date decoding
		t := time.Unix(days*86400, 0).UTC()
		return rdf.NewLiteralWithDatatype(t.Format(dateLayout), rdf.XSDDate), nil

	default:
		return nil, fmt.Errorf("unknown term type: %d", termType)
	}
}
