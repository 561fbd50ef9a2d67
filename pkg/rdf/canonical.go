package rdf

import (
	"fmt"
	"strings"
)

// SerializeTriplesCanonical serializes triples to canonical N-Triples format (C14N)
// Implements RDF 1.2 canonicalization rules (escape sequences, whitespace)
// Note: Canonical form specifies representation, NOT ordering. Input order is preserved.
func SerializeTriplesCanonical(triples []*Triple) string {
	if len(triples) == 0 {
		return ""
	}

	var builder strings.Builder
	for _, triple := range triples {
		builder.WriteString(CanonicalTriple(triple))
		builder.WriteString("\n")
	}

	return builder.String()
}

// CanonicalTriple returns the canonical N-Triples line for a triple, without
// the trailing newline.
func CanonicalTriple(triple *Triple) string {
	var builder strings.Builder
	builder.WriteString(CanonicalTerm(triple.Subject))
	builder.WriteString(" ")
	builder.WriteString(CanonicalTerm(triple.Predicate))
	builder.WriteString(" ")
	builder.WriteString(CanonicalTerm(triple.Object))
	builder.WriteString(" .")
	return builder.String()
}

// CanonicalTerm serializes a single RDF term in canonical format.
// Two terms have the same canonical form iff they are Equal, which makes
// the result usable as a content key.
func CanonicalTerm(term Term) string {
	switch t := term.(type) {
	case *NamedNode:
		return fmt.Sprintf("<%s>", t.IRI)
	case *BlankNode:
		return fmt.Sprintf("_:%s", t.ID)
	case *Literal:
		return serializeLiteralCanonical(t)
	case *Variable:
		return "?" + t.Name
	case nil:
		return ""
	default:
		return term.String()
	}
}

// serializeLiteralCanonical serializes a literal in canonical format
func serializeLiteralCanonical(lit *Literal) string {
	escaped := escapeStringCanonical(lit.Value)

	if lit.Language != "" {
		// Normalize language tag to lowercase
		return fmt.Sprintf(`"%s"@%s`, escaped, strings.ToLower(lit.Language))
	}

	// Omit xsd:string datatype in canonical format (it's the default)
	if lit.Datatype != nil && lit.Datatype.IRI != XSDString.IRI {
		return fmt.Sprintf(`"%s"^^<%s>`, escaped, lit.Datatype.IRI)
	}

	return fmt.Sprintf(`"%s"`, escaped)
}

// escapeStringCanonical escapes a string value for canonical N-Triples output
// Implements RDF 1.2 escape rules:
// - Special named escapes: \t \b \n \r \f \" \\
// - Unicode: \uXXXX for control characters and noncharacters
func escapeStringCanonical(s string) string {
	var builder strings.Builder
	builder.Grow(len(s))

	for _, r := range s {
		switch r {
		case '\t':
			builder.WriteString(`\t`)
		case '\b':
			builder.WriteString(`\b`)
		case '\n':
			builder.WriteString(`\n`)
		case '\r':
			builder.WriteString(`\r`)
		case '\f':
			builder.WriteString(`\f`)
		case '"':
			builder.WriteString(`\"`)
		case '\\':
			builder.WriteString(`\\`)
		default:
			if r < 0x20 || r == 0x7F || (r >= 0xFFFE && r <= 0xFFFF) {
				builder.WriteString(fmt.Sprintf(`\u%04X`, r))
			} else {
				builder.WriteRune(r)
			}
		}
	}

	return builder.String()
}
