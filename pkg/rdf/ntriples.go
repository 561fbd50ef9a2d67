package rdf

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrSyntax is wrapped by every parse error.
var ErrSyntax = errors.New("rdf syntax error")

// NTriplesParser parses N-Triples documents and single terms.
// In lenient mode prefixed names (rdf:type) and the anonymous blank node []
// are accepted as well; this is what command line arguments use.
type NTriplesParser struct {
	input    string
	pos      int
	length   int
	line     int
	prefixes map[string]string
	lenient  bool
}

// NewNTriplesParser creates a strict N-Triples parser
func NewNTriplesParser(input string) *NTriplesParser {
	return &NTriplesParser{
		input:  input,
		length: len(input),
		line:   1,
	}
}

// WithPrefixes switches the parser to lenient mode, resolving prefixed names
// against prefixes.
func (p *NTriplesParser) WithPrefixes(prefixes map[string]string) *NTriplesParser {
	p.prefixes = prefixes
	p.lenient = true
	return p
}

// ParseNTriples parses a complete N-Triples document.
func ParseNTriples(input string) ([]*Triple, error) {
	return NewNTriplesParser(input).Parse()
}

// ParseTerm parses a single term, accepting the standard prefixes.
func ParseTerm(input string) (Term, error) {
	p := NewNTriplesParser(strings.TrimSpace(input)).WithPrefixes(Prefixes)
	if p.length == 0 {
		return nil, p.errorf("empty term")
	}
	term, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	p.skipWhitespaceAndComments()
	if p.pos < p.length {
		return nil, p.errorf("trailing input after term: %q", p.input[p.pos:])
	}
	return term, nil
}

// Parse parses the document and returns its triples in input order
func (p *NTriplesParser) Parse() ([]*Triple, error) {
	var triples []*Triple

	for p.pos < p.length {
		p.skipWhitespaceAndComments()
		if p.pos >= p.length {
			break
		}

		triple, err := p.parseTriple()
		if err != nil {
			return nil, err
		}
		triples = append(triples, triple)
	}

	return triples, nil
}

func (p *NTriplesParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrSyntax, p.line, fmt.Sprintf(format, args...))
}

// skipWhitespaceAndComments skips whitespace and comments
func (p *NTriplesParser) skipWhitespaceAndComments() {
	for p.pos < p.length {
		ch := p.input[p.pos]
		if ch == '\n' {
			p.line++
			p.pos++
			continue
		}
		if ch == ' ' || ch == '\t' || ch == '\r' {
			p.pos++
			continue
		}
		if ch == '#' {
			for p.pos < p.length && p.input[p.pos] != '\n' {
				p.pos++
			}
			continue
		}
		break
	}
}

// parseTriple parses: subject predicate object .
func (p *NTriplesParser) parseTriple() (*Triple, error) {
	subject, err := p.parseTerm()
	if err != nil {
		return nil, fmt.Errorf("error parsing subject: %w", err)
	}
	if subject.Type() == TermTypeLiteral {
		return nil, p.errorf("literals cannot be used as subjects")
	}

	p.skipWhitespaceAndComments()

	predicate, err := p.parseTerm()
	if err != nil {
		return nil, fmt.Errorf("error parsing predicate: %w", err)
	}
	if predicate.Type() != TermTypeNamedNode {
		return nil, p.errorf("predicate must be an IRI, got %s", predicate.Type())
	}

	p.skipWhitespaceAndComments()

	object, err := p.parseTerm()
	if err != nil {
		return nil, fmt.Errorf("error parsing object: %w", err)
	}

	p.skipWhitespaceAndComments()

	if p.pos >= p.length || p.input[p.pos] != '.' {
		return nil, p.errorf("expected '.' at end of triple")
	}
	p.pos++ // skip '.'

	return NewTriple(subject, predicate, object), nil
}

// parseTerm parses an RDF term (IRI, blank node, literal or, leniently, a prefixed name)
func (p *NTriplesParser) parseTerm() (Term, error) {
	if p.pos >= p.length {
		return nil, p.errorf("unexpected end of input")
	}
	ch := p.input[p.pos]

	switch ch {
	case '<':
		iri, err := p.parseIRI()
		if err != nil {
			return nil, err
		}
		return NewNamedNode(iri), nil

	case '_':
		return p.parseBlankNode()

	case '"':
		return p.parseLiteral()

	case '?':
		if !p.lenient {
			return nil, p.errorf("variables not allowed in N-Triples")
		}
		p.pos++
		start := p.pos
		for p.pos < p.length && !isTermDelimiter(p.input[p.pos]) {
			p.pos++
		}
		if start == p.pos {
			return nil, p.errorf("empty variable name")
		}
		return NewVariable(p.input[start:p.pos]), nil

	case '[':
		if !p.lenient || !strings.HasPrefix(p.input[p.pos:], "[]") {
			return nil, p.errorf("unexpected character: %c", ch)
		}
		p.pos += 2
		return NewFreshBlankNode(), nil

	default:
		if p.lenient && ((ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')) {
			return p.parsePrefixedName()
		}
		return nil, p.errorf("unexpected character at position %d: %c", p.pos, ch)
	}
}

func isTermDelimiter(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '.' || ch == '<' || ch == '>'
}

// parseIRI parses an IRI enclosed in < >
func (p *NTriplesParser) parseIRI() (string, error) {
	if p.pos >= p.length || p.input[p.pos] != '<' {
		return "", p.errorf("expected '<' at start of IRI")
	}
	p.pos++ // skip '<'

	var result strings.Builder
	for p.pos < p.length && p.input[p.pos] != '>' {
		ch := p.input[p.pos]

		if ch == '\\' {
			if p.pos+1 < p.length && (p.input[p.pos+1] == 'u' || p.input[p.pos+1] == 'U') {
				escaped, err := p.processUnicodeEscape()
				if err != nil {
					return "", err
				}
				result.WriteString(escaped)
				continue
			}
			return "", p.errorf("invalid escape sequence in IRI at position %d", p.pos)
		}

		// IRIs cannot contain: space, <, >, ", {, }, |, ^, ` or control characters
		if ch == ' ' || ch == '<' || ch == '"' || ch == '{' || ch == '}' ||
			ch == '|' || ch == '^' || ch == '`' || ch <= 0x1F {
			return "", p.errorf("invalid character in IRI: %q at position %d", ch, p.pos)
		}

		result.WriteByte(ch)
		p.pos++
	}

	if p.pos >= p.length {
		return "", p.errorf("unclosed IRI")
	}
	p.pos++ // skip '>'

	iri := result.String()
	if !strings.Contains(iri, ":") {
		return "", p.errorf("relative IRI not allowed: %s", iri)
	}
	return iri, nil
}

// parseBlankNode parses _:label
func (p *NTriplesParser) parseBlankNode() (Term, error) {
	if !strings.HasPrefix(p.input[p.pos:], "_:") {
		return nil, p.errorf("expected '_:' at start of blank node")
	}
	p.pos += 2

	start := p.pos
	for p.pos < p.length && !isTermDelimiter(p.input[p.pos]) {
		p.pos++
	}
	label := p.input[start:p.pos]
	if label == "" {
		return nil, p.errorf("empty blank node label")
	}
	return NewBlankNode(label), nil
}

// parseLiteral parses a quoted literal with optional language tag or datatype
func (p *NTriplesParser) parseLiteral() (Term, error) {
	p.pos++ // skip opening '"'

	var value strings.Builder
	for p.pos < p.length {
		ch := p.input[p.pos]
		if ch == '"' {
			break
		}
		if ch == '\n' {
			return nil, p.errorf("newline in string literal")
		}
		if ch != '\\' {
			value.WriteByte(ch)
			p.pos++
			continue
		}

		p.pos++
		if p.pos >= p.length {
			return nil, p.errorf("unexpected end of input in escape sequence")
		}
		switch esc := p.input[p.pos]; esc {
		case 'n':
			value.WriteByte('\n')
		case 't':
			value.WriteByte('\t')
		case 'r':
			value.WriteByte('\r')
		case 'b':
			value.WriteByte('\b')
		case 'f':
			value.WriteByte('\f')
		case '"':
			value.WriteByte('"')
		case '\'':
			value.WriteByte('\'')
		case '\\':
			value.WriteByte('\\')
		case 'u', 'U':
			p.pos--
			escaped, err := p.processUnicodeEscape()
			if err != nil {
				return nil, err
			}
			value.WriteString(escaped)
			continue
		default:
			return nil, p.errorf("invalid escape sequence \\%c at position %d", esc, p.pos)
		}
		p.pos++
	}

	if p.pos >= p.length {
		return nil, p.errorf("unclosed string literal")
	}
	p.pos++ // skip closing '"'

	if p.pos < p.length && p.input[p.pos] == '@' {
		p.pos++
		start := p.pos
		for p.pos < p.length {
			ch := p.input[p.pos]
			if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '-' {
				p.pos++
				continue
			}
			break
		}
		lang := p.input[start:p.pos]
		if lang == "" || !((lang[0] >= 'a' && lang[0] <= 'z') || (lang[0] >= 'A' && lang[0] <= 'Z')) {
			return nil, p.errorf("invalid language tag %q", lang)
		}
		return NewLiteralWithLanguage(value.String(), lang), nil
	}

	if strings.HasPrefix(p.input[p.pos:], "^^") {
		p.pos += 2
		var datatype string
		if p.pos < p.length && p.input[p.pos] == '<' {
			iri, err := p.parseIRI()
			if err != nil {
				return nil, fmt.Errorf("error parsing datatype: %w", err)
			}
			datatype = iri
		} else if p.lenient {
			dt, err := p.parsePrefixedName()
			if err != nil {
				return nil, fmt.Errorf("error parsing datatype: %w", err)
			}
			datatype = dt.(*NamedNode).IRI
		} else {
			return nil, p.errorf("expected datatype IRI")
		}
		return NewLiteralWithDatatype(value.String(), NewNamedNode(datatype)), nil
	}

	return NewLiteral(value.String()), nil
}

// processUnicodeEscape processes \uXXXX or \UXXXXXXXX escape sequences
func (p *NTriplesParser) processUnicodeEscape() (string, error) {
	p.pos++ // skip '\'
	if p.pos >= p.length {
		return "", p.errorf("unexpected end of input in Unicode escape")
	}

	hexDigits := 4
	if p.input[p.pos] == 'U' {
		hexDigits = 8
	}
	p.pos++ // skip 'u' or 'U'

	if p.pos+hexDigits > p.length {
		return "", p.errorf("incomplete Unicode escape sequence")
	}

	hexStr := p.input[p.pos : p.pos+hexDigits]
	p.pos += hexDigits

	codePoint, err := strconv.ParseUint(hexStr, 16, 32)
	if err != nil {
		return "", p.errorf("invalid hex digits in Unicode escape: %s", hexStr)
	}
	return string(rune(codePoint)), nil
}

// parsePrefixedName parses a prefixed name (e.g., rdf:type)
func (p *NTriplesParser) parsePrefixedName() (Term, error) {
	start := p.pos
	for p.pos < p.length && !isTermDelimiter(p.input[p.pos]) && p.input[p.pos] != '"' {
		p.pos++
	}
	name := p.input[start:p.pos]

	iri, ok := ExpandPrefixed(name, p.prefixes)
	if !ok {
		return nil, p.errorf("undefined prefix in %q", name)
	}
	return NewNamedNode(iri), nil
}
