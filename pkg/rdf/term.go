package rdf

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TermType represents the type of an RDF term
type TermType byte

const (
	// Core RDF types
	TermTypeNamedNode TermType = iota + 1
	TermTypeBlankNode
	TermTypeLiteral
	TermTypeVariable

	// Literal subtypes, used by the binary encoding
	TermTypeStringLiteral
	TermTypeLangStringLiteral
	TermTypeIntegerLiteral
	TermTypeDecimalLiteral
	TermTypeDoubleLiteral
	TermTypeBooleanLiteral
	TermTypeDateTimeLiteral
	TermTypeDateLiteral
	TermTypeTypedLiteral
	TermTypeSmallStringLiteral
	TermTypeNumericBlankNode
)

func (t TermType) String() string {
	switch t {
	case TermTypeNamedNode:
		return "iri"
	case TermTypeBlankNode:
		return "bnode"
	case TermTypeLiteral:
		return "literal"
	case TermTypeVariable:
		return "variable"
	default:
		return fmt.Sprintf("termtype(%d)", byte(t))
	}
}

// Term represents an RDF term (IRI, blank node, literal or variable).
// Terms are immutable; two terms are equal iff their content is equal.
type Term interface {
	Type() TermType
	String() string
	Equals(other Term) bool
}

// Equal reports whether a and b carry the same content. Nil terms are only
// equal to each other.
func Equal(a, b Term) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equals(b)
}

// NamedNode represents an IRI
type NamedNode struct {
	IRI string
}

func NewNamedNode(iri string) *NamedNode {
	return &NamedNode{IRI: iri}
}

func (n *NamedNode) Type() TermType {
	return TermTypeNamedNode
}

func (n *NamedNode) String() string {
	return fmt.Sprintf("<%s>", n.IRI)
}

func (n *NamedNode) Equals(other Term) bool {
	if on, ok := other.(*NamedNode); ok {
		return n.IRI == on.IRI
	}
	return false
}

// BlankNode represents a blank node
type BlankNode struct {
	ID string
}

func NewBlankNode(id string) *BlankNode {
	return &BlankNode{ID: id}
}

// NewFreshBlankNode returns a blank node with a random, collision-free label.
func NewFreshBlankNode() *BlankNode {
	return &BlankNode{ID: "b" + strings.ReplaceAll(uuid.NewString(), "-", "")}
}

func (b *BlankNode) Type() TermType {
	return TermTypeBlankNode
}

func (b *BlankNode) String() string {
	return fmt.Sprintf("_:%s", b.ID)
}

func (b *BlankNode) Equals(other Term) bool {
	if ob, ok := other.(*BlankNode); ok {
		return b.ID == ob.ID
	}
	return false
}

// Literal represents an RDF literal
type Literal struct {
	Value    string
	Language string     // for language-tagged strings
	Datatype *NamedNode // for typed literals
}

func NewLiteral(value string) *Literal {
	return &Literal{Value: value}
}

func NewLiteralWithLanguage(value, language string) *Literal {
	return &Literal{Value: value, Language: language}
}

func NewLiteralWithDatatype(value string, datatype *NamedNode) *Literal {
	return &Literal{Value: value, Datatype: datatype}
}

func (l *Literal) Type() TermType {
	return TermTypeLiteral
}

func (l *Literal) String() string {
	return serializeLiteralCanonical(l)
}

// IsSimple reports whether the literal is a plain xsd:string literal.
func (l *Literal) IsSimple() bool {
	return l.Language == "" && (l.Datatype == nil || l.Datatype.IRI == XSDString.IRI)
}

func (l *Literal) Equals(other Term) bool {
	ol, ok := other.(*Literal)
	if !ok {
		return false
	}
	if l.Value != ol.Value {
		return false
	}
	if l.Language != "" || ol.Language != "" {
		return strings.EqualFold(l.Language, ol.Language)
	}
	// A literal without datatype is an xsd:string
	if l.IsSimple() || ol.IsSimple() {
		return l.IsSimple() && ol.IsSimple()
	}
	return l.Datatype.IRI == ol.Datatype.IRI
}

// Variable is a query variable. It never appears in stored triples.
type Variable struct {
	Name string
}

func NewVariable(name string) *Variable {
	return &Variable{Name: name}
}

func (v *Variable) Type() TermType {
	return TermTypeVariable
}

func (v *Variable) String() string {
	return "?" + v.Name
}

func (v *Variable) Equals(other Term) bool {
	if ov, ok := other.(*Variable); ok {
		return v.Name == ov.Name
	}
	return false
}

// Triple represents an RDF triple (subject, predicate, object)
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

func NewTriple(subject, predicate, object Term) *Triple {
	return &Triple{
		Subject:   subject,
		Predicate: predicate,
		Object:    object,
	}
}

func (t *Triple) S() Term { return t.Subject }
func (t *Triple) P() Term { return t.Predicate }
func (t *Triple) O() Term { return t.Object }

// Equals compares two triples position by position.
func (t *Triple) Equals(other *Triple) bool {
	if other == nil {
		return false
	}
	return Equal(t.Subject, other.Subject) &&
		Equal(t.Predicate, other.Predicate) &&
		Equal(t.Object, other.Object)
}

func (t *Triple) String() string {
	return fmt.Sprintf("%s %s %s .", t.Subject, t.Predicate, t.Object)
}

// Helper functions for common XSD datatypes
var (
	XSDString   = NewNamedNode(xsdPrefix + "string")
	XSDInteger  = NewNamedNode(xsdPrefix + "integer")
	XSDDecimal  = NewNamedNode(xsdPrefix + "decimal")
	XSDDouble   = NewNamedNode(xsdPrefix + "double")
	XSDBoolean  = NewNamedNode(xsdPrefix + "boolean")
	XSDDateTime = NewNamedNode(xsdPrefix + "dateTime")
	XSDDate     = NewNamedNode(xsdPrefix + "date")
)

func NewIntegerLiteral(value int64) *Literal {
	return NewLiteralWithDatatype(strconv.FormatInt(value, 10), XSDInteger)
}

func NewDoubleLiteral(value float64) *Literal {
	return NewLiteralWithDatatype(strconv.FormatFloat(value, 'g', -1, 64), XSDDouble)
}

func NewBooleanLiteral(value bool) *Literal {
	return NewLiteralWithDatatype(strconv.FormatBool(value), XSDBoolean)
}

func NewDateTimeLiteral(value time.Time) *Literal {
	return NewLiteralWithDatatype(value.UTC().Format(time.RFC3339Nano), XSDDateTime)
}

// Copy returns a term with the same content that shares nothing mutable
// with t. Backends use it to take ownership of caller-provided terms.
func Copy(t Term) Term {
	switch v := t.(type) {
	case *NamedNode:
		return &NamedNode{IRI: v.IRI}
	case *BlankNode:
		return &BlankNode{ID: v.ID}
	case *Literal:
		lit := &Literal{Value: v.Value, Language: v.Language}
		if v.Datatype != nil {
			lit.Datatype = &NamedNode{IRI: v.Datatype.IRI}
		}
		return lit
	case *Variable:
		return &Variable{Name: v.Name}
	default:
		return t
	}
}
