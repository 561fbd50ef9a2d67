package rdf

import (
	"strings"
	"testing"
	"time"
)

// ===== NamedNode Tests =====

func TestNamedNode_Type(t *testing.T) {
	node := NewNamedNode("http://example.org/resource")
	if node.Type() != TermTypeNamedNode {
		t.Errorf("Expected TermTypeNamedNode, got %v", node.Type())
	}
}

func TestNamedNode_String(t *testing.T) {
	node := NewNamedNode("http://example.org/resource")
	expected := "<http://example.org/resource>"
	if node.String() != expected {
		t.Errorf("Expected %s, got %s", expected, node.String())
	}
}

func TestNamedNode_Equals(t *testing.T) {
	node1 := NewNamedNode("http://example.org/resource")
	node2 := NewNamedNode("http://example.org/resource")
	node3 := NewNamedNode("http://example.org/different")

	if !node1.Equals(node2) {
		t.Error("Expected equal NamedNodes to be equal")
	}

	if node1.Equals(node3) {
		t.Error("Expected different NamedNodes to not be equal")
	}

	// Test with different term type
	literal := NewLiteral("test")
	if node1.Equals(literal) {
		t.Error("NamedNode should not equal Literal")
	}
}

// ===== BlankNode Tests =====

func TestBlankNode_Type(t *testing.T) {
	node := NewBlankNode("b1")
	if node.Type() != TermTypeBlankNode {
		t.Errorf("Expected TermTypeBlankNode, got %v", node.Type())
	}
}

func TestBlankNode_String(t *testing.T) {
	node := NewBlankNode("b1")
	expected := "_:b1"
	if node.String() != expected {
		t.Errorf("Expected %s, got %s", expected, node.String())
	}
}

func TestBlankNode_Equals(t *testing.T) {
	node1 := NewBlankNode("b1")
	node2 := NewBlankNode("b1")
	node3 := NewBlankNode("b2")

	if !node1.Equals(node2) {
		t.Error("Expected equal BlankNodes to be equal")
	}

	if node1.Equals(node3) {
		t.Error("Expected different BlankNodes to not be equal")
	}

	// Test with different term type
	namedNode := NewNamedNode("http://example.org/resource")
	if node1.Equals(namedNode) {
		t.Error("BlankNode should not equal NamedNode")
	}
}

// ===== Literal Tests =====

func TestLiteral_Type(t *testing.T) {
	literal := NewLiteral("test")
	if literal.Type() != TermTypeLiteral {
		t.Errorf("Expected TermTypeLiteral, got %v", literal.Type())
	}
}

func TestLiteral_String(t *testing.T) {
	tests := []struct {
		name     string
		literal  *Literal
		expected string
	}{
		{
			name:     "plain literal",
			literal:  NewLiteral("hello"),
			expected: "\"hello\"",
		},
		{
			name:     "literal with language",
			literal:  NewLiteralWithLanguage("hello", "en"),
			expected: "\"hello\"@en",
		},
		{
			name:     "literal with datatype",
			literal:  NewLiteralWithDatatype("42", NewNamedNode("http://www.w3.org/2001/XMLSchema#integer")),
			expected: "\"42\"^^<http://www.w3.org/2001/XMLSchema#integer>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.literal.String()
			if result != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestLiteral_Equals(t *testing.T) {
	lit1 := NewLiteral("hello")
	lit2 := NewLiteral("hello")
	lit3 := NewLiteral("world")

	if !lit1.Equals(lit2) {
		t.Error("Expected equal plain literals to be equal")
	}

	if lit1.Equals(lit3) {
		t.Error("Expected different plain literals to not be equal")
	}

	// Language-tagged literals
	litLang1 := NewLiteralWithLanguage("hello", "en")
	litLang2 := NewLiteralWithLanguage("hello", "en")
	litLang3 := NewLiteralWithLanguage("hello", "fr")

	if !litLang1.Equals(litLang2) {
		t.Error("Expected equal language-tagged literals to be equal")
	}

	if litLang1.Equals(litLang3) {
		t.Error("Expected literals with different languages to not be equal")
	}

	if litLang1.Equals(lit1) {
		t.Error("Language-tagged literal should not equal plain literal")
	}

	// Typed literals
	litType1 := NewLiteralWithDatatype("42", XSDInteger)
	litType2 := NewLiteralWithDatatype("42", XSDInteger)
	litType3 := NewLiteralWithDatatype("42", XSDString)

	if !litType1.Equals(litType2) {
		t.Error("Expected equal typed literals to be equal")
	}

	if litType1.Equals(litType3) {
		t.Error("Expected literals with different datatypes to not be equal")
	}

	// Test with different term type
	namedNode := NewNamedNode("http://example.org/resource")
	if lit1.Equals(namedNode) {
		t.Error("Literal should not equal NamedNode")
	}
}

func TestLiteral_EqualsNormalizes(t *testing.T) {
	tests := []struct {
		name  string
		a, b  *Literal
		equal bool
	}{
		{"plain equals explicit xsd:string", NewLiteral("x"), NewLiteralWithDatatype("x", XSDString), true},
		{"language tags compare case-insensitively", NewLiteralWithLanguage("x", "en-GB"), NewLiteralWithLanguage("x", "en-gb"), true},
		{"plain differs from language-tagged", NewLiteral("x"), NewLiteralWithLanguage("x", "en"), false},
		{"xsd:string differs from integer", NewLiteralWithDatatype("1", XSDString), NewIntegerLiteral(1), false},
		{"value is compared exactly", NewLiteralWithDatatype("01", XSDInteger), NewIntegerLiteral(1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equals(tt.b); got != tt.equal {
				t.Errorf("%s.Equals(%s) = %v, want %v", tt.a, tt.b, got, tt.equal)
			}
			if got := tt.b.Equals(tt.a); got != tt.equal {
				t.Errorf("equality is not symmetric for %s and %s", tt.a, tt.b)
			}
			if tt.equal && CanonicalTerm(tt.a) != CanonicalTerm(tt.b) {
				t.Errorf("equal terms have different canonical forms: %s vs %s",
					CanonicalTerm(tt.a), CanonicalTerm(tt.b))
			}
		})
	}
}

// ===== Variable Tests =====

func TestVariable(t *testing.T) {
	v := NewVariable("x")
	if v.Type() != TermTypeVariable {
		t.Errorf("Expected TermTypeVariable, got %v", v.Type())
	}
	if v.String() != "?x" {
		t.Errorf("Expected ?x, got %s", v.String())
	}
	if !v.Equals(NewVariable("x")) || v.Equals(NewVariable("y")) {
		t.Error("Variables should compare by name")
	}
	if v.Equals(NewBlankNode("x")) {
		t.Error("Variable should not equal BlankNode")
	}
}

// ===== Equality Helpers =====

func TestEqual(t *testing.T) {
	a := NewNamedNode("http://example.org/a")
	if !Equal(nil, nil) {
		t.Error("nil should equal nil")
	}
	if Equal(a, nil) || Equal(nil, a) {
		t.Error("nil should not equal a term")
	}
	if !Equal(a, NewNamedNode("http://example.org/a")) {
		t.Error("terms with the same IRI should be equal")
	}
}

func TestCopy(t *testing.T) {
	original := NewLiteralWithDatatype("42", NewNamedNode("http://example.org/dt"))
	copied := Copy(original).(*Literal)

	if !copied.Equals(original) {
		t.Fatalf("copy %s differs from %s", copied, original)
	}
	original.Value = "43"
	original.Datatype.IRI = "http://example.org/other"
	if copied.Value != "42" || copied.Datatype.IRI != "http://example.org/dt" {
		t.Errorf("copy shares state with the original: %s", copied)
	}
}

func TestNewFreshBlankNode(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		b := NewFreshBlankNode()
		if !strings.HasPrefix(b.ID, "b") || strings.Contains(b.ID, "-") {
			t.Fatalf("unexpected label %q", b.ID)
		}
		if seen[b.ID] {
			t.Fatalf("label %q issued twice", b.ID)
		}
		seen[b.ID] = true
	}
}

// ===== Triple Tests =====

func TestTriple_String(t *testing.T) {
	subject := NewNamedNode("http://example.org/subject")
	predicate := NewNamedNode("http://example.org/predicate")
	object := NewLiteral("value")

	triple := NewTriple(subject, predicate, object)
	expected := "<http://example.org/subject> <http://example.org/predicate> \"value\" ."

	if triple.String() != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, triple.String())
	}
}

func TestTriple_Equals(t *testing.T) {
	s := NewNamedNode("http://example.org/s")
	p := NewNamedNode("http://example.org/p")

	t1 := NewTriple(s, p, NewLiteralWithLanguage("x", "EN"))
	t2 := NewTriple(NewNamedNode(s.IRI), NewNamedNode(p.IRI), NewLiteralWithLanguage("x", "en"))
	t3 := NewTriple(s, p, NewLiteral("x"))

	if !t1.Equals(t2) {
		t.Error("Expected triples with equal terms to be equal")
	}
	if t1.Equals(t3) {
		t.Error("Expected triples with different objects to differ")
	}
	if t1.Equals(nil) {
		t.Error("Triple should not equal nil")
	}
	if t1.S() != s || t1.P() != p {
		t.Error("accessors should return the stored terms")
	}
}

// ===== Typed Literal Constructor Tests =====

func TestNewIntegerLiteral(t *testing.T) {
	lit := NewIntegerLiteral(42)

	if lit.Value != "42" {
		t.Errorf("Expected value '42', got '%s'", lit.Value)
	}

	if lit.Datatype == nil || lit.Datatype.IRI != XSDInteger.IRI {
		t.Errorf("Expected datatype %s", XSDInteger.IRI)
	}
}

func TestNewDoubleLiteral(t *testing.T) {
	lit := NewDoubleLiteral(3.14)

	if lit.Value != "3.14" {
		t.Errorf("Expected value '3.14', got '%s'", lit.Value)
	}

	if lit.Datatype == nil || lit.Datatype.IRI != XSDDouble.IRI {
		t.Errorf("Expected datatype %s", XSDDouble.IRI)
	}
}

func TestNewBooleanLiteral(t *testing.T) {
	litTrue := NewBooleanLiteral(true)
	litFalse := NewBooleanLiteral(false)

	if litTrue.Value != "true" {
		t.Errorf("Expected value 'true', got '%s'", litTrue.Value)
	}

	if litFalse.Value != "false" {
		t.Errorf("Expected value 'false', got '%s'", litFalse.Value)
	}

	if litTrue.Datatype == nil || litTrue.Datatype.IRI != XSDBoolean.IRI {
		t.Errorf("Expected datatype %s", XSDBoolean.IRI)
	}
}

func TestNewDateTimeLiteral(t *testing.T) {
	testTime := time.Date(2025, 1, 1, 13, 0, 0, 0, time.FixedZone("CET", 3600))
	lit := NewDateTimeLiteral(testTime)

	if lit.Value != "2025-01-01T12:00:00Z" {
		t.Errorf("Expected value '2025-01-01T12:00:00Z', got '%s'", lit.Value)
	}

	if lit.Datatype == nil || lit.Datatype.IRI != XSDDateTime.IRI {
		t.Errorf("Expected datatype %s", XSDDateTime.IRI)
	}
}

func TestTermTypeString(t *testing.T) {
	cases := map[TermType]string{
		TermTypeNamedNode:     "iri",
		TermTypeBlankNode:     "bnode",
		TermTypeLiteral:       "literal",
		TermTypeVariable:      "variable",
		TermTypeDoubleLiteral: "termtype(9)",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("TermType(%d).String() = %q, want %q", byte(kind), got, want)
		}
	}
}

// ===== Edge Case Tests =====

func TestLiteral_EmptyString(t *testing.T) {
	lit := NewLiteral("")
	if lit.Value != "" {
		t.Errorf("Expected empty string, got '%s'", lit.Value)
	}
	if lit.String() != "\"\"" {
		t.Errorf("Expected \"\", got %s", lit.String())
	}
}

func TestNamedNode_EmptyIRI(t *testing.T) {
	node := NewNamedNode("")
	if node.IRI != "" {
		t.Errorf("Expected empty IRI, got '%s'", node.IRI)
	}
	if node.String() != "<>" {
		t.Errorf("Expected <>, got %s", node.String())
	}
}
