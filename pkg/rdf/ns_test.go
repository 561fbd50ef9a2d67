package rdf

import "testing"

func TestNamespaces(t *testing.T) {
	tests := []struct {
		ns     *Namespace
		name   string
		iri    string
		member bool
	}{
		{RDF, "type", "http://www.w3.org/1999/02/22-rdf-syntax-ns#type", true},
		{RDF, "langString", "http://www.w3.org/1999/02/22-rdf-syntax-ns#langString", true},
		{RDFS, "subClassOf", "http://www.w3.org/2000/01/rdf-schema#subClassOf", true},
		{XSD, "nonNegativeInteger", "http://www.w3.org/2001/XMLSchema#nonNegativeInteger", true},
		{XSD, "madeUp", "http://www.w3.org/2001/XMLSchema#madeUp", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ns.Term(tt.name).IRI; got != tt.iri {
				t.Errorf("Term(%q) = %s, want %s", tt.name, got, tt.iri)
			}
			if got := tt.ns.Has(tt.name); got != tt.member {
				t.Errorf("Has(%q) = %v, want %v", tt.name, got, tt.member)
			}
		})
	}

	if RDF.Term("type") != RDFType {
		t.Error("declared terms should be shared, not rebuilt")
	}
	if XSD.Term("integer").IRI != XSDInteger.IRI || XSD.Term("string").IRI != XSDString.IRI {
		t.Error("XSD table disagrees with the datatype constants")
	}
	if RDF.Names() != 18 || RDFS.Names() != 15 {
		t.Errorf("unexpected table sizes: rdf=%d rdfs=%d", RDF.Names(), RDFS.Names())
	}
}

func TestExpandPrefixed(t *testing.T) {
	iri, ok := ExpandPrefixed("rdfs:label", Prefixes)
	if !ok || iri != RDFSLabel.IRI {
		t.Errorf("ExpandPrefixed(rdfs:label) = %q, %v", iri, ok)
	}
	if _, ok := ExpandPrefixed("foaf:name", Prefixes); ok {
		t.Error("unknown prefix should not expand")
	}
	if _, ok := ExpandPrefixed("label", Prefixes); ok {
		t.Error("name without colon should not expand")
	}
}
