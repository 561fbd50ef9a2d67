package rdf

import "strings"

const (
	rdfPrefix  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	rdfsPrefix = "http://www.w3.org/2000/01/rdf-schema#"
	xsdPrefix  = "http://www.w3.org/2001/XMLSchema#"
)

// Namespace is a fixed IRI prefix with a table of well-known local names.
type Namespace struct {
	Prefix string
	names  map[string]*NamedNode
}

func newNamespace(prefix string, names ...string) *Namespace {
	ns := &Namespace{Prefix: prefix, names: make(map[string]*NamedNode, len(names))}
	for _, name := range names {
		ns.names[name] = NewNamedNode(prefix + name)
	}
	return ns
}

// Term returns the IRI for a local name. Names outside the table are still
// expanded against the prefix.
func (ns *Namespace) Term(name string) *NamedNode {
	if n, ok := ns.names[name]; ok {
		return n
	}
	return NewNamedNode(ns.Prefix + name)
}

// Has reports whether name is one of the namespace's declared terms.
func (ns *Namespace) Has(name string) bool {
	_, ok := ns.names[name]
	return ok
}

// Names returns the number of declared terms.
func (ns *Namespace) Names() int {
	return len(ns.names)
}

// Standard vocabularies.
var (
	RDF = newNamespace(rdfPrefix,
		// classes
		"Alt", "Bag", "List", "PlainLiteral", "Property", "Seq", "Statement",
		// datatypes
		"HTML", "langString", "XMLLiteral",
		// properties
		"first", "object", "predicate", "rest", "subject", "type", "value",
		// individuals
		"nil",
	)

	RDFS = newNamespace(rdfsPrefix,
		"Class", "Container", "ContainerMembershipProperty", "Datatype", "Literal", "Resource",
		"domain", "range", "subClassOf", "subPropertyOf",
		"comment", "isDefinedBy", "label", "member", "seeAlso",
	)

	XSD = newNamespace(xsdPrefix,
		"anyType", "anySimpleType",
		"duration", "dateTime", "time", "date",
		"gYearMonth", "gYear", "gMonthDay", "gDay", "gMonth",
		"boolean", "base64Binary", "hexBinary", "float", "double", "anyURI", "QName", "NOTATION",
		"string", "normalizedString", "token", "language", "Name", "NCName",
		"ID", "IDREF", "IDREFS", "ENTITY", "ENTITIES", "NMTOKEN", "NMTOKENS",
		"decimal", "integer", "nonPositiveInteger", "negativeInteger",
		"long", "int", "short", "byte",
		"nonNegativeInteger", "unsignedLong", "unsignedInt", "unsignedShort", "unsignedByte",
		"positiveInteger",
	)
)

// Frequently used terms.
var (
	RDFType    = RDF.Term("type")
	RDFSLabel  = RDFS.Term("label")
	RDFSDomain = RDFS.Term("domain")
	RDFSRange  = RDFS.Term("range")
)

// Prefixes maps the short names of the standard vocabularies to their IRIs.
var Prefixes = map[string]string{
	"rdf":  rdfPrefix,
	"rdfs": rdfsPrefix,
	"xsd":  xsdPrefix,
}

// ExpandPrefixed expands a prefixed name such as "rdf:type" using prefixes.
// It returns false if the prefix is unknown or name has no colon.
func ExpandPrefixed(name string, prefixes map[string]string) (string, bool) {
	idx := strings.Index(name, ":")
	if idx < 0 {
		return "", false
	}
	base, ok := prefixes[name[:idx]]
	if !ok {
		return "", false
	}
	return base + name[idx+1:], true
}
