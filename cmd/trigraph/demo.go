package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aleksaelezovic/trigraph/pkg/graph"
	"github.com/aleksaelezovic/trigraph/pkg/rdf"
)

const (
	exNS   = "http://example.org/"
	foafNS = "http://xmlns.com/foaf/0.1/"
)

func demoTriples() []*rdf.Triple {
	alice := rdf.NewNamedNode(exNS + "alice")
	bob := rdf.NewNamedNode(exNS + "bob")
	carol := rdf.NewNamedNode(exNS + "carol")
	person := rdf.NewNamedNode(foafNS + "Person")

	knows := rdf.NewNamedNode(foafNS + "knows")
	name := rdf.NewNamedNode(foafNS + "name")
	age := rdf.NewNamedNode(foafNS + "age")

	return []*rdf.Triple{
		rdf.NewTriple(alice, rdf.RDFType, person),
		rdf.NewTriple(alice, name, rdf.NewLiteral("Alice")),
		rdf.NewTriple(alice, age, rdf.NewIntegerLiteral(30)),
		rdf.NewTriple(alice, knows, bob),

		rdf.NewTriple(bob, rdf.RDFType, person),
		rdf.NewTriple(bob, name, rdf.NewLiteral("Bob")),
		rdf.NewTriple(bob, age, rdf.NewIntegerLiteral(25)),
		rdf.NewTriple(bob, knows, carol),

		rdf.NewTriple(carol, rdf.RDFType, person),
		rdf.NewTriple(carol, name, rdf.NewLiteral("Carol")),
		rdf.NewTriple(carol, rdf.RDFSLabel, rdf.NewLiteralWithLanguage("Carol", "en")),
	}
}

func newDemoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Load sample data and run every accessor against it",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.OutOrStdout(), a.graph)
		}),
	}
}

func runDemo(w io.Writer, g graph.MutableGraph) error {
	triples := demoTriples()
	inserted, err := graph.InsertAll(g, triples)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Inserted %d of %d sample triples\n", inserted, len(triples))

	alice := rdf.NewNamedNode(exNS + "alice")
	bob := rdf.NewNamedNode(exNS + "bob")
	person := rdf.NewNamedNode(foafNS + "Person")
	knows := rdf.NewNamedNode(foafNS + "knows")

	queries := []struct {
		title string
		hint  graph.Hint
		open  func() (graph.TripleIterator, error)
	}{
		{"everything", graph.HintOf(g), g.Iter},
		{"about alice", graph.HintForS(g, alice),
			func() (graph.TripleIterator, error) { return graph.IterForS(g, alice) }},
		{"with predicate foaf:knows", graph.HintForP(g, knows),
			func() (graph.TripleIterator, error) { return graph.IterForP(g, knows) }},
		{"pointing at bob", graph.HintForO(g, bob),
			func() (graph.TripleIterator, error) { return graph.IterForO(g, bob) }},
		{"who alice knows", graph.HintForSP(g, alice, knows),
			func() (graph.TripleIterator, error) { return graph.IterForSP(g, alice, knows) }},
		{"alice to bob", graph.HintForSO(g, alice, bob),
			func() (graph.TripleIterator, error) { return graph.IterForSO(g, alice, bob) }},
		{"every person", graph.HintForPO(g, rdf.RDFType, person),
			func() (graph.TripleIterator, error) { return graph.IterForPO(g, rdf.RDFType, person) }},
		{"alice knows bob", graph.HintForSPO(g, alice, knows, bob),
			func() (graph.TripleIterator, error) { return graph.IterForSPO(g, alice, knows, bob) }},
	}

	for _, q := range queries {
		fmt.Fprintf(w, "\n== %s (hint %s)\n", q.title, q.hint)
		it, err := q.open()
		if err != nil {
			return err
		}
		if _, err := printTriples(w, it); err != nil {
			return err
		}
	}

	literals := graph.OfType(rdf.TermTypeLiteral)
	fmt.Fprintf(w, "\n== literal objects of subjects other than alice (hint %s)\n",
		graph.HintMatching(g, graph.Not(graph.Exactly(alice)), graph.Any(), literals))
	it, err := graph.IterMatching(g, graph.Not(graph.Exactly(alice)), graph.Any(), literals)
	if err != nil {
		return err
	}
	if _, err := printTriples(w, it); err != nil {
		return err
	}

	ok, err := graph.Contains(g, alice, knows, bob)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\ncontains alice knows bob: %t\n", ok)
	return nil
}
