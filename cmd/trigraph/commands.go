package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aleksaelezovic/trigraph/pkg/graph"
	"github.com/aleksaelezovic/trigraph/pkg/rdf"
)

// patternFlags holds the -s/-p/-o options of the matching commands. An
// empty flag matches any term.
type patternFlags struct {
	subject, predicate, object string
}

func (f *patternFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.subject, "subject", "s", "", "subject term")
	cmd.Flags().StringVarP(&f.predicate, "predicate", "p", "", "predicate term")
	cmd.Flags().StringVarP(&f.object, "object", "o", "", "object term")
}

func (f *patternFlags) matchers() (graph.TermMatcher, graph.TermMatcher, graph.TermMatcher, error) {
	var ms [3]graph.TermMatcher
	for i, raw := range [3]string{f.subject, f.predicate, f.object} {
		if raw == "" {
			ms[i] = graph.Any()
			continue
		}
		term, err := rdf.ParseTerm(raw)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("invalid term %q: %w", raw, err)
		}
		ms[i] = graph.Exactly(term)
	}
	return ms[0], ms[1], ms[2], nil
}

func parseTriple(args []string) (*rdf.Triple, error) {
	var terms [3]rdf.Term
	for i, raw := range args {
		term, err := rdf.ParseTerm(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid term %q: %w", raw, err)
		}
		terms[i] = term
	}
	return rdf.NewTriple(terms[0], terms[1], terms[2]), nil
}

func printTriples(w io.Writer, it graph.TripleIterator) (int, error) {
	triples, err := graph.Collect(it)
	if err != nil {
		return 0, err
	}
	for _, t := range triples {
		fmt.Fprintln(w, rdf.CanonicalTriple(t))
	}
	return len(triples), nil
}

func newLoadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "load FILE...",
		Short: "Load N-Triples files (- reads stdin)",
		Args:  cobra.MinimumNArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				data, err := readInput(cmd, path)
				if err != nil {
					return err
				}
				triples, err := rdf.ParseNTriples(string(data))
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				inserted, err := graph.InsertAll(a.graph, triples)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				a.logger.Info("loaded file",
					zap.String("path", path),
					zap.Int("parsed", len(triples)),
					zap.Int("inserted", inserted))
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d triples, %d inserted, %d duplicates\n",
					path, len(triples), inserted, len(triples)-inserted)
			}
			return nil
		}),
	}
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path) // #nosec G304 - path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func newMatchCmd(a *app) *cobra.Command {
	var pattern patternFlags
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Print the triples matching a pattern",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			ms, mp, mo, err := pattern.matchers()
			if err != nil {
				return err
			}
			hint := graph.HintMatching(a.graph, ms, mp, mo)
			it, err := graph.IterMatching(a.graph, ms, mp, mo)
			if err != nil {
				return err
			}
			n, err := printTriples(cmd.OutOrStdout(), it)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %d triples, %s pattern, hint %s\n",
				n, graph.Shape(ms, mp, mo), hint)
			return nil
		}),
	}
	pattern.register(cmd)
	return cmd
}

func newInsertCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "insert S P O",
		Short: "Insert one triple",
		Args:  cobra.ExactArgs(3),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			t, err := parseTriple(args)
			if err != nil {
				return err
			}
			inserted, err := a.graph.Insert(t.Subject, t.Predicate, t.Object)
			if err != nil {
				return err
			}
			if inserted {
				fmt.Fprintln(cmd.OutOrStdout(), "inserted")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "already present")
			}
			return nil
		}),
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove S P O",
		Short: "Remove one triple",
		Args:  cobra.ExactArgs(3),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			t, err := parseTriple(args)
			if err != nil {
				return err
			}
			removed, err := a.graph.Remove(t.Subject, t.Predicate, t.Object)
			if err != nil {
				return err
			}
			if removed {
				fmt.Fprintln(cmd.OutOrStdout(), "removed")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "not present")
			}
			return nil
		}),
	}
}

func newRemoveMatchingCmd(a *app) *cobra.Command {
	var pattern patternFlags
	cmd := &cobra.Command{
		Use:   "remove-matching",
		Short: "Remove every triple matching a pattern",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			ms, mp, mo, err := pattern.matchers()
			if err != nil {
				return err
			}
			n, err := graph.RemoveMatching(a.graph, ms, mp, mo)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d triples\n", n)
			return nil
		}),
	}
	pattern.register(cmd)
	return cmd
}

func newRetainCmd(a *app) *cobra.Command {
	var pattern patternFlags
	cmd := &cobra.Command{
		Use:   "retain",
		Short: "Keep only the triples matching a pattern",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			ms, mp, mo, err := pattern.matchers()
			if err != nil {
				return err
			}
			before, err := graph.Len(a.graph)
			if err != nil {
				return err
			}
			if err := graph.Retain(a.graph, ms, mp, mo); err != nil {
				return err
			}
			after, err := graph.Len(a.graph)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d triples, %d left\n", before-after, after)
			return nil
		}),
	}
	pattern.register(cmd)
	return cmd
}

func newCountCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of triples",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			n, err := graph.Len(a.graph)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		}),
	}
}
