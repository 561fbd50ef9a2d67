package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	rdfType = "<http://www.w3.org/1999/02/22-rdf-syntax-ns#type>"
	exA     = "<http://example.org/a>"
	exB     = "<http://example.org/b>"
	exC     = "<http://example.org/C>"
)

// execute runs a fresh root command and returns what it wrote to stdout
// and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func badgerArgs(t *testing.T) []string {
	t.Helper()
	return []string{"--backend", "badger", "--db", t.TempDir(), "--log-level", "error"}
}

func TestCountEmpty(t *testing.T) {
	for _, backend := range []string{"memory", "indexed"} {
		t.Run(backend, func(t *testing.T) {
			out, _, err := execute(t, "", "--backend", backend, "count")
			require.NoError(t, err)
			assert.Equal(t, "0\n", out)
		})
	}
}

func TestBadgerPersistsAcrossCommands(t *testing.T) {
	base := badgerArgs(t)
	run := func(args ...string) string {
		t.Helper()
		out, _, err := execute(t, "", append(append([]string{}, base...), args...)...)
		require.NoError(t, err)
		return out
	}

	assert.Equal(t, "inserted\n", run("insert", exA, "rdf:type", exC))
	assert.Equal(t, "already present\n", run("insert", exA, rdfType, exC))
	assert.Equal(t, "inserted\n", run("insert", exB, "rdf:type", exC))
	assert.Equal(t, "inserted\n", run("insert", exA, "rdfs:label", `"A"@en`))
	assert.Equal(t, "3\n", run("count"))

	out := run("match", "-s", exA, "-p", "rdf:type")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, exA+" "+rdfType+" "+exC+" .", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "# 1 triples, sp pattern"), lines[1])

	assert.Equal(t, "removed\n", run("remove", exA, "rdf:type", exC))
	assert.Equal(t, "not present\n", run("remove", exA, "rdf:type", exC))
	assert.Equal(t, "removed 1 triples\n", run("remove-matching", "-p", "rdf:type"))
	assert.Equal(t, "1\n", run("count"))
}

func TestLoad(t *testing.T) {
	doc := exA + " " + rdfType + " " + exC + " .\n" +
		exB + " " + rdfType + " " + exC + " .\n" +
		exA + " " + rdfType + " " + exC + " .\n"

	t.Run("stdin into a set graph", func(t *testing.T) {
		out, _, err := execute(t, doc, "--backend", "indexed", "load", "-")
		require.NoError(t, err)
		assert.Equal(t, "-: 3 triples, 2 inserted, 1 duplicates\n", out)
	})

	t.Run("file into a multiset graph", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data.nt")
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

		out, _, err := execute(t, "", "--backend", "memory", "load", path)
		require.NoError(t, err)
		assert.Equal(t, path+": 3 triples, 3 inserted, 0 duplicates\n", out)
	})

	t.Run("syntax error", func(t *testing.T) {
		_, _, err := execute(t, "<http://example.org/a> <broken", "load", "-")
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := execute(t, "", "load", filepath.Join(t.TempDir(), "nope.nt"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read")
	})
}

func TestRetain(t *testing.T) {
	base := badgerArgs(t)
	doc := exA + " " + rdfType + " " + exC + " .\n" +
		exB + " " + rdfType + " " + exC + " .\n" +
		exA + ` <http://www.w3.org/2000/01/rdf-schema#label> "A" .` + "\n"

	_, _, err := execute(t, doc, append(append([]string{}, base...), "load", "-")...)
	require.NoError(t, err)

	out, _, err := execute(t, "", append(append([]string{}, base...), "retain", "-s", exA)...)
	require.NoError(t, err)
	assert.Equal(t, "removed 1 triples, 2 left\n", out)
}

func TestDemo(t *testing.T) {
	out, _, err := execute(t, "", "--backend", "indexed", "demo")
	require.NoError(t, err)

	assert.Contains(t, out, "Inserted 11 of 11 sample triples")
	assert.Contains(t, out, "== alice knows bob (hint [0, 1])")
	assert.Contains(t, out, "<http://example.org/alice> <http://xmlns.com/foaf/0.1/knows> <http://example.org/bob> .")
	assert.Contains(t, out, `<http://example.org/carol> <http://www.w3.org/2000/01/rdf-schema#label> "Carol"@en .`)
	assert.Contains(t, out, "contains alice knows bob: true")
}

func TestMetricsFlag(t *testing.T) {
	_, stderr, err := execute(t, "", "--backend", "indexed", "--metrics", "--log-level", "error", "demo")
	require.NoError(t, err)
	assert.Contains(t, stderr, "trigraph_graph_accessor_calls_total")
	assert.Contains(t, stderr, `accessor="iter_for_spo"`)
}

func TestInvalidInput(t *testing.T) {
	t.Run("unknown backend", func(t *testing.T) {
		_, _, err := execute(t, "", "--backend", "postgres", "count")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.backend")
	})

	t.Run("bad term", func(t *testing.T) {
		_, _, err := execute(t, "", "insert", "<http://example.org/a>", "nope:thing", exC)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid term")
	})

	t.Run("bad pattern", func(t *testing.T) {
		_, _, err := execute(t, "", "match", "-o", `"unterminated`)
		require.Error(t, err)
	})

	t.Run("wrong arity", func(t *testing.T) {
		_, _, err := execute(t, "", "insert", exA, exB)
		require.Error(t, err)
	})
}

func TestEnvironmentSelectsBackend(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRIGRAPH_STORAGE_BACKEND", "badger")
	t.Setenv("TRIGRAPH_STORAGE_PATH", dir)
	t.Setenv("TRIGRAPH_LOGGER_LEVEL", "error")

	_, _, err := execute(t, "", "insert", exA, "rdf:type", exC)
	require.NoError(t, err)

	out, _, err := execute(t, "", "count")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}
