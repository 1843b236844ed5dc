// Package testutil provides deterministic sentence builders for tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nlpforge/gobart/internal/graph"
)

// TokenSpec describes one token of a test sentence. Head is the 1-based ID
// of the governor (0 for the root) and Rel the tree relation.
type TokenSpec struct {
	Word   string
	Lemma  string
	Tag    string
	Head   int
	Rel    string
	Entity string
}

// Sentence builds a graph from token specs in sentence order. Token IDs are
// assigned 1..n. Lemma defaults to Word when empty.
func Sentence(t *testing.T, specs ...TokenSpec) *graph.Graph {
	t.Helper()

	tokens := make([]*graph.Token, len(specs))
	var edges []graph.Edge
	for i, spec := range specs {
		lemma := spec.Lemma
		if lemma == "" {
			lemma = spec.Word
		}
		tokens[i] = &graph.Token{
			ID:     i + 1,
			Word:   spec.Word,
			Lemma:  lemma,
			Tag:    spec.Tag,
			Entity: spec.Entity,
		}
		if spec.Head != 0 {
			edges = append(edges, graph.Edge{
				Child:  i + 1,
				Parent: spec.Head,
				Label:  graph.Label{Relation: spec.Rel},
			})
		}
	}

	g, err := graph.New(tokens, edges)
	require.NoError(t, err)
	return g
}
