package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlpforge/gobart/internal/graph"
	"github.com/nlpforge/gobart/internal/match"
	"github.com/nlpforge/gobart/internal/rules"
	"github.com/nlpforge/gobart/internal/testutil"
)

// applyCatalog runs the full catalog over the graph until nothing changes,
// mirroring the rewriter's fixpoint loop.
func applyCatalog(t *testing.T, g *graph.Graph, version int) {
	t.Helper()
	catalog, err := rules.Build(version)
	require.NoError(t, err)
	for {
		before := g.Revision()
		for _, r := range catalog {
			for _, b := range match.Find(g, r.Pattern) {
				r.Apply(g, b)
			}
		}
		if g.Revision() == before {
			return
		}
	}
}

func hasEdge(g *graph.Graph, child, parent int, want graph.Label) bool {
	for _, l := range g.LabelsBetween(child, parent) {
		if l == want {
			return true
		}
	}
	return false
}

func relationsBetween(g *graph.Graph, child, parent int) []string {
	labels := g.LabelsBetween(child, parent)
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = l.Relation
	}
	return out
}

func TestBuild_UnknownVersion(t *testing.T) {
	_, err := rules.Build(3)
	assert.Error(t, err)
}

func TestNames_OrderAndVersionDifferences(t *testing.T) {
	v1, err := rules.Names(1)
	require.NoError(t, err)
	v2, err := rules.Names(2)
	require.NoError(t, err)

	assert.Contains(t, v1, "extra_of_prep_alteration")
	assert.NotContains(t, v2, "extra_of_prep_alteration")

	// Multi-word preposition collapsing must precede preposition
	// specialization, which must precede the of-compound heuristic.
	idx := make(map[string]int, len(v1))
	for i, name := range v1 {
		idx[name] = i
	}
	assert.Less(t, idx["eudpp_process_simple_2wp"], idx["eud_prep_patterns"])
	assert.Less(t, idx["eud_prep_patterns"], idx["extra_of_prep_alteration"])
}

func TestPassiveAgentAndAlternation(t *testing.T) {
	// "The cake was eaten by John"
	g := testutil.Sentence(t,
		testutil.TokenSpec{Word: "The", Tag: "DT", Head: 2, Rel: "det"},
		testutil.TokenSpec{Word: "cake", Tag: "NN", Head: 4, Rel: "nsubjpass"},
		testutil.TokenSpec{Word: "was", Lemma: "be", Tag: "VBD", Head: 4, Rel: "auxpass"},
		testutil.TokenSpec{Word: "eaten", Lemma: "eat", Tag: "VBN"},
		testutil.TokenSpec{Word: "by", Tag: "IN", Head: 6, Rel: "case"},
		testutil.TokenSpec{Word: "John", Tag: "NNP", Head: 4, Rel: "nmod"},
	)
	applyCatalog(t, g, 1)

	// The by-phrase is specialized to an agent.
	assert.True(t, hasEdge(g, 6, 4, graph.Label{Relation: "nmod:agent", Src: "eud"}))
	// The agent specialization preempts the generic nmod:by.
	assert.NotContains(t, relationsBetween(g, 6, 4), "nmod:by")
	// The original tree edge survives.
	assert.True(t, hasEdge(g, 6, 4, graph.Label{Relation: "nmod"}))

	// Active-voice alternation: cake is also the object, John also the
	// subject.
	assert.True(t, hasEdge(g, 2, 4, graph.Label{Relation: "dobj", Src: "extra"}))
	assert.True(t, hasEdge(g, 6, 4, graph.Label{Relation: "nsubj", Src: "extra"}))
}

func TestPassiveAlternation_NoAgentWithoutBy(t *testing.T) {
	// "The cake was eaten at noon" - the oblique is temporal, not an agent.
	g := testutil.Sentence(t,
		testutil.TokenSpec{Word: "The", Tag: "DT", Head: 2, Rel: "det"},
		testutil.TokenSpec{Word: "cake", Tag: "NN", Head: 4, Rel: "nsubjpass"},
		testutil.TokenSpec{Word: "was", Lemma: "be", Tag: "VBD", Head: 4, Rel: "auxpass"},
		testutil.TokenSpec{Word: "eaten", Lemma: "eat", Tag: "VBN"},
		testutil.TokenSpec{Word: "at", Tag: "IN", Head: 6, Rel: "case"},
		testutil.TokenSpec{Word: "noon", Tag: "NN", Head: 4, Rel: "nmod"},
	)
	applyCatalog(t, g, 1)

	assert.True(t, hasEdge(g, 2, 4, graph.Label{Relation: "dobj", Src: "extra"}))
	assert.True(t, hasEdge(g, 6, 4, graph.Label{Relation: "nmod:at", Src: "eud"}))
	assert.NotContains(t, relationsBetween(g, 6, 4), "nsubj")
}

func TestConjunctionRules(t *testing.T) {
	// "John ate and drank"
	g := testutil.Sentence(t,
		testutil.TokenSpec{Word: "John", Tag: "NNP", Head: 2, Rel: "nsubj"},
		testutil.TokenSpec{Word: "ate", Lemma: "eat", Tag: "VBD"},
		testutil.TokenSpec{Word: "and", Tag: "CC", Head: 2, Rel: "cc"},
		testutil.TokenSpec{Word: "drank", Lemma: "drink", Tag: "VBD", Head: 2, Rel: "conj"},
	)
	applyCatalog(t, g, 1)

	// The conjunction is specialized with the coordinator's lemma.
	assert.True(t, hasEdge(g, 4, 2, graph.Label{Relation: "conj:and", Src: "eud"}))
	// The shared subject is propagated to the second conjunct.
	assert.True(t, hasEdge(g, 1, 4, graph.Label{Relation: "nsubj", Src: "eud"}))
}

func TestHeadsOfConjuncts(t *testing.T) {
	// "prices and sales fell": both conjuncts are subjects of the verb.
	g := testutil.Sentence(t,
		testutil.TokenSpec{Word: "prices", Tag: "NNS", Head: 4, Rel: "nsubj"},
		testutil.TokenSpec{Word: "and", Tag: "CC", Head: 1, Rel: "cc"},
		testutil.TokenSpec{Word: "sales", Tag: "NNS", Head: 1, Rel: "conj"},
		testutil.TokenSpec{Word: "fell", Lemma: "fall", Tag: "VBD"},
	)
	applyCatalog(t, g, 1)

	assert.True(t, hasEdge(g, 3, 4, graph.Label{Relation: "nsubj", Src: "eud"}))
	// The conjunction relation itself is never propagated.
	assert.NotContains(t, relationsBetween(g, 3, 4), "conj")
	assert.NotContains(t, relationsBetween(g, 3, 4), "conj:and")
}

func TestTwoWordPreposition(t *testing.T) {
	// "according to reports prices fell"
	g := testutil.Sentence(t,
		testutil.TokenSpec{Word: "according", Tag: "VBG", Head: 3, Rel: "case"},
		testutil.TokenSpec{Word: "to", Tag: "TO", Head: 1, Rel: "mwe"},
		testutil.TokenSpec{Word: "reports", Tag: "NNS", Head: 5, Rel: "nmod"},
		testutil.TokenSpec{Word: "prices", Tag: "NNS", Head: 5, Rel: "nsubj"},
		testutil.TokenSpec{Word: "fell", Lemma: "fall", Tag: "VBD"},
	)
	applyCatalog(t, g, 1)

	assert.True(t, hasEdge(g, 3, 5, graph.Label{Relation: "nmod:according_to", Src: "eudpp"}))
	// The collapsed form preempts the one-word specialization.
	assert.NotContains(t, relationsBetween(g, 3, 5), "nmod:according")
}

func TestTwoWordPreposition_SentenceInitial(t *testing.T) {
	// "According to reports prices fell" - lexicon lookup must not be
	// defeated by sentence-initial capitalization.
	g := testutil.Sentence(t,
		testutil.TokenSpec{Word: "According", Lemma: "according", Tag: "VBG", Head: 3, Rel: "case"},
		testutil.TokenSpec{Word: "to", Tag: "TO", Head: 1, Rel: "mwe"},
		testutil.TokenSpec{Word: "reports", Tag: "NNS", Head: 5, Rel: "nmod"},
		testutil.TokenSpec{Word: "prices", Tag: "NNS", Head: 5, Rel: "nsubj"},
		testutil.TokenSpec{Word: "fell", Lemma: "fall", Tag: "VBD"},
	)
	applyCatalog(t, g, 1)

	assert.True(t, hasEdge(g, 3, 5, graph.Label{Relation: "nmod:according_to", Src: "eudpp"}))
}

func TestThreeWordPreposition(t *testing.T) {
	// "he stood in front of me"
	g := testutil.Sentence(t,
		testutil.TokenSpec{Word: "he", Tag: "PRP", Head: 2, Rel: "nsubj"},
		testutil.TokenSpec{Word: "stood", Lemma: "stand", Tag: "VBD"},
		testutil.TokenSpec{Word: "in", Tag: "IN", Head: 4, Rel: "case"},
		testutil.TokenSpec{Word: "front", Tag: "NN", Head: 2, Rel: "nmod"},
		testutil.TokenSpec{Word: "of", Tag: "IN", Head: 6, Rel: "case"},
		testutil.TokenSpec{Word: "me", Tag: "PRP", Head: 4, Rel: "nmod"},
	)
	applyCatalog(t, g, 1)

	assert.True(t, hasEdge(g, 6, 2, graph.Label{Relation: "nmod:in_front_of", Src: "eudpp"}))
}

func TestPrepPatterns_V2Vocabulary(t *testing.T) {
	// "she slept in Paris" with UD v2 relations.
	g := testutil.Sentence(t,
		testutil.TokenSpec{Word: "she", Tag: "PRP", Head: 2, Rel: "nsubj"},
		testutil.TokenSpec{Word: "slept", Lemma: "sleep", Tag: "VBD"},
		testutil.TokenSpec{Word: "in", Tag: "IN", Head: 4, Rel: "case"},
		testutil.TokenSpec{Word: "Paris", Tag: "NNP", Head: 2, Rel: "obl"},
	)
	applyCatalog(t, g, 2)

	assert.True(t, hasEdge(g, 4, 2, graph.Label{Relation: "obl:in", Src: "eud"}))
}

func TestOfPrepAlteration(t *testing.T) {
	// "union of states"
	g := testutil.Sentence(t,
		testutil.TokenSpec{Word: "union", Tag: "NN"},
		testutil.TokenSpec{Word: "of", Tag: "IN", Head: 3, Rel: "case"},
		testutil.TokenSpec{Word: "states", Tag: "NNS", Head: 1, Rel: "nmod"},
	)
	applyCatalog(t, g, 1)

	assert.True(t, hasEdge(g, 3, 1, graph.Label{Relation: "nmod:of", Src: "eud"}))
	assert.True(t, hasEdge(g, 3, 1, graph.Label{Relation: "compound", Src: "extra"}))
}

func TestAdvclPropagation_MarksUncertain(t *testing.T) {
	// "he left while talking"
	g := testutil.Sentence(t,
		testutil.TokenSpec{Word: "he", Tag: "PRP", Head: 2, Rel: "nsubj"},
		testutil.TokenSpec{Word: "left", Lemma: "leave", Tag: "VBD"},
		testutil.TokenSpec{Word: "while", Tag: "IN", Head: 4, Rel: "mark"},
		testutil.TokenSpec{Word: "talking", Lemma: "talk", Tag: "VBG", Head: 2, Rel: "advcl"},
	)
	applyCatalog(t, g, 1)

	assert.True(t, hasEdge(g, 1, 4, graph.Label{Relation: "nsubj", Src: "extra", Uncertain: true}))
}

func TestCopulaReconstruction(t *testing.T) {
	// "Bill is big"
	g := testutil.Sentence(t,
		testutil.TokenSpec{Word: "Bill", Tag: "NNP", Head: 3, Rel: "nsubj"},
		testutil.TokenSpec{Word: "is", Lemma: "be", Tag: "VBZ", Head: 3, Rel: "cop"},
		testutil.TokenSpec{Word: "big", Tag: "JJ"},
	)
	applyCatalog(t, g, 1)

	// Exactly one copy of the copula is inserted, even though the optional
	// subject slot yields more than one binding.
	require.Equal(t, 4, g.Len())
	state := g.Token(4)
	require.NotNil(t, state)
	assert.Equal(t, 2, state.CopyOf)
	assert.Equal(t, "is", state.Word)

	// The copy heads the former predicate and shares its subject; having no
	// adopted governors, it is the new root.
	assert.True(t, hasEdge(g, 3, 4, graph.Label{Relation: "xcomp", Src: "extra"}))
	assert.True(t, hasEdge(g, 1, 4, graph.Label{Relation: "nsubj", Src: "extra"}))
	assert.True(t, g.IsRoot(4))
	assert.False(t, g.IsRoot(3))
	assert.Empty(t, relationsBetween(g, 4, 4), "no self loops")
}

func TestAclPropagation(t *testing.T) {
	// "John has a plan to win"
	g := testutil.Sentence(t,
		testutil.TokenSpec{Word: "John", Tag: "NNP", Head: 2, Rel: "nsubj"},
		testutil.TokenSpec{Word: "has", Lemma: "have", Tag: "VBZ"},
		testutil.TokenSpec{Word: "a", Tag: "DT", Head: 4, Rel: "det"},
		testutil.TokenSpec{Word: "plan", Tag: "NN", Head: 2, Rel: "dobj"},
		testutil.TokenSpec{Word: "to", Tag: "TO", Head: 6, Rel: "mark"},
		testutil.TokenSpec{Word: "win", Tag: "VB", Head: 4, Rel: "acl"},
	)
	applyCatalog(t, g, 1)

	assert.True(t, hasEdge(g, 1, 6, graph.Label{Relation: "nsubj", Src: "extra"}))
}

func TestCatalogConvergesOnPlainSentence(t *testing.T) {
	g := testutil.Sentence(t,
		testutil.TokenSpec{Word: "dogs", Lemma: "dog", Tag: "NNS", Head: 2, Rel: "nsubj"},
		testutil.TokenSpec{Word: "bark", Tag: "VBP"},
	)
	before := g.Clone()
	applyCatalog(t, g, 1)
	assert.True(t, g.Equal(before), "no rule fires on a bare subject-verb pair")
}
