package match_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlpforge/gobart/internal/match"
	"github.com/nlpforge/gobart/internal/pattern"
	"github.com/nlpforge/gobart/internal/testutil"
)

func TestFind_SubjectVerb(t *testing.T) {
	// "dogs bark": subj -> verb via nsubj.
	g := testutil.Sentence(t,
		testutil.TokenSpec{Word: "dogs", Lemma: "dog", Tag: "NNS", Head: 2, Rel: "nsubj"},
		testutil.TokenSpec{Word: "bark", Tag: "VBP"},
	)

	p := pattern.MustFull(
		pattern.Slots(
			pattern.NewSlot("verb", pattern.WithField(pattern.MustField(pattern.FieldTag, "/VB/"))),
			pattern.NewSlot("subj"),
		),
		pattern.Edges(pattern.NewEdge("subj", "verb", pattern.MustHasLabelFromList("/nsubj/"))),
	)

	bindings := match.Find(g, p)
	require.Len(t, bindings, 1)

	verb, ok := bindings[0].Token("verb")
	require.True(t, ok)
	assert.Equal(t, 2, verb)
	subj, ok := bindings[0].Token("subj")
	require.True(t, ok)
	assert.Equal(t, 1, subj)

	assert.Equal(t, []string{"nsubj"}, bindings[0].EdgeLabels("subj", "verb"))
	assert.Equal(t, "{subj=1 verb=2}", bindings[0].String())
}

func TestFind_NoMatch(t *testing.T) {
	g := testutil.Sentence(t,
		testutil.TokenSpec{Word: "go", Tag: "VB"},
	)
	p := pattern.MustFull(
		pattern.Slots(pattern.NewSlot("subj")),
		pattern.Edges(pattern.NewEdge("subj", "subj", pattern.MustHasLabelFromList("nsubj"))),
	)
	assert.Empty(t, match.Find(g, p))
}

func TestFind_IsPureAndRepeatable(t *testing.T) {
	g := testutil.Sentence(t,
		testutil.TokenSpec{Word: "dogs", Tag: "NNS", Head: 2, Rel: "nsubj"},
		testutil.TokenSpec{Word: "bark", Tag: "VBP"},
	)
	snapshot := g.Clone()

	p := pattern.MustFull(
		pattern.Slots(pattern.NewSlot("subj", pattern.WithIncoming(pattern.MustHasLabelFromList("nsubj")))),
	)

	first := match.Find(g, p)
	second := match.Find(g, p)
	assert.Equal(t, first, second)
	assert.True(t, g.Equal(snapshot), "matching must not mutate the graph")
}

func TestFind_BindingsAreInjective(t *testing.T) {
	// Two distinct slots with identical constraints must bind distinct
	// tokens, so a two-noun sentence yields the two orderings and nothing
	// else.
	g := testutil.Sentence(t,
		testutil.TokenSpec{Word: "cats", Tag: "NNS", Head: 3, Rel: "nsubj"},
		testutil.TokenSpec{Word: "dogs", Tag: "NNS", Head: 3, Rel: "obj"},
		testutil.TokenSpec{Word: "chase", Tag: "VBP"},
	)

	p := pattern.MustFull(
		pattern.Slots(
			pattern.NewSlot("n1", pattern.WithField(pattern.MustField(pattern.FieldTag, "NNS"))),
			pattern.NewSlot("n2", pattern.WithField(pattern.MustField(pattern.FieldTag, "NNS"))),
		),
	)

	bindings := match.Find(g, p)
	require.Len(t, bindings, 2)
	for _, b := range bindings {
		n1, _ := b.Token("n1")
		n2, _ := b.Token("n2")
		assert.NotEqual(t, n1, n2)
	}
}

func TestFind_OptionalSlot(t *testing.T) {
	p := pattern.MustFull(
		pattern.Slots(
			pattern.NewSlot("verb", pattern.WithField(pattern.MustField(pattern.FieldTag, "/VB/"))),
			pattern.NewSlot("agent", pattern.Optional()),
		),
		pattern.Edges(pattern.NewEdge("agent", "verb", pattern.MustHasLabelFromList("/nmod:agent/"))),
	)

	t.Run("absent agent still matches", func(t *testing.T) {
		g := testutil.Sentence(t,
			testutil.TokenSpec{Word: "eaten", Tag: "VBN"},
		)
		bindings := match.Find(g, p)
		require.Len(t, bindings, 1)
		_, bound := bindings[0].Token("agent")
		assert.False(t, bound)
	})

	t.Run("present agent is bound", func(t *testing.T) {
		g := testutil.Sentence(t,
			testutil.TokenSpec{Word: "eaten", Tag: "VBN"},
			testutil.TokenSpec{Word: "wolves", Tag: "NNS", Head: 1, Rel: "nmod:agent"},
		)
		bindings := match.Find(g, p)

		// One binding with the agent bound, one where the optional slot is
		// skipped outright.
		require.Len(t, bindings, 2)
		var boundCount int
		for _, b := range bindings {
			if id, ok := b.Token("agent"); ok {
				boundCount++
				assert.Equal(t, 2, id)
			}
		}
		assert.Equal(t, 1, boundCount)
	})
}

func TestFind_RootConstraint(t *testing.T) {
	g := testutil.Sentence(t,
		testutil.TokenSpec{Word: "dogs", Tag: "NNS", Head: 2, Rel: "nsubj"},
		testutil.TokenSpec{Word: "bark", Tag: "VBP"},
	)

	p := pattern.MustFull(pattern.Slots(pattern.NewSlot("r", pattern.IsRoot(true))))
	bindings := match.Find(g, p)
	require.Len(t, bindings, 1)
	id, _ := bindings[0].Token("r")
	assert.Equal(t, 2, id)

	notRoot := pattern.MustFull(pattern.Slots(pattern.NewSlot("r", pattern.IsRoot(false))))
	bindings = match.Find(g, notRoot)
	require.Len(t, bindings, 1)
	id, _ = bindings[0].Token("r")
	assert.Equal(t, 1, id)
}

func TestFind_NoCaptureSlotOmittedFromBinding(t *testing.T) {
	g := testutil.Sentence(t,
		testutil.TokenSpec{Word: "dogs", Tag: "NNS", Head: 2, Rel: "nsubj"},
		testutil.TokenSpec{Word: "bark", Tag: "VBP"},
	)

	p := pattern.MustFull(
		pattern.Slots(
			pattern.NewSlot("subj"),
			pattern.NewSlot("verb", pattern.NoCapture()),
		),
		pattern.Edges(pattern.NewEdge("subj", "verb", pattern.MustHasLabelFromList("nsubj"))),
	)

	bindings := match.Find(g, p)
	require.Len(t, bindings, 1)
	_, ok := bindings[0].Token("verb")
	assert.False(t, ok)
	_, ok = bindings[0].Token("subj")
	assert.True(t, ok)
}

func TestFind_DistanceConstraint(t *testing.T) {
	g := testutil.Sentence(t,
		testutil.TokenSpec{Word: "according", Tag: "VBG", Head: 3, Rel: "case"},
		testutil.TokenSpec{Word: "to", Tag: "TO", Head: 1, Rel: "mwe"},
		testutil.TokenSpec{Word: "reports", Tag: "NNS"},
	)

	adjacent := pattern.MustFull(
		pattern.Slots(
			pattern.NewSlot("w1", pattern.WithField(pattern.MustField(pattern.FieldWord, "according"))),
			pattern.NewSlot("w2", pattern.WithField(pattern.MustField(pattern.FieldWord, "to"))),
		),
		pattern.Distances(mustExact(t, "w1", "w2", 0)),
	)
	assert.Len(t, match.Find(g, adjacent), 1)

	gapped := pattern.MustFull(
		pattern.Slots(
			pattern.NewSlot("w1", pattern.WithField(pattern.MustField(pattern.FieldWord, "according"))),
			pattern.NewSlot("w2", pattern.WithField(pattern.MustField(pattern.FieldWord, "to"))),
		),
		pattern.Distances(mustExact(t, "w1", "w2", 1)),
	)
	assert.Empty(t, match.Find(g, gapped))
}

func TestFind_TupleConstraint(t *testing.T) {
	g := testutil.Sentence(t,
		testutil.TokenSpec{Word: "according", Tag: "VBG", Head: 3, Rel: "case"},
		testutil.TokenSpec{Word: "to", Tag: "TO", Head: 1, Rel: "mwe"},
		testutil.TokenSpec{Word: "reports", Tag: "NNS"},
	)

	p := pattern.MustFull(
		pattern.Slots(
			pattern.NewSlot("w1", pattern.WithOutgoing(pattern.MustHasLabelFromList("mwe"))),
			pattern.NewSlot("w2", pattern.WithIncoming(pattern.MustHasLabelFromList("mwe"))),
		),
		pattern.Edges(pattern.NewEdge("w2", "w1", pattern.MustHasLabelFromList("mwe"))),
		pattern.Tuples(pattern.NewTokenPair(pattern.WordSet("according_to"), "w1", "w2", true)),
	)
	require.Len(t, match.Find(g, p), 1)

	negated := pattern.MustFull(
		pattern.Slots(
			pattern.NewSlot("w1", pattern.WithOutgoing(pattern.MustHasLabelFromList("mwe"))),
			pattern.NewSlot("w2", pattern.WithIncoming(pattern.MustHasLabelFromList("mwe"))),
		),
		pattern.Edges(pattern.NewEdge("w2", "w1", pattern.MustHasLabelFromList("mwe"))),
		pattern.Tuples(pattern.NewTokenPair(pattern.WordSet("according_to"), "w1", "w2", false)),
	)
	assert.Empty(t, match.Find(g, negated))
}

func mustExact(t *testing.T, t1, t2 string, gap int) pattern.ExactDistance {
	t.Helper()
	d, err := pattern.NewExactDistance(t1, t2, gap)
	require.NoError(t, err)
	return d
}
