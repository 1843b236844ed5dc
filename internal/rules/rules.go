// Package rules holds the fixed catalog of enhancement rules: named,
// categorized (pattern, action) pairs applied by the rewriter.
//
// The catalog is built once per configuration by Build and is immutable and
// read-only afterwards - there is no global registry. Catalog order is the
// application order and is deliberate: multi-word preposition collapsing
// runs before preposition specialization, which runs before the extra rules
// that key off specialized labels produced earlier in the same pass.
package rules

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nlpforge/gobart/internal/graph"
	"github.com/nlpforge/gobart/internal/match"
	"github.com/nlpforge/gobart/internal/pattern"
)

// Category partitions the catalog for selective enabling. The category name
// doubles as the provenance marker written onto added edges.
type Category string

const (
	// Baseline covers the standard Enhanced UD conversions.
	Baseline Category = "eud"
	// PlusPlus covers the Enhanced++ conversions.
	PlusPlus Category = "eudpp"
	// Extra covers the additional heuristic enhancements.
	Extra Category = "extra"
)

// Action edits the graph for one successful binding. In query mode actions
// are suppressed and bindings are recorded instead.
type Action func(g *graph.Graph, b match.Binding)

// Rule is one named, versioned, categorized rewrite.
type Rule struct {
	Name       string
	Category   Category
	NodeAdding bool // action may insert a new token
	Uncertain  bool // output is heuristic; edges are marked low-confidence
	Pattern    pattern.Full
	Apply      Action
}

// SupportedVersions lists the UD vocabulary generations the catalog knows.
var SupportedVersions = []int{1, 2}

// vocab selects the relation vocabulary of a UD generation.
type vocab struct {
	version  int
	nmod     string // plain oblique-nominal relation: "nmod" / "obl"
	mwe      string // multi-word marker: "mwe" / "fixed"
	subjpass string // passive-subject regex
	obj      string // direct object: "dobj" / "obj"
}

func vocabFor(version int) (vocab, error) {
	switch version {
	case 1:
		return vocab{version: 1, nmod: "nmod", mwe: "mwe", subjpass: "/^[nc]subjpass/", obj: "dobj"}, nil
	case 2:
		return vocab{version: 2, nmod: "obl", mwe: "fixed", subjpass: "/^[nc]subj:pass/", obj: "obj"}, nil
	default:
		return vocab{}, fmt.Errorf("unknown UD version %d (supported: 1, 2)", version)
	}
}

// Build constructs the ordered rule catalog for a UD version. Rules that
// exist only for the other vocabulary generation are omitted.
func Build(version int) ([]Rule, error) {
	v, err := vocabFor(version)
	if err != nil {
		return nil, err
	}
	catalog := []Rule{
		processSimple2WP(v),
		process3WP(v),
		passiveAgent(v),
		conjInfo(v),
		prepPatterns(v),
		headsOfConjuncts(v),
		subjOfConjoinedVerbs(v),
		passiveAlternation(v),
		aclPropagation(v),
		advclPropagation(v),
		copulaReconstruction(v),
	}
	if v.version == 1 {
		// nmod:of exists only in the v1 vocabulary; v2 spells it obl:of and
		// the compound heuristic does not carry over.
		catalog = append(catalog, ofPrepAlteration(v))
	}
	return catalog, nil
}

// Names returns the catalog rule names in application order.
func Names(version int) ([]string, error) {
	catalog, err := Build(version)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(catalog))
	for i, r := range catalog {
		names[i] = r.Name
	}
	return names, nil
}

// mustToken returns the bound token for a mandatory slot.
func mustToken(g *graph.Graph, b match.Binding, slot string) *graph.Token {
	id, _ := b.Token(slot)
	return g.Token(id)
}

// baseOf strips any subtype from a relation: "nmod:agent" -> "nmod".
func baseOf(rel string) string {
	if i := strings.IndexByte(rel, ':'); i >= 0 {
		return rel[:i]
	}
	return rel
}

// processSimple2WP collapses two-word prepositions ("according to", "due
// to") into a specialized relation on the governed nominal.
func processSimple2WP(v vocab) Rule {
	return Rule{
		Name:     "eudpp_process_simple_2wp",
		Category: PlusPlus,
		Pattern: pattern.MustFull(
			pattern.Slots(
				pattern.NewSlot("w1"),
				pattern.NewSlot("w2", pattern.WithOutgoing(pattern.MustHasNoLabel("/.*/"))),
				pattern.NewSlot("noun"),
				pattern.NewSlot("gov"),
			),
			pattern.Edges(
				pattern.NewEdge("w2", "w1", pattern.MustHasLabelFromList(v.mwe)),
				pattern.NewEdge("w1", "noun", pattern.MustHasLabelFromList("case", "mark")),
				pattern.NewEdge("noun", "gov", pattern.MustHasLabelFromList(v.nmod, "acl", "advcl")),
			),
			pattern.Distances(mustExact("w1", "w2", 0)),
			pattern.Tuples(pattern.NewTokenPair(twoWordPreps, "w1", "w2", true)),
		),
		Apply: func(g *graph.Graph, b match.Binding) {
			matched := b.EdgeLabels("noun", "gov")
			if len(matched) == 0 {
				return
			}
			w1 := mustToken(g, b, "w1")
			w2 := mustToken(g, b, "w2")
			noun, _ := b.Token("noun")
			gov, _ := b.Token("gov")
			spec := strings.ToLower(w1.Word + "_" + w2.Word)
			g.AddEdge(noun, gov, graph.Label{
				Relation: baseOf(matched[0]) + ":" + spec,
				Src:      string(PlusPlus),
			})
		},
	}
}

// process3WP collapses three-word prepositions ("in front of") the same way.
func process3WP(v vocab) Rule {
	return Rule{
		Name:     "eudpp_process_3wp",
		Category: PlusPlus,
		Pattern: pattern.MustFull(
			pattern.Slots(
				pattern.NewSlot("w1", pattern.WithOutgoing(pattern.MustHasNoLabel("/.*/"))),
				pattern.NewSlot("w2"),
				pattern.NewSlot("w3", pattern.WithOutgoing(pattern.MustHasNoLabel("/.*/"))),
				pattern.NewSlot("proxy"),
				pattern.NewSlot("gov"),
			),
			pattern.Edges(
				pattern.NewEdge("w2", "gov", pattern.MustHasLabelFromList(v.nmod, "acl", "advcl")),
				pattern.NewEdge("proxy", "w2", pattern.MustHasLabelFromList(v.nmod)),
				pattern.NewEdge("w1", "w2", pattern.MustHasLabelFromList("case")),
				pattern.NewEdge("w3", "proxy", pattern.MustHasLabelFromList("case", "mark")),
			),
			pattern.Distances(mustExact("w1", "w2", 0), mustExact("w2", "w3", 0)),
			pattern.Tuples(pattern.NewTokenTriplet(threeWordPreps, "w1", "w2", "w3", true)),
		),
		Apply: func(g *graph.Graph, b match.Binding) {
			matched := b.EdgeLabels("w2", "gov")
			if len(matched) == 0 {
				return
			}
			w1 := mustToken(g, b, "w1")
			w2 := mustToken(g, b, "w2")
			w3 := mustToken(g, b, "w3")
			proxy, _ := b.Token("proxy")
			gov, _ := b.Token("gov")
			spec := strings.ToLower(w1.Word + "_" + w2.Word + "_" + w3.Word)
			// The inner nominal attaches directly to the clause governor under
			// the collapsed preposition.
			g.AddEdge(proxy, gov, graph.Label{
				Relation: baseOf(matched[0]) + ":" + spec,
				Src:      string(PlusPlus),
			})
		},
	}
}

// passiveAgent specializes the by-phrase of a passive predicate to
// nmod:agent (obl:agent in v2).
func passiveAgent(v vocab) Rule {
	return Rule{
		Name:     "eud_passive_agent",
		Category: Baseline,
		Pattern: pattern.MustFull(
			pattern.Slots(
				pattern.NewSlot("predicate"),
				pattern.NewSlot("subjpass", pattern.NoCapture()),
				pattern.NewSlot("agent"),
				pattern.NewSlot("by", pattern.WithField(pattern.MustField(pattern.FieldWord, "/^(?i:by)$/"))),
			),
			pattern.Edges(
				pattern.NewEdge("subjpass", "predicate", pattern.MustHasLabelFromList(v.subjpass)),
				pattern.NewEdge("agent", "predicate", pattern.MustHasLabelFromList(v.nmod)),
				pattern.NewEdge("by", "agent", pattern.MustHasLabelFromList("case")),
			),
		),
		Apply: func(g *graph.Graph, b match.Binding) {
			agent, _ := b.Token("agent")
			predicate, _ := b.Token("predicate")
			g.AddEdge(agent, predicate, graph.Label{
				Relation: v.nmod + ":agent",
				Src:      string(Baseline),
			})
		},
	}
}

// conjInfo specializes conj edges with the coordinating conjunction's lemma:
// conj -> conj:and, conj:or, ...
func conjInfo(v vocab) Rule {
	// In v1 the cc attaches to the first conjunct (the governor); in v2 it
	// attaches to the following conjunct itself.
	ccParent := "gov"
	if v.version == 2 {
		ccParent = "conj"
	}
	return Rule{
		Name:     "eud_conj_info",
		Category: Baseline,
		Pattern: pattern.MustFull(
			pattern.Slots(
				pattern.NewSlot("gov"),
				pattern.NewSlot("conj"),
				pattern.NewSlot("cc"),
			),
			pattern.Edges(
				pattern.NewEdge("conj", "gov", pattern.MustHasLabelFromList("conj")),
				pattern.NewEdge("cc", ccParent, pattern.MustHasLabelFromList("cc")),
			),
		),
		Apply: func(g *graph.Graph, b match.Binding) {
			cc := mustToken(g, b, "cc")
			conj, _ := b.Token("conj")
			gov, _ := b.Token("gov")
			lemma := strings.ToLower(cc.Lemma)
			if lemma == "" {
				lemma = strings.ToLower(cc.Word)
			}
			g.AddEdge(conj, gov, graph.Label{
				Relation: "conj:" + lemma,
				Src:      string(Baseline),
			})
		},
	}
}

// prepPatterns specializes plain nmod/obl edges with the case marker's
// lemma: nmod -> nmod:in, obl -> obl:with, ...
func prepPatterns(v vocab) Rule {
	return Rule{
		Name:     "eud_prep_patterns",
		Category: Baseline,
		Pattern: pattern.MustFull(
			pattern.Slots(
				pattern.NewSlot("mod"),
				pattern.NewSlot("gov"),
				pattern.NewSlot("case"),
			),
			pattern.Edges(
				pattern.NewEdge("mod", "gov", pattern.MustHasLabelFromList(v.nmod)),
				pattern.NewEdge("case", "mod", pattern.MustHasLabelFromList("case", "mark")),
				// Skip pairs an earlier rule already specialized (passive
				// agent, multi-word prepositions).
				pattern.NewEdge("mod", "gov", pattern.MustHasNoLabel("/"+v.nmod+":/")),
			),
		),
		Apply: func(g *graph.Graph, b match.Binding) {
			marker := mustToken(g, b, "case")
			mod, _ := b.Token("mod")
			gov, _ := b.Token("gov")
			lemma := strings.ToLower(marker.Lemma)
			if lemma == "" {
				lemma = strings.ToLower(marker.Word)
			}
			g.AddEdge(mod, gov, graph.Label{
				Relation: v.nmod + ":" + lemma,
				Src:      string(Baseline),
			})
		},
	}
}

// headsOfConjuncts propagates a conjunct's governor relations to the other
// conjuncts: in "ate and drank", whatever governs "ate" also governs
// "drank". Runs to fixpoint across conjunction chains.
func headsOfConjuncts(v vocab) Rule {
	return Rule{
		Name:     "eud_heads_of_conjuncts",
		Category: Baseline,
		Pattern: pattern.MustFull(
			pattern.Slots(
				pattern.NewSlot("conj"),
				pattern.NewSlot("gov"),
				pattern.NewSlot("parent"),
			),
			pattern.Edges(
				pattern.NewEdge("conj", "gov", pattern.MustHasLabelFromList("/^conj/")),
				pattern.NewEdge("gov", "parent", pattern.MustHasLabelFromList("/.*/")),
			),
		),
		Apply: func(g *graph.Graph, b match.Binding) {
			conj, _ := b.Token("conj")
			parent, _ := b.Token("parent")
			for _, rel := range b.EdgeLabels("gov", "parent") {
				// Never propagate the conjunction relation itself.
				if strings.HasPrefix(rel, "conj") || strings.HasPrefix(rel, "cc") {
					continue
				}
				g.AddEdge(conj, parent, graph.Label{Relation: rel, Src: string(Baseline)})
			}
		},
	}
}

// subjOfConjoinedVerbs shares the subject of the first conjoined verb with
// conjuncts that lack one.
func subjOfConjoinedVerbs(v vocab) Rule {
	return Rule{
		Name:     "eud_subj_of_conjoined_verbs",
		Category: Baseline,
		Pattern: pattern.MustFull(
			pattern.Slots(
				pattern.NewSlot("verb1", pattern.WithField(pattern.MustField(pattern.FieldTag, "/VB.?/"))),
				pattern.NewSlot("verb2",
					pattern.WithField(pattern.MustField(pattern.FieldTag, "/VB.?/")),
					pattern.WithOutgoing(pattern.MustHasNoLabel("/.subj/"))),
				pattern.NewSlot("subj"),
			),
			pattern.Edges(
				pattern.NewEdge("subj", "verb1", pattern.MustHasLabelFromList("/^[nc]subj/")),
				pattern.NewEdge("verb2", "verb1", pattern.MustHasLabelFromList("/^conj/")),
			),
		),
		Apply: func(g *graph.Graph, b match.Binding) {
			subj, _ := b.Token("subj")
			verb2, _ := b.Token("verb2")
			matched := b.EdgeLabels("subj", "verb1")
			if len(matched) == 0 {
				return
			}
			g.AddEdge(subj, verb2, graph.Label{Relation: baseOf(matched[0]), Src: string(Baseline)})
		},
	}
}

// passiveAlternation restores the active-voice argument structure of a
// passive clause: the passive subject is also the object, and the agent (if
// expressed) is also the subject.
func passiveAlternation(v vocab) Rule {
	agentRel := "/^(nmod(:agent)?)$/"
	if v.version == 2 {
		agentRel = "/^(obl(:agent)?)$/"
	}
	return Rule{
		Name:     "extra_passive_alt",
		Category: Extra,
		Pattern: pattern.MustFull(
			pattern.Slots(
				pattern.NewSlot("predicate"),
				pattern.NewSlot("subjpass"),
				pattern.NewSlot("agent", pattern.Optional()),
				pattern.NewSlot("by", pattern.Optional(),
					pattern.WithField(pattern.MustField(pattern.FieldWord, "/^(?i:by)$/"))),
			),
			pattern.Edges(
				pattern.NewEdge("subjpass", "predicate", pattern.MustHasLabelFromList(v.subjpass)),
				pattern.NewEdge("agent", "predicate", pattern.MustHasLabelFromList(agentRel)),
				pattern.NewEdge("by", "agent", pattern.MustHasLabelFromList("case")),
				pattern.NewEdge("subjpass", "predicate", pattern.MustHasNoLabel(v.obj)),
			),
		),
		Apply: func(g *graph.Graph, b match.Binding) {
			subjpass, _ := b.Token("subjpass")
			predicate, _ := b.Token("predicate")
			g.AddEdge(subjpass, predicate, graph.Label{Relation: v.obj, Src: string(Extra)})
			agent, ok := b.Token("agent")
			if !ok {
				return
			}
			// A plain nmod counts as the demoted subject only when its case
			// marker "by" is part of the binding; nmod:agent needs no marker.
			_, hasBy := b.Token("by")
			if !hasBy {
				hasBy = slices.Contains(b.EdgeLabels("agent", "predicate"), v.nmod+":agent")
			}
			if hasBy {
				g.AddEdge(agent, predicate, graph.Label{Relation: "nsubj", Src: string(Extra)})
			}
		},
	}
}

// aclPropagation gives a to-infinitive clausal modifier the subject of its
// matrix verb: in "John has a plan to win", John is the subject of "win".
func aclPropagation(v vocab) Rule {
	return Rule{
		Name:     "extra_acl_propagation",
		Category: Extra,
		Pattern: pattern.MustFull(
			pattern.Slots(
				pattern.NewSlot("verb", pattern.WithField(pattern.MustField(pattern.FieldTag, "/VB.?/"))),
				pattern.NewSlot("subj"),
				pattern.NewSlot("proxy"),
				pattern.NewSlot("acl", pattern.WithOutgoing(pattern.MustHasNoLabel("/.subj/"))),
				pattern.NewSlot("to", pattern.WithField(pattern.MustField(pattern.FieldTag, "TO"))),
			),
			pattern.Edges(
				pattern.NewEdge("subj", "verb", pattern.MustHasLabelFromList("/.subj/")),
				pattern.NewEdge("proxy", "verb", pattern.MustHasLabelFromList("/.*/")),
				pattern.NewEdge("acl", "proxy", pattern.MustHasLabelFromList("acl")),
				pattern.NewEdge("to", "acl", pattern.MustHasLabelFromList("mark")),
			),
		),
		Apply: func(g *graph.Graph, b match.Binding) {
			subj, _ := b.Token("subj")
			acl, _ := b.Token("acl")
			g.AddEdge(subj, acl, graph.Label{Relation: "nsubj", Src: string(Extra)})
		},
	}
}

// advclPropagation shares a matrix subject with an adverbial clause that has
// none. The inference is heuristic, so its edges carry the uncertain marker.
func advclPropagation(v vocab) Rule {
	return Rule{
		Name:      "extra_advcl_propagation",
		Category:  Extra,
		Uncertain: true,
		Pattern: pattern.MustFull(
			pattern.Slots(
				pattern.NewSlot("verb"),
				pattern.NewSlot("subj"),
				pattern.NewSlot("advcl", pattern.WithOutgoing(pattern.MustHasNoLabel("/.subj/"))),
			),
			pattern.Edges(
				pattern.NewEdge("subj", "verb", pattern.MustHasLabelFromList("/^[nc]subj/")),
				pattern.NewEdge("advcl", "verb", pattern.MustHasLabelFromList("/^advcl/")),
			),
		),
		Apply: func(g *graph.Graph, b match.Binding) {
			subj, _ := b.Token("subj")
			advcl, _ := b.Token("advcl")
			g.AddEdge(subj, advcl, graph.Label{Relation: "nsubj", Src: string(Extra), Uncertain: true})
		},
	}
}

// copulaReconstruction inserts a copy of the copula as an explicit state
// predicate: the copy takes over the nominal predicate's governors, the
// predicate becomes its xcomp, and the subject is shared with it.
func copulaReconstruction(v vocab) Rule {
	return Rule{
		Name:       "extra_copula_reconstruction",
		Category:   Extra,
		NodeAdding: true,
		Pattern: pattern.MustFull(
			pattern.Slots(
				pattern.NewSlot("predicate", pattern.WithIncoming(pattern.MustHasNoLabel("xcomp"))),
				pattern.NewSlot("cop", pattern.WithField(pattern.MustField(pattern.FieldLemma, "be"))),
				pattern.NewSlot("subj", pattern.Optional()),
			),
			pattern.Edges(
				pattern.NewEdge("cop", "predicate", pattern.MustHasLabelFromList("cop")),
				pattern.NewEdge("subj", "predicate", pattern.MustHasLabelFromList("/^[nc]subj/")),
			),
		),
		Apply: func(g *graph.Graph, b match.Binding) {
			predicate, _ := b.Token("predicate")
			cop, _ := b.Token("cop")
			// Bindings that differ only in the optional subject slot share
			// one copy node.
			var state *graph.Token
			for _, tok := range g.Tokens() {
				if tok.CopyOf == cop {
					state = tok
					break
				}
			}
			if state == nil {
				state = g.AddCopy(cop)
			}
			if state == nil {
				return
			}
			// The copy adopts the predicate's governors, then heads it. If
			// the predicate was the root the copy becomes the new root.
			for _, e := range g.Edges() {
				if e.Child == predicate && e.Parent != state.ID {
					g.AddEdge(state.ID, e.Parent, graph.Label{Relation: e.Label.Relation, Src: string(Extra)})
				}
			}
			g.AddEdge(predicate, state.ID, graph.Label{Relation: "xcomp", Src: string(Extra)})
			if subj, ok := b.Token("subj"); ok {
				g.AddEdge(subj, state.ID, graph.Label{Relation: "nsubj", Src: string(Extra)})
			}
		},
	}
}

// ofPrepAlteration marks noun-of-noun constructions ("union of states") as
// compounds. v1 only: it keys off the nmod:of label written by
// eud_prep_patterns earlier in the same pass.
func ofPrepAlteration(v vocab) Rule {
	return Rule{
		Name:     "extra_of_prep_alteration",
		Category: Extra,
		Pattern: pattern.MustFull(
			pattern.Slots(
				pattern.NewSlot("gov", pattern.WithField(pattern.MustField(pattern.FieldTag, "/NN.?/"))),
				pattern.NewSlot("mod", pattern.WithField(pattern.MustField(pattern.FieldTag, "/NN.?/"))),
				pattern.NewSlot("of", pattern.WithField(pattern.MustField(pattern.FieldWord, "/^(?i:of)$/"))),
			),
			pattern.Edges(
				pattern.NewEdge("of", "mod", pattern.MustHasLabelFromList("case")),
				pattern.NewEdge("mod", "gov", pattern.MustHasLabelFromList("nmod:of")),
			),
		),
		Apply: func(g *graph.Graph, b match.Binding) {
			mod, _ := b.Token("mod")
			gov, _ := b.Token("gov")
			g.AddEdge(mod, gov, graph.Label{Relation: "compound", Src: string(Extra)})
		},
	}
}

func mustExact(t1, t2 string, gap int) pattern.ExactDistance {
	d, err := pattern.NewExactDistance(t1, t2, gap)
	if err != nil {
		panic(err)
	}
	return d
}
