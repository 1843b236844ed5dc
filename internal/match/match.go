// Package match enumerates the bindings of a pattern in a dependency graph.
//
// Matching is a backtracking constraint-satisfaction search over the
// pattern's token slots. Patterns are small (2-6 slots), so the search binds
// the most selective slots first and rejects on the first violated
// constraint rather than doing anything clever. The matcher never mutates
// the graph; rerunning it on an unchanged graph yields the same bindings.
package match

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nlpforge/gobart/internal/graph"
	"github.com/nlpforge/gobart/internal/pattern"
)

// Binding maps captured slot names to concrete token IDs, plus the actual
// edge labels that satisfied each positive edge constraint (actions need
// those to derive new relation strings).
type Binding struct {
	tokens map[string]int
	labels map[string][]string
}

// Token returns the token ID bound to a slot and whether the slot was bound
// at all - optional slots may be absent.
func (b Binding) Token(name string) (int, bool) {
	id, ok := b.tokens[name]
	return id, ok
}

// Tokens returns a copy of the slot-to-token mapping.
func (b Binding) Tokens() map[string]int {
	out := make(map[string]int, len(b.tokens))
	for k, v := range b.tokens {
		out[k] = v
	}
	return out
}

// EdgeLabels returns the actual labels that matched the positive constraints
// of the (child, parent) edge constraint, in graph order.
func (b Binding) EdgeLabels(child, parent string) []string {
	return b.labels[edgeKey(child, parent)]
}

// String renders the binding deterministically, for logs and stable test
// comparisons.
func (b Binding) String() string {
	names := make([]string, 0, len(b.tokens))
	for n := range b.tokens {
		names = append(names, n)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%s=%d", n, b.tokens[n])
	}
	return "{" + strings.Join(parts, " ") + "}"
}

func edgeKey(child, parent string) string { return child + "->" + parent }

// Find returns every consistent binding of the pattern in the graph, in
// discovery order. Bindings over symmetric slots are not deduplicated;
// symmetry is the pattern author's concern.
func Find(g *graph.Graph, p pattern.Full) []Binding {
	s := &search{g: g, p: p, assigned: map[string]int{}, skipped: map[string]bool{}, used: map[int]bool{}}
	s.order = orderSlots(p.Tokens)
	s.run(0)
	return s.found
}

// orderSlots puts mandatory slots before optional ones and, within each
// group, more selective slots first. The sort is stable so catalog authors
// get a predictable discovery order.
func orderSlots(slots []pattern.TokenSlot) []pattern.TokenSlot {
	out := make([]pattern.TokenSlot, len(slots))
	copy(out, slots)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Optional != out[j].Optional {
			return !out[i].Optional
		}
		return out[i].Selectivity() > out[j].Selectivity()
	})
	return out
}

type search struct {
	g        *graph.Graph
	p        pattern.Full
	order    []pattern.TokenSlot
	assigned map[string]int
	skipped  map[string]bool
	used     map[int]bool
	found    []Binding
}

func (s *search) run(depth int) {
	if depth == len(s.order) {
		s.found = append(s.found, s.capture())
		return
	}
	slot := s.order[depth]

	for _, tok := range s.g.Tokens() {
		if s.used[tok.ID] || !s.slotAccepts(slot, tok) {
			continue
		}
		s.assigned[slot.Name] = tok.ID
		s.used[tok.ID] = true
		if s.consistent() {
			s.run(depth + 1)
		}
		delete(s.assigned, slot.Name)
		delete(s.used, tok.ID)
	}

	// Leaving an optional slot unbound is an explicit branch of the search
	// tree; constraints that reference it then hold vacuously.
	if slot.Optional {
		s.skipped[slot.Name] = true
		if s.consistent() {
			s.run(depth + 1)
		}
		delete(s.skipped, slot.Name)
	}
}

// slotAccepts checks the slot's own constraints: attribute fields, root
// membership, and label constraints over the token's incoming and outgoing
// edges.
func (s *search) slotAccepts(slot pattern.TokenSlot, tok *graph.Token) bool {
	for _, f := range slot.Spec {
		if !f.Match(attr(tok, f.Name)) {
			return false
		}
	}
	if slot.Root != nil && s.g.IsRoot(tok.ID) != *slot.Root {
		return false
	}
	if len(slot.Incoming) > 0 {
		actual := relations(s.g.IncomingLabels(tok.ID))
		for _, lc := range slot.Incoming {
			if _, ok := pattern.Satisfied(lc, actual); !ok {
				return false
			}
		}
	}
	if len(slot.Outgoing) > 0 {
		actual := relations(s.g.OutgoingLabels(tok.ID))
		for _, lc := range slot.Outgoing {
			if _, ok := pattern.Satisfied(lc, actual); !ok {
				return false
			}
		}
	}
	return true
}

// consistent evaluates every cross-slot constraint whose referenced slots
// are all decided (bound or explicitly skipped). Constraints touching a slot
// that is still undecided are deferred to a deeper level; constraints
// touching a skipped optional slot pass vacuously.
func (s *search) consistent() bool {
	for _, e := range s.p.Edges {
		child, childOK := s.decided(e.Child)
		parent, parentOK := s.decided(e.Parent)
		if !childOK || !parentOK {
			continue
		}
		if s.skipped[e.Child] || s.skipped[e.Parent] {
			continue
		}
		actual := relations(s.g.LabelsBetween(child, parent))
		for _, lc := range e.Labels {
			if _, ok := pattern.Satisfied(lc, actual); !ok {
				return false
			}
		}
	}

	for _, d := range s.p.Distances {
		n1, n2 := d.Names()
		t1, ok1 := s.decided(n1)
		t2, ok2 := s.decided(n2)
		if !ok1 || !ok2 || s.skipped[n1] || s.skipped[n2] {
			continue
		}
		p1, _ := s.g.Position(t1)
		p2, _ := s.g.Position(t2)
		if !d.SatisfiedBy(p1, p2) {
			return false
		}
	}

	for _, tu := range s.p.Tuples {
		words, ok := s.tupleWords(tu)
		if !ok {
			continue
		}
		if !tu.SatisfiedBy(words) {
			return false
		}
	}
	return true
}

func (s *search) tupleWords(tu pattern.Tuple) ([]string, bool) {
	names := tu.Names()
	words := make([]string, len(names))
	for i, n := range names {
		id, ok := s.decided(n)
		if !ok {
			return nil, false
		}
		if s.skipped[n] {
			return nil, false
		}
		words[i] = s.g.Token(id).Word
	}
	return words, true
}

func (s *search) decided(name string) (int, bool) {
	if id, ok := s.assigned[name]; ok {
		return id, true
	}
	if s.skipped[name] {
		return 0, true
	}
	return 0, false
}

// capture builds the reported binding for a complete assignment: captured
// bound slots plus the matched labels of each satisfied positive edge
// constraint.
func (s *search) capture() Binding {
	b := Binding{tokens: map[string]int{}, labels: map[string][]string{}}
	for _, slot := range s.p.Tokens {
		if !slot.Capture {
			continue
		}
		if id, ok := s.assigned[slot.Name]; ok {
			b.tokens[slot.Name] = id
		}
	}
	for _, e := range s.p.Edges {
		child, childOK := s.assigned[e.Child]
		parent, parentOK := s.assigned[e.Parent]
		if !childOK || !parentOK {
			continue
		}
		actual := relations(s.g.LabelsBetween(child, parent))
		for _, lc := range e.Labels {
			if matched, ok := pattern.Satisfied(lc, actual); ok && len(matched) > 0 {
				key := edgeKey(e.Child, e.Parent)
				b.labels[key] = append(b.labels[key], matched...)
			}
		}
	}
	return b
}

func attr(tok *graph.Token, name pattern.FieldName) string {
	switch name {
	case pattern.FieldWord:
		return tok.Word
	case pattern.FieldLemma:
		return tok.Lemma
	case pattern.FieldTag:
		return tok.Tag
	case pattern.FieldEntity:
		return tok.Entity
	}
	return ""
}

func relations(labels []graph.Label) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = l.Relation
	}
	return out
}
