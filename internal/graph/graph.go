// Package graph defines the dependency graph that the converter reads and
// rewrites: an ordered sequence of tokens plus a labeled edge set.
//
// Before enhancement a graph is a tree (every non-root token has exactly one
// parent); after enhancement it is a DAG where a token may have several
// governors. Linear token order is meaningful - distance constraints are
// evaluated against sentence positions, not token identifiers.
package graph

import (
	"fmt"
	"sort"
)

// Label is the annotation carried by one edge.
//
// Src records provenance: empty for edges from the original parse, otherwise
// the rule category that added the edge ("eud", "eudpp", "extra"). Output
// stripping keys off Src, so rules must set it on every edge they add.
type Label struct {
	Relation  string
	Src       string
	Uncertain bool
}

// String renders the label the way adapters serialize it: the relation, an
// "_unc" suffix for uncertain edges, and the provenance marker in parentheses
// for enhancement-added edges, e.g. "nmod:agent(eud)". Stripping the marker
// or the flag changes the rendered form accordingly.
func (l Label) String() string {
	s := l.Relation
	if l.Uncertain {
		s += "_unc"
	}
	if l.Src != "" {
		s += "(" + l.Src + ")"
	}
	return s
}

// Edge is an ordered (child, parent) pair plus its label.
type Edge struct {
	Child  int
	Parent int
	Label  Label
}

// Token is one graph node. ID is the stable 1-based sentence position from
// the source parse. CopyOf is non-zero for nodes inserted by node-adding
// rules and names the token the copy was derived from.
type Token struct {
	ID     int
	Word   string
	Lemma  string
	Tag    string
	Entity string
	CopyOf int
}

// Graph holds the tokens of one sentence in linear order and all edges
// between them. A Graph is owned by a single conversion run; it is not safe
// for concurrent mutation.
type Graph struct {
	tokens []*Token
	byID   map[int]*Token
	pos    map[int]int // token ID -> index in tokens
	edges  []Edge
	rev    uint64
}

// New builds a graph from tokens in sentence order and the initial tree
// edges. Token IDs must be unique.
func New(tokens []*Token, edges []Edge) (*Graph, error) {
	g := &Graph{
		byID: make(map[int]*Token, len(tokens)),
		pos:  make(map[int]int, len(tokens)),
	}
	for i, tok := range tokens {
		if _, dup := g.byID[tok.ID]; dup {
			return nil, fmt.Errorf("duplicate token id %d", tok.ID)
		}
		g.tokens = append(g.tokens, tok)
		g.byID[tok.ID] = tok
		g.pos[tok.ID] = i
	}
	for _, e := range edges {
		if err := g.checkEndpoints(e.Child, e.Parent); err != nil {
			return nil, err
		}
		g.edges = append(g.edges, e)
	}
	return g, nil
}

func (g *Graph) checkEndpoints(child, parent int) error {
	if _, ok := g.byID[child]; !ok {
		return fmt.Errorf("edge references unknown token id %d", child)
	}
	if _, ok := g.byID[parent]; !ok {
		return fmt.Errorf("edge references unknown token id %d", parent)
	}
	return nil
}

// Tokens returns the tokens in sentence order. Callers must not reorder the
// returned slice.
func (g *Graph) Tokens() []*Token { return g.tokens }

// Len returns the token count, including inserted copy nodes.
func (g *Graph) Len() int { return len(g.tokens) }

// Token returns the token with the given ID, or nil.
func (g *Graph) Token(id int) *Token { return g.byID[id] }

// Position returns the linear sentence position of a token (its index in the
// ordered token sequence) and whether the token exists.
func (g *Graph) Position(id int) (int, bool) {
	p, ok := g.pos[id]
	return p, ok
}

// Revision is a counter bumped on every successful mutation. The rewriter
// samples it around an iteration to decide whether the iteration changed
// anything.
func (g *Graph) Revision() uint64 { return g.rev }

// Edges returns a copy of the full edge set.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// LabelsBetween returns the labels of all edges from child to parent.
// Absent edges yield an empty slice, never an error.
func (g *Graph) LabelsBetween(child, parent int) []Label {
	var out []Label
	for _, e := range g.edges {
		if e.Child == child && e.Parent == parent {
			out = append(out, e.Label)
		}
	}
	return out
}

// IncomingLabels returns the labels of all edges where id is the child,
// i.e. the relations id bears to each of its governors.
func (g *Graph) IncomingLabels(id int) []Label {
	var out []Label
	for _, e := range g.edges {
		if e.Child == id {
			out = append(out, e.Label)
		}
	}
	return out
}

// OutgoingLabels returns the labels of all edges where id is the parent,
// i.e. the relations of its dependents.
func (g *Graph) OutgoingLabels(id int) []Label {
	var out []Label
	for _, e := range g.edges {
		if e.Parent == id {
			out = append(out, e.Label)
		}
	}
	return out
}

// Parents returns the distinct governor IDs of a token, sorted ascending.
func (g *Graph) Parents(id int) []int {
	seen := map[int]bool{}
	for _, e := range g.edges {
		if e.Child == id {
			seen[e.Parent] = true
		}
	}
	out := make([]int, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

// IsRoot reports whether the token has no incoming edges. Exactly one token
// per well-formed sentence is the root.
func (g *Graph) IsRoot(id int) bool {
	for _, e := range g.edges {
		if e.Child == id {
			return false
		}
	}
	_, ok := g.byID[id]
	return ok
}

// Root returns the unique token with no governors, or nil if the graph is
// malformed.
func (g *Graph) Root() *Token {
	var root *Token
	for _, tok := range g.tokens {
		if g.IsRoot(tok.ID) {
			if root != nil {
				return nil
			}
			root = tok
		}
	}
	return root
}

// AddEdge inserts an edge unless an identical one (same endpoints, same
// label) already exists. Reports whether the graph changed - rules rely on
// the no-op path for fixpoint convergence.
func (g *Graph) AddEdge(child, parent int, label Label) bool {
	if err := g.checkEndpoints(child, parent); err != nil {
		return false
	}
	for _, e := range g.edges {
		if e.Child == child && e.Parent == parent && e.Label == label {
			return false
		}
	}
	g.edges = append(g.edges, Edge{Child: child, Parent: parent, Label: label})
	g.rev++
	return true
}

// RemoveEdge deletes all edges from child to parent whose relation string
// equals relation. Reports whether anything was removed.
func (g *Graph) RemoveEdge(child, parent int, relation string) bool {
	kept := g.edges[:0]
	removed := false
	for _, e := range g.edges {
		if e.Child == child && e.Parent == parent && e.Label.Relation == relation {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	g.edges = kept
	if removed {
		g.rev++
	}
	return removed
}

// Relabel replaces the label of the (child, parent, oldRelation) edge with a
// new label. Reports whether an edge was rewritten.
func (g *Graph) Relabel(child, parent int, oldRelation string, newLabel Label) bool {
	changed := false
	for i, e := range g.edges {
		if e.Child == child && e.Parent == parent && e.Label.Relation == oldRelation && e.Label != newLabel {
			g.edges[i].Label = newLabel
			changed = true
		}
	}
	if changed {
		g.rev++
	}
	return changed
}

// AddCopy appends a copy node derived from an existing token. The copy gets
// the next free ID and carries no edges; the calling rule is responsible for
// attaching it. Returns nil if the source token does not exist.
func (g *Graph) AddCopy(of int) *Token {
	src := g.byID[of]
	if src == nil {
		return nil
	}
	maxID := 0
	for id := range g.byID {
		if id > maxID {
			maxID = id
		}
	}
	cp := &Token{
		ID:     maxID + 1,
		Word:   src.Word,
		Lemma:  src.Lemma,
		Tag:    src.Tag,
		Entity: src.Entity,
		CopyOf: src.ID,
	}
	g.tokens = append(g.tokens, cp)
	g.byID[cp.ID] = cp
	g.pos[cp.ID] = len(g.tokens) - 1
	g.rev++
	return cp
}

// StripProvenance clears the Src marker on edges whose Src is in srcs.
// The edges themselves are kept.
func (g *Graph) StripProvenance(srcs ...string) {
	want := map[string]bool{}
	for _, s := range srcs {
		want[s] = true
	}
	changed := false
	for i, e := range g.edges {
		if e.Label.Src != "" && want[e.Label.Src] {
			g.edges[i].Label.Src = ""
			changed = true
		}
	}
	if changed {
		g.rev++
	}
}

// RemoveBySrc deletes every edge whose provenance marker is in srcs.
func (g *Graph) RemoveBySrc(srcs ...string) {
	want := map[string]bool{}
	for _, s := range srcs {
		want[s] = true
	}
	kept := g.edges[:0]
	removed := false
	for _, e := range g.edges {
		if want[e.Label.Src] {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	g.edges = kept
	if removed {
		g.rev++
	}
}

// StripUncertain clears the Uncertain flag on every edge.
func (g *Graph) StripUncertain() {
	changed := false
	for i := range g.edges {
		if g.edges[i].Label.Uncertain {
			g.edges[i].Label.Uncertain = false
			changed = true
		}
	}
	if changed {
		g.rev++
	}
}

// Clone returns a deep copy sharing nothing with the receiver.
func (g *Graph) Clone() *Graph {
	toks := make([]*Token, len(g.tokens))
	for i, t := range g.tokens {
		cp := *t
		toks[i] = &cp
	}
	cp, _ := New(toks, g.Edges())
	cp.rev = g.rev
	return cp
}

// Equal reports structural equality: same tokens in the same order and the
// same edge multiset. Revision counters are ignored.
func (g *Graph) Equal(other *Graph) bool {
	if other == nil || len(g.tokens) != len(other.tokens) || len(g.edges) != len(other.edges) {
		return false
	}
	for i, t := range g.tokens {
		if *t != *other.tokens[i] {
			return false
		}
	}
	a := g.Edges()
	b := other.Edges()
	sortEdges(a)
	sortEdges(b)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sortEdges(es []Edge) {
	sort.Slice(es, func(i, j int) bool {
		if es[i].Child != es[j].Child {
			return es[i].Child < es[j].Child
		}
		if es[i].Parent != es[j].Parent {
			return es[i].Parent < es[j].Parent
		}
		if es[i].Label.Relation != es[j].Label.Relation {
			return es[i].Label.Relation < es[j].Label.Relation
		}
		return es[i].Label.Src < es[j].Label.Src
	})
}
