// Package odin adapts the JSON document format of the Odin information
// extraction system to the converter's graph model. It is a thin transcoder:
// parse the token arrays and the basic dependency graph, and write the
// enhanced graph back as an extra entry under "graphs".
package odin

import (
	"encoding/json"
	"fmt"

	"github.com/nlpforge/gobart/internal/graph"
)

// GraphNameBasic is the conventional key of the input dependency graph.
const GraphNameBasic = "universal-basic"

// GraphNameEnhanced is the key the enhanced output is written under.
const GraphNameEnhanced = "universal-enhanced"

// Document is one Odin document: raw text plus parsed sentences.
type Document struct {
	Text      string     `json:"text"`
	Sentences []Sentence `json:"sentences"`
}

// Sentence holds parallel token arrays and named dependency graphs over
// 0-based token indices.
type Sentence struct {
	Words    []string                   `json:"words"`
	Lemmas   []string                   `json:"lemmas,omitempty"`
	Tags     []string                   `json:"tags,omitempty"`
	Entities []string                   `json:"entities,omitempty"`
	Graphs   map[string]DependencyGraph `json:"graphs"`
}

// DependencyGraph is Odin's edge-list graph encoding.
type DependencyGraph struct {
	Edges []Edge `json:"edges"`
	Roots []int  `json:"roots"`
}

// Edge points from head (source) to dependent (destination), 0-based.
type Edge struct {
	Source      int    `json:"source"`
	Destination int    `json:"destination"`
	Relation    string `json:"relation"`
}

// Decode parses an Odin document from JSON.
func Decode(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("odin: decode document: %w", err)
	}
	return &doc, nil
}

// Graphs converts every sentence of the document to the internal graph
// model, reading the universal-basic graph (or the only graph present).
func (d *Document) Graphs() ([]*graph.Graph, error) {
	out := make([]*graph.Graph, 0, len(d.Sentences))
	for i, sent := range d.Sentences {
		g, err := sent.graph()
		if err != nil {
			return nil, fmt.Errorf("odin: sentence %d: %w", i+1, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func (s *Sentence) graph() (*graph.Graph, error) {
	dg, ok := s.Graphs[GraphNameBasic]
	if !ok {
		for _, g := range s.Graphs {
			dg = g
			break
		}
	}
	at := func(vals []string, i int) string {
		if i < len(vals) {
			return vals[i]
		}
		return ""
	}
	tokens := make([]*graph.Token, len(s.Words))
	for i, w := range s.Words {
		tokens[i] = &graph.Token{
			ID:     i + 1,
			Word:   w,
			Lemma:  at(s.Lemmas, i),
			Tag:    at(s.Tags, i),
			Entity: at(s.Entities, i),
		}
	}
	edges := make([]graph.Edge, 0, len(dg.Edges))
	for _, e := range dg.Edges {
		edges = append(edges, graph.Edge{
			Child:  e.Destination + 1,
			Parent: e.Source + 1,
			Label:  graph.Label{Relation: e.Relation},
		})
	}
	return graph.New(tokens, edges)
}

// SetEnhanced writes converted graphs back onto the document under the
// universal-enhanced key, one per sentence. Token counts may have grown if
// node-adding rules ran; inserted tokens are appended to the word arrays.
func (d *Document) SetEnhanced(graphs []*graph.Graph) error {
	if len(graphs) != len(d.Sentences) {
		return fmt.Errorf("odin: %d graphs for %d sentences", len(graphs), len(d.Sentences))
	}
	for i := range d.Sentences {
		sent := &d.Sentences[i]
		g := graphs[i]
		for _, tok := range g.Tokens()[len(sent.Words):] {
			sent.Words = append(sent.Words, tok.Word)
			if len(sent.Lemmas) > 0 {
				sent.Lemmas = append(sent.Lemmas, tok.Lemma)
			}
			if len(sent.Tags) > 0 {
				sent.Tags = append(sent.Tags, tok.Tag)
			}
			if len(sent.Entities) > 0 {
				sent.Entities = append(sent.Entities, tok.Entity)
			}
		}
		dg := DependencyGraph{}
		for _, e := range g.Edges() {
			pos1, _ := g.Position(e.Child)
			pos2, _ := g.Position(e.Parent)
			dg.Edges = append(dg.Edges, Edge{
				Source:      pos2,
				Destination: pos1,
				Relation:    e.Label.String(),
			})
		}
		for _, tok := range g.Tokens() {
			if tok.CopyOf == 0 && g.IsRoot(tok.ID) {
				pos, _ := g.Position(tok.ID)
				dg.Roots = append(dg.Roots, pos)
			}
		}
		if sent.Graphs == nil {
			sent.Graphs = map[string]DependencyGraph{}
		}
		sent.Graphs[GraphNameEnhanced] = dg
	}
	return nil
}

// Encode renders the document back to JSON.
func (d *Document) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("odin: encode document: %w", err)
	}
	return data, nil
}
