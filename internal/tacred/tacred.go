// Package tacred adapts the TACRED relation-extraction dataset format: a
// JSON array of records whose stanford_* arrays encode one parsed sentence
// each. The adapter only reads; conversion results are consumed as graphs.
package tacred

import (
	"encoding/json"
	"fmt"

	"github.com/nlpforge/gobart/internal/graph"
)

// Record is one TACRED example. Only the fields the converter needs are
// decoded; heads are 1-based with 0 for the root.
type Record struct {
	ID             string   `json:"id"`
	Token          []string `json:"token"`
	StanfordPOS    []string `json:"stanford_pos"`
	StanfordNER    []string `json:"stanford_ner"`
	StanfordHead   []int    `json:"stanford_head"`
	StanfordDeprel []string `json:"stanford_deprel"`
}

// Decode parses a TACRED JSON array.
func Decode(data []byte) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("tacred: decode records: %w", err)
	}
	return records, nil
}

// Graph converts the record's parse into the internal graph model. TACRED
// carries no lemmas; the word form stands in so lexical constraints still
// see something sensible.
func (r Record) Graph() (*graph.Graph, error) {
	n := len(r.Token)
	if len(r.StanfordHead) != n || len(r.StanfordDeprel) != n {
		return nil, fmt.Errorf("tacred: record %s: head/deprel arrays don't match %d tokens", r.ID, n)
	}
	at := func(vals []string, i int) string {
		if i < len(vals) {
			return vals[i]
		}
		return ""
	}
	tokens := make([]*graph.Token, n)
	for i, w := range r.Token {
		tokens[i] = &graph.Token{
			ID:     i + 1,
			Word:   w,
			Lemma:  w,
			Tag:    at(r.StanfordPOS, i),
			Entity: at(r.StanfordNER, i),
		}
	}
	var edges []graph.Edge
	for i, head := range r.StanfordHead {
		if head == 0 {
			continue
		}
		edges = append(edges, graph.Edge{
			Child:  i + 1,
			Parent: head,
			Label:  graph.Label{Relation: r.StanfordDeprel[i]},
		})
	}
	g, err := graph.New(tokens, edges)
	if err != nil {
		return nil, fmt.Errorf("tacred: record %s: %w", r.ID, err)
	}
	return g, nil
}
