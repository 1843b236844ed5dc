// Package conllu transcodes between CoNLL-U text and the dependency graph
// the converter operates on. It is a thin format adapter: one Graph per
// sentence, comment blocks preserved opaquely, all non-graph columns carried
// through unchanged.
package conllu

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/nlpforge/gobart/internal/graph"
)

// Sentence pairs one sentence's graph with its source comments and the
// columns the graph model does not carry (UPOS, FEATS, MISC), keyed by token
// ID so serialization can reproduce them.
type Sentence struct {
	Graph    *graph.Graph
	Comments []string

	cols map[int]passthrough
}

type passthrough struct {
	upos  string
	feats string
	misc  string
}

// ParseError reports a malformed CoNLL-U line, with enough position context
// for the caller to name the failing sentence.
type ParseError struct {
	Line    int
	Text    string
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("conllu: line %d: %s: %q", e.Line, e.Message, e.Text)
}

// Parse splits CoNLL-U text into sentences and builds one graph per
// sentence. Multiword-token range lines (ID "1-2") and input DEPS entries
// are skipped; the basic HEAD/DEPREL columns define the tree. The XPOS
// column is the tag the rule catalog matches against.
func Parse(text string) ([]*Sentence, error) {
	var (
		sentences []*Sentence
		comments  []string
		tokens    []*graph.Token
		edges     []graph.Edge
		cols      = map[int]passthrough{}
	)

	flush := func() error {
		if len(tokens) == 0 {
			comments = nil
			return nil
		}
		g, err := graph.New(tokens, edges)
		if err != nil {
			return fmt.Errorf("conllu: sentence %d: %w", len(sentences)+1, err)
		}
		sentences = append(sentences, &Sentence{Graph: g, Comments: comments, cols: cols})
		comments, tokens, edges = nil, nil, nil
		cols = map[int]passthrough{}
		return nil
	}

	for i, line := range strings.Split(text, "\n") {
		lineNo := i + 1
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			if err := flush(); err != nil {
				return nil, err
			}
		case strings.HasPrefix(trimmed, "#"):
			comments = append(comments, trimmed)
		default:
			fields := strings.Split(line, "\t")
			if len(fields) < 8 {
				return nil, &ParseError{Line: lineNo, Text: line, Message: "expected at least 8 tab-separated columns"}
			}
			if strings.ContainsAny(fields[0], "-.") {
				// Multiword ranges and empty nodes are not part of the tree.
				continue
			}
			id, err := strconv.Atoi(fields[0])
			if err != nil {
				return nil, &ParseError{Line: lineNo, Text: line, Message: "bad token id"}
			}
			head, err := strconv.Atoi(fields[6])
			if err != nil {
				return nil, &ParseError{Line: lineNo, Text: line, Message: "bad head"}
			}
			misc := "_"
			if len(fields) >= 10 {
				misc = fields[9]
			}
			tokens = append(tokens, &graph.Token{
				ID:     id,
				Word:   fields[1],
				Lemma:  fields[2],
				Tag:    fields[4],
				Entity: entityFromMisc(misc),
			})
			cols[id] = passthrough{upos: fields[3], feats: fields[5], misc: misc}
			if head != 0 {
				edges = append(edges, graph.Edge{
					Child:  id,
					Parent: head,
					Label:  graph.Label{Relation: fields[7]},
				})
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return sentences, nil
}

// entityFromMisc extracts an Entity=… annotation from the MISC column.
func entityFromMisc(misc string) string {
	for _, part := range strings.Split(misc, "|") {
		if v, ok := strings.CutPrefix(part, "Entity="); ok {
			return v
		}
	}
	return ""
}

// Serialize renders sentences back to CoNLL-U. The basic HEAD/DEPREL
// columns come from the original tree edges; every incoming edge (tree and
// enhancement alike) goes into DEPS, with uncertain edges suffixed "_unc".
// Copy nodes inserted by node-adding rules render as empty nodes ("N.1")
// directly after their source token.
func Serialize(sentences []*Sentence, preserveComments bool) string {
	var sb strings.Builder
	for _, sent := range sentences {
		if preserveComments {
			for _, c := range sent.Comments {
				sb.WriteString(c)
				sb.WriteByte('\n')
			}
		}
		copies := map[int][]*graph.Token{}
		disp := map[int]string{}
		for _, tok := range sent.Graph.Tokens() {
			if tok.CopyOf != 0 {
				copies[tok.CopyOf] = append(copies[tok.CopyOf], tok)
				disp[tok.ID] = fmt.Sprintf("%d.%d", tok.CopyOf, len(copies[tok.CopyOf]))
			} else {
				disp[tok.ID] = strconv.Itoa(tok.ID)
			}
		}
		for _, tok := range sent.Graph.Tokens() {
			if tok.CopyOf != 0 {
				continue
			}
			sb.WriteString(sent.tokenLine(tok, disp))
			for _, cp := range copies[tok.ID] {
				sb.WriteString(sent.tokenLine(cp, disp))
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (s *Sentence) tokenLine(tok *graph.Token, disp map[int]string) string {
	pt, ok := s.cols[tok.ID]
	if !ok {
		pt = passthrough{upos: "_", feats: "_", misc: "_"}
	}

	head, deprel := "0", "root"
	if tok.CopyOf != 0 {
		head, deprel = "_", "_"
	} else {
		for _, l := range s.Graph.IncomingLabels(tok.ID) {
			if l.Src == "" {
				// A well-formed token has exactly one tree edge.
				deprel = l.Relation
				break
			}
		}
		if deprel != "root" {
			for _, e := range s.Graph.Edges() {
				if e.Child == tok.ID && e.Label.Src == "" {
					head = strconv.Itoa(e.Parent)
					break
				}
			}
		}
	}

	deps := s.depsColumn(tok, disp)
	return strings.Join([]string{
		disp[tok.ID], tok.Word, tok.Lemma, pt.upos, tok.Tag, pt.feats, head, deprel, deps, pt.misc,
	}, "\t") + "\n"
}

func (s *Sentence) depsColumn(tok *graph.Token, disp map[int]string) string {
	type dep struct {
		head int
		rel  string
	}
	var deps []dep
	for _, e := range s.Graph.Edges() {
		if e.Child != tok.ID {
			continue
		}
		deps = append(deps, dep{head: e.Parent, rel: e.Label.String()})
	}
	if len(deps) == 0 {
		if tok.CopyOf == 0 && s.Graph.IsRoot(tok.ID) {
			return "0:root"
		}
		return "_"
	}
	sort.Slice(deps, func(i, j int) bool {
		if deps[i].head != deps[j].head {
			return deps[i].head < deps[j].head
		}
		return deps[i].rel < deps[j].rel
	})
	parts := make([]string, len(deps))
	for i, d := range deps {
		parts[i] = fmt.Sprintf("%s:%s", disp[d.head], d.rel)
	}
	return strings.Join(parts, "|")
}
