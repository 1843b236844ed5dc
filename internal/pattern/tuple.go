package pattern

import "strings"

// Tuple is a lexical constraint over the word forms of two or three bound
// tokens: their underscore-joined concatenation must be (or, if negated,
// must not be) a member of a fixed set of n-grams.
type Tuple interface {
	tuple()
	// Names returns the slot names the constraint references, in join order.
	Names() []string
	// SatisfiedBy evaluates the constraint for the bound word forms, given
	// in the same order as Names.
	SatisfiedBy(words []string) bool
}

// TokenPair constrains a word bigram.
type TokenPair struct {
	set    map[string]struct{}
	Token1 string
	Token2 string
	InSet  bool
}

func (TokenPair) tuple() {}

// NewTokenPair builds a bigram constraint. Set entries are word pairs joined
// by "_"; InSet selects membership or non-membership.
func NewTokenPair(set map[string]struct{}, token1, token2 string, inSet bool) TokenPair {
	return TokenPair{set: set, Token1: token1, Token2: token2, InSet: inSet}
}

// Names implements Tuple.
func (p TokenPair) Names() []string { return []string{p.Token1, p.Token2} }

// SatisfiedBy implements Tuple. Word forms are lowercased before lookup, so
// sets list lowercase n-grams and sentence-initial capitalization still hits.
func (p TokenPair) SatisfiedBy(words []string) bool {
	_, member := p.set[strings.ToLower(strings.Join(words, "_"))]
	return member == p.InSet
}

// TokenTriplet constrains a word trigram.
type TokenTriplet struct {
	set    map[string]struct{}
	Token1 string
	Token2 string
	Token3 string
	InSet  bool
}

func (TokenTriplet) tuple() {}

// NewTokenTriplet builds a trigram constraint.
func NewTokenTriplet(set map[string]struct{}, token1, token2, token3 string, inSet bool) TokenTriplet {
	return TokenTriplet{set: set, Token1: token1, Token2: token2, Token3: token3, InSet: inSet}
}

// Names implements Tuple.
func (t TokenTriplet) Names() []string { return []string{t.Token1, t.Token2, t.Token3} }

// SatisfiedBy implements Tuple. Lowercases before lookup, as TokenPair does.
func (t TokenTriplet) SatisfiedBy(words []string) bool {
	_, member := t.set[strings.ToLower(strings.Join(words, "_"))]
	return member == t.InSet
}

// WordSet builds a membership set from n-gram literals.
func WordSet(entries ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		set[e] = struct{}{}
	}
	return set
}
