package pattern

import (
	"regexp"
	"strings"
)

// Value matches a single label or word string. A constraint value of the
// form "/expr/" is a regular expression anchored at the start of the input
// (a left-anchored partial match); any other value must equal the input
// exactly. The variant is decided once here, not re-parsed on every match.
type Value struct {
	src     string
	literal string
	re      *regexp.Regexp
}

// NewValue parses a constraint value, compiling the regex variant eagerly.
// Returns a PatternError for a malformed expression.
func NewValue(v string) (Value, error) {
	if len(v) >= 2 && strings.HasPrefix(v, "/") && strings.HasSuffix(v, "/") {
		inner := v[1 : len(v)-1]
		re, err := regexp.Compile("^(?:" + inner + ")")
		if err != nil {
			return Value{}, &PatternError{Value: v, Err: err}
		}
		return Value{src: v, re: re}, nil
	}
	return Value{src: v, literal: v}, nil
}

// MustValue is NewValue for catalog literals known to be well-formed.
// Panics on a malformed regex.
func MustValue(v string) Value {
	val, err := NewValue(v)
	if err != nil {
		panic(err)
	}
	return val
}

// Match reports whether s satisfies the value.
func (v Value) Match(s string) bool {
	if v.re != nil {
		return v.re.MatchString(s)
	}
	return v.literal == s
}

// IsRegex reports whether the value is the regex variant.
func (v Value) IsRegex() bool { return v.re != nil }

// String returns the source form of the value.
func (v Value) String() string { return v.src }

func newValues(raw []string) ([]Value, error) {
	out := make([]Value, 0, len(raw))
	for _, r := range raw {
		v, err := NewValue(r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
