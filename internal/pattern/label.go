package pattern

// LabelConstraint restricts the set of actual edge labels between two bound
// tokens. The constraint set is closed: the only variants are
// HasLabelFromList (positive) and HasNoLabel (negative), dispatched by
// exhaustive type switch in Satisfied.
type LabelConstraint interface {
	labelConstraint()
}

// HasLabelFromList is satisfied iff at least one actual label matches at
// least one of its values (OR semantics across the list).
type HasLabelFromList struct {
	values []Value
}

func (HasLabelFromList) labelConstraint() {}

// NewHasLabelFromList builds a positive label constraint from literal or
// /regex/ values.
func NewHasLabelFromList(values ...string) (HasLabelFromList, error) {
	vs, err := newValues(values)
	if err != nil {
		return HasLabelFromList{}, err
	}
	return HasLabelFromList{values: vs}, nil
}

// MustHasLabelFromList panics on a malformed value. For catalog literals.
func MustHasLabelFromList(values ...string) HasLabelFromList {
	lc, err := NewHasLabelFromList(values...)
	if err != nil {
		panic(err)
	}
	return lc
}

// HasNoLabel is satisfied iff no actual label matches its value.
type HasNoLabel struct {
	value Value
}

func (HasNoLabel) labelConstraint() {}

// NewHasNoLabel builds a negative label constraint from a literal or
// /regex/ value.
func NewHasNoLabel(value string) (HasNoLabel, error) {
	v, err := NewValue(value)
	if err != nil {
		return HasNoLabel{}, err
	}
	return HasNoLabel{value: v}, nil
}

// MustHasNoLabel panics on a malformed value. For catalog literals.
func MustHasNoLabel(value string) HasNoLabel {
	lc, err := NewHasNoLabel(value)
	if err != nil {
		panic(err)
	}
	return lc
}

// Satisfied evaluates a label constraint against the actual labels between
// two tokens. For a positive constraint it also returns the actual labels
// that matched, which actions use to derive new relation strings. A missing
// edge is an empty actual set: it never satisfies a positive constraint and
// always satisfies a negative one.
func Satisfied(lc LabelConstraint, actual []string) (matched []string, ok bool) {
	switch c := lc.(type) {
	case HasLabelFromList:
		for _, label := range actual {
			for _, v := range c.values {
				if v.Match(label) {
					matched = append(matched, label)
					break
				}
			}
		}
		return matched, len(matched) > 0
	case HasNoLabel:
		for _, label := range actual {
			if c.value.Match(label) {
				return nil, false
			}
		}
		return nil, true
	default:
		// Sealed interface - unreachable for constraints built through this
		// package's constructors.
		return nil, false
	}
}
