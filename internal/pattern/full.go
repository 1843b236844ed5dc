package pattern

// EdgeConstraint constrains the labels of the edges from the token bound to
// Child to the token bound to Parent. Every listed label constraint must
// hold simultaneously.
type EdgeConstraint struct {
	Child  string
	Parent string
	Labels []LabelConstraint
}

// NewEdge builds an edge constraint between two named slots.
func NewEdge(child, parent string, labels ...LabelConstraint) EdgeConstraint {
	return EdgeConstraint{Child: child, Parent: parent, Labels: labels}
}

// Full is a complete immutable subgraph pattern: token slots plus edge,
// distance, and lexical tuple constraints between them.
type Full struct {
	Tokens    []TokenSlot
	Edges     []EdgeConstraint
	Distances []Distance
	Tuples    []Tuple
}

// FullOption adds constraints to a pattern under construction.
type FullOption func(*Full)

// Slots declares the pattern's token slots.
func Slots(slots ...TokenSlot) FullOption {
	return func(f *Full) { f.Tokens = append(f.Tokens, slots...) }
}

// Edges declares edge constraints.
func Edges(edges ...EdgeConstraint) FullOption {
	return func(f *Full) { f.Edges = append(f.Edges, edges...) }
}

// Distances declares linear-distance constraints.
func Distances(distances ...Distance) FullOption {
	return func(f *Full) { f.Distances = append(f.Distances, distances...) }
}

// Tuples declares lexical tuple constraints.
func Tuples(tuples ...Tuple) FullOption {
	return func(f *Full) { f.Tuples = append(f.Tuples, tuples...) }
}

// NewFull assembles and validates a pattern. It fails with a
// ValidationError when a slot name is used twice or when an edge, distance,
// or tuple constraint references a slot that was never declared.
func NewFull(opts ...FullOption) (Full, error) {
	var f Full
	for _, opt := range opts {
		opt(&f)
	}

	declared := make(map[string]bool, len(f.Tokens))
	for _, slot := range f.Tokens {
		if declared[slot.Name] {
			return Full{}, newValidationError("slot name %q used twice", slot.Name)
		}
		declared[slot.Name] = true
	}

	check := func(name string) error {
		if !declared[name] {
			return newValidationError("constraint references undeclared slot %q", name)
		}
		return nil
	}
	for _, e := range f.Edges {
		if err := check(e.Child); err != nil {
			return Full{}, err
		}
		if err := check(e.Parent); err != nil {
			return Full{}, err
		}
	}
	for _, d := range f.Distances {
		n1, n2 := d.Names()
		if err := check(n1); err != nil {
			return Full{}, err
		}
		if err := check(n2); err != nil {
			return Full{}, err
		}
	}
	for _, t := range f.Tuples {
		for _, n := range t.Names() {
			if err := check(n); err != nil {
				return Full{}, err
			}
		}
	}
	return f, nil
}

// MustFull panics on an invalid pattern. For the fixed rule catalog, whose
// patterns are authored in code and covered by tests.
func MustFull(opts ...FullOption) Full {
	f, err := NewFull(opts...)
	if err != nil {
		panic(err)
	}
	return f
}

// Slot returns the declared slot with the given name.
func (f Full) Slot(name string) (TokenSlot, bool) {
	for _, s := range f.Tokens {
		if s.Name == name {
			return s, true
		}
	}
	return TokenSlot{}, false
}
