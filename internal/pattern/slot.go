package pattern

// FieldName selects which token attribute a Field constrains.
type FieldName int

const (
	FieldWord FieldName = iota
	FieldLemma
	FieldTag
	FieldEntity
)

func (f FieldName) String() string {
	switch f {
	case FieldWord:
		return "word"
	case FieldLemma:
		return "lemma"
	case FieldTag:
		return "tag"
	case FieldEntity:
		return "entity"
	}
	return "unknown"
}

// Field constrains one token attribute to match one of a list of literal or
// /regex/ values (OR semantics).
type Field struct {
	Name   FieldName
	values []Value
}

// NewField builds an attribute constraint.
func NewField(name FieldName, values ...string) (Field, error) {
	vs, err := newValues(values)
	if err != nil {
		return Field{}, err
	}
	return Field{Name: name, values: vs}, nil
}

// MustField panics on a malformed value. For catalog literals.
func MustField(name FieldName, values ...string) Field {
	f, err := NewField(name, values...)
	if err != nil {
		panic(err)
	}
	return f
}

// Match reports whether the attribute value satisfies the field constraint.
func (f Field) Match(attr string) bool {
	for _, v := range f.values {
		if v.Match(attr) {
			return true
		}
	}
	return false
}

// TokenSlot is a named variable of a pattern. A binding assigns a concrete
// graph token to every mandatory slot; optional slots may be left unbound,
// in which case constraints referencing them hold vacuously.
type TokenSlot struct {
	Name     string
	Capture  bool
	Optional bool
	Root     *bool // nil: unconstrained; otherwise must (or must not) be the root
	Spec     []Field
	Incoming []LabelConstraint // over labels the slot bears to its governors
	Outgoing []LabelConstraint // over labels of the slot's dependents
}

// SlotOption configures a TokenSlot during construction.
type SlotOption func(*TokenSlot)

// NoCapture excludes the slot's binding from reported results.
func NoCapture() SlotOption {
	return func(s *TokenSlot) { s.Capture = false }
}

// Optional marks the slot as optional.
func Optional() SlotOption {
	return func(s *TokenSlot) { s.Optional = true }
}

// IsRoot requires the bound token to be (or not be) the sentence root.
func IsRoot(v bool) SlotOption {
	return func(s *TokenSlot) { root := v; s.Root = &root }
}

// WithField adds an attribute constraint.
func WithField(f Field) SlotOption {
	return func(s *TokenSlot) { s.Spec = append(s.Spec, f) }
}

// WithIncoming adds a label constraint over the slot's incoming edges.
func WithIncoming(lc LabelConstraint) SlotOption {
	return func(s *TokenSlot) { s.Incoming = append(s.Incoming, lc) }
}

// WithOutgoing adds a label constraint over the slot's outgoing edges.
func WithOutgoing(lc LabelConstraint) SlotOption {
	return func(s *TokenSlot) { s.Outgoing = append(s.Outgoing, lc) }
}

// NewSlot builds a token slot. Slots capture by default, mirroring how the
// rule catalog consumes them.
func NewSlot(name string, opts ...SlotOption) TokenSlot {
	s := TokenSlot{Name: name, Capture: true}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Selectivity scores how constrained the slot is. The matcher binds more
// selective slots first to prune the search early; the exact ordering is not
// an observable contract.
func (s TokenSlot) Selectivity() int {
	score := 2 * len(s.Spec)
	if s.Root != nil {
		score += 2
	}
	score += len(s.Incoming) + len(s.Outgoing)
	return score
}
