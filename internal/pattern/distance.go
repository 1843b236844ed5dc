package pattern

// Distance constrains the linear gap between two bound tokens: the number of
// tokens strictly between them in sentence order. Distances are directional
// - Token1 must precede Token2.
type Distance interface {
	distance()
	// Names returns the two slot names the constraint references.
	Names() (string, string)
	// SatisfiedBy evaluates the constraint for the positions of the bound
	// tokens.
	SatisfiedBy(pos1, pos2 int) bool
}

// ExactDistance requires the gap to equal Gap exactly. A gap of 0 means the
// tokens are adjacent.
type ExactDistance struct {
	Token1 string
	Token2 string
	Gap    int
}

func (ExactDistance) distance() {}

// Names implements Distance.
func (d ExactDistance) Names() (string, string) { return d.Token1, d.Token2 }

// SatisfiedBy implements Distance.
func (d ExactDistance) SatisfiedBy(pos1, pos2 int) bool {
	return pos2 > pos1 && pos2-pos1-1 == d.Gap
}

// NewExactDistance fails on a negative gap; exact distances are always
// finite.
func NewExactDistance(token1, token2 string, gap int) (ExactDistance, error) {
	if gap < 0 {
		return ExactDistance{}, newValidationError("exact distance can't be negative (got %d)", gap)
	}
	return ExactDistance{Token1: token1, Token2: token2, Gap: gap}, nil
}

// UptoDistance requires the gap to be at most Gap. The unbounded form only
// constrains relative order, not magnitude - an explicit flag rather than an
// infinity sentinel.
type UptoDistance struct {
	Token1    string
	Token2    string
	Gap       int
	Unbounded bool
}

func (UptoDistance) distance() {}

// Names implements Distance.
func (d UptoDistance) Names() (string, string) { return d.Token1, d.Token2 }

// SatisfiedBy implements Distance.
func (d UptoDistance) SatisfiedBy(pos1, pos2 int) bool {
	if pos2 <= pos1 {
		return false
	}
	return d.Unbounded || pos2-pos1-1 <= d.Gap
}

// NewUptoDistance fails on a negative gap.
func NewUptoDistance(token1, token2 string, gap int) (UptoDistance, error) {
	if gap < 0 {
		return UptoDistance{}, newValidationError("'up-to' distance can't be negative (got %d)", gap)
	}
	return UptoDistance{Token1: token1, Token2: token2, Gap: gap}, nil
}

// NewUnboundedDistance constrains only the order of the two tokens.
func NewUnboundedDistance(token1, token2 string) UptoDistance {
	return UptoDistance{Token1: token1, Token2: token2, Unbounded: true}
}
