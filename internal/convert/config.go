package convert

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IterationBudget bounds the fixpoint loop. The unbounded form means "run to
// fixpoint" - an explicit variant rather than an infinity sentinel.
type IterationBudget struct {
	unbounded bool
	n         int
}

// Bounded allows at most n iterations. Bounded(0) performs zero rule
// applications and leaves the graph untouched.
func Bounded(n int) IterationBudget { return IterationBudget{n: n} }

// Unbounded runs until no rule produces a change.
func Unbounded() IterationBudget { return IterationBudget{unbounded: true} }

// Allows reports whether iteration number i (0-based) may still run.
func (b IterationBudget) Allows(i int) bool { return b.unbounded || i < b.n }

func (b IterationBudget) String() string {
	if b.unbounded {
		return "unbounded"
	}
	return fmt.Sprintf("%d", b.n)
}

// MarshalYAML encodes the budget as "unbounded" or an integer.
func (b IterationBudget) MarshalYAML() (any, error) {
	if b.unbounded {
		return "unbounded", nil
	}
	return b.n, nil
}

// UnmarshalYAML accepts "unbounded" or a non-negative integer.
func (b *IterationBudget) UnmarshalYAML(node *yaml.Node) error {
	var n int
	if err := node.Decode(&n); err == nil {
		if n < 0 {
			return fmt.Errorf("iterations must be non-negative (got %d)", n)
		}
		*b = Bounded(n)
		return nil
	}
	var s string
	if err := node.Decode(&s); err != nil || s != "unbounded" {
		return fmt.Errorf("iterations must be an integer or \"unbounded\" (got %q)", node.Value)
	}
	*b = Unbounded()
	return nil
}

// Config enumerates the independent converter toggles. A rule is active iff
// its category is enabled AND it survives the node-adding / uncertain
// exclusions AND it is not force-disabled by name.
type Config struct {
	// EnhanceUD enables the baseline enhancement category.
	EnhanceUD bool `yaml:"enhance_ud"`
	// EnhancedPlusPlus enables the enhanced++ category.
	EnhancedPlusPlus bool `yaml:"enhanced_plus_plus"`
	// EnhancedExtra enables the enhanced-extra category.
	EnhancedExtra bool `yaml:"enhanced_extra"`

	// Iterations bounds the fixpoint loop.
	Iterations IterationBudget `yaml:"iterations"`

	// RemoveEnhancedInfo strips the eud/eudpp provenance markers from the
	// output (the edges stay).
	RemoveEnhancedInfo bool `yaml:"remove_enhanced_info"`
	// RemoveExtraInfo drops every edge added by the extra category.
	RemoveExtraInfo bool `yaml:"remove_extra_info"`
	// RemoveNodeAdding skips any rule whose action may insert a token, for
	// consumers that assume a fixed token count.
	RemoveNodeAdding bool `yaml:"remove_node_adding"`
	// RemoveUncertain skips low-confidence rules and strips uncertain
	// markers from the output.
	RemoveUncertain bool `yaml:"remove_uncertain"`

	// DisabledRules force-disables rules by name regardless of category.
	// Unknown names are a ConfigError at construction.
	DisabledRules []string `yaml:"disabled_rules"`

	// UDVersion selects the relation vocabulary generation (1 or 2).
	UDVersion int `yaml:"ud_version"`
}

// DefaultConfig mirrors the converter's historical defaults: all categories
// enabled, run to fixpoint, keep everything, UD v1.
func DefaultConfig() Config {
	return Config{
		EnhanceUD:        true,
		EnhancedPlusPlus: true,
		EnhancedExtra:    true,
		Iterations:       Unbounded(),
		UDVersion:        1,
	}
}
