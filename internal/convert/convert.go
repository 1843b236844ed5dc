// Package convert drives the rule catalog over a dependency graph: it
// selects the active rules for a configuration, applies their matches as
// graph edits (or records them in query mode), and iterates to a fixpoint
// within an iteration budget.
package convert

import (
	"fmt"
	"log/slog"

	"github.com/nlpforge/gobart/internal/graph"
	"github.com/nlpforge/gobart/internal/match"
	"github.com/nlpforge/gobart/internal/rules"
)

// Status is the terminal state of one conversion run.
type Status int

const (
	// Converged means an iteration produced no change.
	Converged Status = iota
	// BudgetExhausted means the iteration budget ran out first.
	BudgetExhausted
)

func (s Status) String() string {
	if s == Converged {
		return "converged"
	}
	return "budget-exhausted"
}

// Converter holds a validated configuration and the active rule set derived
// from it. Construction does all catalog and configuration validation, so a
// Converter is immutable, cheap to reuse across sentences, and safe to share
// between workers.
type Converter struct {
	cfg     Config
	catalog []rules.Rule
	active  []rules.Rule
}

// New validates the configuration and builds the active rule set. Fails
// with a ConfigError for an unknown UD version or unknown names in the
// force-disable list.
func New(cfg Config) (*Converter, error) {
	catalog, err := rules.Build(cfg.UDVersion)
	if err != nil {
		return nil, &ConfigError{Message: err.Error()}
	}

	known := make(map[string]bool, len(catalog))
	for _, r := range catalog {
		known[r.Name] = true
	}
	disabled := make(map[string]bool, len(cfg.DisabledRules))
	for _, name := range cfg.DisabledRules {
		if !known[name] {
			return nil, &ConfigError{Rule: name, Message: "unknown rule in disable list"}
		}
		disabled[name] = true
	}

	c := &Converter{cfg: cfg, catalog: catalog}
	for _, r := range catalog {
		if !c.categoryEnabled(r.Category) || disabled[r.Name] {
			continue
		}
		if cfg.RemoveNodeAdding && r.NodeAdding {
			continue
		}
		if cfg.RemoveUncertain && r.Uncertain {
			continue
		}
		c.active = append(c.active, r)
	}
	return c, nil
}

func (c *Converter) categoryEnabled(cat rules.Category) bool {
	switch cat {
	case rules.Baseline:
		return c.cfg.EnhanceUD
	case rules.PlusPlus:
		return c.cfg.EnhancedPlusPlus
	case rules.Extra:
		return c.cfg.EnhancedExtra
	}
	return false
}

// RuleNames returns the full catalog's rule names in application order,
// including rules the current configuration deactivates. Used for selective
// disabling and diagnostics.
func (c *Converter) RuleNames() []string {
	names := make([]string, len(c.catalog))
	for i, r := range c.catalog {
		names[i] = r.Name
	}
	return names
}

// ActiveRuleNames returns the names of the rules this configuration runs.
func (c *Converter) ActiveRuleNames() []string {
	names := make([]string, len(c.active))
	for i, r := range c.active {
		names[i] = r.Name
	}
	return names
}

// Convert rewrites the graph in place and returns the number of iterations
// consumed together with the terminal status. Rules within one iteration
// observe the partially-updated graph left by earlier rules in the same
// pass; that ordering dependency is intentional.
func (c *Converter) Convert(g *graph.Graph) (int, Status) {
	iters := 0
	status := BudgetExhausted
	for c.cfg.Iterations.Allows(iters) {
		before := g.Revision()
		for _, r := range c.active {
			bindings := match.Find(g, r.Pattern)
			for _, b := range bindings {
				r.Apply(g, b)
			}
			if n := len(bindings); n > 0 {
				slog.Debug("rule applied", "rule", r.Name, "bindings", n, "iteration", iters)
			}
		}
		iters++
		if g.Revision() == before {
			status = Converged
			break
		}
	}

	c.postProcess(g)
	slog.Info("conversion finished",
		"iterations", iters,
		"status", status.String(),
		"tokens", g.Len(),
	)
	return iters, status
}

// postProcess applies the configuration-gated output strips once, after the
// fixpoint loop. These are not part of the iterated rule set.
func (c *Converter) postProcess(g *graph.Graph) {
	if c.cfg.RemoveEnhancedInfo {
		g.StripProvenance(string(rules.Baseline), string(rules.PlusPlus))
	}
	if c.cfg.RemoveExtraInfo {
		g.RemoveBySrc(string(rules.Extra))
	}
	if c.cfg.RemoveUncertain {
		g.StripUncertain()
	}
}

// Query runs the active rules in query mode: bindings are collected per rule
// name and the graph is never mutated. Since matching cannot change the
// graph, a single pass is a fixpoint; the returned iteration count is 1
// unless the budget forbids even that.
func (c *Converter) Query(g *graph.Graph) (map[string][]match.Binding, int) {
	results := make(map[string][]match.Binding)
	if !c.cfg.Iterations.Allows(0) {
		return results, 0
	}
	for _, r := range c.active {
		if bindings := match.Find(g, r.Pattern); len(bindings) > 0 {
			results[r.Name] = bindings
		}
	}
	return results, 1
}

// Convert is a one-shot helper: build a Converter for cfg and run it on g.
func Convert(g *graph.Graph, cfg Config) (int, Status, error) {
	c, err := New(cfg)
	if err != nil {
		return 0, BudgetExhausted, err
	}
	iters, status := c.Convert(g)
	return iters, status, nil
}

// ConvertQuery is the one-shot query-mode counterpart of Convert.
func ConvertQuery(g *graph.Graph, cfg Config) (map[string][]match.Binding, int, error) {
	c, err := New(cfg)
	if err != nil {
		return nil, 0, err
	}
	results, iters := c.Query(g)
	return results, iters, nil
}

// RuleNames returns the catalog names for a UD version without building a
// full Converter.
func RuleNames(version int) ([]string, error) {
	names, err := rules.Names(version)
	if err != nil {
		return nil, &ConfigError{Message: fmt.Sprintf("list rules: %v", err)}
	}
	return names, nil
}
