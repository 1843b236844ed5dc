// Package pattern defines the declarative subgraph patterns that drive the
// rewriter: token slots with attribute constraints, edge-label constraints,
// linear-distance constraints, and lexical tuple constraints.
//
// Patterns are immutable value objects. All validation - duplicate slot
// names, references to undeclared slots, malformed regular expressions,
// negative distances - happens at construction time, so a pattern that was
// built successfully never fails during matching.
package pattern
