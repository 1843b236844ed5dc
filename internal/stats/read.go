package stats

import (
	"context"
	"fmt"
)

// RuleCount is one row of a per-rule match report.
type RuleCount struct {
	Rule  string
	Count int
}

// RuleCounts returns match counts per rule for a run, most frequent first.
func (s *Store) RuleCounts(ctx context.Context, token string) ([]RuleCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rule, COUNT(*) FROM matches
		WHERE run_token = ?
		GROUP BY rule
		ORDER BY COUNT(*) DESC, rule
	`, token)
	if err != nil {
		return nil, fmt.Errorf("stats: rule counts for %s: %w", token, err)
	}
	defer rows.Close()

	var out []RuleCount
	for rows.Next() {
		var rc RuleCount
		if err := rows.Scan(&rc.Rule, &rc.Count); err != nil {
			return nil, fmt.Errorf("stats: scan rule count: %w", err)
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}

// SentenceCount returns how many corpus sentences a run has recorded.
func (s *Store) SentenceCount(ctx context.Context, token string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT sentences FROM runs WHERE token = ?`, token).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("stats: sentence count for %s: %w", token, err)
	}
	return n, nil
}

// Runs returns the recorded run tokens, newest first. UUIDv7 tokens sort by
// creation time, so ordering by token is ordering by time.
func (s *Store) Runs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT token FROM runs ORDER BY token DESC`)
	if err != nil {
		return nil, fmt.Errorf("stats: list runs: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("stats: scan run token: %w", err)
		}
		out = append(out, token)
	}
	return out, rows.Err()
}
