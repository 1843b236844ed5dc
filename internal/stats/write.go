package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nlpforge/gobart/internal/match"
)

// NewRunToken returns a time-sortable UUIDv7 identifying one query run.
func NewRunToken() string {
	return uuid.Must(uuid.NewV7()).String()
}

// BeginRun records a query run. The token correlates all matches recorded
// afterwards.
func (s *Store) BeginRun(ctx context.Context, token string, udVersion int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (token, created_at, ud_version)
		VALUES (?, ?, ?)
		ON CONFLICT(token) DO NOTHING
	`, token, time.Now().UTC().Format(time.RFC3339), udVersion)
	if err != nil {
		return fmt.Errorf("stats: begin run %s: %w", token, err)
	}
	return nil
}

// RecordMatches stores every captured binding of one sentence. Bindings are
// serialized as JSON with sorted keys, so re-recording the same sentence is
// idempotent via the primary key.
func (s *Store) RecordMatches(ctx context.Context, token string, sentence int, results map[string][]match.Binding) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("stats: begin tx: %w", err)
	}
	defer tx.Rollback()

	for rule, bindings := range results {
		for _, b := range bindings {
			encoded, err := json.Marshal(b.Tokens())
			if err != nil {
				return fmt.Errorf("stats: encode binding for %s: %w", rule, err)
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO matches (run_token, sentence, rule, binding)
				VALUES (?, ?, ?, ?)
				ON CONFLICT DO NOTHING
			`, token, sentence, rule, string(encoded))
			if err != nil {
				return fmt.Errorf("stats: record match %s/%d: %w", rule, sentence, err)
			}
		}
	}
	// sentence is a 0-based corpus index; the run records a count.
	if _, err := tx.ExecContext(ctx,
		`UPDATE runs SET sentences = MAX(sentences, ?) WHERE token = ?`,
		sentence+1, token); err != nil {
		return fmt.Errorf("stats: update run %s: %w", token, err)
	}
	return tx.Commit()
}
