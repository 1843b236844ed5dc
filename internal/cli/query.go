package cli

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/spf13/cobra"

	"github.com/nlpforge/gobart/internal/conllu"
	"github.com/nlpforge/gobart/internal/convert"
	"github.com/nlpforge/gobart/internal/stats"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Config   string
	StatsDB  string
	Disable  []string
	Bindings bool
}

// QueryResult is the JSON payload for the query command.
type QueryResult struct {
	Sentences int            `json:"sentences"`
	Matches   map[string]int `json:"matches"`
	RunToken  string         `json:"run_token,omitempty"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <corpus-file>",
		Short: "Match rules without rewriting",
		Long: `Run the active rule catalog over a CoNLL-U corpus in query mode.

Each sentence gets a single matching pass and no edges are rewritten. The
per-rule match counts are reported, and with --stats-db the individual
bindings are recorded in a SQLite database for later inspection.

Example:
  gobart query corpus.conllu
  gobart query --stats-db matches.db corpus.conllu`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "path to YAML converter config")
	cmd.Flags().StringVar(&opts.StatsDB, "stats-db", "", "record matches in a SQLite database at this path")
	cmd.Flags().StringSliceVar(&opts.Disable, "disable", nil, "rule names to force-disable")
	cmd.Flags().BoolVar(&opts.Bindings, "bindings", false, "print every binding, not just counts")

	return cmd
}

func runQuery(opts *QueryOptions, path string, cmd *cobra.Command) error {
	configureLogging(opts.RootOptions)

	cfg, err := LoadConfig(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	cfg.DisabledRules = append(cfg.DisabledRules, opts.Disable...)

	conv, err := convert.New(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	text, err := ReadTextFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read corpus", err)
	}
	sentences, err := conllu.Parse(text)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to parse corpus", err)
	}

	var st *stats.Store
	var token string
	if opts.StatsDB != "" {
		st, err = stats.Open(opts.StatsDB)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open statistics database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing statistics database", "error", closeErr)
			}
		}()

		token = stats.NewRunToken()
		if err := st.BeginRun(cmd.Context(), token, cfg.UDVersion); err != nil {
			return WrapExitError(ExitCommandError, "failed to start statistics run", err)
		}
		slog.Info("recording matches", "db", opts.StatsDB, "run", token)
	}

	counts := make(map[string]int)
	for i, s := range sentences {
		results, _ := conv.Query(s.Graph)
		for rule, bindings := range results {
			counts[rule] += len(bindings)
			if opts.Bindings {
				for _, b := range bindings {
					fmt.Fprintf(cmd.OutOrStdout(), "sentence %d: %s %s\n", i, rule, b.String())
				}
			}
		}
		if st != nil {
			if err := st.RecordMatches(cmd.Context(), token, i, results); err != nil {
				return WrapExitError(ExitCommandError, "failed to record matches", err)
			}
		}
	}

	result := QueryResult{Sentences: len(sentences), Matches: counts, RunToken: token}
	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return formatter.Success(result)
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintf(cmd.OutOrStdout(), "%d sentence(s)\n", len(sentences))
	for _, name := range names {
		fmt.Fprintf(cmd.OutOrStdout(), "%-40s %d\n", name, counts[name])
	}
	return nil
}
