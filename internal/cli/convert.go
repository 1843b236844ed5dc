package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nlpforge/gobart/internal/conllu"
	"github.com/nlpforge/gobart/internal/convert"
	"github.com/nlpforge/gobart/internal/graph"
	"github.com/nlpforge/gobart/internal/odin"
	"github.com/nlpforge/gobart/internal/tacred"
)

// ConvertOptions holds flags for the convert command.
type ConvertOptions struct {
	*RootOptions
	Config           string
	Output           string
	InputFormat      string
	Disable          []string
	UDVersion        int
	Iterations       string
	PreserveComments bool
	Strict           bool
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConvertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "convert <corpus-file>",
		Short: "Enhance a dependency corpus",
		Long: `Convert basic dependency trees into Enhanced UD graphs.

The corpus is read, each sentence is rewritten to a fixpoint under the
active rule catalog, and the enhanced corpus is written out. CoNLL-U input
produces CoNLL-U with a populated DEPS column; Odin JSON documents gain a
"universal-enhanced" graph; TACRED records are emitted as CoNLL-U.

Example:
  gobart convert corpus.conllu -o enhanced.conllu
  gobart convert --input-format odin doc.json -o enhanced.json
  gobart convert --disable eud_passive_agent --iterations 3 corpus.conllu`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "path to YAML converter config")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&opts.InputFormat, "input-format", "conllu", "corpus format (conllu|odin|tacred)")
	cmd.Flags().StringSliceVar(&opts.Disable, "disable", nil, "rule names to force-disable")
	cmd.Flags().IntVar(&opts.UDVersion, "ud-version", 0, "UD relation vocabulary (1 or 2, overrides config)")
	cmd.Flags().StringVar(&opts.Iterations, "iterations", "", "iteration budget: a number or \"unbounded\" (overrides config)")
	cmd.Flags().BoolVar(&opts.PreserveComments, "preserve-comments", false, "carry CoNLL-U comment lines into the output")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail when any sentence exhausts its iteration budget")

	return cmd
}

func runConvert(opts *ConvertOptions, path string, cmd *cobra.Command) error {
	configureLogging(opts.RootOptions)

	cfg, err := resolveConfig(opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	conv, err := convert.New(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	switch opts.InputFormat {
	case "conllu":
		return convertConllu(opts, conv, path, cmd)
	case "odin":
		return convertOdin(opts, conv, path, cmd)
	case "tacred":
		return convertTacred(opts, conv, path, cmd)
	default:
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown input format %q", opts.InputFormat))
	}
}

// resolveConfig layers command-line overrides on top of the config file.
func resolveConfig(opts *ConvertOptions) (convert.Config, error) {
	cfg, err := LoadConfig(opts.Config)
	if err != nil {
		return cfg, err
	}
	cfg.DisabledRules = append(cfg.DisabledRules, opts.Disable...)
	if opts.UDVersion != 0 {
		cfg.UDVersion = opts.UDVersion
	}
	if opts.Iterations != "" {
		if opts.Iterations == "unbounded" {
			cfg.Iterations = convert.Unbounded()
		} else {
			n, convErr := strconv.Atoi(opts.Iterations)
			if convErr != nil || n < 0 {
				return cfg, fmt.Errorf("iterations must be a non-negative integer or \"unbounded\", got %q", opts.Iterations)
			}
			cfg.Iterations = convert.Bounded(n)
		}
	}
	return cfg, nil
}

func convertConllu(opts *ConvertOptions, conv *convert.Converter, path string, cmd *cobra.Command) error {
	text, err := ReadTextFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read corpus", err)
	}
	sentences, err := conllu.Parse(text)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to parse corpus", err)
	}

	graphs := make([]*graph.Graph, len(sentences))
	for i, s := range sentences {
		graphs[i] = s.Graph
	}
	if err := enhanceAll(opts, conv, graphs); err != nil {
		return err
	}

	return writeOutput(opts, cmd, conllu.Serialize(sentences, opts.PreserveComments))
}

func convertOdin(opts *ConvertOptions, conv *convert.Converter, path string, cmd *cobra.Command) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read document", err)
	}
	doc, err := odin.Decode(data)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to decode document", err)
	}
	graphs, err := doc.Graphs()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to extract dependency graphs", err)
	}
	if err := enhanceAll(opts, conv, graphs); err != nil {
		return err
	}
	if err := doc.SetEnhanced(graphs); err != nil {
		return WrapExitError(ExitCommandError, "failed to attach enhanced graphs", err)
	}
	out, err := doc.Encode()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to encode document", err)
	}
	return writeOutput(opts, cmd, string(out))
}

func convertTacred(opts *ConvertOptions, conv *convert.Converter, path string, cmd *cobra.Command) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read records", err)
	}
	records, err := tacred.Decode(data)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to decode records", err)
	}

	sentences := make([]*conllu.Sentence, 0, len(records))
	graphs := make([]*graph.Graph, 0, len(records))
	for _, rec := range records {
		g, gErr := rec.Graph()
		if gErr != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("record %s", rec.ID), gErr)
		}
		graphs = append(graphs, g)
		sentences = append(sentences, &conllu.Sentence{
			Graph:    g,
			Comments: []string{"# sent_id = " + rec.ID},
		})
	}
	if err := enhanceAll(opts, conv, graphs); err != nil {
		return err
	}
	return writeOutput(opts, cmd, conllu.Serialize(sentences, true))
}

// enhanceAll runs the converter over every graph, honoring --strict.
func enhanceAll(opts *ConvertOptions, conv *convert.Converter, graphs []*graph.Graph) error {
	exhausted := 0
	for i, g := range graphs {
		iters, status := conv.Convert(g)
		slog.Debug("sentence converted", "sentence", i, "iterations", iters, "status", status)
		if status == convert.BudgetExhausted {
			exhausted++
		}
	}
	if exhausted > 0 {
		slog.Warn("iteration budget exhausted", "sentences", exhausted)
		if opts.Strict {
			return NewExitError(ExitFailure, fmt.Sprintf("%d sentence(s) exhausted the iteration budget", exhausted))
		}
	}
	return nil
}

func writeOutput(opts *ConvertOptions, cmd *cobra.Command, text string) error {
	if opts.Output == "" {
		fmt.Fprint(cmd.OutOrStdout(), text)
		if !strings.HasSuffix(text, "\n") {
			fmt.Fprintln(cmd.OutOrStdout())
		}
		return nil
	}
	if err := WriteTextFile(opts.Output, text); err != nil {
		return WrapExitError(ExitCommandError, "failed to write output", err)
	}
	slog.Info("corpus written", "path", opts.Output)
	return nil
}

// configureLogging sets the default logger level from the verbose flag.
func configureLogging(opts *RootOptions) {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
