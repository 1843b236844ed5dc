package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nlpforge/gobart/internal/rules"
)

// RulesOptions holds flags for the rules command.
type RulesOptions struct {
	*RootOptions
	UDVersion int
}

// RuleInfo is the JSON payload for a single catalog entry.
type RuleInfo struct {
	Name       string `json:"name"`
	Category   string `json:"category"`
	NodeAdding bool   `json:"node_adding,omitempty"`
	Uncertain  bool   `json:"uncertain,omitempty"`
}

// NewRulesCommand creates the rules command.
func NewRulesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RulesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the rule catalog",
		Long: `List every conversion rule in catalog order with its category and flags.

Rule names are the values accepted by --disable and by the disabled_rules
config key.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRules(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.UDVersion, "ud-version", 1, "UD relation vocabulary (1 or 2)")

	return cmd
}

func runRules(opts *RulesOptions, cmd *cobra.Command) error {
	catalog, err := rules.Build(opts.UDVersion)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid catalog request", err)
	}

	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}

	infos := make([]RuleInfo, len(catalog))
	for i, r := range catalog {
		infos[i] = RuleInfo{
			Name:       r.Name,
			Category:   string(r.Category),
			NodeAdding: r.NodeAdding,
			Uncertain:  r.Uncertain,
		}
	}

	if opts.Format == "json" {
		return formatter.Success(infos)
	}

	for _, info := range infos {
		flags := ""
		if info.NodeAdding {
			flags += " [node-adding]"
		}
		if info.Uncertain {
			flags += " [uncertain]"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-40s %s%s\n", info.Name, info.Category, flags)
	}
	return nil
}
