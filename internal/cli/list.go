package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/chartbump/internal/bump"
	"github.com/hupe1980/chartbump/internal/config"
	"github.com/hupe1980/chartbump/internal/gitx"
	"github.com/hupe1980/chartbump/internal/logging"
)

type listOptions struct {
	output string
}

func newListCommand() *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list [path]",
		Short: "List changed charts and the decision bump would take",
		Long: `List chart directories with uncommitted changes along with their previous
and current versions and the decision a bump run would take. Nothing is
written or staged.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, rootArg(args), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "text", "output format: text, yaml")

	return cmd
}

// listEntry is the machine-readable view of one chart's pending decision.
type listEntry struct {
	Chart    string `yaml:"chart"`
	Previous string `yaml:"previous,omitempty"`
	Current  string `yaml:"current,omitempty"`
	Next     string `yaml:"next,omitempty"`
	Decision string `yaml:"decision"`
	Error    string `yaml:"error,omitempty"`
}

func runList(cmd *cobra.Command, root string, opts *listOptions) error {
	if opts.output != "text" && opts.output != "yaml" {
		return &ExitError{Code: 2, Err: fmt.Errorf("invalid output format %q: must be text or yaml", opts.output)}
	}

	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	logger := logging.FromContext(ctx)

	// The listing is a dry reconcile: same decisions, no side effects.
	r := bump.New(gitx.NewCLI(root), bump.Options{
		Root:      root,
		Remote:    cfg.Remote,
		Branch:    cfg.Branch,
		DryRun:    true,
		KeepGoing: cfg.KeepGoing,
	}, logger)

	summary, err := r.Run(ctx)
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	if opts.output == "yaml" {
		if err := writeListYAML(cmd.OutOrStdout(), summary); err != nil {
			return &ExitError{Code: 1, Err: err}
		}
	} else {
		writeListText(cmd.OutOrStdout(), summary)
	}

	if failed := summary.Failed(); failed > 0 {
		return &ExitError{Code: 1, Err: fmt.Errorf("%d chart(s) failed to resolve", failed)}
	}

	return nil
}

func writeListText(w io.Writer, summary *bump.Summary) {
	_, _ = fmt.Fprintf(w, "Base branch: %s\n", summary.Branch)

	if len(summary.Results) == 0 {
		_, _ = fmt.Fprintln(w, "No changed charts detected.")
		return
	}

	for _, e := range listEntries(summary) {
		if e.Error != "" {
			_, _ = fmt.Fprintf(w, "%s  ERROR: %s\n", e.Chart, e.Error)
			continue
		}

		_, _ = fmt.Fprintf(w, "%s  previous=%s current=%s next=%s  %s\n",
			e.Chart, e.Previous, e.Current, e.Next, e.Decision)
	}
}

func writeListYAML(w io.Writer, summary *bump.Summary) error {
	doc := struct {
		Branch string      `yaml:"branch"`
		Charts []listEntry `yaml:"charts"`
	}{
		Branch: summary.Branch,
		Charts: listEntries(summary),
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling list output: %w", err)
	}

	_, err = w.Write(data)

	return err
}

func listEntries(summary *bump.Summary) []listEntry {
	entries := make([]listEntry, 0, len(summary.Results))

	for _, res := range summary.Results {
		e := listEntry{
			Chart:    res.ChartDir,
			Previous: res.Previous,
			Current:  res.Current,
			Next:     res.Next,
			Decision: string(res.Outcome),
		}

		if res.Outcome == bump.OutcomeManualEdit {
			e.Decision = fmt.Sprintf("%s (%s)", res.Outcome, res.Edit)
		}

		if res.Err != nil {
			e.Decision = "failed"
			e.Error = res.Err.Error()
		}

		entries = append(entries, e)
	}

	return entries
}
