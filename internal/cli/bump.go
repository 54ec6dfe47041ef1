package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hupe1980/chartbump/internal/bump"
	"github.com/hupe1980/chartbump/internal/config"
	"github.com/hupe1980/chartbump/internal/gitx"
	"github.com/hupe1980/chartbump/internal/logging"
)

type bumpOptions struct {
	dryRun    bool
	showDiff  bool
	keepGoing bool
}

func newBumpCommand() *cobra.Command {
	opts := &bumpOptions{}

	cmd := &cobra.Command{
		Use:   "bump [path]",
		Short: "Bump patch versions of charts changed relative to HEAD",
		Long: `Detect chart directories with uncommitted changes, compare each chart's
version against the base branch, and auto-increment the patch component of
every chart whose version was not bumped by hand. Rewritten manifests are
staged for commit.

The optional path argument is the repository working-copy root and defaults
to the current directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBump(cmd, rootArg(args), opts)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.dryRun, "dry-run", false, "report decisions without writing or staging anything")
	f.BoolVar(&opts.showDiff, "show-diff", false, "print a unified diff of each manifest rewrite")
	f.BoolVar(&opts.keepGoing, "keep-going", false, "continue past failing charts and report a summary")

	return cmd
}

// rootArg resolves the optional positional working-copy path.
func rootArg(args []string) string {
	if len(args) == 1 {
		return args[0]
	}

	return "."
}

func runBump(cmd *cobra.Command, root string, opts *bumpOptions) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	logger := logging.FromContext(ctx)

	r := bump.New(gitx.NewCLI(root), bump.Options{
		Root:      root,
		Remote:    cfg.Remote,
		Branch:    cfg.Branch,
		DryRun:    opts.dryRun,
		ShowDiff:  opts.showDiff,
		KeepGoing: opts.keepGoing || cfg.KeepGoing,
	}, logger)

	summary, err := r.Run(ctx)
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	printBumpSummary(cmd.OutOrStdout(), summary, opts.dryRun)

	if opts.showDiff || opts.dryRun {
		printDiffs(cmd.OutOrStdout(), summary)
	}

	if failed := summary.Failed(); failed > 0 {
		return &ExitError{Code: 1, Err: fmt.Errorf("%d chart(s) failed to reconcile", failed)}
	}

	return nil
}

// printBumpSummary prints a human-readable summary of the run.
func printBumpSummary(w io.Writer, summary *bump.Summary, dryRun bool) {
	_, _ = fmt.Fprintf(w, "\n--- Bump Summary (base: %s) ---\n", summary.Branch)

	if len(summary.Results) == 0 {
		_, _ = fmt.Fprintln(w, "No changed charts detected.")
	}

	for _, res := range summary.Results {
		switch {
		case res.Err != nil:
			_, _ = fmt.Fprintf(w, "  %s: FAILED: %v\n", res.ChartDir, res.Err)
		case res.Outcome == bump.OutcomeManualEdit:
			_, _ = fmt.Fprintf(w, "  %s: %s → %s (manual %s, left untouched)\n",
				res.ChartDir, res.Previous, res.Current, res.Edit)
		case res.Outcome == bump.OutcomeUpToDate:
			_, _ = fmt.Fprintf(w, "  %s: already at %s\n", res.ChartDir, res.Current)
		case dryRun:
			_, _ = fmt.Fprintf(w, "  %s: %s → %s (dry-run, not written)\n",
				res.ChartDir, res.Current, res.Next)
		default:
			_, _ = fmt.Fprintf(w, "  %s: %s → %s (staged)\n",
				res.ChartDir, res.Current, res.Next)
		}
	}

	_, _ = fmt.Fprintf(w, "-------------------------------\n")
}

// printDiffs prints the unified diff previews of bumped charts.
func printDiffs(w io.Writer, summary *bump.Summary) {
	for _, res := range summary.Results {
		if res.Diff == "" {
			continue
		}

		_, _ = fmt.Fprintf(w, "\n%s", res.Diff)
	}
}
