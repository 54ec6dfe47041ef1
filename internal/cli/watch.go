package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/chartbump/internal/bump"
	"github.com/hupe1980/chartbump/internal/config"
	"github.com/hupe1980/chartbump/internal/gitx"
	"github.com/hupe1980/chartbump/internal/logging"
	"github.com/hupe1980/chartbump/internal/watch"
)

type watchOptions struct {
	debounce time.Duration
}

func newWatchCommand() *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Watch chart files and report pending bumps on change",
		Long: `Watch the working copy for chart file changes and rerun the bump decision
logic after each change burst. Watch mode is always a dry run: it reports
which charts would be bumped but never writes or stages anything.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, rootArg(args), opts)
		},
	}

	cmd.Flags().DurationVar(&opts.debounce, "debounce", 500*time.Millisecond, "quiet period before rerunning after a change")

	return cmd
}

func runWatch(cmd *cobra.Command, root string, opts *watchOptions) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	logger := logging.FromContext(ctx)

	r := bump.New(gitx.NewCLI(root), bump.Options{
		Root:      root,
		Remote:    cfg.Remote,
		Branch:    cfg.Branch,
		DryRun:    true,
		KeepGoing: true, // one bad chart must not kill the watch loop
	}, logger)

	watchOpts := watch.DefaultOptions()
	watchOpts.Root = root
	watchOpts.Debounce = opts.debounce
	watchOpts.Logger = logger
	watchOpts.Out = cmd.ErrOrStderr()

	err := watch.Run(ctx, watchOpts, func(ctx context.Context) (*bump.Summary, error) {
		return r.Run(ctx)
	})
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	return nil
}
