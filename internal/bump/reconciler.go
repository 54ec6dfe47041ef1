// Package bump implements the per-chart version reconciliation flow: resolve
// the previous and current chart versions, decide whether a patch bump is
// needed, and rewrite + stage the manifest when it is.
package bump

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/hupe1980/chartbump/internal/chart"
	"github.com/hupe1980/chartbump/internal/gitx"
)

// Outcome is the terminal state of a single chart's reconciliation.
type Outcome string

// Per-chart terminal states.
const (
	// OutcomeManualEdit means the version was hand-edited; the edit wins and
	// nothing is written.
	OutcomeManualEdit Outcome = "manual-edit"

	// OutcomeUpToDate means the on-disk version already equals the expected
	// next version; nothing to do.
	OutcomeUpToDate Outcome = "up-to-date"

	// OutcomeBumped means the manifest was rewritten to the next patch
	// version and staged (or would be, in dry-run mode).
	OutcomeBumped Outcome = "bumped"
)

// Options configures a reconciliation run.
type Options struct {
	// Root is the repository working-copy root. Changed paths reported by
	// git are resolved relative to it.
	Root string

	// Remote is the git remote queried for the default branch.
	Remote string

	// Branch, when non-empty, is used as the comparison baseline directly
	// and the remote is never queried.
	Branch string

	// DryRun computes and reports decisions without writing or staging.
	DryRun bool

	// ShowDiff attaches a unified diff preview to bumped results.
	ShowDiff bool

	// KeepGoing isolates failures per chart: the run continues past a
	// failing chart and collects its error instead of aborting.
	KeepGoing bool
}

// Result describes what happened to one chart directory.
type Result struct {
	ChartDir string
	Previous string
	Current  string
	Next     string
	Outcome  Outcome

	// Edit classifies a manual edit (upgrade/downgrade/changed).
	// Only set for OutcomeManualEdit.
	Edit chart.EditKind

	// Diff is a unified diff preview of the rewrite. Only set for
	// OutcomeBumped when diffs are requested.
	Diff string

	// Err is the per-chart failure, only set in keep-going mode.
	Err error
}

// Summary aggregates a whole run.
type Summary struct {
	Branch  string
	Results []Result
}

// Bumped counts charts that were (or would be) rewritten and staged.
func (s *Summary) Bumped() int {
	n := 0

	for _, r := range s.Results {
		if r.Outcome == OutcomeBumped {
			n++
		}
	}

	return n
}

// Failed counts charts that errored in keep-going mode.
func (s *Summary) Failed() int {
	n := 0

	for _, r := range s.Results {
		if r.Err != nil {
			n++
		}
	}

	return n
}

// Reconciler orchestrates the whole flow against an injected git client.
type Reconciler struct {
	git    gitx.Client
	opts   Options
	logger *slog.Logger
}

// New creates a Reconciler. A nil logger falls back to slog.Default().
func New(git gitx.Client, opts Options, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}

	if opts.Remote == "" {
		opts.Remote = "origin"
	}

	return &Reconciler{git: git, opts: opts, logger: logger}
}

// Run resolves the base branch, discovers changed chart directories, and
// reconciles each one in discovery order. Without KeepGoing the first failing
// chart aborts the run; the partial summary is returned alongside the error.
// Manifests already staged by earlier charts stay staged either way.
func (r *Reconciler) Run(ctx context.Context) (*Summary, error) {
	branch := r.opts.Branch
	if branch == "" {
		b, err := r.git.DefaultBranch(ctx, r.opts.Remote)
		if err != nil {
			return nil, fmt.Errorf("discovering default branch: %w", err)
		}

		branch = b
	}

	r.logger.Info("base branch resolved", slog.String("branch", branch))

	changed, err := r.git.ChangedFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing changed files: %w", err)
	}

	dirs := chart.Dirs(changed)
	r.logger.Debug("chart directories discovered",
		slog.Int("changedFiles", len(changed)),
		slog.Int("chartDirs", len(dirs)),
	)

	summary := &Summary{Branch: branch}

	for _, dir := range dirs {
		res, err := r.reconcile(ctx, branch, dir)
		if err != nil {
			if !r.opts.KeepGoing {
				return summary, fmt.Errorf("reconciling %s: %w", dir, err)
			}

			r.logger.Error("chart reconciliation failed",
				slog.String("chart", dir),
				slog.String("error", err.Error()),
			)
			summary.Results = append(summary.Results, Result{ChartDir: dir, Err: err})

			continue
		}

		summary.Results = append(summary.Results, *res)
	}

	return summary, nil
}

// reconcile runs the per-chart state machine:
// versions resolved → manual edit | up to date | bumped and staged.
func (r *Reconciler) reconcile(ctx context.Context, branch, dir string) (*Result, error) {
	manifestRel := path.Join(dir, chart.ManifestName)

	histBytes, err := r.git.ShowFile(ctx, branch, manifestRel)
	if err != nil {
		return nil, fmt.Errorf("reading %s at %s: %w", manifestRel, branch, err)
	}

	prev, err := chart.HistoricalVersion(histBytes)
	if err != nil {
		return nil, fmt.Errorf("manifest at %s: %w", branch, err)
	}

	manifestPath := filepath.Join(r.opts.Root, filepath.FromSlash(manifestRel))

	curr, err := chart.CurrentVersion(manifestPath)
	if err != nil {
		return nil, err
	}

	r.logger.Info("versions resolved",
		slog.String("chart", dir),
		slog.String("previous", prev),
		slog.String("current", curr),
	)

	next, err := chart.IncrementPatch(prev)
	if err != nil {
		return nil, err
	}

	res := &Result{ChartDir: dir, Previous: prev, Current: curr, Next: next}

	switch {
	case curr == next:
		res.Outcome = OutcomeUpToDate
		r.logger.Info("chart already at expected version", slog.String("chart", dir), slog.String("version", curr))

	case curr != prev:
		res.Outcome = OutcomeManualEdit
		res.Edit = chart.ClassifyEdit(prev, curr)
		r.logger.Info("chart version was updated manually",
			slog.String("chart", dir),
			slog.String("edit", string(res.Edit)),
		)

	default:
		res.Outcome = OutcomeBumped

		if r.opts.ShowDiff || r.opts.DryRun {
			diff, diffErr := r.previewDiff(manifestPath, manifestRel, next)
			if diffErr != nil {
				return nil, diffErr
			}

			res.Diff = diff
		}

		if r.opts.DryRun {
			r.logger.Info("would update chart version",
				slog.String("chart", dir),
				slog.String("from", curr),
				slog.String("to", next),
			)

			break
		}

		r.logger.Info("updating chart version",
			slog.String("chart", dir),
			slog.String("from", curr),
			slog.String("to", next),
		)

		if err := chart.RewriteVersion(manifestPath, next); err != nil {
			return nil, err
		}

		if err := r.git.Stage(ctx, manifestRel); err != nil {
			return nil, fmt.Errorf("staging %s: %w", manifestRel, err)
		}
	}

	return res, nil
}

// previewDiff renders a unified diff of the pending rewrite without touching
// the file.
func (r *Reconciler) previewDiff(manifestPath, manifestRel, next string) (string, error) {
	before, err := os.ReadFile(manifestPath)
	if err != nil {
		return "", fmt.Errorf("reading manifest: %w", err)
	}

	after, err := chart.RenderRewrite(before, next)
	if err != nil {
		return "", fmt.Errorf("%w: %s", err, manifestPath)
	}

	unified, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: manifestRel,
		ToFile:   manifestRel,
		Context:  3,
	})
	if err != nil {
		return "", fmt.Errorf("computing diff: %w", err)
	}

	return unified, nil
}
