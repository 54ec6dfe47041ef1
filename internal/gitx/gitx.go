// Package gitx wraps the system git binary behind a small interface so that
// the reconciliation logic can be tested against a fake repository.
package gitx

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Client is the version-control contract chartbump needs: four operations,
// nothing more. Any implementation with equivalent semantics (CLI, library,
// remote API) can back it.
type Client interface {
	// DefaultBranch returns the branch the given remote designates as its
	// HEAD branch.
	DefaultBranch(ctx context.Context, remote string) (string, error)

	// ChangedFiles lists paths (relative to the repository root) that differ
	// between the working tree and HEAD.
	ChangedFiles(ctx context.Context) ([]string, error)

	// ShowFile returns the content of path as it existed at ref.
	ShowFile(ctx context.Context, ref, path string) ([]byte, error)

	// Stage adds path to the index for the next commit.
	Stage(ctx context.Context, path string) error
}

// CommandError reports a failed git invocation, carrying the command line and
// whatever git wrote to stderr.
type CommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}

	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

// CLI implements Client by shelling out to the git binary.
type CLI struct {
	// Dir is the working directory for git invocations. Empty means the
	// process working directory.
	Dir string
}

// NewCLI creates a git CLI client rooted at dir.
func NewCLI(dir string) *CLI {
	return &CLI{Dir: dir}
}

// DefaultBranch runs `git remote show <remote>` and extracts the HEAD branch.
func (c *CLI) DefaultBranch(ctx context.Context, remote string) (string, error) {
	out, err := c.run(ctx, "remote", "show", remote)
	if err != nil {
		return "", err
	}

	return ParseDefaultBranch(string(out), remote)
}

// ChangedFiles runs `git diff --name-only HEAD`. The diff baseline is HEAD,
// not the main branch: the tool reacts to local uncommitted edits, not to
// branch divergence.
func (c *CLI) ChangedFiles(ctx context.Context) ([]string, error) {
	out, err := c.run(ctx, "diff", "--name-only", "HEAD")
	if err != nil {
		return nil, err
	}

	var files []string

	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}

	return files, nil
}

// ShowFile runs `git show <ref>:<path>` and returns the raw file content.
func (c *CLI) ShowFile(ctx context.Context, ref, path string) ([]byte, error) {
	return c.run(ctx, "show", ref+":"+path)
}

// Stage runs `git add <path>`.
func (c *CLI) Stage(ctx context.Context, path string) error {
	_, err := c.run(ctx, "add", "--", path)

	return err
}

// run executes git with the given arguments, keeping stdout and stderr
// separate so file content from `git show` stays byte-exact.
func (c *CLI) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = c.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, &CommandError{Args: args, Stderr: stderr.String(), Err: err}
	}

	return stdout.Bytes(), nil
}

// ParseDefaultBranch scans `git remote show` output for the HEAD branch line.
// It fails explicitly when no line matches or when the remote reports an
// unknown HEAD (e.g. an empty repository) instead of returning an empty name.
func ParseDefaultBranch(output, remote string) (string, error) {
	const marker = "HEAD branch:"

	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, marker) {
			continue
		}

		branch := strings.TrimSpace(strings.TrimPrefix(trimmed, marker))
		if branch == "" || branch == "(unknown)" {
			return "", fmt.Errorf("remote %q does not report a HEAD branch", remote)
		}

		return branch, nil
	}

	return "", fmt.Errorf("no HEAD branch line in `git remote show %s` output", remote)
}
