package gitx

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const remoteShowFixture = `* remote origin
  Fetch URL: git@example.com:acme/charts.git
  Push  URL: git@example.com:acme/charts.git
  HEAD branch: main
  Remote branches:
    feature/foo tracked
    main        tracked
  Local branch configured for 'git pull':
    main merges with remote main
  Local ref configured for 'git push':
    main pushes to main (up to date)
`

func TestParseDefaultBranch(t *testing.T) {
	branch, err := ParseDefaultBranch(remoteShowFixture, "origin")
	require.NoError(t, err)
	assert.Equal(t, "main", branch)
}

func TestParseDefaultBranch_Master(t *testing.T) {
	branch, err := ParseDefaultBranch("  HEAD branch: master\n", "origin")
	require.NoError(t, err)
	assert.Equal(t, "master", branch)
}

func TestParseDefaultBranch_NoMarker(t *testing.T) {
	_, err := ParseDefaultBranch("* remote origin\n  Fetch URL: x\n", "origin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no HEAD branch line")
	assert.Contains(t, err.Error(), "origin")
}

func TestParseDefaultBranch_UnknownHEAD(t *testing.T) {
	// Empty remotes report "(unknown)" — must not propagate as a branch name.
	_, err := ParseDefaultBranch("  HEAD branch: (unknown)\n", "origin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not report a HEAD branch")
}

func TestParseDefaultBranch_EmptyOutput(t *testing.T) {
	_, err := ParseDefaultBranch("", "upstream")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream")
}

func TestCommandError_Message(t *testing.T) {
	underlying := errors.New("exit status 128")
	err := &CommandError{
		Args:   []string{"show", "main:charts/foo/Chart.yaml"},
		Stderr: "fatal: path does not exist\n",
		Err:    underlying,
	}

	assert.Contains(t, err.Error(), "git show main:charts/foo/Chart.yaml")
	assert.Contains(t, err.Error(), "fatal: path does not exist")
	assert.ErrorIs(t, err, underlying)
}

func TestCommandError_NoStderr(t *testing.T) {
	err := &CommandError{Args: []string{"add", "--", "x"}, Err: errors.New("boom")}
	assert.Equal(t, "git add -- x: boom", err.Error())
}
