package chart

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	helmchart "helm.sh/helm/v3/pkg/chart"
	sigsyaml "sigs.k8s.io/yaml"
)

// ErrMissingVersionField marks a manifest without a version key.
var ErrMissingVersionField = errors.New("manifest has no version field")

// versionPrefix is the literal token the line-oriented code paths key on.
const versionPrefix = "version:"

// HistoricalVersion extracts the declared version from raw Chart.yaml bytes
// via a structured parse into Helm's own metadata type. Used for the manifest
// as it existed at the main branch tip.
func HistoricalVersion(data []byte) (string, error) {
	var md helmchart.Metadata
	if err := sigsyaml.Unmarshal(data, &md); err != nil {
		return "", fmt.Errorf("parsing manifest: %w", err)
	}

	if md.Version == "" {
		return "", ErrMissingVersionField
	}

	return md.Version, nil
}

// CurrentVersion extracts the declared version from the on-disk manifest at
// path by line scan: the first line starting with "version:" wins. This is
// deliberately not a structured parse — it mirrors the line-oriented rewrite
// so both sides agree on which line carries the version.
func CurrentVersion(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading manifest: %w", err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, versionPrefix) {
			continue
		}

		fields := strings.Fields(strings.TrimPrefix(line, versionPrefix))
		if len(fields) == 0 {
			return "", fmt.Errorf("%w: empty version line in %s", ErrMissingVersionField, path)
		}

		return fields[0], nil
	}

	return "", fmt.Errorf("%w: %s", ErrMissingVersionField, path)
}

// RenderRewrite returns data with only the first line starting with
// "version:" replaced by "version: <newVersion>". Every other line is copied
// byte-for-byte: comments, key order, and blank lines survive, which a
// structured re-serialization would not guarantee.
func RenderRewrite(data []byte, newVersion string) ([]byte, error) {
	lines := bytes.SplitAfter(data, []byte("\n"))
	replaced := false

	var out bytes.Buffer

	for _, line := range lines {
		if !replaced && bytes.HasPrefix(line, []byte(versionPrefix)) {
			out.WriteString(versionPrefix + " " + newVersion)

			if bytes.HasSuffix(line, []byte("\n")) {
				out.WriteByte('\n')
			}

			replaced = true

			continue
		}

		out.Write(line)
	}

	if !replaced {
		return nil, ErrMissingVersionField
	}

	return out.Bytes(), nil
}

// RewriteVersion rewrites the manifest at path in place via RenderRewrite,
// keeping the file's permission bits.
func RewriteVersion(path, newVersion string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading manifest: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stating manifest: %w", err)
	}

	rewritten, err := RenderRewrite(data, newVersion)
	if err != nil {
		return fmt.Errorf("%w: %s", err, path)
	}

	if err := os.WriteFile(path, rewritten, info.Mode().Perm()); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}

	return nil
}
