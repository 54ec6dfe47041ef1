// Package chart provides Helm chart directory discovery and Chart.yaml
// version handling for the bump flow.
package chart

import (
	"path"
	"strings"
)

// ManifestName is the chart manifest file name.
const ManifestName = "Chart.yaml"

// Dirs derives chart root directories from a list of changed file paths
// (git-style, slash-separated, relative to the repository root).
//
// A path is considered chart-related when it ends in /Chart.yaml or contains
// a /templates segment. The deepest directory component is stripped when it
// is literally "templates", so the result points at the chart root. Duplicate
// directories collapse to one entry, first-seen order preserved.
func Dirs(changed []string) []string {
	var dirs []string

	seen := make(map[string]struct{})

	for _, file := range changed {
		if !strings.HasSuffix(file, "/"+ManifestName) && !strings.Contains(file, "/templates") {
			continue
		}

		dir := path.Dir(file)
		if path.Base(dir) == "templates" {
			dir = path.Dir(dir)
		}

		if _, ok := seen[dir]; ok {
			continue
		}

		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}

	return dirs
}
