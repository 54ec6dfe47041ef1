package chart

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ErrMalformedVersion marks version strings that do not split into exactly
// three dot-separated components with an integer patch.
var ErrMalformedVersion = errors.New("malformed version")

// IncrementPatch returns version with its patch component incremented by one.
// The major and minor components are copied verbatim: they are not validated
// or normalized, only the patch component must parse as a base-10 integer.
func IncrementPatch(version string) (string, error) {
	parts := strings.Split(version, ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("%w: %q does not have exactly three dot-separated components", ErrMalformedVersion, version)
	}

	patch, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", fmt.Errorf("%w: patch component %q of %q is not an integer", ErrMalformedVersion, parts[2], version)
	}

	return fmt.Sprintf("%s.%s.%d", parts[0], parts[1], patch+1), nil
}

// EditKind classifies a manual version edit relative to the previous version.
type EditKind string

// Manual edit classifications.
const (
	EditUpgrade   EditKind = "upgrade"
	EditDowngrade EditKind = "downgrade"
	EditChanged   EditKind = "changed"
)

// ClassifyEdit reports whether a manual edit moved the version forward or
// backward. When either side is not valid semver the edit is reported as a
// plain change; classification is informational only and never blocks.
func ClassifyEdit(prev, curr string) EditKind {
	pv, errPrev := semver.NewVersion(prev)
	cv, errCurr := semver.NewVersion(curr)

	if errPrev != nil || errCurr != nil {
		return EditChanged
	}

	switch {
	case cv.GreaterThan(pv):
		return EditUpgrade
	case cv.LessThan(pv):
		return EditDowngrade
	default:
		return EditChanged
	}
}
