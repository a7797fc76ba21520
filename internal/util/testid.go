package util

import (
	"regexp"
	"strings"
)

var testIDPattern = regexp.MustCompile(`^(\d+)(?:-(\d+))?$`)

// CompareTestIDs orders test case identifiers for reports. Identifiers of the
// form "123" or "123-4" sort numerically on the leading number, an identifier
// without a suffix before any with one, then numerically on the suffix.
// Anything else falls back to a case-insensitive comparison of the trimmed
// strings.
func CompareTestIDs(a, b string) int {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)

	am := testIDPattern.FindStringSubmatch(a)
	bm := testIDPattern.FindStringSubmatch(b)
	if am == nil || bm == nil {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	}

	if c := compareNumeric(am[1], bm[1]); c != 0 {
		return c
	}

	switch {
	case am[2] == "" && bm[2] == "":
		return 0
	case am[2] == "":
		return -1
	case bm[2] == "":
		return 1
	default:
		return compareNumeric(am[2], bm[2])
	}
}

// compareNumeric compares two digit runs without parsing them into integers,
// so identifiers longer than an int64 still order correctly.
func compareNumeric(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}
