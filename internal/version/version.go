// Package version extracts and orders the semantic versions embedded in
// release-post titles and slugs ("Cantera 2.3.0", "v2.4.0-beta1").
package version

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/blang/semver"
)

var versionToken = regexp.MustCompile(`\bv?(\d+\.\d+(?:\.\d+)?(?:[-.][0-9A-Za-z.-]+)?)\b`)

// Parse interprets value as a semantic version, tolerating a leading "v"
// and a missing patch component.
func Parse(value string) (semver.Version, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return semver.Version{}, fmt.Errorf("version: empty value")
	}
	v, err := semver.ParseTolerant(trimmed)
	if err != nil {
		return semver.Version{}, fmt.Errorf("version: parse %q: %w", value, err)
	}
	return v, nil
}

// FromText finds the first version-looking token in free text, such as a
// post title. The second result is false when no token is present.
func FromText(text string) (semver.Version, bool) {
	match := versionToken.FindStringSubmatch(text)
	if match == nil {
		return semver.Version{}, false
	}
	v, err := Parse(match[1])
	if err != nil {
		return semver.Version{}, false
	}
	return v, true
}

// Less orders two versions ascending.
func Less(a, b semver.Version) bool {
	return a.LT(b)
}

// SortDescending orders versions newest first, in place.
func SortDescending(versions []semver.Version) {
	sort.Slice(versions, func(i, j int) bool {
		return versions[j].LT(versions[i])
	})
}

// NextTag renders the conventional release tag for a version ("v2.3.0").
func NextTag(v semver.Version) string {
	return "v" + v.String()
}
