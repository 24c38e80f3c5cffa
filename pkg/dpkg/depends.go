package dpkg

import (
	"regexp"
	"strings"
)

// regexpConstraint matches a version constraint from its
// opening bracket up to the next comma.
var regexpConstraint = regexp.MustCompile(`\([^,]*`)

// ParseDepends extracts the package names from the value of a
// "Depends" field. Version constraints are discarded and
// alternatives ("a | b") are flattened into the same list.
//
// Tokens are returned untrimmed, use Key to get the name that
// should be used for lookups.
//
// https://www.debian.org/doc/debian-policy/ch-relationships.html
func ParseDepends(s string) []string {
	s = regexpConstraint.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "|", ",")

	var out []string
	for _, token := range strings.Split(s, ",") {
		if Key(token) == "" {
			continue
		}
		out = append(out, token)
	}
	return out
}

// Key converts a raw dependency token into
// a package name.
func Key(token string) string {
	return strings.TrimSpace(token)
}
