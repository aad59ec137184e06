package crawler

import (
	"regexp"
	"sort"
	"strings"
)

// communityPattern matches a community reference the way the platform
// validates community names: one alphanumeric character followed by 2-20
// word characters or colons.
var communityPattern = regexp.MustCompile(`/r/([a-zA-Z0-9][\w:]{2,20})`)

// ExtractCommunities returns the sorted, lower-cased, deduplicated
// communities referenced in text, excluding self
func ExtractCommunities(text, self string) []string {
	self = strings.ToLower(self)

	seen := make(map[string]bool)
	found := []string{}

	for _, match := range communityPattern.FindAllStringSubmatch(text, -1) {
		name := strings.ToLower(match[1])
		if name == self || seen[name] {
			continue
		}
		seen[name] = true
		found = append(found, name)
	}

	sort.Strings(found)
	return found
}

// IsCommunityName reports whether name is a well-formed community name
func IsCommunityName(name string) bool {
	return namePattern.MatchString(name)
}

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9][\w:]{2,20}$`)
