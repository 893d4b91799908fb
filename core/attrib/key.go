package attrib

import (
	"strings"

	"github.com/petrabarus/actions-committer-coverage-stats/schema"
)

// ResolveKey picks the identity a line is credited to: the author email when
// present, else the author name, else schema.UnknownContributor.
// Blank values count as absent.
func ResolveKey(attr schema.Attribution) string {
	if email := strings.TrimSpace(attr.AuthorEmail); email != "" {
		return email
	}
	if name := strings.TrimSpace(attr.AuthorName); name != "" {
		return name
	}
	return schema.UnknownContributor
}
