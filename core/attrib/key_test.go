package attrib

import (
	"testing"

	"github.com/petrabarus/actions-committer-coverage-stats/schema"
	"github.com/stretchr/testify/assert"
)

func TestResolveKey(t *testing.T) {
	tests := []struct {
		name     string
		attr     schema.Attribution
		expected string
	}{
		{"email and name", schema.Attribution{AuthorName: "Alice", AuthorEmail: "alice@example.com"}, "alice@example.com"},
		{"only name", schema.Attribution{AuthorName: "Alice"}, "Alice"},
		{"only email", schema.Attribution{AuthorEmail: "alice@example.com"}, "alice@example.com"},
		{"neither", schema.Attribution{CommitID: "abc123"}, schema.UnknownContributor},
		{"blank email falls back to name", schema.Attribution{AuthorName: "Bob", AuthorEmail: "  "}, "Bob"},
		{"blank both", schema.Attribution{AuthorName: "\t", AuthorEmail: " "}, "unknown"},
		{"email is trimmed", schema.Attribution{AuthorEmail: " carol@example.com "}, "carol@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolveKey(tt.attr))
		})
	}
}
