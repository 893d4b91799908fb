package blame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	shaAlice = "1111111111111111111111111111111111111111"
	shaBob   = "2222222222222222222222222222222222222222"
	shaWork  = "0000000000000000000000000000000000000000"
)

const samplePorcelain = shaAlice + ` 1 1 2
author Alice
author-mail <alice@example.com>
author-time 1700000000
author-tz +0000
committer Alice
committer-mail <alice@example.com>
committer-time 1700000000
committer-tz +0000
summary initial
filename pkg/calc.go
	package pkg
` + shaAlice + ` 2 2
	
` + shaBob + ` 3 3 1
author Bob
author-mail <>
author-time 1700000100
author-tz +0000
committer Bob
committer-mail <>
committer-time 1700000100
committer-tz +0000
summary add func
previous ` + shaAlice + ` pkg/calc.go
filename pkg/calc.go
	func Add(a, b int) int {
` + shaWork + ` 4 4 1
author Not Committed Yet
author-mail <not.committed.yet>
author-time 1700000200
author-tz +0000
committer Not Committed Yet
committer-mail <not.committed.yet>
committer-time 1700000200
committer-tz +0000
summary Version of pkg/calc.go from pkg/calc.go
filename pkg/calc.go
		return a + b
`

func TestParsePorcelain(t *testing.T) {
	fb, err := parsePorcelain("pkg/calc.go", []byte(samplePorcelain))
	require.NoError(t, err)
	assert.Equal(t, "pkg/calc.go", fb.Path)
	require.Len(t, fb.Lines, 4)

	tests := []struct {
		line      int
		commit    string
		wantName  string
		wantEmail string
	}{
		{1, shaAlice, "Alice", "alice@example.com"},
		{2, shaAlice, "Alice", "alice@example.com"},
		{3, shaBob, "Bob", ""},
		{4, shaWork, "Not Committed Yet", ""},
	}
	for _, tt := range tests {
		attr, ok := fb.Line(tt.line)
		require.True(t, ok, "line %d", tt.line)
		assert.Equal(t, tt.commit, attr.CommitID)
		assert.Equal(t, tt.wantName, attr.AuthorName)
		assert.Equal(t, tt.wantEmail, attr.AuthorEmail)
	}
}

func TestParsePorcelainEmptyFile(t *testing.T) {
	fb, err := parsePorcelain("empty.go", nil)
	require.NoError(t, err)
	assert.Empty(t, fb.Lines)
}

func TestParsePorcelainMalformed(t *testing.T) {
	tests := map[string]string{
		"short header":     "abc 1 1\n\tcontent\n",
		"bad line number":  shaAlice + " 1 x\n\tcontent\n",
		"truncated":        shaAlice + " 1 1 1\nauthor Alice\n",
		"orphaned content": "\tcontent\n",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := parsePorcelain("a.go", []byte(input))
			assert.Error(t, err)
		})
	}
}

func TestCleanMail(t *testing.T) {
	assert.Equal(t, "a@example.com", cleanMail("<a@example.com>"))
	assert.Equal(t, "a@example.com", cleanMail(" <a@example.com> "))
	assert.Equal(t, "", cleanMail("<>"))
	assert.Equal(t, "", cleanMail("<not.committed.yet>"))
}
