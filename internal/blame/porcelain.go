package blame

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/petrabarus/actions-committer-coverage-stats/schema"
)

// notCommittedMail is what git reports as the author mail of working tree changes.
const notCommittedMail = "not.committed.yet"

// parsePorcelain decodes the output of 'git blame --porcelain' into a FileBlame.
//
// Each group starts with "<sha> <orig-line> <final-line> [<count>]". Author
// headers follow only the first time a commit appears, so they are remembered
// per commit. The group ends with the line content prefixed by a tab.
func parsePorcelain(path string, out []byte) (*schema.FileBlame, error) {
	fb := schema.NewFileBlame(path)
	commits := make(map[string]*schema.Attribution)

	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var current *schema.Attribution
	finalLine := 0
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "\t") {
			if current == nil {
				return nil, fmt.Errorf("content line without a commit header")
			}
			fb.AddLine(finalLine, *current)
			current = nil
			continue
		}

		if current == nil {
			sha, lineNo, err := parseHeader(line)
			if err != nil {
				return nil, err
			}
			attr, ok := commits[sha]
			if !ok {
				attr = &schema.Attribution{CommitID: sha}
				commits[sha] = attr
			}
			current = attr
			finalLine = lineNo
			continue
		}

		key, value, _ := strings.Cut(line, " ")
		switch key {
		case "author":
			current.AuthorName = strings.TrimSpace(value)
		case "author-mail":
			current.AuthorEmail = cleanMail(value)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if current != nil {
		return nil, fmt.Errorf("truncated porcelain output for line %d", finalLine)
	}
	return fb, nil
}

// parseHeader reads the commit id and final line number of a group header.
func parseHeader(line string) (string, int, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 || len(fields[0]) < 40 {
		return "", 0, fmt.Errorf("malformed porcelain header %q", line)
	}
	n, err := strconv.Atoi(fields[2])
	if err != nil || n <= 0 {
		return "", 0, fmt.Errorf("malformed porcelain header %q", line)
	}
	return fields[0], n, nil
}

// cleanMail strips the angle brackets git puts around author mails and
// drops placeholders that do not identify anyone.
func cleanMail(value string) string {
	mail := strings.TrimSpace(value)
	mail = strings.TrimPrefix(mail, "<")
	mail = strings.TrimSuffix(mail, ">")
	mail = strings.TrimSpace(mail)
	if mail == notCommittedMail {
		return ""
	}
	return mail
}
