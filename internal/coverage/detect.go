package coverage

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/petrabarus/actions-committer-coverage-stats/schema"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DetectFormat guesses the report format from its content.
func DetectFormat(data []byte) (schema.CoverageFormat, error) {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	if len(trimmed) == 0 {
		return "", errors.New("empty coverage report")
	}
	if bytes.HasPrefix(trimmed, []byte("mode:")) {
		return schema.GoCoverFormat, nil
	}
	if trimmed[0] != '<' {
		return "", errors.New("unrecognized coverage report: neither XML nor a Go cover profile")
	}

	dec := xml.NewDecoder(bytes.NewReader(trimmed))
	var root *xml.StartElement
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("invalid XML: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if root == nil {
			if start.Name.Local != "coverage" {
				return "", fmt.Errorf("unrecognized XML root element <%s>", start.Name.Local)
			}
			root = &start
			for _, attr := range root.Attr {
				switch attr.Name.Local {
				case "line-rate", "lines-valid":
					return schema.CoberturaFormat, nil
				case "clover":
					return schema.CloverFormat, nil
				}
			}
			continue
		}
		switch start.Name.Local {
		case "sources", "packages":
			return schema.CoberturaFormat, nil
		case "project":
			return schema.CloverFormat, nil
		}
		return "", fmt.Errorf("unrecognized <coverage> child element <%s>", start.Name.Local)
	}
	return "", errors.New("unrecognized coverage report: no <coverage> content")
}
