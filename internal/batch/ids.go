package batch

import (
	"bufio"
	"io"
	"strings"
)

// ParseIDList reads comma- or newline-separated biopsy numbers. Tokens are
// trimmed and empty tokens dropped; order and duplicates are kept.
func ParseIDList(r io.Reader) ([]string, error) {
	var ids []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		for _, tok := range strings.Split(sc.Text(), ",") {
			if tok = strings.TrimSpace(tok); tok != "" {
				ids = append(ids, tok)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
