package file

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadNames reads a card name list such as a house ban list: one name per
// line, in file order.
//
//	# full-line comment
//	Armageddon        # a trailing note after " #" is dropped
//	Lim-Dûl's   Vault (inner runs of white space collapse to one space)
//
// Blank lines and repeated names are skipped. A UTF-8 byte order mark on the
// first line is ignored.
func ReadNames(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var (
		out  []string
		seen = map[string]bool{}
		line int
	)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line++
		s := sc.Text()
		if line == 1 {
			s = strings.TrimPrefix(s, "\ufeff")
		}
		if i := strings.Index(s, " #"); i >= 0 {
			s = s[:i]
		}
		s = strings.Join(strings.Fields(s), " ")
		if s == "" || strings.HasPrefix(s, "#") || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: line %d: %w", path, line+1, err)
	}
	return out, nil
}
