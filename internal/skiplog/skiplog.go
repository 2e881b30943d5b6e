// Package skiplog writes every dropped card record to a CSV file so a run can
// be audited: which lines were malformed, which cards the legality rules
// excluded and why.
package skiplog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// Header is the first row of every skip log.
var Header = []string{"kind", "line_number", "name", "reason"}

// Log appends skipped records and counts them per kind.
type Log struct {
	path  string
	f     *os.File
	w     *csv.Writer
	kinds map[string]int
}

// New creates path (and its parent directories) and writes the header.
func New(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("skiplog: create dir %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("skiplog: open %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("skiplog: write header: %w", err)
	}
	return &Log{path: path, f: f, w: w, kinds: make(map[string]int)}, nil
}

// Add records one skipped line.
func (l *Log) Add(kind string, line int, name, reason string) error {
	l.kinds[kind]++
	return l.w.Write([]string{kind, strconv.Itoa(line), name, reason})
}

// Counts returns the number of skipped records per kind, sorted by kind.
func (l *Log) Counts() []KindCount {
	out := make([]KindCount, 0, len(l.kinds))
	for k, n := range l.kinds {
		out = append(out, KindCount{Kind: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}

// KindCount is one entry of Counts.
type KindCount struct {
	Kind  string
	Count int
}

// Path returns the file the log writes to.
func (l *Log) Path() string { return l.path }

// Close flushes and closes the file.
func (l *Log) Close() error {
	l.w.Flush()
	werr := l.w.Error()
	cerr := l.f.Close()
	if werr != nil {
		return fmt.Errorf("skiplog: flush %s: %w", l.path, werr)
	}
	if cerr != nil {
		return fmt.Errorf("skiplog: close %s: %w", l.path, cerr)
	}
	return nil
}
