package csv

import (
	"sort"

	"cardetl/internal/config"
)

// Options configures the card CSV reader.
type Options struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune

	// TrimSpace trims leading/trailing white space from every cell.
	TrimSpace bool

	// LazyQuotes relaxes quote handling (csv.Reader.LazyQuotes).
	LazyQuotes bool

	// HeaderMap renames source headers to canonical column names
	// ("Face Name" → "faceName"). Unmapped headers are kept verbatim.
	HeaderMap map[string]string

	// RequiredHeaders must all be present after mapping; the reader fails
	// before reading any row otherwise.
	RequiredHeaders []string

	// Replace lists byte sequences rewritten on the fly before parsing, for
	// exports with known broken quoting.
	Replace []Replacement

	// NullValues are cell contents read as absent, like an empty cell
	// (database dumps write NULL or \N).
	NullValues []string

	// LogEvery is the progress heartbeat interval in rows. Zero means
	// 50000; negative disables it.
	LogEvery int
}

// Replacement is one streaming find/replace pair.
type Replacement struct {
	From, To string
}

// OptionsFrom reads parser.options from a pipeline file:
//
//	comma (string), trim_space (bool, default true), lazy_quotes (bool),
//	header_map (object), replace (object: from → to),
//	null_values (array of strings), log_every (number)
//
// RequiredHeaders is not part of the file; callers set it from the rule
// tables.
func OptionsFrom(o config.Options) Options {
	opt := Options{
		Comma:      o.Rune("comma", ','),
		TrimSpace:  o.Bool("trim_space", true),
		LazyQuotes: o.Bool("lazy_quotes", false),
		HeaderMap:  o.StringMap("header_map"),
		NullValues: o.StringSlice("null_values"),
		LogEvery:   o.Int("log_every", 0),
	}
	for from, to := range o.StringMap("replace") {
		if from != "" {
			opt.Replace = append(opt.Replace, Replacement{From: from, To: to})
		}
	}
	sort.Slice(opt.Replace, func(i, j int) bool { return opt.Replace[i].From < opt.Replace[j].From })
	return opt
}
