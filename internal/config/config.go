// Package config defines the JSON-serializable configuration model for a
// cardetl run. Pipeline files live under configs/pipelines/*.json and are
// decoded with the standard library; parser-specific settings use the Options
// bag for typed access.
//
// Example (trimmed):
//
//	{
//	  "job":     "commander",
//	  "source":  { "kind": "file", "file": { "path": "data/cards.csv" } },
//	  "parser":  { "kind": "csv", "options": { "has_header": true } },
//	  "rules":   { "path": "configs/rules/commander.toml" },
//	  "storage": { "kind": "csv", "csv": { "dir": "out", "split_by_color_identity": true } }
//	}
package config

import "encoding/json"

// Pipeline is the top-level object decoded from a pipeline file.
type Pipeline struct {
	// Job names the run; it labels metrics and log lines.
	Job string `json:"job"`

	// Source describes where the card export comes from.
	Source Source `json:"source"`

	// Parser configures how raw bytes are turned into card rows.
	Parser Parser `json:"parser"`

	// Rules points at an optional TOML file overriding the built-in tables.
	Rules Rules `json:"rules"`

	// Process holds switches for the card pipeline itself.
	Process Process `json:"process"`

	// Storage describes where the final dataset is written.
	Storage Storage       `json:"storage"`
	Runtime RuntimeConfig `json:"runtime"`
	Metrics Metrics       `json:"metrics"`

	// SkipLog, when Path is set, records every dropped row as CSV.
	SkipLog SkipLog `json:"skip_log"`
}

// Rules locates the rule table override file.
type Rules struct {
	// Path is a TOML file; empty means the built-in Commander tables.
	Path string `json:"path"`
}

// Process toggles optional pipeline stages.
type Process struct {
	// Dedupe keeps only the first printing of each card face.
	Dedupe bool `json:"dedupe"`
}

// RuntimeConfig controls concurrency, batching, and channel buffer sizes.
type RuntimeConfig struct {
	// Workers bounds the parallel decode/filter/normalize stage.
	Workers int `json:"workers"`
	// LoaderWorkers bounds how many split CSV parts are written at once.
	LoaderWorkers int `json:"loader_workers"`
	BatchSize     int `json:"batch_size"`
	ChannelBuffer int `json:"channel_buffer"`
}

// Metrics selects the metrics backend. Flags and environment variables
// override these values.
type Metrics struct {
	// Backend is one of "none", "pushgateway", "datadog".
	Backend        string `json:"backend"`
	PushgatewayURL string `json:"pushgateway_url"`
	DatadogAddr    string `json:"datadog_addr"`
}

// SkipLog configures the rejected-row log.
type SkipLog struct {
	Path string `json:"path"`
}

// Source identifies the data source. Additional kinds can be added over time.
type Source struct {
	// Kind selects the source implementation: "file" or "http".
	Kind string `json:"kind"`

	// File carries options for the "file" source kind.
	File SourceFile `json:"file"`

	// HTTP carries options for the "http" source kind.
	HTTP SourceHTTP `json:"http"`
}

// SourceFile holds configuration for the "file" source kind.
type SourceFile struct {
	// Path is the local filesystem path to the input file.
	Path string `json:"path"`
}

// SourceHTTP holds configuration for downloading the export.
type SourceHTTP struct {
	URL            string `json:"url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	MaxRetries     int    `json:"max_retries"`

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool `json:"insecure_skip_verify"`
}

// Parser selects how to parse the raw source into logical rows/columns.
type Parser struct {
	// Kind selects the parser implementation. Current value: "csv".
	Kind string `json:"kind"`

	// Options is a free-form map interpreted by the parser implementation.
	// For CSV, typical keys include:
	//   has_header (bool), comma (string), trim_space (bool),
	//   lazy_quotes (bool), header_map (object)
	Options Options `json:"options"`
}

// Storage selects the sink used to persist the dataset.
type Storage struct {
	// Kind selects the storage implementation: "csv", "postgres", "sqlite",
	// "mssql" or "mysql".
	Kind string `json:"kind"`

	// CSV carries options for the "csv" storage kind.
	CSV CSVConfig `json:"csv"`

	// DB carries options shared by the database kinds.
	DB DBConfig `json:"db"`
}

// CSVConfig configures the CSV file sink.
type CSVConfig struct {
	// Path is the output file when not splitting.
	Path string `json:"path"`

	// Dir receives one <label>.csv per color identity when
	// SplitByColorIdentity is set.
	Dir                  string `json:"dir"`
	SplitByColorIdentity bool   `json:"split_by_color_identity"`
}

// DBConfig configures the database sinks. Destination columns are always the
// rule tables' column order.
type DBConfig struct {
	// DSN is the driver connection string (postgresql://..., file path for
	// sqlite, sqlserver://..., user:pass@tcp(host)/db for mysql).
	DSN string `json:"dsn"`

	// Table is the destination table, optionally schema qualified.
	Table string `json:"table"`

	// AutoCreateTable creates the table from the column kinds when missing.
	AutoCreateTable bool `json:"auto_create_table"`

	// Truncate deletes existing rows before loading so each run replaces the
	// dataset.
	Truncate bool `json:"truncate"`
}

// Options is a small helper to fetch typed values from arbitrary JSON maps
// without introducing third-party configuration libraries. It purposefully
// performs only minimal type coercion and returns provided defaults when a key
// is absent or of an unexpected type.
//
// Options carries parser settings whose keys depend on parser.kind.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers are decoded as
// float64 by encoding/json, so this method accepts float64 and casts to int.
// If the value is neither float64 nor int, def is returned.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty. This is useful for single-character parser settings such as
// a CSV delimiter.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringMap returns a map[string]string for key when the value is an object
// whose values are strings. Non-string values are ignored. Returns an empty map
// when the key is missing or the value is not an object.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	if v, ok := o[key]; ok {
		if m, ok := v.(map[string]any); ok {
			for k, vv := range m {
				if s, ok := vv.(string); ok {
					res[k] = s
				}
			}
		}
	}
	return res
}

// StringSlice returns a []string for key when the value is an array of strings
// (or an array of interface values containing strings). Returns nil when the
// key is missing or the value is not an array.
func (o Options) StringSlice(key string) []string {
	if v, ok := o[key]; ok {
		switch vv := v.(type) {
		case []any:
			out := make([]string, 0, len(vv))
			for _, x := range vv {
				if s, ok := x.(string); ok {
					out = append(out, s)
				}
			}
			return out
		case []string:
			return vv
		}
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler so that a missing or null "options"
// object in JSON decodes to a non-nil, empty Options map. This simplifies call
// sites by removing the need to nil-check Options values.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
