package config

import (
	"strings"
	"testing"

	_ "cardetl/internal/storage/all"
)

// hasIssue reports whether issues contains an Issue with the given severity,
// path, and a Message containing msgSubstr.
func hasIssue(t *testing.T, issues []Issue, sev IssueSeverity, path, msgSubstr string) bool {
	t.Helper()
	for _, iss := range issues {
		if iss.Severity == sev && iss.Path == path && strings.Contains(iss.Message, msgSubstr) {
			return true
		}
	}
	return false
}

func validCSVPipeline() Pipeline {
	return Pipeline{
		Job:    "commander",
		Source: Source{Kind: "file", File: SourceFile{Path: "cards.csv"}},
		Parser: Parser{Kind: "csv", Options: Options{"has_header": true, "comma": ","}},
		Rules:  Rules{Path: "configs/rules/commander.toml"},
		Storage: Storage{
			Kind: "csv",
			CSV:  CSVConfig{Dir: "out", SplitByColorIdentity: true},
		},
		Runtime: RuntimeConfig{Workers: 4, BatchSize: 500},
		Metrics: Metrics{Backend: "none"},
	}
}

/*
TestValidatePipeline_MissingJob verifies that a missing or empty Job field
produces a SeverityError with path "job".
*/
func TestValidatePipeline_MissingJob(t *testing.T) {
	p := validCSVPipeline()
	p.Job = " "

	issues := ValidatePipeline(p)

	if !hasIssue(t, issues, SeverityError, "job", "job must not be empty") {
		t.Fatalf("expected SeverityError for job; got issues: %+v", issues)
	}
}

/*
TestValidatePipeline_ValidMinimal verifies that well-formed csv and database
pipelines produce no issues.
*/
func TestValidatePipeline_ValidMinimal(t *testing.T) {
	if issues := ValidatePipeline(validCSVPipeline()); len(issues) != 0 {
		t.Fatalf("expected no issues for csv pipeline; got: %+v", issues)
	}

	p := validCSVPipeline()
	p.Storage = Storage{
		Kind: "postgres",
		DB:   DBConfig{DSN: "postgres://user@localhost/db", Table: "public.cards", Truncate: true},
	}
	p.Metrics.Backend = "pushgateway"
	if issues := ValidatePipeline(p); len(issues) != 0 {
		t.Fatalf("expected no issues for postgres pipeline; got: %+v", issues)
	}
}

/*
TestValidateSource_Cases exercises validateSource with missing kind, unknown
kind, and file-specific checks.
*/
func TestValidateSource_Cases(t *testing.T) {
	t.Run("missing_kind", func(t *testing.T) {
		issues := validateSource(Source{})
		if !hasIssue(t, issues, SeverityError, "source.kind", "must not be empty") {
			t.Fatalf("expected error for empty source.kind; got %+v", issues)
		}
	})

	t.Run("unknown_kind", func(t *testing.T) {
		issues := validateSource(Source{Kind: "weird"})
		if !hasIssue(t, issues, SeverityWarning, "source.kind", "unknown source kind") {
			t.Fatalf("expected warning for unknown source.kind; got %+v", issues)
		}
	})

	t.Run("file_missing_path", func(t *testing.T) {
		issues := validateSource(Source{Kind: "file", File: SourceFile{Path: "  "}})
		if !hasIssue(t, issues, SeverityError, "source.file.path", "non-empty path") {
			t.Fatalf("expected error for empty file.path; got %+v", issues)
		}
	})

	t.Run("file_ok", func(t *testing.T) {
		if issues := validateSource(Source{Kind: "file", File: SourceFile{Path: "data.csv"}}); len(issues) != 0 {
			t.Fatalf("expected no issues; got %+v", issues)
		}
	})

	t.Run("http_bad_url", func(t *testing.T) {
		for _, u := range []string{"", "cards.csv", "ftp://example.com/cards.csv"} {
			issues := validateSource(Source{Kind: "http", HTTP: SourceHTTP{URL: u}})
			if !hasIssue(t, issues, SeverityError, "source.http.url", "absolute http(s) url") {
				t.Fatalf("url %q: expected error; got %+v", u, issues)
			}
		}
	})

	t.Run("http_insecure_warns", func(t *testing.T) {
		issues := validateSource(Source{Kind: "http", HTTP: SourceHTTP{URL: "https://example.com/cards.csv", InsecureSkipVerify: true}})
		if len(issues) != 1 || !hasIssue(t, issues, SeverityWarning, "source.http.insecure_skip_verify", "disabled") {
			t.Fatalf("expected a single warning; got %+v", issues)
		}
	})
}

/*
TestValidateParser_Cases exercises validateParser for empty kind, unsupported
kind, and csv option checks.
*/
func TestValidateParser_Cases(t *testing.T) {
	tests := []struct {
		name string
		p    Parser
		sev  IssueSeverity
		path string
		msg  string
	}{
		{"missing_kind", Parser{}, SeverityError, "parser.kind", "must not be empty"},
		{"xml_unsupported", Parser{Kind: "xml"}, SeverityError, "parser.kind", "only csv"},
		{"long_comma", Parser{Kind: "csv", Options: Options{"comma": ";;"}}, SeverityError, "parser.options.comma", "single character"},
		{"no_header", Parser{Kind: "csv", Options: Options{"has_header": false}}, SeverityError, "parser.options.has_header", "not supported"},
		{"empty_mapping", Parser{Kind: "csv", Options: Options{"header_map": map[string]any{"Name": ""}}}, SeverityWarning, "parser.options.header_map.Name", "empty mapping"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := validateParser(tt.p)
			if !hasIssue(t, issues, tt.sev, tt.path, tt.msg) {
				t.Fatalf("expected %s at %s; got %+v", tt.sev, tt.path, issues)
			}
		})
	}

	t.Run("csv_defaults_ok", func(t *testing.T) {
		if issues := validateParser(Parser{Kind: "csv", Options: Options{}}); len(issues) != 0 {
			t.Fatalf("expected no issues; got %+v", issues)
		}
	})
}

func TestValidateRules(t *testing.T) {
	if issues := validateRules(Rules{}); len(issues) != 0 {
		t.Fatalf("empty path should be fine; got %+v", issues)
	}
	if issues := validateRules(Rules{Path: "rules.json"}); !hasIssue(t, issues, SeverityWarning, "rules.path", ".toml") {
		t.Fatalf("expected extension warning; got %+v", issues)
	}
}

/*
TestValidateStorage_Cases covers the csv sink layout rules and the shared
database settings.
*/
func TestValidateStorage_Cases(t *testing.T) {
	tests := []struct {
		name string
		s    Storage
		sev  IssueSeverity
		path string
		msg  string
	}{
		{"missing_kind", Storage{}, SeverityError, "storage.kind", "must not be empty"},
		{"csv_split_without_dir", Storage{Kind: "csv", CSV: CSVConfig{SplitByColorIdentity: true}}, SeverityError, "storage.csv.dir", "output directory"},
		{"csv_without_path", Storage{Kind: "csv"}, SeverityError, "storage.csv.path", "requires a path"},
		{"csv_path_ignored", Storage{Kind: "csv", CSV: CSVConfig{Path: "a.csv", Dir: "out", SplitByColorIdentity: true}}, SeverityWarning, "storage.csv.path", "ignored"},
		{"unknown_kind", Storage{Kind: "oracle", DB: DBConfig{DSN: "x", Table: "t"}}, SeverityError, "storage.kind", "registered: csv, mssql, mysql, postgres, sqlite"},
		{"db_missing_dsn", Storage{Kind: "sqlite", DB: DBConfig{Table: "cards"}}, SeverityError, "storage.db.dsn", "must not be empty"},
		{"db_missing_table", Storage{Kind: "mysql", DB: DBConfig{DSN: "u:p@tcp(h)/db"}}, SeverityError, "storage.db.table", "must not be empty"},
		{"truncate_and_create", Storage{Kind: "mssql", DB: DBConfig{DSN: "sqlserver://h", Table: "dbo.cards", Truncate: true, AutoCreateTable: true}}, SeverityWarning, "storage.db.truncate", "already empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := validateStorage(tt.s)
			if !hasIssue(t, issues, tt.sev, tt.path, tt.msg) {
				t.Fatalf("expected %s at %s; got %+v", tt.sev, tt.path, issues)
			}
		})
	}
}

func TestValidateRuntime_Negative(t *testing.T) {
	issues := validateRuntime(RuntimeConfig{Workers: -1, LoaderWorkers: -1, BatchSize: -5, ChannelBuffer: -1})
	for _, path := range []string{"runtime.workers", "runtime.loader_workers", "runtime.batch_size", "runtime.channel_buffer"} {
		if !hasIssue(t, issues, SeverityError, path, "negative") {
			t.Fatalf("expected error at %s; got %+v", path, issues)
		}
	}
	if issues := validateRuntime(RuntimeConfig{}); len(issues) != 0 {
		t.Fatalf("zero runtime means defaults; got %+v", issues)
	}
}

func TestValidateMetrics(t *testing.T) {
	for _, b := range []string{"", "none", "pushgateway", "datadog"} {
		if issues := validateMetrics(Metrics{Backend: b}); len(issues) != 0 {
			t.Fatalf("backend %q: %+v", b, issues)
		}
	}
	if issues := validateMetrics(Metrics{Backend: "statsd"}); !hasIssue(t, issues, SeverityWarning, "metrics.backend", "unknown") {
		t.Fatalf("expected warning; got %+v", issues)
	}
}

func TestIssue_Error(t *testing.T) {
	iss := Issue{Severity: SeverityError, Path: "job", Message: "job must not be empty"}
	if got := iss.Error(); got != "error at job: job must not be empty" {
		t.Fatalf("Error() = %q", got)
	}
}
