package prompush

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"cardetl/internal/card"
	"cardetl/internal/metrics"
	"cardetl/internal/pipeline"
	"cardetl/internal/rules"
	"cardetl/internal/storage"
)

// countingRepo accepts every row.
type countingRepo struct{ rows int64 }

func (r *countingRepo) CopyFrom(_ context.Context, _ []string, rows [][]any) (int64, error) {
	r.rows += int64(len(rows))
	return int64(len(rows)), nil
}
func (r *countingRepo) Exec(context.Context, string) error { return nil }
func (r *countingRepo) Close()                             {}

func cardRaw(line int, kv ...string) card.Raw {
	f := map[string]string{"layout": "normal", "availability": "paper", "type": "Artifact"}
	for i := 0; i+1 < len(kv); i += 2 {
		f[kv[i]] = kv[i+1]
	}
	return card.Raw{Line: line, Fields: f}
}

func TestNewBackend(t *testing.T) {
	if _, err := NewBackend("commander", ""); err == nil {
		t.Fatal("expected error for empty gateway URL")
	}
	b, err := NewBackend("", "http://pushgateway:9091")
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	if b.jobName != "cardetl" {
		t.Fatalf("jobName = %q; want cardetl", b.jobName)
	}
}

/*
TestBackend_CardRun installs the backend globally, runs a small export
through the pipeline and the loader, and checks the registry holds one
success per step and the record counts of the run summary.
*/
func TestBackend_CardRun(t *testing.T) {
	b, err := NewBackend("commander", "http://pushgateway:9091")
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	metrics.SetBackend(b)

	in := []card.Raw{
		cardRaw(2, "name", "Sol Ring"),
		cardRaw(3, "name", "Mana Crypt"),
		cardRaw(4, "name", "Bad Value", "manaValue", "lots"),
	}
	ds, _, err := pipeline.Run(context.Background(), in, rules.Default(), pipeline.Options{Job: "commander"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	rows := make([][]any, len(ds.Rows))
	for i, r := range ds.Rows {
		rows[i] = r.SQLValues()
	}
	repo := &countingRepo{}
	if _, err := storage.Load(context.Background(), repo, ds.Columns, rows, storage.LoadOptions{Job: "commander"}); err != nil {
		t.Fatalf("Load: %v", err)
	}

	// Counted before any WithLabelValues lookup below creates a series.
	if n := testutil.CollectAndCount(b.durations); n != 4 {
		t.Fatalf("duration series = %d; want 4", n)
	}
	if n := testutil.CollectAndCount(b.records); n != 5 {
		t.Fatalf("record series = %d; want 5 (duplicates is never incremented)", n)
	}

	for _, step := range []string{"decode_filter", "normalize", "sort", "load"} {
		if got := testutil.ToFloat64(b.steps.WithLabelValues(step, "success")); got != 1 {
			t.Errorf("step %s = %v; want 1", step, got)
		}
	}
	for kind, want := range map[string]float64{"input": 3, "malformed": 1, "excluded": 1, "output": 1, "inserted": 1} {
		if got := testutil.ToFloat64(b.records.WithLabelValues(kind)); got != want {
			t.Errorf("records %s = %v; want %v", kind, got, want)
		}
	}
	if got := testutil.ToFloat64(b.batches); got != 1 || repo.rows != 1 {
		t.Errorf("batches = %v rows = %d; want 1, 1", got, repo.rows)
	}
}

// TestFlush verifies the registry is PUT under the job grouping key and that a
// gateway error is returned.
func TestFlush(t *testing.T) {
	var method, path string
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	b, err := NewBackend("commander", srv.URL)
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	b.IncCounter(metrics.RecordsTotal, 42, metrics.Labels{"kind": "output"})
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if method != http.MethodPut || path != "/metrics/job/commander" || len(body) == 0 {
		t.Fatalf("push = %s %s (%d bytes)", method, path, len(body))
	}

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()
	b, _ = NewBackend("commander", failing.URL)
	if err := b.Flush(); err == nil {
		t.Fatal("expected error from failing gateway")
	}
}
