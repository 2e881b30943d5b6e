package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"cardetl/internal/config"
	"cardetl/internal/rules"
)

// TestSetupMetrics_Disabled verifies the nop paths return a usable flush.
func TestSetupMetrics_Disabled(t *testing.T) {
	t.Setenv("METRICS_BACKEND", "")
	for _, name := range []string{"", "none", "statsd-classic"} {
		flush := setupMetrics(config.Pipeline{Job: "test"}, metricsSettings{backend: name}, true)
		if flush == nil {
			t.Fatalf("backend %q: nil flush", name)
		}
		flush()
	}
}

/*
TestShippedConfigs decodes every pipeline file under configs/pipelines,
checks it validates without errors and that its rules file loads.
*/
func TestShippedConfigs(t *testing.T) {
	paths, err := filepath.Glob("../../configs/pipelines/*.json")
	if err != nil || len(paths) == 0 {
		t.Fatalf("glob: %v (found %d)", err, len(paths))
	}
	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			b, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			var p config.Pipeline
			if err := json.Unmarshal(b, &p); err != nil {
				t.Fatalf("decode: %v", err)
			}
			for _, iss := range config.ValidatePipeline(p) {
				if iss.Severity == config.SeverityError {
					t.Errorf("%v", iss)
				}
			}
			if _, err := rules.Load(filepath.Join("../..", p.Rules.Path)); err != nil {
				t.Fatalf("rules: %v", err)
			}
		})
	}
}
