package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"

	"cardetl/internal/config"
	"cardetl/internal/metrics"
	"cardetl/internal/metrics/datadog"
	"cardetl/internal/metrics/prompush"

	// register all backends with the storage factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "cardetl/internal/storage/all"
)

// main is the entry point for the cardetl binary. It loads the pipeline
// config, optionally initializes a metrics backend, and executes one run.
func main() {
	var (
		cfgPath           string
		metricsBackendFlg string
		pushGatewayURLFlg string
		datadogAddrFlg    string
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "configs/pipelines/commander.json", "pipeline config JSON path")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend to use (pushgateway, datadog, none); overrides env METRICS_BACKEND")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.StringVar(&datadogAddrFlg, "datadog-addr", "", "DogStatsD address (overrides env DD_AGENT_ADDR)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	f, err := os.Open(cfgPath)
	if err != nil {
		fatalf("open config: %v", err)
	}
	var p config.Pipeline
	err = json.NewDecoder(f).Decode(&p)
	_ = f.Close()
	if err != nil {
		fatalf("decode config: %v", err)
	}

	if hasError := printIssues(config.ValidatePipeline(p)); hasError {
		log.Printf("Configuration is invalid: %v", cfgPath)
		os.Exit(1)
	}
	if validate {
		log.Printf("Configuration is valid: %v", cfgPath)
		os.Exit(0)
	}

	flush := setupMetrics(p, metricsSettings{
		backend:        metricsBackendFlg,
		pushgatewayURL: pushGatewayURLFlg,
		datadogAddr:    datadogAddrFlg,
	}, *verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	start := time.Now()

	if *verbose {
		log.Printf("pipeline: job=%s source=%s parser=%s rules=%q storage=%s",
			p.Job, p.Source.Kind, p.Parser.Kind, p.Rules.Path, p.Storage.Kind)
	}

	err = run(ctx, p)
	stop()
	flush()
	if err != nil {
		log.Fatalf("%v", err)
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

// printIssues writes config issues to stderr, errors in red and warnings in
// yellow, and reports whether any of them blocks the run.
func printIssues(issues []config.Issue) bool {
	hasError := false
	for _, iss := range issues {
		sev := color.YellowString("%s", iss.Severity)
		if iss.Severity == config.SeverityError {
			sev = color.RedString("%s", iss.Severity)
			hasError = true
		}
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", sev, color.CyanString(iss.Path), iss.Message)
	}
	return hasError
}

// metricsSettings carries the command-line overrides for the metrics backend.
type metricsSettings struct {
	backend        string
	pushgatewayURL string
	datadogAddr    string
}

// setupMetrics installs the metrics backend chosen by flag → env → config and
// returns the function that flushes it at the end of the run. A backend that
// fails to initialize leaves the nop backend in place.
func setupMetrics(p config.Pipeline, s metricsSettings, verbose bool) func() {
	backendName := firstNonEmpty(s.backend, os.Getenv("METRICS_BACKEND"), p.Metrics.Backend)

	jobName := p.Job
	if jobName == "" {
		jobName = "cardetl"
	}

	var (
		b   metrics.Backend
		err error
	)
	switch backendName {
	case "pushgateway":
		gwURL := firstNonEmpty(s.pushgatewayURL, os.Getenv("PUSHGATEWAY_URL"), p.Metrics.PushgatewayURL, "http://localhost:9091")
		b, err = prompush.NewBackend(jobName, gwURL)
		if err == nil {
			log.Printf("metrics: url=%v, backend=%v, job_name=%v", gwURL, backendName, jobName)
		}

	case "datadog":
		addr := firstNonEmpty(s.datadogAddr, os.Getenv("DD_AGENT_ADDR"), p.Metrics.DatadogAddr, "127.0.0.1:8125")
		b, err = datadog.NewBackend(datadog.Config{Addr: addr, Job: jobName})
		if err == nil {
			log.Printf("metrics: addr=%v, backend=%v, job_name=%v", addr, backendName, jobName)
		}

	case "", "none":
		if verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}
		return func() {}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
		return func() {}
	}

	if err != nil {
		log.Printf("metrics: failed to init %s backend: %v; using nop", backendName, err)
		return func() {}
	}
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
