// Package datadog forwards card run metrics to a DogStatsD agent.
//
// Metric names are dotted under a namespace, so cardetl_records_total is sent
// as <namespace>records.total. Labels become sorted "key:value" tags. Step
// durations go out as distributions in seconds so percentiles aggregate
// across hosts.
package datadog

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"cardetl/internal/metrics"

	"github.com/DataDog/datadog-go/v5/statsd"
)

// DefaultNamespace prefixes every metric name when Config.Namespace is empty.
const DefaultNamespace = "cardetl."

// Config holds Datadog backend configuration.
type Config struct {
	// Addr is the DogStatsD address, e.g. "127.0.0.1:8125" or "unix:///path/to/socket".
	Addr string

	// Namespace prefixes metric names; defaults to DefaultNamespace.
	Namespace string

	// Job is sent as a "job:<name>" tag on every metric. The per-call job
	// label is then dropped so it is not tagged twice.
	Job string

	// GlobalTags are extra tags for every metric, e.g. "env:prod".
	GlobalTags []string
}

// statsdClient is the part of *statsd.Client the backend uses.
type statsdClient interface {
	Count(name string, value int64, tags []string, rate float64) error
	Distribution(name string, value float64, tags []string, rate float64) error
	Close() error
}

// Backend is a Datadog implementation of metrics.Backend.
type Backend struct {
	client statsdClient
	job    string
}

// NewBackend dials the agent at cfg.Addr.
func NewBackend(cfg Config) (*Backend, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("datadog: Addr is required")
	}
	ns := cfg.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	tags := append([]string(nil), cfg.GlobalTags...)
	if cfg.Job != "" {
		tags = append(tags, "job:"+cfg.Job)
	}

	c, err := statsd.New(cfg.Addr, statsd.WithNamespace(ns), statsd.WithTags(tags))
	if err != nil {
		return nil, fmt.Errorf("datadog: create client: %w", err)
	}
	return &Backend{client: c, job: cfg.Job}, nil
}

// IncCounter sends a count. Record counts are whole numbers; any fraction is
// rounded.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	if b.client == nil {
		return
	}
	_ = b.client.Count(metricName(name), int64(math.Round(delta)), b.tags(labels), 1)
}

// ObserveHistogram sends value as a distribution.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if b.client == nil {
		return
	}
	_ = b.client.Distribution(metricName(name), value, b.tags(labels), 1)
}

// Flush closes the client, which sends whatever is still buffered. The
// backend is a no-op afterwards.
func (b *Backend) Flush() error {
	if b.client == nil {
		return nil
	}
	err := b.client.Close()
	b.client = nil
	return err
}

// metricName maps cardetl_step_duration_seconds to step.duration.seconds.
func metricName(name string) string {
	return strings.ReplaceAll(strings.TrimPrefix(name, "cardetl_"), "_", ".")
}

func (b *Backend) tags(lbls metrics.Labels) []string {
	if len(lbls) == 0 {
		return nil
	}
	out := make([]string, 0, len(lbls))
	for k, v := range lbls {
		if k == "job" && b.job != "" {
			continue
		}
		out = append(out, k+":"+v)
	}
	sort.Strings(out)
	return out
}
