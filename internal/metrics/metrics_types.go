// Package metrics exposes MAIA's Prometheus instrumentation.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all MAIA metrics on a private Prometheus registry.
// A nil *Registry is valid and records nothing.
type Registry struct {
	// Orchestration
	TurnsTotal         *prometheus.CounterVec
	TurnDuration       *prometheus.HistogramVec
	ToolRoundsPerTurn  prometheus.Histogram
	ModelRoundDuration *prometheus.HistogramVec
	ModelTokensTotal   *prometheus.CounterVec
	SessionInitsTotal  *prometheus.CounterVec
	ModeSwitchesTotal  *prometheus.CounterVec

	// Tools
	ToolCallsTotal   *prometheus.CounterVec
	ToolCallDuration *prometheus.HistogramVec

	// Workspace
	WorkspaceAssets        prometheus.Gauge
	WorkspaceAdversaries   prometheus.Gauge
	WorkspaceActiveThreats prometheus.Gauge
	WorkspaceAverageRisk   prometheus.Gauge

	// Knowledge base
	KnowledgeDocuments     prometheus.Gauge
	KnowledgeSearchesTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initSessionMetrics()
	r.initToolMetrics()
	r.initWorkspaceMetrics()
	r.initKnowledgeMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
