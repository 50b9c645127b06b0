package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initToolMetrics() {
	r.ToolCallsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "maia_tool_calls_total",
			Help: "Tool calls requested by the model",
		},
		[]string{"tool", "status"}, // ok, error, unknown
	)

	r.ToolCallDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "maia_tool_call_duration_seconds",
			Help:    "Tool execution latency",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1},
		},
		[]string{"tool"},
	)
}

func (r *Registry) initWorkspaceMetrics() {
	r.WorkspaceAssets = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "maia_workspace_assets",
			Help: "Registered assets",
		},
	)

	r.WorkspaceAdversaries = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "maia_workspace_adversaries",
			Help: "Registered adversaries",
		},
	)

	r.WorkspaceActiveThreats = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "maia_workspace_active_threats",
			Help: "Threats not yet closed",
		},
	)

	r.WorkspaceAverageRisk = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "maia_workspace_average_risk",
			Help: "Rounded mean risk score of all threats",
		},
	)
}

func (r *Registry) initKnowledgeMetrics() {
	r.KnowledgeDocuments = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "maia_knowledge_documents",
			Help: "Documents in the knowledge base",
		},
	)

	r.KnowledgeSearchesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "maia_knowledge_searches_total",
			Help: "Knowledge base searches",
		},
		[]string{"status"}, // ok, error
	)
}
