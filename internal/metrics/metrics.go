package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"maia/internal/types"
)

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// RecordTurn records a finished user turn.
func (r *Registry) RecordTurn(mode types.AgentMode, outcome string, rounds int, duration time.Duration) {
	if r == nil {
		return
	}
	r.TurnsTotal.WithLabelValues(string(mode), outcome).Inc()
	r.TurnDuration.WithLabelValues(string(mode)).Observe(duration.Seconds())
	r.ToolRoundsPerTurn.Observe(float64(rounds))
}

// RecordModelRound records one model round trip.
func (r *Registry) RecordModelRound(status string, duration time.Duration, promptTokens, candidateTokens int) {
	if r == nil {
		return
	}
	r.ModelRoundDuration.WithLabelValues(status).Observe(duration.Seconds())
	if promptTokens > 0 {
		r.ModelTokensTotal.WithLabelValues("prompt").Add(float64(promptTokens))
	}
	if candidateTokens > 0 {
		r.ModelTokensTotal.WithLabelValues("candidates").Add(float64(candidateTokens))
	}
}

// RecordToolCall records one tool execution.
func (r *Registry) RecordToolCall(tool, status string, duration time.Duration) {
	if r == nil {
		return
	}
	r.ToolCallsTotal.WithLabelValues(tool, status).Inc()
	r.ToolCallDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// RecordSessionInit records a session initialization attempt.
func (r *Registry) RecordSessionInit(mode types.AgentMode, outcome string) {
	if r == nil {
		return
	}
	r.SessionInitsTotal.WithLabelValues(string(mode), outcome).Inc()
}

// RecordModeSwitch records an applied agent mode change.
func (r *Registry) RecordModeSwitch(to types.AgentMode, source string) {
	if r == nil {
		return
	}
	r.ModeSwitchesTotal.WithLabelValues(string(to), source).Inc()
}

// UpdateWorkspace sets the workspace gauges from a summary.
func (r *Registry) UpdateWorkspace(s types.Summary) {
	if r == nil {
		return
	}
	r.WorkspaceAssets.Set(float64(s.TotalAssets))
	r.WorkspaceAdversaries.Set(float64(s.TotalAdversaries))
	r.WorkspaceActiveThreats.Set(float64(s.ActiveThreats))
	r.WorkspaceAverageRisk.Set(float64(s.AverageRisk))
}

// RecordKnowledgeSearch records a knowledge base search.
func (r *Registry) RecordKnowledgeSearch(status string) {
	if r == nil {
		return
	}
	r.KnowledgeSearchesTotal.WithLabelValues(status).Inc()
}

// SetKnowledgeDocuments sets the document gauge.
func (r *Registry) SetKnowledgeDocuments(n int) {
	if r == nil {
		return
	}
	r.KnowledgeDocuments.Set(float64(n))
}
