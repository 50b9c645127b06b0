package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSessionMetrics() {
	r.TurnsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "maia_turns_total",
			Help: "Total number of user turns",
		},
		[]string{"mode", "outcome"}, // ok, transport_error, loop_exceeded, config_error
	)

	r.TurnDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "maia_turn_duration_seconds",
			Help:    "Wall time of a user turn including all tool rounds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 45, 90, 180},
		},
		[]string{"mode"},
	)

	r.ToolRoundsPerTurn = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "maia_tool_rounds_per_turn",
			Help:    "Number of tool-result batches sent back to the model per turn",
			Buckets: []float64{0, 1, 2, 3, 4, 6, 8},
		},
	)

	r.ModelRoundDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "maia_model_round_duration_seconds",
			Help:    "Latency of a single model round trip",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"}, // ok, error
	)

	r.ModelTokensTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "maia_model_tokens_total",
			Help: "Tokens reported by the model provider",
		},
		[]string{"kind"}, // prompt, candidates
	)

	r.SessionInitsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "maia_session_inits_total",
			Help: "Chat session initializations",
		},
		[]string{"mode", "outcome"}, // ok, config_error
	)

	r.ModeSwitchesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "maia_mode_switches_total",
			Help: "Agent mode changes",
		},
		[]string{"to", "source"}, // source: user, tool
	)
}
