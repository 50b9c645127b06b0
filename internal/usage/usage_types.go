package usage

import "time"

const dataVersion = "1.0"

// UsageData is the persisted form of the ledger.
type UsageData struct {
	Version   string          `json:"version"`
	UpdatedAt time.Time       `json:"updated_at"`
	Aggregate AggregatedStats `json:"aggregate"`
}

// AggregatedStats holds token counters broken down by dimension.
type AggregatedStats struct {
	Total     TokenCounts            `json:"total"`
	ByModel   map[string]TokenCounts `json:"by_model"`
	ByMode    map[string]TokenCounts `json:"by_mode"`
	BySession map[string]TokenCounts `json:"by_session"`
}

// TokenCounts holds input/output sums.
type TokenCounts struct {
	Input  int64 `json:"input"`
	Output int64 `json:"output"`
	Total  int64 `json:"total"`
	Rounds int64 `json:"rounds"`
}

func (tc *TokenCounts) Add(input, output int) {
	tc.Input += int64(input)
	tc.Output += int64(output)
	tc.Total += int64(input + output)
	tc.Rounds++
}

func newAggregate() AggregatedStats {
	return AggregatedStats{
		ByModel:   make(map[string]TokenCounts),
		ByMode:    make(map[string]TokenCounts),
		BySession: make(map[string]TokenCounts),
	}
}
