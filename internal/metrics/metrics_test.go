package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maia/internal/types"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	require.NotNil(t, r)
	assert.NotNil(t, r.TurnsTotal)
	assert.NotNil(t, r.ToolCallsTotal)
	assert.NotNil(t, r.GetPrometheusRegistry())
}

func TestDefaultRegistry(t *testing.T) {
	assert.Same(t, DefaultRegistry(), DefaultRegistry())
}

func TestRecordTurnAndTools(t *testing.T) {
	r := NewRegistry()

	r.RecordTurn(types.ModeRegister, "ok", 2, time.Second)
	r.RecordTurn(types.ModeRegister, "ok", 0, time.Second)
	r.RecordTurn(types.ModeModeling, "loop_exceeded", 8, time.Second)
	r.RecordToolCall("addAsset", "ok", time.Millisecond)
	r.RecordToolCall("nope", "unknown", 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.TurnsTotal.WithLabelValues("register", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.TurnsTotal.WithLabelValues("modeling", "loop_exceeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ToolCallsTotal.WithLabelValues("nope", "unknown")))
}

func TestUpdateWorkspace(t *testing.T) {
	r := NewRegistry()
	r.UpdateWorkspace(types.Summary{TotalAssets: 3, TotalAdversaries: 2, ActiveThreats: 1, AverageRisk: 12})

	assert.Equal(t, 3.0, testutil.ToFloat64(r.WorkspaceAssets))
	assert.Equal(t, 12.0, testutil.ToFloat64(r.WorkspaceAverageRisk))
}

func TestNilRegistryIsNoop(t *testing.T) {
	var r *Registry
	assert.NotPanics(t, func() {
		r.RecordTurn(types.ModeGeneral, "ok", 0, 0)
		r.RecordModelRound("ok", 0, 1, 1)
		r.RecordToolCall("x", "ok", 0)
		r.RecordSessionInit(types.ModeGeneral, "ok")
		r.RecordModeSwitch(types.ModeGeneral, "user")
		r.UpdateWorkspace(types.Summary{})
		r.RecordKnowledgeSearch("ok")
		r.SetKnowledgeDocuments(1)
	})
}

func TestHandler(t *testing.T) {
	r := NewRegistry()
	r.RecordModelRound("ok", 200*time.Millisecond, 100, 20)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.True(t, strings.Contains(string(body), `maia_model_tokens_total{kind="prompt"} 100`))
}
