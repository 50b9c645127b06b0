package threatmodel

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maia/internal/store"
	"maia/internal/tools"
	"maia/internal/types"
)

type recordingSwitcher struct {
	modes   []types.AgentMode
	reasons []string
}

func (r *recordingSwitcher) RequestMode(mode types.AgentMode, reason string) {
	r.modes = append(r.modes, mode)
	r.reasons = append(r.reasons, reason)
}

func setup(t *testing.T) (*tools.Registry, *store.Memory, *recordingSwitcher) {
	t.Helper()
	reg := tools.NewRegistry()
	mem := store.NewMemory()
	sw := &recordingSwitcher{}
	require.NoError(t, RegisterAll(reg, mem, sw))
	return reg, mem, sw
}

func TestRegisterAll_Declarations(t *testing.T) {
	reg, _, _ := setup(t)

	assert.Equal(t, []string{"addAdversary", "addAsset", "addMitigation", "addThreat", "switchAgent"}, reg.Names())

	threat := reg.Get(ToolAddThreat)
	require.NotNil(t, threat)
	assert.NotContains(t, threat.Schema.Required, "riskLevel")
	assert.Contains(t, threat.Schema.Properties, "riskLevel")
}

func TestAddAsset(t *testing.T) {
	reg, mem, _ := setup(t)

	res, err := reg.Execute(context.Background(), ToolAddAsset, map[string]any{
		"name": "Servidor de correo", "type": "Digital", "value": float64(4), "description": "Postfix",
	})
	require.NoError(t, err)
	assert.Equal(t, "Activo registrado.", res.Result)

	assets := mem.Snapshot().Assets
	require.Len(t, assets, 1)
	assert.NotEmpty(t, assets[0].ID)
	assert.Equal(t, types.AssetDigital, assets[0].Type)
	assert.Equal(t, 4, assets[0].Value)
}

func TestAddAsset_Rejected(t *testing.T) {
	reg, mem, _ := setup(t)
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]any
		want error
	}{
		{"missing value", map[string]any{"name": "x", "type": "Digital"}, tools.ErrMissingRequiredArg},
		{"bad type", map[string]any{"name": "x", "type": "Virtual", "value": 3.0}, tools.ErrInvalidArgs},
		{"value too high", map[string]any{"name": "x", "type": "Humano", "value": 6.0}, tools.ErrInvalidArgs},
		{"fractional value", map[string]any{"name": "x", "type": "Humano", "value": 2.5}, tools.ErrInvalidArgs},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reg.Execute(ctx, ToolAddAsset, tt.args)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
	assert.Empty(t, mem.Snapshot().Assets)
}

func TestAddAdversary(t *testing.T) {
	reg, mem, _ := setup(t)

	res, err := reg.Execute(context.Background(), ToolAddAdversary, map[string]any{
		"name": "Inteligencia Estatal", "type": "Estatal", "capability": 5.0,
	})
	require.NoError(t, err)
	assert.Equal(t, "Adversario registrado.", res.Result)
	assert.Equal(t, 5, mem.Snapshot().Adversaries[0].Capability)
}

func TestAddThreat_RiskIsDerived(t *testing.T) {
	reg, mem, _ := setup(t)

	res, err := reg.Execute(context.Background(), ToolAddThreat, map[string]any{
		"name":             "Filtración por Malware",
		"category":         "STRIDE",
		"relatedAsset":     "Base de Datos",
		"relatedAdversary": "Inteligencia Estatal",
		"impact":           5.0,
		"probability":      4.0,
		"riskLevel":        "Bajo",
	})
	require.NoError(t, err)
	assert.Contains(t, res.Result, "20")
	assert.Contains(t, res.Result, "Crítico")

	threats := mem.Snapshot().Threats
	require.Len(t, threats, 1)
	th := threats[0]
	assert.Equal(t, 20, th.RiskScore)
	assert.Equal(t, types.RiskCritical, th.RiskLevel)
	assert.Equal(t, types.ThreatIdentified, th.Status)
	assert.Empty(t, th.Mitigations)
	assert.False(t, th.DateIdentified.IsZero())
}

func TestAddThreat_WithoutRiskLevel(t *testing.T) {
	reg, mem, _ := setup(t)

	_, err := reg.Execute(context.Background(), ToolAddThreat, map[string]any{
		"name": "Robo", "category": "Física", "relatedAsset": "Laptop", "relatedAdversary": "Ladrones",
		"impact": 2.0, "probability": 2.0,
	})
	require.NoError(t, err)
	assert.Equal(t, types.RiskLow, mem.Snapshot().Threats[0].RiskLevel)
}

func TestAddMitigation(t *testing.T) {
	reg, mem, _ := setup(t)
	ctx := context.Background()
	_, err := reg.Execute(ctx, ToolAddThreat, map[string]any{
		"name": "Robo de equipo", "category": "Física", "relatedAsset": "Laptop", "relatedAdversary": "Ladrones",
		"impact": 4.0, "probability": 3.0,
	})
	require.NoError(t, err)

	res, err := reg.Execute(ctx, ToolAddMitigation, map[string]any{
		"threatName": "Robo de equipo", "description": "Cifrado de disco", "strategy": "Prevención",
	})
	require.NoError(t, err)
	assert.Equal(t, "Plan de mitigación registrado.", res.Result)

	mits := mem.Snapshot().Threats[0].Mitigations
	require.Len(t, mits, 1)
	assert.Equal(t, types.MitigationPending, mits[0].Status)
	assert.Equal(t, types.StrategyPrevention, mits[0].Strategy)
}

func TestAddMitigation_UnknownThreat(t *testing.T) {
	reg, mem, _ := setup(t)
	ctx := context.Background()
	_, err := reg.Execute(ctx, ToolAddThreat, map[string]any{
		"name": "Robo de equipo", "category": "Física", "relatedAsset": "Laptop", "relatedAdversary": "Ladrones",
		"impact": 4.0, "probability": 3.0,
	})
	require.NoError(t, err)
	before := mem.Snapshot()

	res, err := reg.Execute(ctx, ToolAddMitigation, map[string]any{
		"threatName": "ROBO DE EQUIPO", "description": "x", "strategy": "Aceptación",
	})
	assert.True(t, errors.Is(err, store.ErrThreatNotFound))
	assert.False(t, res.IsSuccess())

	if diff := cmp.Diff(before, mem.Snapshot()); diff != "" {
		t.Errorf("store changed (-before +after):\n%s", diff)
	}
}

func TestSwitchAgent(t *testing.T) {
	reg, mem, sw := setup(t)

	res, err := reg.Execute(context.Background(), ToolSwitchAgent, map[string]any{
		"targetAgent": "modeling", "reason": "Inventario completo",
	})
	require.NoError(t, err)
	assert.Equal(t, "Transferencia a modeling iniciada. Razón: Inventario completo", res.Result)
	assert.Equal(t, []types.AgentMode{types.ModeModeling}, sw.modes)
	assert.Equal(t, types.Summary{}, mem.Summary())

	_, err = reg.Execute(context.Background(), ToolSwitchAgent, map[string]any{
		"targetAgent": "planning", "reason": "x",
	})
	assert.True(t, errors.Is(err, tools.ErrInvalidArgs))
	assert.Len(t, sw.modes, 1)
}

func TestSwitchAgent_FuncAdapter(t *testing.T) {
	reg := tools.NewRegistry()
	var got types.AgentMode
	require.NoError(t, RegisterAll(reg, store.NewMemory(), ModeSwitcherFunc(func(m types.AgentMode, _ string) { got = m })))

	_, err := reg.Execute(context.Background(), ToolSwitchAgent, map[string]any{"targetAgent": "mitigation", "reason": "r"})
	require.NoError(t, err)
	assert.Equal(t, types.ModeMitigation, got)
}
