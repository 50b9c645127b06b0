package prompt

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maia/internal/types"
)

func sampleSnapshot() types.Snapshot {
	th := types.NewThreat(types.ThreatInput{
		Name:        "Robo de equipo",
		Impact:      4,
		Probability: 3,
		Description: "SECRETO-AMENAZA",
	}, "t1", time.Now())
	th.Mitigations = []types.Mitigation{types.NewMitigation("m1", "SECRETO-MITIGACION", types.StrategyPrevention)}

	return types.Snapshot{
		Assets:      []types.Asset{{ID: "a1", Name: "Portátil", Type: types.AssetPhysical, Value: 4, Description: "SECRETO-ACTIVO"}},
		Adversaries: []types.Adversary{{ID: "v1", Name: "Ladrones", Type: types.AdversaryCriminal, Capability: 3, Motivation: "SECRETO-MOTIVO"}},
		Threats:     []types.Threat{th},
	}
}

func TestProject(t *testing.T) {
	p := Project(sampleSnapshot())

	assert.Equal(t, []AssetView{{Name: "Portátil", Type: types.AssetPhysical, Value: 4}}, p.Assets)
	assert.Equal(t, []AdversaryView{{Name: "Ladrones", Type: types.AdversaryCriminal, Capability: 3}}, p.Adversaries)
	assert.Equal(t, []ThreatView{{Name: "Robo de equipo", Risk: types.RiskHigh, Status: types.ThreatIdentified}}, p.Threats)
}

func TestBuildSystemInstruction_NeverIncludesDescriptions(t *testing.T) {
	out := BuildSystemInstruction(types.ModeModeling, Project(sampleSnapshot()), nil)

	assert.NotContains(t, out, "SECRETO")
	assert.Contains(t, out, `"name": "Portátil"`)
	assert.Contains(t, out, `"risk": "Alto"`)
}

func TestBuildSystemInstruction_ModeBlocks(t *testing.T) {
	state := Project(types.Snapshot{})
	tests := []struct {
		mode types.AgentMode
		want string
	}{
		{types.ModeRegister, "MÓDULO ACTIVO: REGISTRO"},
		{types.ModeModeling, "MÓDULO ACTIVO: MODELADO"},
		{types.ModeMitigation, "MÓDULO ACTIVO: MITIGACIÓN"},
		{types.ModeGeneral, "MÓDULO ACTIVO: GENERAL"},
		{types.AgentMode("planning"), "MÓDULO ACTIVO: GENERAL"},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			out := BuildSystemInstruction(tt.mode, state, nil)
			assert.True(t, strings.HasPrefix(out, "ERES EL ASISTENTE DE SEGURIDAD DIGITAL."))
			assert.Contains(t, out, tt.want)
			assert.Contains(t, out, "INSTRUCCIONES OPERATIVAS:")
			assert.Equal(t, 1, strings.Count(out, "MÓDULO ACTIVO:"))
		})
	}
}

func TestBuildSystemInstruction_SectionOrder(t *testing.T) {
	out := BuildSystemInstruction(types.ModeRegister, Project(types.Snapshot{}), &types.ContextFile{Title: "Caso 1", Content: "texto"})

	order := []string{"ERES EL ASISTENTE", "MÓDULO ACTIVO", "ESTADO ACTUAL DEL MODELO", "INSTRUCCIONES OPERATIVAS", "CONTEXTO ADICIONAL"}
	last := -1
	for _, marker := range order {
		idx := strings.Index(out, marker)
		require.GreaterOrEqual(t, idx, 0, marker)
		assert.Greater(t, idx, last, marker)
		last = idx
	}
}

func TestBuildSystemInstruction_ContextFileVerbatim(t *testing.T) {
	content := "Línea 1\n  Línea 2 con {llaves} y \"comillas\"\n"
	out := BuildSystemInstruction(types.ModeGeneral, Project(types.Snapshot{}), &types.ContextFile{Title: "Caso 2: Periodista", Content: content})

	assert.Contains(t, out, "TÍTULO: Caso 2: Periodista")
	assert.Contains(t, out, content)
	assert.Contains(t, out, "fuente primaria")
}

func TestBuildSystemInstruction_EmptyStateRendersArrays(t *testing.T) {
	out := BuildSystemInstruction(types.ModeGeneral, Project(types.Snapshot{}), nil)
	assert.Contains(t, out, `"assets": []`)
	assert.Contains(t, out, `"threats": []`)
}

func TestBuildSystemInstruction_Deterministic(t *testing.T) {
	state := Project(sampleSnapshot())
	cf := &types.ContextFile{Title: "x", Content: "y"}
	assert.Equal(t,
		BuildSystemInstruction(types.ModeMitigation, state, cf),
		BuildSystemInstruction(types.ModeMitigation, state, cf))
}
