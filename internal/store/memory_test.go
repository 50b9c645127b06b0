package store

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maia/internal/types"
)

func TestMemory_AddAndSnapshot(t *testing.T) {
	m := NewMemory()

	a := m.AddAsset(types.Asset{Name: "Servidor", Type: types.AssetDigital, Value: 4})
	assert.NotEmpty(t, a.ID)
	m.AddAdversary(types.Adversary{ID: "adv", Name: "Estado", Type: types.AdversaryState, Capability: 5})
	m.AddThreat(types.NewThreat(types.ThreatInput{Name: "Phishing", Impact: 3, Probability: 4}, "t1", time.Now()))

	snap := m.Snapshot()
	require.Len(t, snap.Assets, 1)
	require.Len(t, snap.Adversaries, 1)
	require.Len(t, snap.Threats, 1)
	assert.Equal(t, "adv", snap.Adversaries[0].ID)
	assert.Equal(t, 12, snap.Threats[0].RiskScore)
	assert.Equal(t, types.RiskHigh, snap.Threats[0].RiskLevel)
}

func TestMemory_SnapshotIsDeepCopy(t *testing.T) {
	m := NewMemory()
	m.AddThreat(types.NewThreat(types.ThreatInput{Name: "Phishing", Impact: 1, Probability: 1}, "t1", time.Now()))

	snap := m.Snapshot()
	snap.Threats[0].Mitigations = append(snap.Threats[0].Mitigations, types.Mitigation{ID: "x"})
	snap.Threats[0].Name = "mutated"

	fresh := m.Snapshot()
	assert.Equal(t, "Phishing", fresh.Threats[0].Name)
	assert.Empty(t, fresh.Threats[0].Mitigations)
}

func TestMemory_AddMitigation(t *testing.T) {
	m := NewMemory()
	m.AddThreat(types.NewThreat(types.ThreatInput{Name: "Robo de equipo", Impact: 4, Probability: 3}, "t1", time.Now()))

	err := m.AddMitigation("Robo de equipo", types.NewMitigation("", "Cifrado de disco", types.StrategyPrevention))
	require.NoError(t, err)

	mits := m.Snapshot().Threats[0].Mitigations
	require.Len(t, mits, 1)
	assert.Equal(t, types.MitigationPending, mits[0].Status)
	assert.NotEmpty(t, mits[0].ID)
}

func TestMemory_AddMitigation_UnknownThreatLeavesStoreUnchanged(t *testing.T) {
	m := NewMemory()
	m.AddThreat(types.NewThreat(types.ThreatInput{Name: "Robo de equipo", Impact: 4, Probability: 3}, "t1", time.Now()))
	before := m.Snapshot()
	v := m.Version()

	// Matching is case-sensitive.
	err := m.AddMitigation("robo de equipo", types.NewMitigation("m", "x", types.StrategyAcceptance))
	assert.True(t, errors.Is(err, ErrThreatNotFound))
	assert.Contains(t, err.Error(), "robo de equipo")

	if diff := cmp.Diff(before, m.Snapshot()); diff != "" {
		t.Errorf("store changed (-before +after):\n%s", diff)
	}
	assert.Equal(t, v, m.Version())
}

func TestMemory_ClearRestoreSummary(t *testing.T) {
	m := NewMemory()
	demo := DemoSnapshot(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	m.Restore(demo)

	sum := m.Summary()
	assert.Equal(t, 3, sum.TotalAssets)
	assert.Equal(t, 2, sum.TotalAdversaries)
	assert.Equal(t, 2, sum.ActiveThreats)
	assert.Equal(t, 16, sum.AverageRisk) // (20+12)/2

	if diff := cmp.Diff(demo, m.Snapshot()); diff != "" {
		t.Errorf("restore mismatch (-want +got):\n%s", diff)
	}

	m.Clear()
	assert.Equal(t, types.Summary{}, m.Summary())
}

func TestMemory_ConcurrentWrites(t *testing.T) {
	m := NewMemory()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.AddAsset(types.Asset{Name: "a", Type: types.AssetDigital, Value: 1})
		}()
		go func() {
			defer wg.Done()
			_ = m.Snapshot()
		}()
	}
	wg.Wait()
	assert.Len(t, m.Snapshot().Assets, 50)
}
