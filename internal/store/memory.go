// Package store holds the threat-model workspace and the chat archive.
//
// Memory is the live domain store the agents write to through tools. Archive
// persists chat sessions and workspace snapshots in SQLite.
package store

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"maia/internal/logging"
	"maia/internal/types"
)

// Domain is the read/write surface the tools and prompt builder need.
type Domain interface {
	AddAsset(a types.Asset) types.Asset
	AddAdversary(a types.Adversary) types.Adversary
	AddThreat(t types.Threat) types.Threat
	AddMitigation(threatName string, m types.Mitigation) error
	Snapshot() types.Snapshot
	Summary() types.Summary
	Clear()
	Restore(s types.Snapshot)
}

// Memory is an in-process Domain. All reads return deep copies.
type Memory struct {
	mu          sync.RWMutex
	assets      []types.Asset
	adversaries []types.Adversary
	threats     []types.Threat
	version     uint64
}

var _ Domain = (*Memory)(nil)

// NewMemory returns an empty workspace.
func NewMemory() *Memory {
	return &Memory{}
}

// AddAsset appends an asset, assigning an ID if it has none.
func (m *Memory) AddAsset(a types.Asset) types.Asset {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.assets = append(m.assets, a)
	m.version++
	logging.StoreDebug("Asset added: id=%s name=%q type=%s value=%d", a.ID, a.Name, a.Type, a.Value)
	return a
}

// AddAdversary appends an adversary, assigning an ID if it has none.
func (m *Memory) AddAdversary(a types.Adversary) types.Adversary {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.adversaries = append(m.adversaries, a)
	m.version++
	logging.StoreDebug("Adversary added: id=%s name=%q type=%s capability=%d", a.ID, a.Name, a.Type, a.Capability)
	return a
}

// AddThreat appends a threat. Risk fields are taken as given; callers build
// threats with types.NewThreat.
func (m *Memory) AddThreat(t types.Threat) types.Threat {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t = t.Clone()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.threats = append(m.threats, t)
	m.version++
	logging.StoreDebug("Threat added: id=%s name=%q score=%d level=%s", t.ID, t.Name, t.RiskScore, t.RiskLevel)
	return t.Clone()
}

// AddMitigation appends m to the first threat whose name equals threatName.
// The store is left unchanged when no threat matches.
func (m *Memory) AddMitigation(threatName string, mit types.Mitigation) error {
	if mit.ID == "" {
		mit.ID = uuid.NewString()
	}
	if mit.Status == "" {
		mit.Status = types.MitigationPending
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.threats {
		if m.threats[i].Name != threatName {
			continue
		}
		m.threats[i].Mitigations = append(m.threats[i].Mitigations, mit)
		m.version++
		logging.StoreDebug("Mitigation added to %q: id=%s strategy=%s", threatName, mit.ID, mit.Strategy)
		return nil
	}

	logging.Get(logging.CategoryStore).Warn("Mitigation rejected, no threat named %q", threatName)
	return fmt.Errorf("%w: %q", ErrThreatNotFound, threatName)
}

// Snapshot returns a deep copy of the workspace.
func (m *Memory) Snapshot() types.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Memory) snapshotLocked() types.Snapshot {
	s := types.Snapshot{
		Assets:      append([]types.Asset{}, m.assets...),
		Adversaries: append([]types.Adversary{}, m.adversaries...),
		Threats:     make([]types.Threat, len(m.threats)),
	}
	for i, t := range m.threats {
		s.Threats[i] = t.Clone()
	}
	return s
}

// Summary returns the dashboard indicators.
func (m *Memory) Summary() types.Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked().Summarize()
}

// Version increases on every mutation. Callers use it to detect unsaved changes.
func (m *Memory) Version() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version
}

// Clear empties the workspace.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.assets = nil
	m.adversaries = nil
	m.threats = nil
	m.version++
	logging.Store("Workspace cleared")
}

// Restore replaces the workspace with a copy of s.
func (m *Memory) Restore(s types.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.assets = append([]types.Asset(nil), s.Assets...)
	m.adversaries = append([]types.Adversary(nil), s.Adversaries...)
	m.threats = make([]types.Threat, len(s.Threats))
	for i, t := range s.Threats {
		m.threats[i] = t.Clone()
	}
	m.version++
	logging.Store("Workspace restored: %d assets, %d adversaries, %d threats",
		len(m.assets), len(m.adversaries), len(m.threats))
}
