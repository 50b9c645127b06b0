// Package usage keeps a persistent ledger of model token consumption per
// model, agent mode and chat session.
package usage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"maia/internal/logging"
	"maia/internal/types"
)

const (
	// FileName is the ledger file inside the data directory.
	FileName = "usage.json"

	defaultSaveDelay = 5 * time.Second
	unknownKey       = "unknown"
)

// Tracker records token usage and saves it to disk in the background. All
// methods are safe on a nil *Tracker.
type Tracker struct {
	mu        sync.Mutex
	data      UsageData
	filePath  string
	saveDelay time.Duration
	saveTimer *time.Timer
	now       func() time.Time
}

// NewTracker opens the ledger in dataDir. A missing or corrupt file starts an
// empty ledger.
func NewTracker(dataDir string) (*Tracker, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	t := &Tracker{
		filePath:  filepath.Join(dataDir, FileName),
		data:      UsageData{Version: dataVersion, Aggregate: newAggregate()},
		saveDelay: defaultSaveDelay,
		now:       time.Now,
	}

	if err := t.Load(); err != nil {
		logging.StoreWarn("Usage ledger %s unreadable, starting empty: %v", t.filePath, err)
		t.data = UsageData{Version: dataVersion, Aggregate: newAggregate()}
	}
	return t, nil
}

// Load reads the ledger from disk.
func (t *Tracker) Load() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := os.ReadFile(t.filePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var loaded UsageData
	if err := json.Unmarshal(data, &loaded); err != nil {
		return err
	}

	// Older or partial files may lack some maps.
	if loaded.Aggregate.ByModel == nil {
		loaded.Aggregate.ByModel = make(map[string]TokenCounts)
	}
	if loaded.Aggregate.ByMode == nil {
		loaded.Aggregate.ByMode = make(map[string]TokenCounts)
	}
	if loaded.Aggregate.BySession == nil {
		loaded.Aggregate.BySession = make(map[string]TokenCounts)
	}
	t.data = loaded
	return nil
}

// Save writes the ledger to disk now.
func (t *Tracker) Save() error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.saveLocked()
}

func (t *Tracker) saveLocked() error {
	t.data.UpdatedAt = t.now()
	data, err := json.MarshalIndent(t.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(t.filePath, data, 0644)
}

// Track records one model round.
func (t *Tracker) Track(model string, mode types.AgentMode, sessionID string, input, output int) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.data.Aggregate.Total.Add(input, output)
	addToMap(t.data.Aggregate.ByModel, orUnknown(model), input, output)
	addToMap(t.data.Aggregate.ByMode, orUnknown(string(mode)), input, output)
	addToMap(t.data.Aggregate.BySession, orUnknown(sessionID), input, output)

	// Debounced auto-save
	if t.saveTimer == nil {
		t.saveTimer = time.AfterFunc(t.saveDelay, t.autoSave)
	}
}

func (t *Tracker) autoSave() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.saveTimer = nil
	if err := t.saveLocked(); err != nil {
		logging.StoreWarn("Usage ledger save failed: %v", err)
	}
}

// Close stops the pending auto-save and writes the ledger.
func (t *Tracker) Close() error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.saveTimer != nil {
		t.saveTimer.Stop()
		t.saveTimer = nil
	}
	return t.saveLocked()
}

// Stats returns a copy of the aggregated stats.
func (t *Tracker) Stats() AggregatedStats {
	if t == nil {
		return newAggregate()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	stats := t.data.Aggregate
	stats.ByModel = copyTokenCountsMap(stats.ByModel)
	stats.ByMode = copyTokenCountsMap(stats.ByMode)
	stats.BySession = copyTokenCountsMap(stats.BySession)
	return stats
}

// Session returns the counters of one chat session.
func (t *Tracker) Session(id string) TokenCounts {
	if t == nil {
		return TokenCounts{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.data.Aggregate.BySession[id]
}

func copyTokenCountsMap(src map[string]TokenCounts) map[string]TokenCounts {
	dst := make(map[string]TokenCounts, len(src))
	for key, counts := range src {
		dst[key] = counts
	}
	return dst
}

func addToMap(m map[string]TokenCounts, key string, input, output int) {
	entry := m[key]
	entry.Add(input, output)
	m[key] = entry
}

func orUnknown(s string) string {
	if s == "" {
		return unknownKey
	}
	return s
}
