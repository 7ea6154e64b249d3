// Package history persists the latest portfolio snapshot between runs and
// diffs each new snapshot against it. The caller owns the load/save
// lifecycle; there is no process-wide state.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"LynchScreen/internal/model"
)

// Load reads the previously persisted snapshot. A missing file is a first
// run and returns nil without error.
func Load(path string) (*model.PortfolioSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read history: %w", err)
	}
	var snap model.PortfolioSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse history: %w", err)
	}
	return &snap, nil
}

// Save writes the snapshot as the new history record.
func Save(path string, snap *model.PortfolioSnapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Diff compares the new snapshot's bucket memberships against the prior
// run's. On a first run (prev == nil) every current ticker is added and
// nothing is removed.
func Diff(prev, curr *model.PortfolioSnapshot) model.HistoryDelta {
	currSet := toSet(curr.Tickers())
	var prevSet map[string]bool
	if prev != nil {
		prevSet = toSet(prev.Tickers())
	}

	var delta model.HistoryDelta
	for t := range currSet {
		if prevSet[t] {
			delta.Retained = append(delta.Retained, t)
		} else {
			delta.Added = append(delta.Added, t)
		}
	}
	for t := range prevSet {
		if !currSet[t] {
			delta.Removed = append(delta.Removed, t)
		}
	}
	sort.Strings(delta.Added)
	sort.Strings(delta.Removed)
	sort.Strings(delta.Retained)
	return delta
}

func toSet(tickers []string) map[string]bool {
	set := make(map[string]bool, len(tickers))
	for _, t := range tickers {
		set[t] = true
	}
	return set
}
