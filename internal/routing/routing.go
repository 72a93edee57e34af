// Package routing persists which channel, if any, a community has designated
// for unaddressed chat input, plus per-community configuration.
package routing

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ToggleResult reports what a Toggle call did.
type ToggleResult int

const (
	Deactivated ToggleResult = iota
	Activated
)

func (r ToggleResult) String() string {
	if r == Activated {
		return "activated"
	}
	return "deactivated"
}

// Table maps a community to its single designated chat channel.
// Backed by a JSON file, written on every toggle.
type Table struct {
	mu      sync.RWMutex
	path    string
	entries map[string]string // community ID → channel ID
}

// OpenTable loads the routing table from path, creating it if absent.
func OpenTable(path string) (*Table, error) {
	t := &Table{
		path:    path,
		entries: make(map[string]string),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return nil, fmt.Errorf("read routing table: %w", err)
	}
	if err := json.Unmarshal(data, &t.entries); err != nil {
		return nil, fmt.Errorf("parse routing table: %w", err)
	}
	return t, nil
}

// IsRouted reports whether channelID is the community's designated channel.
func (t *Table) IsRouted(communityID, channelID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return communityID != "" && t.entries[communityID] == channelID
}

// Channel returns the community's designated channel, if any.
func (t *Table) Channel(communityID string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ch, ok := t.entries[communityID]
	return ch, ok
}

// Toggle flips routing for the community. If the community already routes to
// exactly this channel, routing is removed; otherwise routing is pointed at
// this channel, replacing any prior entry. A community never holds more than
// one entry.
func (t *Table) Toggle(communityID, channelID string) (ToggleResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev, had := t.entries[communityID]

	result := Activated
	if had && prev == channelID {
		delete(t.entries, communityID)
		result = Deactivated
	} else {
		t.entries[communityID] = channelID
	}

	if err := t.save(); err != nil {
		// Undo the flip so memory never diverges from disk.
		if had {
			t.entries[communityID] = prev
		} else {
			delete(t.entries, communityID)
		}
		return result, err
	}
	return result, nil
}

// save writes the table to disk. Caller holds the lock.
func (t *Table) save() error {
	data, err := json.MarshalIndent(t.entries, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(t.path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}
	return os.WriteFile(t.path, data, 0600)
}
