package routing

import (
	"path/filepath"
	"testing"
)

func newTestTable(t *testing.T) *Table {
	table, err := OpenTable(filepath.Join(t.TempDir(), "channels.json"))
	if err != nil {
		t.Fatal(err)
	}
	return table
}

func TestToggleActivates(t *testing.T) {
	table := newTestTable(t)

	result, err := table.Toggle("guild1", "chan1")
	if err != nil {
		t.Fatal(err)
	}
	if result != Activated {
		t.Fatalf("expected activated, got %v", result)
	}
	if !table.IsRouted("guild1", "chan1") {
		t.Fatal("channel should be routed after toggle")
	}
}

func TestToggleIsItsOwnInverse(t *testing.T) {
	table := newTestTable(t)

	if _, err := table.Toggle("guild1", "chan1"); err != nil {
		t.Fatal(err)
	}
	result, err := table.Toggle("guild1", "chan1")
	if err != nil {
		t.Fatal(err)
	}
	if result != Deactivated {
		t.Fatalf("expected deactivated, got %v", result)
	}
	if table.IsRouted("guild1", "chan1") {
		t.Fatal("routing should be removed after second toggle")
	}
}

func TestToggleOverwritesPriorChannel(t *testing.T) {
	table := newTestTable(t)

	table.Toggle("guild1", "chan1")
	result, err := table.Toggle("guild1", "chan2")
	if err != nil {
		t.Fatal(err)
	}
	if result != Activated {
		t.Fatalf("expected activated, got %v", result)
	}

	// At most one channel per community.
	if table.IsRouted("guild1", "chan1") {
		t.Fatal("old channel must no longer be routed")
	}
	if !table.IsRouted("guild1", "chan2") {
		t.Fatal("new channel must be routed")
	}
}

func TestIsRoutedUnknown(t *testing.T) {
	table := newTestTable(t)
	if table.IsRouted("guild1", "chan1") {
		t.Fatal("unknown community should not be routed")
	}
	if table.IsRouted("", "chan1") {
		t.Fatal("empty community should never be routed")
	}
}

func TestTablePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "channels.json")

	table, err := OpenTable(path)
	if err != nil {
		t.Fatal(err)
	}
	table.Toggle("guild1", "chan1")
	table.Toggle("guild2", "chan9")

	reloaded, err := OpenTable(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reloaded.IsRouted("guild1", "chan1") || !reloaded.IsRouted("guild2", "chan9") {
		t.Fatal("entries lost across reload")
	}
}

func TestToggleRevertsWhenSaveFails(t *testing.T) {
	// Pointing the table at a directory makes the write fail.
	dir := t.TempDir()
	table := &Table{path: dir, entries: make(map[string]string)}

	if _, err := table.Toggle("guild1", "chan1"); err == nil {
		t.Fatal("expected save failure")
	}
	if table.IsRouted("guild1", "chan1") {
		t.Fatal("failed toggle must not leave an in-memory entry")
	}

	// The inverse direction: a failed removal keeps the prior entry.
	table.entries["guild2"] = "chan9"
	if _, err := table.Toggle("guild2", "chan9"); err == nil {
		t.Fatal("expected save failure")
	}
	if !table.IsRouted("guild2", "chan9") {
		t.Fatal("failed toggle must keep the prior entry")
	}
}

func TestCommunityStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "communities.json")

	store, err := OpenCommunityStore(path)
	if err != nil {
		t.Fatal(err)
	}

	// Defaults for an unknown community.
	cfg := store.Get("guild1")
	if cfg.Prefix != DefaultPrefix {
		t.Fatalf("expected default prefix, got %q", cfg.Prefix)
	}

	err = store.Update("guild1", func(c *CommunityConfig) {
		c.Prefix = "!"
		c.WelcomeChannel = "chan7"
	})
	if err != nil {
		t.Fatal(err)
	}

	cfg = store.Get("guild1")
	if cfg.Prefix != "!" || cfg.WelcomeChannel != "chan7" {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	// Survives reload.
	reloaded, err := OpenCommunityStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := reloaded.Get("guild1"); got.WelcomeChannel != "chan7" {
		t.Fatalf("config lost across reload: %+v", got)
	}
}
