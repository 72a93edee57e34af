package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *SQLiteStore {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndRecent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := store.Save(ctx, "user1", fmt.Sprintf("prompt%d", i), fmt.Sprintf("response%d", i), "guild1")
		if err != nil {
			t.Fatal(err)
		}
	}

	exchanges, err := store.Recent(ctx, "user1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(exchanges) != 3 {
		t.Fatalf("expected 3 exchanges, got %d", len(exchanges))
	}

	// Most recent first.
	if exchanges[0].Prompt != "prompt2" {
		t.Fatalf("expected prompt2 first, got %q", exchanges[0].Prompt)
	}
	if exchanges[2].Prompt != "prompt0" {
		t.Fatalf("expected prompt0 last, got %q", exchanges[2].Prompt)
	}
	if exchanges[0].CommunityID != "guild1" {
		t.Fatalf("expected guild1, got %q", exchanges[0].CommunityID)
	}
}

func TestRecentLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		store.Save(ctx, "user1", fmt.Sprintf("p%d", i), "r", "")
	}

	exchanges, err := store.Recent(ctx, "user1", 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(exchanges) != 4 {
		t.Fatalf("expected 4 exchanges, got %d", len(exchanges))
	}
	if exchanges[0].Prompt != "p9" {
		t.Fatalf("expected p9 first, got %q", exchanges[0].Prompt)
	}
	if exchanges[3].Prompt != "p6" {
		t.Fatalf("expected p6 last, got %q", exchanges[3].Prompt)
	}
}

func TestRecentUnknownUser(t *testing.T) {
	store := newTestStore(t)

	exchanges, err := store.Recent(context.Background(), "nobody", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(exchanges) != 0 {
		t.Fatalf("expected no exchanges, got %d", len(exchanges))
	}
}

func TestClearCountsRemoved(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		store.Save(ctx, "user1", "p", "r", "")
	}
	store.Save(ctx, "user2", "p", "r", "")

	removed, err := store.Clear(ctx, "user1")
	if err != nil {
		t.Fatal(err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removed, got %d", removed)
	}

	// Other users keep their history.
	remaining, _ := store.Recent(ctx, "user2", 10)
	if len(remaining) != 1 {
		t.Fatalf("user2 history lost, got %d exchanges", len(remaining))
	}

	// Clearing again removes nothing.
	removed, err = store.Clear(ctx, "user1")
	if err != nil {
		t.Fatal(err)
	}
	if removed != 0 {
		t.Fatalf("expected 0 removed on second clear, got %d", removed)
	}
}

func TestStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.Save(ctx, "user1", "p", "r", "guild1")
	store.Save(ctx, "user2", "p", "r", "guild1")
	store.Save(ctx, "user1", "p", "r", "guild1")

	for i := 0; i < 3; i++ {
		if err := store.TouchUser(ctx, "user1", "guild1"); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.TouchCommunity(ctx, "guild1"); err != nil {
		t.Fatal(err)
	}

	global, err := store.Global(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if global.Conversations != 3 {
		t.Fatalf("expected 3 conversations, got %d", global.Conversations)
	}
	if global.Users != 1 {
		t.Fatalf("expected 1 tracked user, got %d", global.Users)
	}
	if global.Communities != 1 {
		t.Fatalf("expected 1 community, got %d", global.Communities)
	}

	user, err := store.User(ctx, "user1")
	if err != nil {
		t.Fatal(err)
	}
	if user.MessageCount != 3 {
		t.Fatalf("expected message count 3, got %d", user.MessageCount)
	}
	if user.LastActive.IsZero() {
		t.Fatal("expected last active to be set")
	}

	community, err := store.Community(ctx, "guild1")
	if err != nil {
		t.Fatal(err)
	}
	if community.MessageCount != 3 || community.ActiveUsers != 2 {
		t.Fatalf("unexpected community stats: %+v", community)
	}
}

func TestUserStatsUnknown(t *testing.T) {
	store := newTestStore(t)

	stats, err := store.User(context.Background(), "nobody")
	if err != nil {
		t.Fatal(err)
	}
	if stats.MessageCount != 0 || !stats.LastActive.IsZero() {
		t.Fatalf("expected zero stats, got %+v", stats)
	}
}
