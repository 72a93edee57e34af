// Package history stores per-user conversation history in two tiers: a
// durable SQLite store and a process-local bounded cache used when the
// durable tier is unreachable.
package history

import (
	"context"
	"time"
)

// Exchange is one prompt/response pair. Immutable once written.
type Exchange struct {
	Prompt      string
	Response    string
	CommunityID string
	Timestamp   time.Time
}

// Store is the durable history tier. Every operation may fail; callers
// degrade to the local cache instead of aborting the request.
type Store interface {
	// Save appends an exchange to the user's history.
	Save(ctx context.Context, userID, prompt, response, communityID string) error

	// Recent returns up to limit exchanges, most recent first.
	Recent(ctx context.Context, userID string, limit int) ([]Exchange, error)

	// Clear removes the user's history and returns the number of
	// exchanges removed.
	Clear(ctx context.Context, userID string) (int64, error)

	Close() error
}

// GlobalStats summarizes overall usage.
type GlobalStats struct {
	Conversations int64
	Users         int64
	Communities   int64
}

// UserStats summarizes one user's activity.
type UserStats struct {
	MessageCount int64
	LastActive   time.Time
}

// CommunityStats summarizes one community's activity.
type CommunityStats struct {
	MessageCount int64
	ActiveUsers  int64
}

// Stats is the usage-counter surface backed by the same store.
type Stats interface {
	TouchUser(ctx context.Context, userID, communityID string) error
	TouchCommunity(ctx context.Context, communityID string) error
	Global(ctx context.Context) (GlobalStats, error)
	User(ctx context.Context, userID string) (UserStats, error)
	Community(ctx context.Context, communityID string) (CommunityStats, error)
}
