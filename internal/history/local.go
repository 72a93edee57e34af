package history

import "sync"

// LocalCache is the in-process fallback tier: a bounded FIFO of raw message
// strings per user. It holds no durability guarantee; a restart discards
// everything.
type LocalCache struct {
	mu      sync.Mutex
	max     int
	entries map[string][]string
}

// NewLocalCache creates a cache bounded to max entries per user.
func NewLocalCache(max int) *LocalCache {
	return &LocalCache{
		max:     max,
		entries: make(map[string][]string),
	}
}

// Append adds text to the user's window. If the window would exceed the
// bound, exactly the oldest entry is evicted.
func (c *LocalCache) Append(userID, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	window := append(c.entries[userID], text)
	if len(window) > c.max {
		window = window[1:]
	}
	c.entries[userID] = window
}

// Get returns the user's window, oldest first. Unknown users get an empty
// slice, not an error.
func (c *LocalCache) Get(userID string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	window := c.entries[userID]
	out := make([]string, len(window))
	copy(out, window)
	return out
}

// Clear drops the user's window.
func (c *LocalCache) Clear(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}

// Len returns the current window size for a user.
func (c *LocalCache) Len(userID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries[userID])
}
