package infrastructure

import (
	"context"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/application/ports"
	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/domain"
)

// suggestionsKey is the guard key shared by every write to a suggestion cache.
const suggestionsKey = "suggestions"

type suggestionEntry struct {
	suggestion domain.PendingSuggestion
	expiresAt  time.Time
	// resolved marks a removed handle; suggestion is empty.
	resolved bool
}

// MemorySuggestionCache is an in-memory implementation of SuggestionCache.
// Entries and resolved markers expire ttl after they are written; a zero ttl keeps
// them forever.
type MemorySuggestionCache struct {
	guard   ports.ExclusiveAccess
	ttl     time.Duration
	now     func() time.Time
	entries atomic.Pointer[map[domain.Handle]suggestionEntry]
}

// NewMemorySuggestionCache creates a new MemorySuggestionCache.
func NewMemorySuggestionCache(guard ports.ExclusiveAccess, ttl time.Duration) *MemorySuggestionCache {
	c := &MemorySuggestionCache{
		guard: guard,
		ttl:   ttl,
		now:   time.Now,
	}
	empty := make(map[domain.Handle]suggestionEntry)
	c.entries.Store(&empty)
	return c
}

// Put stores the suggestion, replacing any entry with the same handle.
func (c *MemorySuggestionCache) Put(ctx context.Context, suggestion domain.PendingSuggestion) error {
	return c.guard.WithExclusiveAccess(ctx, suggestionsKey, func(context.Context) error {
		now := c.now()
		next := c.liveEntries(now)

		next[suggestion.Handle] = c.newEntry(suggestion, false, now)

		c.entries.Store(&next)
		return nil
	})
}

// Take returns the suggestion without removing it.
func (c *MemorySuggestionCache) Take(_ context.Context, handle domain.Handle) (domain.PendingSuggestion, error) {
	entry, ok := (*c.entries.Load())[handle]
	switch {
	case !ok || c.expired(entry, c.now()):
		return domain.PendingSuggestion{}, domain.ErrSuggestionNotFound
	case entry.resolved:
		return domain.PendingSuggestion{}, domain.ErrSuggestionResolved
	}
	return entry.suggestion, nil
}

// Remove replaces the suggestion with a resolved marker.
func (c *MemorySuggestionCache) Remove(ctx context.Context, handle domain.Handle) error {
	return c.guard.WithExclusiveAccess(ctx, suggestionsKey, func(context.Context) error {
		now := c.now()
		next := c.liveEntries(now)
		next[handle] = c.newEntry(domain.PendingSuggestion{Handle: handle}, true, now)
		c.entries.Store(&next)
		return nil
	})
}

// Len returns the number of unexpired pending suggestions (for testing/monitoring).
func (c *MemorySuggestionCache) Len() int {
	n := 0
	for _, e := range c.liveEntries(c.now()) {
		if !e.resolved {
			n++
		}
	}
	return n
}

func (c *MemorySuggestionCache) newEntry(
	suggestion domain.PendingSuggestion,
	resolved bool,
	now time.Time,
) suggestionEntry {
	entry := suggestionEntry{suggestion: suggestion, resolved: resolved}
	if c.ttl > 0 {
		entry.expiresAt = now.Add(c.ttl)
	}
	return entry
}

// liveEntries returns a copy of the current entries without expired ones.
func (c *MemorySuggestionCache) liveEntries(now time.Time) map[domain.Handle]suggestionEntry {
	next := maps.Clone(*c.entries.Load())
	maps.DeleteFunc(next, func(_ domain.Handle, e suggestionEntry) bool {
		return c.expired(e, now)
	})
	return next
}

func (c *MemorySuggestionCache) expired(e suggestionEntry, now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

type correlationEntry struct {
	token     string
	expiresAt time.Time
}

// correlationSweepInterval bounds how often Remember scans for expired entries.
const correlationSweepInterval = time.Minute

// MemoryCorrelationCache is an in-memory implementation of CorrelationCache.
// Expired entries are dropped when recalled. Remember sweeps the rest at most once
// per correlationSweepInterval, so a write is amortized O(1).
type MemoryCorrelationCache struct {
	mu        sync.Mutex
	now       func() time.Time
	entries   map[string]correlationEntry
	lastSweep time.Time
}

// NewMemoryCorrelationCache creates a new MemoryCorrelationCache.
func NewMemoryCorrelationCache() *MemoryCorrelationCache {
	return &MemoryCorrelationCache{
		now:     time.Now,
		entries: make(map[string]correlationEntry),
	}
}

// Remember stores token for interactionID until ttl elapses.
func (c *MemoryCorrelationCache) Remember(_ context.Context, interactionID, token string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if now.Sub(c.lastSweep) >= correlationSweepInterval {
		maps.DeleteFunc(c.entries, func(_ string, e correlationEntry) bool {
			return !now.Before(e.expiresAt)
		})
		c.lastSweep = now
	}
	c.entries[interactionID] = correlationEntry{token: token, expiresAt: now.Add(ttl)}
	return nil
}

// Recall returns and forgets the token for interactionID.
func (c *MemoryCorrelationCache) Recall(_ context.Context, interactionID string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[interactionID]
	if !ok {
		return "", false, nil
	}
	delete(c.entries, interactionID)

	if !c.now().Before(entry.expiresAt) {
		return "", false, nil
	}
	return entry.token, true, nil
}

// Len returns the number of stored entries, expired or not (for testing).
func (c *MemoryCorrelationCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Compile-time checks.
var (
	_ domain.SuggestionCache  = (*MemorySuggestionCache)(nil)
	_ domain.CorrelationCache = (*MemoryCorrelationCache)(nil)
)
