package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"fintrack/internal/core"
)

// ReportCache memoizes category reports per user and kind filter. Entries
// are dropped on every ledger mutation of their user.
//
// Each user has a generation that InvalidateUser advances. A report is
// only stored under the generation it was computed in, so rows read
// before a concurrent mutation never land in the cache after it.
type ReportCache struct {
	lru *LRUCache[[]core.AggregationRow]

	mu   sync.Mutex
	gens map[core.UserID]uint64
}

func NewReportCache(maxSize int, ttl time.Duration) *ReportCache {
	return &ReportCache{
		lru:  NewLRUCache[[]core.AggregationRow](maxSize, ttl),
		gens: make(map[core.UserID]uint64),
	}
}

func reportKey(userID core.UserID, filter core.KindFilter) string {
	return fmt.Sprintf("%s%s", userPrefix(userID), filter)
}

func userPrefix(userID core.UserID) string {
	return fmt.Sprintf("user/%d/", userID)
}

func (c *ReportCache) Get(userID core.UserID, filter core.KindFilter) ([]core.AggregationRow, bool) {
	return c.lru.Get(reportKey(userID, filter))
}

// Generation returns the user's current generation. Read it before
// computing a report and hand it to Set.
func (c *ReportCache) Generation(userID core.UserID) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[userID]
}

// Set stores rows computed at generation gen. It reports false, storing
// nothing, when the user was invalidated since.
func (c *ReportCache) Set(userID core.UserID, filter core.KindFilter, gen uint64, rows []core.AggregationRow) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[userID] != gen {
		return false
	}
	c.lru.Set(reportKey(userID, filter), rows)
	return true
}

// InvalidateUser drops every cached report of userID and advances its
// generation.
func (c *ReportCache) InvalidateUser(userID core.UserID) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[userID]++

	prefix := userPrefix(userID)
	return c.lru.DeleteFunc(func(key string) bool {
		return strings.HasPrefix(key, prefix)
	})
}

func (c *ReportCache) CleanExpired() int {
	return c.lru.CleanExpired()
}

func (c *ReportCache) Size() int {
	return c.lru.Size()
}
