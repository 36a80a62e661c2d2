package leaderboard

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/candidate-evaluator/internal/cache"
)

// LeaderboardCache provides caching for leaderboard data. Every write that
// changes rankings must call InvalidateAll before it returns.
type LeaderboardCache struct {
	cache *cache.Cache

	mu         sync.Mutex
	generation uint64
}

// NewLeaderboardCache creates a new leaderboard cache
func NewLeaderboardCache(ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{
		cache: cache.NewCache(ttl),
	}
}

func topKey(n int) string {
	return fmt.Sprintf("leaderboard:top:%d", n)
}

func pageKey(page, limit int) string {
	return fmt.Sprintf("leaderboard:page:%d:%d", page, limit)
}

func rankKey(candidateID int64) string {
	return fmt.Sprintf("rank:%d", candidateID)
}

// Generation identifies the cache epoch. Values computed before an
// invalidation are discarded by store.
func (lc *LeaderboardCache) Generation() uint64 {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.generation
}

func (lc *LeaderboardCache) load(key string, dest any) bool {
	data, found := lc.cache.Get(key)
	if !found {
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		slog.Error("Failed to unmarshal cached leaderboard data", "error", err, "key", key)
		lc.cache.Delete(key)
		return false
	}

	slog.Debug("Leaderboard cache hit", "key", key)
	return true
}

func (lc *LeaderboardCache) store(key string, generation uint64, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		slog.Error("Failed to marshal leaderboard data for cache", "error", err, "key", key)
		return
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()
	if generation != lc.generation {
		return
	}
	lc.cache.Set(key, data)
}

// GetTop retrieves a cached top-N list
func (lc *LeaderboardCache) GetTop(n int) ([]Entry, bool) {
	var entries []Entry
	if !lc.load(topKey(n), &entries) {
		return nil, false
	}
	return entries, true
}

// SetTop caches a top-N list computed during generation.
func (lc *LeaderboardCache) SetTop(n int, generation uint64, entries []Entry) {
	lc.store(topKey(n), generation, entries)
}

// GetPage retrieves a cached page
func (lc *LeaderboardCache) GetPage(page, limit int) (*Page, bool) {
	var p Page
	if !lc.load(pageKey(page, limit), &p) {
		return nil, false
	}
	return &p, true
}

// SetPage caches a page computed during generation.
func (lc *LeaderboardCache) SetPage(page, limit int, generation uint64, p *Page) {
	lc.store(pageKey(page, limit), generation, p)
}

// GetPosition retrieves a cached candidate position
func (lc *LeaderboardCache) GetPosition(candidateID int64) (*Position, bool) {
	var p Position
	if !lc.load(rankKey(candidateID), &p) {
		return nil, false
	}
	return &p, true
}

// SetPosition caches a candidate position computed during generation.
func (lc *LeaderboardCache) SetPosition(candidateID int64, generation uint64, p *Position) {
	lc.store(rankKey(candidateID), generation, p)
}

// InvalidateAll drops every cached entry and starts a new generation.
func (lc *LeaderboardCache) InvalidateAll() {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	lc.generation++
	lc.cache.Clear()
	slog.Debug("Leaderboard cache invalidated", "generation", lc.generation)
}

// Cache exposes the underlying store for metrics.
func (lc *LeaderboardCache) Cache() *cache.Cache {
	return lc.cache
}

// GetStats returns cache statistics
func (lc *LeaderboardCache) GetStats() map[string]interface{} {
	return lc.cache.Stats()
}

// Close stops background cache maintenance.
func (lc *LeaderboardCache) Close() {
	lc.cache.Close()
}
