package decision

import (
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rxtech-lab/argo-gate/internal/types"
)

const (
	DefaultCacheSize = 1024
	DefaultCacheTTL  = 5 * time.Minute
)

// Cache memoises external decisions per step. Implementations must be safe for concurrent use.
type Cache interface {
	Get(key CacheKey) (types.Decision, bool)
	Set(key CacheKey, decision types.Decision)
	Reset()
}

// CacheKey identifies one step of one run mode.
type CacheKey struct {
	StrategyID string
	Symbol     string
	CandleTime time.Time
	Mode       types.AIMode
	// Position distinguishes flat and in-position steps at the same candle.
	Position string
}

func (k CacheKey) String() string {
	return fmt.Sprintf("%s|%s|%d|%s|%s", k.StrategyID, k.Symbol, k.CandleTime.UnixNano(), k.Mode, k.Position)
}

// CacheV1 is an LRU with a per-entry TTL.
type CacheV1 struct {
	lru *expirable.LRU[string, types.Decision]
}

func NewCacheV1(size int, ttl time.Duration) Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}

	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	return &CacheV1{
		lru: expirable.NewLRU[string, types.Decision](size, nil, ttl),
	}
}

func (c *CacheV1) Get(key CacheKey) (types.Decision, bool) {
	return c.lru.Get(key.String())
}

func (c *CacheV1) Set(key CacheKey, decision types.Decision) {
	c.lru.Add(key.String(), decision)
}

// Reset implements Cache.
func (c *CacheV1) Reset() {
	c.lru.Purge()
}
