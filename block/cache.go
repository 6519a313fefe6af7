package block

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheSz matches spec's "~4 slots" recency cache in front of the block map.
const cacheSz = 4

// blockCache is the small LRU sitting in front of the authoritative block
// map. It reports hit/miss/put counts for the summary, which golang-lru
// itself does not track.
type blockCache struct {
	lru    *lru.Cache[BlockOffset, *Block]
	hit    uint64
	miss   uint64
	put    uint64
}

func newBlockCache() *blockCache {
	c, err := lru.New[BlockOffset, *Block](cacheSz)
	if err != nil {
		// cacheSz is a positive compile-time constant; New only fails for size <= 0.
		panic(err)
	}
	return &blockCache{lru: c}
}

func (c *blockCache) get(bo BlockOffset) (*Block, bool) {
	b, ok := c.lru.Get(bo)
	if ok {
		c.hit++
	} else {
		c.miss++
	}
	return b, ok
}

func (c *blockCache) add(b *Block) {
	c.put++
	c.lru.Add(b.Offset, b)
}

func (c *blockCache) remove(bo BlockOffset) {
	c.lru.Remove(bo)
}

// Stats reports cache hit/miss/put counters.
type Stats struct {
	Hit, Miss, Put uint64
}

func (c *blockCache) stats() Stats {
	return Stats{Hit: c.hit, Miss: c.miss, Put: c.put}
}
